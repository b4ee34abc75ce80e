package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/kiyora/animehub/pkg/auth"
	"github.com/kiyora/animehub/pkg/logger"
	"github.com/kiyora/animehub/pkg/manager"
)

type GenericResponse struct {
	Message  string `json:"message,omitempty"`
	Response any    `json:"response,omitempty"`
}

// Server houses all dependencies for the catalog API to work such as loggers, the manager, and token service.
type Server struct {
	baseLogger *zap.SugaredLogger
	manager    manager.Manager
	tokens     auth.TokenService
}

// New creates a new catalog server
func New(logger *zap.SugaredLogger, m manager.Manager, tokens auth.TokenService) Server {
	return Server{
		baseLogger: logger,
		manager:    m,
		tokens:     tokens,
	}
}

func writeResponse(w http.ResponseWriter, status int, body any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}

	w.Header().Set("content-type", "application/json")
	if status != http.StatusOK {
		w.WriteHeader(status)
	}

	w.Write(b)
	return nil
}

// writeError maps the manager's error taxonomy to status codes. Validation
// and not-found reasons are caller-visible; anything else gets a generic
// message with detail kept in the logs.
func (s Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromCtx(r.Context())

	var verr manager.ValidationError
	if errors.As(err, &verr) {
		writeResponse(w, http.StatusBadRequest, GenericResponse{Message: verr.Reason})
		return
	}

	var nferr manager.NotFoundError
	if errors.As(err, &nferr) {
		writeResponse(w, http.StatusNotFound, GenericResponse{Message: nferr.Error()})
		return
	}

	log.Error("request failed", zap.Error(err))
	writeResponse(w, http.StatusInternalServerError, GenericResponse{Message: "something went wrong"})
}

// Serve starts the http server and is a blocking call
func (s Server) Serve(port int) error {
	rtr := mux.NewRouter()
	rtr.Use(s.LogMiddleware())
	rtr.HandleFunc("/healthz", s.Healthz()).Methods(http.MethodGet)

	api := rtr.PathPrefix("/api").Subrouter()
	v1 := api.PathPrefix("/v1").Subrouter()

	v1.HandleFunc("/auth/register", s.Register()).Methods(http.MethodPost)
	v1.HandleFunc("/auth/login", s.Login()).Methods(http.MethodPost)

	v1.HandleFunc("/ads/active", s.ListActiveAds()).Methods(http.MethodGet)
	v1.HandleFunc("/ads/{id}/view", s.TrackAdView()).Methods(http.MethodPost)
	v1.HandleFunc("/ads/{id}/click", s.TrackAdClick()).Methods(http.MethodPost)

	v1.HandleFunc("/anime", s.ListAnime()).Methods(http.MethodGet)
	v1.HandleFunc("/anime/search", s.SearchAnime()).Methods(http.MethodGet)
	v1.HandleFunc("/anime/{id}", s.GetAnime()).Methods(http.MethodGet)

	user := v1.NewRoute().Subrouter()
	user.Use(s.AuthMiddleware())
	user.HandleFunc("/ratings/episode", s.RateEpisode()).Methods(http.MethodPost)
	user.HandleFunc("/ratings/anime", s.RateAnime()).Methods(http.MethodPost)
	user.HandleFunc("/users/me", s.GetProfile()).Methods(http.MethodGet)
	user.HandleFunc("/users/me/ratings", s.ListMyRatings()).Methods(http.MethodGet)
	user.HandleFunc("/users/me/watchlist", s.GetWatchlist()).Methods(http.MethodGet)
	user.HandleFunc("/users/me/watchlist", s.AddToWatchlist()).Methods(http.MethodPost)
	user.HandleFunc("/users/me/watchlist/{animeID}", s.RemoveFromWatchlist()).Methods(http.MethodDelete)
	user.HandleFunc("/users/me/ad-free", s.GetAdFreeStatus()).Methods(http.MethodGet)
	user.HandleFunc("/donations", s.RecordDonation()).Methods(http.MethodPost)
	user.HandleFunc("/donations/{id}/complete", s.CompleteDonation()).Methods(http.MethodPost)

	admin := v1.PathPrefix("/admin").Subrouter()
	admin.Use(s.AuthMiddleware(), s.AdminMiddleware())
	admin.HandleFunc("/anime", s.CreateAnime()).Methods(http.MethodPost)
	admin.HandleFunc("/anime/{id}", s.UpdateAnime()).Methods(http.MethodPut)
	admin.HandleFunc("/anime/{id}", s.DeleteAnime()).Methods(http.MethodDelete)
	admin.HandleFunc("/anime/{id}/episodes", s.AddEpisode()).Methods(http.MethodPost)
	admin.HandleFunc("/episodes/{id}", s.UpdateEpisode()).Methods(http.MethodPut)
	admin.HandleFunc("/ads", s.CreateAd()).Methods(http.MethodPost)
	admin.HandleFunc("/ads/{id}/active", s.SetAdActive()).Methods(http.MethodPut)
	admin.HandleFunc("/ads/{id}/analytics", s.GetAdAnalytics()).Methods(http.MethodGet)
	admin.HandleFunc("/sync/catalog", s.SyncCatalog()).Methods(http.MethodPost)
	admin.HandleFunc("/sync/episodes", s.SyncAllEpisodes()).Methods(http.MethodPost)
	admin.HandleFunc("/sync/episodes/{animeID}", s.SyncEpisodes()).Methods(http.MethodPost)
	admin.HandleFunc("/stats", s.GetStats()).Methods(http.MethodGet)

	corsHandler := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete}),
	)(rtr)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: corsHandler,
	}

	go func() {
		s.baseLogger.Info("serving...", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil {
			s.baseLogger.Error(err.Error())
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	<-c

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*3)
	defer cancel()

	return srv.Shutdown(ctx)
}

// Healthz is an endpoint that can be used for probes
func (s Server) Healthz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeResponse(w, http.StatusOK, GenericResponse{Response: "ok"})
	}
}
