package server

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kiyora/animehub/pkg/manager"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Register creates an account and returns a session token
func (s Server) Register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if !decodeBody(w, r, &req) {
			return
		}

		user, err := s.manager.Register(r.Context(), manager.RegisterInput{
			Name:     req.Name,
			Email:    req.Email,
			Password: req.Password,
		})
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		token, exp, err := s.tokens.Sign(user.ID.Hex(), user.Email, user.IsAdmin)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		writeResponse(w, http.StatusOK, tokenResponse{Token: token, ExpiresAt: exp})
	}
}

// Login checks credentials and returns a session token
func (s Server) Login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if !decodeBody(w, r, &req) {
			return
		}

		user, err := s.manager.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		token, exp, err := s.tokens.Sign(user.ID.Hex(), user.Email, user.IsAdmin)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		writeResponse(w, http.StatusOK, tokenResponse{Token: token, ExpiresAt: exp})
	}
}

// GetProfile serves the caller's account view
func (s Server) GetProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := s.mustUserID(w, r)
		if !ok {
			return
		}

		profile, err := s.manager.GetProfile(r.Context(), userID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		writeResponse(w, http.StatusOK, profile)
	}
}

// ListMyRatings serves the caller's recent rating records
func (s Server) ListMyRatings() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := s.mustUserID(w, r)
		if !ok {
			return
		}

		limit := 0
		if v := r.URL.Query().Get("limit"); v != "" {
			parsed, err := parsePositiveInt(v)
			if err != nil {
				writeResponse(w, http.StatusBadRequest, GenericResponse{Message: "invalid limit parameter"})
				return
			}
			limit = parsed
		}

		ratings, err := s.manager.ListUserRatings(r.Context(), userID, limit)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		writeResponse(w, http.StatusOK, GenericResponse{Response: ratings})
	}
}

// GetWatchlist serves the caller's watchlist, resolved to anime
func (s Server) GetWatchlist() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := s.mustUserID(w, r)
		if !ok {
			return
		}

		watchlist, err := s.manager.GetWatchlist(r.Context(), userID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		writeResponse(w, http.StatusOK, GenericResponse{Response: watchlist})
	}
}

// AddToWatchlist adds an anime to the caller's watchlist
func (s Server) AddToWatchlist() http.HandlerFunc {
	type request struct {
		AnimeID string `json:"animeId"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := s.mustUserID(w, r)
		if !ok {
			return
		}

		var req request
		if !decodeBody(w, r, &req) {
			return
		}

		animeID, err := primitive.ObjectIDFromHex(req.AnimeID)
		if err != nil {
			writeResponse(w, http.StatusBadRequest, GenericResponse{Message: "invalid anime id"})
			return
		}

		if err := s.manager.AddToWatchlist(r.Context(), userID, animeID); err != nil {
			s.writeError(w, r, err)
			return
		}

		writeResponse(w, http.StatusOK, GenericResponse{Message: "added to watchlist"})
	}
}

// RemoveFromWatchlist drops an anime from the caller's watchlist
func (s Server) RemoveFromWatchlist() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := s.mustUserID(w, r)
		if !ok {
			return
		}

		animeID, err := primitive.ObjectIDFromHex(mux.Vars(r)["animeID"])
		if err != nil {
			writeResponse(w, http.StatusBadRequest, GenericResponse{Message: "invalid anime id"})
			return
		}

		if err := s.manager.RemoveFromWatchlist(r.Context(), userID, animeID); err != nil {
			s.writeError(w, r, err)
			return
		}

		writeResponse(w, http.StatusOK, GenericResponse{Message: "removed from watchlist"})
	}
}
