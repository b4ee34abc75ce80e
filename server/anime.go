package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/kiyora/animehub/pkg/logger"
)

const defaultPageSize = 20

// ListAnime serves the ranked catalog view
func (s Server) ListAnime() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromCtx(r.Context())

		params, err := ParsePaginationParams(r)
		if err != nil {
			writeResponse(w, http.StatusBadRequest, GenericResponse{Message: err.Error()})
			return
		}
		if params.PageSize == 0 {
			params.PageSize = defaultPageSize
		}

		search := r.URL.Query().Get("search")

		result, err := s.manager.ListAnime(r.Context(), params, search)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		if err := writeResponse(w, http.StatusOK, result); err != nil {
			log.Error("failed to write response", zap.Error(err))
		}
	}
}

// GetAnime serves one anime with its episodes
func (s Server) GetAnime() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
		if err != nil {
			writeResponse(w, http.StatusBadRequest, GenericResponse{Message: "invalid anime id"})
			return
		}

		detail, err := s.manager.GetAnime(r.Context(), id)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		writeResponse(w, http.StatusOK, detail)
	}
}

// SearchAnime matches a term against titles and genres
func (s Server) SearchAnime() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matches, err := s.manager.SearchAnime(r.Context(), r.URL.Query().Get("q"))
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		writeResponse(w, http.StatusOK, GenericResponse{Response: matches})
	}
}

// SyncEpisodes triggers episode reconciliation for one anime
func (s Server) SyncEpisodes() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := primitive.ObjectIDFromHex(mux.Vars(r)["animeID"])
		if err != nil {
			writeResponse(w, http.StatusBadRequest, GenericResponse{Message: "invalid anime id"})
			return
		}

		result, err := s.manager.SyncEpisodes(r.Context(), id)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		writeResponse(w, http.StatusOK, GenericResponse{Message: "episode sync finished", Response: result})
	}
}

// SyncAllEpisodes sweeps every anime with an external id
func (s Server) SyncAllEpisodes() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := s.manager.SyncAllEpisodes(r.Context())
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		writeResponse(w, http.StatusOK, GenericResponse{Message: "bulk sync finished", Response: result})
	}
}

// SyncCatalog imports top-ranked anime from MAL
func (s Server) SyncCatalog() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if v := r.URL.Query().Get("limit"); v != "" {
			parsed, err := parsePositiveInt(v)
			if err != nil {
				writeResponse(w, http.StatusBadRequest, GenericResponse{Message: "invalid limit parameter"})
				return
			}
			limit = parsed
		}

		result, err := s.manager.SyncCatalog(r.Context(), limit)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		writeResponse(w, http.StatusOK, GenericResponse{Message: "catalog sync finished", Response: result})
	}
}

func (s Server) mustUserID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, ok := userIDFromCtx(r.Context())
	if !ok {
		writeResponse(w, http.StatusUnauthorized, GenericResponse{Message: "invalid token subject"})
	}
	return id, ok
}

func decodeBody(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := decodeJSON(w, r, out); err != nil {
		logger.FromCtx(r.Context()).Debug("invalid request body", zap.Error(err))
		writeResponse(w, http.StatusBadRequest, GenericResponse{Message: "invalid request body"})
		return false
	}
	return true
}
