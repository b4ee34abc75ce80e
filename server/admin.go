package server

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kiyora/animehub/pkg/manager"
	"github.com/kiyora/animehub/pkg/storage"
)

type createAnimeRequest struct {
	Title         string   `json:"title"`
	TitleEnglish  string   `json:"titleEnglish"`
	TitleJapanese string   `json:"titleJapanese"`
	Synopsis      string   `json:"synopsis"`
	Poster        string   `json:"poster"`
	Type          string   `json:"type"`
	Status        string   `json:"status"`
	MALID         *int     `json:"malId"`
	Genres        []string `json:"genres"`
	Studios       []string `json:"studios"`
}

// CreateAnime adds a curated catalog entry
func (s Server) CreateAnime() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := s.mustUserID(w, r)
		if !ok {
			return
		}

		var req createAnimeRequest
		if !decodeBody(w, r, &req) {
			return
		}

		anime, err := s.manager.CreateAnime(r.Context(), manager.CreateAnimeInput{
			Title:         req.Title,
			TitleEnglish:  req.TitleEnglish,
			TitleJapanese: req.TitleJapanese,
			Synopsis:      req.Synopsis,
			Poster:        req.Poster,
			Type:          req.Type,
			Status:        req.Status,
			MALID:         req.MALID,
			Genres:        req.Genres,
			Studios:       req.Studios,
		}, userID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		writeResponse(w, http.StatusOK, GenericResponse{Message: "anime created", Response: anime})
	}
}

type updateAnimeRequest struct {
	Title         *string   `json:"title"`
	TitleEnglish  *string   `json:"titleEnglish"`
	TitleJapanese *string   `json:"titleJapanese"`
	Synopsis      *string   `json:"synopsis"`
	Poster        *string   `json:"poster"`
	Type          *string   `json:"type"`
	Status        *string   `json:"status"`
	Genres        *[]string `json:"genres"`
	Studios       *[]string `json:"studios"`
}

// UpdateAnime patches descriptive fields of an anime
func (s Server) UpdateAnime() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
		if err != nil {
			writeResponse(w, http.StatusBadRequest, GenericResponse{Message: "invalid anime id"})
			return
		}

		var req updateAnimeRequest
		if !decodeBody(w, r, &req) {
			return
		}

		anime, err := s.manager.UpdateAnime(r.Context(), id, storage.AnimeUpdate{
			Title:         req.Title,
			TitleEnglish:  req.TitleEnglish,
			TitleJapanese: req.TitleJapanese,
			Synopsis:      req.Synopsis,
			Poster:        req.Poster,
			Type:          req.Type,
			Status:        req.Status,
			Genres:        req.Genres,
			Studios:       req.Studios,
		})
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		writeResponse(w, http.StatusOK, GenericResponse{Message: "anime updated", Response: anime})
	}
}

// DeleteAnime removes an anime from the catalog
func (s Server) DeleteAnime() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
		if err != nil {
			writeResponse(w, http.StatusBadRequest, GenericResponse{Message: "invalid anime id"})
			return
		}

		if err := s.manager.DeleteAnime(r.Context(), id); err != nil {
			s.writeError(w, r, err)
			return
		}

		writeResponse(w, http.StatusOK, GenericResponse{Message: "anime deleted"})
	}
}

type addEpisodeRequest struct {
	Number   int        `json:"number"`
	Title    string     `json:"title"`
	Synopsis string     `json:"synopsis"`
	AirDate  *time.Time `json:"airDate"`
	Duration string     `json:"duration"`
}

// AddEpisode creates a manually authored episode under an anime
func (s Server) AddEpisode() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		animeID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
		if err != nil {
			writeResponse(w, http.StatusBadRequest, GenericResponse{Message: "invalid anime id"})
			return
		}

		var req addEpisodeRequest
		if !decodeBody(w, r, &req) {
			return
		}

		episode, err := s.manager.AddEpisode(r.Context(), animeID, manager.AddEpisodeInput{
			Number:   req.Number,
			Title:    req.Title,
			Synopsis: req.Synopsis,
			AirDate:  req.AirDate,
			Duration: req.Duration,
		})
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		writeResponse(w, http.StatusOK, GenericResponse{Message: "episode created", Response: episode})
	}
}

type updateEpisodeRequest struct {
	Title    *string    `json:"title"`
	Synopsis *string    `json:"synopsis"`
	AirDate  *time.Time `json:"airDate"`
	Duration *string    `json:"duration"`
}

// UpdateEpisode applies an admin edit to episode metadata
func (s Server) UpdateEpisode() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
		if err != nil {
			writeResponse(w, http.StatusBadRequest, GenericResponse{Message: "invalid episode id"})
			return
		}

		var req updateEpisodeRequest
		if !decodeBody(w, r, &req) {
			return
		}

		episode, err := s.manager.UpdateEpisode(r.Context(), id, manager.UpdateEpisodeInput{
			Title:    req.Title,
			Synopsis: req.Synopsis,
			AirDate:  req.AirDate,
			Duration: req.Duration,
		})
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		writeResponse(w, http.StatusOK, GenericResponse{Message: "episode updated", Response: episode})
	}
}

// GetStats serves the admin dashboard summary
func (s Server) GetStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := s.manager.GetStats(r.Context())
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		writeResponse(w, http.StatusOK, GenericResponse{Response: stats})
	}
}
