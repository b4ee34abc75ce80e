package server

import (
	"encoding/json"
	"io"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// maxRequestBody caps JSON payloads; nothing the API accepts comes close.
const maxRequestBody = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, out any) error {
	b, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

type rateEpisodeRequest struct {
	EpisodeID string `json:"episodeId"`
	Rating    int    `json:"rating"`
	Review    string `json:"review"`
}

type rateAnimeRequest struct {
	AnimeID string `json:"animeId"`
	Rating  int    `json:"rating"`
	Review  string `json:"review"`
}

// RateEpisode records the caller's rating on an episode
func (s Server) RateEpisode() http.HandlerFunc {
	type response struct {
		Message       string  `json:"message"`
		EpisodeRating float64 `json:"episodeRating"`
		AnimeRating   float64 `json:"animeRating"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := s.mustUserID(w, r)
		if !ok {
			return
		}

		var req rateEpisodeRequest
		if !decodeBody(w, r, &req) {
			return
		}

		episodeID, err := primitive.ObjectIDFromHex(req.EpisodeID)
		if err != nil {
			writeResponse(w, http.StatusBadRequest, GenericResponse{Message: "invalid episode id"})
			return
		}

		result, err := s.manager.RateEpisode(r.Context(), episodeID, userID, req.Rating, req.Review)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		writeResponse(w, http.StatusOK, response{
			Message:       "rating recorded",
			EpisodeRating: result.EpisodeRating,
			AnimeRating:   result.AnimeRating,
		})
	}
}

// RateAnime records the caller's direct rating on an anime
func (s Server) RateAnime() http.HandlerFunc {
	type response struct {
		Message       string  `json:"message"`
		AverageRating float64 `json:"averageRating"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := s.mustUserID(w, r)
		if !ok {
			return
		}

		var req rateAnimeRequest
		if !decodeBody(w, r, &req) {
			return
		}

		animeID, err := primitive.ObjectIDFromHex(req.AnimeID)
		if err != nil {
			writeResponse(w, http.StatusBadRequest, GenericResponse{Message: "invalid anime id"})
			return
		}

		result, err := s.manager.RateAnime(r.Context(), animeID, userID, req.Rating, req.Review)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		writeResponse(w, http.StatusOK, response{
			Message:       "rating recorded",
			AverageRating: result.AverageRating,
		})
	}
}
