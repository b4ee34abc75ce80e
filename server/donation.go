package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RecordDonation opens a checkout session and a pending donation
func (s Server) RecordDonation() http.HandlerFunc {
	type request struct {
		AmountCents int64  `json:"amountCents"`
		Currency    string `json:"currency"`
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

		donation, err := s.manager.RecordDonation(r.Context(), userID, req.AmountCents, req.Currency)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		writeResponse(w, http.StatusOK, GenericResponse{Message: "donation created", Response: donation})
	}
}

// GetAdFreeStatus reports the caller's ad-free standing
func (s Server) GetAdFreeStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := s.mustUserID(w, r)
		if !ok {
			return
		}

		status, err := s.manager.GetAdFreeStatus(r.Context(), userID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		writeResponse(w, http.StatusOK, GenericResponse{Response: status})
	}
}

// CompleteDonation confirms a donation and unlocks ad-free for the donor
func (s Server) CompleteDonation() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
		if err != nil {
			writeResponse(w, http.StatusBadRequest, GenericResponse{Message: "invalid donation id"})
			return
		}

		donation, err := s.manager.CompleteDonation(r.Context(), id)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		writeResponse(w, http.StatusOK, GenericResponse{Message: "donation completed", Response: donation})
	}
}
