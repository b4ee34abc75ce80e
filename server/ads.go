package server

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kiyora/animehub/pkg/manager"
)

type createAdRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	BannerURL   string     `json:"bannerUrl"`
	CTAText     string     `json:"ctaText"`
	TargetURL   string     `json:"targetUrl"`
	TargetViews int64      `json:"targetViews"`
	Priority    int        `json:"priority"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
}

func adIDFromPath(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		writeResponse(w, http.StatusBadRequest, GenericResponse{Message: "invalid ad id"})
		return primitive.NilObjectID, false
	}
	return id, true
}

// ListActiveAds serves the ads currently eligible for display
func (s Server) ListActiveAds() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ads, err := s.manager.ListActiveAds(r.Context())
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		writeResponse(w, http.StatusOK, GenericResponse{Response: ads})
	}
}

// TrackAdView counts one impression
func (s Server) TrackAdView() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := adIDFromPath(w, r)
		if !ok {
			return
		}

		result, err := s.manager.TrackAdView(r.Context(), id)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		writeResponse(w, http.StatusOK, GenericResponse{Message: "view tracked", Response: result})
	}
}

// TrackAdClick counts one click and returns the redirect target
func (s Server) TrackAdClick() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := adIDFromPath(w, r)
		if !ok {
			return
		}

		result, err := s.manager.TrackAdClick(r.Context(), id)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		writeResponse(w, http.StatusOK, GenericResponse{Message: "click tracked", Response: result})
	}
}

// CreateAd registers a sponsored banner
func (s Server) CreateAd() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := s.mustUserID(w, r)
		if !ok {
			return
		}

		var req createAdRequest
		if !decodeBody(w, r, &req) {
			return
		}

		ad, err := s.manager.CreateAd(r.Context(), manager.CreateAdInput{
			Title:       req.Title,
			Description: req.Description,
			BannerURL:   req.BannerURL,
			CTAText:     req.CTAText,
			TargetURL:   req.TargetURL,
			TargetViews: req.TargetViews,
			Priority:    req.Priority,
			StartDate:   req.StartDate,
			EndDate:     req.EndDate,
		}, userID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		writeResponse(w, http.StatusOK, GenericResponse{Message: "ad created", Response: ad})
	}
}

// SetAdActive toggles whether an ad is served
func (s Server) SetAdActive() http.HandlerFunc {
	type request struct {
		Active bool `json:"active"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := adIDFromPath(w, r)
		if !ok {
			return
		}

		var req request
		if !decodeBody(w, r, &req) {
			return
		}

		if err := s.manager.SetAdActive(r.Context(), id, req.Active); err != nil {
			s.writeError(w, r, err)
			return
		}

		writeResponse(w, http.StatusOK, GenericResponse{Message: "ad updated"})
	}
}

// GetAdAnalytics reports delivery performance for one ad
func (s Server) GetAdAnalytics() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := adIDFromPath(w, r)
		if !ok {
			return
		}

		analytics, err := s.manager.GetAdAnalytics(r.Context(), id)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		writeResponse(w, http.StatusOK, GenericResponse{Response: analytics})
	}
}
