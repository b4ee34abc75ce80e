package manager

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/kiyora/animehub/pkg/logger"
	"github.com/kiyora/animehub/pkg/storage"
)

// activeAdLimit caps how many ads one serving request returns.
const activeAdLimit = 20

// CreateAdInput is the admin payload for a new sponsored banner.
type CreateAdInput struct {
	Title       string `validate:"required"`
	Description string
	BannerURL   string `validate:"required"`
	CTAText     string
	TargetURL   string
	TargetViews int64 `validate:"min=1"`
	Priority    int   `validate:"min=0,max=10"`
	StartDate   *time.Time
	EndDate     *time.Time
}

// AdViewResult reports a tracked impression.
type AdViewResult struct {
	ViewsRemaining int64 `json:"viewsRemaining"`
}

// AdClickResult reports a tracked click with the redirect target.
type AdClickResult struct {
	TargetURL string  `json:"targetUrl,omitempty"`
	CTR       float64 `json:"ctr"`
}

// AdAnalytics summarizes one ad's delivery performance.
type AdAnalytics struct {
	Ad             *storage.Ad `json:"ad"`
	Impressions    int64       `json:"impressions"`
	Clicks         int64       `json:"clicks"`
	CTR            float64     `json:"ctr"`
	RemainingViews int64       `json:"remainingViews"`
	CompletionRate float64     `json:"completionRate"`
	Completed      bool        `json:"completed"`
	Expired        bool        `json:"expired"`
}

// CreateAd registers a sponsored banner for serving.
func (m Manager) CreateAd(ctx context.Context, input CreateAdInput, createdBy primitive.ObjectID) (*storage.Ad, error) {
	if err := m.validate.Struct(input); err != nil {
		return nil, ValidationError{Reason: "ad needs a title, a banner, a positive view target, and a priority between 0 and 10"}
	}

	if input.CTAText == "" {
		input.CTAText = "Learn More"
	}
	if input.Priority == 0 {
		input.Priority = 1
	}

	ad := storage.Ad{
		Title:       input.Title,
		Description: input.Description,
		BannerURL:   input.BannerURL,
		CTAText:     input.CTAText,
		TargetURL:   input.TargetURL,
		TargetViews: input.TargetViews,
		Active:      true,
		Priority:    input.Priority,
		EndDate:     input.EndDate,
		CreatedBy:   createdBy,
	}
	if input.StartDate != nil {
		ad.StartDate = *input.StartDate
	}

	id, err := m.storage.CreateAd(ctx, ad)
	if err != nil {
		return nil, fmt.Errorf("create ad: %w", err)
	}

	logger.FromCtx(ctx).Info("ad created",
		zap.String("ad", id.Hex()),
		zap.String("title", input.Title),
		zap.Int64("targetViews", input.TargetViews))

	return m.storage.GetAd(ctx, id)
}

// ListActiveAds returns the ads currently eligible for serving, highest
// priority first. Ads past their schedule or view target are excluded.
func (m Manager) ListActiveAds(ctx context.Context) ([]*storage.Ad, error) {
	ads, err := m.storage.ListActiveAds(ctx, time.Now(), activeAdLimit)
	if err != nil {
		return nil, fmt.Errorf("list active ads: %w", err)
	}
	return ads, nil
}

// TrackAdView counts one impression against the ad's view target.
func (m Manager) TrackAdView(ctx context.Context, adID primitive.ObjectID) (*AdViewResult, error) {
	ad, err := m.storage.IncrementAdViews(ctx, adID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, NotFoundError{Entity: "ad", ID: adID.Hex()}
		}
		return nil, fmt.Errorf("increment ad views: %w", err)
	}

	remaining := ad.TargetViews - ad.Views
	if remaining < 0 {
		remaining = 0
	}
	return &AdViewResult{ViewsRemaining: remaining}, nil
}

// TrackAdClick counts one click and hands back the redirect target.
func (m Manager) TrackAdClick(ctx context.Context, adID primitive.ObjectID) (*AdClickResult, error) {
	ad, err := m.storage.IncrementAdClicks(ctx, adID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, NotFoundError{Entity: "ad", ID: adID.Hex()}
		}
		return nil, fmt.Errorf("increment ad clicks: %w", err)
	}

	return &AdClickResult{TargetURL: ad.TargetURL, CTR: clickThroughRate(ad)}, nil
}

// SetAdActive toggles whether an ad is eligible for serving.
func (m Manager) SetAdActive(ctx context.Context, adID primitive.ObjectID, active bool) error {
	if err := m.storage.SetAdActive(ctx, adID, active); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return NotFoundError{Entity: "ad", ID: adID.Hex()}
		}
		return fmt.Errorf("set ad active: %w", err)
	}
	return nil
}

// GetAdAnalytics reports delivery performance for one ad.
func (m Manager) GetAdAnalytics(ctx context.Context, adID primitive.ObjectID) (*AdAnalytics, error) {
	ad, err := m.storage.GetAd(ctx, adID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, NotFoundError{Entity: "ad", ID: adID.Hex()}
		}
		return nil, fmt.Errorf("get ad: %w", err)
	}

	remaining := ad.TargetViews - ad.Views
	if remaining < 0 {
		remaining = 0
	}

	completion := 0.0
	if ad.TargetViews > 0 {
		completion = roundPercent(float64(ad.Views) / float64(ad.TargetViews) * 100)
	}

	return &AdAnalytics{
		Ad:             ad,
		Impressions:    ad.Views,
		Clicks:         ad.Clicks,
		CTR:            clickThroughRate(ad),
		RemainingViews: remaining,
		CompletionRate: completion,
		Completed:      ad.Views >= ad.TargetViews,
		Expired:        ad.EndDate != nil && ad.EndDate.Before(time.Now()),
	}, nil
}

func clickThroughRate(ad *storage.Ad) float64 {
	if ad.Views == 0 {
		return 0
	}
	return roundPercent(float64(ad.Clicks) / float64(ad.Views) * 100)
}

func roundPercent(v float64) float64 {
	return math.Round(v*100) / 100
}
