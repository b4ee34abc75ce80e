package manager

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreateAd_Defaults(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)
	m, _, _ := newTestManager(t, store)

	admin := seedUser(t, store, "admin@example.com")

	ad, err := m.CreateAd(ctx, CreateAdInput{
		Title:       "Spring Season Sale",
		BannerURL:   "https://cdn/banners/spring.png",
		TargetViews: 1000,
	}, admin.ID)
	require.NoError(t, err)

	assert.Equal(t, "Learn More", ad.CTAText)
	assert.Equal(t, 1, ad.Priority)
	assert.True(t, ad.Active)
	assert.Equal(t, admin.ID, ad.CreatedBy)
	assert.False(t, ad.StartDate.IsZero())
}

func TestCreateAd_Validation(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)
	m, _, _ := newTestManager(t, store)

	admin := seedUser(t, store, "admin@example.com")

	var verr ValidationError
	_, err := m.CreateAd(ctx, CreateAdInput{BannerURL: "https://cdn/b.png", TargetViews: 10}, admin.ID)
	require.ErrorAs(t, err, &verr)

	_, err = m.CreateAd(ctx, CreateAdInput{Title: "No banner", TargetViews: 10}, admin.ID)
	require.ErrorAs(t, err, &verr)

	_, err = m.CreateAd(ctx, CreateAdInput{Title: "No target", BannerURL: "https://cdn/b.png"}, admin.ID)
	require.ErrorAs(t, err, &verr)

	_, err = m.CreateAd(ctx, CreateAdInput{Title: "Bad priority", BannerURL: "https://cdn/b.png", TargetViews: 10, Priority: 11}, admin.ID)
	require.ErrorAs(t, err, &verr)
}

func TestListActiveAds_FiltersAndOrders(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)
	m, _, _ := newTestManager(t, store)

	admin := seedUser(t, store, "admin@example.com")

	low, err := m.CreateAd(ctx, CreateAdInput{Title: "Low priority", BannerURL: "https://cdn/1.png", TargetViews: 100, Priority: 2}, admin.ID)
	require.NoError(t, err)
	high, err := m.CreateAd(ctx, CreateAdInput{Title: "High priority", BannerURL: "https://cdn/2.png", TargetViews: 100, Priority: 9}, admin.ID)
	require.NoError(t, err)

	paused, err := m.CreateAd(ctx, CreateAdInput{Title: "Paused", BannerURL: "https://cdn/3.png", TargetViews: 100}, admin.ID)
	require.NoError(t, err)
	require.NoError(t, m.SetAdActive(ctx, paused.ID, false))

	yesterday := time.Now().Add(-24 * time.Hour)
	_, err = m.CreateAd(ctx, CreateAdInput{Title: "Expired", BannerURL: "https://cdn/4.png", TargetViews: 100, EndDate: &yesterday}, admin.ID)
	require.NoError(t, err)

	exhausted, err := m.CreateAd(ctx, CreateAdInput{Title: "Exhausted", BannerURL: "https://cdn/5.png", TargetViews: 1}, admin.ID)
	require.NoError(t, err)
	_, err = m.TrackAdView(ctx, exhausted.ID)
	require.NoError(t, err)

	ads, err := m.ListActiveAds(ctx)
	require.NoError(t, err)
	require.Len(t, ads, 2)
	assert.Equal(t, high.ID, ads[0].ID)
	assert.Equal(t, low.ID, ads[1].ID)
}

func TestTrackAdView(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)
	m, _, _ := newTestManager(t, store)

	admin := seedUser(t, store, "admin@example.com")
	ad, err := m.CreateAd(ctx, CreateAdInput{Title: "Banner", BannerURL: "https://cdn/b.png", TargetViews: 3}, admin.ID)
	require.NoError(t, err)

	first, err := m.TrackAdView(ctx, ad.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), first.ViewsRemaining)

	second, err := m.TrackAdView(ctx, ad.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), second.ViewsRemaining)

	var nferr NotFoundError
	_, err = m.TrackAdView(ctx, primitive.NewObjectID())
	require.ErrorAs(t, err, &nferr)
}

func TestTrackAdClick(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)
	m, _, _ := newTestManager(t, store)

	admin := seedUser(t, store, "admin@example.com")
	ad, err := m.CreateAd(ctx, CreateAdInput{
		Title:       "Banner",
		BannerURL:   "https://cdn/b.png",
		TargetURL:   "https://sponsor.example.com",
		TargetViews: 100,
	}, admin.ID)
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		_, err = m.TrackAdView(ctx, ad.ID)
		require.NoError(t, err)
	}

	click, err := m.TrackAdClick(ctx, ad.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://sponsor.example.com", click.TargetURL)
	assert.InDelta(t, 25.0, click.CTR, 0.001)
}

func TestGetAdAnalytics(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)
	m, _, _ := newTestManager(t, store)

	admin := seedUser(t, store, "admin@example.com")
	ad, err := m.CreateAd(ctx, CreateAdInput{Title: "Banner", BannerURL: "https://cdn/b.png", TargetViews: 4}, admin.ID)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = m.TrackAdView(ctx, ad.ID)
		require.NoError(t, err)
	}
	_, err = m.TrackAdClick(ctx, ad.ID)
	require.NoError(t, err)

	analytics, err := m.GetAdAnalytics(ctx, ad.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), analytics.Impressions)
	assert.Equal(t, int64(1), analytics.Clicks)
	assert.InDelta(t, 33.33, analytics.CTR, 0.001)
	assert.Equal(t, int64(1), analytics.RemainingViews)
	assert.InDelta(t, 75.0, analytics.CompletionRate, 0.001)
	assert.False(t, analytics.Completed)
	assert.False(t, analytics.Expired)

	_, err = m.TrackAdView(ctx, ad.ID)
	require.NoError(t, err)

	analytics, err = m.GetAdAnalytics(ctx, ad.ID)
	require.NoError(t, err)
	assert.True(t, analytics.Completed)
	assert.Equal(t, int64(0), analytics.RemainingViews)
}
