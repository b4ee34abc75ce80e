package manager

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kiyora/animehub/pkg/storage"
)

func TestRateEpisode(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)
	m, _, _ := newTestManager(t, store)

	anime := seedAnime(t, store, "Cowboy Bebop", 1)
	ep := seedEpisode(t, store, anime.ID, 1)
	user := seedUser(t, store, "spike@example.com")

	result, err := m.RateEpisode(ctx, ep.ID, user.ID, 8, "banger")
	require.NoError(t, err)
	assert.Equal(t, 8.0, result.EpisodeRating)
	assert.Equal(t, 8.0, result.AnimeRating)

	got, err := store.GetEpisode(ctx, ep.ID)
	require.NoError(t, err)
	require.Len(t, got.UserRatings, 1)
	require.NotNil(t, got.AverageRating)
	assert.Equal(t, 8.0, *got.AverageRating)

	ratings, err := store.ListRatingsByUser(ctx, user.ID, 10)
	require.NoError(t, err)
	require.Len(t, ratings, 1)
	assert.Equal(t, "banger", ratings[0].Review)
}

func TestRateEpisode_LastWriteWins(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)
	m, _, _ := newTestManager(t, store)

	anime := seedAnime(t, store, "Cowboy Bebop", 1)
	ep := seedEpisode(t, store, anime.ID, 1)
	user := seedUser(t, store, "spike@example.com")

	_, err := m.RateEpisode(ctx, ep.ID, user.ID, 8, "")
	require.NoError(t, err)

	result, err := m.RateEpisode(ctx, ep.ID, user.ID, 3, "")
	require.NoError(t, err)

	// one tuple per user; the average reflects only the latest value
	assert.Equal(t, 3.0, result.EpisodeRating)

	got, err := store.GetEpisode(ctx, ep.ID)
	require.NoError(t, err)
	require.Len(t, got.UserRatings, 1)
	assert.Equal(t, 3, got.UserRatings[0].Rating)

	// the ledger holds a single upserted record too
	count, err := store.CountRatingsByUser(ctx, user.ID, storage.RatingKindEpisode)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRateEpisode_RollupExcludesUnrated(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)
	m, _, _ := newTestManager(t, store)

	anime := seedAnime(t, store, "Cowboy Bebop", 1)
	rated := seedEpisode(t, store, anime.ID, 1)
	other := seedEpisode(t, store, anime.ID, 2)
	seedEpisode(t, store, anime.ID, 3) // never rated

	alice := seedUser(t, store, "alice@example.com")
	bob := seedUser(t, store, "bob@example.com")

	_, err := m.RateEpisode(ctx, rated.ID, alice.ID, 10, "")
	require.NoError(t, err)
	_, err = m.RateEpisode(ctx, rated.ID, bob.ID, 6, "")
	require.NoError(t, err)

	result, err := m.RateEpisode(ctx, other.ID, alice.ID, 4, "")
	require.NoError(t, err)

	// episode 1 averages 8, episode 2 averages 4, episode 3 is excluded
	assert.Equal(t, 4.0, result.EpisodeRating)
	assert.Equal(t, 6.0, result.AnimeRating)

	got, err := store.GetAnime(ctx, anime.ID)
	require.NoError(t, err)
	require.NotNil(t, got.AverageRating)
	assert.Equal(t, 6.0, *got.AverageRating)
}

func TestRateEpisode_RejectsOutOfRange(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)
	m, _, _ := newTestManager(t, store)

	anime := seedAnime(t, store, "Cowboy Bebop", 1)
	ep := seedEpisode(t, store, anime.ID, 1)
	user := seedUser(t, store, "spike@example.com")

	for _, value := range []int{0, -1, 11, 100} {
		_, err := m.RateEpisode(ctx, ep.ID, user.ID, value, "")
		var verr ValidationError
		require.ErrorAs(t, err, &verr)
	}

	// no side effects
	got, err := store.GetEpisode(ctx, ep.ID)
	require.NoError(t, err)
	assert.Empty(t, got.UserRatings)
	assert.Nil(t, got.AverageRating)
}

func TestRateEpisode_UnknownEpisode(t *testing.T) {
	store := newMemoryStore(t)
	m, _, _ := newTestManager(t, store)

	user := seedUser(t, store, "spike@example.com")

	_, err := m.RateEpisode(context.Background(), primitive.NewObjectID(), user.ID, 5, "")
	var nferr NotFoundError
	require.ErrorAs(t, err, &nferr)
}

func TestRateAnime(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)
	m, _, _ := newTestManager(t, store)

	anime := seedAnime(t, store, "Cowboy Bebop", 1)
	alice := seedUser(t, store, "alice@example.com")
	bob := seedUser(t, store, "bob@example.com")

	_, err := m.RateAnime(ctx, anime.ID, alice.ID, 9, "")
	require.NoError(t, err)

	result, err := m.RateAnime(ctx, anime.ID, bob.ID, 6, "")
	require.NoError(t, err)
	assert.Equal(t, 7.5, result.AverageRating)

	got, err := store.GetAnime(ctx, anime.ID)
	require.NoError(t, err)
	assert.Len(t, got.UserRatings, 2)
}

func TestRateAnime_DoesNotTouchEpisodes(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)
	m, _, _ := newTestManager(t, store)

	anime := seedAnime(t, store, "Cowboy Bebop", 1)
	ep := seedEpisode(t, store, anime.ID, 1)
	user := seedUser(t, store, "spike@example.com")

	_, err := m.RateAnime(ctx, anime.ID, user.ID, 9, "")
	require.NoError(t, err)

	got, err := store.GetEpisode(ctx, ep.ID)
	require.NoError(t, err)
	assert.Empty(t, got.UserRatings)
	assert.Nil(t, got.AverageRating)
}

func TestDisplayRating(t *testing.T) {
	assert.Equal(t, 0.0, displayRating(nil))
	assert.Equal(t, 7.3, displayRating(ptr(7.333333)))
	assert.Equal(t, 7.7, displayRating(ptr(7.666666)))
}
