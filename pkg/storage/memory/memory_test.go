package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/kiyora/animehub/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestReplaceEpisodeRating_SingleTuplePerUser(t *testing.T) {
	ctx := context.Background()
	store := New()

	animeID, err := store.CreateAnime(ctx, storage.Anime{Title: "test anime"})
	require.NoError(t, err)

	episodeID, err := store.CreateEpisode(ctx, storage.Episode{AnimeID: animeID, Number: 1, Title: "test episode"})
	require.NoError(t, err)

	userID := primitive.NewObjectID()

	ep, err := store.ReplaceEpisodeRating(ctx, episodeID, userID, 8)
	require.NoError(t, err)
	require.Len(t, ep.UserRatings, 1)
	assert.Equal(t, 8, ep.UserRatings[0].Rating)

	ep, err = store.ReplaceEpisodeRating(ctx, episodeID, userID, 3)
	require.NoError(t, err)
	require.Len(t, ep.UserRatings, 1)
	assert.Equal(t, 3, ep.UserRatings[0].Rating)
}

func TestReplaceEpisodeRating_ConcurrentWriters(t *testing.T) {
	ctx := context.Background()
	store := New()

	animeID, err := store.CreateAnime(ctx, storage.Anime{Title: "test anime"})
	require.NoError(t, err)

	episodeID, err := store.CreateEpisode(ctx, storage.Episode{AnimeID: animeID, Number: 1, Title: "test episode"})
	require.NoError(t, err)

	userID := primitive.NewObjectID()

	var wg sync.WaitGroup
	for i := 1; i <= 10; i++ {
		wg.Add(1)
		go func(rating int) {
			defer wg.Done()
			_, err := store.ReplaceEpisodeRating(ctx, episodeID, userID, rating)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	ep, err := store.GetEpisode(ctx, episodeID)
	require.NoError(t, err)
	assert.Len(t, ep.UserRatings, 1)
}

func TestUpsertRating_IdempotentPerPair(t *testing.T) {
	ctx := context.Background()
	store := New()

	userID := primitive.NewObjectID()
	episodeID := primitive.NewObjectID()

	first, err := store.UpsertRating(ctx, storage.Rating{UserID: userID, EpisodeID: &episodeID, Rating: 8})
	require.NoError(t, err)

	second, err := store.UpsertRating(ctx, storage.Rating{UserID: userID, EpisodeID: &episodeID, Rating: 3})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 3, second.Rating)

	count, err := store.CountRatingsByUser(ctx, userID, storage.RatingKindEpisode)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestUpsertRating_RequiresTarget(t *testing.T) {
	_, err := New().UpsertRating(context.Background(), storage.Rating{UserID: primitive.NewObjectID(), Rating: 5})
	assert.Error(t, err)
}

func TestUpsertRating_RejectsDoubleTarget(t *testing.T) {
	animeID := primitive.NewObjectID()
	episodeID := primitive.NewObjectID()
	_, err := New().UpsertRating(context.Background(), storage.Rating{
		UserID:    primitive.NewObjectID(),
		AnimeID:   &animeID,
		EpisodeID: &episodeID,
		Rating:    5,
	})
	assert.Error(t, err)
}

func TestWatchlist_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := New()

	userID, err := store.CreateUser(ctx, storage.User{Name: "test", Email: "test@example.com"})
	require.NoError(t, err)

	animeID := primitive.NewObjectID()

	require.NoError(t, store.AddToWatchlist(ctx, userID, animeID))
	require.NoError(t, store.AddToWatchlist(ctx, userID, animeID))

	user, err := store.GetUser(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, user.Watchlist, 1)

	require.NoError(t, store.RemoveFromWatchlist(ctx, userID, animeID))
	user, err = store.GetUser(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, user.Watchlist)
}

func TestSetAverage_Nullable(t *testing.T) {
	ctx := context.Background()
	store := New()

	animeID, err := store.CreateAnime(ctx, storage.Anime{Title: "test anime"})
	require.NoError(t, err)

	avg := 7.5
	require.NoError(t, store.SetAnimeAverage(ctx, animeID, &avg))

	anime, err := store.GetAnime(ctx, animeID)
	require.NoError(t, err)
	require.NotNil(t, anime.AverageRating)
	assert.Equal(t, 7.5, *anime.AverageRating)

	require.NoError(t, store.SetAnimeAverage(ctx, animeID, nil))
	anime, err = store.GetAnime(ctx, animeID)
	require.NoError(t, err)
	assert.Nil(t, anime.AverageRating)
}

func TestGetEpisodeByNumber(t *testing.T) {
	ctx := context.Background()
	store := New()

	animeID, err := store.CreateAnime(ctx, storage.Anime{Title: "test anime"})
	require.NoError(t, err)

	_, err = store.CreateEpisode(ctx, storage.Episode{AnimeID: animeID, Number: 2, Title: "second"})
	require.NoError(t, err)

	ep, err := store.GetEpisodeByNumber(ctx, animeID, 2)
	require.NoError(t, err)
	assert.Equal(t, "second", ep.Title)

	_, err = store.GetEpisodeByNumber(ctx, animeID, 3)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
