package manager

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kiyora/animehub/pkg/storage"
)

func TestCreateAnime(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)
	m, _, _ := newTestManager(t, store)

	admin := seedUser(t, store, "admin@example.com")

	anime, err := m.CreateAnime(ctx, CreateAnimeInput{
		Title:  "Kaiba",
		Type:   "tv",
		Genres: []string{"Sci-Fi"},
	}, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kaiba", anime.Title)
	require.NotNil(t, anime.CreatedBy)
	assert.Equal(t, admin.ID, *anime.CreatedBy)

	_, err = m.CreateAnime(ctx, CreateAnimeInput{}, admin.ID)
	var verr ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestCreateAnime_DuplicateExternalID(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)
	m, _, _ := newTestManager(t, store)

	admin := seedUser(t, store, "admin@example.com")
	seedAnime(t, store, "Existing", 42)

	_, err := m.CreateAnime(ctx, CreateAnimeInput{Title: "Duplicate", MALID: ptr(42)}, admin.ID)
	var verr ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestAddEpisode_AuthoredProvenance(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)
	m, _, _ := newTestManager(t, store)

	anime := seedAnime(t, store, "Kaiba", 0)

	ep, err := m.AddEpisode(ctx, anime.ID, AddEpisodeInput{
		Number:   1,
		Title:    "Memory Chip",
		Synopsis: "A boy wakes with no memories.",
	})
	require.NoError(t, err)
	assert.Equal(t, storage.ProvenanceAuthored, ep.TitleProvenance)
	assert.Equal(t, storage.ProvenanceAuthored, ep.SynopsisProvenance)

	got, err := store.GetAnime(ctx, anime.ID)
	require.NoError(t, err)
	assert.Len(t, got.EpisodeIDs, 1)
}

func TestAddEpisode_GeneratedPlaceholders(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)
	m, _, _ := newTestManager(t, store)

	anime := seedAnime(t, store, "Kaiba", 0)

	ep, err := m.AddEpisode(ctx, anime.ID, AddEpisodeInput{Number: 2})
	require.NoError(t, err)
	assert.Equal(t, "Episode 2", ep.Title)
	assert.Equal(t, storage.ProvenanceGenerated, ep.TitleProvenance)
	assert.Equal(t, "Episode 2 of Kaiba", ep.Synopsis)
}

func TestAddEpisode_DuplicateNumber(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)
	m, _, _ := newTestManager(t, store)

	anime := seedAnime(t, store, "Kaiba", 0)
	seedEpisode(t, store, anime.ID, 1)

	_, err := m.AddEpisode(ctx, anime.ID, AddEpisodeInput{Number: 1})
	var verr ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestUpdateEpisode_MarksAuthored(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)
	m, _, _ := newTestManager(t, store)

	anime := seedAnime(t, store, "Kaiba", 0)
	ep := seedEpisode(t, store, anime.ID, 1)

	updated, err := m.UpdateEpisode(ctx, ep.ID, UpdateEpisodeInput{
		Synopsis: ptr("Rewritten by hand."),
	})
	require.NoError(t, err)
	assert.Equal(t, "Rewritten by hand.", updated.Synopsis)
	assert.Equal(t, storage.ProvenanceAuthored, updated.SynopsisProvenance)

	_, err = m.UpdateEpisode(ctx, ep.ID, UpdateEpisodeInput{Title: ptr("  ")})
	var verr ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestDeleteAnime(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)
	m, _, _ := newTestManager(t, store)

	anime := seedAnime(t, store, "Kaiba", 0)
	ep := seedEpisode(t, store, anime.ID, 1)

	require.NoError(t, m.DeleteAnime(ctx, anime.ID))

	_, err := store.GetAnime(ctx, anime.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// episodes are not cascaded
	_, err = store.GetEpisode(ctx, ep.ID)
	assert.NoError(t, err)

	err = m.DeleteAnime(ctx, primitive.NewObjectID())
	var nferr NotFoundError
	require.ErrorAs(t, err, &nferr)
}

func TestGetStats(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)
	m, _, _ := newTestManager(t, store)

	anime := seedAnime(t, store, "Kaiba", 0)
	ep := seedEpisode(t, store, anime.ID, 1)
	user := seedUser(t, store, "viewer@example.com")

	_, err := m.RateEpisode(ctx, ep.ID, user.ID, 7, "")
	require.NoError(t, err)
	_, err = m.RateAnime(ctx, anime.ID, user.ID, 8, "")
	require.NoError(t, err)

	stats, err := m.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.AnimeCount)
	assert.Equal(t, int64(1), stats.UserCount)
	assert.Equal(t, int64(2), stats.RatingCount)
	assert.Equal(t, int64(1), stats.AnimeRatings)
	assert.Equal(t, int64(1), stats.EpisodeRatings)
	assert.Equal(t, "1 anime, 1 users, 2 ratings", stats.Summary)
}
