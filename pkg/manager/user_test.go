package manager

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiyora/animehub/pkg/auth"
)

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)
	m, _, _ := newTestManager(t, store)

	user, err := m.Register(ctx, RegisterInput{
		Name:     "Rakka",
		Email:    "rakka@example.com",
		Password: "charcoal-feathers",
	})
	require.NoError(t, err)
	assert.NotEqual(t, "charcoal-feathers", user.Password)
	assert.True(t, auth.CheckPassword(user.Password, "charcoal-feathers"))

	loggedIn, err := m.Login(ctx, "rakka@example.com", "charcoal-feathers")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	_, err = m.Login(ctx, "rakka@example.com", "wrong")
	var verr ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = m.Login(ctx, "nobody@example.com", "whatever")
	require.ErrorAs(t, err, &verr)
}

func TestRegister_Validation(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)
	m, _, _ := newTestManager(t, store)

	var verr ValidationError

	_, err := m.Register(ctx, RegisterInput{Name: "x", Email: "not-an-email", Password: "long enough"})
	require.ErrorAs(t, err, &verr)

	_, err = m.Register(ctx, RegisterInput{Name: "x", Email: "ok@example.com", Password: "short"})
	require.ErrorAs(t, err, &verr)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)
	m, _, _ := newTestManager(t, store)

	input := RegisterInput{Name: "Rakka", Email: "rakka@example.com", Password: "charcoal-feathers"}

	_, err := m.Register(ctx, input)
	require.NoError(t, err)

	_, err = m.Register(ctx, input)
	var verr ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestWatchlist(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)
	m, _, _ := newTestManager(t, store)

	user := seedUser(t, store, "viewer@example.com")
	anime := seedAnime(t, store, "Haibane Renmei", 0)

	require.NoError(t, m.AddToWatchlist(ctx, user.ID, anime.ID))
	// adding twice is a no-op
	require.NoError(t, m.AddToWatchlist(ctx, user.ID, anime.ID))

	watchlist, err := m.GetWatchlist(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, watchlist, 1)
	assert.Equal(t, anime.ID, watchlist[0].ID)

	require.NoError(t, m.RemoveFromWatchlist(ctx, user.ID, anime.ID))

	watchlist, err = m.GetWatchlist(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, watchlist)
}

func TestWatchlist_SkipsDeletedAnime(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)
	m, _, _ := newTestManager(t, store)

	user := seedUser(t, store, "viewer@example.com")
	kept := seedAnime(t, store, "Kept", 0)
	deleted := seedAnime(t, store, "Deleted", 0)

	require.NoError(t, m.AddToWatchlist(ctx, user.ID, kept.ID))
	require.NoError(t, m.AddToWatchlist(ctx, user.ID, deleted.ID))
	require.NoError(t, m.DeleteAnime(ctx, deleted.ID))

	watchlist, err := m.GetWatchlist(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, watchlist, 1)
	assert.Equal(t, kept.ID, watchlist[0].ID)
}

func TestGetProfile(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)
	m, _, _ := newTestManager(t, store)

	user := seedUser(t, store, "viewer@example.com")
	anime := seedAnime(t, store, "Haibane Renmei", 0)
	ep := seedEpisode(t, store, anime.ID, 1)

	_, err := m.RateEpisode(ctx, ep.ID, user.ID, 9, "")
	require.NoError(t, err)
	require.NoError(t, m.AddToWatchlist(ctx, user.ID, anime.ID))

	profile, err := m.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, profile.User.ID)
	assert.Equal(t, int64(1), profile.RatingCount)
	assert.Equal(t, 1, profile.WatchlistSize)
}
