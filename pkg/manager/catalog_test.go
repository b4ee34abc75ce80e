package manager

import (
	"context"
	"fmt"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiyora/animehub/pkg/pagination"
	"github.com/kiyora/animehub/pkg/storage"
)

// rateAnimeEpisode seeds one rated episode under a fresh anime so the
// catalog rollup sees the given average.
func seedRatedAnime(t *testing.T, m Manager, store storage.Storage, title string, rating int) *storage.Anime {
	t.Helper()

	anime := seedAnime(t, store, title, 0)
	ep := seedEpisode(t, store, anime.ID, 1)
	user := seedUser(t, store, fmt.Sprintf("%s@example.com", anime.ID.Hex()))

	_, err := m.RateEpisode(context.Background(), ep.ID, user.ID, rating, "")
	require.NoError(t, err)

	return anime
}

func TestListAnime_Pagination(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)
	m, _, _ := newTestManager(t, store)

	for i := 1; i <= 25; i++ {
		seedRatedAnime(t, m, store, fmt.Sprintf("Anime %02d", i), (i%10)+1)
	}

	page1, err := m.ListAnime(ctx, pagination.Params{Page: 1, PageSize: 20}, "")
	require.NoError(t, err)
	require.Len(t, page1.Anime, 20)
	assert.Equal(t, pagination.Meta{Current: 1, Total: 25, Pages: 2}, page1.Pagination)

	for i, item := range page1.Anime {
		assert.Equal(t, i+1, item.Rank)
		if i > 0 {
			assert.LessOrEqual(t, item.AverageRating, page1.Anime[i-1].AverageRating)
		}
	}

	page2, err := m.ListAnime(ctx, pagination.Params{Page: 2, PageSize: 20}, "")
	require.NoError(t, err)
	require.Len(t, page2.Anime, 5)
	assert.Equal(t, 21, page2.Anime[0].Rank)
	assert.Equal(t, 25, page2.Anime[4].Rank)
	assert.LessOrEqual(t, page2.Anime[0].AverageRating, page1.Anime[19].AverageRating)

	// out-of-range pages are empty, not an error
	page3, err := m.ListAnime(ctx, pagination.Params{Page: 3, PageSize: 20}, "")
	require.NoError(t, err)
	assert.Empty(t, page3.Anime)
	assert.Equal(t, pagination.Meta{Current: 3, Total: 25, Pages: 2}, page3.Pagination)
}

func TestListAnime_SearchFilter(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)
	m, _, _ := newTestManager(t, store)

	seedRatedAnime(t, m, store, "Cowboy Bebop", 9)
	seedRatedAnime(t, m, store, "Space Dandy", 7)
	seedRatedAnime(t, m, store, "Samurai Champloo", 8)

	result, err := m.ListAnime(ctx, pagination.Params{Page: 1, PageSize: 20}, "cowboy")
	require.NoError(t, err)
	require.Len(t, result.Anime, 1)
	assert.Equal(t, "Cowboy Bebop", result.Anime[0].Title)
	assert.Equal(t, 1, result.Anime[0].Rank)
	assert.Equal(t, 1, result.Pagination.Total)
}

func TestListAnime_Ranking(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)
	m, _, _ := newTestManager(t, store)

	seedRatedAnime(t, m, store, "Mushishi", 10)
	seedRatedAnime(t, m, store, "Ergo Proxy", 6)
	seedRatedAnime(t, m, store, "Texhnolyze", 8)
	seedAnime(t, store, "Unrated Show", 0)

	result, err := m.ListAnime(ctx, pagination.Params{Page: 1, PageSize: 10}, "")
	require.NoError(t, err)
	require.Len(t, result.Anime, 4)

	ranking := make([]string, 0, len(result.Anime))
	for _, item := range result.Anime {
		ranking = append(ranking, fmt.Sprintf("#%d %s (%.1f)", item.Rank, item.Title, item.AverageRating))
	}

	snaps.MatchSnapshot(t, ranking)

	// unrated anime render a zero rating and sort last
	assert.Equal(t, "Unrated Show", result.Anime[3].Title)
	assert.Equal(t, 0.0, result.Anime[3].AverageRating)
}

func TestGetAnime(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)
	m, _, _ := newTestManager(t, store)

	anime := seedAnime(t, store, "Haibane Renmei", 387)
	ep := seedEpisode(t, store, anime.ID, 1)
	seedEpisode(t, store, anime.ID, 2)
	user := seedUser(t, store, "rakka@example.com")

	_, err := m.RateEpisode(ctx, ep.ID, user.ID, 9, "")
	require.NoError(t, err)

	detail, err := m.GetAnime(ctx, anime.ID)
	require.NoError(t, err)
	assert.Equal(t, "Haibane Renmei", detail.Anime.Title)
	assert.Len(t, detail.Episodes, 2)
	assert.Equal(t, 9.0, detail.AverageRating)
}

func TestSearchAnime(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)
	m, _, _ := newTestManager(t, store)

	a := seedAnime(t, store, "Neon Genesis Evangelion", 30)
	_, err := store.UpdateAnime(ctx, a.ID, storage.AnimeUpdate{
		Genres: ptr([]string{"Mecha", "Drama"}),
	})
	require.NoError(t, err)
	seedAnime(t, store, "Serial Experiments Lain", 339)

	byTitle, err := m.SearchAnime(ctx, "evangelion")
	require.NoError(t, err)
	require.Len(t, byTitle, 1)

	byGenre, err := m.SearchAnime(ctx, "mecha")
	require.NoError(t, err)
	require.Len(t, byGenre, 1)
	assert.Equal(t, a.ID, byGenre[0].ID)

	_, err = m.SearchAnime(ctx, "  ")
	var verr ValidationError
	require.ErrorAs(t, err, &verr)
}
