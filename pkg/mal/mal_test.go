package mal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListRanking(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/anime/ranking", r.URL.Path)
		assert.Equal(t, "test-client-id", r.Header.Get("X-MAL-CLIENT-ID"))
		assert.Equal(t, "all", r.URL.Query().Get("ranking_type"))
		assert.Equal(t, "2", r.URL.Query().Get("limit"))
		w.Write([]byte(`{
			"data": [
				{
					"node": {
						"id": 52991,
						"title": "Sousou no Frieren",
						"alternative_titles": {"en": "Frieren: Beyond Journey's End"},
						"main_picture": {"medium": "https://cdn/m.jpg", "large": "https://cdn/l.jpg"},
						"media_type": "tv",
						"num_episodes": 28,
						"genres": [{"name": "Adventure"}, {"name": "Fantasy"}],
						"studios": [{"name": "Madhouse"}]
					},
					"ranking": {"rank": 1}
				},
				{
					"node": {"id": 5114, "title": "Fullmetal Alchemist: Brotherhood", "main_picture": {"medium": "https://cdn/fma-m.jpg"}},
					"ranking": {"rank": 2}
				}
			]
		}`))
	}))
	defer srv.Close()

	client, err := New(srv.URL, "test-client-id")
	require.NoError(t, err)

	entries, err := client.ListRanking(context.Background(), 2, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, 52991, entries[0].MALID)
	assert.Equal(t, "Frieren: Beyond Journey's End", entries[0].TitleEnglish)
	assert.Equal(t, "https://cdn/l.jpg", entries[0].Poster)
	assert.Equal(t, []string{"Adventure", "Fantasy"}, entries[0].Genres)
	assert.Equal(t, []string{"Madhouse"}, entries[0].Studios)
	assert.Equal(t, 1, entries[0].Rank)

	// medium picture fallback and rank promoted from the ranking envelope
	assert.Equal(t, "https://cdn/fma-m.jpg", entries[1].Poster)
	assert.Equal(t, 2, entries[1].Rank)
}

func TestGetAnimeDetails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/anime/52991", r.URL.Path)
		w.Write([]byte(`{"id": 52991, "title": "Sousou no Frieren", "status": "finished_airing"}`))
	}))
	defer srv.Close()

	client, err := New(srv.URL, "test-client-id")
	require.NoError(t, err)

	entry, err := client.GetAnimeDetails(context.Background(), 52991)
	require.NoError(t, err)
	assert.Equal(t, "Sousou no Frieren", entry.Title)
	assert.Equal(t, "finished_airing", entry.Status)
}

func TestListRanking_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	client, err := New(srv.URL, "bad-id")
	require.NoError(t, err)

	_, err = client.ListRanking(context.Background(), 10, 0)
	assert.Error(t, err)
}
