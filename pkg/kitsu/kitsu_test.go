package kitsu

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchAnime(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/anime", r.URL.Path)
		assert.Equal(t, "Frieren", r.URL.Query().Get("filter[text]"))
		assert.Equal(t, "application/vnd.api+json", r.Header.Get("Accept"))
		w.Write([]byte(`{
			"data": [
				{"id": "46474", "attributes": {"canonicalTitle": "Sousou no Frieren"}},
				{"id": "1", "attributes": {"canonicalTitle": "Frieren OVA"}}
			]
		}`))
	}))
	defer srv.Close()

	client := New(srv.URL)

	series, err := client.SearchAnime(context.Background(), "Frieren")
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.Equal(t, "46474", series[0].ID)
	assert.Equal(t, "Sousou no Frieren", series[0].CanonicalTitle)
}

func TestGetEpisodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/episodes", r.URL.Path)
		assert.Equal(t, "46474", r.URL.Query().Get("filter[mediaId]"))
		w.Write([]byte(`{
			"data": [
				{"attributes": {"number": 1, "canonicalTitle": "The Journey's End", "synopsis": "After the defeat.", "thumbnail": {"original": "https://media.kitsu.app/ep1.jpg"}}},
				{"attributes": {"number": 2, "canonicalTitle": "It Didn't Have to Be Magic"}}
			]
		}`))
	}))
	defer srv.Close()

	client := New(srv.URL)

	episodes, err := client.GetEpisodes(context.Background(), "46474")
	require.NoError(t, err)
	require.Len(t, episodes, 2)
	assert.Equal(t, "The Journey's End", episodes[0].CanonicalTitle)
	assert.Equal(t, "https://media.kitsu.app/ep1.jpg", episodes[0].Thumbnail)
	assert.Empty(t, episodes[1].Thumbnail)
}

func TestGetEpisodes_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	client := New(srv.URL)

	_, err := client.GetEpisodes(context.Background(), "1")
	assert.Error(t, err)
}
