// Package kitsu is a typed client for the Kitsu edge API, the secondary
// episode metadata provider. Kitsu ids are unrelated to MAL ids, so callers
// join the two catalogs by title search.
package kitsu

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	mhttp "github.com/kiyora/animehub/pkg/http"
)

type ClientInterface interface {
	SearchAnime(ctx context.Context, title string) ([]Series, error)
	GetEpisodes(ctx context.Context, seriesID string) ([]Episode, error)
}

type Client struct {
	baseURL string
	http    mhttp.HTTPClient
}

type Option func(*Client)

// WithHTTPClient overrides the http client, mostly for tests.
func WithHTTPClient(c mhttp.HTTPClient) Option {
	return func(client *Client) {
		client.http = c
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    mhttp.NewRateLimitedHTTPClient(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Series is a search hit in the Kitsu identifier space.
type Series struct {
	ID             string
	CanonicalTitle string
}

// Episode carries the secondary metadata Kitsu is queried for.
type Episode struct {
	Number         int
	CanonicalTitle string
	Synopsis       string
	Thumbnail      string
}

type seriesDocument struct {
	Data []struct {
		ID         string `json:"id"`
		Attributes struct {
			CanonicalTitle string `json:"canonicalTitle"`
		} `json:"attributes"`
	} `json:"data"`
}

type episodeDocument struct {
	Data []struct {
		Attributes struct {
			Number         int    `json:"number"`
			CanonicalTitle string `json:"canonicalTitle"`
			Synopsis       string `json:"synopsis"`
			Thumbnail      struct {
				Original string `json:"original"`
			} `json:"thumbnail"`
		} `json:"attributes"`
	} `json:"data"`
}

// SearchAnime returns candidate series for a title, best match first.
func (c *Client) SearchAnime(ctx context.Context, title string) ([]Series, error) {
	q := url.Values{}
	q.Set("filter[text]", title)
	q.Set("page[limit]", "5")

	var doc seriesDocument
	if err := c.get(ctx, "/anime", q, &doc); err != nil {
		return nil, err
	}

	series := make([]Series, 0, len(doc.Data))
	for _, d := range doc.Data {
		series = append(series, Series{ID: d.ID, CanonicalTitle: d.Attributes.CanonicalTitle})
	}

	return series, nil
}

// GetEpisodes lists episodes for a Kitsu series id, sorted by number.
func (c *Client) GetEpisodes(ctx context.Context, seriesID string) ([]Episode, error) {
	q := url.Values{}
	q.Set("filter[mediaId]", seriesID)
	q.Set("page[limit]", "50")
	q.Set("sort", "number")

	var doc episodeDocument
	if err := c.get(ctx, "/episodes", q, &doc); err != nil {
		return nil, err
	}

	episodes := make([]Episode, 0, len(doc.Data))
	for _, d := range doc.Data {
		episodes = append(episodes, Episode{
			Number:         d.Attributes.Number,
			CanonicalTitle: d.Attributes.CanonicalTitle,
			Synopsis:       d.Attributes.Synopsis,
			Thumbnail:      d.Attributes.Thumbnail.Original,
		})
	}

	return episodes, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to build kitsu request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.api+json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("kitsu request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("kitsu request returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode kitsu response: %w", err)
	}

	return nil
}
