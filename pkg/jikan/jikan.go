// Package jikan is a typed client for the Jikan v4 API, the primary episode
// listing provider.
package jikan

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	mhttp "github.com/kiyora/animehub/pkg/http"
)

type ClientInterface interface {
	GetAnimeEpisodes(ctx context.Context, malID int) ([]Episode, error)
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

// Episode is a normalized episode candidate. Number is always set; the
// remaining fields are whatever the provider had.
type Episode struct {
	Number   int
	Title    string
	Synopsis string
	AirDate  *time.Time
	Duration string
}

type rawEpisode struct {
	MalID    int    `json:"mal_id"`
	Episode  int    `json:"episode"`
	Title    string `json:"title"`
	Synopsis string `json:"synopsis"`
	Aired    string `json:"aired"`
	Duration string `json:"duration"`
}

type episodesResponse struct {
	Data []rawEpisode `json:"data"`
}

// GetAnimeEpisodes lists episodes for a MAL anime id. Episode numbering is
// normalized from the first non-zero of mal_id, episode, or the positional
// index.
func (c *Client) GetAnimeEpisodes(ctx context.Context, malID int) ([]Episode, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/anime/%d/episodes", c.baseURL, malID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build jikan request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("jikan request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("jikan request returned status %d", resp.StatusCode)
	}

	var body episodesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode jikan response: %w", err)
	}

	episodes := make([]Episode, 0, len(body.Data))
	for i, raw := range body.Data {
		episode := Episode{
			Number:   episodeNumber(raw, i),
			Title:    raw.Title,
			Synopsis: raw.Synopsis,
			Duration: raw.Duration,
		}

		if raw.Aired != "" {
			if aired, err := time.Parse(time.RFC3339, raw.Aired); err == nil {
				episode.AirDate = &aired
			}
		}

		episodes = append(episodes, episode)
	}

	return episodes, nil
}

// episodeNumber picks the first usable number in a fixed priority order.
func episodeNumber(raw rawEpisode, index int) int {
	if raw.MalID > 0 {
		return raw.MalID
	}
	if raw.Episode > 0 {
		return raw.Episode
	}
	return index + 1
}
