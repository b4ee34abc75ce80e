// Package mal is a typed client for the MyAnimeList v2 API, the ranking and
// details provider for catalog sync.
package mal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	mhttp "github.com/kiyora/animehub/pkg/http"
)

const rankingFields = "id,title,main_picture,alternative_titles,start_date,end_date,synopsis,mean,rank,popularity,num_episodes,source,rating,genres,studios,media_type,status"

type ClientInterface interface {
	ListRanking(ctx context.Context, limit, offset int) ([]AnimeEntry, error)
	GetAnimeDetails(ctx context.Context, id int) (*AnimeEntry, error)
}

type Client struct {
	baseURL  string
	clientID string
	http     mhttp.HTTPClient
}

type Option func(*Client)

// WithHTTPClient overrides the http client, mostly for tests.
func WithHTTPClient(c mhttp.HTTPClient) Option {
	return func(client *Client) {
		client.http = c
	}
}

// New creates a mal client. The client id is injected here rather than read
// from ambient state so tests can construct isolated clients.
func New(baseURL, clientID string, opts ...Option) (*Client, error) {
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid mal base url: %w", err)
	}

	c := &Client{
		baseURL:  baseURL,
		clientID: clientID,
		http:     mhttp.NewRateLimitedHTTPClient(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// AnimeEntry is the normalized shape of a MAL anime record.
type AnimeEntry struct {
	MALID         int
	Title         string
	TitleEnglish  string
	TitleJapanese string
	Synopsis      string
	Poster        string
	Type          string
	Status        string
	StartDate     string
	EndDate       string
	Genres        []string
	Studios       []string
	Source        string
	Popularity    int
	Rank          int
	NumEpisodes   int
}

type namedRef struct {
	Name string `json:"name"`
}

type animeNode struct {
	ID                int    `json:"id"`
	Title             string `json:"title"`
	AlternativeTitles struct {
		En string `json:"en"`
		Ja string `json:"ja"`
	} `json:"alternative_titles"`
	Synopsis    string `json:"synopsis"`
	MainPicture struct {
		Medium string `json:"medium"`
		Large  string `json:"large"`
	} `json:"main_picture"`
	MediaType   string     `json:"media_type"`
	Status      string     `json:"status"`
	StartDate   string     `json:"start_date"`
	EndDate     string     `json:"end_date"`
	Genres      []namedRef `json:"genres"`
	Studios     []namedRef `json:"studios"`
	Source      string     `json:"source"`
	Popularity  int        `json:"popularity"`
	Rank        int        `json:"rank"`
	NumEpisodes int        `json:"num_episodes"`
}

type rankingResponse struct {
	Data []struct {
		Node    animeNode `json:"node"`
		Ranking struct {
			Rank int `json:"rank"`
		} `json:"ranking"`
	} `json:"data"`
}

func (n animeNode) toEntry() AnimeEntry {
	entry := AnimeEntry{
		MALID:         n.ID,
		Title:         n.Title,
		TitleEnglish:  n.AlternativeTitles.En,
		TitleJapanese: n.AlternativeTitles.Ja,
		Synopsis:      n.Synopsis,
		Type:          n.MediaType,
		Status:        n.Status,
		StartDate:     n.StartDate,
		EndDate:       n.EndDate,
		Source:        n.Source,
		Popularity:    n.Popularity,
		Rank:          n.Rank,
		NumEpisodes:   n.NumEpisodes,
	}

	entry.Poster = n.MainPicture.Large
	if entry.Poster == "" {
		entry.Poster = n.MainPicture.Medium
	}

	for _, g := range n.Genres {
		entry.Genres = append(entry.Genres, g.Name)
	}
	for _, s := range n.Studios {
		entry.Studios = append(entry.Studios, s.Name)
	}

	return entry
}

// ListRanking returns the top anime by rank, normalized.
func (c *Client) ListRanking(ctx context.Context, limit, offset int) ([]AnimeEntry, error) {
	q := url.Values{}
	q.Set("ranking_type", "all")
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	q.Set("fields", rankingFields)

	var ranking rankingResponse
	if err := c.get(ctx, "/anime/ranking", q, &ranking); err != nil {
		return nil, err
	}

	entries := make([]AnimeEntry, 0, len(ranking.Data))
	for _, item := range ranking.Data {
		entry := item.Node.toEntry()
		if entry.Rank == 0 {
			entry.Rank = item.Ranking.Rank
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// GetAnimeDetails returns a single anime by MAL id, normalized.
func (c *Client) GetAnimeDetails(ctx context.Context, id int) (*AnimeEntry, error) {
	q := url.Values{}
	q.Set("fields", rankingFields)

	var node animeNode
	if err := c.get(ctx, fmt.Sprintf("/anime/%d", id), q, &node); err != nil {
		return nil, err
	}

	entry := node.toEntry()
	return &entry, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to build mal request: %w", err)
	}
	req.Header.Set("X-MAL-CLIENT-ID", c.clientID)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("mal request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("mal request returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode mal response: %w", err)
	}

	return nil
}
