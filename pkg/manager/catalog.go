package manager

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kiyora/animehub/pkg/pagination"
	"github.com/kiyora/animehub/pkg/storage"
)

// ListAnime returns the ranked catalog view. The headline rating of each
// anime is the rollup over its rated episodes computed here, not the stored
// average; sorting and rank assignment happen over the whole filtered set
// before pagination so page boundaries never distort the order.
func (m Manager) ListAnime(ctx context.Context, params pagination.Params, search string) (*AnimeListResult, error) {
	animes, err := m.storage.ListAnime(ctx)
	if err != nil {
		return nil, fmt.Errorf("list anime: %w", err)
	}

	if search != "" {
		needle := strings.ToLower(search)
		filtered := animes[:0]
		for _, a := range animes {
			if strings.Contains(strings.ToLower(a.Title), needle) ||
				strings.Contains(strings.ToLower(a.TitleEnglish), needle) {
				filtered = append(filtered, a)
			}
		}
		animes = filtered
	}

	items := make([]AnimeListItem, 0, len(animes))
	for _, a := range animes {
		avg, err := m.episodeRollup(ctx, a.ID)
		if err != nil {
			return nil, err
		}

		items = append(items, AnimeListItem{
			ID:            a.ID.Hex(),
			Title:         a.Title,
			TitleEnglish:  a.TitleEnglish,
			Poster:        a.Poster,
			Type:          a.Type,
			Status:        a.Status,
			Genres:        a.Genres,
			EpisodeCount:  len(a.EpisodeIDs),
			AverageRating: displayRating(avg),
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].AverageRating > items[j].AverageRating
	})
	for i := range items {
		items[i].Rank = i + 1
	}

	return &AnimeListResult{
		Anime:      pagination.Slice(items, params),
		Pagination: params.BuildMeta(len(items)),
	}, nil
}

// GetAnime returns one anime with its episodes and the episode-derived
// rating.
func (m Manager) GetAnime(ctx context.Context, id primitive.ObjectID) (*AnimeDetail, error) {
	anime, err := m.storage.GetAnime(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, NotFoundError{Entity: "anime", ID: id.Hex()}
		}
		return nil, fmt.Errorf("get anime: %w", err)
	}

	episodes, err := m.storage.ListEpisodesByAnime(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list episodes: %w", err)
	}

	return &AnimeDetail{
		Anime:         anime,
		Episodes:      episodes,
		AverageRating: displayRating(meanOfEpisodes(episodes)),
	}, nil
}

// SearchAnime matches the term against titles and genres, case-insensitive.
func (m Manager) SearchAnime(ctx context.Context, term string) ([]*storage.Anime, error) {
	if strings.TrimSpace(term) == "" {
		return nil, ValidationError{Reason: "search term is empty"}
	}

	animes, err := m.storage.ListAnime(ctx)
	if err != nil {
		return nil, fmt.Errorf("list anime: %w", err)
	}

	needle := strings.ToLower(term)
	matches := make([]*storage.Anime, 0)
	for _, a := range animes {
		if strings.Contains(strings.ToLower(a.Title), needle) ||
			strings.Contains(strings.ToLower(a.TitleEnglish), needle) ||
			strings.Contains(strings.ToLower(a.TitleJapanese), needle) {
			matches = append(matches, a)
			continue
		}
		for _, g := range a.Genres {
			if strings.EqualFold(g, term) {
				matches = append(matches, a)
				break
			}
		}
	}

	return matches, nil
}

// episodeRollup is the unrounded mean of episode averages for one anime,
// nil when no episode is rated.
func (m Manager) episodeRollup(ctx context.Context, animeID primitive.ObjectID) (*float64, error) {
	episodes, err := m.storage.ListEpisodesByAnime(ctx, animeID)
	if err != nil {
		return nil, fmt.Errorf("list episodes for rollup: %w", err)
	}

	return meanOfEpisodes(episodes), nil
}

func meanOfEpisodes(episodes []*storage.Episode) *float64 {
	var sum float64
	var count int
	for _, e := range episodes {
		if e.AverageRating == nil {
			continue
		}
		sum += *e.AverageRating
		count++
	}

	if count == 0 {
		return nil
	}

	v := sum / float64(count)
	return &v
}
