package manager

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/kiyora/animehub/pkg/logger"
	"github.com/kiyora/animehub/pkg/storage"
)

// CreateAnimeInput is the admin payload for a new catalog entry.
type CreateAnimeInput struct {
	Title         string `validate:"required"`
	TitleEnglish  string
	TitleJapanese string
	Synopsis      string
	Poster        string
	Type          string
	Status        string
	MALID         *int
	Genres        []string
	Studios       []string
}

// CreateAnime adds a curated catalog entry.
func (m Manager) CreateAnime(ctx context.Context, input CreateAnimeInput, createdBy primitive.ObjectID) (*storage.Anime, error) {
	if err := m.validate.Struct(input); err != nil {
		return nil, ValidationError{Reason: "title is required"}
	}

	if input.MALID != nil {
		_, err := m.storage.GetAnimeByMALID(ctx, *input.MALID)
		if err == nil {
			return nil, ValidationError{Reason: fmt.Sprintf("anime with external id %d already exists", *input.MALID)}
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("lookup anime by external id: %w", err)
		}
	}

	now := time.Now()
	anime := storage.Anime{
		MALID:         input.MALID,
		Title:         input.Title,
		TitleEnglish:  input.TitleEnglish,
		TitleJapanese: input.TitleJapanese,
		Synopsis:      input.Synopsis,
		Poster:        input.Poster,
		Type:          input.Type,
		Status:        input.Status,
		Genres:        input.Genres,
		Studios:       input.Studios,
		EpisodeIDs:    []primitive.ObjectID{},
		UserRatings:   []storage.UserRating{},
		CreatedBy:     &createdBy,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	id, err := m.storage.CreateAnime(ctx, anime)
	if err != nil {
		return nil, fmt.Errorf("create anime: %w", err)
	}

	return m.storage.GetAnime(ctx, id)
}

// UpdateAnime patches descriptive fields of an anime.
func (m Manager) UpdateAnime(ctx context.Context, id primitive.ObjectID, update storage.AnimeUpdate) (*storage.Anime, error) {
	anime, err := m.storage.UpdateAnime(ctx, id, update)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, NotFoundError{Entity: "anime", ID: id.Hex()}
		}
		return nil, fmt.Errorf("update anime: %w", err)
	}

	return anime, nil
}

// DeleteAnime removes an anime from the catalog. Its episodes are left in
// place; see ListEpisodesByAnime for finding them afterwards.
func (m Manager) DeleteAnime(ctx context.Context, id primitive.ObjectID) error {
	log := logger.FromCtx(ctx)

	if err := m.storage.DeleteAnime(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return NotFoundError{Entity: "anime", ID: id.Hex()}
		}
		return fmt.Errorf("delete anime: %w", err)
	}

	log.Info("anime deleted", zap.String("anime", id.Hex()))
	return nil
}

// AddEpisodeInput is the admin payload for a manually authored episode.
type AddEpisodeInput struct {
	Number   int `validate:"min=1"`
	Title    string
	Synopsis string
	AirDate  *time.Time
	Duration string
}

// AddEpisode creates an episode under an anime with authored provenance, so
// later syncs never overwrite the admin's text.
func (m Manager) AddEpisode(ctx context.Context, animeID primitive.ObjectID, input AddEpisodeInput) (*storage.Episode, error) {
	if err := m.validate.Struct(input); err != nil {
		return nil, ValidationError{Reason: "episode number must be at least 1"}
	}

	anime, err := m.storage.GetAnime(ctx, animeID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, NotFoundError{Entity: "anime", ID: animeID.Hex()}
		}
		return nil, fmt.Errorf("get anime: %w", err)
	}

	if _, err := m.storage.GetEpisodeByNumber(ctx, animeID, input.Number); err == nil {
		return nil, ValidationError{Reason: fmt.Sprintf("episode %d already exists", input.Number)}
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("lookup episode: %w", err)
	}

	now := time.Now()
	episode := storage.Episode{
		AnimeID:     animeID,
		Number:      input.Number,
		AirDate:     input.AirDate,
		Duration:    input.Duration,
		UserRatings: []storage.UserRating{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if input.Title != "" {
		episode.Title = input.Title
		episode.TitleProvenance = storage.ProvenanceAuthored
	} else {
		episode.Title = fmt.Sprintf("Episode %d", input.Number)
		episode.TitleProvenance = storage.ProvenanceGenerated
	}

	if input.Synopsis != "" {
		episode.Synopsis = input.Synopsis
		episode.SynopsisProvenance = storage.ProvenanceAuthored
	} else {
		episode.Synopsis = fmt.Sprintf("Episode %d of %s", input.Number, anime.Title)
		episode.SynopsisProvenance = storage.ProvenanceGenerated
	}

	id, err := m.storage.CreateEpisode(ctx, episode)
	if err != nil {
		return nil, fmt.Errorf("create episode: %w", err)
	}

	if err := m.storage.AddEpisodesToAnime(ctx, animeID, []primitive.ObjectID{id}); err != nil {
		return nil, fmt.Errorf("append episode to anime: %w", err)
	}

	return m.storage.GetEpisode(ctx, id)
}

// UpdateEpisodeInput patches episode metadata by hand.
type UpdateEpisodeInput struct {
	Title    *string
	Synopsis *string
	AirDate  *time.Time
	Duration *string
}

// UpdateEpisode applies an admin edit. Edited titles and synopses are
// marked authored.
func (m Manager) UpdateEpisode(ctx context.Context, id primitive.ObjectID, input UpdateEpisodeInput) (*storage.Episode, error) {
	update := storage.EpisodeUpdate{
		AirDate:  input.AirDate,
		Duration: input.Duration,
	}

	authored := storage.ProvenanceAuthored
	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, ValidationError{Reason: "title cannot be blank"}
		}
		update.Title = input.Title
		update.TitleProvenance = &authored
	}
	if input.Synopsis != nil {
		if strings.TrimSpace(*input.Synopsis) == "" {
			return nil, ValidationError{Reason: "synopsis cannot be blank"}
		}
		update.Synopsis = input.Synopsis
		update.SynopsisProvenance = &authored
	}

	episode, err := m.storage.UpdateEpisode(ctx, id, update)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, NotFoundError{Entity: "episode", ID: id.Hex()}
		}
		return nil, fmt.Errorf("update episode: %w", err)
	}

	return episode, nil
}

// GetStats summarizes catalog and community size for the admin dashboard.
func (m Manager) GetStats(ctx context.Context) (*Stats, error) {
	animeCount, err := m.storage.CountAnime(ctx)
	if err != nil {
		return nil, fmt.Errorf("count anime: %w", err)
	}

	userCount, err := m.storage.CountUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	ratingCount, err := m.storage.CountRatings(ctx, storage.RatingKindAny)
	if err != nil {
		return nil, fmt.Errorf("count ratings: %w", err)
	}

	animeRatings, err := m.storage.CountRatings(ctx, storage.RatingKindAnime)
	if err != nil {
		return nil, fmt.Errorf("count anime ratings: %w", err)
	}

	episodeRatings, err := m.storage.CountRatings(ctx, storage.RatingKindEpisode)
	if err != nil {
		return nil, fmt.Errorf("count episode ratings: %w", err)
	}

	return &Stats{
		AnimeCount:     animeCount,
		UserCount:      userCount,
		RatingCount:    ratingCount,
		AnimeRatings:   animeRatings,
		EpisodeRatings: episodeRatings,
		Summary: fmt.Sprintf("%s anime, %s users, %s ratings",
			humanize.Comma(animeCount), humanize.Comma(userCount), humanize.Comma(ratingCount)),
	}, nil
}
