package manager

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/kiyora/animehub/pkg/logger"
	"github.com/kiyora/animehub/pkg/storage"
)

type ratingInput struct {
	Rating int `validate:"min=1,max=10"`
}

func (m Manager) validateRating(value int) error {
	if err := m.validate.Struct(ratingInput{Rating: value}); err != nil {
		return ValidationError{Reason: fmt.Sprintf("rating must be between 1 and 10, got %d", value)}
	}
	return nil
}

// RateEpisode records one user's rating on an episode and recomputes both
// averages. The embedded tuple is replaced atomically at the storage layer
// so concurrent raters never lose writes; last write wins per user. The
// anime rollup reads episode averages after the episode write, so under
// concurrent raters it may briefly trail by one rating until the next write
// lands.
func (m Manager) RateEpisode(ctx context.Context, episodeID, userID primitive.ObjectID, value int, review string) (*EpisodeRatingResult, error) {
	log := logger.FromCtx(ctx)

	if err := m.validateRating(value); err != nil {
		return nil, err
	}

	episode, err := m.storage.ReplaceEpisodeRating(ctx, episodeID, userID, value)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, NotFoundError{Entity: "episode", ID: episodeID.Hex()}
		}
		return nil, fmt.Errorf("record episode rating: %w", err)
	}

	episodeAvg := tupleMean(episode.UserRatings)
	if err := m.storage.SetEpisodeAverage(ctx, episode.ID, episodeAvg); err != nil {
		return nil, fmt.Errorf("store episode average: %w", err)
	}

	animeAvg, err := m.rollupAnimeAverage(ctx, episode.AnimeID, episode.ID, episodeAvg)
	if err != nil {
		return nil, err
	}

	// the ledger upsert is independently idempotent; a failure here leaves
	// the embedded tuple in place and is surfaced for repair tooling
	if _, err := m.storage.UpsertRating(ctx, storage.Rating{
		UserID:    userID,
		EpisodeID: &episode.ID,
		Rating:    value,
		Review:    review,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}); err != nil {
		return nil, fmt.Errorf("upsert rating record: %w", err)
	}

	log.Debug("episode rated",
		zap.String("episode", episode.ID.Hex()),
		zap.String("user", userID.Hex()),
		zap.Int("rating", value))

	return &EpisodeRatingResult{
		EpisodeRating: displayRating(episodeAvg),
		AnimeRating:   displayRating(animeAvg),
	}, nil
}

// RateAnime records a direct anime rating against the anime's own tuple
// list. It does not touch episode averages, and the catalog's headline
// rating stays episode-derived; the direct average is its own figure.
func (m Manager) RateAnime(ctx context.Context, animeID, userID primitive.ObjectID, value int, review string) (*AnimeRatingResult, error) {
	log := logger.FromCtx(ctx)

	if err := m.validateRating(value); err != nil {
		return nil, err
	}

	anime, err := m.storage.ReplaceAnimeRating(ctx, animeID, userID, value)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, NotFoundError{Entity: "anime", ID: animeID.Hex()}
		}
		return nil, fmt.Errorf("record anime rating: %w", err)
	}

	average := tupleMean(anime.UserRatings)
	if err := m.storage.SetAnimeAverage(ctx, anime.ID, average); err != nil {
		return nil, fmt.Errorf("store anime average: %w", err)
	}

	if _, err := m.storage.UpsertRating(ctx, storage.Rating{
		UserID:    userID,
		AnimeID:   &anime.ID,
		Rating:    value,
		Review:    review,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}); err != nil {
		return nil, fmt.Errorf("upsert rating record: %w", err)
	}

	log.Debug("anime rated",
		zap.String("anime", anime.ID.Hex()),
		zap.String("user", userID.Hex()),
		zap.Int("rating", value))

	return &AnimeRatingResult{AverageRating: displayRating(average)}, nil
}

// rollupAnimeAverage recomputes the anime-level mean over rated episodes and
// stores it. The just-written episode average is substituted for its stored
// value so the rollup sees this request's own write. Unrated episodes are
// excluded; an anime with no rated episodes gets a nil average.
func (m Manager) rollupAnimeAverage(ctx context.Context, animeID, ratedEpisodeID primitive.ObjectID, ratedAvg *float64) (*float64, error) {
	episodes, err := m.storage.ListEpisodesByAnime(ctx, animeID)
	if err != nil {
		return nil, fmt.Errorf("list episodes for rollup: %w", err)
	}

	var sum float64
	var count int
	for _, e := range episodes {
		avg := e.AverageRating
		if e.ID == ratedEpisodeID {
			avg = ratedAvg
		}
		if avg == nil {
			continue
		}
		sum += *avg
		count++
	}

	var rollup *float64
	if count > 0 {
		v := sum / float64(count)
		rollup = &v
	}

	if err := m.storage.SetAnimeAverage(ctx, animeID, rollup); err != nil {
		return nil, fmt.Errorf("store anime average: %w", err)
	}

	return rollup, nil
}

// tupleMean is the unrounded mean of the embedded tuples, nil when empty.
func tupleMean(ratings []storage.UserRating) *float64 {
	if len(ratings) == 0 {
		return nil
	}

	var sum float64
	for _, r := range ratings {
		sum += float64(r.Rating)
	}

	mean := sum / float64(len(ratings))
	return &mean
}

// displayRating rounds to one decimal for presentation; nil renders as 0.
func displayRating(avg *float64) float64 {
	if avg == nil {
		return 0
	}
	return math.Round(*avg*10) / 10
}
