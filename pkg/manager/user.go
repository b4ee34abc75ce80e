package manager

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/kiyora/animehub/pkg/auth"
	"github.com/kiyora/animehub/pkg/logger"
	"github.com/kiyora/animehub/pkg/storage"
)

// RegisterInput is the signup payload.
type RegisterInput struct {
	Name     string `validate:"required"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8"`
}

// Register creates an account with a hashed password.
func (m Manager) Register(ctx context.Context, input RegisterInput) (*storage.User, error) {
	if err := m.validate.Struct(input); err != nil {
		return nil, ValidationError{Reason: "name, a valid email, and a password of at least 8 characters are required"}
	}

	if _, err := m.storage.GetUserByEmail(ctx, input.Email); err == nil {
		return nil, ValidationError{Reason: "an account with this email already exists"}
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	id, err := m.storage.CreateUser(ctx, storage.User{
		Name:      input.Name,
		Email:     input.Email,
		Password:  hash,
		Watchlist: []primitive.ObjectID{},
		CreatedAt: time.Now(),
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return m.storage.GetUser(ctx, id)
}

// Login checks credentials and returns the account. Unknown email and wrong
// password produce the same error so the response doesn't leak which one it
// was.
func (m Manager) Login(ctx context.Context, email, password string) (*storage.User, error) {
	user, err := m.storage.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ValidationError{Reason: "invalid email or password"}
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if !auth.CheckPassword(user.Password, password) {
		return nil, ValidationError{Reason: "invalid email or password"}
	}

	return user, nil
}

// GetProfile assembles the account view with rating and donation history.
func (m Manager) GetProfile(ctx context.Context, userID primitive.ObjectID) (*Profile, error) {
	user, err := m.storage.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, NotFoundError{Entity: "user", ID: userID.Hex()}
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	ratingCount, err := m.storage.CountRatingsByUser(ctx, userID, storage.RatingKindAny)
	if err != nil {
		return nil, fmt.Errorf("count ratings: %w", err)
	}

	donations, err := m.storage.ListDonationsByUser(ctx, userID, 20)
	if err != nil {
		return nil, fmt.Errorf("list donations: %w", err)
	}

	return &Profile{
		User:          user,
		RatingCount:   ratingCount,
		WatchlistSize: len(user.Watchlist),
		Donations:     donations,
	}, nil
}

// ListUserRatings returns the user's most recent ledger records.
func (m Manager) ListUserRatings(ctx context.Context, userID primitive.ObjectID, limit int) ([]*storage.Rating, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	ratings, err := m.storage.ListRatingsByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}

	return ratings, nil
}

// GetWatchlist resolves the user's watchlist to anime documents. Entries
// whose anime has since been deleted are skipped.
func (m Manager) GetWatchlist(ctx context.Context, userID primitive.ObjectID) ([]*storage.Anime, error) {
	log := logger.FromCtx(ctx)

	user, err := m.storage.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, NotFoundError{Entity: "user", ID: userID.Hex()}
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	animes := make([]*storage.Anime, 0, len(user.Watchlist))
	for _, animeID := range user.Watchlist {
		anime, err := m.storage.GetAnime(ctx, animeID)
		if errors.Is(err, storage.ErrNotFound) {
			log.Debug("watchlist entry points at deleted anime", zap.String("anime", animeID.Hex()))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("get anime: %w", err)
		}
		animes = append(animes, anime)
	}

	return animes, nil
}

// AddToWatchlist adds an anime to the user's watchlist, idempotently.
func (m Manager) AddToWatchlist(ctx context.Context, userID, animeID primitive.ObjectID) error {
	if _, err := m.storage.GetAnime(ctx, animeID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return NotFoundError{Entity: "anime", ID: animeID.Hex()}
		}
		return fmt.Errorf("get anime: %w", err)
	}

	if err := m.storage.AddToWatchlist(ctx, userID, animeID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return NotFoundError{Entity: "user", ID: userID.Hex()}
		}
		return fmt.Errorf("add to watchlist: %w", err)
	}

	return nil
}

// RemoveFromWatchlist drops an anime from the watchlist. Removing an absent
// entry is a no-op.
func (m Manager) RemoveFromWatchlist(ctx context.Context, userID, animeID primitive.ObjectID) error {
	if err := m.storage.RemoveFromWatchlist(ctx, userID, animeID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return NotFoundError{Entity: "user", ID: userID.Hex()}
		}
		return fmt.Errorf("remove from watchlist: %w", err)
	}

	return nil
}
