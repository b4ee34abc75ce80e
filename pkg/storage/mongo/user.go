package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kiyora/animehub/pkg/storage"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func (s *Store) CreateUser(ctx context.Context, user storage.User) (primitive.ObjectID, error) {
	user.CreatedAt = time.Now().UTC()
	if user.Watchlist == nil {
		user.Watchlist = []primitive.ObjectID{}
	}

	res, err := s.users().InsertOne(ctx, user)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to create user: %w", err)
	}

	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}

	return id, nil
}

func (s *Store) GetUser(ctx context.Context, id primitive.ObjectID) (*storage.User, error) {
	var user storage.User
	err := s.users().FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*storage.User, error) {
	var user storage.User
	err := s.users().FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return &user, nil
}

func (s *Store) AddToWatchlist(ctx context.Context, userID, animeID primitive.ObjectID) error {
	res, err := s.users().UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$addToSet": bson.M{"watchlist": animeID}},
	)
	if err != nil {
		return fmt.Errorf("failed to add to watchlist: %w", err)
	}
	if res.MatchedCount == 0 {
		return storage.ErrNotFound
	}

	return nil
}

func (s *Store) RemoveFromWatchlist(ctx context.Context, userID, animeID primitive.ObjectID) error {
	res, err := s.users().UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$pull": bson.M{"watchlist": animeID}},
	)
	if err != nil {
		return fmt.Errorf("failed to remove from watchlist: %w", err)
	}
	if res.MatchedCount == 0 {
		return storage.ErrNotFound
	}

	return nil
}

func (s *Store) GrantAdFree(ctx context.Context, userID primitive.ObjectID, at time.Time) error {
	res, err := s.users().UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"isAdFree": true, "adFreeGrantedAt": at}},
	)
	if err != nil {
		return fmt.Errorf("failed to grant ad-free: %w", err)
	}
	if res.MatchedCount == 0 {
		return storage.ErrNotFound
	}

	return nil
}

func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	return s.users().CountDocuments(ctx, bson.M{})
}
