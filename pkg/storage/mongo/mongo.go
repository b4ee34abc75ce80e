// Package mongo implements storage.Storage on a MongoDB database.
package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	animeCollection    = "anime"
	episodeCollection  = "episodes"
	ratingCollection   = "ratings"
	userCollection     = "users"
	donationCollection = "donations"
	adCollection       = "ads"
)

type Store struct {
	db *mongo.Database
}

// New connects to the given MongoDB URI and returns a Store backed by the
// named database.
func New(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	return &Store{db: client.Database(database)}, nil
}

// Init creates the indexes the storage contracts rely on: the sparse unique
// MAL id on anime, the unique (anime, number) pair on episodes, and the
// unique user email.
func (s *Store) Init(ctx context.Context) error {
	_, err := s.anime().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "malId", Value: 1}},
		Options: options.Index().SetUnique(true).SetSparse(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create anime malId index: %w", err)
	}

	_, err = s.episodes().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "anime", Value: 1}, {Key: "number", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create episode number index: %w", err)
	}

	_, err = s.users().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create user email index: %w", err)
	}

	_, err = s.ads().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "isActive", Value: 1}, {Key: "priority", Value: -1}, {Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create ad serving index: %w", err)
	}

	return nil
}

func (s *Store) anime() *mongo.Collection {
	return s.db.Collection(animeCollection)
}

func (s *Store) episodes() *mongo.Collection {
	return s.db.Collection(episodeCollection)
}

func (s *Store) ratings() *mongo.Collection {
	return s.db.Collection(ratingCollection)
}

func (s *Store) users() *mongo.Collection {
	return s.db.Collection(userCollection)
}

func (s *Store) donations() *mongo.Collection {
	return s.db.Collection(donationCollection)
}

func (s *Store) ads() *mongo.Collection {
	return s.db.Collection(adCollection)
}
