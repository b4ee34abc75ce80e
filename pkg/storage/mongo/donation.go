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
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (s *Store) CreateDonation(ctx context.Context, donation storage.Donation) (primitive.ObjectID, error) {
	donation.CreatedAt = time.Now().UTC()
	if donation.Status == "" {
		donation.Status = storage.DonationPending
	}

	res, err := s.donations().InsertOne(ctx, donation)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to create donation: %w", err)
	}

	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}

	return id, nil
}

func (s *Store) GetDonation(ctx context.Context, id primitive.ObjectID) (*storage.Donation, error) {
	var donation storage.Donation
	err := s.donations().FindOne(ctx, bson.M{"_id": id}).Decode(&donation)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get donation: %w", err)
	}

	return &donation, nil
}

func (s *Store) GetDonationBySession(ctx context.Context, sessionID string) (*storage.Donation, error) {
	var donation storage.Donation
	err := s.donations().FindOne(ctx, bson.M{"sessionId": sessionID}).Decode(&donation)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get donation by session: %w", err)
	}

	return &donation, nil
}

func (s *Store) UpdateDonationStatus(ctx context.Context, id primitive.ObjectID, status storage.DonationStatus, completedAt *time.Time) error {
	set := bson.M{"status": status}
	if completedAt != nil {
		set["completedAt"] = *completedAt
	}

	res, err := s.donations().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update donation status: %w", err)
	}
	if res.MatchedCount == 0 {
		return storage.ErrNotFound
	}

	return nil
}

func (s *Store) ListDonationsByUser(ctx context.Context, userID primitive.ObjectID, limit int) ([]*storage.Donation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts = opts.SetLimit(int64(limit))
	}

	cur, err := s.donations().Find(ctx, bson.M{"user": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list donations: %w", err)
	}
	defer cur.Close(ctx)

	var results []*storage.Donation
	if err := cur.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode donation list: %w", err)
	}

	return results, nil
}
