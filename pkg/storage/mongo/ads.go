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

func (s *Store) CreateAd(ctx context.Context, ad storage.Ad) (primitive.ObjectID, error) {
	now := time.Now().UTC()
	ad.CreatedAt = now
	ad.UpdatedAt = now
	if ad.StartDate.IsZero() {
		ad.StartDate = now
	}

	res, err := s.ads().InsertOne(ctx, ad)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to create ad: %w", err)
	}

	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}

	return id, nil
}

func (s *Store) GetAd(ctx context.Context, id primitive.ObjectID) (*storage.Ad, error) {
	var ad storage.Ad
	err := s.ads().FindOne(ctx, bson.M{"_id": id}).Decode(&ad)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get ad: %w", err)
	}

	return &ad, nil
}

func (s *Store) ListActiveAds(ctx context.Context, now time.Time, limit int) ([]*storage.Ad, error) {
	filter := bson.M{
		"isActive":  true,
		"startDate": bson.M{"$lte": now},
		"$or": bson.A{
			bson.M{"endDate": nil},
			bson.M{"endDate": bson.M{"$gte": now}},
		},
		"$expr": bson.M{"$lt": bson.A{"$views", "$targetViews"}},
	}

	opts := options.Find().SetSort(bson.D{{Key: "priority", Value: -1}, {Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts = opts.SetLimit(int64(limit))
	}

	cur, err := s.ads().Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list active ads: %w", err)
	}
	defer cur.Close(ctx)

	var results []*storage.Ad
	if err := cur.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode ad list: %w", err)
	}

	return results, nil
}

func (s *Store) IncrementAdViews(ctx context.Context, id primitive.ObjectID) (*storage.Ad, error) {
	return s.incrementAdCounter(ctx, id, "views")
}

func (s *Store) IncrementAdClicks(ctx context.Context, id primitive.ObjectID) (*storage.Ad, error) {
	return s.incrementAdCounter(ctx, id, "clicks")
}

func (s *Store) incrementAdCounter(ctx context.Context, id primitive.ObjectID, field string) (*storage.Ad, error) {
	var ad storage.Ad
	err := s.ads().FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{
			"$inc": bson.M{field: 1},
			"$set": bson.M{"updatedAt": time.Now().UTC()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&ad)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to increment ad %s: %w", field, err)
	}

	return &ad, nil
}

func (s *Store) SetAdActive(ctx context.Context, id primitive.ObjectID, active bool) error {
	res, err := s.ads().UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"isActive": active, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("failed to set ad active: %w", err)
	}
	if res.MatchedCount == 0 {
		return storage.ErrNotFound
	}

	return nil
}
