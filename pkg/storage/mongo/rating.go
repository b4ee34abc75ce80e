package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kiyora/animehub/pkg/storage"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func ratingPairFilter(rating storage.Rating) bson.M {
	filter := bson.M{"user": rating.UserID}
	if rating.EpisodeID != nil {
		filter["episode"] = *rating.EpisodeID
	} else if rating.AnimeID != nil {
		filter["anime"] = *rating.AnimeID
	}
	return filter
}

func (s *Store) UpsertRating(ctx context.Context, rating storage.Rating) (*storage.Rating, error) {
	if rating.AnimeID == nil && rating.EpisodeID == nil {
		return nil, errors.New("rating must reference an anime or an episode")
	}
	if rating.AnimeID != nil && rating.EpisodeID != nil {
		return nil, errors.New("rating must reference exactly one of anime or episode")
	}

	now := time.Now().UTC()
	set := bson.M{"rating": rating.Rating, "updatedAt": now}
	if rating.Review != "" {
		set["review"] = rating.Review
	}

	setOnInsert := bson.M{"user": rating.UserID, "createdAt": now}
	if rating.EpisodeID != nil {
		setOnInsert["episode"] = *rating.EpisodeID
	}
	if rating.AnimeID != nil {
		setOnInsert["anime"] = *rating.AnimeID
	}

	var result storage.Rating
	err := s.ratings().FindOneAndUpdate(ctx,
		ratingPairFilter(rating),
		bson.M{"$set": set, "$setOnInsert": setOnInsert},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&result)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert rating: %w", err)
	}

	return &result, nil
}

func (s *Store) ListRatingsByUser(ctx context.Context, userID primitive.ObjectID, limit int) ([]*storage.Rating, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts = opts.SetLimit(int64(limit))
	}

	cur, err := s.ratings().Find(ctx, bson.M{"user": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list ratings: %w", err)
	}
	defer cur.Close(ctx)

	var results []*storage.Rating
	if err := cur.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode rating list: %w", err)
	}

	return results, nil
}

func (s *Store) CountRatings(ctx context.Context, kind storage.RatingKind) (int64, error) {
	return s.ratings().CountDocuments(ctx, kindFilter(bson.M{}, kind))
}

func (s *Store) CountRatingsByUser(ctx context.Context, userID primitive.ObjectID, kind storage.RatingKind) (int64, error) {
	return s.ratings().CountDocuments(ctx, kindFilter(bson.M{"user": userID}, kind))
}

func kindFilter(filter bson.M, kind storage.RatingKind) bson.M {
	switch kind {
	case storage.RatingKindAnime:
		filter["anime"] = bson.M{"$exists": true}
	case storage.RatingKindEpisode:
		filter["episode"] = bson.M{"$exists": true}
	}
	return filter
}
