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

func (s *Store) CreateEpisode(ctx context.Context, episode storage.Episode) (primitive.ObjectID, error) {
	now := time.Now().UTC()
	episode.CreatedAt = now
	episode.UpdatedAt = now
	if episode.UserRatings == nil {
		episode.UserRatings = []storage.UserRating{}
	}

	res, err := s.episodes().InsertOne(ctx, episode)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to create episode: %w", err)
	}

	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}

	return id, nil
}

func (s *Store) GetEpisode(ctx context.Context, id primitive.ObjectID) (*storage.Episode, error) {
	var episode storage.Episode
	err := s.episodes().FindOne(ctx, bson.M{"_id": id}).Decode(&episode)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get episode: %w", err)
	}

	return &episode, nil
}

func (s *Store) GetEpisodeByNumber(ctx context.Context, animeID primitive.ObjectID, number int) (*storage.Episode, error) {
	var episode storage.Episode
	err := s.episodes().FindOne(ctx, bson.M{"anime": animeID, "number": number}).Decode(&episode)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get episode by number: %w", err)
	}

	return &episode, nil
}

func (s *Store) ListEpisodesByAnime(ctx context.Context, animeID primitive.ObjectID) ([]*storage.Episode, error) {
	cur, err := s.episodes().Find(ctx,
		bson.M{"anime": animeID},
		options.Find().SetSort(bson.D{{Key: "number", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list episodes: %w", err)
	}
	defer cur.Close(ctx)

	var results []*storage.Episode
	if err := cur.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode episode list: %w", err)
	}

	return results, nil
}

func (s *Store) UpdateEpisode(ctx context.Context, id primitive.ObjectID, update storage.EpisodeUpdate) (*storage.Episode, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if update.Title != nil {
		set["title"] = *update.Title
	}
	if update.TitleProvenance != nil {
		set["titleProvenance"] = *update.TitleProvenance
	}
	if update.Synopsis != nil {
		set["synopsis"] = *update.Synopsis
	}
	if update.SynopsisProvenance != nil {
		set["synopsisProvenance"] = *update.SynopsisProvenance
	}
	if update.AirDate != nil {
		set["airDate"] = *update.AirDate
	}
	if update.Duration != nil {
		set["duration"] = *update.Duration
	}
	if update.Thumbnail != nil {
		set["thumbnail"] = *update.Thumbnail
	}

	var episode storage.Episode
	err := s.episodes().FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&episode)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update episode: %w", err)
	}

	return &episode, nil
}

func (s *Store) SetEpisodeAverage(ctx context.Context, id primitive.ObjectID, average *float64) error {
	return s.setAverage(ctx, s.episodes(), id, average)
}

func (s *Store) ReplaceEpisodeRating(ctx context.Context, episodeID, userID primitive.ObjectID, rating int) (*storage.Episode, error) {
	if err := s.replaceRatingTuple(ctx, s.episodes(), episodeID, userID, rating); err != nil {
		return nil, err
	}

	return s.GetEpisode(ctx, episodeID)
}
