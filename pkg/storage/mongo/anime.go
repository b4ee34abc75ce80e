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

func (s *Store) CreateAnime(ctx context.Context, anime storage.Anime) (primitive.ObjectID, error) {
	now := time.Now().UTC()
	anime.CreatedAt = now
	anime.UpdatedAt = now
	if anime.EpisodeIDs == nil {
		anime.EpisodeIDs = []primitive.ObjectID{}
	}
	if anime.UserRatings == nil {
		anime.UserRatings = []storage.UserRating{}
	}

	res, err := s.anime().InsertOne(ctx, anime)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to create anime: %w", err)
	}

	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}

	return id, nil
}

func (s *Store) GetAnime(ctx context.Context, id primitive.ObjectID) (*storage.Anime, error) {
	var anime storage.Anime
	err := s.anime().FindOne(ctx, bson.M{"_id": id}).Decode(&anime)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get anime: %w", err)
	}

	return &anime, nil
}

func (s *Store) GetAnimeByMALID(ctx context.Context, malID int) (*storage.Anime, error) {
	var anime storage.Anime
	err := s.anime().FindOne(ctx, bson.M{"malId": malID}).Decode(&anime)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get anime by mal id: %w", err)
	}

	return &anime, nil
}

func (s *Store) ListAnime(ctx context.Context) ([]*storage.Anime, error) {
	return s.listAnime(ctx, bson.M{})
}

func (s *Store) ListAnimeWithMALID(ctx context.Context) ([]*storage.Anime, error) {
	return s.listAnime(ctx, bson.M{"malId": bson.M{"$exists": true, "$ne": nil}})
}

func (s *Store) listAnime(ctx context.Context, filter bson.M) ([]*storage.Anime, error) {
	cur, err := s.anime().Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list anime: %w", err)
	}
	defer cur.Close(ctx)

	var results []*storage.Anime
	if err := cur.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode anime list: %w", err)
	}

	return results, nil
}

func (s *Store) UpdateAnime(ctx context.Context, id primitive.ObjectID, update storage.AnimeUpdate) (*storage.Anime, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if update.Title != nil {
		set["title"] = *update.Title
	}
	if update.TitleEnglish != nil {
		set["titleEnglish"] = *update.TitleEnglish
	}
	if update.TitleJapanese != nil {
		set["titleJapanese"] = *update.TitleJapanese
	}
	if update.Synopsis != nil {
		set["synopsis"] = *update.Synopsis
	}
	if update.Poster != nil {
		set["poster"] = *update.Poster
	}
	if update.Type != nil {
		set["type"] = *update.Type
	}
	if update.Status != nil {
		set["status"] = *update.Status
	}
	if update.Genres != nil {
		set["genres"] = *update.Genres
	}
	if update.Studios != nil {
		set["studios"] = *update.Studios
	}

	var anime storage.Anime
	err := s.anime().FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&anime)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update anime: %w", err)
	}

	return &anime, nil
}

// DeleteAnime removes the anime document only. Episodes are not cascaded;
// see the ownership note in DESIGN.md.
func (s *Store) DeleteAnime(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.anime().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete anime: %w", err)
	}
	if res.DeletedCount == 0 {
		return storage.ErrNotFound
	}

	return nil
}

func (s *Store) AddEpisodesToAnime(ctx context.Context, animeID primitive.ObjectID, episodeIDs []primitive.ObjectID) error {
	if len(episodeIDs) == 0 {
		return nil
	}

	res, err := s.anime().UpdateOne(ctx,
		bson.M{"_id": animeID},
		bson.M{
			"$push": bson.M{"episodes": bson.M{"$each": episodeIDs}},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to add episodes to anime: %w", err)
	}
	if res.MatchedCount == 0 {
		return storage.ErrNotFound
	}

	return nil
}

func (s *Store) SetAnimeAverage(ctx context.Context, id primitive.ObjectID, average *float64) error {
	return s.setAverage(ctx, s.anime(), id, average)
}

func (s *Store) ReplaceAnimeRating(ctx context.Context, animeID, userID primitive.ObjectID, rating int) (*storage.Anime, error) {
	if err := s.replaceRatingTuple(ctx, s.anime(), animeID, userID, rating); err != nil {
		return nil, err
	}

	return s.GetAnime(ctx, animeID)
}

func (s *Store) CountAnime(ctx context.Context) (int64, error) {
	return s.anime().CountDocuments(ctx, bson.M{})
}

func (s *Store) setAverage(ctx context.Context, c *mongo.Collection, id primitive.ObjectID, average *float64) error {
	update := bson.M{"$set": bson.M{"updatedAt": time.Now().UTC()}}
	if average == nil {
		update["$unset"] = bson.M{"averageRating": ""}
	} else {
		update["$set"].(bson.M)["averageRating"] = *average
	}

	res, err := c.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to set average rating: %w", err)
	}
	if res.MatchedCount == 0 {
		return storage.ErrNotFound
	}

	return nil
}

// replaceRatingTuple performs the match-existing-tuple-or-append update. Both
// branches are guarded server side so two concurrent writers for the same
// user cannot produce duplicate tuples or lose a write.
func (s *Store) replaceRatingTuple(ctx context.Context, c *mongo.Collection, id, userID primitive.ObjectID, rating int) error {
	now := time.Now().UTC()

	// Two passes cover the race where another writer appends the user's first
	// tuple between our $set miss and our guarded $push.
	for attempt := 0; attempt < 2; attempt++ {
		res, err := c.UpdateOne(ctx,
			bson.M{"_id": id, "userRatings.user": userID},
			bson.M{"$set": bson.M{
				"userRatings.$.rating":    rating,
				"userRatings.$.createdAt": now,
				"updatedAt":               now,
			}},
		)
		if err != nil {
			return fmt.Errorf("failed to replace rating tuple: %w", err)
		}
		if res.MatchedCount > 0 {
			return nil
		}

		res, err = c.UpdateOne(ctx,
			bson.M{"_id": id, "userRatings.user": bson.M{"$ne": userID}},
			bson.M{
				"$push": bson.M{"userRatings": storage.UserRating{UserID: userID, Rating: rating, CreatedAt: now}},
				"$set":  bson.M{"updatedAt": now},
			},
		)
		if err != nil {
			return fmt.Errorf("failed to append rating tuple: %w", err)
		}
		if res.MatchedCount > 0 {
			return nil
		}
	}

	// Neither branch matched twice: the document does not exist.
	return storage.ErrNotFound
}
