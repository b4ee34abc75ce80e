// Package memory implements storage.Storage in process memory. It mirrors the
// conditional-update semantics of the mongo backend and backs the functional
// tests.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/kiyora/animehub/pkg/storage"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Store struct {
	mu        sync.Mutex
	anime     map[primitive.ObjectID]*storage.Anime
	episodes  map[primitive.ObjectID]*storage.Episode
	ratings   map[primitive.ObjectID]*storage.Rating
	users     map[primitive.ObjectID]*storage.User
	donations map[primitive.ObjectID]*storage.Donation
	ads       map[primitive.ObjectID]*storage.Ad

	// FailCreateEpisode forces episode creation for the given anime to fail,
	// used to exercise persistence-error paths in tests.
	FailCreateEpisode map[primitive.ObjectID]error
}

func New() *Store {
	return &Store{
		anime:             make(map[primitive.ObjectID]*storage.Anime),
		episodes:          make(map[primitive.ObjectID]*storage.Episode),
		ratings:           make(map[primitive.ObjectID]*storage.Rating),
		users:             make(map[primitive.ObjectID]*storage.User),
		donations:         make(map[primitive.ObjectID]*storage.Donation),
		ads:               make(map[primitive.ObjectID]*storage.Ad),
		FailCreateEpisode: make(map[primitive.ObjectID]error),
	}
}

func copyAnime(a *storage.Anime) *storage.Anime {
	c := *a
	c.EpisodeIDs = append([]primitive.ObjectID{}, a.EpisodeIDs...)
	c.UserRatings = append([]storage.UserRating{}, a.UserRatings...)
	if a.AverageRating != nil {
		avg := *a.AverageRating
		c.AverageRating = &avg
	}
	return &c
}

func copyEpisode(e *storage.Episode) *storage.Episode {
	c := *e
	c.UserRatings = append([]storage.UserRating{}, e.UserRatings...)
	if e.AverageRating != nil {
		avg := *e.AverageRating
		c.AverageRating = &avg
	}
	return &c
}

func (s *Store) CreateAnime(_ context.Context, anime storage.Anime) (primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if anime.MALID != nil {
		for _, a := range s.anime {
			if a.MALID != nil && *a.MALID == *anime.MALID {
				return primitive.NilObjectID, errors.New("duplicate mal id")
			}
		}
	}

	anime.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	anime.CreatedAt = now
	anime.UpdatedAt = now
	if anime.EpisodeIDs == nil {
		anime.EpisodeIDs = []primitive.ObjectID{}
	}
	if anime.UserRatings == nil {
		anime.UserRatings = []storage.UserRating{}
	}

	s.anime[anime.ID] = copyAnime(&anime)
	return anime.ID, nil
}

func (s *Store) GetAnime(_ context.Context, id primitive.ObjectID) (*storage.Anime, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.anime[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return copyAnime(a), nil
}

func (s *Store) GetAnimeByMALID(_ context.Context, malID int) (*storage.Anime, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.anime {
		if a.MALID != nil && *a.MALID == malID {
			return copyAnime(a), nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *Store) ListAnime(_ context.Context) ([]*storage.Anime, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listAnimeLocked(false), nil
}

func (s *Store) ListAnimeWithMALID(_ context.Context) ([]*storage.Anime, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listAnimeLocked(true), nil
}

func (s *Store) listAnimeLocked(withMALID bool) []*storage.Anime {
	results := make([]*storage.Anime, 0, len(s.anime))
	for _, a := range s.anime {
		if withMALID && a.MALID == nil {
			continue
		}
		results = append(results, copyAnime(a))
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].CreatedAt.Before(results[j].CreatedAt)
	})
	return results
}

func (s *Store) UpdateAnime(_ context.Context, id primitive.ObjectID, update storage.AnimeUpdate) (*storage.Anime, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.anime[id]
	if !ok {
		return nil, storage.ErrNotFound
	}

	if update.Title != nil {
		a.Title = *update.Title
	}
	if update.TitleEnglish != nil {
		a.TitleEnglish = *update.TitleEnglish
	}
	if update.TitleJapanese != nil {
		a.TitleJapanese = *update.TitleJapanese
	}
	if update.Synopsis != nil {
		a.Synopsis = *update.Synopsis
	}
	if update.Poster != nil {
		a.Poster = *update.Poster
	}
	if update.Type != nil {
		a.Type = *update.Type
	}
	if update.Status != nil {
		a.Status = *update.Status
	}
	if update.Genres != nil {
		a.Genres = append([]string{}, (*update.Genres)...)
	}
	if update.Studios != nil {
		a.Studios = append([]string{}, (*update.Studios)...)
	}
	a.UpdatedAt = time.Now().UTC()

	return copyAnime(a), nil
}

func (s *Store) DeleteAnime(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.anime[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.anime, id)
	return nil
}

func (s *Store) AddEpisodesToAnime(_ context.Context, animeID primitive.ObjectID, episodeIDs []primitive.ObjectID) error {
	if len(episodeIDs) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.anime[animeID]
	if !ok {
		return storage.ErrNotFound
	}
	a.EpisodeIDs = append(a.EpisodeIDs, episodeIDs...)
	a.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *Store) SetAnimeAverage(_ context.Context, id primitive.ObjectID, average *float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.anime[id]
	if !ok {
		return storage.ErrNotFound
	}
	a.AverageRating = copyAverage(average)
	a.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *Store) ReplaceAnimeRating(_ context.Context, animeID, userID primitive.ObjectID, rating int) (*storage.Anime, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.anime[animeID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	a.UserRatings = replaceTuple(a.UserRatings, userID, rating)
	a.UpdatedAt = time.Now().UTC()
	return copyAnime(a), nil
}

func (s *Store) CountAnime(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.anime)), nil
}

func copyAverage(average *float64) *float64 {
	if average == nil {
		return nil
	}
	avg := *average
	return &avg
}

// replaceTuple mirrors the guarded replace-or-append the mongo backend
// performs server side.
func replaceTuple(ratings []storage.UserRating, userID primitive.ObjectID, rating int) []storage.UserRating {
	now := time.Now().UTC()
	for i := range ratings {
		if ratings[i].UserID == userID {
			ratings[i].Rating = rating
			ratings[i].CreatedAt = now
			return ratings
		}
	}
	return append(ratings, storage.UserRating{UserID: userID, Rating: rating, CreatedAt: now})
}

func (s *Store) CreateEpisode(_ context.Context, episode storage.Episode) (primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err, ok := s.FailCreateEpisode[episode.AnimeID]; ok {
		return primitive.NilObjectID, err
	}

	for _, e := range s.episodes {
		if e.AnimeID == episode.AnimeID && e.Number == episode.Number {
			return primitive.NilObjectID, errors.New("duplicate episode number")
		}
	}

	episode.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	episode.CreatedAt = now
	episode.UpdatedAt = now
	if episode.UserRatings == nil {
		episode.UserRatings = []storage.UserRating{}
	}

	s.episodes[episode.ID] = copyEpisode(&episode)
	return episode.ID, nil
}

func (s *Store) GetEpisode(_ context.Context, id primitive.ObjectID) (*storage.Episode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.episodes[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return copyEpisode(e), nil
}

func (s *Store) GetEpisodeByNumber(_ context.Context, animeID primitive.ObjectID, number int) (*storage.Episode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.episodes {
		if e.AnimeID == animeID && e.Number == number {
			return copyEpisode(e), nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *Store) ListEpisodesByAnime(_ context.Context, animeID primitive.ObjectID) ([]*storage.Episode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var results []*storage.Episode
	for _, e := range s.episodes {
		if e.AnimeID == animeID {
			results = append(results, copyEpisode(e))
		}
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Number < results[j].Number
	})
	return results, nil
}

func (s *Store) UpdateEpisode(_ context.Context, id primitive.ObjectID, update storage.EpisodeUpdate) (*storage.Episode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.episodes[id]
	if !ok {
		return nil, storage.ErrNotFound
	}

	if update.Title != nil {
		e.Title = *update.Title
	}
	if update.TitleProvenance != nil {
		e.TitleProvenance = *update.TitleProvenance
	}
	if update.Synopsis != nil {
		e.Synopsis = *update.Synopsis
	}
	if update.SynopsisProvenance != nil {
		e.SynopsisProvenance = *update.SynopsisProvenance
	}
	if update.AirDate != nil {
		airDate := *update.AirDate
		e.AirDate = &airDate
	}
	if update.Duration != nil {
		e.Duration = *update.Duration
	}
	if update.Thumbnail != nil {
		e.Thumbnail = *update.Thumbnail
	}
	e.UpdatedAt = time.Now().UTC()

	return copyEpisode(e), nil
}

func (s *Store) SetEpisodeAverage(_ context.Context, id primitive.ObjectID, average *float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.episodes[id]
	if !ok {
		return storage.ErrNotFound
	}
	e.AverageRating = copyAverage(average)
	e.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *Store) ReplaceEpisodeRating(_ context.Context, episodeID, userID primitive.ObjectID, rating int) (*storage.Episode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.episodes[episodeID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	e.UserRatings = replaceTuple(e.UserRatings, userID, rating)
	e.UpdatedAt = time.Now().UTC()
	return copyEpisode(e), nil
}

func (s *Store) UpsertRating(_ context.Context, rating storage.Rating) (*storage.Rating, error) {
	if rating.AnimeID == nil && rating.EpisodeID == nil {
		return nil, errors.New("rating must reference an anime or an episode")
	}
	if rating.AnimeID != nil && rating.EpisodeID != nil {
		return nil, errors.New("rating must reference exactly one of anime or episode")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	for _, r := range s.ratings {
		if r.UserID != rating.UserID {
			continue
		}
		if rating.EpisodeID != nil && r.EpisodeID != nil && *r.EpisodeID == *rating.EpisodeID {
			r.Rating = rating.Rating
			if rating.Review != "" {
				r.Review = rating.Review
			}
			r.UpdatedAt = now
			result := *r
			return &result, nil
		}
		if rating.EpisodeID == nil && rating.AnimeID != nil && r.AnimeID != nil && *r.AnimeID == *rating.AnimeID {
			r.Rating = rating.Rating
			if rating.Review != "" {
				r.Review = rating.Review
			}
			r.UpdatedAt = now
			result := *r
			return &result, nil
		}
	}

	rating.ID = primitive.NewObjectID()
	rating.CreatedAt = now
	rating.UpdatedAt = now
	stored := rating
	s.ratings[rating.ID] = &stored
	result := rating
	return &result, nil
}

func (s *Store) ListRatingsByUser(_ context.Context, userID primitive.ObjectID, limit int) ([]*storage.Rating, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var results []*storage.Rating
	for _, r := range s.ratings {
		if r.UserID == userID {
			result := *r
			results = append(results, &result)
		}
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (s *Store) CountRatings(_ context.Context, kind storage.RatingKind) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for _, r := range s.ratings {
		if matchesKind(r, kind) {
			count++
		}
	}
	return count, nil
}

func (s *Store) CountRatingsByUser(_ context.Context, userID primitive.ObjectID, kind storage.RatingKind) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for _, r := range s.ratings {
		if r.UserID == userID && matchesKind(r, kind) {
			count++
		}
	}
	return count, nil
}

func matchesKind(r *storage.Rating, kind storage.RatingKind) bool {
	switch kind {
	case storage.RatingKindAnime:
		return r.AnimeID != nil
	case storage.RatingKindEpisode:
		return r.EpisodeID != nil
	default:
		return true
	}
}

func (s *Store) CreateUser(_ context.Context, user storage.User) (primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == user.Email {
			return primitive.NilObjectID, errors.New("duplicate email")
		}
	}

	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now().UTC()
	if user.Watchlist == nil {
		user.Watchlist = []primitive.ObjectID{}
	}
	stored := user
	s.users[user.ID] = &stored
	return user.ID, nil
}

func (s *Store) GetUser(_ context.Context, id primitive.ObjectID) (*storage.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	result := *u
	result.Watchlist = append([]primitive.ObjectID{}, u.Watchlist...)
	return &result, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*storage.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			result := *u
			result.Watchlist = append([]primitive.ObjectID{}, u.Watchlist...)
			return &result, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *Store) AddToWatchlist(_ context.Context, userID, animeID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return storage.ErrNotFound
	}
	for _, id := range u.Watchlist {
		if id == animeID {
			return nil
		}
	}
	u.Watchlist = append(u.Watchlist, animeID)
	return nil
}

func (s *Store) RemoveFromWatchlist(_ context.Context, userID, animeID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return storage.ErrNotFound
	}
	filtered := u.Watchlist[:0]
	for _, id := range u.Watchlist {
		if id != animeID {
			filtered = append(filtered, id)
		}
	}
	u.Watchlist = filtered
	return nil
}

func (s *Store) GrantAdFree(_ context.Context, userID primitive.ObjectID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return storage.ErrNotFound
	}
	u.AdFree = true
	u.AdFreeGrantedAt = &at
	return nil
}

func (s *Store) CountUsers(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.users)), nil
}

func (s *Store) CreateDonation(_ context.Context, donation storage.Donation) (primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	donation.ID = primitive.NewObjectID()
	donation.CreatedAt = time.Now().UTC()
	if donation.Status == "" {
		donation.Status = storage.DonationPending
	}
	stored := donation
	s.donations[donation.ID] = &stored
	return donation.ID, nil
}

func (s *Store) GetDonation(_ context.Context, id primitive.ObjectID) (*storage.Donation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.donations[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	result := *d
	return &result, nil
}

func (s *Store) GetDonationBySession(_ context.Context, sessionID string) (*storage.Donation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, d := range s.donations {
		if d.SessionID == sessionID {
			result := *d
			return &result, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *Store) UpdateDonationStatus(_ context.Context, id primitive.ObjectID, status storage.DonationStatus, completedAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.donations[id]
	if !ok {
		return storage.ErrNotFound
	}
	d.Status = status
	if completedAt != nil {
		at := *completedAt
		d.CompletedAt = &at
	}
	return nil
}

func (s *Store) ListDonationsByUser(_ context.Context, userID primitive.ObjectID, limit int) ([]*storage.Donation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var results []*storage.Donation
	for _, d := range s.donations {
		if d.UserID == userID {
			result := *d
			results = append(results, &result)
		}
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func copyAd(a *storage.Ad) *storage.Ad {
	c := *a
	if a.EndDate != nil {
		end := *a.EndDate
		c.EndDate = &end
	}
	return &c
}

func (s *Store) CreateAd(_ context.Context, ad storage.Ad) (primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	ad.ID = primitive.NewObjectID()
	ad.CreatedAt = now
	ad.UpdatedAt = now
	if ad.StartDate.IsZero() {
		ad.StartDate = now
	}
	stored := ad
	s.ads[ad.ID] = &stored
	return ad.ID, nil
}

func (s *Store) GetAd(_ context.Context, id primitive.ObjectID) (*storage.Ad, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.ads[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return copyAd(a), nil
}

func (s *Store) ListActiveAds(_ context.Context, now time.Time, limit int) ([]*storage.Ad, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var results []*storage.Ad
	for _, a := range s.ads {
		if !a.Active || a.StartDate.After(now) || a.Views >= a.TargetViews {
			continue
		}
		if a.EndDate != nil && a.EndDate.Before(now) {
			continue
		}
		results = append(results, copyAd(a))
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Priority != results[j].Priority {
			return results[i].Priority > results[j].Priority
		}
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (s *Store) IncrementAdViews(_ context.Context, id primitive.ObjectID) (*storage.Ad, error) {
	return s.incrementAdCounter(id, func(a *storage.Ad) { a.Views++ })
}

func (s *Store) IncrementAdClicks(_ context.Context, id primitive.ObjectID) (*storage.Ad, error) {
	return s.incrementAdCounter(id, func(a *storage.Ad) { a.Clicks++ })
}

func (s *Store) incrementAdCounter(id primitive.ObjectID, inc func(*storage.Ad)) (*storage.Ad, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.ads[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	inc(a)
	a.UpdatedAt = time.Now().UTC()
	return copyAd(a), nil
}

func (s *Store) SetAdActive(_ context.Context, id primitive.ObjectID, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.ads[id]
	if !ok {
		return storage.ErrNotFound
	}
	a.Active = active
	a.UpdatedAt = time.Now().UTC()
	return nil
}
