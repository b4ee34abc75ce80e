package storage

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrNotFound = errors.New("not found in storage")

// Provenance records where a metadata field's current value came from. Sync
// only overwrites fields that are empty or generated; provider and authored
// values are preserved.
type Provenance string

const (
	ProvenanceGenerated Provenance = "generated"
	ProvenanceProvider  Provenance = "provider"
	ProvenanceAuthored  Provenance = "authored"
)

// UserRating is one user's vote embedded on an anime or episode. At most one
// tuple per user exists on an entity; the storage backends enforce this with
// a conditional replace-or-append, never read-modify-write.
type UserRating struct {
	UserID    primitive.ObjectID `bson:"user" json:"user"`
	Rating    int                `bson:"rating" json:"rating"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

type Anime struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	MALID         *int                 `bson:"malId,omitempty" json:"malId,omitempty"`
	Title         string               `bson:"title" json:"title"`
	TitleEnglish  string               `bson:"titleEnglish,omitempty" json:"titleEnglish,omitempty"`
	TitleJapanese string               `bson:"titleJapanese,omitempty" json:"titleJapanese,omitempty"`
	Synopsis      string               `bson:"synopsis,omitempty" json:"synopsis,omitempty"`
	Poster        string               `bson:"poster,omitempty" json:"poster,omitempty"`
	Type          string               `bson:"type,omitempty" json:"type,omitempty"`
	Status        string               `bson:"status,omitempty" json:"status,omitempty"`
	StartDate     *time.Time           `bson:"startDate,omitempty" json:"startDate,omitempty"`
	EndDate       *time.Time           `bson:"endDate,omitempty" json:"endDate,omitempty"`
	Genres        []string             `bson:"genres,omitempty" json:"genres,omitempty"`
	Studios       []string             `bson:"studios,omitempty" json:"studios,omitempty"`
	Source        string               `bson:"source,omitempty" json:"source,omitempty"`
	Popularity    *int                 `bson:"popularity,omitempty" json:"popularity,omitempty"`
	NumEpisodes   int                  `bson:"numEpisodes,omitempty" json:"numEpisodes,omitempty"`
	EpisodeIDs    []primitive.ObjectID `bson:"episodes" json:"episodes"`
	UserRatings   []UserRating         `bson:"userRatings" json:"userRatings"`
	// AverageRating is nil until at least one rating lands. A nil average is
	// "unrated", distinct from any numeric value.
	AverageRating *float64            `bson:"averageRating,omitempty" json:"averageRating,omitempty"`
	CreatedBy     *primitive.ObjectID `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedAt     time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time           `bson:"updatedAt" json:"updatedAt"`
}

type Episode struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AnimeID            primitive.ObjectID `bson:"anime" json:"anime"`
	Number             int                `bson:"number" json:"number"`
	Title              string             `bson:"title" json:"title"`
	TitleProvenance    Provenance         `bson:"titleProvenance,omitempty" json:"-"`
	Synopsis           string             `bson:"synopsis,omitempty" json:"synopsis,omitempty"`
	SynopsisProvenance Provenance         `bson:"synopsisProvenance,omitempty" json:"-"`
	AirDate            *time.Time         `bson:"airDate,omitempty" json:"airDate,omitempty"`
	Duration           string             `bson:"duration,omitempty" json:"duration,omitempty"`
	Thumbnail          string             `bson:"thumbnail,omitempty" json:"thumbnail,omitempty"`
	UserRatings        []UserRating       `bson:"userRatings" json:"userRatings"`
	AverageRating      *float64           `bson:"averageRating,omitempty" json:"averageRating,omitempty"`
	CreatedAt          time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Rating is the append-only ledger record, decoupled from the embedded
// tuples. Exactly one of AnimeID or EpisodeID is set.
type Rating struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID  `bson:"user" json:"user"`
	AnimeID   *primitive.ObjectID `bson:"anime,omitempty" json:"anime,omitempty"`
	EpisodeID *primitive.ObjectID `bson:"episode,omitempty" json:"episode,omitempty"`
	Rating    int                 `bson:"rating" json:"rating"`
	Review    string              `bson:"review,omitempty" json:"review,omitempty"`
	CreatedAt time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time           `bson:"updatedAt" json:"updatedAt"`
}

type User struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name            string               `bson:"name" json:"name"`
	Email           string               `bson:"email" json:"email"`
	Password        string               `bson:"password" json:"-"`
	IsAdmin         bool                 `bson:"isAdmin" json:"isAdmin"`
	AdFree          bool                 `bson:"isAdFree" json:"isAdFree"`
	AdFreeGrantedAt *time.Time           `bson:"adFreeGrantedAt,omitempty" json:"adFreeGrantedAt,omitempty"`
	Watchlist       []primitive.ObjectID `bson:"watchlist" json:"watchlist"`
	CreatedAt       time.Time            `bson:"createdAt" json:"createdAt"`
}

type DonationStatus string

const (
	DonationPending   DonationStatus = "pending"
	DonationCompleted DonationStatus = "completed"
	DonationFailed    DonationStatus = "failed"
)

type Donation struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"user" json:"user"`
	AmountCents int64              `bson:"amountCents" json:"amountCents"`
	Currency    string             `bson:"currency" json:"currency"`
	SessionID   string             `bson:"sessionId" json:"sessionId"`
	Status      DonationStatus     `bson:"status" json:"status"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	CompletedAt *time.Time         `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
}

// Ad is a sponsored banner served to users without ad-free status. Views and
// Clicks are incremented atomically by the backends; an ad stops being served
// once Views reaches TargetViews or EndDate passes.
type Ad struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	BannerURL   string             `bson:"bannerUrl" json:"bannerUrl"`
	CTAText     string             `bson:"ctaText" json:"ctaText"`
	TargetURL   string             `bson:"targetUrl,omitempty" json:"targetUrl,omitempty"`
	TargetViews int64              `bson:"targetViews" json:"targetViews"`
	Views       int64              `bson:"views" json:"views"`
	Clicks      int64              `bson:"clicks" json:"clicks"`
	Active      bool               `bson:"isActive" json:"isActive"`
	Priority    int                `bson:"priority" json:"priority"`
	StartDate   time.Time          `bson:"startDate" json:"startDate"`
	EndDate     *time.Time         `bson:"endDate,omitempty" json:"endDate,omitempty"`
	CreatedBy   primitive.ObjectID `bson:"createdBy" json:"createdBy"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// AnimeUpdate patches descriptive anime fields; nil fields are untouched.
type AnimeUpdate struct {
	Title         *string
	TitleEnglish  *string
	TitleJapanese *string
	Synopsis      *string
	Poster        *string
	Type          *string
	Status        *string
	Genres        *[]string
	Studios       *[]string
}

// EpisodeUpdate patches episode metadata; nil fields are untouched. When a
// title or synopsis is patched, its provenance must be patched with it.
type EpisodeUpdate struct {
	Title              *string
	TitleProvenance    *Provenance
	Synopsis           *string
	SynopsisProvenance *Provenance
	AirDate            *time.Time
	Duration           *string
	Thumbnail          *string
}

type RatingKind string

const (
	RatingKindAny     RatingKind = ""
	RatingKindAnime   RatingKind = "anime"
	RatingKindEpisode RatingKind = "episode"
)

type Storage interface {
	AnimeStorage
	EpisodeStorage
	RatingStorage
	UserStorage
	DonationStorage
	AdStorage
}

type AnimeStorage interface {
	CreateAnime(ctx context.Context, anime Anime) (primitive.ObjectID, error)
	GetAnime(ctx context.Context, id primitive.ObjectID) (*Anime, error)
	GetAnimeByMALID(ctx context.Context, malID int) (*Anime, error)
	ListAnime(ctx context.Context) ([]*Anime, error)
	ListAnimeWithMALID(ctx context.Context) ([]*Anime, error)
	UpdateAnime(ctx context.Context, id primitive.ObjectID, update AnimeUpdate) (*Anime, error)
	DeleteAnime(ctx context.Context, id primitive.ObjectID) error
	// AddEpisodesToAnime appends the ids to the anime's episode set in a
	// single write so a sync run mutates the set once per anime.
	AddEpisodesToAnime(ctx context.Context, animeID primitive.ObjectID, episodeIDs []primitive.ObjectID) error
	SetAnimeAverage(ctx context.Context, id primitive.ObjectID, average *float64) error
	// ReplaceAnimeRating atomically replaces the user's embedded tuple or
	// appends a new one, and returns the updated document.
	ReplaceAnimeRating(ctx context.Context, animeID, userID primitive.ObjectID, rating int) (*Anime, error)
	CountAnime(ctx context.Context) (int64, error)
}

type EpisodeStorage interface {
	CreateEpisode(ctx context.Context, episode Episode) (primitive.ObjectID, error)
	GetEpisode(ctx context.Context, id primitive.ObjectID) (*Episode, error)
	GetEpisodeByNumber(ctx context.Context, animeID primitive.ObjectID, number int) (*Episode, error)
	ListEpisodesByAnime(ctx context.Context, animeID primitive.ObjectID) ([]*Episode, error)
	UpdateEpisode(ctx context.Context, id primitive.ObjectID, update EpisodeUpdate) (*Episode, error)
	SetEpisodeAverage(ctx context.Context, id primitive.ObjectID, average *float64) error
	// ReplaceEpisodeRating atomically replaces the user's embedded tuple or
	// appends a new one, and returns the updated document.
	ReplaceEpisodeRating(ctx context.Context, episodeID, userID primitive.ObjectID, rating int) (*Episode, error)
}

type RatingStorage interface {
	// UpsertRating finds the ledger record for the rating's (user, anime) or
	// (user, episode) pair and updates it, creating it when absent.
	UpsertRating(ctx context.Context, rating Rating) (*Rating, error)
	ListRatingsByUser(ctx context.Context, userID primitive.ObjectID, limit int) ([]*Rating, error)
	CountRatings(ctx context.Context, kind RatingKind) (int64, error)
	CountRatingsByUser(ctx context.Context, userID primitive.ObjectID, kind RatingKind) (int64, error)
}

type UserStorage interface {
	CreateUser(ctx context.Context, user User) (primitive.ObjectID, error)
	GetUser(ctx context.Context, id primitive.ObjectID) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	AddToWatchlist(ctx context.Context, userID, animeID primitive.ObjectID) error
	RemoveFromWatchlist(ctx context.Context, userID, animeID primitive.ObjectID) error
	GrantAdFree(ctx context.Context, userID primitive.ObjectID, at time.Time) error
	CountUsers(ctx context.Context) (int64, error)
}

type AdStorage interface {
	CreateAd(ctx context.Context, ad Ad) (primitive.ObjectID, error)
	GetAd(ctx context.Context, id primitive.ObjectID) (*Ad, error)
	// ListActiveAds returns ads that are active, inside their schedule at
	// now, and below their view target, highest priority first.
	ListActiveAds(ctx context.Context, now time.Time, limit int) ([]*Ad, error)
	IncrementAdViews(ctx context.Context, id primitive.ObjectID) (*Ad, error)
	IncrementAdClicks(ctx context.Context, id primitive.ObjectID) (*Ad, error)
	SetAdActive(ctx context.Context, id primitive.ObjectID, active bool) error
}

type DonationStorage interface {
	CreateDonation(ctx context.Context, donation Donation) (primitive.ObjectID, error)
	GetDonation(ctx context.Context, id primitive.ObjectID) (*Donation, error)
	GetDonationBySession(ctx context.Context, sessionID string) (*Donation, error)
	UpdateDonationStatus(ctx context.Context, id primitive.ObjectID, status DonationStatus, completedAt *time.Time) error
	ListDonationsByUser(ctx context.Context, userID primitive.ObjectID, limit int) ([]*Donation, error)
}
