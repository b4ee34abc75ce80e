package manager

import (
	"github.com/kiyora/animehub/pkg/pagination"
	"github.com/kiyora/animehub/pkg/storage"
)

// SyncResult reports one anime's episode sync.
type SyncResult struct {
	AnimeID string   `json:"animeId"`
	Title   string   `json:"title"`
	Added   int      `json:"added"`
	Updated int      `json:"updated"`
	Sources []string `json:"sources"`
}

// SyncError pairs an anime with the failure that aborted its sync.
type SyncError struct {
	AnimeID string `json:"animeId"`
	Title   string `json:"title"`
	Error   string `json:"error"`
}

// BulkSyncResult accumulates per-anime results across a full sweep. A failed
// anime lands in Errors without stopping the rest.
type BulkSyncResult struct {
	Synced  int          `json:"synced"`
	Added   int          `json:"added"`
	Updated int          `json:"updated"`
	Results []SyncResult `json:"results"`
	Errors  []SyncError  `json:"errors"`
}

// CatalogSyncResult reports a ranking import.
type CatalogSyncResult struct {
	Imported int         `json:"imported"`
	Skipped  int         `json:"skipped"`
	Episodes int         `json:"episodes"`
	Errors   []SyncError `json:"errors"`
}

// EpisodeRatingResult is returned by RateEpisode. AnimeRating is the rollup
// over rated episodes, freshly recomputed.
type EpisodeRatingResult struct {
	EpisodeRating float64 `json:"episodeRating"`
	AnimeRating   float64 `json:"animeRating"`
}

// AnimeRatingResult is returned by RateAnime, the direct-tuple path.
type AnimeRatingResult struct {
	AverageRating float64 `json:"averageRating"`
}

// AnimeListItem is one row of the ranked catalog view. AverageRating is
// rounded to one decimal for display; unrated anime render 0.
type AnimeListItem struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	TitleEnglish  string   `json:"titleEnglish,omitempty"`
	Poster        string   `json:"poster,omitempty"`
	Type          string   `json:"type,omitempty"`
	Status        string   `json:"status,omitempty"`
	Genres        []string `json:"genres,omitempty"`
	EpisodeCount  int      `json:"episodeCount"`
	AverageRating float64  `json:"averageRating"`
	Rank          int      `json:"rank"`
}

// AnimeListResult is the catalog list envelope.
type AnimeListResult struct {
	Anime      []AnimeListItem `json:"anime"`
	Pagination pagination.Meta `json:"pagination"`
}

// AnimeDetail is a single anime with its episodes.
type AnimeDetail struct {
	Anime         *storage.Anime     `json:"anime"`
	Episodes      []*storage.Episode `json:"episodes"`
	AverageRating float64            `json:"averageRating"`
}

// Stats is the admin dashboard summary.
type Stats struct {
	AnimeCount     int64  `json:"animeCount"`
	UserCount      int64  `json:"userCount"`
	RatingCount    int64  `json:"ratingCount"`
	AnimeRatings   int64  `json:"animeRatings"`
	EpisodeRatings int64  `json:"episodeRatings"`
	Summary        string `json:"summary"`
}

// Profile is the authenticated user's view of their own account.
type Profile struct {
	User          *storage.User       `json:"user"`
	RatingCount   int64               `json:"ratingCount"`
	WatchlistSize int                 `json:"watchlistSize"`
	Donations     []*storage.Donation `json:"donations"`
}
