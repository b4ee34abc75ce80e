// Package manager holds the application core: episode reconciliation against
// external providers, rating aggregation with the two-level rollup, the
// catalog query layer, and the thin admin/user/donation operations around
// them.
package manager

import (
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/time/rate"

	"github.com/kiyora/animehub/pkg/cache"
	"github.com/kiyora/animehub/pkg/jikan"
	"github.com/kiyora/animehub/pkg/kitsu"
	"github.com/kiyora/animehub/pkg/mal"
	"github.com/kiyora/animehub/pkg/payments"
	"github.com/kiyora/animehub/pkg/storage"
)

type MALClientInterface mal.ClientInterface
type JikanClientInterface jikan.ClientInterface
type KitsuClientInterface kitsu.ClientInterface

// Config tunes sync behavior.
type Config struct {
	// SyncInterval is the minimum delay between anime during bulk sync.
	// Provider quotas make this mandatory; zero disables pacing (tests).
	SyncInterval time.Duration
	// CatalogLimit caps how many ranking entries a catalog sync imports.
	CatalogLimit int
}

type Manager struct {
	mal      MALClientInterface
	jikan    JikanClientInterface
	kitsu    KitsuClientInterface
	storage  storage.Storage
	payments payments.Provider
	limiter  *rate.Limiter
	validate *validator.Validate
	config   Config

	// seriesIDs memoizes the kitsu series resolved for a folded title so
	// bulk syncs don't repeat the search for anime already joined once.
	seriesIDs *cache.Cache[string, string]
}

func New(malClient MALClientInterface, jikanClient JikanClientInterface, kitsuClient KitsuClientInterface, store storage.Storage, provider payments.Provider, config Config) Manager {
	if config.CatalogLimit <= 0 {
		config.CatalogLimit = 50
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if config.SyncInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(config.SyncInterval), 1)
	}

	return Manager{
		mal:      malClient,
		jikan:    jikanClient,
		kitsu:    kitsuClient,
		storage:  store,
		payments: provider,
		limiter:  limiter,
		validate: validator.New(),
		config:   config,

		seriesIDs: cache.New[string, string](),
	}
}
