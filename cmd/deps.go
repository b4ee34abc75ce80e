package cmd

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/kiyora/animehub/config"
	"github.com/kiyora/animehub/pkg/auth"
	mhttp "github.com/kiyora/animehub/pkg/http"
	"github.com/kiyora/animehub/pkg/jikan"
	"github.com/kiyora/animehub/pkg/kitsu"
	"github.com/kiyora/animehub/pkg/mal"
	"github.com/kiyora/animehub/pkg/manager"
	"github.com/kiyora/animehub/pkg/payments"
	"github.com/kiyora/animehub/pkg/storage/mongo"
)

func providerBaseURL(p config.Provider) string {
	return fmt.Sprintf("%s://%s", p.Scheme, p.Host)
}

func providerHTTPClient(p config.Provider) *mhttp.RateLimitedClient {
	opts := []mhttp.ClientOption{}
	if p.MaxRetries > 0 {
		opts = append(opts, mhttp.WithMaxRetries(p.MaxRetries))
	}
	if p.BaseBackoff > 0 {
		opts = append(opts, mhttp.WithBaseBackoff(p.BaseBackoff))
	}
	if p.Timeout > 0 {
		opts = append(opts, mhttp.WithHTTPClient(&http.Client{Timeout: p.Timeout}))
	}
	return mhttp.NewRateLimitedHTTPClient(opts...)
}

// buildManager wires storage, provider clients, and the payment boundary
// into a manager from configuration.
func buildManager(ctx context.Context, log *zap.SugaredLogger, cfg config.Config) (manager.Manager, error) {
	store, err := mongo.New(ctx, cfg.Storage.URI, cfg.Storage.Database)
	if err != nil {
		return manager.Manager{}, fmt.Errorf("connect storage: %w", err)
	}

	if err := store.Init(ctx); err != nil {
		return manager.Manager{}, fmt.Errorf("init storage: %w", err)
	}

	malClient, err := mal.New(providerBaseURL(cfg.MAL), cfg.MAL.APIKey,
		mal.WithHTTPClient(providerHTTPClient(cfg.MAL)))
	if err != nil {
		return manager.Manager{}, fmt.Errorf("create mal client: %w", err)
	}

	jikanClient := jikan.New(providerBaseURL(cfg.Jikan),
		jikan.WithHTTPClient(providerHTTPClient(cfg.Jikan)))

	kitsuClient := kitsu.New(providerBaseURL(cfg.Kitsu),
		kitsu.WithHTTPClient(providerHTTPClient(cfg.Kitsu)))

	log.Debugw("clients ready",
		"mal", cfg.MAL.Host,
		"jikan", cfg.Jikan.Host,
		"kitsu", cfg.Kitsu.Host)

	m := manager.New(malClient, jikanClient, kitsuClient, store, payments.NewFakeProvider(), manager.Config{
		SyncInterval: cfg.Sync.Interval,
		CatalogLimit: cfg.Sync.CatalogLimit,
	})

	return m, nil
}

func tokenService(cfg config.Config) auth.TokenService {
	return auth.TokenService{
		Secret:   []byte(cfg.Auth.Secret),
		Issuer:   "animehub",
		Duration: cfg.Auth.TokenTTL,
	}
}
