package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/kiyora/animehub/config"
	"github.com/kiyora/animehub/pkg/logger"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "run a one-shot sync",
	Long:  `run a one-shot sync against the external catalogs`,
}

var catalogLimit int

// syncCatalogCmd imports top-ranked anime from MAL
var syncCatalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "import top-ranked anime",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.Get()
		ctx := logger.WithCtx(context.Background(), log)

		cfg, err := config.New(viper.GetViper())
		if err != nil {
			return err
		}

		m, err := buildManager(ctx, log, cfg)
		if err != nil {
			return err
		}

		result, err := m.SyncCatalog(ctx, catalogLimit)
		if err != nil {
			return err
		}

		log.Info("catalog sync finished",
			zap.Int("imported", result.Imported),
			zap.Int("skipped", result.Skipped),
			zap.Int("episodes", result.Episodes),
			zap.Int("errors", len(result.Errors)))
		return nil
	},
}

// syncEpisodesCmd reconciles episodes for one anime or all of them
var syncEpisodesCmd = &cobra.Command{
	Use:   "episodes [animeID]",
	Short: "reconcile episode metadata",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.Get()
		ctx := logger.WithCtx(context.Background(), log)

		cfg, err := config.New(viper.GetViper())
		if err != nil {
			return err
		}

		m, err := buildManager(ctx, log, cfg)
		if err != nil {
			return err
		}

		if len(args) == 1 {
			id, err := primitive.ObjectIDFromHex(args[0])
			if err != nil {
				return fmt.Errorf("invalid anime id %q", args[0])
			}

			result, err := m.SyncEpisodes(ctx, id)
			if err != nil {
				return err
			}

			log.Info("episode sync finished",
				zap.String("anime", result.Title),
				zap.Int("added", result.Added),
				zap.Int("updated", result.Updated))
			return nil
		}

		result, err := m.SyncAllEpisodes(ctx)
		if err != nil {
			return err
		}

		log.Info("bulk episode sync finished",
			zap.Int("synced", result.Synced),
			zap.Int("added", result.Added),
			zap.Int("updated", result.Updated),
			zap.Int("errors", len(result.Errors)))
		return nil
	},
}

func init() {
	syncCatalogCmd.Flags().IntVar(&catalogLimit, "limit", 0, "max ranking entries to import")
	syncCmd.AddCommand(syncCatalogCmd)
	syncCmd.AddCommand(syncEpisodesCmd)
	rootCmd.AddCommand(syncCmd)
}
