package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/kiyora/animehub/config"
	"github.com/kiyora/animehub/pkg/logger"
	"github.com/kiyora/animehub/server"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "start the catalog server",
	Long:  `start the catalog server`,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.Get()

		cfg, err := config.New(viper.GetViper())
		if err != nil {
			log.Fatal("failed to read configurations", zap.Error(err))
		}

		m, err := buildManager(context.Background(), log, cfg)
		if err != nil {
			log.Fatal("failed to build manager", zap.Error(err))
		}

		srv := server.New(log, m, tokenService(cfg))
		log.Error(srv.Serve(cfg.Server.Port))
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
