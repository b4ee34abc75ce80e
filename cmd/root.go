package cmd

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "animehub",
	Short: "animehub catalog server cli",
	Long:  `animehub catalog server cli`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file")
}

func initConfig() {
	viper.SetConfigFile(cfgFile)

	viper.SetEnvPrefix("ANIMEHUB")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", ""))
	viper.AutomaticEnv()

	viper.SetDefault("server.port", 8080)

	viper.SetDefault("storage.uri", "mongodb://localhost:27017")
	viper.SetDefault("storage.database", "animehub")

	viper.SetDefault("mal.scheme", "https")
	viper.SetDefault("mal.host", "api.myanimelist.net/v2")
	viper.SetDefault("mal.apiKey", "")
	viper.SetDefault("mal.backoff", time.Second)
	viper.SetDefault("mal.maxRetries", 5)
	viper.SetDefault("mal.timeout", 10*time.Second)

	viper.SetDefault("jikan.scheme", "https")
	viper.SetDefault("jikan.host", "api.jikan.moe/v4")
	viper.SetDefault("jikan.backoff", time.Second)
	viper.SetDefault("jikan.maxRetries", 5)
	viper.SetDefault("jikan.timeout", 10*time.Second)

	viper.SetDefault("kitsu.scheme", "https")
	viper.SetDefault("kitsu.host", "kitsu.io/api/edge")
	viper.SetDefault("kitsu.backoff", time.Second)
	viper.SetDefault("kitsu.maxRetries", 5)
	viper.SetDefault("kitsu.timeout", 10*time.Second)

	viper.SetDefault("sync.interval", 2*time.Second)
	viper.SetDefault("sync.catalogLimit", 50)

	viper.SetDefault("auth.secret", "")
	viper.SetDefault("auth.tokenTTL", 24*time.Hour)
}
