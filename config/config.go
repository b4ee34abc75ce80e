package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server  Server   `json:"server" yaml:"server" mapstructure:"server"`
	Storage Storage  `json:"storage" yaml:"storage" mapstructure:"storage"`
	MAL     Provider `json:"mal" yaml:"mal" mapstructure:"mal"`
	Jikan   Provider `json:"jikan" yaml:"jikan" mapstructure:"jikan"`
	Kitsu   Provider `json:"kitsu" yaml:"kitsu" mapstructure:"kitsu"`
	Sync    Sync     `json:"sync" yaml:"sync" mapstructure:"sync"`
	Auth    Auth     `json:"auth" yaml:"auth" mapstructure:"auth"`
}

type Server struct {
	Port int `json:"port" yaml:"port" mapstructure:"port"`
}

// Storage points at the mongo deployment backing the catalog.
type Storage struct {
	URI      string `json:"uri" yaml:"uri" mapstructure:"uri"`
	Database string `json:"database" yaml:"database" mapstructure:"database"`
}

// Provider configures one external metadata API. APIKey is only used by
// providers that require one (MAL's client id).
type Provider struct {
	Scheme      string        `json:"scheme" yaml:"scheme" mapstructure:"scheme"`
	Host        string        `json:"host" yaml:"host" mapstructure:"host"`
	APIKey      string        `json:"apiKey" yaml:"apiKey" mapstructure:"apiKey"`
	BaseBackoff time.Duration `json:"backoff" yaml:"backoff" mapstructure:"backoff"`
	MaxRetries  int           `json:"maxRetries" yaml:"maxRetries" mapstructure:"maxRetries"`
	Timeout     time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// Sync tunes the reconciliation engine.
type Sync struct {
	Interval     time.Duration `json:"interval" yaml:"interval" mapstructure:"interval"`
	CatalogLimit int           `json:"catalogLimit" yaml:"catalogLimit" mapstructure:"catalogLimit"`
}

type Auth struct {
	Secret   string        `json:"secret" yaml:"secret" mapstructure:"secret"`
	TokenTTL time.Duration `json:"tokenTTL" yaml:"tokenTTL" mapstructure:"tokenTTL"`
}

type ConfigUnmarshaler interface {
	ReadInConfig() error
	Unmarshal(any, ...viper.DecoderConfigOption) error
	ConfigFileUsed() string
}

// New reads a new configuration
func New(cu ConfigUnmarshaler) (Config, error) {
	var c Config

	if cu.ConfigFileUsed() != "" {
		err := cu.ReadInConfig()
		if err != nil {
			return c, err
		}
	}

	err := cu.Unmarshal(&c)
	return c, err
}
