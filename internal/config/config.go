package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Credential CredentialConfig `mapstructure:"credential"`
	Token      TokenConfig      `mapstructure:"token"`
	Sink       SinkConfig       `mapstructure:"sink"`
	Ingestion  IngestionConfig  `mapstructure:"ingestion"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type AuthConfig struct {
	// SharedSecret enables HMAC signature verification when non-empty.
	SharedSecret string `mapstructure:"shared_secret"`
}

type CredentialConfig struct {
	// File points at a structured JSON secret holding client_email,
	// private_key and optionally token_uri. Takes precedence over the
	// discrete fields below.
	File           string `mapstructure:"file"`
	Email          string `mapstructure:"email"`
	PrivateKey     string `mapstructure:"private_key"`
	PrivateKeyFile string `mapstructure:"private_key_file"`
}

type TokenConfig struct {
	URL         string        `mapstructure:"url"`
	Scope       string        `mapstructure:"scope"`
	Timeout     time.Duration `mapstructure:"timeout"`
	RefreshSkew time.Duration `mapstructure:"refresh_skew"`
}

type SinkConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Project string        `mapstructure:"project"`
	Dataset string        `mapstructure:"dataset"`
	Table   string        `mapstructure:"table"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type IngestionConfig struct {
	MaxEventSize      int64         `mapstructure:"max_event_size"`
	RateLimitEnabled  bool          `mapstructure:"rate_limit_enabled"`
	RateLimitRequests int           `mapstructure:"rate_limit_requests"`
	RateLimitWindow   time.Duration `mapstructure:"rate_limit_window"`
}

type RedisConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("server.port", 8095)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("auth.shared_secret", "")
	v.SetDefault("token.url", "https://oauth2.googleapis.com/token")
	v.SetDefault("token.scope", "https://www.googleapis.com/auth/bigquery.insertdata")
	v.SetDefault("token.timeout", "10s")
	v.SetDefault("token.refresh_skew", "1m")
	v.SetDefault("sink.base_url", "https://bigquery.googleapis.com/bigquery/v2")
	v.SetDefault("sink.timeout", "10s")
	v.SetDefault("ingestion.max_event_size", 1048576)
	v.SetDefault("ingestion.rate_limit_enabled", false)
	v.SetDefault("ingestion.rate_limit_requests", 10000)
	v.SetDefault("ingestion.rate_limit_window", "1m")
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.url", "redis://localhost:6379")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Read config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/telhawk/logrelay")
	}

	// Environment variables override (LOGRELAY_SERVER_PORT, etc.)
	v.SetEnvPrefix("LOGRELAY")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found; use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
