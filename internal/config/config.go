// Package config provides application configuration with multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (STRIDE_* prefix)
//  2. Config file (/etc/stride/config.yaml or ./config.yaml)
//  3. Default values
//
// Security: secrets (Postgres password, auth secret, provider API keys) are
// never logged; validation lives in validation.go with sentinel errors.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var (
	// ErrInvalidProvider indicates the AI provider is not supported.
	ErrInvalidProvider = errors.New("invalid provider")

	// ErrInvalidModelName indicates the model name is invalid.
	ErrInvalidModelName = errors.New("invalid model name")

	// ErrInvalidMaxToolRounds indicates the tool-round cap is out of range.
	ErrInvalidMaxToolRounds = errors.New("invalid max tool rounds")

	// ErrInvalidPostgresHost indicates the PostgreSQL host is invalid.
	ErrInvalidPostgresHost = errors.New("invalid PostgreSQL host")

	// ErrInvalidPostgresPort indicates the PostgreSQL port is out of range.
	ErrInvalidPostgresPort = errors.New("invalid PostgreSQL port")

	// ErrInvalidPostgresDBName indicates the PostgreSQL database name is invalid.
	ErrInvalidPostgresDBName = errors.New("invalid PostgreSQL database name")

	// ErrInvalidGatewayURL indicates the fitness gateway base URL is invalid.
	ErrInvalidGatewayURL = errors.New("invalid gateway URL")

	// ErrMissingAuthSecret indicates the API auth secret is not set.
	ErrMissingAuthSecret = errors.New("missing auth secret")

	// ErrInvalidAuthSecret indicates the API auth secret is too short.
	ErrInvalidAuthSecret = errors.New("invalid auth secret")

	// ErrInvalidRequestTimeout indicates the per-request deadline is out of range.
	ErrInvalidRequestTimeout = errors.New("invalid request timeout")
)

// AI provider identifiers used in Config.Provider.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

const (
	// DefaultModelName is the model used when none is configured.
	DefaultModelName = "googleai/gemini-2.5-flash"

	// DefaultMaxToolRounds bounds the agentic loop.
	DefaultMaxToolRounds = 5

	// DefaultRequestTimeout covers up to DefaultMaxToolRounds sequential
	// provider round trips.
	DefaultRequestTimeout = 3 * time.Minute

	// MinAuthSecretLength is the minimum length for the HMAC auth secret.
	MinAuthSecretLength = 32
)

// Config stores application configuration.
type Config struct {
	// AI provider and model
	Provider       string        `mapstructure:"provider"`
	ModelName      string        `mapstructure:"model_name"`
	MaxToolRounds  int           `mapstructure:"max_tool_rounds"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`

	// HTTP server
	ListenAddr string `mapstructure:"listen_addr"`

	// Bearer-token auth (HMAC-signed JWTs)
	AuthSecret string `mapstructure:"auth_secret"`

	// Fitness data gateway
	GatewayURL string `mapstructure:"gateway_url"`

	// PostgreSQL
	PostgresHost     string `mapstructure:"postgres_host"`
	PostgresPort     int    `mapstructure:"postgres_port"`
	PostgresUser     string `mapstructure:"postgres_user"`
	PostgresPassword string `mapstructure:"postgres_password"`
	PostgresDBName   string `mapstructure:"postgres_dbname"`
	PostgresSSLMode  string `mapstructure:"postgres_sslmode"`

	// Logging
	LogLevel string `mapstructure:"log_level"`
	LogJSON  bool   `mapstructure:"log_json"`
}

// Load reads configuration from defaults, an optional config file, and
// STRIDE_* environment variables, in ascending priority.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("provider", ProviderGemini)
	v.SetDefault("model_name", DefaultModelName)
	v.SetDefault("max_tool_rounds", DefaultMaxToolRounds)
	v.SetDefault("request_timeout", DefaultRequestTimeout)
	v.SetDefault("listen_addr", "127.0.0.1:8080")
	v.SetDefault("gateway_url", "")
	v.SetDefault("postgres_host", "localhost")
	v.SetDefault("postgres_port", 5432)
	v.SetDefault("postgres_user", "stride")
	v.SetDefault("postgres_dbname", "stride")
	v.SetDefault("postgres_sslmode", "prefer")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/stride")
	v.AddConfigPath(".")

	v.SetEnvPrefix("STRIDE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// Missing config file is fine; env vars and defaults still apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
