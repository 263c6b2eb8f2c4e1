// Package config provides application configuration with multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (DECKWISE_* prefix, plus DATABASE_URL)
//  2. Config file (~/.deckwise/config.yaml)
//  3. Default values
//
// Validation uses sentinel errors so callers can branch with errors.Is().
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrInvalidStorageDir indicates the storage directory is empty.
	ErrInvalidStorageDir = errors.New("invalid storage directory")

	// ErrInvalidModelName indicates the model name is invalid.
	ErrInvalidModelName = errors.New("invalid model name")

	// ErrInvalidEmbedderModel indicates the embedder model is invalid.
	ErrInvalidEmbedderModel = errors.New("invalid embedder model")

	// ErrInvalidTopK indicates the retrieval depth is out of range.
	ErrInvalidTopK = errors.New("invalid top_k")

	// ErrInvalidPostgresHost indicates the PostgreSQL host is invalid.
	ErrInvalidPostgresHost = errors.New("invalid PostgreSQL host")

	// ErrInvalidPostgresPort indicates the PostgreSQL port is out of range.
	ErrInvalidPostgresPort = errors.New("invalid PostgreSQL port")

	// ErrInvalidPostgresDBName indicates the PostgreSQL database name is invalid.
	ErrInvalidPostgresDBName = errors.New("invalid PostgreSQL database name")

	// ErrInvalidPostgresSSLMode indicates the PostgreSQL SSL mode is invalid.
	ErrInvalidPostgresSSLMode = errors.New("invalid PostgreSQL SSL mode")
)

const (
	// DefaultModelName is the default generation model for synergy answers.
	DefaultModelName = "gemini-2.5-flash"

	// DefaultEmbedderModel outputs 3072 dimensions by default but supports
	// truncation to 768; the pgvector schema in db/migrations uses 768.
	DefaultEmbedderModel = "gemini-embedding-001"

	// DefaultTopK is the default retrieval depth for synergy queries.
	DefaultTopK = 8

	// MaxTopK bounds retrieval depth; deeper retrieval only adds noise to
	// the prompt context window.
	MaxTopK = 25
)

// Config stores application configuration.
type Config struct {
	// Corpus storage
	StorageDir string `mapstructure:"storage_dir"` // JSONL output directory
	OutputFile string `mapstructure:"output_file"` // combined corpus filename

	// AI models (used by index/synergy commands only)
	ModelName     string `mapstructure:"model_name"`
	EmbedderModel string `mapstructure:"embedder_model"`
	TopK          int    `mapstructure:"top_k"`

	// PostgreSQL (vector index backend)
	PostgresHost     string `mapstructure:"postgres_host"`
	PostgresPort     int    `mapstructure:"postgres_port"`
	PostgresUser     string `mapstructure:"postgres_user"`
	PostgresPassword string `mapstructure:"postgres_password"`
	PostgresDBName   string `mapstructure:"postgres_dbname"`
	PostgresSSLMode  string `mapstructure:"postgres_sslmode"`
}

// Load reads configuration from defaults, an optional config file, and
// environment variables, then validates the result.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// Optional config file: ~/.deckwise/config.yaml
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".deckwise"))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			// Missing file is fine, defaults apply.
		}
	}

	// Environment overrides: DECKWISE_STORAGE_DIR, DECKWISE_POSTGRES_HOST, ...
	v.SetEnvPrefix("DECKWISE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// DATABASE_URL overrides individual postgres_* settings.
	if err := cfg.parseDatabaseURL(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("storage_dir", "./storage")
	v.SetDefault("output_file", "all_docs.jsonl")
	v.SetDefault("model_name", DefaultModelName)
	v.SetDefault("embedder_model", DefaultEmbedderModel)
	v.SetDefault("top_k", DefaultTopK)
	v.SetDefault("postgres_host", "localhost")
	v.SetDefault("postgres_port", 5432)
	v.SetDefault("postgres_user", "deckwise")
	v.SetDefault("postgres_password", "")
	v.SetDefault("postgres_dbname", "deckwise")
	v.SetDefault("postgres_sslmode", "disable")
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}
	if strings.TrimSpace(c.StorageDir) == "" {
		return fmt.Errorf("%w: must not be empty", ErrInvalidStorageDir)
	}
	if strings.TrimSpace(c.ModelName) == "" {
		return fmt.Errorf("%w: must not be empty", ErrInvalidModelName)
	}
	if strings.TrimSpace(c.EmbedderModel) == "" {
		return fmt.Errorf("%w: must not be empty", ErrInvalidEmbedderModel)
	}
	if c.TopK < 1 || c.TopK > MaxTopK {
		return fmt.Errorf("%w: %d (must be 1-%d)", ErrInvalidTopK, c.TopK, MaxTopK)
	}
	if strings.TrimSpace(c.PostgresHost) == "" {
		return fmt.Errorf("%w: must not be empty", ErrInvalidPostgresHost)
	}
	if c.PostgresPort < 1 || c.PostgresPort > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPostgresPort, c.PostgresPort)
	}
	if strings.TrimSpace(c.PostgresDBName) == "" {
		return fmt.Errorf("%w: must not be empty", ErrInvalidPostgresDBName)
	}
	switch c.PostgresSSLMode {
	case "disable", "allow", "prefer", "require", "verify-ca", "verify-full":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidPostgresSSLMode, c.PostgresSSLMode)
	}
	return nil
}
