package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/macrolens/basket/internal/usecase"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server      ServerConfig       `mapstructure:"server"`
	Log         LogConfig          `mapstructure:"log"`
	Matching    MatchingConfig     `mapstructure:"matching"`
	Catalog     CatalogConfig      `mapstructure:"catalog"`
	Storefronts []StorefrontConfig `mapstructure:"storefronts"`
	RateLimit   RateLimitConfig    `mapstructure:"ratelimit"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// MatchingConfig holds the ranking pipeline options
type MatchingConfig struct {
	FreshnessWindow   time.Duration `mapstructure:"freshness_window"`
	ScoreThreshold    float64       `mapstructure:"score_threshold"`
	PerSourceTimeout  time.Duration `mapstructure:"per_source_timeout"`
	DefaultMaxResults int           `mapstructure:"default_max_results"`
	BatchConcurrency  int           `mapstructure:"batch_concurrency"`
	Synonyms          [][]string    `mapstructure:"synonyms"` // extra alias groups
}

// CatalogConfig holds the local catalog configuration
type CatalogConfig struct {
	Path string `mapstructure:"path"` // JSON seed file, optional
}

// StorefrontConfig describes one external storefront search API
type StorefrontConfig struct {
	ID                string        `mapstructure:"id"`
	Name              string        `mapstructure:"name"`
	Domain            string        `mapstructure:"domain"`
	BaseURL           string        `mapstructure:"base_url"`
	APIKey            string        `mapstructure:"api_key"`
	Currency          string        `mapstructure:"currency"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	Timeout           time.Duration `mapstructure:"timeout"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/basket/")

	// Environment variable settings
	v.SetEnvPrefix("BASKET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	applyStorefrontKeys(config.Storefronts)

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// LoadEnvFile loads a .env file from the working directory if one exists.
// Variables already present in the environment win.
func LoadEnvFile() error {
	return loadEnvFile()
}

func loadEnvFile() error {
	if _, err := os.Stat(".env"); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(".env"); err != nil {
		return fmt.Errorf("error loading .env file: %w", err)
	}
	return nil
}

// PipelineConfig maps the matching section onto the ranking pipeline options
func (c *Config) PipelineConfig() usecase.PipelineConfig {
	return usecase.PipelineConfig{
		FreshnessWindow:   c.Matching.FreshnessWindow,
		ScoreThreshold:    c.Matching.ScoreThreshold,
		PerSourceTimeout:  c.Matching.PerSourceTimeout,
		DefaultMaxResults: c.Matching.DefaultMaxResults,
		BatchConcurrency:  c.Matching.BatchConcurrency,
	}
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	v.SetDefault("log.level", "info")

	// Matching defaults
	v.SetDefault("matching.freshness_window", "168h") // 7 days
	v.SetDefault("matching.score_threshold", usecase.DefaultScoreThreshold)
	v.SetDefault("matching.per_source_timeout", usecase.DefaultPerSourceTimeout.String())
	v.SetDefault("matching.default_max_results", usecase.DefaultMaxResults)
	v.SetDefault("matching.batch_concurrency", usecase.DefaultBatchConcurrency)

	v.SetDefault("catalog.path", "")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)
}

// applyStorefrontKeys fills missing API keys from BASKET_STOREFRONT_<ID>_API_KEY
func applyStorefrontKeys(storefronts []StorefrontConfig) {
	for i := range storefronts {
		if storefronts[i].APIKey != "" {
			continue
		}
		id := strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(storefronts[i].ID))
		storefronts[i].APIKey = os.Getenv("BASKET_STOREFRONT_" + id + "_API_KEY")
	}
}

// validate validates the configuration
func validate(config *Config) error {
	m := config.Matching
	if m.ScoreThreshold <= 0 || m.ScoreThreshold >= 1 {
		return fmt.Errorf("matching score threshold must be in (0, 1), got: %v", m.ScoreThreshold)
	}
	if m.FreshnessWindow <= 0 {
		return fmt.Errorf("matching freshness window must be positive, got: %v", m.FreshnessWindow)
	}
	if m.PerSourceTimeout <= 0 {
		return fmt.Errorf("matching per-source timeout must be positive, got: %v", m.PerSourceTimeout)
	}
	if m.DefaultMaxResults <= 0 {
		return fmt.Errorf("matching default max results must be positive, got: %d", m.DefaultMaxResults)
	}

	seen := make(map[string]bool, len(config.Storefronts))
	for i, sf := range config.Storefronts {
		if sf.ID == "" || sf.Name == "" || sf.BaseURL == "" {
			return fmt.Errorf("storefront %d requires id, name and base_url", i)
		}
		if seen[sf.ID] {
			return fmt.Errorf("duplicate storefront id: %s", sf.ID)
		}
		seen[sf.ID] = true
	}

	if config.RateLimit.PerIP < 0 {
		return fmt.Errorf("rate limit per IP must not be negative, got: %d", config.RateLimit.PerIP)
	}

	return nil
}
