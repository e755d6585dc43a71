// Package config loads and validates the application configuration from an
// optional YAML file overlaid with LOCI_-prefixed environment variables.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// Config is the full application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Auth      AuthConfig      `koanf:"auth"`
	Embedding EmbeddingConfig `koanf:"embedding"`
	Engine    EngineConfig    `koanf:"engine"`
}

// ServerConfig tunes the HTTP surface.
type ServerConfig struct {
	Host               string   `koanf:"host"`
	Port               int      `koanf:"port" validate:"gte=1,lte=65535"`
	RateLimitPerSecond float64  `koanf:"rate_limit_per_second" validate:"gte=0"`
	RateLimitBurst     int      `koanf:"rate_limit_burst" validate:"gte=0"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`
}

// DatabaseConfig points at the corpus database.
type DatabaseConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port" validate:"gte=1,lte=65535"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	Name     string `koanf:"name"`
	SSLMode  string `koanf:"ssl_mode" validate:"oneof=disable require verify-ca verify-full"`
}

// DSN renders the pgx connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

// AuthConfig controls the optional bearer auth on the API.
type AuthConfig struct {
	Enabled   bool   `koanf:"enabled"`
	JWTSecret string `koanf:"jwt_secret"`
}

// EmbeddingConfig controls the embedding collaborator boundary.
type EmbeddingConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Model     string `koanf:"model"`
	TimeoutMs int    `koanf:"timeout_ms" validate:"gte=0"`
	TopK      int    `koanf:"top_k" validate:"gte=1"`
}

// EngineConfig exposes the scoring and selection tunables; the canonical
// weight ranges live in code, the choices live here.
type EngineConfig struct {
	WeightProfile        string   `koanf:"weight_profile" validate:"omitempty,oneof=conversational live-refresh"`
	MinScore             float64  `koanf:"min_score" validate:"gte=0,lte=1"`
	MaxTotal             int      `koanf:"max_total" validate:"gte=1"`
	MaxHighlighted       int      `koanf:"max_highlighted" validate:"gte=1"`
	PerCategoryCap       int      `koanf:"per_category_cap" validate:"gte=0"`
	ForReasoning         int      `koanf:"for_reasoning" validate:"gte=1"`
	FinalRecommendations int      `koanf:"final_recommendations" validate:"gte=1"`
	SensitiveCategories  []string `koanf:"sensitive_categories"`
	InterestThreshold    float64  `koanf:"interest_threshold" validate:"gte=0,lte=1"`
	LexiconPath          string   `koanf:"lexicon_path"`
	SnapshotTTLSeconds   int      `koanf:"snapshot_ttl_seconds" validate:"gte=1"`
	RefreshRadiusKm      float64  `koanf:"refresh_radius_km" validate:"gt=0"`
}

// Default returns the configuration used when nothing is provided.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:               "0.0.0.0",
			Port:               8080,
			RateLimitPerSecond: 20,
			RateLimitBurst:     40,
			CORSAllowedOrigins: []string{"http://localhost:3000"},
		},
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    5432,
			User:    "loci",
			Name:    "loci",
			SSLMode: "disable",
		},
		Embedding: EmbeddingConfig{
			Enabled:   true,
			Model:     "gemini-embedding-001",
			TimeoutMs: 3000,
			TopK:      50,
		},
		Engine: EngineConfig{
			WeightProfile:        "conversational",
			MinScore:             0.4,
			MaxTotal:             10,
			MaxHighlighted:       5,
			ForReasoning:         10,
			FinalRecommendations: 5,
			SensitiveCategories:  []string{"nightlife"},
			InterestThreshold:    0.6,
			SnapshotTTLSeconds:   60,
			RefreshRadiusKm:      5,
		},
	}
}

// Load reads the configuration: defaults, then the YAML file at path (if it
// exists), then LOCI_-prefixed environment variables where double
// underscores separate nesting (LOCI_SERVER__PORT).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
			}
		}
	}

	envProvider := env.Provider("LOCI_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "LOCI_")), "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment config: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}
