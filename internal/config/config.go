// Package config loads the service configuration: environment variables for
// deployment concerns and an optional YAML file overriding the estimation
// model tables.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"grid-atlas/internal/catalog"
	"grid-atlas/internal/regions"
)

// Config is the environment-driven service configuration.
type Config struct {
	HTTPAddr         string
	DataDir          string
	TelemetryBaseURL string
	TelemetryTimeout time.Duration
	CacheTTL         time.Duration
	JWTSecret        string
	// DatabaseURL enables the run archive when set.
	DatabaseURL     string
	ModelConfigPath string
	CORSOrigins     []string
}

// Load reads the environment, merging a .env file if present.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		HTTPAddr:         getenvDefault("HTTP_ADDR", ":8080"),
		DataDir:          getenvDefault("DATA_DIR", "./data"),
		TelemetryBaseURL: getenvDefault("ENTSOE_BRIDGE_URL", ""),
		TelemetryTimeout: getenvDuration("ENTSOE_BRIDGE_TIMEOUT", 15*time.Second),
		CacheTTL:         getenvDuration("CACHE_TTL", 5*time.Minute),
		JWTSecret:        getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
		DatabaseURL:      getenvDefault("DATABASE_URL", ""),
		ModelConfigPath:  getenvDefault("MODEL_CONFIG", ""),
		CORSOrigins:      []string{getenvDefault("CORS_ORIGIN", "*")},
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("config: AUTH_JWT_SECRET is required")
	}
	return cfg, nil
}

// ModelConfig overrides the built-in estimation model tables. Every field is
// optional; zero values keep the defaults.
type ModelConfig struct {
	FallbackLoadMW      float64                      `yaml:"fallback_load_mw"`
	RegionalLoadFactors map[regions.Region]float64   `yaml:"regional_load_factors"`
	DefaultUtilization  map[catalog.Category]float64 `yaml:"default_utilization"`
	BorderBoxes         map[string]BorderBoxConfig   `yaml:"border_boxes"`
}

// BorderBoxConfig is one country's border window in the YAML override.
type BorderBoxConfig struct {
	MinLat float64 `yaml:"min_lat"`
	MaxLat float64 `yaml:"max_lat"`
	MinLon float64 `yaml:"min_lon"`
	MaxLon float64 `yaml:"max_lon"`
}

// LoadModel reads the model override file. An empty path yields an empty
// override; a named but unreadable file is an error.
func LoadModel(path string) (ModelConfig, error) {
	if path == "" {
		return ModelConfig{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ModelConfig{}, fmt.Errorf("config: read model config: %w", err)
	}
	var mc ModelConfig
	if err := yaml.Unmarshal(data, &mc); err != nil {
		return ModelConfig{}, fmt.Errorf("config: parse model config: %w", err)
	}
	return mc, nil
}

// Boxes converts the override windows to the regions type, or nil when none
// are configured.
func (m ModelConfig) Boxes() map[string]regions.BorderBox {
	if len(m.BorderBoxes) == 0 {
		return nil
	}
	out := make(map[string]regions.BorderBox, len(m.BorderBoxes))
	for country, b := range m.BorderBoxes {
		out[country] = regions.BorderBox{MinLat: b.MinLat, MaxLat: b.MaxLat, MinLon: b.MinLon, MaxLon: b.MaxLon}
	}
	return out
}

// LoadFactor returns a lookup honoring the configured regional overrides,
// falling back to the built-in table.
func (m ModelConfig) LoadFactor(lat, lon float64) float64 {
	r := regions.Of(lat, lon)
	if f, ok := m.RegionalLoadFactors[r]; ok {
		return f
	}
	return regions.LoadFactor(r)
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
