package config

import (
	_ "embed"
	"math"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/balasai14/multi-face-reg/internal/constants"
)

//go:embed thresholds.yaml
var thresholdsYAML []byte

type Config struct {
	Auth       AuthConfig
	Matching   MatchingConfig
	Extractor  ExtractorConfig
	Database   DatabaseConfig
	Thresholds ThresholdsConfig
}

type AuthConfig struct {
	JWTSecret     string
	TokenLifetime time.Duration
}

type MatchingConfig struct {
	Threshold     float64 // maximum Euclidean distance for a match
	DescriptorDim int     // descriptor vector length (128 for face-api)
	ValueBound    float64 // descriptor elements must lie in [-Bound, +Bound]
}

type ExtractorConfig struct {
	URL   string // external descriptor extraction service (e.g. http://localhost:8000)
	Model string // extractor model name, used to look up a threshold profile
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL
	MariaDBDSN   string // MariaDB DSN, alternative backend (e.g. facereg:facereg@tcp(mariadb:3306)/facereg)
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

type ThresholdsConfig struct {
	Models map[string]ModelThreshold `yaml:"models"`
}

type ModelThreshold struct {
	Threshold float64 `yaml:"threshold"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a positive float.
// Returns the default value if the env var is unset, empty, or invalid.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 && !math.IsInf(f, 1) {
		return f
	}
	return defaultVal
}

func Load() *Config {
	var thresholds ThresholdsConfig
	if err := yaml.Unmarshal(thresholdsYAML, &thresholds); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded thresholds.yaml: " + err.Error())
	}

	cfg := &Config{
		Auth: AuthConfig{
			JWTSecret:     os.Getenv("JWT_SECRET"),
			TokenLifetime: time.Duration(envInt("TOKEN_LIFETIME_MINUTES", 60)) * time.Minute,
		},
		Matching: MatchingConfig{
			DescriptorDim: envInt("DESCRIPTOR_DIM", constants.DefaultDescriptorDim),
			ValueBound:    envFloat("DESCRIPTOR_VALUE_BOUND", constants.DescriptorValueBound),
		},
		Extractor: ExtractorConfig{
			URL:   os.Getenv("EXTRACTOR_URL"),
			Model: os.Getenv("EXTRACTOR_MODEL"),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MariaDBDSN:   os.Getenv("MARIADB_DSN"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Thresholds: thresholds,
	}

	// Threshold resolution order: explicit env var, model profile, default.
	cfg.Matching.Threshold = envFloat("MATCH_THRESHOLD", cfg.ThresholdForModel(cfg.Extractor.Model))

	return cfg
}

// ThresholdForModel returns the match threshold profile for an extractor
// model, falling back to the default operating point for unknown models.
func (c *Config) ThresholdForModel(model string) float64 {
	if profile, ok := c.Thresholds.Models[model]; ok && profile.Threshold > 0 {
		return profile.Threshold
	}
	return constants.DefaultMatchThreshold
}
