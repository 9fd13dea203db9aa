// Package config loads runtime configuration from the environment, with
// per-model matching thresholds embedded at build time.
package config

import (
	_ "embed"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed thresholds.yaml
var thresholdsYAML []byte

type Config struct {
	FaceAPI    FaceAPIConfig
	Matching   MatchingConfig
	Database   DatabaseConfig
	Web        WebConfig
	Thresholds ThresholdsConfig
}

type FaceAPIConfig struct {
	URL   string // defaults to http://localhost:8000
	Model string // detection model name, used for threshold lookup
}

type MatchingConfig struct {
	Dim       int     // embedding dimension (default 128)
	Threshold float64 // 0 means: use the per-model default from thresholds.yaml
	FirstHit  bool    // early-exit fast path, order-dependent
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL; empty selects the SQLite backend
	SQLitePath   string // SQLite database file (default rollcall.db)
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

type WebConfig struct {
	Host string // defaults to all interfaces
	Port int    // defaults to 8090
}

type ThresholdsConfig struct {
	Models map[string]ModelThreshold `yaml:"models"`
}

type ModelThreshold struct {
	Threshold float64 `yaml:"threshold"`
	Dim       int     `yaml:"dim"`
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
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

func envBool(key string) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && v
}

func envOr(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func Load() *Config {
	var thresholds ThresholdsConfig
	if err := yaml.Unmarshal(thresholdsYAML, &thresholds); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded thresholds.yaml: " + err.Error())
	}

	return &Config{
		FaceAPI: FaceAPIConfig{
			URL:   os.Getenv("FACE_API_URL"),
			Model: envOr("FACE_MODEL", "dlib"),
		},
		Matching: MatchingConfig{
			Dim:       envInt("EMBEDDING_DIM", 128),
			Threshold: envFloat("MATCH_THRESHOLD", 0),
			FirstHit:  envBool("MATCH_FIRST_HIT"),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			SQLitePath:   envOr("SQLITE_PATH", "rollcall.db"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Web: WebConfig{
			Host: os.Getenv("WEB_HOST"),
			Port: envInt("WEB_PORT", 8090),
		},
		Thresholds: thresholds,
	}
}

// MatchThreshold resolves the effective matching threshold: an explicit
// MATCH_THRESHOLD wins, otherwise the per-model default from the embedded
// table, otherwise zero (letting the matcher apply its own default).
func (c *Config) MatchThreshold() float64 {
	if c.Matching.Threshold > 0 {
		return c.Matching.Threshold
	}
	if mt, ok := c.Thresholds.Models[c.FaceAPI.Model]; ok {
		return mt.Threshold
	}
	return 0
}

// EmbeddingDim resolves the embedding dimension the same way: explicit
// EMBEDDING_DIM wins over the per-model default.
func (c *Config) EmbeddingDim() int {
	if os.Getenv("EMBEDDING_DIM") != "" {
		return c.Matching.Dim
	}
	if mt, ok := c.Thresholds.Models[c.FaceAPI.Model]; ok && mt.Dim > 0 {
		return mt.Dim
	}
	return c.Matching.Dim
}
