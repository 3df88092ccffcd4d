// Package config loads the service configuration from environment-named
// YAML files with ${VAR} expansion.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the search API configuration.
type Config struct {
	HTTP          HTTPConfig          `yaml:"http"`
	Elasticsearch ElasticsearchConfig `yaml:"elasticsearch"`
	Fasttext      FasttextConfig      `yaml:"fasttext"`
	Redis         RedisConfig         `yaml:"redis"`
	Search        SearchConfig        `yaml:"search"`
	Semantic      SemanticConfig      `yaml:"semantic"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// ElasticsearchConfig holds search engine settings.
type ElasticsearchConfig struct {
	Addr             string `yaml:"addr"`
	ContentIndex     string `yaml:"content_index"`
	DepartmentsIndex string `yaml:"departments_index"`
	TimeoutSec       int    `yaml:"timeout_sec"`
}

// FasttextConfig holds embedding microservice settings.
type FasttextConfig struct {
	Addr       string `yaml:"addr"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// RedisConfig holds session store settings.
type RedisConfig struct {
	Addrs           []string `yaml:"addrs"`
	Password        string   `yaml:"password"`
	KeyPrefix       string   `yaml:"key_prefix"`
	SessionTTLHours int      `yaml:"session_ttl_hours"`
	MaxSessions     int      `yaml:"max_sessions_per_user"`
}

// SearchConfig holds result shaping settings.
type SearchConfig struct {
	DefaultPageSize int  `yaml:"default_page_size"`
	MaxPageSize     int  `yaml:"max_page_size"`
	MaxVisibleLinks int  `yaml:"max_visible_paginator_links"`
	Highlight       bool `yaml:"highlight"`
}

// SemanticConfig holds semantic search and personalization settings.
type SemanticConfig struct {
	Enabled        bool    `yaml:"enabled"`
	NumLabels      int     `yaml:"num_labels"`
	LabelThreshold float64 `yaml:"label_threshold"`
	LearningRate   float64 `yaml:"learning_rate"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// Load reads configuration from a YAML file by environment name (local,
// dev, prod).
func Load(env string) (Config, error) {
	configPath := filepath.Join("config", fmt.Sprintf("%s.yaml", env))

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from ENV, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Elasticsearch.ContentIndex == "" {
		c.Elasticsearch.ContentIndex = "ons"
	}
	if c.Elasticsearch.DepartmentsIndex == "" {
		c.Elasticsearch.DepartmentsIndex = "departments"
	}
	if c.Elasticsearch.TimeoutSec <= 0 {
		c.Elasticsearch.TimeoutSec = 10
	}
	if c.Fasttext.TimeoutSec <= 0 {
		c.Fasttext.TimeoutSec = 5
	}
	if c.Redis.KeyPrefix == "" {
		c.Redis.KeyPrefix = "search:"
	}
	if c.Redis.SessionTTLHours <= 0 {
		c.Redis.SessionTTLHours = 14 * 24
	}
	if c.Redis.MaxSessions <= 0 {
		c.Redis.MaxSessions = 5
	}
	if c.Search.DefaultPageSize <= 0 {
		c.Search.DefaultPageSize = 10
	}
	if c.Search.MaxPageSize <= 0 {
		c.Search.MaxPageSize = 100
	}
	if c.Search.MaxVisibleLinks <= 0 {
		c.Search.MaxVisibleLinks = 5
	}
	if c.Semantic.NumLabels <= 0 {
		c.Semantic.NumLabels = 10
	}
	if c.Semantic.LearningRate <= 0 {
		c.Semantic.LearningRate = 0.25
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Elasticsearch.Addr == "" {
		return fmt.Errorf("elasticsearch.addr is required")
	}
	if c.Semantic.Enabled && c.Fasttext.Addr == "" {
		return fmt.Errorf("fasttext.addr is required when semantic search is enabled")
	}
	if c.Semantic.LabelThreshold < 0 || c.Semantic.LabelThreshold > 1 {
		return fmt.Errorf("semantic.label_threshold must be between 0 and 1, got %v", c.Semantic.LabelThreshold)
	}
	if c.Semantic.LearningRate > 1 {
		return fmt.Errorf("semantic.learning_rate must be between 0 and 1, got %v", c.Semantic.LearningRate)
	}
	if c.Search.MaxPageSize < c.Search.DefaultPageSize {
		return fmt.Errorf("search.max_page_size %d is below the default page size %d",
			c.Search.MaxPageSize, c.Search.DefaultPageSize)
	}
	return nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment
// variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
