// Package config provides configuration loading for the extraction API:
// an optional YAML file overridden by environment variables.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/karkeeg/productforge/internal/llm"
)

// Environment variable names.
const (
	ConfigPathEnv  = "EXTRACTION_API_CONFIG"
	DatabaseURLEnv = "DATABASE_URL"
	LLMBaseURLEnv  = "LLM_BASE_URL"
	LLMAPIKeyEnv   = "LLM_API_KEY"
	LLMModelEnv    = "LLM_MODEL"
)

// Config holds the settings required across the application.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	LLM      llm.Config     `yaml:"llm"`
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig describes the Postgres connection.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// Load reads the YAML config file named by EXTRACTION_API_CONFIG (if any),
// applies environment overrides, and validates the result.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{Port: 8080, ShutdownTimeout: 30 * time.Second},
	}

	if path := os.Getenv(ConfigPathEnv); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("database URL is required (set %s)", DatabaseURLEnv)
	}
	if err := cfg.LLM.Normalize(); err != nil {
		return nil, err
	}
	if cfg.Server.Port <= 0 {
		return nil, fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}

	return cfg, nil
}

// applyEnv lets environment variables win over file values.
func (c *Config) applyEnv() {
	if v := os.Getenv(DatabaseURLEnv); v != "" {
		c.Database.URL = v
	}
	if v := os.Getenv(LLMBaseURLEnv); v != "" {
		c.LLM.BaseURL = v
	}
	if v := os.Getenv(LLMAPIKeyEnv); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv(LLMModelEnv); v != "" {
		c.LLM.Model = v
	}
}
