// Package llm provides the streaming chat-completion client for the
// extraction pipeline. The upstream speaks the OpenAI-compatible protocol:
// JSON request with stream:true, chunked response of "data: <json>" lines
// terminated by "data: [DONE]".
package llm

import (
	"fmt"
	"time"
)

// Defaults mirror the sampling parameters the pipeline was tuned with.
const (
	DefaultModel       = "gpt-4.1-mini"
	DefaultMaxTokens   = 3000
	DefaultTemperature = 0.7
	DefaultTimeout     = 120 * time.Second
)

// Config holds connection and sampling settings for the upstream endpoint.
type Config struct {
	BaseURL        string        `yaml:"base_url"`
	APIKey         string        `yaml:"api_key"`
	Model          string        `yaml:"model"`
	MaxTokens      int           `yaml:"max_tokens"`
	Temperature    float64       `yaml:"temperature"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// Normalize fills zero-value fields with defaults and validates the rest.
func (c *Config) Normalize() error {
	if c.BaseURL == "" {
		return fmt.Errorf("llm: base URL is required")
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.Temperature == 0 {
		c.Temperature = DefaultTemperature
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = DefaultTimeout
	}
	return nil
}
