package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Streamer opens streaming chat completions. The pipeline depends on this
// interface so tests can substitute a fake upstream.
type Streamer interface {
	// StreamChat posts the prompt as a single user message with stream:true
	// and returns the raw response body. The caller owns closing it.
	StreamChat(ctx context.Context, prompt string, expectJSON bool) (io.ReadCloser, error)
}

// Client calls an OpenAI-compatible chat-completion endpoint.
type Client struct {
	config     Config
	httpClient *http.Client
}

var _ Streamer = (*Client)(nil)

// NewClient builds a client from configuration.
func NewClient(config Config) (*Client, error) {
	if err := config.Normalize(); err != nil {
		return nil, err
	}
	return &Client{
		config: config,
		// Timeout bounds the whole exchange including the streamed body,
		// so a stalled upstream cannot pin a request forever.
		httpClient: &http.Client{Timeout: config.RequestTimeout},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Stream         bool            `json:"stream"`
	MaxTokens      int             `json:"max_tokens"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

// StreamChat opens a streaming completion for the prompt. A non-2xx status is
// a hard failure surfaced before any stream events exist.
func (c *Client) StreamChat(ctx context.Context, prompt string, expectJSON bool) (io.ReadCloser, error) {
	reqBody := chatRequest{
		Model:       c.config.Model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Stream:      true,
		MaxTokens:   c.config.MaxTokens,
		Temperature: c.config.Temperature,
	}
	if expectJSON {
		reqBody.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal chat request: %w", err)
	}

	url := strings.TrimRight(c.config.BaseURL, "/") + "/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("open completion stream: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		resp.Body.Close()
		return nil, fmt.Errorf("llm API error %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	return resp.Body, nil
}
