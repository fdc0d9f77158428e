// Package openrouter provides an LLM service adapter using the
// OpenRouter chat completions API. The request format is
// OpenAI-compatible, so the adapter also works against any endpoint
// speaking that dialect.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/arcline-labs/askdoc/internal/core/domain"
	"github.com/arcline-labs/askdoc/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultBaseURL     = "https://openrouter.ai/api/v1"
	DefaultModel       = "openai/gpt-4o-mini"
	DefaultTimeout     = 120 * time.Second
	DefaultMaxTokens   = 1024
	DefaultTemperature = 0.0
)

// Config holds configuration for the OpenRouter LLM service.
type Config struct {
	// APIKey is the API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://openrouter.ai/api/v1).
	BaseURL string

	// Model is the chat model to use (default: openai/gpt-4o-mini).
	Model string

	// Timeout is the per-call request timeout (default: 120s).
	Timeout time.Duration

	// MaxTokens caps the completion length (default: 1024).
	MaxTokens int

	// Temperature controls sampling randomness (default: 0).
	Temperature float64

	// Referer and Title are optional OpenRouter attribution headers.
	Referer string
	Title   string
}

// LLMService generates chat completions over HTTP.
type LLMService struct {
	client      *http.Client
	baseURL     string
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
	referer     string
	title       string
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Code    any    `json:"code"`
	} `json:"error,omitempty"`
}

// New creates a new OpenRouter LLM service.
func New(cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}

	return &LLMService{
		client:      &http.Client{Timeout: cfg.Timeout},
		baseURL:     cfg.BaseURL,
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		referer:     cfg.Referer,
		title:       cfg.Title,
	}, nil
}

// Answer sends a system and user prompt pair and returns the completion
// text. Transport failures and provider-side errors wrap
// domain.ErrLLMUnavailable.
func (s *LLMService) Answer(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	jsonBody, err := json.Marshal(chatRequest{
		Model: s.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.baseURL+"/chat/completions",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	if s.referer != "" {
		req.Header.Set("HTTP-Referer", s.referer)
	}
	if s.title != "" {
		req.Header.Set("X-Title", s.title)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %v: %w", err, domain.ErrLLMUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return "", fmt.Errorf("openrouter (status %d): failed to read response: %w",
				resp.StatusCode, domain.ErrLLMUnavailable)
		}
		return "", fmt.Errorf("openrouter (status %d): %s: %w",
			resp.StatusCode, string(body), domain.ErrLLMUnavailable)
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if chatResp.Error != nil {
		return "", fmt.Errorf("openrouter: %s: %w", chatResp.Error.Message, domain.ErrLLMUnavailable)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("openrouter: empty choices: %w", domain.ErrLLMUnavailable)
	}
	return chatResp.Choices[0].Message.Content, nil
}

// ModelName returns the name of the chat model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
