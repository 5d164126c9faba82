package caption

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIConfig configures the OpenAI generator
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string // empty for api.openai.com
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
}

// OpenAIGenerator completes prompts with the OpenAI chat completions API
type OpenAIGenerator struct {
	client      *openai.Client
	maxTokens   int
	temperature float32
}

// NewGenerator returns the configured provider, or nil when no API key is
// set so that the Composer uses its fallback
func NewGenerator(cfg OpenAIConfig) Generator {
	if cfg.APIKey == "" {
		return nil
	}
	return NewOpenAIGenerator(cfg)
}

// NewOpenAIGenerator creates an OpenAIGenerator
func NewOpenAIGenerator(cfg OpenAIConfig) *OpenAIGenerator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &OpenAIGenerator{
		client:      openai.NewClientWithConfig(clientCfg),
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}
}

// Complete sends one chat completion and returns the first choice's text
func (g *OpenAIGenerator) Complete(ctx context.Context, req Completion) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: req.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
	})
	if err != nil {
		return "", classifyOpenAIError(req.Model, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai %s: empty response", req.Model)
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// classifyOpenAIError marks errors that mean the model cannot serve requests
// right now: unknown or inaccessible model, or the service being overloaded.
func classifyOpenAIError(model string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		code, _ := apiErr.Code.(string)
		switch {
		case code == "model_not_found",
			apiErr.HTTPStatusCode == http.StatusNotFound,
			apiErr.HTTPStatusCode == http.StatusServiceUnavailable:
			return fmt.Errorf("openai %s: %w: %v", model, ErrModelUnavailable, err)
		}
	}
	return fmt.Errorf("openai %s: %w", model, err)
}
