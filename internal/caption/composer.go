// Package caption composes social media captions, hashtags and a posting
// time, either through a generative text provider or from fixed templates.
package caption

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Providers reported in Result.Provider
const (
	ProviderOpenAI   = "openai"
	ProviderFallback = "fallback"
)

const (
	// DefaultStyle is used when a request names none
	DefaultStyle = "professional"
	// DefaultRecommendedTime is used when no posting time can be extracted
	DefaultRecommendedTime = "09:00 AM"
	// MaxHashtags caps every hashtag list
	MaxHashtags = 15

	maxPromptTrends = 5
	systemPrompt    = "You are an expert social media content creator specializing in viral, engaging captions."
)

// ErrModelUnavailable marks a provider error that warrants one attempt
// against the secondary model
var ErrModelUnavailable = errors.New("model unavailable")

// Completion is a single chat completion request
type Completion struct {
	Model  string
	System string
	Prompt string
}

// Generator produces raw text for a completion request
type Generator interface {
	Complete(ctx context.Context, req Completion) (string, error)
}

// Request describes the caption to compose
type Request struct {
	Topic            string
	Trend            []string
	Style            string
	Platform         string
	ImageDescription string
}

// Result is a composed caption
type Result struct {
	Caption         string   `json:"caption"`
	Hashtags        []string `json:"hashtags"`
	RecommendedTime string   `json:"recommended_time"`
	Provider        string   `json:"provider"`
	Model           string   `json:"model,omitempty"`
	Style           string   `json:"style"`
}

// Models names the primary model and the one tried when it is unavailable
type Models struct {
	Primary   string
	Secondary string
}

// Composer builds captions. A nil Generator selects the deterministic
// fallback.
type Composer struct {
	generator Generator
	models    Models
	logger    *slog.Logger
}

// NewComposer creates a Composer
func NewComposer(generator Generator, models Models, logger *slog.Logger) *Composer {
	return &Composer{
		generator: generator,
		models:    models,
		logger:    logger,
	}
}

// Generate composes a caption for the request. Provider errors are returned
// as is; only a missing generator falls back to templates.
func (c *Composer) Generate(ctx context.Context, req Request) (*Result, error) {
	if req.Style == "" {
		req.Style = DefaultStyle
	}

	c.logger.Info("Generating caption",
		slog.String("topic", req.Topic),
		slog.String("style", req.Style),
		slog.Int("trend_count", len(req.Trend)),
	)

	if c.generator == nil {
		c.logger.Warn("No caption provider configured, using fallback method")
		return Fallback(req), nil
	}

	result, err := c.generate(ctx, req)
	if err != nil {
		c.logger.Error("Failed to generate caption",
			slog.String("topic", req.Topic),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	c.logger.Info("Caption generated successfully",
		slog.String("topic", req.Topic),
		slog.String("provider", result.Provider),
		slog.String("model", result.Model),
	)

	return result, nil
}

func (c *Composer) generate(ctx context.Context, req Request) (*Result, error) {
	completion := Completion{
		Model:  c.models.Primary,
		System: systemPrompt,
		Prompt: BuildPrompt(req),
	}

	text, err := c.generator.Complete(ctx, completion)
	if err != nil && errors.Is(err, ErrModelUnavailable) && c.models.Secondary != "" {
		c.logger.Warn("Primary model unavailable, trying secondary model",
			slog.String("primary", c.models.Primary),
			slog.String("secondary", c.models.Secondary),
			slog.String("error", err.Error()),
		)
		completion.Model = c.models.Secondary
		text, err = c.generator.Complete(ctx, completion)
	}
	if err != nil {
		return nil, fmt.Errorf("caption provider: %w", err)
	}

	parsed := ParseResponse(text)

	return &Result{
		Caption:         parsed.Caption,
		Hashtags:        parsed.Hashtags,
		RecommendedTime: parsed.RecommendedTime,
		Provider:        ProviderOpenAI,
		Model:           completion.Model,
		Style:           req.Style,
	}, nil
}

// BuildPrompt renders the instruction sent to the provider
func BuildPrompt(req Request) string {
	var b strings.Builder

	b.WriteString("Generate a ")
	b.WriteString(req.Style)
	if req.Platform != "" {
		b.WriteString(" " + req.Platform)
	}
	b.WriteString(" social media caption")

	if req.Topic != "" {
		b.WriteString(" about: " + req.Topic)
	}
	if req.ImageDescription != "" {
		b.WriteString(" with image: " + req.ImageDescription)
	}
	if len(req.Trend) > 0 {
		b.WriteString(" incorporating these trends: ")
		b.WriteString(strings.Join(firstN(req.Trend, maxPromptTrends), ", "))
	}

	b.WriteString("\n\nInclude relevant hashtags (10-15) and suggest the best time to post.")
	return b.String()
}

func firstN(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
