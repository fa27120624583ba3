package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	defaultModel    = "gemini-2.5-flash"
	maxAttempts     = 3
	initialBackoff  = 500 * time.Millisecond
	breakerInterval = 30 * time.Second
	breakerTimeout  = 60 * time.Second
)

// GenAIProvider calls the Gemini API. Each request is retried up to
// three times with exponential backoff; a circuit breaker guards against
// hammering an unavailable upstream.
type GenAIProvider struct {
	client  *genai.Client
	model   string
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

// NewGenAIProvider creates the Gemini-backed provider.
func NewGenAIProvider(ctx context.Context, apiKey, model string, logger *zap.Logger) (*GenAIProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	if model == "" {
		model = defaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:     "genai",
		Interval: breakerInterval,
		Timeout:  breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.8
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &GenAIProvider{
		client:  client,
		model:   model,
		breaker: breaker,
		logger:  logger,
	}, nil
}

// IsAvailable reports whether the provider can take requests.
func (p *GenAIProvider) IsAvailable() bool {
	return p.client != nil && p.breaker.State() != gobreaker.StateOpen
}

// Complete sends a text-only request.
func (p *GenAIProvider) Complete(ctx context.Context, prompt string, options CompletionOptions) (string, error) {
	return p.generate(ctx, genai.Text(prompt), options)
}

// CompleteWithMedia sends one combined request with binary attachments.
func (p *GenAIProvider) CompleteWithMedia(ctx context.Context, prompt string, media []MediaPart, options CompletionOptions) (string, error) {
	parts := make([]*genai.Part, 0, len(media)+1)
	parts = append(parts, genai.NewPartFromText(prompt))
	for _, m := range media {
		parts = append(parts, genai.NewPartFromBytes(m.Data, m.MIMEType))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	return p.generate(ctx, contents, options)
}

func (p *GenAIProvider) generate(ctx context.Context, contents []*genai.Content, options CompletionOptions) (string, error) {
	config := &genai.GenerateContentConfig{}
	if options.Temperature > 0 {
		config.Temperature = genai.Ptr(float32(options.Temperature))
	}
	if options.MaxTokens > 0 {
		config.MaxOutputTokens = int32(options.MaxTokens)
	}
	if options.Format == "json" {
		config.ResponseMIMEType = "application/json"
	}

	var lastErr error
	backoff := initialBackoff
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		out, err := p.breaker.Execute(func() (any, error) {
			resp, err := p.client.Models.GenerateContent(ctx, p.model, contents, config)
			if err != nil {
				return nil, err
			}
			text := resp.Text()
			if text == "" {
				return nil, fmt.Errorf("model returned an empty response")
			}
			return text, nil
		})
		if err == nil {
			return out.(string), nil
		}

		lastErr = err
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			break
		}
		if attempt < maxAttempts {
			p.logger.Warn("model request failed, retrying",
				zap.Int("attempt", attempt),
				zap.Duration("backoff", backoff),
				zap.Error(err))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", ctx.Err()
			}
			backoff *= 2
		}
	}
	return "", fmt.Errorf("model request failed after %d attempts: %w", maxAttempts, lastErr)
}
