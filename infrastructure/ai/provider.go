// Package ai provides the generative-AI collaborators: the generic text
// analysis, the industry risk profile, the structured checklist analysis
// and the combined multi-modal analysis.
package ai

import "context"

// CompletionOptions configures one model request.
type CompletionOptions struct {
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	Format      string  `json:"format"` // "json" or "text"
}

// MediaPart is one binary attachment for a multi-modal request.
type MediaPart struct {
	MIMEType string
	Data     []byte
}

// Provider is the interface over the underlying model API.
type Provider interface {
	Complete(ctx context.Context, prompt string, options CompletionOptions) (string, error)
	CompleteWithMedia(ctx context.Context, prompt string, media []MediaPart, options CompletionOptions) (string, error)
	IsAvailable() bool
}
