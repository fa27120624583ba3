package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// MockProvider provides a deterministic implementation for development
// runs without an API key and for tests.
type MockProvider struct {
	available bool
}

// NewMockProvider creates a mock model provider.
func NewMockProvider() *MockProvider {
	return &MockProvider{available: true}
}

// SetAvailable toggles availability, for failure-path tests.
func (m *MockProvider) SetAvailable(v bool) { m.available = v }

// IsAvailable returns whether the mock provider is available.
func (m *MockProvider) IsAvailable() bool { return m.available }

// Complete answers based on simple pattern matching over the prompt.
func (m *MockProvider) Complete(_ context.Context, prompt string, options CompletionOptions) (string, error) {
	if !m.available {
		return "", fmt.Errorf("mock provider is not available")
	}

	if strings.Contains(prompt, "industry risk profile") {
		return m.mockRiskProfile()
	}
	if options.Format == "json" {
		return m.mockAnalysis()
	}
	return "Mock safety report: no critical hazards identified. Review flagged items before work begins.", nil
}

// CompleteWithMedia ignores the attachments and answers like Complete.
func (m *MockProvider) CompleteWithMedia(ctx context.Context, prompt string, _ []MediaPart, options CompletionOptions) (string, error) {
	return m.Complete(ctx, prompt, options)
}

func (m *MockProvider) mockRiskProfile() (string, error) {
	profile := map[string]any{
		"industry":        "construction",
		"commonHazards":   []string{"falls from height", "struck-by incidents", "trench collapse"},
		"incidentRate":    "9.6 per 10,000 full-time workers",
		"regulatoryNotes": "OSHA 29 CFR 1926 applies to all listed work.",
	}
	data, err := json.Marshal(profile)
	return string(data), err
}

func (m *MockProvider) mockAnalysis() (string, error) {
	result := map[string]any{
		"overallRiskLevel": "medium",
		"summary":          "Mock analysis generated without a model backend.",
		"hazards": []map[string]string{
			{
				"description": "Fall protection marked as partial",
				"severity":    "high",
				"likelihood":  "possible",
				"mitigation":  "Install guardrails before the next shift",
			},
		},
		"recommendations": []string{"Re-inspect after corrective actions"},
	}
	data, err := json.Marshal(result)
	return string(data), err
}
