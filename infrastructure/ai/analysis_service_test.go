package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"safesite-backend/application/ports"
	"safesite-backend/domain/analysis"
	"safesite-backend/infrastructure/config"
	pkgerrors "safesite-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// scriptedProvider returns a fixed response or error, recording the last
// request it saw.
type scriptedProvider struct {
	response  string
	err       error
	available bool

	lastPrompt  string
	lastMedia   []MediaPart
	lastOptions CompletionOptions
}

func (p *scriptedProvider) Complete(_ context.Context, prompt string, options CompletionOptions) (string, error) {
	p.lastPrompt = prompt
	p.lastOptions = options
	return p.response, p.err
}

func (p *scriptedProvider) CompleteWithMedia(_ context.Context, prompt string, media []MediaPart, options CompletionOptions) (string, error) {
	p.lastPrompt = prompt
	p.lastMedia = media
	p.lastOptions = options
	return p.response, p.err
}

func (p *scriptedProvider) IsAvailable() bool { return p.available }

func payloadFixture() *analysis.ChecklistPayload {
	return &analysis.ChecklistPayload{
		TemplateID: "general-site-safety",
		Title:      "General Site Safety Inspection",
		Entries: []analysis.Entry{
			{Section: "Site Conditions", ItemID: "site-location", Question: "Where?", Answer: "North gate", Answered: true},
			{Section: "Hazards", ItemID: "fall-protection", Question: "Fall protection?", Answer: analysis.NoResponse, Critical: true},
		},
	}
}

func TestService_ModelTunablesComeFromDynamicConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dynamic.yaml")
	require.NoError(t, os.WriteFile(path, []byte("analysis:\n  temperature: 0.7\n  maxReportTokens: 1234\n"), 0o644))
	watcher, err := config.NewWatcher(path, zap.NewNop())
	require.NoError(t, err)
	defer watcher.Stop()

	provider := &scriptedProvider{
		available: true,
		response:  `{"overallRiskLevel": "low", "summary": "Fine."}`,
	}
	svc := NewService(provider, watcher, zap.NewNop())

	_, err = svc.AnalyzeChecklist(context.Background(), payloadFixture(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0.7, provider.lastOptions.Temperature)
	assert.Equal(t, 1234, provider.lastOptions.MaxTokens)

	// A nil watcher falls back to the defaults.
	svc = NewService(provider, nil, zap.NewNop())
	_, err = svc.Complete(context.Background(), "summarize")
	require.NoError(t, err)
	defaults := config.DefaultDynamicConfig().Analysis
	assert.Equal(t, defaults.Temperature, provider.lastOptions.Temperature)
	assert.Equal(t, defaults.MaxReportTokens, provider.lastOptions.MaxTokens)
}

func TestService_AnalyzeChecklist_StripsMarkdownFences(t *testing.T) {
	provider := &scriptedProvider{
		available: true,
		response: "```json\n{\"overallRiskLevel\": \"high\", \"summary\": \"Fenced.\"}\n```",
	}
	svc := NewService(provider, nil, zap.NewNop())

	result, err := svc.AnalyzeChecklist(context.Background(), payloadFixture(), nil)
	require.NoError(t, err)
	assert.Equal(t, "high", result.OverallRiskLevel)
	assert.Equal(t, "Fenced.", result.Summary)
}

func TestService_AnalyzeChecklist_PlainFenceAndBareJSON(t *testing.T) {
	for _, response := range []string{
		"```\n{\"overallRiskLevel\": \"low\"}\n```",
		"  {\"overallRiskLevel\": \"low\"}  ",
	} {
		provider := &scriptedProvider{available: true, response: response}
		svc := NewService(provider, nil, zap.NewNop())

		result, err := svc.AnalyzeChecklist(context.Background(), payloadFixture(), nil)
		require.NoError(t, err, response)
		assert.Equal(t, "low", result.OverallRiskLevel)
	}
}

func TestService_AnalyzeChecklist_UnparseableResponseFails(t *testing.T) {
	provider := &scriptedProvider{available: true, response: "I cannot answer in JSON, sorry."}
	svc := NewService(provider, nil, zap.NewNop())

	_, err := svc.AnalyzeChecklist(context.Background(), payloadFixture(), nil)
	assert.Error(t, err)
}

func TestService_GetRiskProfile_NeverReturnsAnError(t *testing.T) {
	tests := []struct {
		name     string
		provider *scriptedProvider
	}{
		{"provider unavailable", &scriptedProvider{available: false}},
		{"provider error", &scriptedProvider{available: true, err: errors.New("quota exceeded")}},
		{"unparseable response", &scriptedProvider{available: true, response: "not json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(tt.provider, nil, zap.NewNop())
			profile, err := svc.GetRiskProfile(context.Background(), "general-site-safety", payloadFixture())
			assert.NoError(t, err)
			assert.Nil(t, profile)
		})
	}
}

func TestService_GetRiskProfile_ParsesProfile(t *testing.T) {
	svc := NewService(NewMockProvider(), nil, zap.NewNop())

	profile, err := svc.GetRiskProfile(context.Background(), "general-site-safety", payloadFixture())
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, "construction", profile.Industry)
	assert.NotEmpty(t, profile.CommonHazards)
}

func TestService_Complete_FailsWhenUnavailable(t *testing.T) {
	provider := NewMockProvider()
	provider.SetAvailable(false)
	svc := NewService(provider, nil, zap.NewNop())

	_, err := svc.Complete(context.Background(), "analyze this")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsAnalysis(err))
}

func TestService_AnalyzeComprehensive_DecodesImagesAndSkipsBadOnes(t *testing.T) {
	provider := &scriptedProvider{
		available: true,
		response:  `{"overallRiskLevel": "medium", "imageFindings": [{"source": "photo 1", "observation": "ok", "severity": "low"}]}`,
	}
	svc := NewService(provider, nil, zap.NewNop())

	good := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("pixels"))
	req := ports.ComprehensiveRequest{
		Payload: payloadFixture(),
		Images:  []string{good, "not-a-data-uri", "data:image/png;base64,%%%"},
		Blueprints: []analysis.BlueprintRef{
			{ID: "bp-1", FileName: "plan.pdf"},
		},
	}

	result, err := svc.AnalyzeComprehensive(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "medium", result.OverallRiskLevel)
	require.Len(t, result.ImageFindings, 1)

	// Only the decodable image reached the provider.
	require.Len(t, provider.lastMedia, 1)
	assert.Equal(t, "image/png", provider.lastMedia[0].MIMEType)
	assert.Equal(t, []byte("pixels"), provider.lastMedia[0].Data)
	assert.Contains(t, provider.lastPrompt, "plan.pdf")
}

func TestDecodeDataURI(t *testing.T) {
	part, err := decodeDataURI("data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte("jpg")))
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", part.MIMEType)
	assert.Equal(t, []byte("jpg"), part.Data)

	// Missing mime falls back to octet-stream.
	part, err = decodeDataURI("data:;base64," + base64.StdEncoding.EncodeToString([]byte("x")))
	require.NoError(t, err)
	assert.Equal(t, "application/octet-stream", part.MIMEType)

	_, err = decodeDataURI("http://example.com/image.png")
	assert.Error(t, err)

	_, err = decodeDataURI("data:image/png,rawdata")
	assert.Error(t, err)
}

func TestMockProvider_RoutesByPromptAndFormat(t *testing.T) {
	m := NewMockProvider()
	ctx := context.Background()

	profile, err := m.Complete(ctx, "Produce an industry risk profile for this work.", CompletionOptions{Format: "json"})
	require.NoError(t, err)
	assert.Contains(t, profile, "commonHazards")

	structured, err := m.Complete(ctx, "Analyze this checklist.", CompletionOptions{Format: "json"})
	require.NoError(t, err)
	assert.Contains(t, structured, "overallRiskLevel")

	text, err := m.Complete(ctx, "Analyze this checklist.", CompletionOptions{Format: "text"})
	require.NoError(t, err)
	assert.Contains(t, text, "Mock safety report")
}
