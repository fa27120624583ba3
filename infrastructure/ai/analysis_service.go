package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"safesite-backend/application/ports"
	"safesite-backend/domain/analysis"
	"safesite-backend/infrastructure/config"
	pkgerrors "safesite-backend/pkg/errors"

	"go.uber.org/zap"
)

// Service implements the analysis collaborators on one model provider.
// It satisfies the text-analysis, risk-profile, checklist-analysis and
// multi-modal ports.
type Service struct {
	provider Provider
	dynamic  *config.Watcher
	logger   *zap.Logger
}

// NewService creates the analysis service with the given provider. The
// dynamic watcher supplies the model tunables; a nil watcher serves the
// defaults.
func NewService(provider Provider, dynamic *config.Watcher, logger *zap.Logger) *Service {
	return &Service{provider: provider, dynamic: dynamic, logger: logger}
}

func (s *Service) tunables() config.Analysis {
	if s.dynamic == nil {
		return config.DefaultDynamicConfig().Analysis
	}
	return s.dynamic.Current().Analysis
}

// IsAvailable returns true when the underlying provider can take requests.
func (s *Service) IsAvailable() bool {
	return s.provider != nil && s.provider.IsAvailable()
}

// Complete is the generic free-text analysis used by the standard
// submission strategy.
func (s *Service) Complete(ctx context.Context, prompt string) (string, error) {
	if !s.IsAvailable() {
		return "", pkgerrors.NewAnalysis("analysis service is not available", nil)
	}

	tun := s.tunables()
	response, err := s.provider.Complete(ctx, prompt, CompletionOptions{
		Temperature: tun.Temperature,
		MaxTokens:   tun.MaxReportTokens,
		Format:      "text",
	})
	if err != nil {
		return "", fmt.Errorf("failed to get analysis response: %w", err)
	}
	return response, nil
}

// GetRiskProfile requests the industry risk profile for a template. An
// unavailable profile is (nil, nil), never an error: the caller proceeds
// without context rather than failing the submission.
func (s *Service) GetRiskProfile(ctx context.Context, templateID string, payload *analysis.ChecklistPayload) (*analysis.RiskProfile, error) {
	if !s.IsAvailable() {
		return nil, nil
	}

	prompt := buildRiskProfilePrompt(templateID, payload)
	response, err := s.provider.Complete(ctx, prompt, CompletionOptions{
		Temperature: 0.2,
		MaxTokens:   600,
		Format:      "json",
	})
	if err != nil {
		s.logger.Warn("risk profile request failed",
			zap.String("templateID", templateID),
			zap.Error(err))
		return nil, nil
	}

	var profile analysis.RiskProfile
	if err := parseJSONResponse(response, &profile); err != nil {
		s.logger.Warn("risk profile response unparseable", zap.Error(err))
		return nil, nil
	}
	return &profile, nil
}

// AnalyzeChecklist runs the structured checklist-only analysis.
func (s *Service) AnalyzeChecklist(ctx context.Context, payload *analysis.ChecklistPayload, profile *analysis.RiskProfile) (*analysis.SafetyAnalysis, error) {
	if !s.IsAvailable() {
		return nil, pkgerrors.NewAnalysis("analysis service is not available", nil)
	}

	prompt := buildChecklistPrompt(payload, profile)
	tun := s.tunables()
	response, err := s.provider.Complete(ctx, prompt, CompletionOptions{
		Temperature: tun.Temperature,
		MaxTokens:   tun.MaxReportTokens,
		Format:      "json",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to analyze checklist: %w", err)
	}

	var result analysis.SafetyAnalysis
	if err := parseJSONResponse(response, &result); err != nil {
		return nil, fmt.Errorf("failed to parse analysis response: %w", err)
	}
	return &result, nil
}

// AnalyzeComprehensive runs one combined multi-modal call over the
// checklist, attached images and blueprint references.
func (s *Service) AnalyzeComprehensive(ctx context.Context, req ports.ComprehensiveRequest) (*analysis.MultiModalResult, error) {
	if !s.IsAvailable() {
		return nil, pkgerrors.NewAnalysis("analysis service is not available", nil)
	}

	media := make([]MediaPart, 0, len(req.Images))
	for i, dataURI := range req.Images {
		part, err := decodeDataURI(dataURI)
		if err != nil {
			s.logger.Warn("skipping undecodable image", zap.Int("index", i), zap.Error(err))
			continue
		}
		media = append(media, part)
	}

	prompt := buildComprehensivePrompt(req.Payload, req.Blueprints, req.Profile, len(media))
	tun := s.tunables()
	response, err := s.provider.CompleteWithMedia(ctx, prompt, media, CompletionOptions{
		Temperature: tun.Temperature,
		MaxTokens:   tun.MaxReportTokens,
		Format:      "json",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to run comprehensive analysis: %w", err)
	}

	var result analysis.MultiModalResult
	if err := parseJSONResponse(response, &result); err != nil {
		return nil, fmt.Errorf("failed to parse comprehensive response: %w", err)
	}
	return &result, nil
}

func buildRiskProfilePrompt(templateID string, payload *analysis.ChecklistPayload) string {
	return fmt.Sprintf(`You are a construction safety statistician. Produce an industry risk profile for the checklist type %q (%s).

Return a JSON object with this structure:
{
  "industry": "short industry label",
  "commonHazards": ["hazard", "..."],
  "incidentRate": "rate with unit and source population",
  "regulatoryNotes": "the regulations most relevant to this work"
}

Rules:
1. Base the profile on the checklist type, not on the specific answers
2. Keep commonHazards to the 3-6 most relevant for this work
3. Use widely accepted incident statistics; say "unknown" rather than inventing numbers
`, templateID, payload.Title)
}

func buildChecklistPrompt(payload *analysis.ChecklistPayload, profile *analysis.RiskProfile) string {
	data, _ := json.MarshalIndent(payload.Entries, "", "  ")

	profileSection := "No industry risk profile is available."
	if profile != nil {
		p, _ := json.MarshalIndent(profile, "", "  ")
		profileSection = fmt.Sprintf("Industry risk profile for context:\n%s", string(p))
	}

	return fmt.Sprintf(`You are a construction site safety expert. Analyze this completed safety checklist.

Checklist: %s
%s

Responses:
%s

Return a JSON object with this structure:
{
  "overallRiskLevel": "low|medium|high|critical",
  "summary": "2-3 sentence overview",
  "hazards": [
    {"description": "...", "severity": "low|medium|high|critical", "likelihood": "unlikely|possible|likely", "mitigation": "...", "regulation": "applicable regulation or empty"}
  ],
  "recommendations": ["ordered, actionable steps"],
  "complianceNotes": "regulatory gaps found, or empty"
}

Rules:
1. Treat "No response" answers as open risks, not as passes
2. Weight critical and flagged items heaviest
3. Every hazard needs a concrete mitigation
4. Only cite regulations you are confident apply
`, payload.Title, profileSection, string(data))
}

func buildComprehensivePrompt(payload *analysis.ChecklistPayload, blueprints []analysis.BlueprintRef, profile *analysis.RiskProfile, imageCount int) string {
	base := buildChecklistPrompt(payload, profile)

	var b strings.Builder
	b.WriteString(base)
	fmt.Fprintf(&b, "\nAttached are %d site photo(s); assess them for visible hazards.\n", imageCount)

	if len(blueprints) > 0 {
		b.WriteString("\nUploaded blueprints on file:\n")
		for _, bp := range blueprints {
			fmt.Fprintf(&b, "- %s\n", bp.FileName)
		}
	}

	b.WriteString(`
Extend the JSON object with two additional fields:
  "blueprintFindings": [{"source": "file name", "observation": "...", "severity": "low|medium|high|critical"}],
  "imageFindings": [{"source": "photo N", "observation": "...", "severity": "low|medium|high|critical"}]
`)
	return b.String()
}

// parseJSONResponse unmarshals a model response, stripping any markdown
// fences the model wrapped around the JSON.
func parseJSONResponse(response string, out any) error {
	response = strings.TrimSpace(response)
	if strings.HasPrefix(response, "```json") {
		response = strings.TrimPrefix(response, "```json")
		response = strings.TrimSuffix(response, "```")
		response = strings.TrimSpace(response)
	} else if strings.HasPrefix(response, "```") {
		response = strings.TrimPrefix(response, "```")
		response = strings.TrimSuffix(response, "```")
		response = strings.TrimSpace(response)
	}

	if err := json.Unmarshal([]byte(response), out); err != nil {
		return fmt.Errorf("failed to parse JSON response: %w", err)
	}
	return nil
}

// decodeDataURI splits a data:<mime>;base64,<payload> URI into a media
// part for the model request.
func decodeDataURI(uri string) (MediaPart, error) {
	if !strings.HasPrefix(uri, "data:") {
		return MediaPart{}, fmt.Errorf("not a data URI")
	}
	rest := strings.TrimPrefix(uri, "data:")
	sep := strings.Index(rest, ";base64,")
	if sep < 0 {
		return MediaPart{}, fmt.Errorf("data URI is not base64 encoded")
	}

	mime := rest[:sep]
	data, err := base64.StdEncoding.DecodeString(rest[sep+len(";base64,"):])
	if err != nil {
		return MediaPart{}, fmt.Errorf("invalid base64 payload: %w", err)
	}
	if mime == "" {
		mime = "application/octet-stream"
	}
	return MediaPart{MIMEType: mime, Data: data}, nil
}
