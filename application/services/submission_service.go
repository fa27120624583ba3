package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"safesite-backend/application/ports"
	"safesite-backend/domain/analysis"
	"safesite-backend/domain/checklist"
	"safesite-backend/domain/report"
	pkgerrors "safesite-backend/pkg/errors"

	"go.uber.org/zap"
)

// AnalysisMode selects one of the two mutually exclusive submission
// strategies. The caller chooses; nothing is auto-detected.
type AnalysisMode string

const (
	ModeStandard    AnalysisMode = "standard"
	ModeIntelligent AnalysisMode = "intelligent"
)

// SubmissionState is the pipeline's lifecycle state. Externally only the
// processing flag is observable; the fine-grained states drive logging
// and tests.
type SubmissionState string

const (
	StateIdle       SubmissionState = "idle"
	StateCollecting SubmissionState = "collecting"
	StateAnalyzing  SubmissionState = "analyzing"
	StateFormatting SubmissionState = "formatting"
	StateDone       SubmissionState = "done"
	StateFailed     SubmissionState = "failed"
)

// SubmissionResult is the outcome of a successful submission.
type SubmissionResult struct {
	Report    string              `json:"report"`
	ShareText string              `json:"shareText"`
	Email     report.EmailMessage `json:"email"`
	RiskLevel string              `json:"riskLevel"`
	// SaveWarning is set when the best-effort persistence step failed.
	SaveWarning string `json:"saveWarning,omitempty"`
}

// SubmissionService orchestrates Collect -> Analyze -> Format -> Persist.
type SubmissionService struct {
	checklists *ChecklistService
	text       ports.TextAnalyzer
	risk       ports.RiskProfiler
	analyzer   ports.SafetyAnalyzer
	multimodal ports.MultiModalAnalyzer
	records    ports.RecordStore
	bus        ports.EventBus
	logger     *zap.Logger

	mu         sync.Mutex
	processing map[sessionKey]bool
}

// NewSubmissionService creates the submission pipeline.
func NewSubmissionService(
	checklists *ChecklistService,
	text ports.TextAnalyzer,
	risk ports.RiskProfiler,
	analyzer ports.SafetyAnalyzer,
	multimodal ports.MultiModalAnalyzer,
	records ports.RecordStore,
	bus ports.EventBus,
	logger *zap.Logger,
) *SubmissionService {
	return &SubmissionService{
		checklists: checklists,
		text:       text,
		risk:       risk,
		analyzer:   analyzer,
		multimodal: multimodal,
		records:    records,
		bus:        bus,
		logger:     logger,
		processing: map[sessionKey]bool{},
	}
}

// Processing reports whether a submission is in flight for the session.
func (s *SubmissionService) Processing(userID, templateID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processing[sessionKey{userID: userID, templateID: templateID}]
}

func (s *SubmissionService) setProcessing(key sessionKey, v bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v && s.processing[key] {
		return false
	}
	s.processing[key] = v
	return true
}

// Submit runs the full pipeline for one checklist. It blocks submission
// with a warning when the checklist is not 100% complete; in that case no
// collaborator is called and the pipeline never leaves Idle.
func (s *SubmissionService) Submit(ctx context.Context, userID, templateID string, mode AnalysisMode) (*SubmissionResult, error) {
	key := sessionKey{userID: userID, templateID: templateID}

	tmpl, snap, progress, err := s.checklists.State(ctx, userID, templateID)
	if err != nil {
		return nil, err
	}

	if progress < 100 {
		s.bus.Publish(ports.Notification{
			Level:   ports.LevelWarning,
			Message: fmt.Sprintf("Checklist is %d%% complete; answer every item before submitting", progress),
			Time:    s.checklists.clock(),
		})
		return nil, pkgerrors.NewValidation(fmt.Sprintf("checklist incomplete (%d%%)", progress))
	}

	if !s.setProcessing(key, true) {
		return nil, pkgerrors.NewValidation("a submission is already in progress for this checklist")
	}
	defer s.setProcessing(key, false)

	state := StateCollecting
	result, err := s.run(ctx, tmpl, snap, mode, &state)
	if err != nil {
		// Any exception in Collecting/Analyzing/Formatting aborts to
		// Failed; the message is surfaced verbatim, once, then the
		// pipeline returns to Idle.
		s.logger.Error("submission pipeline failed",
			zap.String("templateID", templateID),
			zap.String("mode", string(mode)),
			zap.String("state", string(state)),
			zap.Error(err))
		s.bus.Publish(ports.Notification{
			Level:   ports.LevelError,
			Message: err.Error(),
			Time:    s.checklists.clock(),
		})
		return nil, err
	}

	// Best-effort persistence: a failure here is a non-fatal warning and
	// never invalidates the otherwise-successful submission.
	rec := report.ToRecord(templateID, tmpl.Title, result.RiskLevel, result.Report)
	if _, err := s.records.SaveChecklistResponse(ctx, userID, rec, snap.Responses); err != nil {
		warn := pkgerrors.NewPersistenceWarning("report could not be saved", err)
		s.logger.Warn("best-effort report persistence failed",
			zap.String("templateID", templateID),
			zap.Error(err))
		s.bus.Publish(ports.Notification{
			Level:   ports.LevelWarning,
			Message: "Analysis succeeded but the report could not be saved",
			Time:    s.checklists.clock(),
		})
		result.SaveWarning = warn.Error()
	}

	return result, nil
}

func (s *SubmissionService) run(ctx context.Context, tmpl *checklist.Template, snap *checklist.Snapshot, mode AnalysisMode, state *SubmissionState) (*SubmissionResult, error) {
	*state = StateCollecting
	payload := Collect(tmpl, snap)

	*state = StateAnalyzing
	var (
		formatted string
		riskLevel string
	)
	switch mode {
	case ModeStandard:
		raw, err := s.text.Complete(ctx, buildStandardPrompt(payload))
		if err != nil {
			return nil, pkgerrors.NewAnalysis("safety analysis failed", err)
		}
		if raw == "" {
			return nil, pkgerrors.NewAnalysis("safety analysis returned an empty report", nil)
		}
		*state = StateFormatting
		formatted = report.FormatStandard(tmpl.Title, raw)

	case ModeIntelligent:
		// The risk profile is contextual: unavailability is nil, not an
		// error, and the pipeline proceeds without it.
		profile, err := s.risk.GetRiskProfile(ctx, tmpl.ID, payload)
		if err != nil {
			s.logger.Warn("risk profile unavailable", zap.String("templateID", tmpl.ID), zap.Error(err))
			profile = nil
		}

		if len(payload.Images) > 0 || len(payload.Blueprints) > 0 {
			res, err := s.multimodal.AnalyzeComprehensive(ctx, ports.ComprehensiveRequest{
				Payload:    payload,
				Blueprints: payload.Blueprints,
				Images:     payload.Images,
				Profile:    profile,
			})
			if err != nil {
				return nil, pkgerrors.NewAnalysis("comprehensive analysis failed", err)
			}
			*state = StateFormatting
			formatted = report.FormatMultiModal(tmpl.Title, res)
			riskLevel = res.OverallRiskLevel
		} else {
			res, err := s.analyzer.AnalyzeChecklist(ctx, payload, profile)
			if err != nil {
				return nil, pkgerrors.NewAnalysis("checklist analysis failed", err)
			}
			*state = StateFormatting
			formatted = report.FormatSafetyAnalysis(tmpl.Title, res)
			riskLevel = res.OverallRiskLevel
		}

	default:
		return nil, pkgerrors.NewValidation(fmt.Sprintf("unknown analysis mode %q", mode))
	}

	*state = StateDone
	return &SubmissionResult{
		Report:    formatted,
		ShareText: report.ShareText(tmpl.Title, formatted),
		Email:     report.Email(tmpl.Title, formatted),
		RiskLevel: riskLevel,
	}, nil
}

// Collect walks every section and item, pairing each with its response or
// the explicit no-response sentinel, and flattens all attached media.
func Collect(tmpl *checklist.Template, snap *checklist.Snapshot) *analysis.ChecklistPayload {
	payload := &analysis.ChecklistPayload{
		TemplateID: tmpl.ID,
		Title:      tmpl.Title,
	}

	for _, sec := range tmpl.Sections {
		for _, it := range sec.Items {
			entry := analysis.Entry{
				Section:  sec.Title,
				ItemID:   it.ID,
				Question: it.Question,
				Answer:   analysis.NoResponse,
				Critical: it.Flags.Critical,
			}
			if r, ok := snap.Responses[it.ID]; ok && r != nil {
				if r.Value != "" {
					entry.Answer = r.Value
					entry.Answered = true
				}
				entry.Notes = r.Notes
				entry.Flagged = r.Flagged
				entry.Deadline = r.Deadline
				payload.Images = append(payload.Images, r.Images...)
				for _, b := range r.Blueprints {
					payload.Blueprints = append(payload.Blueprints, analysis.BlueprintRef{
						ID:         b.ID,
						FileName:   b.FileName,
						StorageURL: b.StorageURL,
					})
				}
			}
			payload.Entries = append(payload.Entries, entry)
		}
	}
	return payload
}

// buildStandardPrompt embeds the structured collection as serialized data
// inside one free-text prompt for the generic text collaborator.
func buildStandardPrompt(payload *analysis.ChecklistPayload) string {
	data, _ := json.MarshalIndent(payload, "", "  ")
	return fmt.Sprintf(`You are a construction site safety expert. Analyze the following completed safety checklist and produce a risk assessment report.

Checklist data:
%s

Structure the report as:
1. Overall risk rating (low / medium / high / critical) with justification
2. The most serious hazards found, each with a concrete mitigation
3. Items flagged by the inspector and what to do about them
4. Recommended follow-up actions in priority order

Write in clear language a site manager can act on. Do not invent answers for unanswered items; call them out as gaps instead.`, string(data))
}
