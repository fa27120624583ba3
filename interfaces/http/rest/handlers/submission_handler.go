package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"safesite-backend/application/ports"
	"safesite-backend/application/services"
	"safesite-backend/pkg/api"
	"safesite-backend/pkg/auth"
	appErrors "safesite-backend/pkg/errors"
	"safesite-backend/pkg/observability"
	"safesite-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// SubmissionHandler drives the report-generation pipeline.
type SubmissionHandler struct {
	submissions *services.SubmissionService
	records     ports.RecordStore
	metrics     *observability.Metrics
	logger      *zap.Logger
}

// NewSubmissionHandler creates a new submission handler
func NewSubmissionHandler(
	submissions *services.SubmissionService,
	records ports.RecordStore,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *SubmissionHandler {
	return &SubmissionHandler{
		submissions: submissions,
		records:     records,
		metrics:     metrics,
		logger:      logger,
	}
}

// SubmitRequest selects the analysis strategy for this submission.
type SubmitRequest struct {
	Mode string `json:"mode" validate:"required,oneof=standard intelligent"`
}

// Submit handles POST /checklists/{templateID}/submit
func (h *SubmissionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		api.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	templateID := chi.URLParam(r, "templateID")
	mode := services.AnalysisMode(req.Mode)

	started := time.Now()
	result, err := h.submissions.Submit(r.Context(), userCtx.UserID, templateID, mode)
	if err != nil {
		h.metrics.RecordSubmission(string(mode), submissionOutcome(err))
		api.FromError(w, err)
		return
	}
	h.metrics.RecordSubmission(string(mode), "success")
	h.logger.Info("submission completed",
		zap.String("templateId", templateID),
		zap.String("mode", string(mode)),
		zap.Duration("elapsed", time.Since(started)),
	)

	api.Success(w, http.StatusOK, result)
}

// ListRecords handles GET /records
func (h *SubmissionHandler) ListRecords(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		api.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	records, err := h.records.ListChecklistResponses(r.Context(), userCtx.UserID, r.URL.Query().Get("templateId"))
	if err != nil {
		api.FromError(w, err)
		return
	}
	api.Success(w, http.StatusOK, map[string]any{"records": records})
}

func submissionOutcome(err error) string {
	switch {
	case appErrors.IsValidation(err):
		return "blocked"
	case appErrors.IsAnalysis(err):
		return "analysis_failed"
	default:
		return "error"
	}
}
