package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"safesite-backend/application/services"
	"safesite-backend/domain/checklist"
	"safesite-backend/pkg/api"
	"safesite-backend/pkg/auth"
	"safesite-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// HistoryHandler exposes saved-snapshot operations.
type HistoryHandler struct {
	checklists *services.ChecklistService
	logger     *zap.Logger
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(checklists *services.ChecklistService, logger *zap.Logger) *HistoryHandler {
	return &HistoryHandler{checklists: checklists, logger: logger}
}

// HistoryEntry is the list view of a saved snapshot.
type HistoryEntry struct {
	Key        string    `json:"key"`
	TemplateID string    `json:"templateId"`
	CreatedAt  time.Time `json:"createdAt"`
	Answered   int       `json:"answered"`
}

// RestoreRequest names the snapshot to load back into the live store.
type RestoreRequest struct {
	Key string `json:"key" validate:"required"`
}

// Save handles POST /checklists/{templateID}/save
func (h *HistoryHandler) Save(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		api.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	key, err := h.checklists.Save(r.Context(), userCtx.UserID, chi.URLParam(r, "templateID"))
	if err != nil {
		api.FromError(w, err)
		return
	}
	api.Success(w, http.StatusCreated, map[string]string{"key": key})
}

// List handles GET /checklists/{templateID}/history
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		api.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	snapshots, err := h.checklists.History(r.Context(), userCtx.UserID, chi.URLParam(r, "templateID"))
	if err != nil {
		api.FromError(w, err)
		return
	}

	entries := make([]HistoryEntry, 0, len(snapshots))
	for _, sn := range snapshots {
		entries = append(entries, HistoryEntry{
			Key:        sn.Key,
			TemplateID: sn.TemplateID,
			CreatedAt:  sn.CreatedAt,
			Answered:   countAnswered(sn.Responses),
		})
	}
	api.Success(w, http.StatusOK, map[string]any{"snapshots": entries})
}

// Restore handles POST /checklists/{templateID}/restore
func (h *HistoryHandler) Restore(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		api.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req RestoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	err = h.checklists.Restore(r.Context(),
		userCtx.UserID, chi.URLParam(r, "templateID"), req.Key)
	if err != nil {
		api.FromError(w, err)
		return
	}
	api.Success(w, http.StatusNoContent, nil)
}

func countAnswered(responses map[string]*checklist.Response) int {
	n := 0
	for _, r := range responses {
		if r != nil && r.Value != "" {
			n++
		}
	}
	return n
}
