package handlers

import (
	"net/http"

	"safesite-backend/application/services"
	"safesite-backend/pkg/api"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// TemplateHandler serves the checklist template catalog.
type TemplateHandler struct {
	checklists *services.ChecklistService
	logger     *zap.Logger
}

// NewTemplateHandler creates a new template handler
func NewTemplateHandler(checklists *services.ChecklistService, logger *zap.Logger) *TemplateHandler {
	return &TemplateHandler{checklists: checklists, logger: logger}
}

// ListTemplates handles GET /templates
func (h *TemplateHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	api.Success(w, http.StatusOK, map[string]any{
		"templates": h.checklists.Catalog().List(),
	})
}

// GetTemplate handles GET /templates/{templateID}
func (h *TemplateHandler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	templateID := chi.URLParam(r, "templateID")
	tmpl, ok := h.checklists.Catalog().Get(templateID)
	if !ok {
		api.Error(w, http.StatusNotFound, "Template not found: "+templateID)
		return
	}
	api.Success(w, http.StatusOK, tmpl)
}
