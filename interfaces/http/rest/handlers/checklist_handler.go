package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"safesite-backend/application/ports"
	"safesite-backend/application/services"
	"safesite-backend/domain/checklist"
	"safesite-backend/infrastructure/config"
	"safesite-backend/pkg/api"
	"safesite-backend/pkg/auth"
	appErrors "safesite-backend/pkg/errors"
	"safesite-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ChecklistHandler handles response-store mutations and state reads.
type ChecklistHandler struct {
	checklists *services.ChecklistService
	dynamic    *config.Watcher
	logger     *zap.Logger
}

// NewChecklistHandler creates a new checklist handler
func NewChecklistHandler(
	checklists *services.ChecklistService,
	dynamic *config.Watcher,
	logger *zap.Logger,
) *ChecklistHandler {
	return &ChecklistHandler{
		checklists: checklists,
		dynamic:    dynamic,
		logger:     logger,
	}
}

// SetValueRequest is the body for updating an item's answer. An explicit
// empty value is valid and distinct from never having answered.
type SetValueRequest struct {
	Value string `json:"value"`
}

// SetNotesRequest is the body for updating an item's notes.
type SetNotesRequest struct {
	Notes string `json:"notes" validate:"max=10000"`
}

// SetDeadlineRequest is the body for setting a follow-up deadline.
type SetDeadlineRequest struct {
	Deadline string `json:"deadline" validate:"required"`
}

// StateResponse is the live checklist view returned to clients.
type StateResponse struct {
	Template  *checklist.Template            `json:"template"`
	Responses map[string]*checklist.Response `json:"responses"`
	Progress  int                            `json:"progress"`
}

// GetState handles GET /checklists/{templateID}
func (h *ChecklistHandler) GetState(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		api.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	templateID := chi.URLParam(r, "templateID")

	tmpl, snap, progress, err := h.checklists.State(r.Context(), userCtx.UserID, templateID)
	if err != nil {
		api.FromError(w, err)
		return
	}

	api.Success(w, http.StatusOK, StateResponse{
		Template:  tmpl,
		Responses: snap.Responses,
		Progress:  progress,
	})
}

// SetValue handles PUT /checklists/{templateID}/items/{itemID}/value
func (h *ChecklistHandler) SetValue(w http.ResponseWriter, r *http.Request) {
	h.mutateField(w, r, func(userID, templateID, itemID string, body []byte) error {
		var req SetValueRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return errBadBody(err)
		}
		return h.checklists.SetValue(r.Context(), userID, templateID, itemID, req.Value)
	})
}

// SetNotes handles PUT /checklists/{templateID}/items/{itemID}/notes
func (h *ChecklistHandler) SetNotes(w http.ResponseWriter, r *http.Request) {
	h.mutateField(w, r, func(userID, templateID, itemID string, body []byte) error {
		var req SetNotesRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return errBadBody(err)
		}
		if err := utils.ValidateStruct(req); err != nil {
			return errBadBody(err)
		}
		return h.checklists.SetNotes(r.Context(), userID, templateID, itemID, req.Notes)
	})
}

// SetDeadline handles PUT /checklists/{templateID}/items/{itemID}/deadline
func (h *ChecklistHandler) SetDeadline(w http.ResponseWriter, r *http.Request) {
	h.mutateField(w, r, func(userID, templateID, itemID string, body []byte) error {
		var req SetDeadlineRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return errBadBody(err)
		}
		if err := utils.ValidateStruct(req); err != nil {
			return errBadBody(err)
		}
		deadline, err := time.Parse(time.RFC3339, req.Deadline)
		if err != nil {
			return errBadBody(fmt.Errorf("deadline must be RFC3339: %w", err))
		}
		return h.checklists.SetDeadline(r.Context(), userID, templateID, itemID, deadline)
	})
}

// ToggleFlag handles POST /checklists/{templateID}/items/{itemID}/flag
func (h *ChecklistHandler) ToggleFlag(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		api.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	flagged, err := h.checklists.ToggleFlag(r.Context(),
		userCtx.UserID, chi.URLParam(r, "templateID"), chi.URLParam(r, "itemID"))
	if err != nil {
		api.FromError(w, err)
		return
	}
	api.Success(w, http.StatusOK, map[string]bool{"flagged": flagged})
}

// AddImages handles POST /checklists/{templateID}/items/{itemID}/images
func (h *ChecklistHandler) AddImages(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		api.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	limits := h.dynamic.Current().Limits
	headers, err := h.multipartFiles(r, "images", limits.MaxImageBytes, limits.MaxFilesPerBatch)
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	templateID := chi.URLParam(r, "templateID")
	itemID := chi.URLParam(r, "itemID")

	if limits.MaxImagesPerItem > 0 {
		_, snap, _, err := h.checklists.State(r.Context(), userCtx.UserID, templateID)
		if err != nil {
			api.FromError(w, err)
			return
		}
		existing := 0
		if resp := snap.Responses[itemID]; resp != nil {
			existing = len(resp.Images)
		}
		if existing+len(headers) > limits.MaxImagesPerItem {
			api.Error(w, http.StatusBadRequest,
				fmt.Sprintf("An item can hold at most %d images", limits.MaxImagesPerItem))
			return
		}
	}

	files := make([]checklist.MediaFile, 0, len(headers))
	var opened []multipart.File
	defer func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}()
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			api.Error(w, http.StatusBadRequest, "Failed to read uploaded file: "+fh.Filename)
			return
		}
		opened = append(opened, f)
		files = append(files, checklist.MediaFile{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Reader:      f,
		})
	}

	err = h.checklists.AddImages(r.Context(), userCtx.UserID, templateID, itemID, files)
	if err != nil {
		api.FromError(w, err)
		return
	}
	api.Success(w, http.StatusOK, map[string]int{"added": len(files)})
}

// RemoveImage handles DELETE /checklists/{templateID}/items/{itemID}/images/{index}
func (h *ChecklistHandler) RemoveImage(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		api.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		api.Error(w, http.StatusBadRequest, "Image index must be an integer")
		return
	}

	err = h.checklists.RemoveImage(r.Context(),
		userCtx.UserID, chi.URLParam(r, "templateID"), chi.URLParam(r, "itemID"), index)
	if err != nil {
		api.FromError(w, err)
		return
	}
	api.Success(w, http.StatusNoContent, nil)
}

// AddBlueprints handles POST /checklists/{templateID}/items/{itemID}/blueprints
func (h *ChecklistHandler) AddBlueprints(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		api.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	limits := h.dynamic.Current().Limits
	headers, err := h.multipartFiles(r, "blueprints", limits.MaxBlueprintBytes, limits.MaxFilesPerBatch)
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	files := make([]ports.BlueprintFile, 0, len(headers))
	var opened []multipart.File
	defer func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}()
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			api.Error(w, http.StatusBadRequest, "Failed to read uploaded file: "+fh.Filename)
			return
		}
		opened = append(opened, f)
		files = append(files, ports.BlueprintFile{
			Name:        fh.Filename,
			Size:        fh.Size,
			ContentType: fh.Header.Get("Content-Type"),
			Reader:      f,
		})
	}

	records, err := h.checklists.AddBlueprints(r.Context(),
		userCtx.UserID, chi.URLParam(r, "templateID"), chi.URLParam(r, "itemID"), files)
	if err != nil {
		api.FromError(w, err)
		return
	}
	api.Success(w, http.StatusOK, map[string]any{"blueprints": records})
}

// RemoveBlueprint handles DELETE /checklists/{templateID}/blueprints/{blueprintID}
func (h *ChecklistHandler) RemoveBlueprint(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		api.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	err = h.checklists.RemoveBlueprint(r.Context(),
		userCtx.UserID, chi.URLParam(r, "templateID"), chi.URLParam(r, "blueprintID"))
	if err != nil {
		api.FromError(w, err)
		return
	}
	api.Success(w, http.StatusNoContent, nil)
}

// GetProgress handles GET /checklists/{templateID}/progress
func (h *ChecklistHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		api.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	itemBased, predicateBased, err := h.checklists.Progress(r.Context(),
		userCtx.UserID, chi.URLParam(r, "templateID"))
	if err != nil {
		api.FromError(w, err)
		return
	}
	api.Success(w, http.StatusOK, map[string]int{
		"progress":           itemBased,
		"structuredProgress": predicateBased,
	})
}

func (h *ChecklistHandler) mutateField(w http.ResponseWriter, r *http.Request, fn func(userID, templateID, itemID string, body []byte) error) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		api.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		api.Error(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	templateID := chi.URLParam(r, "templateID")
	itemID := chi.URLParam(r, "itemID")
	if err := fn(userCtx.UserID, templateID, itemID, body); err != nil {
		api.FromError(w, err)
		return
	}
	api.Success(w, http.StatusNoContent, nil)
}

// multipartFiles parses the request and applies the dynamic upload
// limits before any file is read.
func (h *ChecklistHandler) multipartFiles(r *http.Request, field string, maxBytes int64, maxCount int) ([]*multipart.FileHeader, error) {
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		return nil, fmt.Errorf("invalid multipart request: %w", err)
	}
	headers := r.MultipartForm.File[field]
	if len(headers) == 0 {
		return nil, fmt.Errorf("no %q files in request", field)
	}
	if len(headers) > maxCount {
		return nil, fmt.Errorf("at most %d files per request", maxCount)
	}
	for _, fh := range headers {
		if fh.Size > maxBytes {
			return nil, fmt.Errorf("file %q exceeds the %d byte limit", fh.Filename, maxBytes)
		}
	}
	return headers, nil
}

func errBadBody(err error) error {
	return appErrors.NewValidation("invalid request body: " + err.Error())
}
