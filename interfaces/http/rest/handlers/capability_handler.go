package handlers

import (
	"net/http"

	"safesite-backend/application/ports"
	"safesite-backend/pkg/api"
)

// CapabilityHandler reports which optional media integrations this
// deployment offers.
type CapabilityHandler struct {
	capabilities ports.CapabilityProvider
}

// NewCapabilityHandler creates a new capability handler
func NewCapabilityHandler(capabilities ports.CapabilityProvider) *CapabilityHandler {
	return &CapabilityHandler{capabilities: capabilities}
}

// GetCapabilities handles GET /capabilities
func (h *CapabilityHandler) GetCapabilities(w http.ResponseWriter, r *http.Request) {
	api.Success(w, http.StatusOK, h.capabilities.Capabilities())
}
