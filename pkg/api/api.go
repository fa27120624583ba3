// Package api defines shared response helpers for the HTTP surface. It
// decouples the wire format from the internal domain models.
package api

import (
	"encoding/json"
	"net/http"

	pkgerrors "safesite-backend/pkg/errors"
)

// ErrorResponse is a standardized error message for API responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Type  string `json:"type,omitempty"`
}

// Success writes a JSON response with the given status code.
func Success(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

// FromError maps an application error onto the wire: status code from
// the error type, message verbatim.
func FromError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch pkgerrors.TypeOf(err) {
	case pkgerrors.ErrorTypeValidation, pkgerrors.ErrorTypeMediaEncoding:
		status = http.StatusBadRequest
	case pkgerrors.ErrorTypeNotFound:
		status = http.StatusNotFound
	case pkgerrors.ErrorTypeAuthRequired:
		status = http.StatusUnauthorized
	case pkgerrors.ErrorTypeBlueprintUpload, pkgerrors.ErrorTypeAnalysis:
		status = http.StatusBadGateway
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error: err.Error(),
		Type:  string(pkgerrors.TypeOf(err)),
	})
}
