package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "safesite-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuccess_NoBodyOnNilData(t *testing.T) {
	rec := httptest.NewRecorder()
	Success(rec, http.StatusNoContent, nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestSuccess_EncodesBody(t *testing.T) {
	rec := httptest.NewRecorder()
	Success(rec, http.StatusCreated, map[string]string{"key": "abc"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"key":"abc"}`, rec.Body.String())
}

func TestFromError_StatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", pkgerrors.NewValidation("bad input"), http.StatusBadRequest},
		{"media encoding", pkgerrors.NewMediaEncoding("not an image", nil), http.StatusBadRequest},
		{"not found", pkgerrors.NewNotFound("no such template"), http.StatusNotFound},
		{"auth required", pkgerrors.NewAuthRequired("no token"), http.StatusUnauthorized},
		{"blueprint upload", pkgerrors.NewBlueprintUpload("bucket unreachable", nil), http.StatusBadGateway},
		{"analysis", pkgerrors.NewAnalysis("model unavailable", nil), http.StatusBadGateway},
		{"persistence", pkgerrors.NewPersistenceWarning("write failed", nil), http.StatusInternalServerError},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			FromError(rec, tc.err)

			assert.Equal(t, tc.status, rec.Code)

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.err.Error(), body.Error)
		})
	}
}

func TestFromError_MessageVerbatim(t *testing.T) {
	rec := httptest.NewRecorder()
	FromError(rec, pkgerrors.NewValidation("deadline must be RFC3339"))

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "VALIDATION: deadline must be RFC3339", body.Error)
	assert.Equal(t, "VALIDATION", body.Type)
}
