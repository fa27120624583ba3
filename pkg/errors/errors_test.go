package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorTypesAndPredicates(t *testing.T) {
	cause := stderrors.New("root cause")

	tests := []struct {
		err      error
		wantType ErrorType
		pred     func(error) bool
	}{
		{NewValidation("bad input"), ErrorTypeValidation, IsValidation},
		{NewNotFound("missing"), ErrorTypeNotFound, IsNotFound},
		{NewAuthRequired("sign in"), ErrorTypeAuthRequired, IsAuthRequired},
		{NewMediaEncoding("unreadable file", cause), ErrorTypeMediaEncoding, IsMediaEncoding},
		{NewBlueprintUpload("upload failed", cause), ErrorTypeBlueprintUpload, IsBlueprintUpload},
		{NewAnalysis("model failed", cause), ErrorTypeAnalysis, IsAnalysis},
		{NewPersistenceWarning("save failed", cause), ErrorTypePersistence, IsPersistenceWarning},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.wantType, TypeOf(tt.err))
		assert.True(t, tt.pred(tt.err))
		assert.False(t, IsValidation(tt.err) && tt.wantType != ErrorTypeValidation)
	}
}

func TestTypeOf_UnclassifiedIsInternal(t *testing.T) {
	assert.Equal(t, ErrorTypeInternal, TypeOf(stderrors.New("plain")))
}

func TestWrap_PreservesTypeAndCause(t *testing.T) {
	cause := stderrors.New("disk full")
	wrapped := Wrap(NewBlueprintUpload("upload failed", cause), "while attaching plan.pdf")

	assert.True(t, IsBlueprintUpload(wrapped))
	assert.ErrorIs(t, wrapped, cause)
	assert.Contains(t, wrapped.Error(), "while attaching plan.pdf")

	assert.Nil(t, Wrap(nil, "nothing"))
	assert.Equal(t, ErrorTypeInternal, TypeOf(Wrap(cause, "context")))
}

func TestPredicates_SeeThroughFmtWrapping(t *testing.T) {
	err := fmt.Errorf("handler: %w", NewAnalysis("model failed", nil))
	assert.True(t, IsAnalysis(err))
	assert.Equal(t, ErrorTypeAnalysis, TypeOf(err))
}
