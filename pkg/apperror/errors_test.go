package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsufficientStockIsClientError(t *testing.T) {
	err := NewInsufficientStockError("PCM-500", 60, 12)

	assert.Equal(t, http.StatusBadRequest, err.Code)
	assert.True(t, err.IsClientError())
	assert.False(t, err.Retryable)
	assert.Equal(t, "PCM-500", err.Details["sku"])
	assert.Equal(t, int64(60), err.Details["requested"])
	assert.Equal(t, int64(12), err.Details["available"])
	assert.True(t, HasReason(fmt.Errorf("line 1: %w", err), ReasonInsufficientStock))
}

func TestServerSideReasons(t *testing.T) {
	cause := errors.New("duplicate key")
	conflict := NewNumberingConflictError("2526", 3, cause)
	persist := NewPersistenceError(cause)

	for _, e := range []*AppError{conflict, persist} {
		assert.Equal(t, http.StatusInternalServerError, e.Code)
		assert.False(t, e.IsClientError())
		assert.True(t, e.Retryable)
		assert.ErrorIs(t, e, cause)
	}
	assert.Equal(t, ReasonNumberingConflict, conflict.Reason)
	assert.Equal(t, ReasonPersistenceFailure, persist.Reason)
}

func TestGetAppError(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", NewInvalidLineItemError(2, "X", "bad pack size"))
	got := GetAppError(wrapped)
	assert.Equal(t, ReasonInvalidLineItem, got.Reason)
	assert.Equal(t, 2, got.Details["line"])

	raw := GetAppError(errors.New("connection reset"))
	require.NotNil(t, raw)
	assert.Equal(t, ReasonPersistenceFailure, raw.Reason)
	assert.NotContains(t, raw.Message, "connection reset")
}
