package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Reason codes returned to clients alongside the HTTP status.
const (
	ReasonInsufficientStock  = "INSUFFICIENT_STOCK"
	ReasonInvalidLineItem    = "INVALID_LINE_ITEM"
	ReasonNumberingConflict  = "NUMBERING_CONFLICT"
	ReasonPersistenceFailure = "PERSISTENCE_FAILURE"
	ReasonValidation         = "VALIDATION_FAILED"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code      int            `json:"code"`
	Reason    string         `json:"reason,omitempty"`
	Message   string         `json:"message"`
	Errors    []FieldError   `json:"errors,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	Retryable bool           `json:"retryable,omitempty"`
	cause     error
}

// FieldError represents a validation error for a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.cause
}

// IsClientError reports whether the caller can fix the request and resubmit.
func (e *AppError) IsClientError() bool {
	return e.Code >= 400 && e.Code < 500
}

// Common errors
var (
	ErrNotFound           = &AppError{Code: http.StatusNotFound, Message: "Resource not found"}
	ErrUnauthorized       = &AppError{Code: http.StatusUnauthorized, Message: "Unauthorized"}
	ErrForbidden          = &AppError{Code: http.StatusForbidden, Message: "Forbidden"}
	ErrBadRequest         = &AppError{Code: http.StatusBadRequest, Message: "Bad request"}
	ErrInternalServer     = &AppError{Code: http.StatusInternalServerError, Message: "Internal server error"}
	ErrConflict           = &AppError{Code: http.StatusConflict, Message: "Resource already exists"}
	ErrInvalidCredentials = &AppError{Code: http.StatusUnauthorized, Message: "Invalid email or password"}
	ErrTokenExpired       = &AppError{Code: http.StatusUnauthorized, Message: "Token has expired"}
	ErrInvalidToken       = &AppError{Code: http.StatusUnauthorized, Message: "Invalid token"}
	ErrAccountDisabled    = &AppError{Code: http.StatusForbidden, Message: "Account is disabled"}
)

// NewAppError creates a new application error
func NewAppError(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(fieldErrors []FieldError) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Reason:  ReasonValidation,
		Message: "Validation failed",
		Errors:  fieldErrors,
	}
}

// NewNotFoundError creates a not found error with a custom message
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Message: resource + " not found",
	}
}

// NewConflictError creates a conflict error with a custom message
func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Message: message,
	}
}

// NewBadRequestError creates a bad request error with a custom message
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Message: message,
	}
}

// NewInsufficientStockError reports that a SKU cannot cover the requested base units.
func NewInsufficientStockError(sku string, requested, available int64) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Reason:  ReasonInsufficientStock,
		Message: fmt.Sprintf("Insufficient stock for %s: requested %d, available %d", sku, requested, available),
		Details: map[string]any{
			"sku":       sku,
			"requested": requested,
			"available": available,
		},
	}
}

// NewInvalidLineItemError rejects a sale line before any allocation is attempted.
func NewInvalidLineItemError(line int, sku, reason string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Reason:  ReasonInvalidLineItem,
		Message: fmt.Sprintf("Invalid line item %d (%s): %s", line, sku, reason),
		Details: map[string]any{
			"line":   line,
			"sku":    sku,
			"reason": reason,
		},
	}
}

// NewNumberingConflictError is returned once invoice number retries are exhausted.
func NewNumberingConflictError(fiscalCode string, attempts int, cause error) *AppError {
	return &AppError{
		Code:      http.StatusInternalServerError,
		Reason:    ReasonNumberingConflict,
		Message:   "Could not assign an invoice number, please retry",
		Details:   map[string]any{"fiscal_code": fiscalCode, "attempts": attempts},
		Retryable: true,
		cause:     cause,
	}
}

// NewPersistenceError hides a storage failure behind a generic retryable message.
func NewPersistenceError(cause error) *AppError {
	return &AppError{
		Code:      http.StatusInternalServerError,
		Reason:    ReasonPersistenceFailure,
		Message:   "The operation could not be completed, please retry later",
		Retryable: true,
		cause:     cause,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// HasReason reports whether err is an AppError carrying the given reason code.
func HasReason(err error, reason string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Reason == reason
}

// GetAppError converts an error to AppError if possible.
// Unknown errors become a persistence failure so their text never reaches clients.
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewPersistenceError(err)
}
