// Package apperror provides structured error handling following RFC 7807 Problem Details.
// All business errors must use AppError for consistent API responses.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes following domain-driven design
const (
	// Infrastructure errors (5xx)
	CodeInternal = "INTERNAL_ERROR"
	CodeDatabase = "DATABASE_ERROR"
	CodeTimeout  = "TIMEOUT_ERROR"

	// Validation errors (400)
	CodeValidation   = "VALIDATION_ERROR"
	CodeInvalidInput = "INVALID_INPUT"

	// Business rule violations (422)
	CodeBusinessRule        = "BUSINESS_RULE_VIOLATION"
	CodeUnbalancedEntry     = "UNBALANCED_ENTRY"
	CodeOverAllocation      = "OVER_ALLOCATION"
	CodeCreditLimitExceeded = "CREDIT_LIMIT_EXCEEDED"
	CodeDocumentPosted      = "DOCUMENT_ALREADY_POSTED"
	CodePeriodClosed        = "PERIOD_CLOSED"

	// Concurrency (409)
	CodeConcurrentModification = "CONCURRENT_MODIFICATION"
	CodeSequenceConflict       = "SEQUENCE_CONFLICT"

	// Authorization errors (401, 403)
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"

	// Not found (404)
	CodeNotFound = "NOT_FOUND"

	// Conflict (409)
	CodeConflict            = "CONFLICT"
	CodeDuplicate           = "DUPLICATE_ENTRY"
	CodeIdempotencyConflict = "IDEMPOTENCY_CONFLICT"
	CodeIdempotencyMismatch = "IDEMPOTENCY_KEY_REUSED"
)

// AppError is the standard error type for the engine.
// It implements error interface and provides structured details for API responses.
type AppError struct {
	// Code is a machine-readable error identifier
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Details contains additional context (field errors, amounts, etc.)
	Details map[string]any `json:"details,omitempty"`

	// HTTPStatus is the suggested HTTP status code
	HTTPStatus int `json:"-"`

	// Err is the underlying error (not exposed in JSON)
	Err error `json:"-"`

	// Retryable hints the caller that the same request may succeed on retry.
	Retryable bool `json:"retryable,omitempty"`
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to error details
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// --- Factory functions for common errors ---

// NewValidation creates a validation error (400)
func NewValidation(message string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewNotFound creates a not found error (404)
func NewNotFound(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", entity),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewBusinessRule creates a business rule violation error (422)
func NewBusinessRule(code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// NewUnbalancedEntry creates an error for a journal entry whose debit and
// credit totals differ by more than the rounding epsilon.
func NewUnbalancedEntry(totalDebit, totalCredit string) *AppError {
	return &AppError{
		Code:       CodeUnbalancedEntry,
		Message:    "Journal entry debits and credits do not balance",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details: map[string]any{
			"total_debit":  totalDebit,
			"total_credit": totalCredit,
		},
	}
}

// NewOverAllocation creates an error when a payment allocation exceeds the
// document's outstanding balance.
func NewOverAllocation(documentID string, allocated, balance string) *AppError {
	return &AppError{
		Code:       CodeOverAllocation,
		Message:    "Allocated amount exceeds document balance",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details: map[string]any{
			"document_id": documentID,
			"allocated":   allocated,
			"balance":     balance,
		},
	}
}

// NewCreditLimitExceeded creates an error when a counterparty's exposure would
// exceed its credit limit.
func NewCreditLimitExceeded(counterpartyID string, outstanding, documentTotal, creditLimit string) *AppError {
	return &AppError{
		Code:       CodeCreditLimitExceeded,
		Message:    "Credit limit exceeded",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details: map[string]any{
			"counterparty_id": counterpartyID,
			"outstanding":     outstanding,
			"document_total":  documentTotal,
			"credit_limit":    creditLimit,
		},
	}
}

// NewSequenceConflict is returned when a sequence draw lost the race on every
// retry. The caller may safely retry the whole operation.
func NewSequenceConflict(key string, attempts int) *AppError {
	return &AppError{
		Code:       CodeSequenceConflict,
		Message:    "Document number allocation lost a concurrent race",
		HTTPStatus: http.StatusConflict,
		Retryable:  true,
		Details:    map[string]any{"sequence_key": key, "attempts": attempts},
	}
}

// NewConcurrentModification creates an optimistic locking error
func NewConcurrentModification(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeConcurrentModification,
		Message:    "Record was modified by another user. Please refresh and try again.",
		HTTPStatus: http.StatusConflict,
		Retryable:  true,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewDatabase creates a persistence error (500). Compensating actions run
// before this surfaces where the contract defines them.
func NewDatabase(err error) *AppError {
	return &AppError{
		Code:       CodeDatabase,
		Message:    "Datastore operation failed",
		HTTPStatus: http.StatusInternalServerError,
		Retryable:  true,
		Err:        err,
	}
}

// NewInternal creates an internal server error (hides details from client)
func NewInternal(err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewUnauthorized creates an authentication error (401)
func NewUnauthorized(message string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NewForbidden creates an authorization error (403)
func NewForbidden(message string) *AppError {
	return &AppError{
		Code:       CodeForbidden,
		Message:    message,
		HTTPStatus: http.StatusForbidden,
	}
}

// NewPeriodClosed creates error when trying to modify closed period
func NewPeriodClosed(period string) *AppError {
	return &AppError{
		Code:       CodePeriodClosed,
		Message:    fmt.Sprintf("Period %s is closed for modifications", period),
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"period": period},
	}
}

// NewConflict creates a conflict error (409)
func NewConflict(message string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// NewDuplicate creates a duplicate entry error (409)
func NewDuplicate(entity, field, value string) *AppError {
	return &AppError{
		Code:       CodeDuplicate,
		Message:    fmt.Sprintf("%s with this %s already exists", entity, field),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"entity": entity, "field": field, "value": value},
	}
}

// NewIdempotencyConflict signals that the key is being processed by a concurrent request (409)
func NewIdempotencyConflict(key string) *AppError {
	return &AppError{
		Code:       CodeIdempotencyConflict,
		Message:    "Request with this idempotency key is already in progress",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"idempotency_key": key},
		Retryable:  true,
	}
}

// NewIdempotencyMismatch signals that the key was reused with a different request (422)
func NewIdempotencyMismatch(key string) *AppError {
	return &AppError{
		Code:       CodeIdempotencyMismatch,
		Message:    "Idempotency key was already used for a different request",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"idempotency_key": key},
	}
}

// --- Helper functions ---

// IsAppError checks if error is AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError extracts AppError from error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetCode returns the error code for any error, CodeInternal for non-AppErrors
func GetCode(err error) string {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return CodeInternal
}

// GetHTTPStatus returns appropriate HTTP status for any error
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// IsNotFound checks if error is CodeNotFound
func IsNotFound(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == CodeNotFound
	}
	return false
}

// IsRetryable reports whether the caller may retry the failed operation.
func IsRetryable(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Retryable
	}
	return false
}

// IsConcurrentModification checks if error is CodeConcurrentModification
func IsConcurrentModification(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == CodeConcurrentModification
	}
	return false
}
