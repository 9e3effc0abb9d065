// Package errors provides custom error types for the Cash Flow API.
// All service-layer errors should use AppError so handlers can produce
// consistent JSON responses.
package errors

import (
	stderrors "errors"
	"net/http"
)

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Fields     map[string]string `json:"fields,omitempty"`
	StatusCode int               `json:"-"`
	Internal   error             `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is reports whether target carries the same code, so a wrapped copy of a
// sentinel still matches the sentinel itself.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// WithFields creates a validation error carrying per-field reasons.
func WithFields(sentinel *AppError, message string, fields map[string]string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		Fields:     fields,
		StatusCode: sentinel.StatusCode,
	}
}

// Failed builds a mutation failure: the sentinel's message (the failed
// action) followed by the cause text. When the cause is itself an AppError
// its status code is kept.
func Failed(sentinel *AppError, cause error) *AppError {
	status := sentinel.StatusCode
	var appErr *AppError
	if stderrors.As(cause, &appErr) && appErr.StatusCode != 0 {
		status = appErr.StatusCode
	}
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message + ": " + cause.Error(),
		StatusCode: status,
		Internal:   cause,
	}
}

// Authentication errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrTooManyRequests    = &AppError{Code: "TOO_MANY_REQUESTS", Message: "Too many requests, slow down", StatusCode: http.StatusTooManyRequests}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// Lifecycle failures. The message names the action that failed; Failed
// appends the cause.
var (
	ErrSaveFailed   = &AppError{Code: "SAVE_FAILED", Message: "failed to save", StatusCode: http.StatusInternalServerError}
	ErrUpdateFailed = &AppError{Code: "UPDATE_FAILED", Message: "failed to update", StatusCode: http.StatusInternalServerError}
	ErrDeleteFailed = &AppError{Code: "DELETE_FAILED", Message: "failed to delete", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound   = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
)

// Role and permission errors.
var (
	ErrRoleNotFound        = &AppError{Code: "ROLE_NOT_FOUND", Message: "Role not found", StatusCode: http.StatusNotFound}
	ErrDuplicateRole       = &AppError{Code: "DUPLICATE_ROLE", Message: "A role with this name already exists", StatusCode: http.StatusConflict}
	ErrPermissionNotFound  = &AppError{Code: "PERMISSION_NOT_FOUND", Message: "Permission not found", StatusCode: http.StatusNotFound}
	ErrDuplicatePermission = &AppError{Code: "DUPLICATE_PERMISSION", Message: "A permission with this name already exists", StatusCode: http.StatusConflict}
)

// Wallet errors.
var (
	ErrWalletNotFound = &AppError{Code: "WALLET_NOT_FOUND", Message: "Wallet not found", StatusCode: http.StatusNotFound}
)

// Category errors.
var (
	ErrCategoryNotFound  = &AppError{Code: "CATEGORY_NOT_FOUND", Message: "Category not found", StatusCode: http.StatusNotFound}
	ErrDuplicateCategory = &AppError{Code: "DUPLICATE_CATEGORY", Message: "A category with this name already exists", StatusCode: http.StatusConflict}
)

// Transaction errors.
var (
	ErrTransactionNotFound     = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
	ErrTransactionTypeMismatch = &AppError{Code: "TRANSACTION_TYPE_MISMATCH", Message: "Transaction type does not match the category type", StatusCode: http.StatusUnprocessableEntity}
)

// Appearance errors.
var (
	ErrAppearanceNotFound = &AppError{Code: "APPEARANCE_NOT_FOUND", Message: "No appearance has been configured", StatusCode: http.StatusNotFound}
	ErrInvalidUpload      = &AppError{Code: "INVALID_UPLOAD", Message: "Uploaded file is not an accepted image", StatusCode: http.StatusBadRequest}
)
