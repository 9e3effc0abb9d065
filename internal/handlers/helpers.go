package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "cashflow/internal/errors"
	"cashflow/internal/lifecycle"
	"cashflow/internal/logger"
	"cashflow/internal/pagination"
	"cashflow/internal/uuid"
	"cashflow/internal/validator"
)

// getUserID extracts the authenticated user ID from the Gin context.
// Returns ErrUnauthorized if not present.
func getUserID(c *gin.Context) (string, error) {
	userID := c.GetString("userID")
	if userID == "" {
		return "", apperrors.ErrUnauthorized
	}
	return userID, nil
}

// getActor builds the acting identity for a lifecycle operation.
func getActor(c *gin.Context) (lifecycle.Actor, error) {
	userID, err := getUserID(c)
	if err != nil {
		return lifecycle.Actor{}, err
	}
	return lifecycle.Actor{UserID: userID, IP: c.ClientIP()}, nil
}

// parsePathID reads an id path parameter.
// Returns ErrInvalidInput if the parameter is not a valid UUID.
//
//nolint:unparam // param is intentionally generic for reuse across handlers with different path params
func parsePathID(c *gin.Context, param string) (string, error) {
	id := c.Param(param)
	if !uuid.IsValid(id) {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+param)
	}
	return id, nil
}

// bindError converts a binding failure into an INVALID_INPUT error, with
// per-field reasons when the payload failed validation.
func bindError(err error) error {
	if fields, ok := validator.FieldErrors(err); ok {
		return apperrors.WithFields(apperrors.ErrInvalidInput, "Validation failed", fields)
	}
	return apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
}

// bindPage reads page and page_size from the query string.
func bindPage(c *gin.Context) (pagination.PageRequest, error) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		return page, bindError(err)
	}
	return page, nil
}

// parseFlexibleTime accepts RFC3339 timestamps and plain YYYY-MM-DD dates.
func parseFlexibleTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, errors.New("invalid date " + s + ": use RFC3339 or YYYY-MM-DD")
	}
	return t, nil
}

// respondMutation writes the outcome of a lifecycle operation together with
// the affected entity under key.
func respondMutation[T any](c *gin.Context, status int, key string, res *lifecycle.Result[T]) {
	body := gin.H{
		"message": res.Outcome.Message,
		key:       res.Entity,
	}
	if res.Outcome.Redirect != "" {
		body["redirect"] = res.Outcome.Redirect
	}
	c.JSON(status, body)
}

// respondDeleted writes the outcome of a delete without echoing the entity.
func respondDeleted[T any](c *gin.Context, res *lifecycle.Result[T]) {
	body := gin.H{"message": res.Outcome.Message}
	if res.Outcome.Redirect != "" {
		body["redirect"] = res.Outcome.Redirect
	}
	c.JSON(http.StatusOK, body)
}

// respondWithError writes a consistent JSON error response. If the error is an
// *AppError it uses the error's status code, code, message and field reasons.
// Otherwise it logs the unexpected error and returns a generic internal
// server error.
func respondWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Internal != nil {
			logger.Get().Errorw("app error",
				"code", appErr.Code,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
			)
		}
		body := gin.H{
			"code":    appErr.Code,
			"message": appErr.Message,
		}
		if len(appErr.Fields) > 0 {
			body["fields"] = appErr.Fields
		}
		c.JSON(appErr.StatusCode, gin.H{"error": body})
		return
	}

	logger.Get().Errorw("unexpected error",
		"error", err.Error(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	)
	c.JSON(apperrors.ErrInternalServer.StatusCode, gin.H{
		"error": gin.H{
			"code":    apperrors.ErrInternalServer.Code,
			"message": apperrors.ErrInternalServer.Message,
		},
	})
}

// ErrorDetail represents the inner error object in an error response.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// MessageResponse is the body of a successful delete.
type MessageResponse struct {
	Message  string `json:"message"`
	Redirect string `json:"redirect,omitempty"`
}
