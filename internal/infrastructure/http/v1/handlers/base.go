// Package handlers provides HTTP request handlers.
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"finbooks/internal/core/apperror"
	appctx "finbooks/internal/core/context"
	"finbooks/internal/infrastructure/http/v1/dto"
	"finbooks/internal/infrastructure/storage/postgres"
)

// zeroTime is the fallback for optional date query parameters.
var zeroTime time.Time

// BaseHandler provides common handler utilities.
type BaseHandler struct{}

// NewBaseHandler creates a new base handler.
func NewBaseHandler() *BaseHandler {
	return &BaseHandler{}
}

// BindJSON binds and validates JSON request body.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid request body").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// Error registers error on Gin context and aborts request.
// Actual JSON response is produced by middleware.ErrorHandler.
func (h *BaseHandler) Error(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// ParseIntQuery parses integer query parameter with default value.
func (h *BaseHandler) ParseIntQuery(c *gin.Context, key string, defaultVal int) int {
	val := c.Query(key)
	if val == "" {
		return defaultVal
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return parsed
}

// ParseDateQuery parses an RFC 3339 or YYYY-MM-DD query parameter.
// Returns the fallback when the parameter is absent, and reports
// a validation error on malformed input.
func (h *BaseHandler) ParseDateQuery(c *gin.Context, key string, fallback time.Time) (time.Time, bool) {
	val := c.Query(key)
	if val == "" {
		return fallback, true
	}
	if t, err := time.Parse(time.RFC3339, val); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", val); err == nil {
		return t, true
	}
	h.Error(c, apperror.NewValidation("invalid date format").
		WithDetail("param", key).
		WithDetail("value", val))
	return time.Time{}, false
}

// GetUserID extracts user ID from request context.
func (h *BaseHandler) GetUserID(c *gin.Context) string {
	user := appctx.GetUser(c.Request.Context())
	if user == nil {
		return ""
	}
	return user.UserID
}

// CompleteIdempotency marks idempotency key as completed with the same HTTP
// semantics (status code + content type + body) for correct replay.
func (h *BaseHandler) CompleteIdempotency(c *gin.Context, statusCode int, contentType string, response any) {
	if key, exists := c.Get("idempotency_key"); exists {
		if store, ok := c.Get("idempotency_store"); ok {
			_ = store.(*postgres.IdempotencyStore).CompleteKey(c.Request.Context(), key.(string), statusCode, contentType, response)
		}
	}
}

// Created sends 201 response with data.
func (h *BaseHandler) Created(c *gin.Context, data any) {
	h.CompleteIdempotency(c, http.StatusCreated, "application/json", data)
	c.JSON(http.StatusCreated, data)
}

// OK sends 200 response with data.
func (h *BaseHandler) OK(c *gin.Context, data any) {
	h.CompleteIdempotency(c, http.StatusOK, "application/json", data)
	c.JSON(http.StatusOK, data)
}

// NoContent sends 204 response.
func (h *BaseHandler) NoContent(c *gin.Context) {
	// 204 must replay as 204 with empty body.
	h.CompleteIdempotency(c, http.StatusNoContent, "", nil)
	c.Status(http.StatusNoContent)
}

// Success sends success response.
func (h *BaseHandler) Success(c *gin.Context, message string) {
	response := dto.SuccessResponse{Success: true, Message: message}
	h.CompleteIdempotency(c, http.StatusOK, "application/json", response)
	c.JSON(http.StatusOK, response)
}
