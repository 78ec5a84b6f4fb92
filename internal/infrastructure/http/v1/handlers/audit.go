package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"finbooks/internal/core/apperror"
	"finbooks/internal/core/id"
	"finbooks/internal/infrastructure/storage/postgres"
)

// AuditHandler exposes the per-entity change history.
type AuditHandler struct {
	*BaseHandler
	audit *postgres.AuditService
}

// NewAuditHandler creates the audit history handler.
func NewAuditHandler(base *BaseHandler, audit *postgres.AuditService) *AuditHandler {
	return &AuditHandler{BaseHandler: base, audit: audit}
}

// EntityHistory handles GET /audit/:entityType/:id.
func (h *AuditHandler) EntityHistory(c *gin.Context) {
	ctx := c.Request.Context()

	entityType := c.Param("entityType")
	if entityType == "" {
		h.Error(c, apperror.NewValidation("entityType is required"))
		return
	}

	entityID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	limit := h.ParseIntQuery(c, "limit", 50)
	if limit > 500 {
		limit = 500
	}

	entries, err := h.audit.GetEntityHistory(ctx, entityType, entityID, limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entityType": entityType,
		"entityId":   entityID,
		"entries":    entries,
	})
}
