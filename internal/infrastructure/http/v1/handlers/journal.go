package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"finbooks/internal/core/apperror"
	"finbooks/internal/core/id"
	"finbooks/internal/domain/ledger"
	"finbooks/internal/infrastructure/http/v1/dto"
)

// JournalHandler serves manual journal vouchers and entry lookups.
type JournalHandler struct {
	*BaseHandler
	service *ledger.Service
}

// NewJournalHandler creates the journal entry handler.
func NewJournalHandler(base *BaseHandler, service *ledger.Service) *JournalHandler {
	return &JournalHandler{BaseHandler: base, service: service}
}

// Create handles POST /journal-entries - create a draft, optionally post it.
func (h *JournalHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateJournalEntryRequest
	if !h.BindJSON(c, &req) {
		return
	}

	entry := req.ToEntity()
	if err := h.service.CreateDraft(ctx, entry); err != nil {
		h.Error(c, err)
		return
	}

	if req.Post {
		posted, err := h.service.Post(ctx, entry.ID)
		if err != nil {
			h.Error(c, err)
			return
		}
		entry = posted
	}

	h.Created(c, entry)
}

// Get handles GET /journal-entries/:id.
func (h *JournalHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	entryID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	entry, err := h.service.GetByID(ctx, entryID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, entry)
}

// List handles GET /journal-entries with filters.
func (h *JournalHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	filter := ledger.EntryFilter{
		Limit:  h.ParseIntQuery(c, "limit", 50),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}

	if raw := c.Query("status"); raw != "" {
		st := ledger.Status(raw)
		filter.Status = &st
	}
	if raw := c.Query("sourceType"); raw != "" {
		st := ledger.SourceType(raw)
		filter.SourceType = &st
	}
	if raw := c.Query("branchId"); raw != "" {
		branchID, err := id.Parse(raw)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid branchId format"))
			return
		}
		filter.BranchID = &branchID
	}
	if from, ok := h.ParseDateQuery(c, "from", zeroTime); !ok {
		return
	} else if !from.IsZero() {
		filter.From = &from
	}
	if to, ok := h.ParseDateQuery(c, "to", zeroTime); !ok {
		return
	} else if !to.IsZero() {
		filter.To = &to
	}

	result, err := h.service.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      result.Items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Update handles PUT /journal-entries/:id - replace a draft voucher.
func (h *JournalHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	entryID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.UpdateJournalEntryRequest
	if !h.BindJSON(c, &req) {
		return
	}

	entry, err := h.service.GetByID(ctx, entryID)
	if err != nil {
		h.Error(c, err)
		return
	}

	req.ApplyTo(entry)
	if err := h.service.UpdateDraft(ctx, entry); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, entry)
}

// Post handles POST /journal-entries/:id/post.
func (h *JournalHandler) Post(c *gin.Context) {
	ctx := c.Request.Context()

	entryID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	entry, err := h.service.Post(ctx, entryID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, entry)
}

// Cancel handles POST /journal-entries/:id/cancel - emit the reversal entry.
func (h *JournalHandler) Cancel(c *gin.Context) {
	ctx := c.Request.Context()

	entryID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	reversal, err := h.service.Cancel(ctx, entryID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, reversal)
}
