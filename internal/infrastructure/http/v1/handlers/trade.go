package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"finbooks/internal/core/apperror"
	"finbooks/internal/core/id"
	"finbooks/internal/domain/documents/trade"
	"finbooks/internal/infrastructure/http/v1/dto"
)

// TradeHandler serves trade documents: invoices, bills, notes, orders,
// GRNs and quotations.
type TradeHandler struct {
	*BaseHandler
	service *trade.Service
}

// NewTradeHandler creates the trade document handler.
func NewTradeHandler(base *BaseHandler, service *trade.Service) *TradeHandler {
	return &TradeHandler{BaseHandler: base, service: service}
}

// Create handles POST /documents - create a document, optionally issuing it.
func (h *TradeHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var cmd trade.CreateDocumentCommand
	if !h.BindJSON(c, &cmd) {
		return
	}

	doc, err := h.service.CreateDocument(ctx, cmd)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, doc)
}

// Get handles GET /documents/:id.
func (h *TradeHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	documentID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	doc, err := h.service.GetByID(ctx, documentID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, doc)
}

// List handles GET /documents with filters.
func (h *TradeHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	filter := trade.ListFilter{
		Limit:            h.ParseIntQuery(c, "limit", 50),
		Offset:           h.ParseIntQuery(c, "offset", 0),
		IncludeCancelled: c.Query("includeCancelled") == "true",
	}

	if raw := c.Query("type"); raw != "" {
		t := trade.DocumentType(raw)
		filter.Type = &t
	}
	if raw := c.Query("counterpartyId"); raw != "" {
		cpID, err := id.Parse(raw)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid counterpartyId format"))
			return
		}
		filter.CounterpartyID = &cpID
	}
	if raw := c.Query("branchId"); raw != "" {
		branchID, err := id.Parse(raw)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid branchId format"))
			return
		}
		filter.BranchID = &branchID
	}
	if raw := c.Query("paymentStatus"); raw != "" {
		ps := trade.PaymentStatus(raw)
		filter.PaymentStatus = &ps
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

// IssueRequest carries issue-time options.
type IssueRequest struct {
	CreditOverride bool `json:"creditOverride"`
}

// Issue handles POST /documents/:id/issue - number, post and record effects.
func (h *TradeHandler) Issue(c *gin.Context) {
	ctx := c.Request.Context()

	documentID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req IssueRequest
	if c.Request.ContentLength > 0 && !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.service.IssueDocument(ctx, documentID, req.CreditOverride)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, doc)
}

// Cancel handles POST /documents/:id/cancel - reverse all posted effects.
func (h *TradeHandler) Cancel(c *gin.Context) {
	ctx := c.Request.Context()

	documentID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	if err := h.service.CancelDocument(ctx, documentID); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "document cancelled")
}
