package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"finbooks/internal/core/apperror"
	"finbooks/internal/core/id"
	"finbooks/internal/domain/payments"
	"finbooks/internal/infrastructure/http/v1/dto"
)

// PaymentHandler serves payment recording and allocation.
type PaymentHandler struct {
	*BaseHandler
	service *payments.Service
}

// NewPaymentHandler creates the payment handler.
func NewPaymentHandler(base *BaseHandler, service *payments.Service) *PaymentHandler {
	return &PaymentHandler{BaseHandler: base, service: service}
}

// Create handles POST /payments - record a payment and allocate it.
func (h *PaymentHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var cmd payments.RecordPaymentCommand
	if !h.BindJSON(c, &cmd) {
		return
	}

	p, err := h.service.RecordPayment(ctx, cmd)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, p)
}

// Get handles GET /payments/:id.
func (h *PaymentHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	paymentID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	p, err := h.service.GetByID(ctx, paymentID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

// List handles GET /payments with filters.
func (h *PaymentHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	filter := payments.ListFilter{
		Limit:  h.ParseIntQuery(c, "limit", 50),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}

	if raw := c.Query("counterpartyId"); raw != "" {
		cpID, err := id.Parse(raw)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid counterpartyId format"))
			return
		}
		filter.CounterpartyID = &cpID
	}
	if raw := c.Query("direction"); raw != "" {
		d := payments.Direction(raw)
		filter.Direction = &d
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

// Cancel handles POST /payments/:id/cancel - reverse allocations and postings.
func (h *PaymentHandler) Cancel(c *gin.Context) {
	ctx := c.Request.Context()

	paymentID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	if err := h.service.CancelPayment(ctx, paymentID); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "payment cancelled")
}
