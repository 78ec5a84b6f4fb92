package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"finbooks/internal/core/apperror"
	"finbooks/internal/core/id"
	"finbooks/internal/domain/catalogs/counterparty"
	"finbooks/internal/domain/credit"
	"finbooks/internal/domain/payments"
	cpledger "finbooks/internal/domain/registers/counterparty"
	"finbooks/internal/infrastructure/http/v1/dto"
)

// CounterpartyHandler serves counterparty CRUD plus the statement,
// credit-status and advance views.
type CounterpartyHandler struct {
	*CatalogHandler[*counterparty.Counterparty, dto.CreateCounterpartyRequest, dto.UpdateCounterpartyRequest]
	register *cpledger.Service
	credit   *credit.Controller
	payments *payments.Service
}

// NewCounterpartyHandler creates the counterparty handler.
func NewCounterpartyHandler(
	base *BaseHandler,
	service *counterparty.Service,
	register *cpledger.Service,
	creditCtrl *credit.Controller,
	paymentSvc *payments.Service,
) *CounterpartyHandler {
	config := CatalogHandlerConfig[
		*counterparty.Counterparty,
		dto.CreateCounterpartyRequest,
		dto.UpdateCounterpartyRequest,
	]{
		Service:    service.CatalogService,
		EntityName: "counterparty",
		MapCreateDTO: func(req dto.CreateCounterpartyRequest) *counterparty.Counterparty {
			return req.ToEntity()
		},
		MapUpdateDTO: func(req dto.UpdateCounterpartyRequest, existing *counterparty.Counterparty) *counterparty.Counterparty {
			req.ApplyTo(existing)
			return existing
		},
	}

	return &CounterpartyHandler{
		CatalogHandler: NewCatalogHandler(base, config),
		register:       register,
		credit:         creditCtrl,
		payments:       paymentSvc,
	}
}

// Statement handles GET /counterparties/:id/statement - the running ledger.
func (h *CounterpartyHandler) Statement(c *gin.Context) {
	ctx := c.Request.Context()

	cpID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	from, ok := h.ParseDateQuery(c, "from", time.Time{})
	if !ok {
		return
	}
	to, ok := h.ParseDateQuery(c, "to", time.Now().UTC())
	if !ok {
		return
	}
	limit := h.ParseIntQuery(c, "limit", 100)
	offset := h.ParseIntQuery(c, "offset", 0)

	entries, err := h.register.Statement(ctx, cpID, from, to, limit, offset)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"counterpartyId": cpID, "entries": entries})
}

// CreditStatus handles GET /counterparties/:id/credit-status.
func (h *CounterpartyHandler) CreditStatus(c *gin.Context) {
	ctx := c.Request.Context()

	cpID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	status, err := h.credit.StatusFor(ctx, cpID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, status)
}

// Advance handles GET /counterparties/:id/advance - unapplied balance.
func (h *CounterpartyHandler) Advance(c *gin.Context) {
	ctx := c.Request.Context()

	cpID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	balance, err := h.payments.AdvanceBalance(ctx, cpID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"counterpartyId": cpID, "advanceBalance": balance})
}
