package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"finbooks/internal/core/apperror"
	"finbooks/internal/core/id"
	"finbooks/internal/domain/catalogs/account"
	"finbooks/internal/domain/ledger"
	"finbooks/internal/infrastructure/http/v1/dto"
)

// AccountHandler serves the chart of accounts plus per-account activity.
type AccountHandler struct {
	*CatalogHandler[*account.Account, dto.CreateAccountRequest, dto.UpdateAccountRequest]
	accounts *account.Service
	journal  *ledger.Service
}

// NewAccountHandler creates the account handler.
func NewAccountHandler(base *BaseHandler, service *account.Service, journal *ledger.Service) *AccountHandler {
	config := CatalogHandlerConfig[
		*account.Account,
		dto.CreateAccountRequest,
		dto.UpdateAccountRequest,
	]{
		Service:    service.CatalogService,
		EntityName: "account",
		MapCreateDTO: func(req dto.CreateAccountRequest) *account.Account {
			return req.ToEntity()
		},
		MapUpdateDTO: func(req dto.UpdateAccountRequest, existing *account.Account) *account.Account {
			req.ApplyTo(existing)
			return existing
		},
	}

	return &AccountHandler{
		CatalogHandler: NewCatalogHandler(base, config),
		accounts:       service,
		journal:        journal,
	}
}

// ListByType handles GET /accounts/by-type?type=asset&type=expense.
func (h *AccountHandler) ListByType(c *gin.Context) {
	ctx := c.Request.Context()

	raw := c.QueryArray("type")
	if len(raw) == 0 {
		h.Error(c, apperror.NewValidation("at least one type is required").
			WithDetail("param", "type"))
		return
	}

	types := make([]account.Type, len(raw))
	for i, r := range raw {
		types[i] = account.Type(r)
	}

	accounts, err := h.accounts.ListByType(ctx, types...)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": accounts})
}

// Activity handles GET /accounts/:id/activity - posted journal lines
// touching the account within the period.
func (h *AccountHandler) Activity(c *gin.Context) {
	ctx := c.Request.Context()

	accountID, err := id.Parse(c.Param("id"))
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

	lines, err := h.journal.AccountActivity(ctx, accountID, from, to)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"accountId": accountID, "lines": lines})
}
