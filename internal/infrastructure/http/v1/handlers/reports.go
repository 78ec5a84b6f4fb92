package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"finbooks/internal/domain/reports"
)

// ReportsHandler serves the financial statements.
type ReportsHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportsHandler creates the reports handler.
func NewReportsHandler(base *BaseHandler, service *reports.Service) *ReportsHandler {
	return &ReportsHandler{BaseHandler: base, service: service}
}

// TrialBalance handles GET /reports/trial-balance.
func (h *ReportsHandler) TrialBalance(c *gin.Context) {
	ctx := c.Request.Context()

	from, ok := h.ParseDateQuery(c, "from", zeroTime)
	if !ok {
		return
	}
	to, ok := h.ParseDateQuery(c, "to", zeroTime)
	if !ok {
		return
	}

	report, err := h.service.GetTrialBalance(ctx, reports.TrialBalanceFilter{
		From:        from,
		To:          to,
		ExcludeZero: c.Query("excludeZero") == "true",
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// BalanceSheet handles GET /reports/balance-sheet.
func (h *ReportsHandler) BalanceSheet(c *gin.Context) {
	ctx := c.Request.Context()

	asOf, ok := h.ParseDateQuery(c, "asOf", zeroTime)
	if !ok {
		return
	}

	report, err := h.service.GetBalanceSheet(ctx, asOf)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// ProfitLoss handles GET /reports/profit-loss.
func (h *ReportsHandler) ProfitLoss(c *gin.Context) {
	ctx := c.Request.Context()

	from, ok := h.ParseDateQuery(c, "from", zeroTime)
	if !ok {
		return
	}
	to, ok := h.ParseDateQuery(c, "to", zeroTime)
	if !ok {
		return
	}

	report, err := h.service.GetProfitLoss(ctx, from, to)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// CashFlow handles GET /reports/cash-flow.
func (h *ReportsHandler) CashFlow(c *gin.Context) {
	ctx := c.Request.Context()

	from, ok := h.ParseDateQuery(c, "from", zeroTime)
	if !ok {
		return
	}
	to, ok := h.ParseDateQuery(c, "to", zeroTime)
	if !ok {
		return
	}

	report, err := h.service.GetCashFlow(ctx, from, to)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}
