package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"finbooks/internal/core/apperror"
	"finbooks/internal/core/id"
	"finbooks/internal/domain/catalogs/item"
	"finbooks/internal/domain/registers/stock"
	"finbooks/internal/infrastructure/http/v1/dto"
)

// ItemHandler serves item CRUD plus stock movement history.
type ItemHandler struct {
	*CatalogHandler[*item.Item, dto.CreateItemRequest, dto.UpdateItemRequest]
	stock *stock.Service
}

// NewItemHandler creates the item handler.
func NewItemHandler(base *BaseHandler, service *item.Service, stockSvc *stock.Service) *ItemHandler {
	config := CatalogHandlerConfig[
		*item.Item,
		dto.CreateItemRequest,
		dto.UpdateItemRequest,
	]{
		Service:    service.CatalogService,
		EntityName: "item",
		MapCreateDTO: func(req dto.CreateItemRequest) *item.Item {
			return req.ToEntity()
		},
		MapUpdateDTO: func(req dto.UpdateItemRequest, existing *item.Item) *item.Item {
			req.ApplyTo(existing)
			return existing
		},
	}

	return &ItemHandler{
		CatalogHandler: NewCatalogHandler(base, config),
		stock:          stockSvc,
	}
}

// StockHistory handles GET /items/:id/stock-history - movement intents
// emitted for the item, newest first.
func (h *ItemHandler) StockHistory(c *gin.Context) {
	ctx := c.Request.Context()

	itemID, err := id.Parse(c.Param("id"))
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

	intents, err := h.stock.History(ctx, itemID, from, to, limit, offset)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"itemId": itemID, "movements": intents})
}
