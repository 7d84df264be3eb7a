package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stockflow-api/internal/application/dto"
	"github.com/jhoicas/stockflow-api/internal/application/inventory"
)

// ReplenishmentHandler lista de reposición de la tienda.
type ReplenishmentHandler struct {
	uc *inventory.ReplenishmentUseCase
}

// NewReplenishmentHandler construye el handler.
func NewReplenishmentHandler(uc *inventory.ReplenishmentUseCase) *ReplenishmentHandler {
	return &ReplenishmentHandler{uc: uc}
}

// List godoc
// @Summary      Lista de reposición
// @Description  Productos activos con stock en o bajo el umbral de alerta, ordenados por prioridad.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        storeId  path  string  true  "ID de la tienda"
// @Success      200  {object}  dto.ReplenishmentListResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/stores/{storeId}/replenishment [get]
func (h *ReplenishmentHandler) List(c *fiber.Ctx) error {
	list, err := h.uc.GenerateReplenishmentList(c.UserContext(), GetStoreID(c))
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.ReplenishmentSuggestionResponse, 0, len(list))
	for _, s := range list {
		out = append(out, dto.ReplenishmentSuggestionResponse{
			ProductID:         s.ProductID,
			ProductName:       s.ProductName,
			CurrentStock:      s.CurrentStock,
			StockMin:          s.StockMin,
			StockMax:          s.StockMax,
			Threshold:         s.Threshold,
			Level:             string(s.Level),
			IdealStock:        s.IdealStock,
			SuggestedOrderQty: s.SuggestedOrderQty,
			Priority:          s.Priority,
		})
	}
	return c.JSON(dto.ReplenishmentListResponse{Total: len(out), Replenishments: out})
}
