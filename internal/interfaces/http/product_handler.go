package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stockflow-api/internal/application/dto"
	"github.com/jhoicas/stockflow-api/internal/application/usecase"
)

// ProductHandler maneja los umbrales de stock de un producto (protegido).
type ProductHandler struct {
	uc *usecase.ProductUseCase
}

// NewProductHandler construye el handler.
func NewProductHandler(uc *usecase.ProductUseCase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// GetByID godoc
// @Summary      Obtener producto por ID
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        storeId    path  string  true  "ID de la tienda"
// @Param        productId  path  string  true  "ID del producto"
// @Success      200  {object}  dto.ProductResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stores/{storeId}/products/{productId} [get]
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), GetStoreID(c), c.Params("productId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// UpdateThresholds godoc
// @Summary      Actualizar umbrales de stock
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        storeId    path  string                       true  "ID de la tienda"
// @Param        productId  path  string                       true  "ID del producto"
// @Param        body       body  dto.UpdateThresholdsRequest  true  "stock_min, stock_max (0 = sin máximo), alert_percentage"
// @Success      200  {object}  dto.ProductResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stores/{storeId}/products/{productId}/thresholds [put]
func (h *ProductHandler) UpdateThresholds(c *fiber.Ctx) error {
	var in dto.UpdateThresholdsRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.UpdateThresholds(c.UserContext(), GetStoreID(c), c.Params("productId"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
