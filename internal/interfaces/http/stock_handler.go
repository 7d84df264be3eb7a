package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stockflow-api/internal/application/dto"
	"github.com/jhoicas/stockflow-api/internal/application/inventory"
)

// StockHandler consulta y recálculo del stock de un producto.
type StockHandler struct {
	query  *inventory.StockQueryUseCase
	ledger *inventory.LedgerUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(query *inventory.StockQueryUseCase, ledger *inventory.LedgerUseCase) *StockHandler {
	return &StockHandler{query: query, ledger: ledger}
}

// GetStock godoc
// @Summary      Stock de un producto
// @Description  Sin "at" devuelve el stock actual; con "at" el stock histórico a esa fecha calculado desde el ledger.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        storeId    path   string  true   "ID de la tienda"
// @Param        productId  path   string  true   "ID del producto"
// @Param        at         query  string  false  "Fecha (YYYY-MM-DD = cierre del día, o RFC3339)"
// @Success      200  {object}  dto.StockResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stores/{storeId}/products/{productId}/stock [get]
func (h *StockHandler) GetStock(c *fiber.Ctx) error {
	at, err := timeQuery(c, "at", true)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	v, err := h.query.GetStock(c.UserContext(), GetStoreID(c), c.Params("productId"), at)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.StockResponse{
		ProductID:   v.ProductID,
		StoreID:     v.StoreID,
		ProductName: v.ProductName,
		Quantity:    v.Quantity,
		StockMin:    v.StockMin,
		StockMax:    v.StockMax,
		Threshold:   v.Threshold,
		Level:       string(v.Level),
		At:          v.At,
		Cached:      v.Cached,
	})
}

// Recalculate godoc
// @Summary      Recalcular stock desde el ledger
// @Description  Repara balance_after de todos los movimientos y la fila de balance. Idempotente.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        storeId    path  string  true  "ID de la tienda"
// @Param        productId  path  string  true  "ID del producto"
// @Success      200  {object}  dto.RecalculateResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stores/{storeId}/products/{productId}/stock/recalculate [post]
func (h *StockHandler) Recalculate(c *fiber.Ctx) error {
	storeID, productID := GetStoreID(c), c.Params("productId")
	qty, err := h.ledger.RecalculateStock(c.UserContext(), productID, storeID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.RecalculateResponse{ProductID: productID, StoreID: storeID, Quantity: qty})
}
