package http

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stockflow-api/internal/application/dto"
	"github.com/jhoicas/stockflow-api/internal/application/inventory"
	"github.com/jhoicas/stockflow-api/internal/domain/entity"
	"github.com/jhoicas/stockflow-api/internal/domain/repository"
)

// MovementHandler maneja las peticiones HTTP del ledger de movimientos (protegido, por tienda).
type MovementHandler struct {
	uc *inventory.LedgerUseCase
}

// NewMovementHandler construye el handler.
func NewMovementHandler(uc *inventory.LedgerUseCase) *MovementHandler {
	return &MovementHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar movimiento de stock
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        storeId  path  string                     true  "ID de la tienda"
// @Param        body     body  dto.CreateMovementRequest  true  "product_id, type (ENTRADA|SAIDA|PERDA), quantity > 0"
// @Success      201  {object}  dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/stores/{storeId}/movements [post]
func (h *MovementHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), createInput(GetStoreID(c), GetUserID(c), in))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResponse(out))
}

// CreateBulk godoc
// @Summary      Registrar movimientos en lote
// @Description  Cada ítem se procesa en su propia transacción; el fallo de uno no revierte los demás. Máximo 100 ítems por lote.
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        storeId  path  string                   true  "ID de la tienda"
// @Param        body     body  dto.BulkMovementRequest  true  "movements"
// @Success      200  {object}  dto.BulkMovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stores/{storeId}/movements/bulk [post]
func (h *MovementHandler) CreateBulk(c *fiber.Ctx) error {
	var in dto.BulkMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	storeID, userID := GetStoreID(c), GetUserID(c)
	items := make([]inventory.CreateMovementInput, len(in.Movements))
	for i, m := range in.Movements {
		items[i] = createInput(storeID, userID, m)
	}

	res, err := h.uc.CreateBulk(c.UserContext(), storeID, items, userID)
	if err != nil {
		return writeError(c, err)
	}
	out := dto.BulkMovementResponse{Success: res.Success, Failed: res.Failed, Results: make([]dto.BulkItemResponse, len(res.Results))}
	for i, r := range res.Results {
		item := dto.BulkItemResponse{Index: r.Index, Success: r.Success}
		if r.Movement != nil {
			mr := toMovementResponse(r.Movement)
			item.Movement = &mr
		}
		if r.Err != nil {
			_, body := errorStatus(r.Err)
			item.Error = &body
		}
		out.Results[i] = item
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar movimientos de la tienda
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        storeId      path   string  true   "ID de la tienda"
// @Param        product_id   query  string  false  "Filtrar por producto"
// @Param        supplier_id  query  string  false  "Filtrar por proveedor"
// @Param        type         query  string  false  "ENTRADA | SAIDA | PERDA"
// @Param        verified     query  bool    false  "Filtrar por verificación"
// @Param        cancelled    query  bool    false  "Filtrar por cancelación"
// @Param        from         query  string  false  "Desde (YYYY-MM-DD o RFC3339)"
// @Param        to           query  string  false  "Hasta (YYYY-MM-DD o RFC3339)"
// @Param        limit        query  int     false  "Límite (máx 100)"
// @Param        offset       query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.MovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stores/{storeId}/movements [get]
func (h *MovementHandler) List(c *fiber.Ctx) error {
	filter, err := movementFilter(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	items, total, err := h.uc.List(c.UserContext(), filter)
	if err != nil {
		return writeError(c, err)
	}
	page := dto.PageRequest{Limit: filter.Limit, Offset: filter.Offset}
	page.DefaultPage()
	out := dto.MovementListResponse{
		Items: make([]dto.MovementResponse, 0, len(items)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}
	for _, m := range items {
		out.Items = append(out.Items, toMovementResponse(m))
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener movimiento
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        storeId  path  string  true  "ID de la tienda"
// @Param        id       path  string  true  "ID del movimiento"
// @Success      200  {object}  dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stores/{storeId}/movements/{id} [get]
func (h *MovementHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), GetStoreID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toMovementResponse(out))
}

// Update godoc
// @Summary      Editar movimiento
// @Description  Recalcula los balances posteriores. Se rechaza si el stock actual quedaría negativo.
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        storeId  path  string                     true  "ID de la tienda"
// @Param        id       path  string                     true  "ID del movimiento"
// @Param        body     body  dto.UpdateMovementRequest  true  "Campos a modificar"
// @Success      200  {object}  dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/stores/{storeId}/movements/{id} [patch]
func (h *MovementHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), inventory.UpdateMovementInput{
		StoreID:    GetStoreID(c),
		ID:         c.Params("id"),
		Type:       in.Type,
		Quantity:   in.Quantity,
		SupplierID: in.SupplierID,
		Batch:      in.Batch,
		Expiration: in.Expiration,
		Price:      in.Price,
		Note:       in.Note,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toMovementResponse(out))
}

// Delete godoc
// @Summary      Eliminar movimiento
// @Tags         movements
// @Security     Bearer
// @Param        storeId  path  string  true  "ID de la tienda"
// @Param        id       path  string  true  "ID del movimiento"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/stores/{storeId}/movements/{id} [delete]
func (h *MovementHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), GetStoreID(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Verify godoc
// @Summary      Verificar movimiento (auditoría)
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        storeId  path  string                     true  "ID de la tienda"
// @Param        id       path  string                     true  "ID del movimiento"
// @Param        body     body  dto.VerifyMovementRequest  true  "verified, note"
// @Success      200  {object}  dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stores/{storeId}/movements/{id}/verify [post]
func (h *MovementHandler) Verify(c *fiber.Ctx) error {
	var in dto.VerifyMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Verify(c.UserContext(), inventory.VerifyMovementInput{
		StoreID:  GetStoreID(c),
		ID:       c.Params("id"),
		Verified: in.Verified,
		Note:     in.Note,
		UserID:   GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toMovementResponse(out))
}

// Cancel godoc
// @Summary      Cancelar movimiento
// @Description  El movimiento deja de contar en el stock; se conserva para auditoría.
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        storeId  path  string                     true  "ID de la tienda"
// @Param        id       path  string                     true  "ID del movimiento"
// @Param        body     body  dto.CancelMovementRequest  true  "reason"
// @Success      200  {object}  dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/stores/{storeId}/movements/{id}/cancel [post]
func (h *MovementHandler) Cancel(c *fiber.Ctx) error {
	var in dto.CancelMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Cancel(c.UserContext(), inventory.CancelMovementInput{
		StoreID: GetStoreID(c),
		ID:      c.Params("id"),
		Reason:  in.Reason,
		UserID:  GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toMovementResponse(out))
}

func createInput(storeID, userID string, in dto.CreateMovementRequest) inventory.CreateMovementInput {
	return inventory.CreateMovementInput{
		StoreID:    storeID,
		ProductID:  in.ProductID,
		Type:       in.Type,
		Quantity:   in.Quantity,
		SupplierID: in.SupplierID,
		Batch:      in.Batch,
		Expiration: in.Expiration,
		Price:      in.Price,
		Note:       in.Note,
		UserID:     userID,
	}
}

func movementFilter(c *fiber.Ctx) (repository.MovementFilter, error) {
	f := repository.MovementFilter{
		StoreID:    GetStoreID(c),
		ProductID:  c.Query("product_id"),
		SupplierID: c.Query("supplier_id"),
		Type:       entity.MovementType(strings.ToUpper(c.Query("type"))),
		Limit:      c.QueryInt("limit", 0),
		Offset:     c.QueryInt("offset", 0),
	}
	var err error
	if f.Verified, err = boolQuery(c, "verified"); err != nil {
		return f, err
	}
	if f.Cancelled, err = boolQuery(c, "cancelled"); err != nil {
		return f, err
	}
	if f.From, err = timeQuery(c, "from", false); err != nil {
		return f, err
	}
	if f.To, err = timeQuery(c, "to", true); err != nil {
		return f, err
	}
	return f, nil
}

func boolQuery(c *fiber.Ctx, key string) (*bool, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, key+" debe ser true o false")
	}
	return &v, nil
}

// timeQuery acepta RFC3339 o YYYY-MM-DD. Con endOfDay una fecha sin hora cubre el día completo.
func timeQuery(c *fiber.Ctx, key string, endOfDay bool) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	d, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, key+" debe ser YYYY-MM-DD o RFC3339")
	}
	if endOfDay {
		d = d.Add(24*time.Hour - time.Nanosecond)
	}
	return &d, nil
}

func toMovementResponse(d *entity.MovementDetails) dto.MovementResponse {
	m := d.Movement
	return dto.MovementResponse{
		ID:                 m.ID,
		StoreID:            m.StoreID,
		StoreName:          d.StoreName,
		ProductID:          m.ProductID,
		ProductName:        d.ProductName,
		Type:               string(m.Type),
		Quantity:           m.Quantity,
		SupplierID:         m.SupplierID,
		SupplierName:       d.SupplierName,
		Batch:              m.Batch,
		ExpirationDate:     m.ExpirationDate,
		Price:              m.Price,
		Note:               m.Note,
		UserID:             m.UserID,
		UserName:           d.UserName,
		BalanceAfter:       m.BalanceAfter,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
		Verified:           m.Verified,
		VerifiedAt:         m.VerifiedAt,
		VerifiedBy:         m.VerifiedBy,
		VerificationNote:   m.VerificationNote,
		Cancelled:          m.Cancelled,
		CancelledAt:        m.CancelledAt,
		CancelledBy:        m.CancelledBy,
		CancellationReason: m.CancellationReason,
	}
}
