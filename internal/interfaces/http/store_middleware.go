package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stockflow-api/internal/application/dto"
	"github.com/jhoicas/stockflow-api/internal/domain/entity"
)

// LocalStore key de la tienda resuelta por RequireStoreAccess.
const LocalStore = "store"

// storeFinder contrato mínimo para verificar la membresía. Lo implementa repository.StoreRepository.
type storeFinder interface {
	GetWithMembers(ctx context.Context, storeID string) (*entity.Store, error)
}

// RequireStoreAccess verifica que el usuario del token sea dueño o miembro de :storeId.
// Debe usarse DESPUÉS de AuthMiddleware.
//
// Comportamiento:
//   - 404 NOT_FOUND → la tienda no existe.
//   - 403 FORBIDDEN → el usuario no pertenece a la tienda.
//   - 503 Service Unavailable → fallo al consultar la membresía.
func RequireStoreAccess(stores storeFinder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := GetUserID(c)
		if userID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "user_id no encontrado en el token"})
		}
		storeID := c.Params("storeId")
		store, err := stores.GetWithMembers(c.UserContext(), storeID)
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Code:    "STORE_CHECK_FAILED",
				Message: "no se pudo verificar el acceso a la tienda, intente más tarde",
			})
		}
		if store == nil {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "tienda no encontrada"})
		}
		if !store.HasAccess(userID) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "sin acceso a esta tienda"})
		}
		c.Locals(LocalStore, store)
		return c.Next()
	}
}

// GetStoreID devuelve el id de la tienda ya verificada.
func GetStoreID(c *fiber.Ctx) string {
	if s, ok := c.Locals(LocalStore).(*entity.Store); ok {
		return s.ID
	}
	return c.Params("storeId")
}
