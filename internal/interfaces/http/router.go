package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stockflow-api/internal/application/inventory"
	"github.com/jhoicas/stockflow-api/internal/application/notification"
	"github.com/jhoicas/stockflow-api/internal/application/usecase"
	"github.com/jhoicas/stockflow-api/internal/domain/repository"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Ledger        *inventory.LedgerUseCase
	StockQuery    *inventory.StockQueryUseCase
	Replenishment *inventory.ReplenishmentUseCase
	ProductUC     *usecase.ProductUseCase
	Notifications *notification.UseCase
	Stores        repository.StoreRepository
	JWTSecret     string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Bandeja de notificaciones del usuario
	notifications := protected.Group("/notifications")
	notificationHandler := NewNotificationHandler(deps.Notifications)
	notifications.Get("/", notificationHandler.List)
	notifications.Patch("/:id/read", notificationHandler.MarkRead)

	// Todo lo demás es por tienda: dueño o miembro de :storeId
	store := protected.Group("/stores/:storeId", RequireStoreAccess(deps.Stores))

	movements := store.Group("/movements")
	movementHandler := NewMovementHandler(deps.Ledger)
	movements.Post("/", movementHandler.Create)
	movements.Get("/", movementHandler.List)
	movements.Post("/bulk", movementHandler.CreateBulk)
	movements.Get("/:id", movementHandler.GetByID)
	movements.Patch("/:id", movementHandler.Update)
	movements.Delete("/:id", movementHandler.Delete)
	movements.Post("/:id/verify", movementHandler.Verify)
	movements.Post("/:id/cancel", movementHandler.Cancel)

	store.Get("/replenishment", NewReplenishmentHandler(deps.Replenishment).List)

	products := store.Group("/products/:productId")
	productHandler := NewProductHandler(deps.ProductUC)
	stockHandler := NewStockHandler(deps.StockQuery, deps.Ledger)
	products.Get("/", productHandler.GetByID)
	products.Put("/thresholds", productHandler.UpdateThresholds)
	products.Get("/stock", stockHandler.GetStock)
	products.Post("/stock/recalculate", RequireRole(RoleAdmin), stockHandler.Recalculate)
}
