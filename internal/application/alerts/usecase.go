// Package alerts clasifica cada cambio de stock confirmado y dispara notificaciones y workflows.
package alerts

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/jhoicas/stockflow-api/internal/application/events"
	"github.com/jhoicas/stockflow-api/internal/application/notification"
	"github.com/jhoicas/stockflow-api/internal/domain"
	"github.com/jhoicas/stockflow-api/internal/domain/entity"
	"github.com/jhoicas/stockflow-api/internal/domain/repository"
	"github.com/jhoicas/stockflow-api/internal/domain/stock"
	"github.com/jhoicas/stockflow-api/pkg/logger"
)

// Notifier crea las notificaciones de una alerta.
type Notifier interface {
	Notify(ctx context.Context, ac notification.AlertContext) (int, error)
}

// WorkflowDispatcher reenvía la alerta al motor de reglas. Nunca falla hacia el llamador.
type WorkflowDispatcher interface {
	DispatchAlert(ctx context.Context, alert stock.Alert, p entity.Product, currentStock int)
}

// StockAlertUseCase evaluador de alertas de stock.
type StockAlertUseCase struct {
	productRepo repository.ProductRepository
	notifier    Notifier
	workflows   WorkflowDispatcher
	log         *logger.Logger
	fired       metric.Int64Counter
}

// NewStockAlertUseCase construye el evaluador.
func NewStockAlertUseCase(
	productRepo repository.ProductRepository,
	notifier Notifier,
	workflows WorkflowDispatcher,
	log *logger.Logger,
) *StockAlertUseCase {
	fired, err := otel.Meter("github.com/jhoicas/stockflow-api/alerts").Int64Counter("alerts.fired",
		metric.WithDescription("Alertas de stock clasificadas"))
	if err != nil {
		fired = noop.Int64Counter{}
	}
	return &StockAlertUseCase{
		productRepo: productRepo,
		notifier:    notifier,
		workflows:   workflows,
		log:         log.Named("stock_alerts"),
		fired:       fired,
	}
}

// Evaluate clasifica la transición previous -> current del producto y, si hay alerta,
// notifica a los usuarios de la tienda y dispara el workflow. Devuelve la alerta clasificada.
func (uc *StockAlertUseCase) Evaluate(ctx context.Context, storeID, productID string, previousStock, currentStock int) (stock.Alert, error) {
	p, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return stock.AlertNone, fmt.Errorf("obtener producto %s: %w", productID, err)
	}
	if p == nil {
		return stock.AlertNone, fmt.Errorf("producto %s: %w", productID, domain.ErrNotFound)
	}

	alert := stock.Classify(currentStock, previousStock, p.StockMin, p.StockMax, p.AlertPercentage)
	if alert == stock.AlertNone {
		return alert, nil
	}
	uc.fired.Add(ctx, 1, metric.WithAttributes(attribute.String("alert", string(alert))))

	_, notifyErr := uc.notifier.Notify(ctx, notification.AlertContext{
		Alert:         alert,
		Product:       *p,
		StoreID:       storeID,
		PreviousStock: previousStock,
		CurrentStock:  currentStock,
	})
	if notifyErr != nil {
		uc.log.Error().Err(notifyErr).
			Str("product_id", productID).
			Str("store_id", storeID).
			Str("alert", string(alert)).
			Msg("fan-out de notificaciones incompleto")
	}
	uc.workflows.DispatchAlert(ctx, alert, *p, currentStock)
	return alert, nil
}

// HandleStockChanged suscriptor de STOCK_CHANGED. Usa los valores capturados bajo el bloqueo del ledger.
func (uc *StockAlertUseCase) HandleStockChanged(ctx context.Context, ev events.Event) error {
	alert, err := uc.Evaluate(ctx, ev.StoreID, ev.ProductID, ev.PreviousStock, ev.CurrentStock)
	if err != nil {
		return err
	}
	if alert != stock.AlertNone {
		uc.log.Debug().
			Str("product_id", ev.ProductID).
			Str("store_id", ev.StoreID).
			Str("alert", string(alert)).
			Int("previous_stock", ev.PreviousStock).
			Int("current_stock", ev.CurrentStock).
			Msg("alerta de stock")
	}
	return nil
}
