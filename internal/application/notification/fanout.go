// Package notification crea las notificaciones de alertas de stock y expone la bandeja de cada usuario.
package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/stockflow-api/internal/domain"
	"github.com/jhoicas/stockflow-api/internal/domain/entity"
	"github.com/jhoicas/stockflow-api/internal/domain/repository"
	"github.com/jhoicas/stockflow-api/internal/domain/stock"
	"github.com/jhoicas/stockflow-api/pkg/logger"
)

// DefaultExpiry vigencia de una notificación de alerta.
const DefaultExpiry = 7 * 24 * time.Hour

// AlertContext alerta clasificada junto con el producto y la transición que la produjo.
type AlertContext struct {
	Alert         stock.Alert
	Product       entity.Product
	StoreID       string
	PreviousStock int
	CurrentStock  int
}

// Style prioridad y tipo de notificación para cada categoría de alerta.
type Style struct {
	Priority string
	Type     string
}

var styles = map[stock.Alert]Style{
	stock.AlertCriticalStock:  {Priority: entity.PriorityUrgent, Type: entity.NotificationTypeError},
	stock.AlertLowStock:       {Priority: entity.PriorityHigh, Type: entity.NotificationTypeWarning},
	stock.AlertOverstock:      {Priority: entity.PriorityMedium, Type: entity.NotificationTypeWarning},
	stock.AlertStockRecovered: {Priority: entity.PriorityLow, Type: entity.NotificationTypeStockAlert},
}

// StyleFor devuelve la prioridad y el tipo de la alerta; ok es false para AlertNone.
func StyleFor(a stock.Alert) (Style, bool) {
	s, ok := styles[a]
	return s, ok
}

// FanOut crea una notificación independiente por destinatario (dueño primero, luego miembros).
// No es transaccional: el fallo de un destinatario no impide crear las demás.
type FanOut struct {
	stores        repository.StoreRepository
	notifications repository.NotificationRepository
	expiry        time.Duration
	log           *logger.Logger
	now           func() time.Time
}

// NewFanOut construye el fan-out. expiry <= 0 usa DefaultExpiry.
func NewFanOut(stores repository.StoreRepository, notifications repository.NotificationRepository, expiry time.Duration, log *logger.Logger) *FanOut {
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	return &FanOut{
		stores:        stores,
		notifications: notifications,
		expiry:        expiry,
		log:           log.Named("notification_fanout"),
		now:           time.Now,
	}
}

type alertData struct {
	AlertType     stock.Alert `json:"alert_type"`
	ProductID     string      `json:"product_id"`
	ProductName   string      `json:"product_name"`
	StoreID       string      `json:"store_id"`
	CurrentStock  int         `json:"current_stock"`
	PreviousStock int         `json:"previous_stock"`
	StockMin      int         `json:"stock_min"`
	StockMax      int         `json:"stock_max"`
	Threshold     int         `json:"threshold"`
}

// Notify crea las notificaciones de la alerta. Devuelve cuántas se crearon y los errores por destinatario unidos.
func (f *FanOut) Notify(ctx context.Context, ac AlertContext) (int, error) {
	style, ok := StyleFor(ac.Alert)
	if !ok {
		return 0, nil
	}
	store, err := f.stores.GetWithMembers(ctx, ac.StoreID)
	if err != nil {
		return 0, fmt.Errorf("obtener tienda %s: %w", ac.StoreID, err)
	}
	if store == nil {
		return 0, fmt.Errorf("tienda %s: %w", ac.StoreID, domain.ErrNotFound)
	}

	threshold := stock.Threshold(ac.Product.StockMin, ac.Product.AlertPercentage)
	data, err := json.Marshal(alertData{
		AlertType:     ac.Alert,
		ProductID:     ac.Product.ID,
		ProductName:   ac.Product.Name,
		StoreID:       ac.StoreID,
		CurrentStock:  ac.CurrentStock,
		PreviousStock: ac.PreviousStock,
		StockMin:      ac.Product.StockMin,
		StockMax:      ac.Product.StockMax,
		Threshold:     threshold,
	})
	if err != nil {
		return 0, fmt.Errorf("serializar datos de alerta: %w", err)
	}
	title, message := describe(ac, threshold)
	now := f.now()
	expiresAt := now.Add(f.expiry)

	var (
		created int
		errs    []error
	)
	for _, userID := range store.Recipients() {
		n := &entity.Notification{
			UserID:    userID,
			Title:     title,
			Message:   message,
			Type:      style.Type,
			Priority:  style.Priority,
			Data:      data,
			ActionURL: "/products/" + ac.Product.ID,
			ExpiresAt: &expiresAt,
			CreatedAt: now,
		}
		if err := f.notifications.Create(ctx, n); err != nil {
			f.log.Error().Err(err).
				Str("user_id", userID).
				Str("product_id", ac.Product.ID).
				Str("store_id", ac.StoreID).
				Str("alert", string(ac.Alert)).
				Msg("no se pudo crear la notificación")
			errs = append(errs, fmt.Errorf("destinatario %s: %w", userID, err))
			continue
		}
		created++
	}
	return created, errors.Join(errs...)
}

func describe(ac AlertContext, threshold int) (title, message string) {
	name := ac.Product.Name
	switch ac.Alert {
	case stock.AlertCriticalStock:
		return "Stock crítico: " + name,
			fmt.Sprintf("El producto %s se quedó sin stock.", name)
	case stock.AlertLowStock:
		return "Stock bajo: " + name,
			fmt.Sprintf("El producto %s tiene %d unidades, en o por debajo del umbral de %d.", name, ac.CurrentStock, threshold)
	case stock.AlertOverstock:
		return "Sobrestock: " + name,
			fmt.Sprintf("El producto %s tiene %d unidades y supera el máximo de %d.", name, ac.CurrentStock, ac.Product.StockMax)
	case stock.AlertStockRecovered:
		return "Stock recuperado: " + name,
			fmt.Sprintf("El producto %s volvió a %d unidades, por encima del umbral de %d.", name, ac.CurrentStock, threshold)
	}
	return name, ""
}
