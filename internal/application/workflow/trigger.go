// Package workflow reenvía eventos del ledger al motor de reglas externo (email, webhook, SMS...).
// El envío es best-effort: ningún error del motor llega al llamador del ledger.
package workflow

import (
	"time"

	"github.com/jhoicas/stockflow-api/internal/domain/entity"
)

// Event nombre del disparador en el wire.
type Event string

const (
	EventMovementCreated Event = "MOVEMENT_CREATED"
	EventStockBelowMin   Event = "STOCK_BELOW_MIN"
	EventStockAboveMax   Event = "STOCK_ABOVE_MAX"
)

// Trigger carga enviada al motor de reglas.
type Trigger struct {
	Event        Event            `json:"event"`
	StoreID      string           `json:"store_id"`
	ProductID    string           `json:"product_id"`
	ProductName  string           `json:"product_name,omitempty"`
	CurrentStock *int             `json:"current_stock,omitempty"`
	StockMin     *int             `json:"stock_min,omitempty"`
	StockMax     *int             `json:"stock_max,omitempty"`
	Movement     *MovementPayload `json:"movement,omitempty"`
	OccurredAt   time.Time        `json:"occurred_at"`
}

// MovementPayload datos del movimiento creado.
type MovementPayload struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	Quantity     int    `json:"quantity"`
	BalanceAfter int    `json:"balance_after"`
	SupplierID   string `json:"supplier_id,omitempty"`
	UserID       string `json:"user_id,omitempty"`
}

// MovementTrigger arma el disparador de movimiento creado.
func MovementTrigger(m entity.Movement, at time.Time) Trigger {
	return Trigger{
		Event:     EventMovementCreated,
		StoreID:   m.StoreID,
		ProductID: m.ProductID,
		Movement: &MovementPayload{
			ID:           m.ID,
			Type:         string(m.Type),
			Quantity:     m.Quantity,
			BalanceAfter: m.BalanceAfter,
			SupplierID:   m.SupplierID,
			UserID:       m.UserID,
		},
		OccurredAt: at,
	}
}

// StockTrigger arma un disparador de umbral (bajo mínimo o sobre máximo).
func StockTrigger(ev Event, p entity.Product, currentStock int, at time.Time) Trigger {
	stockMin, stockMax := p.StockMin, p.StockMax
	return Trigger{
		Event:        ev,
		StoreID:      p.StoreID,
		ProductID:    p.ID,
		ProductName:  p.Name,
		CurrentStock: &currentStock,
		StockMin:     &stockMin,
		StockMax:     &stockMax,
		OccurredAt:   at,
	}
}
