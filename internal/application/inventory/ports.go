package inventory

import (
	"context"

	"github.com/jhoicas/stockflow-api/internal/application/events"
	"github.com/jhoicas/stockflow-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad del ledger: movimiento, replay y fila de balance se confirman juntos.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.MovementRepository,
		balanceRepo repository.StockBalanceRepository,
	) error) error
}

// EventPublisher publica eventos post-commit. No debe bloquear la escritura.
type EventPublisher interface {
	Publish(ctx context.Context, ev events.Event) error
}

// StockCache caché de lectura del stock actual por producto+tienda.
// Las escrituras del ledger nunca la leen. Cada valor lleva la versión de la fila de balance que lo produjo:
// Set solo reemplaza un valor de versión menor, y con version 0 (lectura que plegó el ledger) solo rellena
// una clave ausente. Así una lectura lenta no pisa el valor que el ledger escribió tras el commit.
type StockCache interface {
	Get(ctx context.Context, productID, storeID string) (qty int, ok bool, err error)
	Set(ctx context.Context, productID, storeID string, version int64, qty int) error
	Invalidate(ctx context.Context, productID, storeID string) error
}
