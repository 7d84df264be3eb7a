package repository

import (
	"context"

	"github.com/jhoicas/stockflow-api/internal/domain/entity"
)

// StockBalanceRepository define el puerto para la fila de balance cacheado por producto+tienda.
// Usado dentro de transacciones para serializar escrituras concurrentes del mismo par.
type StockBalanceRepository interface {
	// Get devuelve el balance cacheado (Quantity 0, Version 0 si aún no existe).
	Get(ctx context.Context, productID, storeID string) (*entity.StockBalance, error)
	// GetForUpdate crea la fila si no existe y la bloquea hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, productID, storeID string) (*entity.StockBalance, error)
	// Save guarda Quantity si Version coincide con la leída; incrementa Version.
	// Devuelve domain.ErrConflict si otra escritura ganó.
	Save(ctx context.Context, balance *entity.StockBalance) error
}
