package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/stockflow-api/internal/domain/repository"
	"github.com/jhoicas/stockflow-api/internal/domain/stock"
)

// BalanceCalculator deriva el stock desde el ledger (lectura pura, O(n) en movimientos del par).
type BalanceCalculator struct {
	movRepo repository.MovementRepository
}

// NewBalanceCalculator construye el calculador sobre el repositorio de movimientos.
func NewBalanceCalculator(movRepo repository.MovementRepository) *BalanceCalculator {
	return &BalanceCalculator{movRepo: movRepo}
}

// GetCurrentStock stock actual del producto en la tienda. Los movimientos cancelados no cuentan.
func (c *BalanceCalculator) GetCurrentStock(ctx context.Context, productID, storeID string) (int, error) {
	movs, err := c.movRepo.ListByProductAndStore(ctx, productID, storeID)
	if err != nil {
		return 0, err
	}
	return stock.Fold(movs), nil
}

// GetStockAt stock histórico en el instante at.
func (c *BalanceCalculator) GetStockAt(ctx context.Context, productID, storeID string, at time.Time) (int, error) {
	movs, err := c.movRepo.ListByProductAndStore(ctx, productID, storeID)
	if err != nil {
		return 0, err
	}
	return stock.BalanceAt(movs, at), nil
}
