package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/stockflow-api/internal/domain/entity"
	"github.com/jhoicas/stockflow-api/internal/domain/repository"
)

var _ repository.StockLevelRepository = (*StockLevelRepo)(nil)

// StockLevelRepo implementación de StockLevelRepository sobre PostgreSQL.
type StockLevelRepo struct {
	q Querier
}

// NewStockLevelRepository construye el adaptador. Acepta pool o tx (Querier).
func NewStockLevelRepository(q Querier) *StockLevelRepo {
	return &StockLevelRepo{q: q}
}

func (r *StockLevelRepo) ListByStore(ctx context.Context, storeID string) ([]repository.StockLevel, error) {
	query := `
		SELECT p.id, p.name, COALESCE(b.quantity, 0), p.stock_min, p.stock_max, p.alert_percentage
		FROM products p
		LEFT JOIN stock_balances b ON b.product_id = p.id AND b.store_id = p.store_id
		WHERE p.store_id = $1 AND p.status = $2
		ORDER BY p.name`
	rows, err := r.q.Query(ctx, query, storeID, entity.StatusActive)
	if err != nil {
		if isInvalidID(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list stock levels by store: %w", err)
	}
	defer rows.Close()
	var list []repository.StockLevel
	for rows.Next() {
		var l repository.StockLevel
		if err := rows.Scan(&l.ProductID, &l.ProductName, &l.Quantity, &l.StockMin, &l.StockMax, &l.AlertPercentage); err != nil {
			return nil, fmt.Errorf("scan stock level: %w", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}
