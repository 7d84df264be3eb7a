package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stockflow-api/internal/domain"
	"github.com/jhoicas/stockflow-api/internal/domain/entity"
	"github.com/jhoicas/stockflow-api/internal/domain/repository"
)

var _ repository.StockBalanceRepository = (*StockBalanceRepo)(nil)

// StockBalanceRepo implementación de StockBalanceRepository sobre PostgreSQL (usable con pool o tx).
type StockBalanceRepo struct {
	q Querier
}

// NewStockBalanceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockBalanceRepository(q Querier) *StockBalanceRepo {
	return &StockBalanceRepo{q: q}
}

// Get obtiene el balance cacheado de un producto en una tienda.
func (r *StockBalanceRepo) Get(ctx context.Context, productID, storeID string) (*entity.StockBalance, error) {
	query := `
		SELECT product_id, store_id, quantity, version, updated_at
		FROM stock_balances WHERE product_id = $1 AND store_id = $2`
	b, err := scanBalance(r.q.QueryRow(ctx, query, productID, storeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
			return &entity.StockBalance{ProductID: productID, StoreID: storeID}, nil
		}
		return nil, fmt.Errorf("get stock balance: %w", err)
	}
	return b, nil
}

// GetForUpdate crea la fila si falta y la bloquea (SELECT FOR UPDATE) hasta el fin de la transacción.
// La fila existe siempre antes del bloqueo, así dos escritores del primer movimiento también se serializan.
func (r *StockBalanceRepo) GetForUpdate(ctx context.Context, productID, storeID string) (*entity.StockBalance, error) {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_balances (product_id, store_id, quantity, version, updated_at)
		VALUES ($1, $2, 0, 0, now())
		ON CONFLICT (product_id, store_id) DO NOTHING`, productID, storeID)
	if err != nil {
		return nil, fmt.Errorf("ensure stock balance: %w", err)
	}
	query := `
		SELECT product_id, store_id, quantity, version, updated_at
		FROM stock_balances WHERE product_id = $1 AND store_id = $2
		FOR UPDATE`
	b, err := scanBalance(r.q.QueryRow(ctx, query, productID, storeID))
	if err != nil {
		return nil, fmt.Errorf("get stock balance for update: %w", err)
	}
	return b, nil
}

// Save guarda la cantidad con control optimista de versión.
func (r *StockBalanceRepo) Save(ctx context.Context, b *entity.StockBalance) error {
	var updated entity.StockBalance
	err := r.q.QueryRow(ctx, `
		UPDATE stock_balances
		SET quantity = $3, version = version + 1, updated_at = now()
		WHERE product_id = $1 AND store_id = $2 AND version = $4
		RETURNING version, updated_at`,
		b.ProductID, b.StoreID, b.Quantity, b.Version,
	).Scan(&updated.Version, &updated.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrConflict
		}
		return fmt.Errorf("save stock balance: %w", err)
	}
	b.Version = updated.Version
	b.UpdatedAt = updated.UpdatedAt
	return nil
}

func scanBalance(row pgx.Row) (*entity.StockBalance, error) {
	var b entity.StockBalance
	if err := row.Scan(&b.ProductID, &b.StoreID, &b.Quantity, &b.Version, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}
