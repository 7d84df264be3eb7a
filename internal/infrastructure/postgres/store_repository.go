package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stockflow-api/internal/domain/entity"
	"github.com/jhoicas/stockflow-api/internal/domain/repository"
)

var _ repository.StoreRepository = (*StoreRepo)(nil)

// StoreRepo lectura de tiendas y su membresía sobre PostgreSQL.
type StoreRepo struct {
	q Querier
}

// NewStoreRepository construye el adaptador.
func NewStoreRepository(q Querier) *StoreRepo {
	return &StoreRepo{q: q}
}

// GetWithMembers obtiene la tienda con sus miembros en orden de alta.
func (r *StoreRepo) GetWithMembers(ctx context.Context, storeID string) (*entity.Store, error) {
	var s entity.Store
	err := r.q.QueryRow(ctx, `SELECT id, name, owner_id FROM stores WHERE id = $1`, storeID).
		Scan(&s.ID, &s.Name, &s.OwnerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get store: %w", err)
	}

	rows, err := r.q.Query(ctx, `
		SELECT user_id, role FROM store_members
		WHERE store_id = $1
		ORDER BY created_at ASC, user_id ASC`, storeID)
	if err != nil {
		return nil, fmt.Errorf("list store members: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var m entity.StoreMember
		if err := rows.Scan(&m.UserID, &m.Role); err != nil {
			return nil, fmt.Errorf("scan store member: %w", err)
		}
		s.Members = append(s.Members, m)
	}
	return &s, rows.Err()
}
