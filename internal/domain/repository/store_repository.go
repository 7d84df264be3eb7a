package repository

import (
	"context"

	"github.com/jhoicas/stockflow-api/internal/domain/entity"
)

// StoreRepository define el puerto de lectura de tiendas con su membresía.
type StoreRepository interface {
	GetWithMembers(ctx context.Context, storeID string) (*entity.Store, error)
}
