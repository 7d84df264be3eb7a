package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stockflow-api/internal/domain/entity"
)

// MovementFilter filtros para el listado de movimientos de una tienda.
type MovementFilter struct {
	StoreID    string
	ProductID  string
	SupplierID string
	Type       entity.MovementType
	Verified   *bool
	Cancelled  *bool
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

// MovementRepository define el puerto de persistencia del ledger de movimientos (DIP).
// GetByID y GetDetails devuelven nil, nil si el movimiento no existe.
type MovementRepository interface {
	Create(ctx context.Context, movement *entity.Movement) error
	GetByID(ctx context.Context, id string) (*entity.Movement, error)
	GetDetails(ctx context.Context, id string) (*entity.MovementDetails, error)
	Update(ctx context.Context, movement *entity.Movement) error
	Delete(ctx context.Context, id string) error

	// ListByProductAndStore devuelve todos los movimientos del par (incluidos cancelados)
	// en orden de creación ascendente. Es la entrada del fold y del replay.
	ListByProductAndStore(ctx context.Context, productID, storeID string) ([]*entity.Movement, error)

	// UpdateBalances persiste en lote los BalanceAfter recalculados.
	UpdateBalances(ctx context.Context, updates []entity.BalanceUpdate) error

	// List lista movimientos con proyecciones, filtros y total para paginación.
	List(ctx context.Context, filter MovementFilter) ([]*entity.MovementDetails, int, error)

	// ListProductIDsByStore devuelve los productos con al menos un movimiento en la tienda.
	ListProductIDsByStore(ctx context.Context, storeID string) ([]string, error)
}
