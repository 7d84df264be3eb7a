package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/stockflow-api/internal/domain"
	"github.com/jhoicas/stockflow-api/internal/domain/entity"
	"github.com/jhoicas/stockflow-api/internal/domain/repository"
)

var _ repository.StockBalanceRepository = (*StockBalanceRepo)(nil)

// StockBalanceRepo balances cacheados en memoria. El bloqueo lo aporta Store.Run.
type StockBalanceRepo struct {
	s *Store
}

func (r *StockBalanceRepo) Get(_ context.Context, productID, storeID string) (*entity.StockBalance, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	b, ok := r.s.balances[balanceKey{productID, storeID}]
	if !ok {
		return &entity.StockBalance{ProductID: productID, StoreID: storeID}, nil
	}
	return &b, nil
}

func (r *StockBalanceRepo) GetForUpdate(_ context.Context, productID, storeID string) (*entity.StockBalance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := balanceKey{productID, storeID}
	b, ok := r.s.balances[key]
	if !ok {
		b = entity.StockBalance{ProductID: productID, StoreID: storeID, UpdatedAt: time.Now()}
		r.s.balances[key] = b
	}
	return &b, nil
}

func (r *StockBalanceRepo) Save(_ context.Context, b *entity.StockBalance) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := balanceKey{b.ProductID, b.StoreID}
	cur, ok := r.s.balances[key]
	if !ok || cur.Version != b.Version {
		return domain.ErrConflict
	}
	b.Version++
	b.UpdatedAt = time.Now()
	r.s.balances[key] = *b
	return nil
}

var _ repository.StockLevelRepository = (*StockLevelRepo)(nil)

// StockLevelRepo cruza productos activos con sus balances.
type StockLevelRepo struct {
	s *Store
}

func (r *StockLevelRepo) ListByStore(_ context.Context, storeID string) ([]repository.StockLevel, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []repository.StockLevel
	for _, p := range r.s.products {
		if p.StoreID != storeID || !p.IsActive() {
			continue
		}
		out = append(out, repository.StockLevel{
			ProductID:       p.ID,
			ProductName:     p.Name,
			Quantity:        r.s.balances[balanceKey{p.ID, storeID}].Quantity,
			StockMin:        p.StockMin,
			StockMax:        p.StockMax,
			AlertPercentage: p.AlertPercentage,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductName < out[j].ProductName })
	return out, nil
}
