package memory

import (
	"context"

	"github.com/jhoicas/stockflow-api/internal/domain"
	"github.com/jhoicas/stockflow-api/internal/domain/entity"
	"github.com/jhoicas/stockflow-api/internal/domain/repository"
)

var (
	_ repository.ProductRepository  = (*ProductRepo)(nil)
	_ repository.SupplierRepository = (*SupplierRepo)(nil)
	_ repository.StoreRepository    = (*StoreRepo)(nil)
)

// ProductRepo productos en memoria.
type ProductRepo struct {
	s *Store
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *ProductRepo) UpdateThresholds(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.products[p.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cur.StockMin = p.StockMin
	cur.StockMax = p.StockMax
	cur.AlertPercentage = p.AlertPercentage
	cur.UpdatedAt = p.UpdatedAt
	r.s.products[p.ID] = cur
	return nil
}

// SupplierRepo proveedores en memoria.
type SupplierRepo struct {
	s *Store
}

func (r *SupplierRepo) GetByID(_ context.Context, id string) (*entity.Supplier, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sp, ok := r.s.suppliers[id]
	if !ok {
		return nil, nil
	}
	return &sp, nil
}

// StoreRepo tiendas en memoria.
type StoreRepo struct {
	s *Store
}

func (r *StoreRepo) GetWithMembers(_ context.Context, storeID string) (*entity.Store, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	st, ok := r.s.stores[storeID]
	if !ok {
		return nil, nil
	}
	st.Members = append([]entity.StoreMember(nil), st.Members...)
	return &st, nil
}
