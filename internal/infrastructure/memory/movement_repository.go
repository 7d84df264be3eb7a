package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/jhoicas/stockflow-api/internal/domain"
	"github.com/jhoicas/stockflow-api/internal/domain/entity"
	"github.com/jhoicas/stockflow-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo ledger en memoria.
type MovementRepo struct {
	s *Store
}

func (r *MovementRepo) Create(_ context.Context, m *entity.Movement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.movements[m.ID]; ok {
		return domain.ErrConflict
	}
	r.s.seq++
	m.Seq = r.s.seq
	r.s.movements[m.ID] = movementRecord{m: *m, seq: r.s.seq}
	return nil
}

func (r *MovementRepo) GetByID(_ context.Context, id string) (*entity.Movement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rec, ok := r.s.movements[id]
	if !ok {
		return nil, nil
	}
	m := rec.m
	return &m, nil
}

func (r *MovementRepo) GetDetails(_ context.Context, id string) (*entity.MovementDetails, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rec, ok := r.s.movements[id]
	if !ok {
		return nil, nil
	}
	return r.s.details(rec.m), nil
}

func (r *MovementRepo) Update(_ context.Context, m *entity.Movement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.movements[m.ID]
	if !ok {
		return domain.ErrNotFound
	}
	// store, producto, usuario, fecha de creación y posición en el ledger no cambian
	updated := *m
	updated.Seq = rec.m.Seq
	updated.StoreID = rec.m.StoreID
	updated.ProductID = rec.m.ProductID
	updated.UserID = rec.m.UserID
	updated.CreatedAt = rec.m.CreatedAt
	rec.m = updated
	r.s.movements[m.ID] = rec
	return nil
}

func (r *MovementRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.movements[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.movements, id)
	return nil
}

func (r *MovementRepo) ListByProductAndStore(_ context.Context, productID, storeID string) ([]*entity.Movement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	recs := r.s.sorted(func(m *entity.Movement) bool {
		return m.ProductID == productID && m.StoreID == storeID
	})
	out := make([]*entity.Movement, 0, len(recs))
	for _, rec := range recs {
		m := rec.m
		out = append(out, &m)
	}
	return out, nil
}

func (r *MovementRepo) UpdateBalances(_ context.Context, updates []entity.BalanceUpdate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range updates {
		rec, ok := r.s.movements[u.MovementID]
		if !ok {
			return domain.ErrNotFound
		}
		rec.m.BalanceAfter = u.BalanceAfter
		r.s.movements[u.MovementID] = rec
	}
	return nil
}

func (r *MovementRepo) List(_ context.Context, f repository.MovementFilter) ([]*entity.MovementDetails, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	recs := r.s.sorted(func(m *entity.Movement) bool { return matches(m, f) })

	total := len(recs)
	// más recientes primero, igual que el adaptador PostgreSQL
	for i, j := 0, len(recs)-1; i < j; i, j = i+1, j-1 {
		recs[i], recs[j] = recs[j], recs[i]
	}
	if f.Offset >= len(recs) {
		return nil, total, nil
	}
	recs = recs[f.Offset:]
	if f.Limit > 0 && f.Limit < len(recs) {
		recs = recs[:f.Limit]
	}
	out := make([]*entity.MovementDetails, 0, len(recs))
	for _, rec := range recs {
		out = append(out, r.s.details(rec.m))
	}
	return out, total, nil
}

func (r *MovementRepo) ListProductIDsByStore(_ context.Context, storeID string) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	seen := make(map[string]struct{})
	var ids []string
	for _, rec := range r.s.movements {
		if rec.m.StoreID != storeID {
			continue
		}
		if _, ok := seen[rec.m.ProductID]; ok {
			continue
		}
		seen[rec.m.ProductID] = struct{}{}
		ids = append(ids, rec.m.ProductID)
	}
	sort.Strings(ids)
	return ids, nil
}

func matches(m *entity.Movement, f repository.MovementFilter) bool {
	switch {
	case m.StoreID != f.StoreID:
		return false
	case f.ProductID != "" && m.ProductID != f.ProductID:
		return false
	case f.SupplierID != "" && m.SupplierID != f.SupplierID:
		return false
	case f.Type != "" && m.Type != f.Type:
		return false
	case f.Verified != nil && m.Verified != *f.Verified:
		return false
	case f.Cancelled != nil && m.Cancelled != *f.Cancelled:
		return false
	case f.From != nil && m.CreatedAt.Before(*f.From):
		return false
	case f.To != nil && m.CreatedAt.After(*f.To):
		return false
	}
	return true
}

// sorted devuelve los registros que cumplen keep en orden de inserción. Requiere mu tomado.
func (s *Store) sorted(keep func(*entity.Movement) bool) []movementRecord {
	var recs []movementRecord
	for _, rec := range s.movements {
		if keep(&rec.m) {
			recs = append(recs, rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].seq < recs[j].seq })
	return recs
}

// details arma la proyección con nombres. Requiere mu tomado.
func (s *Store) details(m entity.Movement) *entity.MovementDetails {
	d := &entity.MovementDetails{Movement: m}
	if p, ok := s.products[m.ProductID]; ok {
		d.ProductName = p.Name
	}
	if st, ok := s.stores[m.StoreID]; ok {
		d.StoreName = st.Name
	}
	if sp, ok := s.suppliers[m.SupplierID]; ok {
		d.SupplierName = sp.Name
	}
	d.UserName = s.users[m.UserID]
	return d
}
