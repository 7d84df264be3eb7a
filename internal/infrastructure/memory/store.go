// Package memory implementa los repositorios y el TxRunner en memoria (STORAGE_DRIVER=memory y tests).
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/stockflow-api/internal/application/inventory"
	"github.com/jhoicas/stockflow-api/internal/domain/entity"
	"github.com/jhoicas/stockflow-api/internal/domain/repository"
)

var _ inventory.TxRunner = (*Store)(nil)

type balanceKey struct {
	productID string
	storeID   string
}

type movementRecord struct {
	m   entity.Movement
	seq int64
}

// Store estado compartido por todos los repositorios en memoria.
// txMu serializa las transacciones (equivalente al bloqueo de fila de PostgreSQL); mu protege los mapas.
type Store struct {
	txMu sync.Mutex

	mu            sync.RWMutex
	seq           int64
	movements     map[string]movementRecord
	balances      map[balanceKey]entity.StockBalance
	products      map[string]entity.Product
	suppliers     map[string]entity.Supplier
	stores        map[string]entity.Store
	users         map[string]string
	notifications []*entity.Notification
}

// NewStore crea un almacenamiento vacío.
func NewStore() *Store {
	return &Store{
		movements: make(map[string]movementRecord),
		balances:  make(map[balanceKey]entity.StockBalance),
		products:  make(map[string]entity.Product),
		suppliers: make(map[string]entity.Supplier),
		stores:    make(map[string]entity.Store),
		users:     make(map[string]string),
	}
}

// Run ejecuta fn de forma exclusiva. Si fn devuelve error se restauran movimientos y balances.
func (s *Store) Run(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	balanceRepo repository.StockBalanceRepository,
) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	movs, bals := s.snapshot()
	if err := fn(s.Movements(), s.Balances()); err != nil {
		s.restore(movs, bals)
		return err
	}
	return nil
}

func (s *Store) snapshot() (map[string]movementRecord, map[balanceKey]entity.StockBalance) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	movs := make(map[string]movementRecord, len(s.movements))
	for k, v := range s.movements {
		movs[k] = v
	}
	bals := make(map[balanceKey]entity.StockBalance, len(s.balances))
	for k, v := range s.balances {
		bals[k] = v
	}
	return movs, bals
}

func (s *Store) restore(movs map[string]movementRecord, bals map[balanceKey]entity.StockBalance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.movements = movs
	s.balances = bals
}

// Movements repositorio de movimientos sobre este almacenamiento.
func (s *Store) Movements() *MovementRepo { return &MovementRepo{s: s} }

// Balances repositorio de balances sobre este almacenamiento.
func (s *Store) Balances() *StockBalanceRepo { return &StockBalanceRepo{s: s} }

// Products repositorio de productos sobre este almacenamiento.
func (s *Store) Products() *ProductRepo { return &ProductRepo{s: s} }

// Suppliers repositorio de proveedores sobre este almacenamiento.
func (s *Store) Suppliers() *SupplierRepo { return &SupplierRepo{s: s} }

// Stores repositorio de tiendas sobre este almacenamiento.
func (s *Store) Stores() *StoreRepo { return &StoreRepo{s: s} }

// Notifications repositorio de notificaciones sobre este almacenamiento.
func (s *Store) Notifications() *NotificationRepo { return &NotificationRepo{s: s} }

// StockLevels repositorio de lecturas agregadas de stock.
func (s *Store) StockLevels() *StockLevelRepo { return &StockLevelRepo{s: s} }

// AddProduct registra (o reemplaza) un producto.
func (s *Store) AddProduct(p entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
}

// AddSupplier registra (o reemplaza) un proveedor.
func (s *Store) AddSupplier(sp entity.Supplier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suppliers[sp.ID] = sp
}

// AddStore registra (o reemplaza) una tienda con sus miembros.
func (s *Store) AddStore(st entity.Store) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st.Members = append([]entity.StoreMember(nil), st.Members...)
	s.stores[st.ID] = st
}

// AddUser registra el nombre de un usuario para las proyecciones de movimientos.
func (s *Store) AddUser(id, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[id] = name
}
