package entity

import "time"

// Estados de producto y proveedor.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Product campos de producto relevantes para el ledger. Los umbrales de stock son por producto.
// StockMax <= 0 significa "sin máximo configurado".
type Product struct {
	ID              string
	StoreID         string
	Name            string
	StockMin        int
	StockMax        int
	AlertPercentage int // 0-100
	Status          string
	UpdatedAt       time.Time
}

// IsActive indica si el producto puede recibir movimientos.
func (p *Product) IsActive() bool {
	return p.Status == StatusActive
}
