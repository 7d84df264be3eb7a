package entity

// Supplier proveedor referenciado opcionalmente por los movimientos de entrada.
type Supplier struct {
	ID      string
	StoreID string
	Name    string
	Status  string // active, inactive
}

// IsActive indica si el proveedor está activo.
func (s *Supplier) IsActive() bool {
	return s.Status == StatusActive
}
