package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType tipo de movimiento del ledger. Los valores viajan tal cual en la API y en la DB.
type MovementType string

// Tipos de movimiento de stock. La dirección la codifica el tipo, nunca el signo de la cantidad.
const (
	MovementTypeEntrada MovementType = "ENTRADA" // entrada de mercancía
	MovementTypeSaida   MovementType = "SAIDA"   // salida (venta, consumo)
	MovementTypePerda   MovementType = "PERDA"   // pérdida (merma, vencimiento, daño)
)

// Valid indica si el tipo pertenece al enum.
func (t MovementType) Valid() bool {
	switch t {
	case MovementTypeEntrada, MovementTypeSaida, MovementTypePerda:
		return true
	}
	return false
}

// IsOutflow indica si el movimiento resta stock (SAIDA o PERDA).
func (t MovementType) IsOutflow() bool {
	return t == MovementTypeSaida || t == MovementTypePerda
}

// Movement representa un evento del ledger de stock por producto y tienda.
// BalanceAfter es una proyección cacheada: la fuente de verdad es la secuencia ordenada de movimientos.
// Seq fija ese orden: lo asigna el repositorio al insertar, con el balance del par ya bloqueado.
type Movement struct {
	ID             string
	Seq            int64
	StoreID        string
	ProductID      string
	Type           MovementType
	Quantity       int // siempre > 0
	SupplierID     string
	Batch          string
	ExpirationDate *time.Time
	Price          *decimal.Decimal
	Note           string
	UserID         string
	BalanceAfter   int
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Verified         bool
	VerifiedAt       *time.Time
	VerifiedBy       string
	VerificationNote string

	Cancelled          bool
	CancelledAt        *time.Time
	CancelledBy        string
	CancellationReason string
}

// MovementDetails movimiento con las proyecciones de producto, tienda, proveedor y usuario.
type MovementDetails struct {
	Movement
	ProductName  string
	StoreName    string
	SupplierName string
	UserName     string
}

// BalanceUpdate nuevo valor de BalanceAfter para un movimiento (reparación por replay).
type BalanceUpdate struct {
	MovementID   string
	BalanceAfter int
}
