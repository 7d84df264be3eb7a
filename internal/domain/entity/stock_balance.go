package entity

import "time"

// StockBalance fila de balance cacheado por producto y tienda.
// Se bloquea (SELECT FOR UPDATE) en cada escritura del ledger y se guarda con control de versión.
type StockBalance struct {
	ProductID string
	StoreID   string
	Quantity  int
	Version   int64
	UpdatedAt time.Time
}
