package repository

import "context"

// StockLevel stock actual de un producto activo junto con sus umbrales.
type StockLevel struct {
	ProductID       string
	ProductName     string
	Quantity        int
	StockMin        int
	StockMax        int
	AlertPercentage int
}

// StockLevelRepository lecturas agregadas de stock por tienda.
type StockLevelRepository interface {
	// ListByStore devuelve todos los productos activos de la tienda con su balance (0 si nunca se movieron).
	ListByStore(ctx context.Context, storeID string) ([]StockLevel, error)
}
