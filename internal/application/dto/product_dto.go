package dto

import "time"

// UpdateThresholdsRequest body para PUT /api/stores/:storeId/products/:productId/thresholds.
// StockMax 0 significa "sin máximo".
type UpdateThresholdsRequest struct {
	StockMin        int `json:"stock_min" validate:"min=0"`
	StockMax        int `json:"stock_max" validate:"min=0"`
	AlertPercentage int `json:"alert_percentage" validate:"min=0,max=100"`
}

// ProductResponse salida de los campos de stock de un producto.
type ProductResponse struct {
	ID              string    `json:"id"`
	StoreID         string    `json:"store_id"`
	Name            string    `json:"name"`
	StockMin        int       `json:"stock_min"`
	StockMax        int       `json:"stock_max"`
	AlertPercentage int       `json:"alert_percentage"`
	AlertThreshold  int       `json:"alert_threshold"`
	Status          string    `json:"status"`
	UpdatedAt       time.Time `json:"updated_at"`
}
