package dto

import "time"

// StockResponse stock de un producto en una tienda.
type StockResponse struct {
	ProductID   string     `json:"product_id"`
	StoreID     string     `json:"store_id"`
	ProductName string     `json:"product_name"`
	Quantity    int        `json:"quantity"`
	StockMin    int        `json:"stock_min"`
	StockMax    int        `json:"stock_max"`
	Threshold   int        `json:"alert_threshold"`
	Level       string     `json:"level,omitempty"` // CRITICAL_STOCK, LOW_STOCK, OVERSTOCK
	At          *time.Time `json:"at,omitempty"`
	Cached      bool       `json:"cached"`
}

// RecalculateResponse resultado de POST .../stock/recalculate.
type RecalculateResponse struct {
	ProductID string `json:"product_id"`
	StoreID   string `json:"store_id"`
	Quantity  int    `json:"quantity"`
}

// ReplenishmentSuggestionResponse producto a reponer.
type ReplenishmentSuggestionResponse struct {
	ProductID         string `json:"product_id"`
	ProductName       string `json:"product_name"`
	CurrentStock      int    `json:"current_stock"`
	StockMin          int    `json:"stock_min"`
	StockMax          int    `json:"stock_max"`
	Threshold         int    `json:"alert_threshold"`
	Level             string `json:"level"`
	IdealStock        int    `json:"ideal_stock"`
	SuggestedOrderQty int    `json:"suggested_order_qty"`
	Priority          int    `json:"priority"`
}

// ReplenishmentListResponse lista de reposición de la tienda.
type ReplenishmentListResponse struct {
	Total          int                               `json:"total"`
	Replenishments []ReplenishmentSuggestionResponse `json:"replenishments"`
}
