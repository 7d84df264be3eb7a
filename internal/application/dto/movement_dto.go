package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateMovementRequest body para POST /api/stores/:storeId/movements.
type CreateMovementRequest struct {
	ProductID  string           `json:"product_id" validate:"required"`
	Type       string           `json:"type" validate:"required,oneof=ENTRADA SAIDA PERDA"`
	Quantity   int              `json:"quantity" validate:"min=1"`
	SupplierID string           `json:"supplier_id,omitempty"`
	Batch      string           `json:"batch,omitempty"`
	Expiration string           `json:"expiration_date,omitempty"` // YYYY-MM-DD o RFC3339
	Price      *decimal.Decimal `json:"price,omitempty"`
	Note       string           `json:"note,omitempty"`
}

// BulkMovementRequest body para POST /api/stores/:storeId/movements/bulk.
type BulkMovementRequest struct {
	Movements []CreateMovementRequest `json:"movements"`
}

// UpdateMovementRequest body para PATCH; solo se aplican los campos presentes.
type UpdateMovementRequest struct {
	Type       *string          `json:"type,omitempty"`
	Quantity   *int             `json:"quantity,omitempty"`
	SupplierID *string          `json:"supplier_id,omitempty"`
	Batch      *string          `json:"batch,omitempty"`
	Expiration *string          `json:"expiration_date,omitempty"`
	Price      *decimal.Decimal `json:"price,omitempty"`
	Note       *string          `json:"note,omitempty"`
}

// VerifyMovementRequest body para POST .../movements/:id/verify.
type VerifyMovementRequest struct {
	Verified bool   `json:"verified"`
	Note     string `json:"note,omitempty"`
}

// CancelMovementRequest body para POST .../movements/:id/cancel.
type CancelMovementRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// MovementResponse salida de un movimiento con sus proyecciones.
type MovementResponse struct {
	ID                 string           `json:"id"`
	StoreID            string           `json:"store_id"`
	StoreName          string           `json:"store_name,omitempty"`
	ProductID          string           `json:"product_id"`
	ProductName        string           `json:"product_name,omitempty"`
	Type               string           `json:"type"`
	Quantity           int              `json:"quantity"`
	SupplierID         string           `json:"supplier_id,omitempty"`
	SupplierName       string           `json:"supplier_name,omitempty"`
	Batch              string           `json:"batch,omitempty"`
	ExpirationDate     *time.Time       `json:"expiration_date,omitempty"`
	Price              *decimal.Decimal `json:"price,omitempty"`
	Note               string           `json:"note,omitempty"`
	UserID             string           `json:"user_id,omitempty"`
	UserName           string           `json:"user_name,omitempty"`
	BalanceAfter       int              `json:"balance_after"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
	Verified           bool             `json:"verified"`
	VerifiedAt         *time.Time       `json:"verified_at,omitempty"`
	VerifiedBy         string           `json:"verified_by,omitempty"`
	VerificationNote   string           `json:"verification_note,omitempty"`
	Cancelled          bool             `json:"cancelled"`
	CancelledAt        *time.Time       `json:"cancelled_at,omitempty"`
	CancelledBy        string           `json:"cancelled_by,omitempty"`
	CancellationReason string           `json:"cancellation_reason,omitempty"`
}

// MovementListResponse lista paginada de movimientos.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// BulkItemResponse resultado de un ítem del alta masiva.
type BulkItemResponse struct {
	Index    int               `json:"index"`
	Success  bool              `json:"success"`
	Movement *MovementResponse `json:"movement,omitempty"`
	Error    *ErrorResponse    `json:"error,omitempty"`
}

// BulkMovementResponse resumen del alta masiva.
type BulkMovementResponse struct {
	Success int                `json:"success"`
	Failed  int                `json:"failed"`
	Results []BulkItemResponse `json:"results"`
}
