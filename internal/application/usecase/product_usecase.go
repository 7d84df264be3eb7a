package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/stockflow-api/internal/application/dto"
	"github.com/jhoicas/stockflow-api/internal/domain"
	"github.com/jhoicas/stockflow-api/internal/domain/entity"
	"github.com/jhoicas/stockflow-api/internal/domain/repository"
	"github.com/jhoicas/stockflow-api/internal/domain/stock"
)

// ProductUseCase lectura de productos y mantenimiento de umbrales de stock. El stock se maneja vía movimientos.
type ProductUseCase struct {
	repo repository.ProductRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo}
}

// GetByID obtiene un producto de la tienda.
func (uc *ProductUseCase) GetByID(ctx context.Context, storeID, productID string) (*dto.ProductResponse, error) {
	p, err := uc.get(ctx, storeID, productID)
	if err != nil {
		return nil, err
	}
	return toProductResponse(p), nil
}

// UpdateThresholds actualiza stock mínimo, máximo y porcentaje de alerta.
// Reglas: stock_min >= 0, stock_max = 0 (sin máximo) o >= stock_min, 0 <= alert_percentage <= 100.
func (uc *ProductUseCase) UpdateThresholds(ctx context.Context, storeID, productID string, in dto.UpdateThresholdsRequest) (*dto.ProductResponse, error) {
	if in.StockMin < 0 || in.StockMax < 0 {
		return nil, fmt.Errorf("umbrales negativos: %w", domain.ErrInvalidInput)
	}
	if in.StockMax != 0 && in.StockMax < in.StockMin {
		return nil, fmt.Errorf("stock_max menor que stock_min: %w", domain.ErrInvalidInput)
	}
	if in.AlertPercentage < 0 || in.AlertPercentage > 100 {
		return nil, fmt.Errorf("alert_percentage fuera de rango: %w", domain.ErrInvalidInput)
	}

	p, err := uc.get(ctx, storeID, productID)
	if err != nil {
		return nil, err
	}
	p.StockMin = in.StockMin
	p.StockMax = in.StockMax
	p.AlertPercentage = in.AlertPercentage
	p.UpdatedAt = time.Now()
	if err := uc.repo.UpdateThresholds(ctx, p); err != nil {
		return nil, err
	}
	return toProductResponse(p), nil
}

func (uc *ProductUseCase) get(ctx context.Context, storeID, productID string) (*entity.Product, error) {
	p, err := uc.repo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil || p.StoreID != storeID {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:              p.ID,
		StoreID:         p.StoreID,
		Name:            p.Name,
		StockMin:        p.StockMin,
		StockMax:        p.StockMax,
		AlertPercentage: p.AlertPercentage,
		AlertThreshold:  stock.Threshold(p.StockMin, p.AlertPercentage),
		Status:          p.Status,
		UpdatedAt:       p.UpdatedAt,
	}
}
