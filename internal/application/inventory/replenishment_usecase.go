package inventory

import (
	"context"
	"math"
	"sort"

	"github.com/jhoicas/stockflow-api/internal/domain/repository"
	"github.com/jhoicas/stockflow-api/internal/domain/stock"
)

// ReplenishmentSuggestion producto en o bajo su umbral de alerta con la cantidad sugerida de pedido.
type ReplenishmentSuggestion struct {
	ProductID         string
	ProductName       string
	CurrentStock      int
	StockMin          int
	StockMax          int
	Threshold         int
	Level             stock.Alert // CRITICAL_STOCK o LOW_STOCK
	IdealStock        int
	SuggestedOrderQty int
	Priority          int // 1 = más urgente
}

// ReplenishmentUseCase genera la lista de reposición de una tienda a partir de los balances actuales.
type ReplenishmentUseCase struct {
	levels repository.StockLevelRepository
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(levels repository.StockLevelRepository) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{levels: levels}
}

// GenerateReplenishmentList devuelve los productos con stock en o bajo el umbral de alerta.
// El stock ideal es stock_max si está configurado; si no, 1.5 veces stock_min.
// Orden: primero los agotados, luego mayor déficit respecto al ideal, luego nombre.
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context, storeID string) ([]ReplenishmentSuggestion, error) {
	levels, err := uc.levels.ListByStore(ctx, storeID)
	if err != nil {
		return nil, err
	}

	suggestions := make([]ReplenishmentSuggestion, 0, len(levels))
	for _, l := range levels {
		threshold := stock.Threshold(l.StockMin, l.AlertPercentage)
		if l.Quantity > threshold {
			continue
		}
		ideal := l.StockMax
		if ideal <= 0 {
			ideal = int(math.Ceil(float64(l.StockMin) * 1.5))
		}
		suggested := ideal - l.Quantity
		if suggested < 0 {
			suggested = 0
		}
		lvl := stock.AlertLowStock
		if l.Quantity <= 0 {
			lvl = stock.AlertCriticalStock
		}
		suggestions = append(suggestions, ReplenishmentSuggestion{
			ProductID:         l.ProductID,
			ProductName:       l.ProductName,
			CurrentStock:      l.Quantity,
			StockMin:          l.StockMin,
			StockMax:          l.StockMax,
			Threshold:         threshold,
			Level:             lvl,
			IdealStock:        ideal,
			SuggestedOrderQty: suggested,
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		if (a.Level == stock.AlertCriticalStock) != (b.Level == stock.AlertCriticalStock) {
			return a.Level == stock.AlertCriticalStock
		}
		if a.SuggestedOrderQty != b.SuggestedOrderQty {
			return a.SuggestedOrderQty > b.SuggestedOrderQty
		}
		return a.ProductName < b.ProductName
	})

	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}
