package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stockflow-api/internal/application/inventory"
	"github.com/jhoicas/stockflow-api/internal/domain/entity"
	"github.com/jhoicas/stockflow-api/internal/domain/stock"
	"github.com/jhoicas/stockflow-api/internal/infrastructure/memory"
	"github.com/jhoicas/stockflow-api/pkg/logger"
)

func TestReplenishment_ListaPorPrioridad(t *testing.T) {
	s := memory.NewStore()
	s.AddStore(entity.Store{ID: storeID, OwnerID: "owner"})
	for _, p := range []entity.Product{
		{ID: "arroz", Name: "Arroz", StockMin: 20, StockMax: 100, AlertPercentage: 50},
		{ID: "frijol", Name: "Frijol", StockMin: 10, AlertPercentage: 100},
		{ID: "sal", Name: "Sal", StockMin: 10, StockMax: 50, AlertPercentage: 50},
		{ID: "azucar", Name: "Azúcar", StockMin: 10, StockMax: 40, AlertPercentage: 50},
	} {
		p.StoreID = storeID
		p.Status = entity.StatusActive
		s.AddProduct(p)
	}
	s.AddProduct(entity.Product{ID: "viejo", StoreID: storeID, Name: "Viejo", Status: entity.StatusInactive, StockMin: 10})

	ledger := inventory.NewLedgerUseCase(s, s.Products(), s.Suppliers(), s.Movements(), nil, logger.Nop())
	ctx := context.Background()
	for id, qty := range map[string]int{"arroz": 8, "frijol": 10, "sal": 30} {
		_, err := ledger.Create(ctx, inventory.CreateMovementInput{StoreID: storeID, ProductID: id, Type: "ENTRADA", Quantity: qty})
		require.NoError(t, err)
	}

	list, err := inventory.NewReplenishmentUseCase(s.StockLevels()).GenerateReplenishmentList(ctx, storeID)
	require.NoError(t, err)
	require.Len(t, list, 3, "sal está sobre el umbral y el inactivo no cuenta")

	assert.Equal(t, "azucar", list[0].ProductID, "agotado va primero")
	assert.Equal(t, stock.AlertCriticalStock, list[0].Level)
	assert.Equal(t, 40, list[0].SuggestedOrderQty)

	assert.Equal(t, "arroz", list[1].ProductID)
	assert.Equal(t, 92, list[1].SuggestedOrderQty)
	assert.Equal(t, 10, list[1].Threshold)

	assert.Equal(t, "frijol", list[2].ProductID)
	assert.Equal(t, 15, list[2].IdealStock, "sin máximo: 1.5 x stock_min")
	assert.Equal(t, 5, list[2].SuggestedOrderQty)
	assert.Equal(t, 3, list[2].Priority)
}
