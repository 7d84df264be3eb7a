package inventory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stockflow-api/internal/application/inventory"
	"github.com/jhoicas/stockflow-api/internal/domain/entity"
	"github.com/jhoicas/stockflow-api/internal/domain/repository"
	"github.com/jhoicas/stockflow-api/internal/infrastructure/cache"
	"github.com/jhoicas/stockflow-api/pkg/logger"
)

// pausedMovements retiene la primera lectura del ledger, ya hecha, hasta que se cierre release.
type pausedMovements struct {
	repository.MovementRepository
	once    sync.Once
	folded  chan struct{}
	release chan struct{}
}

func (p *pausedMovements) ListByProductAndStore(ctx context.Context, productID, storeID string) ([]*entity.Movement, error) {
	movs, err := p.MovementRepository.ListByProductAndStore(ctx, productID, storeID)
	p.once.Do(func() {
		close(p.folded)
		<-p.release
	})
	return movs, err
}

func TestStockQuery_LecturaLentaNoPisaLaCache(t *testing.T) {
	uc, s, pub := newLedger(t)
	ctx := context.Background()
	create(t, uc, entity.MovementTypeEntrada, 10)

	stockCache := cache.NewMemoryStockCache(time.Minute)
	uc.WithStockCache(stockCache)
	movs := &pausedMovements{MovementRepository: s.Movements(), folded: make(chan struct{}), release: make(chan struct{})}
	query := inventory.NewStockQueryUseCase(inventory.NewBalanceCalculator(movs), s.Products(), stockCache, logger.Nop())

	type result struct {
		v   *inventory.StockView
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := query.GetStock(ctx, storeID, productID, nil)
		done <- result{v, err}
	}()

	<-movs.folded
	create(t, uc, entity.MovementTypeSaida, 5)
	changes := pub.stockChanges()
	require.NoError(t, query.HandleStockChanged(ctx, changes[len(changes)-1]))
	close(movs.release)

	slow := <-done
	require.NoError(t, slow.err)
	assert.Equal(t, 10, slow.v.Quantity, "la lectura empezó antes del commit")

	v, err := query.GetStock(ctx, storeID, productID, nil)
	require.NoError(t, err)
	assert.True(t, v.Cached)
	assert.Equal(t, 5, v.Quantity)
	assert.Equal(t, currentStock(t, s), v.Quantity)
}

func TestStockQuery_LeeSuPropiaEscritura(t *testing.T) {
	uc, s, _ := newLedger(t)
	ctx := context.Background()
	stockCache := cache.NewMemoryStockCache(time.Minute)
	uc.WithStockCache(stockCache)
	query := inventory.NewStockQueryUseCase(inventory.NewBalanceCalculator(s.Movements()), s.Products(), stockCache, logger.Nop())

	create(t, uc, entity.MovementTypeEntrada, 30)
	v, err := query.GetStock(ctx, storeID, productID, nil)
	require.NoError(t, err)
	assert.Equal(t, 30, v.Quantity)

	// sin esperar al bus: el ledger ya escribió el nuevo balance
	create(t, uc, entity.MovementTypeSaida, 12)
	v, err = query.GetStock(ctx, storeID, productID, nil)
	require.NoError(t, err)
	assert.True(t, v.Cached)
	assert.Equal(t, 18, v.Quantity)
}

func TestStockQuery_EventosFueraDeOrden(t *testing.T) {
	uc, s, pub := newLedger(t)
	ctx := context.Background()
	stockCache := cache.NewMemoryStockCache(time.Minute)
	query := inventory.NewStockQueryUseCase(inventory.NewBalanceCalculator(s.Movements()), s.Products(), stockCache, logger.Nop())

	create(t, uc, entity.MovementTypeEntrada, 10)
	create(t, uc, entity.MovementTypeSaida, 4)
	changes := pub.stockChanges()
	require.Len(t, changes, 2)
	assert.Less(t, changes[0].Version, changes[1].Version)

	require.NoError(t, query.HandleStockChanged(ctx, changes[1]))
	require.NoError(t, query.HandleStockChanged(ctx, changes[0]))

	v, err := query.GetStock(ctx, storeID, productID, nil)
	require.NoError(t, err)
	assert.True(t, v.Cached)
	assert.Equal(t, 6, v.Quantity)
}
