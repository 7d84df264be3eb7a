package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/stockflow-api/internal/application/events"
	"github.com/jhoicas/stockflow-api/internal/domain"
	"github.com/jhoicas/stockflow-api/internal/domain/repository"
	"github.com/jhoicas/stockflow-api/internal/domain/stock"
	"github.com/jhoicas/stockflow-api/pkg/logger"
)

// StockView stock de un producto en una tienda junto con sus umbrales.
type StockView struct {
	ProductID   string
	StoreID     string
	ProductName string
	Quantity    int
	StockMin    int
	StockMax    int
	Threshold   int
	Level       stock.Alert // nivel actual (sin transición): CRITICAL, LOW, OVERSTOCK o vacío
	At          *time.Time
	Cached      bool
}

// StockQueryUseCase consultas de stock para la API. El stock actual pasa por la caché si está configurada;
// el histórico siempre se calcula desde el ledger.
type StockQueryUseCase struct {
	calc        *BalanceCalculator
	productRepo repository.ProductRepository
	cache       StockCache
	log         *logger.Logger
}

// NewStockQueryUseCase construye el caso de uso. cache puede ser nil.
func NewStockQueryUseCase(calc *BalanceCalculator, productRepo repository.ProductRepository, cache StockCache, log *logger.Logger) *StockQueryUseCase {
	return &StockQueryUseCase{calc: calc, productRepo: productRepo, cache: cache, log: log.Named("stock_query")}
}

// GetStock devuelve el stock actual (at nil) o el histórico en at.
func (uc *StockQueryUseCase) GetStock(ctx context.Context, storeID, productID string, at *time.Time) (*StockView, error) {
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil || product.StoreID != storeID {
		return nil, domain.ErrNotFound
	}

	view := &StockView{
		ProductID:   productID,
		StoreID:     storeID,
		ProductName: product.Name,
		StockMin:    product.StockMin,
		StockMax:    product.StockMax,
		Threshold:   stock.Threshold(product.StockMin, product.AlertPercentage),
		At:          at,
	}

	switch {
	case at != nil:
		view.Quantity, err = uc.calc.GetStockAt(ctx, productID, storeID, *at)
	default:
		view.Quantity, view.Cached, err = uc.current(ctx, productID, storeID)
	}
	if err != nil {
		return nil, err
	}
	view.Level = level(view.Quantity, view.Threshold, view.StockMax)
	return view, nil
}

func (uc *StockQueryUseCase) current(ctx context.Context, productID, storeID string) (int, bool, error) {
	if uc.cache != nil {
		qty, ok, err := uc.cache.Get(ctx, productID, storeID)
		if err != nil {
			uc.log.Warn().Err(err).Str("product_id", productID).Str("store_id", storeID).Msg("caché de stock no disponible")
		} else if ok {
			return qty, true, nil
		}
	}
	qty, err := uc.calc.GetCurrentStock(ctx, productID, storeID)
	if err != nil {
		return 0, false, err
	}
	if uc.cache != nil {
		// versión 0: solo rellena si el ledger no escribió un valor mientras plegábamos
		if err := uc.cache.Set(ctx, productID, storeID, 0, qty); err != nil {
			uc.log.Warn().Err(err).Str("product_id", productID).Str("store_id", storeID).Msg("no se pudo cachear el stock")
		}
	}
	return qty, false, nil
}

// HandleStockChanged escribe en la caché el balance del evento. Se suscribe a STOCK_CHANGED en el bus;
// eventos fuera de orden no retroceden el valor porque Set compara versiones.
func (uc *StockQueryUseCase) HandleStockChanged(ctx context.Context, ev events.Event) error {
	if uc.cache == nil {
		return nil
	}
	if ev.Version == 0 {
		return uc.cache.Invalidate(ctx, ev.ProductID, ev.StoreID)
	}
	return uc.cache.Set(ctx, ev.ProductID, ev.StoreID, ev.Version, ev.CurrentStock)
}

// level clasifica el nivel puntual del stock, sin considerar la transición.
func level(qty, threshold, stockMax int) stock.Alert {
	switch {
	case qty <= 0:
		return stock.AlertCriticalStock
	case qty <= threshold:
		return stock.AlertLowStock
	case stockMax > 0 && qty > stockMax:
		return stock.AlertOverstock
	}
	return stock.AlertNone
}
