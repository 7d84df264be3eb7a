// Package storage abre el backend de persistencia configurado (PostgreSQL o memoria).
package storage

import (
	"context"
	"fmt"

	"github.com/jhoicas/stockflow-api/internal/application/inventory"
	"github.com/jhoicas/stockflow-api/internal/domain/repository"
	"github.com/jhoicas/stockflow-api/internal/infrastructure/memory"
	"github.com/jhoicas/stockflow-api/internal/infrastructure/postgres"
	"github.com/jhoicas/stockflow-api/pkg/config"
	"github.com/jhoicas/stockflow-api/pkg/logger"
)

// Repositories repositorios atados al pool (lecturas) más el TxRunner para las escrituras del ledger.
type Repositories struct {
	TxRunner      inventory.TxRunner
	Movements     repository.MovementRepository
	Products      repository.ProductRepository
	Suppliers     repository.SupplierRepository
	Stores        repository.StoreRepository
	Notifications repository.NotificationRepository
	StockLevels   repository.StockLevelRepository

	// Memory solo está presente con STORAGE_DRIVER=memory (permite sembrar datos).
	Memory *memory.Store

	close func()
}

// Close libera el pool de conexiones si lo hay.
func (r *Repositories) Close() {
	if r.close != nil {
		r.close()
	}
}

// Open construye los repositorios según cfg.Storage.Driver. Con DB_AUTO_MIGRATE aplica las migraciones embebidas.
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Repositories, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		s := memory.NewStore()
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		return &Repositories{
			TxRunner:      s,
			Movements:     s.Movements(),
			Products:      s.Products(),
			Suppliers:     s.Suppliers(),
			Stores:        s.Stores(),
			Notifications: s.Notifications(),
			StockLevels:   s.StockLevels(),
			Memory:        s,
		}, nil
	case config.StorageDriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		if cfg.DB.AutoMigrate {
			applied, err := postgres.Migrate(ctx, pool)
			if err != nil {
				pool.Close()
				return nil, err
			}
			for _, name := range applied {
				log.Info().Str("migration", name).Msg("migración aplicada")
			}
		}
		return &Repositories{
			TxRunner:      postgres.NewTxRunner(pool),
			Movements:     postgres.NewMovementRepository(pool),
			Products:      postgres.NewProductRepository(pool),
			Suppliers:     postgres.NewSupplierRepository(pool),
			Stores:        postgres.NewStoreRepository(pool),
			Notifications: postgres.NewNotificationRepository(pool),
			StockLevels:   postgres.NewStockLevelRepository(pool),
			close:         pool.Close,
		}, nil
	}
	return nil, fmt.Errorf("driver de almacenamiento desconocido: %q", cfg.Storage.Driver)
}
