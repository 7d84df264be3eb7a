// Comando reconcile recalcula el stock desde el ledger y repara balance_after y la fila de balance.
//
//	reconcile --store <id> [--product <id>]
//
// Sin --product recorre todos los productos con movimientos en la tienda. Es idempotente.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jhoicas/stockflow-api/internal/application/inventory"
	"github.com/jhoicas/stockflow-api/internal/infrastructure/cache"
	"github.com/jhoicas/stockflow-api/internal/infrastructure/storage"
	"github.com/jhoicas/stockflow-api/pkg/config"
	"github.com/jhoicas/stockflow-api/pkg/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	flags := pflag.NewFlagSet("reconcile", pflag.ExitOnError)
	flags.String("store", "", "ID de la tienda (obligatorio)")
	flags.String("product", "", "ID del producto; vacío = todos los productos de la tienda")
	flags.Bool("migrate", false, "aplicar migraciones antes de reconciliar")
	_ = flags.Parse(os.Args[1:])

	v := viper.New()
	v.AutomaticEnv()
	_ = v.BindPFlag("RECONCILE_STORE", flags.Lookup("store"))
	_ = v.BindPFlag("RECONCILE_PRODUCT", flags.Lookup("product"))
	_ = v.BindPFlag("DB_AUTO_MIGRATE", flags.Lookup("migrate"))

	cfg, err := config.FromViper(v)
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuración:", err)
		return 2
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: "info"}).Named("reconcile")

	storeID := v.GetString("RECONCILE_STORE")
	if storeID == "" {
		flags.Usage()
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, err := storage.Open(ctx, cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("abrir almacenamiento")
		return 1
	}
	defer repos.Close()

	// Sin bus: el reconciliador no dispara alertas ni workflows.
	ledger := inventory.NewLedgerUseCase(repos.TxRunner, repos.Products, repos.Suppliers, repos.Movements, nil, log)
	if cfg.Redis.Enabled {
		rdb, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Error().Err(err).Msg("conexión a Redis")
			return 1
		}
		defer rdb.Close()
		ledger.WithStockCache(cache.NewRedisStockCache(rdb, cfg.Redis.StockTTL))
	}

	products := []string{v.GetString("RECONCILE_PRODUCT")}
	if products[0] == "" {
		products, err = repos.Movements.ListProductIDsByStore(ctx, storeID)
		if err != nil {
			log.Error().Err(err).Str("store_id", storeID).Msg("listar productos")
			return 1
		}
	}

	failed := 0
	for _, productID := range products {
		qty, err := ledger.RecalculateStock(ctx, productID, storeID)
		if err != nil {
			failed++
			log.Error().Err(err).Str("product_id", productID).Str("store_id", storeID).Msg("recalcular stock")
			continue
		}
		log.Info().Str("product_id", productID).Int("quantity", qty).Msg("stock reconciliado")
	}
	log.Info().Int("products", len(products)).Int("failed", failed).Msg("reconciliación terminada")
	if failed > 0 {
		return 1
	}
	return 0
}
