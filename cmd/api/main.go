package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/stockflow-api/internal/application/alerts"
	"github.com/jhoicas/stockflow-api/internal/application/events"
	"github.com/jhoicas/stockflow-api/internal/application/inventory"
	"github.com/jhoicas/stockflow-api/internal/application/notification"
	"github.com/jhoicas/stockflow-api/internal/application/usecase"
	"github.com/jhoicas/stockflow-api/internal/application/workflow"
	"github.com/jhoicas/stockflow-api/internal/infrastructure/cache"
	"github.com/jhoicas/stockflow-api/internal/infrastructure/messaging"
	"github.com/jhoicas/stockflow-api/internal/infrastructure/storage"
	"github.com/jhoicas/stockflow-api/internal/infrastructure/webhook"
	httpRouter "github.com/jhoicas/stockflow-api/internal/interfaces/http"
	"github.com/jhoicas/stockflow-api/pkg/config"
	"github.com/jhoicas/stockflow-api/pkg/logger"
	"github.com/jhoicas/stockflow-api/pkg/telemetry"
)

// version se fija en el build con -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.Storage.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	shutdownTelemetry, err := telemetry.Init(ctx, cfg.Telemetry, version)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar telemetría")
	}

	repos, err := storage.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacenamiento")
	}
	defer repos.Close()

	// Caché de stock (opcional)
	var stockCache inventory.StockCache
	if cfg.Redis.Enabled {
		rdb, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rdb.Close()
		stockCache = cache.NewRedisStockCache(rdb, cfg.Redis.StockTTL)
		log.Info().Str("addr", cfg.Redis.Addr()).Msg("caché de stock en Redis habilitada")
	} else if cfg.Storage.Driver == config.StorageDriverMemory {
		stockCache = cache.NewMemoryStockCache(cfg.Redis.StockTTL)
	}

	// Motor de reglas: Kafka y/o webhook. Sin ninguno los disparadores se descartan.
	var sinks workflow.MultiSink
	if cfg.Kafka.Enabled {
		publisher := messaging.NewKafkaWorkflowPublisher(cfg.Kafka.Brokers, cfg.Kafka.WorkflowTopic)
		defer publisher.Close()
		sinks = append(sinks, workflow.NewSenderSink(publisher))
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.WorkflowTopic).Msg("disparadores de workflow hacia Kafka")
	}
	if cfg.Workflow.WebhookURL != "" {
		sinks = append(sinks, workflow.NewSenderSink(webhook.NewWorkflowClient(cfg.Workflow.WebhookURL, cfg.Workflow.WebhookTimeout)))
		log.Info().Str("url", cfg.Workflow.WebhookURL).Msg("disparadores de workflow hacia webhook")
	}
	var sink workflow.TriggerSink = workflow.NopSink{}
	if len(sinks) > 0 {
		sink = sinks
	}
	dispatcher := workflow.NewDispatcher(sink, log)

	bus := events.NewBus(log, cfg.Events.Buffer, cfg.Events.Workers)

	ledgerUC := inventory.NewLedgerUseCase(repos.TxRunner, repos.Products, repos.Suppliers, repos.Movements, bus, log).
		WithStockCache(stockCache)
	stockQueryUC := inventory.NewStockQueryUseCase(inventory.NewBalanceCalculator(repos.Movements), repos.Products, stockCache, log)
	fanOut := notification.NewFanOut(repos.Stores, repos.Notifications, time.Duration(cfg.Notifications.ExpiryDays)*24*time.Hour, log)
	alertUC := alerts.NewStockAlertUseCase(repos.Products, fanOut, dispatcher, log)

	bus.Subscribe(events.KindStockChanged, "stock_cache", stockQueryUC.HandleStockChanged)
	bus.Subscribe(events.KindStockChanged, "stock_alerts", alertUC.HandleStockChanged)
	bus.Subscribe(events.KindMovementCreated, "workflow", dispatcher.HandleMovementCreated)
	bus.Start()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Stockflow API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "version": version})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Ledger:        ledgerUC,
		StockQuery:    stockQueryUC,
		Replenishment: inventory.NewReplenishmentUseCase(repos.StockLevels),
		ProductUC:     usecase.NewProductUseCase(repos.Products),
		Notifications: notification.NewUseCase(repos.Notifications),
		Stores:        repos.Stores,
		JWTSecret:     cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	// Después del servidor: ya no entran escrituras, se drenan los eventos pendientes.
	if err := bus.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("eventos pendientes sin procesar")
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("cierre de telemetría")
	}

	log.Info().Msg("aplicación detenida")
}
