package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	_ "github.com/jhoicas/logistica-api/docs"
	"github.com/jhoicas/logistica-api/internal/application/auth"
	"github.com/jhoicas/logistica-api/internal/application/authority"
	"github.com/jhoicas/logistica-api/internal/application/inventory"
	"github.com/jhoicas/logistica-api/internal/application/ports"
	"github.com/jhoicas/logistica-api/internal/application/trade"
	"github.com/jhoicas/logistica-api/internal/domain/repository"
	"github.com/jhoicas/logistica-api/internal/infrastructure/events"
	"github.com/jhoicas/logistica-api/internal/infrastructure/idempotency"
	"github.com/jhoicas/logistica-api/internal/infrastructure/memory"
	"github.com/jhoicas/logistica-api/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/logistica-api/internal/infrastructure/pdf"
	"github.com/jhoicas/logistica-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/logistica-api/internal/interfaces/http"
	"github.com/jhoicas/logistica-api/pkg/config"
	"github.com/jhoicas/logistica-api/pkg/logger"
)

// storage repositorios y unidad atómica del backend elegido.
type storage struct {
	txRunner    inventory.TxRunner
	products    repository.ProductRepository
	movements   repository.StockMovementRepository
	trades      repository.TradeRepository
	parties     repository.PartyRepository
	closeFn     func()
	description string
}

// @title        Logística API
// @version      1.0
// @description  Libro de inventario y registro de tratos con máquina de estados de transporte.
// @BasePath     /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.Storage.Driver).
		Msg("iniciando aplicación")

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("aplicación finalizada con error")
	}
	log.Info().Msg("aplicación detenida")
}

// run arma dependencias y sirve hasta recibir SIGINT/SIGTERM.
func run(cfg *config.Config, log *logger.Logger) error {
	ctx := context.Background()
	store, err := openStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("inicializar almacenamiento: %w", err)
	}
	defer store.closeFn()
	log.Info().Str("backend", store.description).Msg("almacenamiento listo")

	gate, err := authority.NewGate(authority.Config{AuthorityID: cfg.Authority.ID})
	if err != nil {
		return fmt.Errorf("configurar autoridad: %w", err)
	}

	// Métricas (opcional)
	var (
		tradeMetrics trade.Metrics
		prom         *metrics.Prometheus
	)
	if cfg.Metrics.Enabled {
		prom = metrics.NewPrometheus("logistica")
		tradeMetrics = prom
	}

	// Eventos de tratos (opcional)
	var publisher trade.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		kp := events.NewKafkaPublisher(events.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic))
		defer closeQuietly(kp, log)
		publisher = kp
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("publicación de eventos en Kafka")
	}

	// Idempotency-Key: Redis si está configurado, si no memoria local
	var idemStore ports.IdempotencyStore = idempotency.NewMemoryStore()
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			_ = rdb.Close()
			return fmt.Errorf("conexión a Redis %s: %w", cfg.Redis.Addr, err)
		}
		defer closeQuietly(rdb, log)
		idemStore = idempotency.NewRedisStore(rdb)
	}

	ledger := inventory.NewLedger(store.txRunner, store.products, store.movements, gate, log.Component("inventory"))
	registry := trade.NewRegistry(store.txRunner, store.trades, ledger, gate, publisher, tradeMetrics, log.Component("trade"))
	authUC := auth.NewAuthUseCase(store.parties, gate, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, log.Component("auth"))
	if cfg.Authority.Secret != "" {
		if err := authUC.SeedAuthority(ctx, cfg.Authority.Secret); err != nil {
			return fmt.Errorf("sembrar credencial de la autoridad: %w", err)
		}
	} else {
		log.Warn().Msg("AUTHORITY_SECRET vacío: la autoridad no podrá iniciar sesión")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		Immutable:    true,
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
		Title:    "Logística API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "storage": store.description})
	})

	deps := httpRouter.RouterDeps{
		Ledger:      ledger,
		Registry:    registry,
		AuthUC:      authUC,
		Idempotency: idemStore,
		Waybill:     infrapdf.NewWaybillGenerator(cfg.App.Name),
		JWTSecret:   cfg.JWT.Secret,
		Log:         log.Component("http"),
	}
	if prom != nil {
		app.Get("/metrics", adaptor.HTTPHandler(prom.Handler()))
		deps.Metrics = prom
	}
	httpRouter.Router(app, deps)

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
	return nil
}

// openStorage arma el backend según STORAGE_DRIVER. En postgres aplica las migraciones pendientes.
func openStorage(ctx context.Context, cfg *config.Config) (*storage, error) {
	if cfg.Storage.Driver == config.StoragePostgres {
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		return &storage{
			txRunner:    postgres.NewTxRunner(pool),
			products:    postgres.NewProductRepository(pool),
			movements:   postgres.NewStockMovementRepository(pool),
			trades:      postgres.NewTradeRepository(pool),
			parties:     postgres.NewPartyRepository(pool),
			closeFn:     pool.Close,
			description: "postgres",
		}, nil
	}
	mem := memory.NewStore()
	return &storage{
		txRunner:    mem,
		products:    memory.NewProductRepository(mem),
		movements:   memory.NewStockMovementRepository(mem),
		trades:      memory.NewTradeRepository(mem),
		parties:     memory.NewPartyRepository(mem),
		closeFn:     func() {},
		description: "memory",
	}, nil
}

func closeQuietly(c io.Closer, log *logger.Logger) {
	if err := c.Close(); err != nil {
		log.Warn().Err(err).Msg("cerrar recurso")
	}
}
