package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/logistica-api/internal/application/auth"
	"github.com/jhoicas/logistica-api/internal/application/inventory"
	"github.com/jhoicas/logistica-api/internal/application/ports"
	"github.com/jhoicas/logistica-api/internal/application/trade"
	"github.com/jhoicas/logistica-api/internal/domain/entity"
)

// DefaultIdempotencyTTL vigencia de una Idempotency-Key si RouterDeps no indica otra.
const DefaultIdempotencyTTL = 24 * time.Hour

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Ledger         *inventory.Ledger
	Registry       *trade.Registry
	AuthUC         *auth.AuthUseCase
	Idempotency    ports.IdempotencyStore // nil desactiva Idempotency-Key
	IdempotencyTTL time.Duration
	Waybill        ports.WaybillGenerator
	Metrics        HTTPObserver // nil desactiva el conteo de peticiones
	JWTSecret      string
	Log            zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Metrics != nil {
		app.Use(RequestMetrics(deps.Metrics))
	}
	validate := NewValidator()
	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC, validate)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Parties (solo autoridad)
	protected.Post("/parties", RequireRole(entity.RoleAuthority), authHandler.RegisterParty)

	// Products
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.Ledger, validate)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:name", productHandler.GetByName)
	products.Post("/:name/stock", productHandler.AddStock)
	products.Get("/:name/stock", productHandler.GetStock)
	products.Get("/:name/movements", productHandler.ListMovements)

	// Trades
	idem := func(c *fiber.Ctx) error { return c.Next() }
	if deps.Idempotency != nil {
		ttl := deps.IdempotencyTTL
		if ttl <= 0 {
			ttl = DefaultIdempotencyTTL
		}
		idem = RequireIdempotency(deps.Idempotency, ttl, deps.Log)
	}
	trades := protected.Group("/trades")
	tradeHandler := NewTradeHandler(deps.Registry, deps.Waybill, validate)
	trades.Post("/", idem, tradeHandler.Create)
	trades.Get("/", tradeHandler.List)
	trades.Get("/:id", tradeHandler.GetByID)
	trades.Post("/:id/advance", idem, tradeHandler.Advance)
	trades.Post("/:id/cancel", idem, tradeHandler.Cancel)
	trades.Get("/:id/transitions", tradeHandler.ListTransitions)
	trades.Get("/:id/waybill", tradeHandler.Waybill)
}
