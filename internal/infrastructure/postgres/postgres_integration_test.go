//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jhoicas/logistica-api/internal/application/authority"
	"github.com/jhoicas/logistica-api/internal/application/inventory"
	"github.com/jhoicas/logistica-api/internal/application/trade"
	"github.com/jhoicas/logistica-api/internal/domain"
	"github.com/jhoicas/logistica-api/internal/domain/entity"
	"github.com/jhoicas/logistica-api/internal/domain/logistics"
	"github.com/jhoicas/logistica-api/internal/infrastructure/postgres"
	"github.com/jhoicas/logistica-api/pkg/config"
)

func setupPostgres(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "postgres",
			"POSTGRES_PASSWORD": "postgres",
			"POSTGRES_DB":       "logistica_test",
		},
		WaitingFor: wait.ForAll(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			wait.ForListeningPort("5432/tcp"),
		).WithDeadline(60 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "arrancar contenedor postgres")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminar contenedor: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	pool, err := postgres.NewPool(ctx, config.DBConfig{
		DatabaseURL: fmt.Sprintf("postgres://postgres:postgres@%s:%s/logistica_test?sslmode=disable", host, port.Port()),
		MaxConns:    10,
	})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, postgres.Migrate(ctx, pool))
	require.NoError(t, postgres.Migrate(ctx, pool), "Migrate debe ser idempotente")
	return pool
}

func TestPostgres_CicloDeVidaCompleto(t *testing.T) {
	ctx := context.Background()
	pool := setupPostgres(ctx, t)

	gate, err := authority.NewGate(authority.Config{AuthorityID: "owner"})
	require.NoError(t, err)
	runner := postgres.NewTxRunner(pool)
	ledger := inventory.NewLedger(runner, postgres.NewProductRepository(pool), postgres.NewStockMovementRepository(pool), gate, zerolog.Nop())
	registry := trade.NewRegistry(runner, postgres.NewTradeRepository(pool), ledger, gate, nil, nil, zerolog.Nop())

	_, err = ledger.AddProduct(ctx, "owner", inventory.AddProductInput{
		Name: "Assignment 6", UnitPrice: decimal.NewFromInt(1), MinTemperature: 10, MaxTemperature: 30,
	})
	require.NoError(t, err)
	_, err = ledger.AddProduct(ctx, "owner", inventory.AddProductInput{Name: "Assignment 6"})
	assert.ErrorIs(t, err, domain.ErrDuplicateProduct)
	_, err = ledger.AddStock(ctx, "owner", "Assignment 6", 100)
	require.NoError(t, err)

	_, err = registry.CreateTrade(ctx, "owner", trade.CreateTradeInput{Customer: "c1", ProductName: "Assignment 6", Quantity: 100000})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	created, err := registry.CreateTrade(ctx, "owner", trade.CreateTradeInput{Customer: "c1", ProductName: "Assignment 6", Quantity: 5})
	require.NoError(t, err)
	assert.True(t, created.Price.Equal(decimal.NewFromInt(5)))
	qty, err := ledger.GetStock(ctx, "Assignment 6")
	require.NoError(t, err)
	assert.Equal(t, int64(95), qty)

	got, err := registry.GetTrade(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, logistics.StateCreated, got.TransportState)
	assert.True(t, created.Price.Equal(got.Price))
	// NUMERIC puede cambiar la escala del decimal; el resto del registro debe ser idéntico.
	want, have := *created, *got
	want.Price, have.Price = decimal.Zero, decimal.Zero
	assert.Equal(t, want, have)

	// ids que no son UUID se tratan como inexistentes, no como error de base de datos
	_, err = registry.GetTrade(ctx, "no-es-uuid")
	assert.ErrorIs(t, err, domain.ErrTradeNotFound)
	_, err = registry.Advance(ctx, "owner", "no-es-uuid")
	assert.ErrorIs(t, err, domain.ErrTradeNotFound)
	_, err = registry.Cancel(ctx, "owner", "no-es-uuid")
	assert.ErrorIs(t, err, domain.ErrTradeNotFound)
	_, err = registry.ListTransitions(ctx, "no-es-uuid")
	assert.ErrorIs(t, err, domain.ErrTradeNotFound)

	for _, want := range []logistics.TransportState{logistics.StateInTransit, logistics.StateComplete, logistics.StateDone} {
		tr, err := registry.Advance(ctx, "owner", created.ID)
		require.NoError(t, err)
		assert.Equal(t, want, tr.TransportState)
	}
	_, err = registry.Cancel(ctx, "owner", created.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	history, err := registry.ListTransitions(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, created.CreatedAt, history[0].At)
	assert.Equal(t, created.ID, history[0].TradeID)

	movs, err := ledger.ListMovements(ctx, "Assignment 6", 0, 0)
	require.NoError(t, err)
	require.Len(t, movs, 2)
	assert.Equal(t, entity.MovementTypeOUT, movs[1].Type)
	assert.Equal(t, created.ID, movs[1].Reference)
}

// FOR UPDATE serializa reservas concurrentes sobre la misma fila.
func TestPostgres_ReservasConcurrentesNoSobrevenden(t *testing.T) {
	ctx := context.Background()
	pool := setupPostgres(ctx, t)

	gate, err := authority.NewGate(authority.Config{AuthorityID: "owner"})
	require.NoError(t, err)
	runner := postgres.NewTxRunner(pool)
	ledger := inventory.NewLedger(runner, postgres.NewProductRepository(pool), postgres.NewStockMovementRepository(pool), gate, zerolog.Nop())
	registry := trade.NewRegistry(runner, postgres.NewTradeRepository(pool), ledger, gate, nil, nil, zerolog.Nop())

	_, err = ledger.AddProduct(ctx, "owner", inventory.AddProductInput{Name: "Leche", UnitPrice: decimal.NewFromInt(2)})
	require.NoError(t, err)
	_, err = ledger.AddStock(ctx, "owner", "Leche", 50)
	require.NoError(t, err)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		okCount int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := registry.CreateTrade(ctx, "owner", trade.CreateTradeInput{Customer: "c", ProductName: "Leche", Quantity: 4})
			if err == nil {
				mu.Lock()
				okCount++
				mu.Unlock()
				return
			}
			if !errors.Is(err, domain.ErrInsufficientStock) {
				t.Errorf("error inesperado: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 12, okCount)
	qty, err := ledger.GetStock(ctx, "Leche")
	require.NoError(t, err)
	assert.Equal(t, int64(2), qty)
}
