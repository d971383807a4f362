// Package trade implementa el registro de tratos: creación contra el libro de inventario
// y avance por la máquina de estados de transporte.
package trade

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/logistica-api/internal/application/authority"
	"github.com/jhoicas/logistica-api/internal/application/inventory"
	"github.com/jhoicas/logistica-api/internal/domain"
	"github.com/jhoicas/logistica-api/internal/domain/entity"
	"github.com/jhoicas/logistica-api/internal/domain/logistics"
	"github.com/jhoicas/logistica-api/internal/domain/repository"
)

// Registry dueño exclusivo del estado de los tratos.
type Registry struct {
	txRunner  inventory.TxRunner
	tradeRepo repository.TradeRepository
	ledger    *inventory.Ledger
	gate      *authority.Gate
	events    EventPublisher
	metrics   Metrics
	log       zerolog.Logger
	now       func() time.Time
	newID     func() string
}

// NewRegistry construye el registro. events y metrics pueden ser nil.
func NewRegistry(
	txRunner inventory.TxRunner,
	tradeRepo repository.TradeRepository,
	ledger *inventory.Ledger,
	gate *authority.Gate,
	events EventPublisher,
	metrics Metrics,
	log zerolog.Logger,
) *Registry {
	if events == nil {
		events = NopPublisher{}
	}
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &Registry{
		txRunner:  txRunner,
		tradeRepo: tradeRepo,
		ledger:    ledger,
		gate:      gate,
		events:    events,
		metrics:   metrics,
		log:       log,
		now:       entity.Now,
		newID:     func() string { return uuid.New().String() },
	}
}

// CreateTradeInput datos de creación. DryRun valida y calcula sin confirmar nada.
type CreateTradeInput struct {
	Customer    string
	ProductName string
	Quantity    int64
	DryRun      bool
}

// CreateTrade reserva inventario y registra el trato en una sola unidad atómica.
func (r *Registry) CreateTrade(ctx context.Context, caller string, in CreateTradeInput) (*entity.Trade, error) {
	trade, err := r.createTrade(ctx, caller, in)
	if err != nil {
		r.metrics.TradeRejected(rejectReason(err))
		return nil, err
	}
	r.metrics.TradeCreated(trade.ProductName, in.DryRun)
	return trade, nil
}

func (r *Registry) createTrade(ctx context.Context, caller string, in CreateTradeInput) (*entity.Trade, error) {
	if err := r.gate.CheckAuthority(caller); err != nil {
		return nil, err
	}
	customer := strings.TrimSpace(in.Customer)
	name := entity.NormalizeProductName(in.ProductName)
	if customer == "" || name == "" || in.Quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}

	id := r.newID()
	if in.DryRun {
		snap, err := r.ledger.CheckAvailability(ctx, name, in.Quantity)
		if err != nil {
			return nil, err
		}
		return entity.NewTrade(id, customer, caller, snap, in.Quantity, r.now()), nil
	}

	var trade *entity.Trade
	err := r.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		movRepo repository.StockMovementRepository,
		tradeRepo repository.TradeRepository,
	) error {
		// Fase 1: validar y reservar
		snap, err := r.ledger.ReserveInTx(ctx, productRepo, movRepo, name, in.Quantity, id, caller)
		if err != nil {
			return err
		}
		// Fase 2: confirmar el trato; si falla se libera la reserva antes de abortar
		t := entity.NewTrade(id, customer, caller, snap, in.Quantity, r.now())
		if err := r.commitTrade(ctx, tradeRepo, t, caller); err != nil {
			if relErr := r.ledger.ReleaseInTx(ctx, productRepo, movRepo, name, in.Quantity, id, caller); relErr != nil {
				return errors.Join(err, fmt.Errorf("compensar reserva: %w", relErr))
			}
			return err
		}
		trade = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.log.Info().
		Str("trade_id", trade.ID).
		Str("customer", trade.Customer).
		Str("product", trade.ProductName).
		Int64("quantity", trade.Quantity).
		Str("price", trade.Price.String()).
		Msg("trato creado")
	r.publish(ctx, Event{
		Type: EventCreated, TradeID: trade.ID, Customer: trade.Customer, ProductName: trade.ProductName,
		Quantity: trade.Quantity, From: logistics.StateIdle.String(), To: trade.TransportState.String(),
		Actor: caller, At: trade.CreatedAt,
	})
	return trade, nil
}

func (r *Registry) commitTrade(ctx context.Context, tradeRepo repository.TradeRepository, t *entity.Trade, actor string) error {
	if err := tradeRepo.Create(ctx, t); err != nil {
		return fmt.Errorf("registrar trato: %w", err)
	}
	if err := tradeRepo.AddTransition(ctx, &entity.TradeTransition{
		ID:      r.newID(),
		TradeID: t.ID,
		From:    logistics.StateIdle,
		To:      t.TransportState,
		Actor:   actor,
		At:      t.CreatedAt,
	}); err != nil {
		return fmt.Errorf("registrar transición: %w", err)
	}
	return nil
}

// Advance aplica la única transición canónica desde el estado actual.
func (r *Registry) Advance(ctx context.Context, caller, id string) (*entity.Trade, error) {
	return r.transition(ctx, caller, id, EventAdvanced, logistics.Next)
}

// Cancel lleva el trato a Cancel; solo válido desde Created o InTransit. No repone stock.
func (r *Registry) Cancel(ctx context.Context, caller, id string) (*entity.Trade, error) {
	return r.transition(ctx, caller, id, EventCancelled, func(from logistics.TransportState) (logistics.TransportState, error) {
		return logistics.Transition(from, logistics.StateCancel)
	})
}

func (r *Registry) transition(
	ctx context.Context,
	caller, id, eventType string,
	next func(logistics.TransportState) (logistics.TransportState, error),
) (*entity.Trade, error) {
	if err := r.gate.CheckAuthority(caller); err != nil {
		return nil, err
	}
	var (
		trade *entity.Trade
		from  logistics.TransportState
	)
	err := r.txRunner.Run(ctx, func(
		_ repository.ProductRepository,
		_ repository.StockMovementRepository,
		tradeRepo repository.TradeRepository,
	) error {
		t, err := tradeRepo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if t == nil {
			return domain.ErrTradeNotFound
		}
		from = t.TransportState
		to, err := next(from)
		if err != nil {
			return err
		}
		now := r.now()
		if err := tradeRepo.UpdateState(ctx, id, to, now); err != nil {
			return err
		}
		if err := tradeRepo.AddTransition(ctx, &entity.TradeTransition{
			ID: r.newID(), TradeID: id, From: from, To: to, Actor: caller, At: now,
		}); err != nil {
			return fmt.Errorf("registrar transición: %w", err)
		}
		t.TransportState = to
		t.UpdatedAt = now
		trade = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.metrics.TradeTransitioned(from.String(), trade.TransportState.String())
	r.log.Info().
		Str("trade_id", id).
		Str("from", from.String()).
		Str("to", trade.TransportState.String()).
		Msg("trato actualizado")
	r.publish(ctx, Event{
		Type: eventType, TradeID: id, Customer: trade.Customer, ProductName: trade.ProductName,
		Quantity: trade.Quantity, From: from.String(), To: trade.TransportState.String(),
		Actor: caller, At: trade.UpdatedAt,
	})
	return trade, nil
}

// GetTrade obtiene un trato por ID.
func (r *Registry) GetTrade(ctx context.Context, id string) (*entity.Trade, error) {
	t, err := r.tradeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrTradeNotFound
	}
	return t, nil
}

// ListTrades lista tratos con filtros y paginación.
func (r *Registry) ListTrades(ctx context.Context, filter entity.TradeFilter, limit, offset int) ([]*entity.Trade, error) {
	return r.tradeRepo.List(ctx, filter, limit, offset)
}

// ListTransitions historial de estados del trato.
func (r *Registry) ListTransitions(ctx context.Context, id string) ([]*entity.TradeTransition, error) {
	if _, err := r.GetTrade(ctx, id); err != nil {
		return nil, err
	}
	return r.tradeRepo.ListTransitions(ctx, id)
}

func (r *Registry) publish(ctx context.Context, ev Event) {
	if err := r.events.Publish(ctx, ev); err != nil {
		r.log.Warn().Err(err).Str("trade_id", ev.TradeID).Str("event", ev.Type).Msg("no se pudo publicar el evento")
	}
}

func rejectReason(err error) string {
	var stockErr *domain.InsufficientStockError
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, domain.ErrProductNotFound):
		return "unknown_product"
	case errors.As(err, &stockErr), errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	default:
		return "internal"
	}
}
