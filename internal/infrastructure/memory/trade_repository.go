package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/logistica-api/internal/domain"
	"github.com/jhoicas/logistica-api/internal/domain/entity"
	"github.com/jhoicas/logistica-api/internal/domain/logistics"
	"github.com/jhoicas/logistica-api/internal/domain/repository"
)

var _ repository.TradeRepository = (*TradeRepo)(nil)

// TradeRepo tratos y su historial de transiciones en memoria.
type TradeRepo struct {
	s  *Store
	tx *txLog
}

// NewTradeRepository repositorio fuera de transacción.
func NewTradeRepository(s *Store) *TradeRepo {
	return &TradeRepo{s: s}
}

func (r *TradeRepo) locker() locker { return locker{s: r.s, tx: r.tx} }

// Create inserta el trato; el ID debe ser nuevo.
func (r *TradeRepo) Create(_ context.Context, trade *entity.Trade) error {
	defer r.locker().lock()()
	if _, ok := r.s.trades[trade.ID]; ok {
		return fmt.Errorf("insert trade: id %s duplicado", trade.ID)
	}
	r.s.trades[trade.ID] = *trade
	r.s.tradeOrder = append(r.s.tradeOrder, trade.ID)
	r.tx.record(func() {
		delete(r.s.trades, trade.ID)
		r.s.tradeOrder = r.s.tradeOrder[:len(r.s.tradeOrder)-1]
	})
	return nil
}

// GetByID obtiene un trato; (nil, nil) si no existe.
func (r *TradeRepo) GetByID(_ context.Context, id string) (*entity.Trade, error) {
	defer r.locker().rlock()()
	t, ok := r.s.trades[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

// GetByIDForUpdate equivale a GetByID; el mutex de Run serializa el acceso.
func (r *TradeRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Trade, error) {
	return r.GetByID(ctx, id)
}

// UpdateState fija el estado de transporte.
func (r *TradeRepo) UpdateState(_ context.Context, id string, state logistics.TransportState, updatedAt time.Time) error {
	defer r.locker().lock()()
	prev, ok := r.s.trades[id]
	if !ok {
		return domain.ErrTradeNotFound
	}
	next := prev
	next.TransportState = state
	next.UpdatedAt = updatedAt
	r.s.trades[id] = next
	r.tx.record(func() { r.s.trades[id] = prev })
	return nil
}

// List tratos en orden de creación aplicando el filtro.
func (r *TradeRepo) List(_ context.Context, filter entity.TradeFilter, limit, offset int) ([]*entity.Trade, error) {
	defer r.locker().rlock()()
	var matched []entity.Trade
	for _, id := range r.s.tradeOrder {
		t := r.s.trades[id]
		if filter.Customer != "" && t.Customer != filter.Customer {
			continue
		}
		if filter.State != nil && t.TransportState != *filter.State {
			continue
		}
		matched = append(matched, t)
	}
	start, end := bounds(len(matched), limit, offset)
	list := make([]*entity.Trade, 0, end-start)
	for i := start; i < end; i++ {
		t := matched[i]
		list = append(list, &t)
	}
	return list, nil
}

// AddTransition agrega un registro al historial del trato.
func (r *TradeRepo) AddTransition(_ context.Context, tr *entity.TradeTransition) error {
	defer r.locker().lock()()
	id := tr.TradeID
	r.s.transitions[id] = append(r.s.transitions[id], *tr)
	r.tx.record(func() {
		h := r.s.transitions[id]
		if len(h) <= 1 {
			delete(r.s.transitions, id)
			return
		}
		r.s.transitions[id] = h[:len(h)-1]
	})
	return nil
}

// ListTransitions historial del trato en orden cronológico.
func (r *TradeRepo) ListTransitions(_ context.Context, tradeID string) ([]*entity.TradeTransition, error) {
	defer r.locker().rlock()()
	h := r.s.transitions[tradeID]
	list := make([]*entity.TradeTransition, 0, len(h))
	for i := range h {
		tr := h[i]
		list = append(list, &tr)
	}
	return list, nil
}
