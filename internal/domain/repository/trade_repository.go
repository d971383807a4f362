package repository

import (
	"context"
	"time"

	"github.com/jhoicas/logistica-api/internal/domain/entity"
	"github.com/jhoicas/logistica-api/internal/domain/logistics"
)

// TradeRepository define el puerto de persistencia para Trade y su historial de transiciones.
// GetByID y GetByIDForUpdate devuelven (nil, nil) si el trato no existe.
type TradeRepository interface {
	Create(ctx context.Context, trade *entity.Trade) error
	GetByID(ctx context.Context, id string) (*entity.Trade, error)
	// GetByIDForUpdate bloquea el trato hasta el fin de la transacción (SELECT FOR UPDATE).
	GetByIDForUpdate(ctx context.Context, id string) (*entity.Trade, error)
	UpdateState(ctx context.Context, id string, state logistics.TransportState, updatedAt time.Time) error
	List(ctx context.Context, filter entity.TradeFilter, limit, offset int) ([]*entity.Trade, error)
	AddTransition(ctx context.Context, tr *entity.TradeTransition) error
	ListTransitions(ctx context.Context, tradeID string) ([]*entity.TradeTransition, error)
}
