package ports

import (
	"context"

	"github.com/jhoicas/logistica-api/internal/domain/entity"
)

// WaybillGenerator genera la guía de transporte (PDF) de un trato.
type WaybillGenerator interface {
	GenerateWaybill(ctx context.Context, trade *entity.Trade, history []*entity.TradeTransition) ([]byte, error)
}
