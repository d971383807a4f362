package repository

import (
	"context"

	"github.com/jhoicas/logistica-api/internal/domain/entity"
)

// StockMovementRepository define el puerto para el libro de movimientos de stock.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	ListByProduct(ctx context.Context, productName string, limit, offset int) ([]*entity.StockMovement, error)
}
