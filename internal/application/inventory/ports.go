package inventory

import (
	"context"

	"github.com/jhoicas/logistica-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una unidad atómica, pasando repositorios atados a ella.
// Si fn retorna error, ningún cambio hecho a través de esos repositorios queda visible.
// Garantiza la atomicidad entre el libro de inventario y el registro de tratos.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		movRepo repository.StockMovementRepository,
		tradeRepo repository.TradeRepository,
	) error) error
}
