package memory

import (
	"context"

	"github.com/jhoicas/logistica-api/internal/domain/entity"
	"github.com/jhoicas/logistica-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo libro de movimientos en memoria (solo se agrega).
type StockMovementRepo struct {
	s  *Store
	tx *txLog
}

// NewStockMovementRepository repositorio fuera de transacción.
func NewStockMovementRepository(s *Store) *StockMovementRepo {
	return &StockMovementRepo{s: s}
}

func (r *StockMovementRepo) locker() locker { return locker{s: r.s, tx: r.tx} }

// Create agrega el movimiento al final del libro.
func (r *StockMovementRepo) Create(_ context.Context, movement *entity.StockMovement) error {
	defer r.locker().lock()()
	r.s.movements = append(r.s.movements, *movement)
	r.tx.record(func() { r.s.movements = r.s.movements[:len(r.s.movements)-1] })
	return nil
}

// ListByProduct movimientos del producto en orden cronológico.
func (r *StockMovementRepo) ListByProduct(_ context.Context, productName string, limit, offset int) ([]*entity.StockMovement, error) {
	defer r.locker().rlock()()
	var matched []entity.StockMovement
	for _, m := range r.s.movements {
		if m.ProductName == productName {
			matched = append(matched, m)
		}
	}
	start, end := bounds(len(matched), limit, offset)
	list := make([]*entity.StockMovement, 0, end-start)
	for i := start; i < end; i++ {
		m := matched[i]
		list = append(list, &m)
	}
	return list, nil
}
