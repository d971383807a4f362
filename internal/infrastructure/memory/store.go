// Package memory implementa los puertos de persistencia en memoria.
// Un único mutex serializa las escrituras; Run aplica un diario de deshacer si fn falla.
// Útil para desarrollo y tests (STORAGE_DRIVER=memory).
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/logistica-api/internal/application/inventory"
	"github.com/jhoicas/logistica-api/internal/domain/entity"
	"github.com/jhoicas/logistica-api/internal/domain/repository"
)

var _ inventory.TxRunner = (*Store)(nil)

// Store estado compartido de todos los repositorios en memoria.
type Store struct {
	mu           sync.RWMutex
	products     map[string]entity.Product
	productOrder []string
	movements    []entity.StockMovement
	trades       map[string]entity.Trade
	tradeOrder   []string
	transitions  map[string][]entity.TradeTransition
	parties      map[string]entity.Party
}

// NewStore construye un almacén vacío.
func NewStore() *Store {
	return &Store{
		products:    make(map[string]entity.Product),
		trades:      make(map[string]entity.Trade),
		transitions: make(map[string][]entity.TradeTransition),
		parties:     make(map[string]entity.Party),
	}
}

// txLog diario de deshacer; las entradas se aplican en orden inverso.
type txLog struct {
	undo []func()
}

func (t *txLog) record(fn func()) {
	if t != nil {
		t.undo = append(t.undo, fn)
	}
}

func (t *txLog) rollback() {
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
}

// Run ejecuta fn con el mutex tomado. Si fn retorna error (o hace panic) se deshacen sus escrituras.
func (s *Store) Run(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	movRepo repository.StockMovementRepository,
	tradeRepo repository.TradeRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &txLog{}
	defer func() {
		if p := recover(); p != nil {
			tx.rollback()
			panic(p)
		}
	}()

	if err := fn(
		&ProductRepo{s: s, tx: tx},
		&StockMovementRepo{s: s, tx: tx},
		&TradeRepo{s: s, tx: tx},
	); err != nil {
		tx.rollback()
		return err
	}
	return nil
}

// locker toma el mutex solo fuera de una transacción (dentro de Run ya está tomado).
type locker struct {
	s  *Store
	tx *txLog
}

func (l locker) lock() func() {
	if l.tx != nil {
		return func() {}
	}
	l.s.mu.Lock()
	return l.s.mu.Unlock
}

func (l locker) rlock() func() {
	if l.tx != nil {
		return func() {}
	}
	l.s.mu.RLock()
	return l.s.mu.RUnlock
}

// bounds traduce limit/offset a índices de slice. limit <= 0 = sin límite.
func bounds(n, limit, offset int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if offset > n {
		offset = n
	}
	end := n
	if limit > 0 && offset+limit < n {
		end = offset + limit
	}
	return offset, end
}
