package memory

import (
	"context"
	"time"

	"github.com/jhoicas/logistica-api/internal/domain"
	"github.com/jhoicas/logistica-api/internal/domain/entity"
	"github.com/jhoicas/logistica-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo productos en memoria. Devuelve copias: mutar el resultado no altera el almacén.
type ProductRepo struct {
	s  *Store
	tx *txLog
}

// NewProductRepository repositorio fuera de transacción.
func NewProductRepository(s *Store) *ProductRepo {
	return &ProductRepo{s: s}
}

func (r *ProductRepo) locker() locker { return locker{s: r.s, tx: r.tx} }

// Create inserta el producto; ErrDuplicateProduct si el nombre ya existe.
func (r *ProductRepo) Create(_ context.Context, product *entity.Product) error {
	defer r.locker().lock()()
	if _, ok := r.s.products[product.Name]; ok {
		return domain.ErrDuplicateProduct
	}
	r.s.products[product.Name] = *product
	r.s.productOrder = append(r.s.productOrder, product.Name)
	r.tx.record(func() {
		delete(r.s.products, product.Name)
		r.s.productOrder = r.s.productOrder[:len(r.s.productOrder)-1]
	})
	return nil
}

// GetByName obtiene un producto; (nil, nil) si no existe.
func (r *ProductRepo) GetByName(_ context.Context, name string) (*entity.Product, error) {
	defer r.locker().rlock()()
	p, ok := r.s.products[name]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// GetByNameForUpdate dentro de Run el mutex ya serializa el acceso; equivale a GetByName.
func (r *ProductRepo) GetByNameForUpdate(ctx context.Context, name string) (*entity.Product, error) {
	return r.GetByName(ctx, name)
}

// UpdateQuantity fija la cantidad del producto.
func (r *ProductRepo) UpdateQuantity(_ context.Context, name string, quantity int64, updatedAt time.Time) error {
	defer r.locker().lock()()
	prev, ok := r.s.products[name]
	if !ok {
		return domain.ErrProductNotFound
	}
	next := prev
	next.Quantity = quantity
	next.UpdatedAt = updatedAt
	r.s.products[name] = next
	r.tx.record(func() { r.s.products[name] = prev })
	return nil
}

// List productos en orden de alta.
func (r *ProductRepo) List(_ context.Context, limit, offset int) ([]*entity.Product, error) {
	defer r.locker().rlock()()
	start, end := bounds(len(r.s.productOrder), limit, offset)
	list := make([]*entity.Product, 0, end-start)
	for _, name := range r.s.productOrder[start:end] {
		p := r.s.products[name]
		list = append(list, &p)
	}
	return list, nil
}
