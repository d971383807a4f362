package repository

import (
	"context"
	"time"

	"github.com/jhoicas/logistica-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// Los métodos de lectura devuelven (nil, nil) si el producto no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByName(ctx context.Context, name string) (*entity.Product, error)
	// GetByNameForUpdate bloquea el producto hasta el fin de la transacción (SELECT FOR UPDATE).
	GetByNameForUpdate(ctx context.Context, name string) (*entity.Product, error)
	UpdateQuantity(ctx context.Context, name string, quantity int64, updatedAt time.Time) error
	List(ctx context.Context, limit, offset int) ([]*entity.Product, error)
}
