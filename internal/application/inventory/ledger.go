package inventory

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/logistica-api/internal/application/authority"
	"github.com/jhoicas/logistica-api/internal/domain"
	"github.com/jhoicas/logistica-api/internal/domain/entity"
	"github.com/jhoicas/logistica-api/internal/domain/repository"
)

// Ledger libro de inventario: dueño exclusivo de los productos y de su cantidad en stock.
// Las mutaciones públicas exigen la autoridad; ReserveInTx/ReleaseInTx las usa el registro
// de tratos dentro de su propia transacción, después de haber verificado la autoridad.
type Ledger struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	movRepo     repository.StockMovementRepository
	gate        *authority.Gate
	log         zerolog.Logger
	now         func() time.Time
}

// NewLedger construye el libro de inventario.
func NewLedger(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	movRepo repository.StockMovementRepository,
	gate *authority.Gate,
	log zerolog.Logger,
) *Ledger {
	return &Ledger{
		txRunner:    txRunner,
		productRepo: productRepo,
		movRepo:     movRepo,
		gate:        gate,
		log:         log,
		now:         entity.Now,
	}
}

// AddProductInput datos de alta de un producto.
type AddProductInput struct {
	Name           string
	UnitPrice      decimal.Decimal
	MinTemperature int
	MaxTemperature int
}

// AddProduct registra un producto nuevo con cantidad 0.
func (l *Ledger) AddProduct(ctx context.Context, caller string, in AddProductInput) (*entity.Product, error) {
	if err := l.gate.CheckAuthority(caller); err != nil {
		return nil, err
	}
	name := entity.NormalizeProductName(in.Name)
	if name == "" || in.UnitPrice.IsNegative() || in.MinTemperature > in.MaxTemperature {
		return nil, domain.ErrInvalidInput
	}

	now := l.now()
	product := &entity.Product{
		Name:           name,
		UnitPrice:      in.UnitPrice,
		MinTemperature: in.MinTemperature,
		MaxTemperature: in.MaxTemperature,
		Quantity:       0,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	err := l.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		_ repository.StockMovementRepository,
		_ repository.TradeRepository,
	) error {
		existing, err := productRepo.GetByName(ctx, name)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrDuplicateProduct
		}
		return productRepo.Create(ctx, product)
	})
	if err != nil {
		return nil, err
	}
	l.log.Info().Str("product", name).Str("unit_price", in.UnitPrice.String()).Msg("producto registrado")
	return product, nil
}

// AddStock suma amount a la cantidad del producto y registra un movimiento IN.
func (l *Ledger) AddStock(ctx context.Context, caller, name string, amount int64) (*entity.Product, error) {
	if err := l.gate.CheckAuthority(caller); err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, domain.ErrInvalidInput
	}
	name = entity.NormalizeProductName(name)

	var updated *entity.Product
	err := l.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		movRepo repository.StockMovementRepository,
		_ repository.TradeRepository,
	) error {
		// Bloquea el producto para que una reserva concurrente no pierda la actualización
		product, err := productRepo.GetByNameForUpdate(ctx, name)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrProductNotFound
		}
		if amount > math.MaxInt64-product.Quantity {
			return domain.ErrInvalidInput
		}
		now := l.now()
		product.Quantity += amount
		product.UpdatedAt = now
		if err := productRepo.UpdateQuantity(ctx, name, product.Quantity, now); err != nil {
			return err
		}
		updated = product
		return movRepo.Create(ctx, &entity.StockMovement{
			ID:          uuid.New().String(),
			ProductName: name,
			Type:        entity.MovementTypeIN,
			Quantity:    amount,
			Balance:     product.Quantity,
			CreatedBy:   caller,
			CreatedAt:   now,
		})
	})
	if err != nil {
		return nil, err
	}
	l.log.Info().Str("product", name).Int64("amount", amount).Int64("quantity", updated.Quantity).Msg("stock agregado")
	return updated, nil
}

// GetStock devuelve la cantidad actual del producto.
func (l *Ledger) GetStock(ctx context.Context, name string) (int64, error) {
	product, err := l.GetProduct(ctx, name)
	if err != nil {
		return 0, err
	}
	return product.Quantity, nil
}

// GetProduct obtiene un producto por nombre.
func (l *Ledger) GetProduct(ctx context.Context, name string) (*entity.Product, error) {
	product, err := l.productRepo.GetByName(ctx, entity.NormalizeProductName(name))
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	return product, nil
}

// ListProducts lista productos con paginación.
func (l *Ledger) ListProducts(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	return l.productRepo.List(ctx, limit, offset)
}

// ListMovements lista el libro de movimientos de un producto.
func (l *Ledger) ListMovements(ctx context.Context, name string, limit, offset int) ([]*entity.StockMovement, error) {
	product, err := l.GetProduct(ctx, name)
	if err != nil {
		return nil, err
	}
	return l.movRepo.ListByProduct(ctx, product.Name, limit, offset)
}

// CheckAvailability valida una reserva sin ejecutarla y devuelve la instantánea que produciría.
func (l *Ledger) CheckAvailability(ctx context.Context, name string, amount int64) (entity.ProductSnapshot, error) {
	if amount <= 0 {
		return entity.ProductSnapshot{}, domain.ErrInvalidInput
	}
	product, err := l.GetProduct(ctx, name)
	if err != nil {
		return entity.ProductSnapshot{}, err
	}
	if !product.CanReserve(amount) {
		return entity.ProductSnapshot{}, &domain.InsufficientStockError{
			Product: product.Name, Requested: amount, Available: product.Quantity,
		}
	}
	snap := product.Snapshot()
	snap.Remaining = product.Quantity - amount
	return snap, nil
}

// ReserveInTx descuenta amount del producto usando los repositorios de la transacción del caller.
// Bloquea la fila, verifica Quantity >= amount y registra un movimiento OUT con reference.
// Si retorna error el caller debe abortar su transacción.
func (l *Ledger) ReserveInTx(
	ctx context.Context,
	productRepo repository.ProductRepository,
	movRepo repository.StockMovementRepository,
	name string, amount int64,
	reference, actor string,
) (entity.ProductSnapshot, error) {
	if amount <= 0 {
		return entity.ProductSnapshot{}, domain.ErrInvalidInput
	}
	name = entity.NormalizeProductName(name)
	product, err := productRepo.GetByNameForUpdate(ctx, name)
	if err != nil {
		return entity.ProductSnapshot{}, err
	}
	if product == nil {
		return entity.ProductSnapshot{}, domain.ErrProductNotFound
	}
	if !product.CanReserve(amount) {
		return entity.ProductSnapshot{}, &domain.InsufficientStockError{
			Product: name, Requested: amount, Available: product.Quantity,
		}
	}
	now := l.now()
	product.Quantity -= amount
	if err := productRepo.UpdateQuantity(ctx, name, product.Quantity, now); err != nil {
		return entity.ProductSnapshot{}, err
	}
	if err := movRepo.Create(ctx, &entity.StockMovement{
		ID:          uuid.New().String(),
		ProductName: name,
		Type:        entity.MovementTypeOUT,
		Quantity:    -amount,
		Balance:     product.Quantity,
		Reference:   reference,
		CreatedBy:   actor,
		CreatedAt:   now,
	}); err != nil {
		return entity.ProductSnapshot{}, err
	}
	return product.Snapshot(), nil
}

// ReleaseInTx compensa una reserva previa de la misma transacción (devuelve amount al producto).
func (l *Ledger) ReleaseInTx(
	ctx context.Context,
	productRepo repository.ProductRepository,
	movRepo repository.StockMovementRepository,
	name string, amount int64,
	reference, actor string,
) error {
	name = entity.NormalizeProductName(name)
	product, err := productRepo.GetByNameForUpdate(ctx, name)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrProductNotFound
	}
	now := l.now()
	product.Quantity += amount
	if err := productRepo.UpdateQuantity(ctx, name, product.Quantity, now); err != nil {
		return err
	}
	return movRepo.Create(ctx, &entity.StockMovement{
		ID:          uuid.New().String(),
		ProductName: name,
		Type:        entity.MovementTypeRELEASE,
		Quantity:    amount,
		Balance:     product.Quantity,
		Reference:   reference,
		CreatedBy:   actor,
		CreatedAt:   now,
	})
}
