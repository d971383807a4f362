package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/logistica-api/internal/domain/entity"
)

// CreateProductRequest entrada para registrar un producto.
type CreateProductRequest struct {
	Name           string          `json:"name" validate:"required,min=1,max=200"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	MinTemperature int             `json:"min_temperature"`
	MaxTemperature int             `json:"max_temperature" validate:"gtefield=MinTemperature"`
}

// AddStockRequest entrada para sumar stock.
type AddStockRequest struct {
	Amount int64 `json:"amount" validate:"required,gt=0"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	Name           string          `json:"name"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	MinTemperature int             `json:"min_temperature"`
	MaxTemperature int             `json:"max_temperature"`
	Quantity       int64           `json:"quantity"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// StockResponse cantidad actual de un producto.
type StockResponse struct {
	Name     string `json:"name"`
	Quantity int64  `json:"quantity"`
}

// StockMovementResponse asiento del libro de inventario.
type StockMovementResponse struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Quantity  int64     `json:"quantity"`
	Balance   int64     `json:"balance"`
	Reference string    `json:"reference,omitempty"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// StockMovementListResponse lista paginada de movimientos.
type StockMovementListResponse struct {
	Items []StockMovementResponse `json:"items"`
	Page  PageResponse            `json:"page"`
}

// ToProductResponse convierte la entidad a DTO.
func ToProductResponse(p *entity.Product) ProductResponse {
	return ProductResponse{
		Name:           p.Name,
		UnitPrice:      p.UnitPrice,
		MinTemperature: p.MinTemperature,
		MaxTemperature: p.MaxTemperature,
		Quantity:       p.Quantity,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

// ToStockMovementResponse convierte la entidad a DTO.
func ToStockMovementResponse(m *entity.StockMovement) StockMovementResponse {
	return StockMovementResponse{
		ID:        m.ID,
		Type:      m.Type,
		Quantity:  m.Quantity,
		Balance:   m.Balance,
		Reference: m.Reference,
		CreatedBy: m.CreatedBy,
		CreatedAt: m.CreatedAt,
	}
}
