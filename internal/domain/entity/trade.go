package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/logistica-api/internal/domain/logistics"
)

// Trade representa un trato: una reserva de inventario para un cliente más el estado de su envío.
// Todo excepto TransportState y UpdatedAt es inmutable después de crearse.
type Trade struct {
	ID             string
	Customer       string
	ProductName    string
	MinTemperature int // copia del producto al crear el trato
	MaxTemperature int
	Price          decimal.Decimal // precio unitario × cantidad
	Quantity       int64
	TransportState logistics.TransportState
	CreatedBy      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewTrade construye un trato en estado Created a partir de la instantánea reservada.
func NewTrade(id, customer, createdBy string, snap ProductSnapshot, quantity int64, now time.Time) *Trade {
	return &Trade{
		ID:             id,
		Customer:       customer,
		ProductName:    snap.Name,
		MinTemperature: snap.MinTemperature,
		MaxTemperature: snap.MaxTemperature,
		Price:          snap.UnitPrice.Mul(decimal.NewFromInt(quantity)),
		Quantity:       quantity,
		TransportState: logistics.StateCreated,
		CreatedBy:      createdBy,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// TradeTransition registro histórico de un cambio de estado.
type TradeTransition struct {
	ID      string
	TradeID string
	From    logistics.TransportState
	To      logistics.TransportState
	Actor   string
	At      time.Time
}

// TradeFilter filtros opcionales para listar tratos.
type TradeFilter struct {
	Customer string
	State    *logistics.TransportState
}
