package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/logistica-api/internal/domain/entity"
)

// CreateTradeRequest entrada para crear un trato.
type CreateTradeRequest struct {
	Customer    string `json:"customer" validate:"required,max=100"`
	ProductName string `json:"product_name" validate:"required,max=200"`
	Quantity    int64  `json:"quantity" validate:"required,gt=0"`
}

// TradeListRequest filtros del listado de tratos.
type TradeListRequest struct {
	PageRequest
	Customer string `query:"customer"`
	State    string `query:"state" validate:"omitempty,oneof=Created InTransit Complete Cancel Done"`
}

// TradeResponse salida de un trato.
type TradeResponse struct {
	ID             string          `json:"id"`
	Customer       string          `json:"customer"`
	ProductName    string          `json:"product_name"`
	MinTemperature int             `json:"min_temperature"`
	MaxTemperature int             `json:"max_temperature"`
	Price          decimal.Decimal `json:"price"`
	Quantity       int64           `json:"quantity"`
	TransportState string          `json:"transport_state"`
	CreatedBy      string          `json:"created_by"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	DryRun         bool            `json:"dry_run,omitempty"`
}

// TradeListResponse lista paginada de tratos.
type TradeListResponse struct {
	Items []TradeResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}

// TradeTransitionResponse registro del historial de estados.
type TradeTransitionResponse struct {
	From  string    `json:"from"`
	To    string    `json:"to"`
	Actor string    `json:"actor"`
	At    time.Time `json:"at"`
}

// ToTradeResponse convierte la entidad a DTO.
func ToTradeResponse(t *entity.Trade) TradeResponse {
	return TradeResponse{
		ID:             t.ID,
		Customer:       t.Customer,
		ProductName:    t.ProductName,
		MinTemperature: t.MinTemperature,
		MaxTemperature: t.MaxTemperature,
		Price:          t.Price,
		Quantity:       t.Quantity,
		TransportState: t.TransportState.String(),
		CreatedBy:      t.CreatedBy,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

// ToTradeTransitionResponse convierte la entidad a DTO.
func ToTradeTransitionResponse(tr *entity.TradeTransition) TradeTransitionResponse {
	return TradeTransitionResponse{
		From:  tr.From.String(),
		To:    tr.To.String(),
		Actor: tr.Actor,
		At:    tr.At,
	}
}
