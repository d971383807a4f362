package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

// Product representa un producto del registro de mercancías.
// Name es la llave única; Quantity solo cambia por entradas de stock, reservas o compensaciones.
type Product struct {
	Name           string
	UnitPrice      decimal.Decimal // precio unitario, nunca negativo
	MinTemperature int             // límites de temperatura de transporte, Min <= Max
	MaxTemperature int
	Quantity       int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ProductSnapshot valores del producto en el momento exacto de una reserva.
type ProductSnapshot struct {
	Name           string
	UnitPrice      decimal.Decimal
	MinTemperature int
	MaxTemperature int
	Remaining      int64 // cantidad que queda después de la reserva
}

// Snapshot copia los campos que un trato congela al crearse.
func (p *Product) Snapshot() ProductSnapshot {
	return ProductSnapshot{
		Name:           p.Name,
		UnitPrice:      p.UnitPrice,
		MinTemperature: p.MinTemperature,
		MaxTemperature: p.MaxTemperature,
		Remaining:      p.Quantity,
	}
}

// CanReserve indica si hay stock suficiente para la cantidad pedida.
func (p *Product) CanReserve(quantity int64) bool {
	return quantity > 0 && quantity <= p.Quantity
}

// NormalizeProductName recorta espacios y normaliza a NFC, para que dos nombres
// visualmente idénticos no registren dos productos distintos.
func NormalizeProductName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}
