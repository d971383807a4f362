package entity

import "time"

// Tipos de movimiento de stock.
const (
	MovementTypeIN      = "IN"      // entrada de stock
	MovementTypeOUT     = "OUT"     // reserva para un trato
	MovementTypeRELEASE = "RELEASE" // compensación de una reserva no confirmada
)

// StockMovement asiento del libro de inventario. Quantity es positiva en IN/RELEASE y negativa en OUT.
type StockMovement struct {
	ID          string
	ProductName string
	Type        string
	Quantity    int64
	Balance     int64  // cantidad del producto después del movimiento
	Reference   string // ID del trato cuando aplica
	CreatedBy   string
	CreatedAt   time.Time
}
