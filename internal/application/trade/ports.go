package trade

import (
	"context"
	"time"
)

// Tipos de evento del ciclo de vida de un trato.
const (
	EventCreated   = "trade.created"
	EventAdvanced  = "trade.advanced"
	EventCancelled = "trade.cancelled"
)

// Event notificación publicada después del commit.
type Event struct {
	Type        string    `json:"type"`
	TradeID     string    `json:"trade_id"`
	Customer    string    `json:"customer"`
	ProductName string    `json:"product_name"`
	Quantity    int64     `json:"quantity"`
	From        string    `json:"from"`
	To          string    `json:"to"`
	Actor       string    `json:"actor"`
	At          time.Time `json:"at"`
}

// EventPublisher puerto de salida para eventos (Kafka en producción).
// Un error de publicación no deshace el commit; el registro solo lo loguea.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// Metrics puerto para contadores de negocio (Prometheus en producción).
type Metrics interface {
	TradeCreated(product string, dryRun bool)
	TradeRejected(reason string)
	TradeTransitioned(from, to string)
}

// NopPublisher descarta los eventos.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

// NopMetrics descarta las métricas.
type NopMetrics struct{}

func (NopMetrics) TradeCreated(string, bool) {}
func (NopMetrics) TradeRejected(string) {}
func (NopMetrics) TradeTransitioned(string, string) {}
