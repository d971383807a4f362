package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/logistica-api/internal/application/trade"
	"github.com/jhoicas/logistica-api/internal/infrastructure/events"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return w.err
}

func (w *fakeWriter) Close() error { return nil }

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := events.NewKafkaPublisher(w)
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	err := p.Publish(context.Background(), trade.Event{
		Type: trade.EventCreated, TradeID: "t-1", Customer: "c1", ProductName: "Leche",
		Quantity: 5, From: "Idle", To: "Created", Actor: "owner", At: at,
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "t-1", string(msg.Key))
	assert.Equal(t, at, msg.Time)
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, trade.EventCreated, string(msg.Headers[0].Value))

	var ev trade.Event
	require.NoError(t, json.Unmarshal(msg.Value, &ev))
	assert.Equal(t, "Created", ev.To)
	assert.Equal(t, int64(5), ev.Quantity)
}

func TestKafkaPublisher_ErrorDelBroker(t *testing.T) {
	p := events.NewKafkaPublisher(&fakeWriter{err: errors.New("broker caído")})
	err := p.Publish(context.Background(), trade.Event{Type: trade.EventAdvanced, TradeID: "t-1"})
	assert.ErrorContains(t, err, "broker caído")
}

func TestNewKafkaWriter(t *testing.T) {
	w := events.NewKafkaWriter([]string{"localhost:9092"}, "trade-events")
	assert.Equal(t, "trade-events", w.Topic)
	assert.IsType(t, &kafka.Hash{}, w.Balancer)
}
