package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheus_Contadores(t *testing.T) {
	m := NewPrometheus("logistica")
	m.TradeCreated("Leche", false)
	m.TradeCreated("Leche", false)
	m.TradeCreated("Leche", true)
	m.TradeRejected("insufficient_stock")
	m.TradeTransitioned("Created", "InTransit")
	m.ObserveHTTP("POST", "/api/trades", 201)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.created.WithLabelValues("Leche", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.created.WithLabelValues("Leche", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rejected.WithLabelValues("insufficient_stock")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitioned.WithLabelValues("Created", "InTransit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("POST", "/api/trades", "201")))
}

func TestPrometheus_Handler(t *testing.T) {
	m := NewPrometheus("logistica")
	m.TradeRejected("unauthorized")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), `logistica_trades_rejected_total{reason="unauthorized"} 1`)
}
