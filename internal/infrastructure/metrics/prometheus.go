// Package metrics expone contadores de negocio y HTTP en formato Prometheus.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/logistica-api/internal/application/trade"
)

var _ trade.Metrics = (*Prometheus)(nil)

// Prometheus implementa trade.Metrics sobre un registro propio (no el global).
type Prometheus struct {
	registry     *prometheus.Registry
	created      *prometheus.CounterVec
	rejected     *prometheus.CounterVec
	transitioned *prometheus.CounterVec
	httpRequests *prometheus.CounterVec
}

// NewPrometheus crea y registra los colectores.
func NewPrometheus(namespace string) *Prometheus {
	m := &Prometheus{
		registry: prometheus.NewRegistry(),
		created: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trades_created_total",
			Help:      "Tratos creados (o previsualizados con dry_run) por producto.",
		}, []string{"product", "dry_run"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trades_rejected_total",
			Help:      "Creaciones de tratos rechazadas por motivo.",
		}, []string{"reason"}),
		transitioned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trade_transitions_total",
			Help:      "Transiciones de estado aplicadas.",
		}, []string{"from", "to"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Peticiones HTTP por método, ruta y código.",
		}, []string{"method", "route", "status"}),
	}
	m.registry.MustRegister(
		m.created, m.rejected, m.transitioned, m.httpRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Prometheus) TradeCreated(product string, dryRun bool) {
	m.created.WithLabelValues(product, strconv.FormatBool(dryRun)).Inc()
}

func (m *Prometheus) TradeRejected(reason string) {
	m.rejected.WithLabelValues(reason).Inc()
}

func (m *Prometheus) TradeTransitioned(from, to string) {
	m.transitioned.WithLabelValues(from, to).Inc()
}

// ObserveHTTP cuenta una petición; route es el patrón de la ruta, no la URL concreta.
func (m *Prometheus) ObserveHTTP(method, route string, status int) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

// Handler sirve el registro en formato de exposición Prometheus.
func (m *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
