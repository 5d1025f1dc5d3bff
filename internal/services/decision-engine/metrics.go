package decision_engine

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics raccoglie i contatori del servizio su un registry dedicato.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	reg              *prometheus.Registry
	decisions        *prometheus.CounterVec
	forecastFailures prometheus.Counter
	requestErrors    *prometheus.CounterVec
	duration         prometheus.Histogram
}

func NewMetrics() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pump_decisions_total",
			Help: "Pump decisions by deciding gate and action.",
		}, []string{"gate", "action"}),
		forecastFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pump_forecast_failures_total",
			Help: "Forecast provider failures treated as no rain.",
		}),
		requestErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pump_request_errors_total",
			Help: "Rejected decision requests by kind.",
		}, []string{"kind"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pump_decision_duration_seconds",
			Help:    "Time spent deciding, forecast call included.",
			Buckets: []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
	}
	m.reg.MustRegister(m.decisions, m.forecastFailures, m.requestErrors, m.duration)
	return m
}

func (m *Metrics) ObserveDecision(gate string, action int, took time.Duration) {
	if m == nil {
		return
	}
	a := "off"
	if action == 1 {
		a = "on"
	}
	m.decisions.WithLabelValues(gate, a).Inc()
	m.duration.Observe(took.Seconds())
}

func (m *Metrics) ForecastFailed() {
	if m == nil {
		return
	}
	m.forecastFailures.Inc()
}

// RequestRejected: kind is "validation" or "internal".
func (m *Metrics) RequestRejected(kind string) {
	if m == nil {
		return
	}
	m.requestErrors.WithLabelValues(kind).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
