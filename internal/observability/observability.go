// Package observability sets up structured logging and the Prometheus
// metrics of the conversion service.
package observability

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// NewLogger builds a slog logger writing to stderr. format is "json" or
// "text"; level is debug, info, warn or error (default info).
func NewLogger(level, format string) *slog.Logger {
	return newLogger(os.Stderr, level, format)
}

func newLogger(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	if strings.EqualFold(format, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Metrics holds the Prometheus collectors of the conversion service.
type Metrics struct {
	MessagesReceived  *prometheus.CounterVec   // labels: source={http,nats,cli}
	Conversions       *prometheus.CounterVec   // labels: report_type, status
	Issues            *prometheus.CounterVec   // labels: kind
	ConvertDuration   *prometheus.HistogramVec // labels: report_type
	Reconstructions   *prometheus.CounterVec   // labels: outcome={success,error}
	StoreErrors       prometheus.Counter
	SubscriberRunning prometheus.Gauge
}

const namespace = "tac_converter"

func newMetrics() *Metrics {
	return &Metrics{
		MessagesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_received_total",
			Help:      "TAC messages received by source.",
		}, []string{"source"}),
		Conversions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conversions_total",
			Help:      "Conversions by report type and status.",
		}, []string{"report_type", "status"}),
		Issues: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "issues_total",
			Help:      "Conversion issues by kind.",
		}, []string{"kind"}),
		ConvertDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "convert_duration_seconds",
			Help:      "Time to tokenize, build and resolve one message.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}, []string{"report_type"}),
		Reconstructions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconstructions_total",
			Help:      "Model to TAC reconstructions by outcome.",
		}, []string{"outcome"}),
		StoreErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_errors_total",
			Help:      "Failures writing conversions to the archive.",
		}),
		SubscriberRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "subscriber_running",
			Help:      "1 while the NATS subscriber is active.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.MessagesReceived, m.Conversions, m.Issues, m.ConvertDuration,
		m.Reconstructions, m.StoreErrors, m.SubscriberRunning,
	}
}

// NewMetrics creates the metrics and registers them with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates metrics on a fresh registry so tests can
// build several without "already registered" panics.
func NewMetricsForTesting() *Metrics {
	m := newMetrics()
	prometheus.NewRegistry().MustRegister(m.collectors()...)
	return m
}
