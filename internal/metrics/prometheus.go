package metrics

import "github.com/prometheus/client_golang/prometheus"

// PrometheusCollector provides Prometheus metrics for continuity persistence.
type PrometheusCollector struct {
	operationsTotal *prometheus.CounterVec
	recoveriesTotal *prometheus.CounterVec
	entities        *prometheus.GaugeVec
	registry        *prometheus.Registry
}

// NewCollector creates a Prometheus collector on its own registry.
func NewCollector() *PrometheusCollector {
	registry := prometheus.NewRegistry()

	operationsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "serieskeeper_operations_total",
			Help: "Total number of persistence operations by type and status",
		},
		[]string{"operation", "status"},
	)

	recoveriesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "serieskeeper_recoveries_total",
			Help: "Loads that were served by a recovery source other than the main state file",
		},
		[]string{"source"},
	)

	entities := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "serieskeeper_entities",
			Help: "Entities held by the series at the last save or load",
		},
		[]string{"kind"},
	)

	registry.MustRegister(operationsTotal)
	registry.MustRegister(recoveriesTotal)
	registry.MustRegister(entities)

	return &PrometheusCollector{
		operationsTotal: operationsTotal,
		recoveriesTotal: recoveriesTotal,
		entities:        entities,
		registry:        registry,
	}
}

func (m *PrometheusCollector) RecordOperation(operation string, status string) {
	m.operationsTotal.WithLabelValues(operation, status).Inc()
}

func (m *PrometheusCollector) RecordRecovery(source string) {
	m.recoveriesTotal.WithLabelValues(source).Inc()
}

func (m *PrometheusCollector) SetEntityCount(kind string, count int) {
	m.entities.WithLabelValues(kind).Set(float64(count))
}

// Registry returns the Prometheus registry for HTTP exposure by the embedding pipeline.
func (m *PrometheusCollector) Registry() *prometheus.Registry {
	return m.registry
}
