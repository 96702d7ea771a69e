// Package metrics records persistence and recovery activity for a series.
package metrics

// Collector is the interface for metrics collection.
// NewNoop is the default; NewCollector backs it with Prometheus.
type Collector interface {
	RecordOperation(operation string, status string)
	RecordRecovery(source string)
	SetEntityCount(kind string, count int)
}

// Status labels for RecordOperation.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

type noopCollector struct{}

// NewNoop returns a collector that records nothing.
func NewNoop() Collector { return noopCollector{} }

func (noopCollector) RecordOperation(string, string) {}

func (noopCollector) RecordRecovery(string) {}

func (noopCollector) SetEntityCount(string, int) {}
