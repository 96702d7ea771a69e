package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusCollector_RecordOperation(t *testing.T) {
	collector := NewCollector()

	collector.RecordOperation("save", StatusSuccess)
	collector.RecordOperation("save", StatusSuccess)
	collector.RecordOperation("save", StatusError)
	collector.RecordOperation("load", StatusSuccess)

	if got := testutil.CollectAndCount(collector.operationsTotal); got != 3 {
		t.Fatalf("expected 3 label combinations, got %d", got)
	}
	if got := testutil.ToFloat64(collector.operationsTotal.WithLabelValues("save", StatusSuccess)); got != 2 {
		t.Fatalf("expected 2 successful saves, got %v", got)
	}
	if got := testutil.ToFloat64(collector.operationsTotal.WithLabelValues("save", StatusError)); got != 1 {
		t.Fatalf("expected 1 failed save, got %v", got)
	}
}

func TestPrometheusCollector_RecoveryAndEntities(t *testing.T) {
	collector := NewCollector()

	collector.RecordRecovery("backup")
	collector.SetEntityCount("character", 12)
	collector.SetEntityCount("character", 14)

	if got := testutil.ToFloat64(collector.recoveriesTotal.WithLabelValues("backup")); got != 1 {
		t.Fatalf("expected 1 backup recovery, got %v", got)
	}
	if got := testutil.ToFloat64(collector.entities.WithLabelValues("character")); got != 14 {
		t.Fatalf("expected gauge to hold latest value, got %v", got)
	}
	if collector.Registry() == nil {
		t.Fatalf("expected registry")
	}
}

func TestNoopCollector(t *testing.T) {
	collector := NewNoop()
	collector.RecordOperation("save", StatusSuccess)
	collector.RecordRecovery("minimal")
	collector.SetEntityCount("plot_thread", 1)
}
