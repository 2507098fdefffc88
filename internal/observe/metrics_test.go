package observe

import (
	"context"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) (metricdata.Metrics, bool) {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m, true
			}
		}
	}
	return metricdata.Metrics{}, false
}

func TestNewMetricsCreatesAllInstruments(t *testing.T) {
	m, _ := newTestMetrics(t)
	if m.FrameDuration == nil || m.FramesProcessed == nil || m.GateSkips == nil ||
		m.LoudTransitions == nil || m.CaptureWarnings == nil || m.NoiseFloor == nil ||
		m.HTTPRequestDuration == nil {
		t.Error("NewMetrics left an instrument nil")
	}
}

func TestRecordDecision(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordDecision(ctx, true)
	m.RecordDecision(ctx, false)
	m.RecordDecision(ctx, false)

	rm := collect(t, reader)
	metric, ok := findMetric(rm, "soundgate.frames.processed")
	if !ok {
		t.Fatal("soundgate.frames.processed not collected")
	}
	sum, ok := metric.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("unexpected data type %T", metric.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	if total != 3 {
		t.Errorf("total frames recorded = %d, want 3", total)
	}
	if len(sum.DataPoints) != 2 {
		t.Errorf("got %d attribute sets, want 2 (loud and quiet)", len(sum.DataPoints))
	}
}

func TestRecordTransition(t *testing.T) {
	m, reader := newTestMetrics(t)
	m.RecordTransition(context.Background(), true)

	rm := collect(t, reader)
	if _, ok := findMetric(rm, "soundgate.loud.transitions"); !ok {
		t.Fatal("soundgate.loud.transitions not collected")
	}
}

func TestRecordOnNilInstrumentsIsSafe(t *testing.T) {
	m := &Metrics{}
	m.RecordDecision(context.Background(), true)
	m.RecordTransition(context.Background(), false)
}
