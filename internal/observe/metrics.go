// Package observe provides application-wide observability primitives for
// soundgate: OpenTelemetry metrics, structured logging helpers, and HTTP
// middleware for the diagnostics server.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can be
// scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all soundgate metrics.
const meterName = "github.com/soundgate/soundgate"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// FrameDuration tracks per-frame classification latency. The pipeline
	// runs inside the capture callback, so this must stay well under one
	// frame period (~46 ms at 2048/44100).
	FrameDuration metric.Float64Histogram

	// FramesProcessed counts classified frames. Use with attribute:
	//   attribute.String("decision", "loud"|"quiet")
	FramesProcessed metric.Int64Counter

	// GateSkips counts frames rejected by the noise gate before spectral
	// analysis.
	GateSkips metric.Int64Counter

	// LoudTransitions counts debounced state changes. Use with attribute:
	//   attribute.String("to", "loud"|"quiet")
	LoudTransitions metric.Int64Counter

	// CaptureWarnings counts frames delivered with a capture status
	// (overflow, underflow).
	CaptureWarnings metric.Int64Counter

	// NoiseFloor records the current adaptive floor estimate.
	NoiseFloor metric.Float64Gauge

	// HTTPRequestDuration tracks diagnostics-server request time. Use with
	// attributes: attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// frameLatencyBuckets defines histogram bucket boundaries (in seconds) for
// per-frame processing, which is orders of magnitude faster than the frame
// period.
var frameLatencyBuckets = []float64{
	0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05,
}

// httpLatencyBuckets covers the diagnostics endpoints.
var httpLatencyBuckets = []float64{
	0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.FrameDuration, err = m.Float64Histogram("soundgate.frame.duration",
		metric.WithDescription("Latency of per-frame classification."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(frameLatencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.FramesProcessed, err = m.Int64Counter("soundgate.frames.processed",
		metric.WithDescription("Number of classified audio frames."),
	); err != nil {
		return nil, err
	}
	if met.GateSkips, err = m.Int64Counter("soundgate.gate.skips",
		metric.WithDescription("Frames rejected by the noise gate before the FFT."),
	); err != nil {
		return nil, err
	}
	if met.LoudTransitions, err = m.Int64Counter("soundgate.loud.transitions",
		metric.WithDescription("Debounced loud/quiet state changes."),
	); err != nil {
		return nil, err
	}
	if met.CaptureWarnings, err = m.Int64Counter("soundgate.capture.warnings",
		metric.WithDescription("Frames delivered with a capture status flag."),
	); err != nil {
		return nil, err
	}
	if met.NoiseFloor, err = m.Float64Gauge("soundgate.noise.floor",
		metric.WithDescription("Current adaptive noise floor estimate (RMS)."),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequestDuration, err = m.Float64Histogram("soundgate.http.request.duration",
		metric.WithDescription("Diagnostics server request processing time."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(httpLatencyBuckets...),
	); err != nil {
		return nil, err
	}

	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the process-wide [Metrics] instance backed by the
// global OTel meter provider. The first call creates the instruments;
// creation errors are silently replaced by no-op instruments, which is
// acceptable for the default path (tests use [NewMetrics] directly).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		m, err := NewMetrics(otel.GetMeterProvider())
		if err != nil {
			m = &Metrics{}
		}
		defaultMetrics = m
	})
	return defaultMetrics
}

// RecordFrame records one frame's classification latency in seconds.
func (m *Metrics) RecordFrame(ctx context.Context, seconds float64) {
	if m.FrameDuration != nil {
		m.FrameDuration.Record(ctx, seconds)
	}
}

// RecordGateSkip counts a frame rejected by the noise gate.
func (m *Metrics) RecordGateSkip(ctx context.Context) {
	if m.GateSkips != nil {
		m.GateSkips.Add(ctx, 1)
	}
}

// RecordCaptureWarning counts a frame delivered with a capture status flag.
func (m *Metrics) RecordCaptureWarning(ctx context.Context) {
	if m.CaptureWarnings != nil {
		m.CaptureWarnings.Add(ctx, 1)
	}
}

// RecordNoiseFloor records the current adaptive floor estimate.
func (m *Metrics) RecordNoiseFloor(ctx context.Context, floor float64) {
	if m.NoiseFloor != nil {
		m.NoiseFloor.Record(ctx, floor)
	}
}

// RecordDecision increments [Metrics.FramesProcessed] with the decision
// attribute derived from loud.
func (m *Metrics) RecordDecision(ctx context.Context, loud bool) {
	if m.FramesProcessed == nil {
		return
	}
	decision := "quiet"
	if loud {
		decision = "loud"
	}
	m.FramesProcessed.Add(ctx, 1, metric.WithAttributes(attribute.String("decision", decision)))
}

// RecordTransition increments [Metrics.LoudTransitions] with the target
// state.
func (m *Metrics) RecordTransition(ctx context.Context, toLoud bool) {
	if m.LoudTransitions == nil {
		return
	}
	to := "quiet"
	if toLoud {
		to = "loud"
	}
	m.LoudTransitions.Add(ctx, 1, metric.WithAttributes(attribute.String("to", to)))
}
