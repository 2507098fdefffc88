// Package app wires the soundgate subsystems into a running application.
//
// The App struct owns the full lifecycle: New creates the detector and the
// diagnostics server, Run executes the frame-processing loop until the source
// ends or the context is cancelled, and shutdown tears everything down in
// order. The capture source is injected so tests (and the offline analyze
// command) can substitute scripted or file-backed sources for the live
// microphone.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/soundgate/soundgate/internal/config"
	"github.com/soundgate/soundgate/internal/health"
	"github.com/soundgate/soundgate/internal/observe"
	"github.com/soundgate/soundgate/pkg/audio"
	"github.com/soundgate/soundgate/pkg/classify"
)

// shutdownTimeout bounds the diagnostics server drain on exit.
const shutdownTimeout = 5 * time.Second

// FrameHook is called after every classified frame. Used by the CLI to print
// transitions and by tests to observe pipeline output; must not block.
type FrameHook func(audio.Frame, classify.Result)

// App owns the detector, the frame loop and the diagnostics HTTP server.
type App struct {
	cfg      *config.Config
	source   audio.Source
	detector *classify.Detector
	metrics  *observe.Metrics
	liveness *health.StreamLiveness
	hook     FrameHook

	srv *http.Server

	stopOnce sync.Once
}

// Option is a functional option for New. Use these to inject test doubles.
type Option func(*App)

// WithMetrics injects a metrics instance instead of the process-wide default.
func WithMetrics(m *observe.Metrics) Option {
	return func(a *App) { a.metrics = m }
}

// WithFrameHook registers a callback invoked after every classified frame.
func WithFrameHook(h FrameHook) Option {
	return func(a *App) { a.hook = h }
}

// New creates an App processing frames from source according to cfg. The
// detector configuration is validated here, before any capture starts.
func New(cfg *config.Config, source audio.Source, opts ...Option) (*App, error) {
	detector, err := classify.New(cfg.Detector())
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	a := &App{
		cfg:      cfg,
		source:   source,
		detector: detector,
	}
	for _, o := range opts {
		o(a)
	}
	if a.metrics == nil {
		a.metrics = observe.DefaultMetrics()
	}

	if addr := cfg.Server.ListenAddr; addr != "" {
		frameDur := time.Duration(cfg.Detector().FrameSize) * time.Second /
			time.Duration(cfg.Detector().SampleRate)
		a.liveness = health.NewStreamLiveness(10 * frameDur)

		mux := http.NewServeMux()
		health.New(a.liveness.Checker()).Register(mux)
		mux.Handle("GET /metrics", promhttp.Handler())

		a.srv = &http.Server{
			Addr:    addr,
			Handler: observe.Middleware(a.metrics)(mux),
		}
	}

	return a, nil
}

// Detector returns the app's classification pipeline, for polling IsLoud and
// adjusting sensitivity while Run is active.
func (a *App) Detector() *classify.Detector { return a.detector }

// Run starts the source and processes frames until the stream ends or ctx is
// cancelled. The diagnostics server, when configured, serves for the same
// lifetime. Source teardown is guaranteed on every exit path so the capture
// device is always released.
func (a *App) Run(ctx context.Context) error {
	frames, err := a.source.Start(ctx)
	if err != nil {
		return fmt.Errorf("app: start audio source: %w", err)
	}
	defer a.stop()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		// Stream end stops the whole app, including the server.
		defer cancel()
		return a.processFrames(gctx, frames)
	})

	if a.srv != nil {
		g.Go(func() error {
			slog.Info("diagnostics server listening", "addr", a.srv.Addr)
			if err := a.srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("app: diagnostics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			sctx, scancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer scancel()
			return a.srv.Shutdown(sctx)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// processFrames is the classification loop. It runs on a single goroutine;
// the detector's per-frame state is touched nowhere else.
func (a *App) processFrames(ctx context.Context, frames <-chan audio.Frame) error {
	wasLoud := false

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case frame, ok := <-frames:
			if !ok {
				slog.Info("audio stream ended")
				return nil
			}

			if frame.Status != "" {
				a.metrics.RecordCaptureWarning(ctx)
				slog.Warn("capture status", "status", frame.Status)
			}

			start := time.Now()
			res, err := a.detector.ProcessFrame(frame)
			if err != nil {
				// A malformed frame is a source bug; skip it rather than
				// aborting the stream.
				slog.Warn("frame rejected", "err", err)
				continue
			}
			a.metrics.RecordFrame(ctx, time.Since(start).Seconds())

			a.metrics.RecordDecision(ctx, res.Raw)
			if res.Gated {
				a.metrics.RecordGateSkip(ctx)
			}
			a.metrics.RecordNoiseFloor(ctx, res.Features.NoiseFloor)

			if res.Loud != wasLoud {
				wasLoud = res.Loud
				a.metrics.RecordTransition(ctx, res.Loud)
				slog.Info("state change",
					"loud", res.Loud,
					"rms", res.Features.RMS,
					"band_ratio", res.Features.BandRatio,
					"centroid_hz", res.Features.CentroidHz,
					"onset_ratio", res.Features.OnsetRatio,
				)
			}

			if a.liveness != nil {
				a.liveness.Observe()
			}
			if a.hook != nil {
				a.hook(frame, res)
			}
		}
	}
}

// stop releases the audio source exactly once.
func (a *App) stop() {
	a.stopOnce.Do(func() {
		if err := a.source.Stop(); err != nil {
			slog.Warn("audio source stop", "err", err)
		}
	})
}
