// Package classify decides whether short frames of a live monaural stream are
// intentional sound — a deliberate voice burst, clap or shout — or ambient
// background noise such as traffic rumble, hum or fan noise.
//
// Each frame passes synchronously through an adaptive noise gate, spectral
// feature extraction (band-energy ratio and centroid), onset detection, a
// weighted-majority decision engine and a hysteretic debouncer. The only
// externally observable state is the debounced boolean, published atomically
// so a consumer loop can poll [Detector.IsLoud] at any rate without
// synchronising with the capture callback.
//
// Processing is designed to be called from the audio capture callback: every
// stage is a bounded computation over a fixed-size frame, with no blocking,
// no allocation on the steady-state path, and a short-circuit that skips the
// FFT entirely for clearly-quiet frames.
package classify

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/soundgate/soundgate/pkg/audio"
)

// Result reports how a single frame was classified.
type Result struct {
	// Loud is the debounced state after this frame, identical to what
	// [Detector.IsLoud] returns until the next frame.
	Loud bool

	// Raw is the per-frame decision before debouncing.
	Raw bool

	// Gated is true when the noise gate rejected the frame before spectral
	// analysis; Features then carries only RMS and NoiseFloor.
	Gated bool

	// Features is the feature vector computed for this frame.
	Features Features
}

// Diagnostics is a read-only snapshot of detector state for observability and
// threshold tuning. Taking a snapshot never mutates the pipeline.
type Diagnostics struct {
	IsLoud          bool
	Counter         int
	MeanNoiseFloor  float64
	RecentCentroids []float64
	RecentOnsets    []float64
}

// Detector is the frame classification pipeline. Create one per stream with
// [New].
//
// ProcessFrame, Reset and Diagnostics serialise on an internal mutex; IsLoud
// and SetSensitivity are lock-free and safe to call concurrently with
// classification from any goroutine.
type Detector struct {
	cfg    Config
	engine decisionEngine

	loud atomic.Bool
	th   atomic.Pointer[Thresholds]
	sens atomic.Uint64 // math.Float64bits of the clamped sensitivity

	mu        sync.Mutex
	floor     *noiseFloor
	spectral  *spectralAnalyzer
	onset     *onsetDetector
	debounce  *debouncer
	smoother  *majoritySmoother
	centroids *ring[float64]
	onsets    *ring[float64]
}

// New validates cfg and builds a ready Detector. The FFT plan and frequency
// axis are precomputed here; per-frame processing does not allocate.
func New(cfg Config) (*Detector, error) {
	if cfg.Mode == "" {
		cfg.Mode = ModeFull
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("classify: invalid config: %w", err)
	}

	d := &Detector{
		cfg: cfg,
		engine: decisionEngine{
			floorMargin:    cfg.NoiseFloorMargin,
			centroidLowHz:  cfg.CentroidLowHz,
			centroidHighHz: cfg.CentroidHighHz,
		},
		floor:     newNoiseFloor(cfg.RMSHistorySize, cfg.NoiseFloorPercentile, cfg.DefaultNoiseFloor),
		spectral:  newSpectralAnalyzer(cfg.SampleRate, cfg.FrameSize, cfg.BandLowHz, cfg.BandHighHz),
		onset:     &onsetDetector{},
		debounce:  &debouncer{required: cfg.ConsecutiveFrames},
		smoother:  newMajoritySmoother(cfg.SimpleHistorySize),
		centroids: newRing[float64](cfg.CentroidHistorySize),
		onsets:    newRing[float64](cfg.OnsetHistorySize),
	}
	d.SetSensitivity(cfg.Sensitivity)
	return d, nil
}

// ProcessFrame classifies one frame and returns the result. It must be called
// from a single goroutine (the capture callback); it never blocks and its
// cost is bounded by one FFT of the configured frame size.
//
// Returns an error only when the frame length does not match the configured
// frame size — a contract violation by the source, not a stream condition.
func (d *Detector) ProcessFrame(frame audio.Frame) (Result, error) {
	if len(frame.Samples) != d.cfg.FrameSize {
		return Result{}, fmt.Errorf("classify: frame has %d samples, detector configured for %d",
			len(frame.Samples), d.cfg.FrameSize)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	rms := frame.RMS()
	energy := frame.Energy()
	floor := d.floor.Observe(rms)

	if d.cfg.Mode == ModeSimple {
		return d.processSimple(frame, rms, floor), nil
	}

	// Noise gate: skip the FFT for clearly-quiet frames. The onset detector
	// still observes the frame's energy so the previous-frame reference
	// stays in sync.
	if rms < floor*d.cfg.NoiseFloorMargin {
		d.onset.Detect(energy)
		loud := d.debounce.Observe(false)
		d.loud.Store(loud)
		return Result{
			Loud:     loud,
			Gated:    true,
			Features: Features{RMS: rms, NoiseFloor: floor},
		}, nil
	}

	bandRatio, centroidHz := d.spectral.Analyze(frame.Samples)
	onsetRatio := d.onset.Detect(energy)

	d.centroids.Push(centroidHz)
	d.onsets.Push(onsetRatio)

	f := Features{
		RMS:        rms,
		NoiseFloor: floor,
		BandRatio:  bandRatio,
		CentroidHz: centroidHz,
		OnsetRatio: onsetRatio,
	}

	raw := d.engine.Decide(f, *d.th.Load())
	loud := d.debounce.Observe(raw)
	d.loud.Store(loud)

	return Result{Loud: loud, Raw: raw, Features: f}, nil
}

// processSimple is the band-ratio-only variant: no gate, no onset or centroid
// checks, majority-of-history smoothing instead of the counter debounce.
func (d *Detector) processSimple(frame audio.Frame, rms, floor float64) Result {
	bandRatio, centroidHz := d.spectral.Analyze(frame.Samples)
	d.centroids.Push(centroidHz)

	raw := bandRatio > d.cfg.SimpleBandRatioThreshold
	loud := d.smoother.Observe(raw)
	d.loud.Store(loud)

	return Result{
		Loud: loud,
		Raw:  raw,
		Features: Features{
			RMS:        rms,
			NoiseFloor: floor,
			BandRatio:  bandRatio,
			CentroidHz: centroidHz,
		},
	}
}

// IsLoud returns the current debounced classification. Lock-free; safe to
// call at any rate from any goroutine.
func (d *Detector) IsLoud() bool {
	return d.loud.Load()
}

// SetSensitivity rederives the onset and band-ratio thresholds from the 0–1
// knob via [ThresholdsForSensitivity]. Out-of-range values are clamped. The
// new thresholds are published atomically and take effect from the next
// frame; safe to call concurrently with classification.
func (d *Detector) SetSensitivity(s float64) {
	s = clamp01(s)
	th := ThresholdsForSensitivity(s)
	d.th.Store(&th)
	d.sens.Store(math.Float64bits(s))
}

// Sensitivity returns the current clamped sensitivity value.
func (d *Detector) Sensitivity() float64 {
	return math.Float64frombits(d.sens.Load())
}

// Diagnostics returns a snapshot of the detector's observable state. The
// returned slices are copies; mutating them does not affect the detector.
func (d *Detector) Diagnostics() Diagnostics {
	d.mu.Lock()
	defer d.mu.Unlock()

	counter := d.debounce.Counter()
	if d.cfg.Mode == ModeSimple {
		counter = d.smoother.Count()
	}
	return Diagnostics{
		IsLoud:          d.loud.Load(),
		Counter:         counter,
		MeanNoiseFloor:  d.floor.Mean(),
		RecentCentroids: d.centroids.Values(),
		RecentOnsets:    d.onsets.Values(),
	}
}

// Reset clears all accumulated stream state — histories, the previous-frame
// onset reference and the debounce counter — without discarding the FFT plan
// or configuration. Use it when the stream is interrupted or restarted so
// stale state cannot bleed into the next segment.
func (d *Detector) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.floor.Reset()
	d.onset.Reset()
	d.debounce.Reset()
	d.smoother.Reset()
	d.centroids.Reset()
	d.onsets.Reset()
	d.loud.Store(false)
}
