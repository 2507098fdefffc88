package classify

import (
	"errors"
	"fmt"
)

// Mode selects the feature set used by the detector.
type Mode string

const (
	// ModeFull runs the complete multi-feature pipeline: noise gate, band
	// ratio, spectral centroid, onset detection and weighted-majority fusion.
	ModeFull Mode = "full"

	// ModeSimple skips the gate and relies on the band-energy ratio alone,
	// smoothed by a short majority vote. Cheaper per frame, less robust
	// against broadband ambient noise.
	ModeSimple Mode = "simple"
)

// IsValid reports whether m is a recognised detector mode.
func (m Mode) IsValid() bool {
	return m == ModeFull || m == ModeSimple
}

// Config holds the parameters for a [Detector]. The zero value is not usable;
// start from [DefaultConfig] and override as needed. All fields are fixed
// after [New] except the thresholds derived from Sensitivity, which can be
// re-derived at runtime via [Detector.SetSensitivity].
type Config struct {
	// SampleRate is the audio sample rate in Hz. Must match the rate of the
	// frames passed to ProcessFrame. Typical: 44100.
	SampleRate int

	// FrameSize is the number of samples per frame. Must be a power of two
	// for the FFT. 2048 samples is ~46 ms at 44.1 kHz.
	FrameSize int

	// Mode selects the feature set. Defaults to [ModeFull].
	Mode Mode

	// BandLowHz / BandHighHz bound the target frequency band. Voice and
	// claps concentrate their energy in 500–4000 Hz; traffic rumble and
	// mains hum sit below it.
	BandLowHz  float64
	BandHighHz float64

	// CentroidLowHz / CentroidHighHz bound the accepted spectral centroid
	// range. Defaults 800–5000 Hz.
	CentroidLowHz  float64
	CentroidHighHz float64

	// NoiseFloorMargin scales the adaptive floor for the gate and the RMS
	// check: a frame counts as loud only above floor × margin. Default 1.5.
	NoiseFloorMargin float64

	// NoiseFloorPercentile is the percentile (0–100, exclusive) of the RMS
	// history used as the adaptive floor. A low percentile tracks the quiet
	// baseline even while loud events are frequent. Default 10.
	NoiseFloorPercentile float64

	// DefaultNoiseFloor is returned as the floor before enough RMS history
	// has accumulated. Default 0.002.
	DefaultNoiseFloor float64

	// ConsecutiveFrames is the debounce requirement: the raw per-frame
	// decision must accumulate this many net-positive frames before the
	// detector reports loud. Default 2 (~90 ms at 2048/44100).
	ConsecutiveFrames int

	// Sensitivity is the 0–1 knob mapped onto the onset and band-ratio
	// thresholds by [ThresholdsForSensitivity]. Default 0.5.
	Sensitivity float64

	// RMSHistorySize bounds the noise-floor history. Default 100 frames
	// (~4.6 s at 2048/44100).
	RMSHistorySize int

	// CentroidHistorySize and OnsetHistorySize bound the diagnostic
	// histories returned by [Detector.Diagnostics]. Defaults 10 and 8.
	CentroidHistorySize int
	OnsetHistorySize    int

	// SimpleBandRatioThreshold is the band-ratio cutoff used in [ModeSimple].
	// Default 0.3.
	SimpleBandRatioThreshold float64

	// SimpleHistorySize is the majority-vote window used in [ModeSimple].
	// Default 3 (loud when more than half the window is positive).
	SimpleHistorySize int
}

// DefaultConfig returns a Config with the tuned defaults for the given stream
// parameters. The numeric defaults are empirical; they are exposed as fields
// rather than constants so deployments can adjust them.
func DefaultConfig(sampleRate, frameSize int) Config {
	return Config{
		SampleRate:               sampleRate,
		FrameSize:                frameSize,
		Mode:                     ModeFull,
		BandLowHz:                500,
		BandHighHz:               4000,
		CentroidLowHz:            800,
		CentroidHighHz:           5000,
		NoiseFloorMargin:         1.5,
		NoiseFloorPercentile:     10,
		DefaultNoiseFloor:        0.002,
		ConsecutiveFrames:        2,
		Sensitivity:              0.5,
		RMSHistorySize:           100,
		CentroidHistorySize:      10,
		OnsetHistorySize:         8,
		SimpleBandRatioThreshold: 0.3,
		SimpleHistorySize:        3,
	}
}

// Validate checks that cfg describes a runnable detector. It returns a joined
// error listing every problem found, so misconfiguration surfaces once at
// construction instead of mid-stream.
func (c Config) Validate() error {
	var errs []error

	if c.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("sample_rate %d must be positive", c.SampleRate))
	}
	if c.FrameSize <= 0 {
		errs = append(errs, fmt.Errorf("frame_size %d must be positive", c.FrameSize))
	} else if c.FrameSize&(c.FrameSize-1) != 0 {
		errs = append(errs, fmt.Errorf("frame_size %d must be a power of two", c.FrameSize))
	}
	if !c.Mode.IsValid() {
		errs = append(errs, fmt.Errorf("mode %q is invalid; valid values: full, simple", c.Mode))
	}

	nyquist := float64(c.SampleRate) / 2
	if c.BandLowHz < 0 || c.BandHighHz <= c.BandLowHz {
		errs = append(errs, fmt.Errorf("band [%g, %g] Hz must satisfy 0 <= low < high", c.BandLowHz, c.BandHighHz))
	} else if c.SampleRate > 0 && c.BandHighHz > nyquist {
		errs = append(errs, fmt.Errorf("band high %g Hz exceeds Nyquist frequency %g Hz", c.BandHighHz, nyquist))
	}
	if c.CentroidLowHz < 0 || c.CentroidHighHz <= c.CentroidLowHz {
		errs = append(errs, fmt.Errorf("centroid range [%g, %g] Hz must satisfy 0 <= low < high", c.CentroidLowHz, c.CentroidHighHz))
	}

	if c.NoiseFloorMargin <= 0 {
		errs = append(errs, fmt.Errorf("noise_floor_margin %g must be positive", c.NoiseFloorMargin))
	}
	if c.NoiseFloorPercentile <= 0 || c.NoiseFloorPercentile >= 100 {
		errs = append(errs, fmt.Errorf("noise_floor_percentile %g must be in (0, 100)", c.NoiseFloorPercentile))
	}
	if c.DefaultNoiseFloor < 0 {
		errs = append(errs, fmt.Errorf("default_noise_floor %g must not be negative", c.DefaultNoiseFloor))
	}
	if c.ConsecutiveFrames < 1 {
		errs = append(errs, fmt.Errorf("consecutive_frames %d must be at least 1", c.ConsecutiveFrames))
	}
	if c.Sensitivity < 0 || c.Sensitivity > 1 {
		errs = append(errs, fmt.Errorf("sensitivity %g must be in [0, 1]", c.Sensitivity))
	}
	if c.RMSHistorySize < 1 {
		errs = append(errs, fmt.Errorf("rms_history_size %d must be at least 1", c.RMSHistorySize))
	}
	if c.CentroidHistorySize < 1 {
		errs = append(errs, fmt.Errorf("centroid_history_size %d must be at least 1", c.CentroidHistorySize))
	}
	if c.OnsetHistorySize < 1 {
		errs = append(errs, fmt.Errorf("onset_history_size %d must be at least 1", c.OnsetHistorySize))
	}
	if c.SimpleBandRatioThreshold <= 0 || c.SimpleBandRatioThreshold >= 1 {
		errs = append(errs, fmt.Errorf("simple_band_ratio_threshold %g must be in (0, 1)", c.SimpleBandRatioThreshold))
	}
	if c.SimpleHistorySize < 1 {
		errs = append(errs, fmt.Errorf("simple_history_size %d must be at least 1", c.SimpleHistorySize))
	}

	return errors.Join(errs...)
}
