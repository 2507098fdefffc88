// Package config provides the configuration schema and loader for the
// soundgate detector service.
package config

import "github.com/soundgate/soundgate/pkg/classify"

// LogLevel controls log verbosity for the soundgate process.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Config is the root configuration structure for soundgate.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Audio      AudioConfig      `yaml:"audio"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Server     ServerConfig     `yaml:"server"`
}

// AudioConfig describes the capture stream format.
type AudioConfig struct {
	// SampleRate in Hz. Default 44100.
	SampleRate int `yaml:"sample_rate"`

	// FrameSize is the number of samples per capture block. Must be a power
	// of two. Default 2048 (~46 ms at 44.1 kHz).
	FrameSize int `yaml:"frame_size"`
}

// ClassifierConfig holds the detector tuning knobs. Zero values mean "use the
// tuned default" — see [classify.DefaultConfig] for the actual numbers. All
// of these are empirically tuned; they are exposed here rather than baked in
// as constants so deployments can adjust them without a rebuild.
type ClassifierConfig struct {
	// Mode selects the feature set: "full" or "simple".
	Mode string `yaml:"mode"`

	// Sensitivity is the 0–1 knob controlling the onset and band-ratio
	// thresholds. Higher admits quieter and softer sounds.
	Sensitivity *float64 `yaml:"sensitivity"`

	// BandLowHz / BandHighHz bound the target frequency band.
	BandLowHz  float64 `yaml:"band_low_hz"`
	BandHighHz float64 `yaml:"band_high_hz"`

	// CentroidLowHz / CentroidHighHz bound the accepted spectral centroid.
	CentroidLowHz  float64 `yaml:"centroid_low_hz"`
	CentroidHighHz float64 `yaml:"centroid_high_hz"`

	// NoiseFloorMargin scales the adaptive floor for the noise gate.
	NoiseFloorMargin float64 `yaml:"noise_floor_margin"`

	// NoiseFloorPercentile of the RMS history used as the adaptive floor.
	NoiseFloorPercentile float64 `yaml:"noise_floor_percentile"`

	// ConsecutiveFrames is the debounce requirement.
	ConsecutiveFrames int `yaml:"consecutive_frames"`
}

// ServerConfig holds network and logging settings for the diagnostics server.
type ServerConfig struct {
	// ListenAddr is the TCP address for the metrics/health endpoints
	// (e.g. ":9090"). Empty disables the server.
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`
}

// Detector builds the [classify.Config] described by this configuration,
// starting from the tuned defaults and overriding only the fields that were
// set.
func (c *Config) Detector() classify.Config {
	sampleRate := c.Audio.SampleRate
	if sampleRate == 0 {
		sampleRate = 44100
	}
	frameSize := c.Audio.FrameSize
	if frameSize == 0 {
		frameSize = 2048
	}

	dc := classify.DefaultConfig(sampleRate, frameSize)
	cl := c.Classifier
	if cl.Mode != "" {
		dc.Mode = classify.Mode(cl.Mode)
	}
	if cl.Sensitivity != nil {
		dc.Sensitivity = *cl.Sensitivity
	}
	if cl.BandLowHz != 0 {
		dc.BandLowHz = cl.BandLowHz
	}
	if cl.BandHighHz != 0 {
		dc.BandHighHz = cl.BandHighHz
	}
	if cl.CentroidLowHz != 0 {
		dc.CentroidLowHz = cl.CentroidLowHz
	}
	if cl.CentroidHighHz != 0 {
		dc.CentroidHighHz = cl.CentroidHighHz
	}
	if cl.NoiseFloorMargin != 0 {
		dc.NoiseFloorMargin = cl.NoiseFloorMargin
	}
	if cl.NoiseFloorPercentile != 0 {
		dc.NoiseFloorPercentile = cl.NoiseFloorPercentile
	}
	if cl.ConsecutiveFrames != 0 {
		dc.ConsecutiveFrames = cl.ConsecutiveFrames
	}
	return dc
}
