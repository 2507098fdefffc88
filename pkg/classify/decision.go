package classify

// Features is the per-frame feature vector fed to the decision engine.
// Computed fresh for every frame; never persisted.
type Features struct {
	// RMS is the frame's root-mean-square amplitude.
	RMS float64

	// NoiseFloor is the adaptive floor estimate at the time of this frame.
	NoiseFloor float64

	// BandRatio is the share of spectral energy inside the target band,
	// in [0, 1].
	BandRatio float64

	// CentroidHz is the energy-weighted mean frequency of the spectrum.
	CentroidHz float64

	// OnsetRatio is the current/previous frame energy ratio; values well
	// above 1 indicate a sharp attack.
	OnsetRatio float64
}

// checks holds the four boolean sub-decisions derived from a feature vector.
type checks struct {
	rms      bool
	freq     bool
	centroid bool
	onset    bool
}

func (c checks) passed() int {
	n := 0
	for _, b := range [...]bool{c.rms, c.freq, c.centroid, c.onset} {
		if b {
			n++
		}
	}
	return n
}

// decisionEngine fuses the feature vector into a single per-frame boolean.
// It is memoryless; all state lives in the estimators feeding it.
type decisionEngine struct {
	floorMargin    float64
	centroidLowHz  float64
	centroidHighHz float64
}

// Decide evaluates the four sub-checks against th and applies the fusion
// rule, in precedence order:
//
//  1. A transient attack concentrated in the target band (onset ∧ freq) is
//     conclusive on its own.
//  2. Otherwise at least three of the four checks must agree, so a single
//     borderline feature (a loud low rumble passing the RMS check, say)
//     cannot trigger alone.
func (e *decisionEngine) Decide(f Features, th Thresholds) bool {
	c := checks{
		rms:      f.RMS > f.NoiseFloor*e.floorMargin,
		freq:     f.BandRatio > th.BandRatio,
		centroid: f.CentroidHz > e.centroidLowHz && f.CentroidHz < e.centroidHighHz,
		onset:    f.OnsetRatio > th.OnsetRatio,
	}

	if c.onset && c.freq {
		return true
	}
	return c.passed() >= 3
}
