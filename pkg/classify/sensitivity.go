package classify

// Thresholds are the sensitivity-dependent cutoffs consulted by the decision
// engine. Values are immutable once derived; the detector publishes a fresh
// set atomically on every SetSensitivity call.
type Thresholds struct {
	// OnsetRatio is the minimum current/previous energy ratio counted as a
	// transient attack.
	OnsetRatio float64

	// BandRatio is the minimum share of spectral energy inside the target
	// band counted as frequency-appropriate.
	BandRatio float64
}

// ThresholdsForSensitivity maps the 0–1 sensitivity knob onto concrete
// thresholds. Both mappings are linear and monotonic: higher sensitivity
// lowers the cutoffs, admitting quieter and softer-attack sounds.
//
//	OnsetRatio: 2.0 at s=0 down to 1.5 at s=1
//	BandRatio:  0.40 at s=0 down to 0.30 at s=1
//
// The default sensitivity of 0.5 lands on OnsetRatio 1.75 and BandRatio 0.35.
// Out-of-range s is clamped to [0, 1].
func ThresholdsForSensitivity(s float64) Thresholds {
	s = clamp01(s)
	return Thresholds{
		OnsetRatio: 2.0 - 0.5*s,
		BandRatio:  0.40 - 0.10*s,
	}
}

func clamp01(s float64) float64 {
	switch {
	case s < 0:
		return 0
	case s > 1:
		return 1
	}
	return s
}
