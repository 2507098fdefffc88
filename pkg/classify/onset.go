package classify

// onsetEpsilon avoids division by zero when the previous frame carried almost
// no energy.
const onsetEpsilon = 1e-10

// onsetDetector flags sudden energy rises by comparing each frame's energy to
// the immediately preceding frame's. Intentional sounds have sharp attacks;
// ambient noise rises gradually.
type onsetDetector struct {
	prevEnergy float64
	hasPrev    bool
}

// Detect returns the ratio of energy to the previous frame's energy. The
// first frame of a stream, and any frame following a fully silent one, yields
// 0 — there is no meaningful attack to measure against.
//
// Detect must be called for every frame, including frames rejected by the
// noise gate, so the previous-frame reference never desynchronises.
func (d *onsetDetector) Detect(energy float64) float64 {
	prev, had := d.prevEnergy, d.hasPrev
	d.prevEnergy = energy
	d.hasPrev = true

	if !had || prev == 0 {
		return 0
	}
	return energy / (prev + onsetEpsilon)
}

// Reset clears the previous-frame reference, as after a stream restart.
func (d *onsetDetector) Reset() {
	d.prevEnergy = 0
	d.hasPrev = false
}
