package classify

// debouncer converts the noisy per-frame decision stream into a stable state
// with hysteresis. Each positive frame increments a counter, each negative
// frame decrements it (floored at zero). The state latches loud once the
// counter reaches the requirement and stays loud while the counter decays,
// dropping back to quiet only when it hits zero. Requiring sustained evidence
// across ≥2 frames (~90 ms at 2048/44100) suppresses single-frame spectral
// flukes, and the asymmetric release keeps short events from flickering off
// one frame after they triggered.
type debouncer struct {
	counter  int
	required int
	loud     bool
}

// Observe feeds one raw decision and returns the debounced state.
func (d *debouncer) Observe(raw bool) bool {
	if raw {
		d.counter++
	} else if d.counter > 0 {
		d.counter--
	}
	if d.counter >= d.required {
		d.loud = true
	} else if d.counter == 0 {
		d.loud = false
	}
	return d.loud
}

// Counter returns the current consecutive-evidence count.
func (d *debouncer) Counter() int { return d.counter }

// Reset returns the debouncer to its initial quiet state.
func (d *debouncer) Reset() {
	d.counter = 0
	d.loud = false
}

// majoritySmoother is the debouncing used in [ModeSimple]: the state is loud
// while more than half of the vote window is positive. The full window size
// is the denominator even before it has filled, so a single early positive
// cannot trigger.
type majoritySmoother struct {
	votes []bool
	next  int
	count int // positives currently in the window
}

func newMajoritySmoother(window int) *majoritySmoother {
	return &majoritySmoother{votes: make([]bool, window)}
}

// Observe feeds one raw decision and returns the smoothed state.
func (m *majoritySmoother) Observe(raw bool) bool {
	if m.votes[m.next] {
		m.count--
	}
	m.votes[m.next] = raw
	if raw {
		m.count++
	}
	m.next = (m.next + 1) % len(m.votes)
	return m.count*2 > len(m.votes)
}

// Count returns how many of the window's decisions are positive.
func (m *majoritySmoother) Count() int { return m.count }

// Reset discards the stored decisions.
func (m *majoritySmoother) Reset() {
	clear(m.votes)
	m.next = 0
	m.count = 0
}
