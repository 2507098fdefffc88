package classify

import "testing"

func TestDebouncerHysteresis(t *testing.T) {
	d := debouncer{required: 2}

	raw := []bool{true, true, false, false}
	wantLoud := []bool{false, true, true, false}
	wantCounter := []int{1, 2, 1, 0}

	for i, r := range raw {
		loud := d.Observe(r)
		if loud != wantLoud[i] {
			t.Errorf("frame %d: loud = %v, want %v", i, loud, wantLoud[i])
		}
		if d.Counter() != wantCounter[i] {
			t.Errorf("frame %d: counter = %d, want %d", i, d.Counter(), wantCounter[i])
		}
	}
}

func TestDebouncerLatchesUntilCounterEmpties(t *testing.T) {
	d := debouncer{required: 2}

	// A sustained event builds the counter past the requirement; the state
	// must then stay loud through the full decay, not drop the moment the
	// counter dips below the trigger level.
	raw := []bool{true, true, true, false, false, false, false}
	wantLoud := []bool{false, true, true, true, true, false, false}

	for i, r := range raw {
		if loud := d.Observe(r); loud != wantLoud[i] {
			t.Errorf("frame %d: loud = %v, want %v", i, loud, wantLoud[i])
		}
	}
}

func TestDebouncerCounterFloorsAtZero(t *testing.T) {
	d := debouncer{required: 2}
	for i := 0; i < 5; i++ {
		d.Observe(false)
	}
	if d.Counter() != 0 {
		t.Errorf("counter = %d, want 0", d.Counter())
	}
	// A long quiet run must not make the detector slower to trigger.
	d.Observe(true)
	if loud := d.Observe(true); !loud {
		t.Error("two positives after a quiet run should reach loud")
	}
}

func TestDebouncerReset(t *testing.T) {
	d := debouncer{required: 2}
	d.Observe(true)
	d.Observe(true)
	d.Reset()
	if d.Counter() != 0 {
		t.Errorf("counter after Reset = %d, want 0", d.Counter())
	}
	if loud := d.Observe(true); loud {
		t.Error("single positive after Reset should not be loud")
	}
}

func TestMajoritySmoother(t *testing.T) {
	m := newMajoritySmoother(3)

	// A single early positive must not trigger while the window is cold.
	if m.Observe(true) {
		t.Error("one vote out of a window of three should not be loud")
	}
	if !m.Observe(true) {
		t.Error("two votes out of three should be loud")
	}
	if !m.Observe(false) {
		t.Error("two of the last three votes are still positive")
	}
	if m.Observe(false) {
		t.Error("one of the last three votes should not be loud")
	}
}

func TestMajoritySmootherReset(t *testing.T) {
	m := newMajoritySmoother(3)
	m.Observe(true)
	m.Observe(true)
	m.Reset()
	if m.Count() != 0 {
		t.Errorf("Count after Reset = %d, want 0", m.Count())
	}
	if m.Observe(true) {
		t.Error("single vote after Reset should not be loud")
	}
}
