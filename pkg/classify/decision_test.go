package classify

import "testing"

func TestDecisionEngine(t *testing.T) {
	e := decisionEngine{floorMargin: 1.5, centroidLowHz: 800, centroidHighHz: 5000}
	th := Thresholds{OnsetRatio: 1.75, BandRatio: 0.35}

	tests := []struct {
		name string
		f    Features
		want bool
	}{
		{
			name: "all checks pass",
			f:    Features{RMS: 0.1, NoiseFloor: 0.005, BandRatio: 0.6, CentroidHz: 2000, OnsetRatio: 3},
			want: true,
		},
		{
			name: "fast path: onset and freq alone",
			f:    Features{RMS: 0.001, NoiseFloor: 0.005, BandRatio: 0.6, CentroidHz: 100, OnsetRatio: 3},
			want: true,
		},
		{
			name: "three of four without onset",
			f:    Features{RMS: 0.1, NoiseFloor: 0.005, BandRatio: 0.6, CentroidHz: 2000, OnsetRatio: 1.0},
			want: true,
		},
		{
			name: "loud low rumble passes only rms",
			f:    Features{RMS: 0.3, NoiseFloor: 0.005, BandRatio: 0.05, CentroidHz: 120, OnsetRatio: 1.05},
			want: false,
		},
		{
			name: "two checks are not enough",
			f:    Features{RMS: 0.1, NoiseFloor: 0.005, BandRatio: 0.05, CentroidHz: 2000, OnsetRatio: 1.0},
			want: false,
		},
		{
			name: "strong onset without band energy",
			f:    Features{RMS: 0.001, NoiseFloor: 0.005, BandRatio: 0.05, CentroidHz: 100, OnsetRatio: 10},
			want: false,
		},
		{
			name: "degenerate frame fails every check",
			f:    Features{RMS: 0, NoiseFloor: 0.002},
			want: false,
		},
		{
			name: "centroid at the boundary is exclusive",
			f:    Features{RMS: 0.1, NoiseFloor: 0.005, BandRatio: 0.6, CentroidHz: 5000, OnsetRatio: 1.0},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.Decide(tt.f, th); got != tt.want {
				t.Errorf("Decide(%+v) = %v, want %v", tt.f, got, tt.want)
			}
		})
	}
}

func TestChecksPassed(t *testing.T) {
	c := checks{rms: true, centroid: true}
	if got := c.passed(); got != 2 {
		t.Errorf("passed() = %d, want 2", got)
	}
}
