package classify_test

import (
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/soundgate/soundgate/pkg/audio"
	"github.com/soundgate/soundgate/pkg/classify"
)

const (
	rate      = 44100
	frameSize = 2048
)

func newDetector(t *testing.T, mutate func(*classify.Config)) *classify.Detector {
	t.Helper()
	cfg := classify.DefaultConfig(rate, frameSize)
	if mutate != nil {
		mutate(&cfg)
	}
	d, err := classify.New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d
}

func frame(samples []float64) audio.Frame {
	return audio.Frame{Samples: samples, SampleRate: rate}
}

// toneFrame generates a bin-aligned pure tone so spectral energy stays in a
// single FFT bin.
func toneFrame(bin int, amplitude float64) []float64 {
	samples := make([]float64, frameSize)
	freq := float64(bin) * rate / frameSize
	for i := range samples {
		samples[i] = amplitude * math.Sin(2*math.Pi*freq*float64(i)/rate)
	}
	return samples
}

// noiseFrame generates uniform white noise in [-amplitude, amplitude].
func noiseFrame(rng *rand.Rand, amplitude float64) []float64 {
	samples := make([]float64, frameSize)
	for i := range samples {
		samples[i] = amplitude * (2*rng.Float64() - 1)
	}
	return samples
}

// burstFrame generates a clap-like broadband burst: several tones spread over
// 1–3 kHz, all bin-aligned.
func burstFrame(amplitude float64) []float64 {
	samples := make([]float64, frameSize)
	for _, bin := range []int{51, 70, 93, 121} { // ~1.1, 1.5, 2.0, 2.6 kHz
		freq := float64(bin) * rate / frameSize
		for i := range samples {
			samples[i] += amplitude * math.Sin(2*math.Pi*freq*float64(i)/rate)
		}
	}
	return samples
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*classify.Config)
		wantSub string
	}{
		{"zero frame size", func(c *classify.Config) { c.FrameSize = 0 }, "frame_size"},
		{"non power of two", func(c *classify.Config) { c.FrameSize = 1000 }, "power of two"},
		{"band above nyquist", func(c *classify.Config) { c.BandHighHz = 30000 }, "Nyquist"},
		{"inverted band", func(c *classify.Config) { c.BandLowHz = 4000; c.BandHighHz = 500 }, "band"},
		{"bad percentile", func(c *classify.Config) { c.NoiseFloorPercentile = 100 }, "percentile"},
		{"bad sensitivity", func(c *classify.Config) { c.Sensitivity = 1.5 }, "sensitivity"},
		{"bad mode", func(c *classify.Config) { c.Mode = "fancy" }, "mode"},
		{"zero debounce", func(c *classify.Config) { c.ConsecutiveFrames = 0 }, "consecutive_frames"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := classify.DefaultConfig(rate, frameSize)
			tt.mutate(&cfg)
			_, err := classify.New(cfg)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error %q does not mention %q", err, tt.wantSub)
			}
		})
	}
}

func TestProcessFrameWrongSize(t *testing.T) {
	d := newDetector(t, nil)
	_, err := d.ProcessFrame(frame(make([]float64, 100)))
	if err == nil {
		t.Fatal("expected error for wrong frame size")
	}
}

func TestSilenceStaysQuiet(t *testing.T) {
	d := newDetector(t, nil)

	silent := make([]float64, frameSize)
	for i := 0; i < 20; i++ {
		res, err := d.ProcessFrame(frame(silent))
		if err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
		if res.Loud {
			t.Fatalf("frame %d: silence reported loud", i)
		}
		if res.Features.BandRatio != 0 {
			t.Fatalf("frame %d: band ratio = %v, want 0", i, res.Features.BandRatio)
		}
	}
	if d.IsLoud() {
		t.Error("IsLoud() = true after pure silence")
	}
}

func TestRumbleRejectedDespiteLoudness(t *testing.T) {
	d := newDetector(t, nil)

	// Establish a quiet baseline so the rumble clears the noise gate.
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 30; i++ {
		if _, err := d.ProcessFrame(frame(noiseFrame(rng, 0.002))); err != nil {
			t.Fatal(err)
		}
	}

	rumble := toneFrame(5, 0.5) // ~108 Hz, well above the floor
	for i := 0; i < 10; i++ {
		res, err := d.ProcessFrame(frame(rumble))
		if err != nil {
			t.Fatal(err)
		}
		if res.Gated {
			t.Fatalf("frame %d: loud rumble should clear the gate", i)
		}
		if res.Loud {
			t.Fatalf("frame %d: low-frequency rumble classified as intentional", i)
		}
	}
}

func TestVoiceBandBurstDetected(t *testing.T) {
	d := newDetector(t, nil)

	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 30; i++ {
		if _, err := d.ProcessFrame(frame(noiseFrame(rng, 0.01))); err != nil {
			t.Fatal(err)
		}
	}
	if d.IsLoud() {
		t.Fatal("ambient baseline reported loud")
	}

	burst := burstFrame(0.1)
	res1, err := d.ProcessFrame(frame(burst))
	if err != nil {
		t.Fatal(err)
	}
	if !res1.Raw {
		t.Fatalf("first burst frame raw decision = false, features %+v", res1.Features)
	}
	res2, err := d.ProcessFrame(frame(burst))
	if err != nil {
		t.Fatal(err)
	}
	if !res2.Loud {
		t.Fatal("second consecutive burst frame should reach the debounced loud state")
	}
	if !d.IsLoud() {
		t.Fatal("IsLoud() = false right after detection")
	}
}

func TestEndToEndAmbientBurstAmbient(t *testing.T) {
	d := newDetector(t, nil)
	rng := rand.New(rand.NewSource(5))

	ambient := func() audio.Frame { return frame(noiseFrame(rng, 0.01)) }

	// ~1 s of ambient noise.
	for i := 0; i < 21; i++ {
		res, err := d.ProcessFrame(ambient())
		if err != nil {
			t.Fatal(err)
		}
		if res.Loud {
			t.Fatalf("ambient frame %d reported loud", i)
		}
	}

	// ~100 ms clap-like burst at 10x ambient amplitude.
	sawLoud := false
	for i := 0; i < 3; i++ {
		res, err := d.ProcessFrame(frame(burstFrame(0.1)))
		if err != nil {
			t.Fatal(err)
		}
		if res.Loud {
			sawLoud = true
		}
	}
	if !sawLoud {
		t.Fatal("no loud window overlapping the burst")
	}

	// Remaining ambient tail: must return to quiet and not retrigger.
	returned := false
	for i := 0; i < 41; i++ {
		res, err := d.ProcessFrame(ambient())
		if err != nil {
			t.Fatal(err)
		}
		if !res.Loud {
			returned = true
		} else if returned {
			t.Fatalf("tail frame %d retriggered after returning to quiet", i)
		}
	}
	if !returned {
		t.Fatal("detector never returned to quiet after the burst")
	}
	if d.IsLoud() {
		t.Error("IsLoud() = true at end of ambient tail")
	}
}

func TestSensitivityAffectsOnsetThreshold(t *testing.T) {
	d := newDetector(t, nil)

	d.SetSensitivity(0.25)
	if got := d.Sensitivity(); got != 0.25 {
		t.Errorf("Sensitivity() = %v, want 0.25", got)
	}

	d.SetSensitivity(4)
	if got := d.Sensitivity(); got != 1 {
		t.Errorf("Sensitivity() after out-of-range set = %v, want 1 (clamped)", got)
	}
}

func TestDiagnosticsSnapshot(t *testing.T) {
	d := newDetector(t, nil)
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 10; i++ {
		if _, err := d.ProcessFrame(frame(noiseFrame(rng, 0.01))); err != nil {
			t.Fatal(err)
		}
	}

	diag := d.Diagnostics()
	if diag.IsLoud {
		t.Error("diagnostics report loud for ambient noise")
	}
	if diag.MeanNoiseFloor <= 0 {
		t.Errorf("MeanNoiseFloor = %v, want > 0", diag.MeanNoiseFloor)
	}
	if len(diag.RecentCentroids) == 0 {
		t.Error("no centroid history recorded")
	}

	// The snapshot must be detached from detector state.
	if len(diag.RecentCentroids) > 0 {
		diag.RecentCentroids[0] = -1
		if d.Diagnostics().RecentCentroids[0] == -1 {
			t.Error("Diagnostics returned a live slice, not a copy")
		}
	}
}

func TestResetClearsStreamState(t *testing.T) {
	d := newDetector(t, nil)

	burst := burstFrame(0.1)
	rng := rand.New(rand.NewSource(9))
	for i := 0; i < 10; i++ {
		if _, err := d.ProcessFrame(frame(noiseFrame(rng, 0.01))); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := d.ProcessFrame(frame(burst)); err != nil {
		t.Fatal(err)
	}
	if _, err := d.ProcessFrame(frame(burst)); err != nil {
		t.Fatal(err)
	}
	if !d.IsLoud() {
		t.Fatal("setup: detector should be loud before Reset")
	}

	d.Reset()
	if d.IsLoud() {
		t.Error("IsLoud() = true after Reset")
	}
	diag := d.Diagnostics()
	if diag.Counter != 0 || len(diag.RecentCentroids) != 0 || len(diag.RecentOnsets) != 0 {
		t.Errorf("state not cleared: %+v", diag)
	}
}

func TestSimpleModeBandRatioOnly(t *testing.T) {
	d := newDetector(t, func(c *classify.Config) { c.Mode = classify.ModeSimple })

	// Simple mode has no noise gate and no onset check: a sustained in-band
	// tone triggers after the majority window fills.
	tone := toneFrame(93, 0.1)
	var loud bool
	for i := 0; i < 3; i++ {
		res, err := d.ProcessFrame(frame(tone))
		if err != nil {
			t.Fatal(err)
		}
		loud = res.Loud
	}
	if !loud {
		t.Fatal("sustained voice-band tone not detected in simple mode")
	}

	// A rumble never passes the band-ratio check.
	rumble := toneFrame(5, 0.5)
	for i := 0; i < 5; i++ {
		res, err := d.ProcessFrame(frame(rumble))
		if err != nil {
			t.Fatal(err)
		}
		loud = res.Loud
	}
	if loud {
		t.Fatal("rumble detected in simple mode")
	}
}

func TestConcurrentIsLoudAndSetSensitivity(t *testing.T) {
	d := newDetector(t, nil)
	rng := rand.New(rand.NewSource(11))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			_ = d.IsLoud()
			d.SetSensitivity(float64(i%10) / 10)
		}
	}()

	for i := 0; i < 200; i++ {
		if _, err := d.ProcessFrame(frame(noiseFrame(rng, 0.01))); err != nil {
			t.Fatal(err)
		}
	}
	<-done
}
