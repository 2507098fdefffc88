package classify

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// spectralAnalyzer derives frequency-domain features from a frame: the share
// of energy inside the target band and the spectral centroid. The FFT plan,
// frequency axis and band bin range are computed once at construction; only
// the magnitude pass runs per frame.
type spectralAnalyzer struct {
	fft   *fourier.FFT
	freqs []float64 // center frequency of each bin, Hz

	// bandLo..bandHi (inclusive) are the bin indices covering the target band.
	bandLo, bandHi int

	coeffs []complex128 // scratch, len frameSize/2+1
	mags   []float64    // scratch, len frameSize/2+1
}

func newSpectralAnalyzer(sampleRate, frameSize int, bandLowHz, bandHighHz float64) *spectralAnalyzer {
	bins := frameSize/2 + 1
	binWidth := float64(sampleRate) / float64(frameSize)

	freqs := make([]float64, bins)
	for i := range freqs {
		freqs[i] = float64(i) * binWidth
	}

	// First and last bin inside [bandLowHz, bandHighHz].
	lo := bins
	hi := -1
	for i, f := range freqs {
		if f >= bandLowHz && f <= bandHighHz {
			if i < lo {
				lo = i
			}
			hi = i
		}
	}

	return &spectralAnalyzer{
		fft:    fourier.NewFFT(frameSize),
		freqs:  freqs,
		bandLo: lo,
		bandHi: hi,
		coeffs: make([]complex128, bins),
		mags:   make([]float64, bins),
	}
}

// Analyze computes the band-energy ratio and spectral centroid of samples.
// A zero-energy frame (silence or an all-zero buffer) yields (0, 0); callers
// treat that as "nothing to classify" rather than an error.
func (a *spectralAnalyzer) Analyze(samples []float64) (bandRatio, centroidHz float64) {
	a.coeffs = a.fft.Coefficients(a.coeffs, samples)

	var totalEnergy, bandEnergy float64
	var magSum, weightedSum float64
	for i, c := range a.coeffs {
		m := cmplx.Abs(c)
		a.mags[i] = m

		e := m * m
		totalEnergy += e
		if i >= a.bandLo && i <= a.bandHi {
			bandEnergy += e
		}

		magSum += m
		weightedSum += a.freqs[i] * m
	}

	if totalEnergy == 0 || magSum == 0 {
		return 0, 0
	}
	return bandEnergy / totalEnergy, weightedSum / magSum
}

// Magnitudes returns the magnitude spectrum of the most recent Analyze call.
// The returned slice is reused across calls; copy it to retain.
func (a *spectralAnalyzer) Magnitudes() []float64 {
	return a.mags
}

// Freqs returns the immutable frequency axis (bin center frequencies in Hz).
func (a *spectralAnalyzer) Freqs() []float64 {
	return a.freqs
}
