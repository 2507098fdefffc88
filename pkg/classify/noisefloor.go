package classify

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// minFloorSamples is the number of RMS observations required before the
// percentile estimate is trusted over the configured default floor.
const minFloorSamples = 3

// noiseFloor tracks the quiet baseline of the environment as a low percentile
// of recent frame loudness. Loud outliers rarely reach the bottom decile, so
// the floor keeps following the ambient level even during frequent events.
type noiseFloor struct {
	hist         *ring[float64]
	scratch      []float64
	quantile     float64 // in (0, 1)
	defaultFloor float64
}

func newNoiseFloor(historySize int, percentile, defaultFloor float64) *noiseFloor {
	return &noiseFloor{
		hist:         newRing[float64](historySize),
		scratch:      make([]float64, 0, historySize),
		quantile:     percentile / 100,
		defaultFloor: defaultFloor,
	}
}

// Observe appends rms to the history and returns the current adaptive floor.
func (nf *noiseFloor) Observe(rms float64) float64 {
	nf.hist.Push(rms)
	if nf.hist.Len() < minFloorSamples {
		return nf.defaultFloor
	}
	nf.scratch = nf.hist.AppendTo(nf.scratch[:0])
	sort.Float64s(nf.scratch)
	return stat.Quantile(nf.quantile, stat.Empirical, nf.scratch, nil)
}

// Mean returns the average of the stored RMS history, for diagnostics.
func (nf *noiseFloor) Mean() float64 {
	nf.scratch = nf.hist.AppendTo(nf.scratch[:0])
	return mean(nf.scratch)
}

// Reset discards the accumulated history.
func (nf *noiseFloor) Reset() {
	nf.hist.Reset()
}
