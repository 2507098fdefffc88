// Package audio defines the frame type and source abstraction shared by the
// capture adapters and the classification pipeline.
//
// The central abstraction is [Source] — something that delivers a stream of
// fixed-length monaural [Frame] values at a known sample rate. Implementations
// live in adapter subpackages (audio/portaudio for live capture,
// audio/wavfile for offline files, audio/mock for tests). The interface is
// intentionally narrow so the pipeline never depends on capture-device
// details.
package audio

import (
	"context"
	"math"
	"time"
)

// Frame is a single block of monaural audio flowing through the pipeline.
// Samples are normalised floats in [-1, 1]. A Frame is handed to the pipeline
// by value; the Samples slice is owned by the receiver and is never written to
// by the source after delivery.
type Frame struct {
	// Samples holds the raw sample values. Length is fixed per stream
	// (the configured frame size).
	Samples []float64

	// SampleRate in Hz (e.g. 44100).
	SampleRate int

	// Timestamp marks when this frame was captured, relative to stream start.
	Timestamp time.Duration

	// Status carries a capture-side warning (overflow, underflow). Empty when
	// the frame was captured cleanly. Frames with a status are still
	// processed — dropping them would desynchronise onset detection.
	Status string
}

// RMS returns the root-mean-square amplitude of the frame, a loudness proxy.
// Returns 0 for an empty frame.
func (f Frame) RMS() float64 {
	if len(f.Samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range f.Samples {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(f.Samples)))
}

// Energy returns the sum of squared samples.
func (f Frame) Energy() float64 {
	var sum float64
	for _, s := range f.Samples {
		sum += s * s
	}
	return sum
}

// Source delivers a stream of audio frames. Implementations wrap a capture
// device or a file decoder.
//
// Implementations must make Stop idempotent and safe to call even when Start
// never succeeded, so that callers can unconditionally defer it.
type Source interface {
	// Start begins delivery and returns the frame channel. The channel is
	// closed when the stream ends (end of file, device stop, or ctx
	// cancellation). Returns an error if the underlying device or file cannot
	// be opened; such errors are fatal to the stream and are not retried
	// internally.
	Start(ctx context.Context) (<-chan Frame, error)

	// Stop releases the capture resource. Safe to call more than once and
	// safe to call if Start failed.
	Stop() error
}
