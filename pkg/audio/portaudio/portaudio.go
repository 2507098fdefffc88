//go:build portaudio

// Package portaudio implements [audio.Source] over a live microphone via
// PortAudio. Build with the "portaudio" tag; the PortAudio C library must be
// installed on the host.
package portaudio

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"

	"github.com/soundgate/soundgate/pkg/audio"
)

// Source captures monaural frames from the default input device.
//
// The capture callback runs on a PortAudio-owned high-priority thread; it
// only copies the buffer and performs a non-blocking send, so it can never
// stall the audio driver. When the consumer falls behind, frames are dropped
// and counted rather than blocking capture.
type Source struct {
	sampleRate int
	frameSize  int

	mu          sync.Mutex
	stream      *portaudio.Stream
	initialized bool
	stopped     bool

	dropped     uint64
	lastDropLog time.Time
}

// New creates a Source capturing frameSize samples per frame at sampleRate.
func New(sampleRate, frameSize int) *Source {
	return &Source{sampleRate: sampleRate, frameSize: frameSize}
}

// Start initialises PortAudio, opens the default input stream and begins
// capture. A failure to open or start the device is fatal and returned to
// the caller; no retry is attempted here.
func (s *Source) Start(ctx context.Context) (<-chan audio.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return nil, fmt.Errorf("portaudio: source already stopped")
	}

	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio: initialize: %w", err)
	}
	s.initialized = true

	ch := make(chan audio.Frame, 4)
	start := time.Now()

	stream, err := portaudio.OpenDefaultStream(1, 0, float64(s.sampleRate), s.frameSize,
		func(in []float32) {
			frame := audio.Frame{
				Samples:    audio.Float32ToFloat64(in),
				SampleRate: s.sampleRate,
				Timestamp:  time.Since(start),
			}
			select {
			case ch <- frame:
			default:
				s.noteDrop()
			}
		})
	if err != nil {
		return nil, fmt.Errorf("portaudio: open default input stream: %w", err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		return nil, fmt.Errorf("portaudio: start stream: %w", err)
	}
	s.stream = stream

	go func() {
		<-ctx.Done()
		s.Stop()
		close(ch)
	}()

	slog.Info("portaudio capture started",
		"sample_rate", s.sampleRate,
		"frame_size", s.frameSize,
	)
	return ch, nil
}

// noteDrop counts a dropped frame, logging at most once per second.
func (s *Source) noteDrop() {
	s.dropped++
	if now := time.Now(); now.Sub(s.lastDropLog) > time.Second {
		s.lastDropLog = now
		slog.Warn("portaudio: consumer falling behind, dropping frames", "dropped", s.dropped)
	}
}

// Stop stops and closes the stream and terminates PortAudio. Idempotent and
// safe to call even if Start never succeeded, so the hardware handle is
// always released on shutdown.
func (s *Source) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return nil
	}
	s.stopped = true

	var firstErr error
	if s.stream != nil {
		if err := s.stream.Stop(); err != nil {
			firstErr = fmt.Errorf("portaudio: stop stream: %w", err)
		}
		if err := s.stream.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("portaudio: close stream: %w", err)
		}
		s.stream = nil
	}
	if s.initialized {
		if err := portaudio.Terminate(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("portaudio: terminate: %w", err)
		}
		s.initialized = false
	}
	return firstErr
}
