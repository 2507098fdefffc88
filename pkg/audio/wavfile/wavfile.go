// Package wavfile implements [audio.Source] over a WAV file, for running the
// classifier against recorded material instead of a live microphone.
//
// Frames are emitted back-to-back without pacing: batch analysis should run
// as fast as the decoder allows. Stereo files are downmixed to mono and the
// final short frame is zero-padded so the stream length is always a whole
// number of frames.
package wavfile

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/soundgate/soundgate/pkg/audio"
)

// Source reads monaural frames from a WAV file.
type Source struct {
	path      string
	frameSize int

	mu      sync.Mutex
	file    *os.File
	stopped bool
}

// New creates a Source for the WAV file at path, emitting frames of
// frameSize samples. The file is not opened until Start.
func New(path string, frameSize int) *Source {
	return &Source{path: path, frameSize: frameSize}
}

// Start opens and validates the file and begins decoding. The returned
// channel is closed at end of file, on decode error, or when ctx is
// cancelled. Returns an error if the file cannot be opened or is not a
// valid WAV.
func (s *Source) Start(ctx context.Context) (<-chan audio.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return nil, fmt.Errorf("wavfile: source already stopped")
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("wavfile: open %q: %w", s.path, err)
	}

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		f.Close()
		return nil, fmt.Errorf("wavfile: %q is not a valid WAV file", s.path)
	}
	s.file = f

	sampleRate := int(dec.SampleRate)
	channels := int(dec.NumChans)
	bitDepth := int(dec.BitDepth)

	ch := make(chan audio.Frame)
	go func() {
		defer close(ch)

		buf := &goaudio.IntBuffer{
			Data:   make([]int, s.frameSize*channels),
			Format: &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		}
		frameDur := time.Duration(s.frameSize) * time.Second / time.Duration(sampleRate)

		for n := 0; ; n++ {
			read, err := dec.PCMBuffer(buf)
			if err != nil || read == 0 {
				return
			}

			samples := audio.IntToFloat64(buf.Data[:read], bitDepth)
			if channels == 2 {
				samples = audio.DownmixStereo(samples)
			}
			// Zero-pad the trailing short frame.
			if len(samples) < s.frameSize {
				samples = append(samples, make([]float64, s.frameSize-len(samples))...)
			}

			frame := audio.Frame{
				Samples:    samples,
				SampleRate: sampleRate,
				Timestamp:  time.Duration(n) * frameDur,
			}
			select {
			case ch <- frame:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}

// SampleRate reads the file header and reports its sample rate, without
// consuming the stream used by Start.
func (s *Source) SampleRate() (int, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return 0, fmt.Errorf("wavfile: open %q: %w", s.path, err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return 0, fmt.Errorf("wavfile: %q is not a valid WAV file", s.path)
	}
	return int(dec.SampleRate), nil
}

// Stop closes the file. Idempotent and safe to call before Start.
func (s *Source) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}
