//go:build !portaudio

package main

import (
	"errors"

	"github.com/soundgate/soundgate/pkg/audio"
)

// newCaptureSource reports that this binary has no live capture support.
// Build with -tags portaudio (and the PortAudio C library installed) to
// enable the listen command.
func newCaptureSource(sampleRate, frameSize int) (audio.Source, error) {
	return nil, errors.New("built without live capture; rebuild with -tags portaudio")
}
