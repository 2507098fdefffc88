//go:build portaudio

package main

import (
	"github.com/soundgate/soundgate/pkg/audio"
	paudio "github.com/soundgate/soundgate/pkg/audio/portaudio"
)

// newCaptureSource returns the live PortAudio microphone source.
func newCaptureSource(sampleRate, frameSize int) (audio.Source, error) {
	return paudio.New(sampleRate, frameSize), nil
}
