// Package mock provides an in-memory implementation of [audio.Source] for use
// in unit tests.
//
// A Source is scripted with the frames it should deliver and records lifecycle
// calls so tests can assert on them:
//
//	src := &mock.Source{Frames: frames}
//	ch, err := src.Start(ctx)
package mock

import (
	"context"
	"sync"

	"github.com/soundgate/soundgate/pkg/audio"
)

// Source is a scripted mock implementation of [audio.Source].
// Set the exported fields before use; inspect the Call* fields after.
type Source struct {
	mu sync.Mutex

	// Frames are delivered in order on the channel returned by Start, after
	// which the channel is closed.
	Frames []audio.Frame

	// StartError, when non-nil, is returned by Start instead of a channel.
	StartError error

	// StopError is returned by Stop.
	StopError error

	// CallCountStart records how many times Start was called.
	CallCountStart int

	// CallCountStop records how many times Stop was called.
	CallCountStop int
}

// Start returns a channel fed by a goroutine that delivers the scripted
// frames and then closes it. Delivery aborts early if ctx is cancelled.
func (s *Source) Start(ctx context.Context) (<-chan audio.Frame, error) {
	s.mu.Lock()
	s.CallCountStart++
	err := s.StartError
	frames := s.Frames
	s.mu.Unlock()

	if err != nil {
		return nil, err
	}

	ch := make(chan audio.Frame)
	go func() {
		defer close(ch)
		for _, f := range frames {
			select {
			case ch <- f:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}

// Stop records the call and returns StopError. Always safe to call.
func (s *Source) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CallCountStop++
	return s.StopError
}
