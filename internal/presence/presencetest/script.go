// Package presencetest provides scripted presence sources for tests.
package presencetest

import (
	"sync"

	"github.com/eyeremote/eyeremote/internal/presence"
)

// Reading is one scripted poll result.
type Reading struct {
	Present bool
	Err     error
}

// Source replays readings in order and then repeats the last one. It can
// block each Poll until Step is called, so a test decides when ticks happen.
type Source struct {
	mu       sync.Mutex
	readings []Reading
	pos      int
	polls    int
	closed   bool
	gate     chan struct{}
}

// NewSource returns a source that answers immediately.
func NewSource(readings ...Reading) *Source {
	return &Source{readings: readings}
}

// NewSteppedSource returns a source whose Poll waits for Step.
func NewSteppedSource(readings ...Reading) *Source {
	return &Source{readings: readings, gate: make(chan struct{})}
}

// Bools converts a presence sequence to readings.
func Bools(seq ...bool) []Reading {
	out := make([]Reading, len(seq))
	for i, b := range seq {
		out[i] = Reading{Present: b}
	}
	return out
}

func (s *Source) Poll() (bool, error) {
	if s.gate != nil {
		<-s.gate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.polls++
	if len(s.readings) == 0 {
		return false, nil
	}
	r := s.readings[s.pos]
	if s.pos < len(s.readings)-1 {
		s.pos++
	}
	return r.Present, r.Err
}

// Step lets one blocked Poll proceed.
func (s *Source) Step() {
	s.gate <- struct{}{}
}

// Release unblocks every current and future Poll. Step must not be called
// afterwards.
func (s *Source) Release() {
	close(s.gate)
}

func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *Source) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Source) Polls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.polls
}

// Oracle hands out the given sources in order, or fails with Err.
type Oracle struct {
	mu      sync.Mutex
	Sources []*Source
	Err     error
	Opened  []int
	// Block, when set, is waited on before Open returns.
	Block chan struct{}
}

func (o *Oracle) Open(deviceIndex int) (presence.Source, error) {
	if o.Block != nil {
		<-o.Block
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Opened = append(o.Opened, deviceIndex)
	if o.Err != nil {
		return nil, o.Err
	}
	if len(o.Sources) == 0 {
		return NewSource(), nil
	}
	s := o.Sources[0]
	o.Sources = o.Sources[1:]
	return s, nil
}

// Opens returns how many times Open was called.
func (o *Oracle) Opens() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.Opened)
}
