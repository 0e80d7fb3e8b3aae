package model

import (
	"sync"

	"github.com/YuminosukeSato/ensemble/metrics"
)

// RunState holds the mutable state of a search that outlives single steps:
// the decay weight applied to the next insertion and the bootstrap seed. It
// is advanced once per committed move and is safe for concurrent reads.
type RunState struct {
	mu sync.RWMutex

	DecayWeight      float64
	DecayConstant    float64
	BootstrapSeed    int64
	BootstrapSamples int
	Commits          int
}

// NewRunState creates a run state. A decay constant <= 0 disables decay and
// keeps the weight at 1.
func NewRunState(decay float64, seed int64, samples int) *RunState {
	return &RunState{
		DecayWeight:      1,
		DecayConstant:    decay,
		BootstrapSeed:    seed,
		BootstrapSamples: samples,
	}
}

// Weight returns the weight the next insertion uses.
func (s *RunState) Weight() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.DecayWeight
}

// Seed returns the current bootstrap seed.
func (s *RunState) Seed() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.BootstrapSeed
}

// Evaluator returns ev seeded with the current bootstrap seed.
func (s *RunState) Evaluator(ev metrics.Evaluator) metrics.Evaluator {
	return ev.WithSeed(s.Seed())
}

// Advance applies the side effects of a committed move. Decay and reseeding
// are independent of each other.
func (s *RunState) Advance() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.DecayConstant > 0 {
		s.DecayWeight *= s.DecayConstant
	}
	if s.BootstrapSamples > 0 {
		s.BootstrapSeed += int64(s.BootstrapSamples)
	}
	s.Commits++
}

// RunSnapshot is a plain copy of a RunState.
type RunSnapshot struct {
	DecayWeight   float64 `json:"decay_weight"`
	BootstrapSeed int64   `json:"bootstrap_seed"`
	Commits       int     `json:"commits"`
}

// GetState returns the current state as a RunSnapshot.
func (s *RunState) GetState() RunSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return RunSnapshot{
		DecayWeight:   s.DecayWeight,
		BootstrapSeed: s.BootstrapSeed,
		Commits:       s.Commits,
	}
}
