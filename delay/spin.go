// Package delay provides the pre-store delays used to stagger the two
// workers inside a trial.
package delay

import (
	"math/rand/v2"

	"github.com/ehrlich-b/go-litmus/internal/constants"
	"github.com/ehrlich-b/go-litmus/internal/interfaces"
)

// Spin busy-waits by drawing uniformly from [0, span) until it draws zero.
// The number of draws is geometric with mean span, which is short enough to
// keep trials fast and irregular enough to shift the two critical sections
// against each other.
//
// A Spin is owned by a single worker and is not safe for concurrent use.
type Spin struct {
	rng  *rand.Rand
	span uint64
}

// NewSpin creates a spin delay. Spans below 2 are raised to 2, since a
// span of 1 always draws zero at once.
func NewSpin(seed uint64, span int) *Spin {
	if span < constants.MinSpan {
		span = constants.MinSpan
	}
	return &Spin{
		rng:  rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		span: uint64(span),
	}
}

// Span returns the size of the draw range
func (s *Spin) Span() int {
	return int(s.span)
}

// Wait implements interfaces.Delay
func (s *Spin) Wait() uint64 {
	draws := uint64(1)
	for s.rng.Uint64N(s.span) != 0 {
		draws++
	}
	return draws
}

// None is a delay that returns at once
type None struct{}

// Wait implements interfaces.Delay
func (None) Wait() uint64 { return 0 }

// Factory builds the delay for one worker. The harness calls it once per
// worker at construction time.
type Factory func(worker int) interfaces.Delay

// SpinFactory returns a factory producing independent Spin delays seeded
// from seed and the worker id.
func SpinFactory(seed uint64, span int) Factory {
	return func(worker int) interfaces.Delay {
		return NewSpin(seed+uint64(worker)*0x2545f4914f6cdd1d, span)
	}
}

// NoneFactory returns a factory producing None delays
func NoneFactory() Factory {
	return func(int) interfaces.Delay { return None{} }
}

// Compile-time interface checks
var (
	_ interfaces.Delay = (*Spin)(nil)
	_ interfaces.Delay = None{}
)
