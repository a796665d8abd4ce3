package memory

import (
	"github.com/ehrlich-b/go-litmus/internal/constants"
	"github.com/ehrlich-b/go-litmus/internal/ordering"
)

// State is the process-wide set of registers used by one litmus run.
// X and Y are the flags, R1 and R2 the values the workers observed.
type State struct {
	_  [constants.CacheLineSize]byte
	X  Register
	Y  Register
	R1 Register
	R2 Register
}

// NewState returns a state with both flags clear and both results set to 1,
// so an unwritten result can never read as an anomaly.
func NewState() *State {
	s := &State{}
	s.R1.Store(1, ordering.SeqCst)
	s.R2.Store(1, ordering.SeqCst)
	return s
}

// Reset clears both flags with the strongest ordering.
func (s *State) Reset() {
	s.X.Store(0, ordering.SeqCst)
	s.Y.Store(0, ordering.SeqCst)
}

// Results reads both result registers with the strongest ordering.
func (s *State) Results() (r1, r2 uint32) {
	return s.R1.Load(ordering.SeqCst), s.R2.Load(ordering.SeqCst)
}
