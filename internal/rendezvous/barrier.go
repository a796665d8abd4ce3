// Package rendezvous provides the reusable barrier that marks the start of
// every trial.
package rendezvous

import (
	"fmt"
	"sync"
)

// Barrier is a cyclic barrier for a fixed number of parties. Each
// generation opens once every party has called Wait, after which the
// barrier is ready for the next generation.
//
// Everything a party does before Wait happens-before everything any party
// does after the matching Wait returns.
type Barrier struct {
	parties int

	mu         sync.Mutex
	cond       *sync.Cond
	arrived    int
	generation uint64
}

// New creates a barrier for the given number of parties.
func New(parties int) *Barrier {
	if parties < 1 {
		panic(fmt.Sprintf("rendezvous: invalid party count %d", parties))
	}
	b := &Barrier{parties: parties}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Parties returns the number of parties the barrier waits for
func (b *Barrier) Parties() int {
	return b.parties
}

// Wait blocks until all parties have arrived for the current generation.
// Exactly one caller per generation, the last to arrive, gets true.
func (b *Barrier) Wait() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	gen := b.generation
	b.arrived++
	if b.arrived == b.parties {
		b.arrived = 0
		b.generation++
		b.cond.Broadcast()
		return true
	}

	for gen == b.generation {
		b.cond.Wait()
	}
	return false
}

// Generation returns the number of generations that have opened so far
func (b *Barrier) Generation() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.generation
}
