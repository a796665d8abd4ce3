// Package ordering maps ordering-mode names to the per-access memory orders
// used by the critical store and load of each worker.
package ordering

import (
	"errors"
	"fmt"
)

// Order is the memory ordering of a single atomic access
type Order int

const (
	Relaxed Order = iota
	Acquire
	Release
	SeqCst
)

func (o Order) String() string {
	switch o {
	case Relaxed:
		return "Relaxed"
	case Acquire:
		return "Acquire"
	case Release:
		return "Release"
	case SeqCst:
		return "SeqCst"
	default:
		return fmt.Sprintf("Order(%d)", int(o))
	}
}

// Mode selects the (load, store) order pair for the whole run
type Mode int

const (
	// ModeRelaxed gives no inter-thread ordering guarantee. It is the default.
	ModeRelaxed Mode = iota
	// ModeAcquireRelease stores with release and loads with acquire semantics.
	ModeAcquireRelease
	// ModeSeqCst puts the store and the load in a single global total order.
	ModeSeqCst
)

// Recognized mode names
const (
	NameRelaxed        = "Relaxed"
	NameAcquireRelease = "AcquireRelease"
	NameSeqCst         = "SeqCst"
)

// ErrUnknownMode is returned by ParseStrict for names outside the mode table
var ErrUnknownMode = errors.New("unknown ordering mode")

var modeNames = map[string]Mode{
	NameRelaxed:        ModeRelaxed,
	NameAcquireRelease: ModeAcquireRelease,
	NameSeqCst:         ModeSeqCst,
}

// Policy is the pair of orders applied to the critical load and store
type Policy struct {
	Load  Order
	Store Order
}

func (p Policy) String() string {
	return fmt.Sprintf("load=%s store=%s", p.Load, p.Store)
}

// Parse returns the mode for name. Unrecognized names, including the empty
// string, yield ModeRelaxed.
func Parse(name string) Mode {
	if m, ok := modeNames[name]; ok {
		return m
	}
	return ModeRelaxed
}

// ParseStrict is Parse without the fallback.
func ParseStrict(name string) (Mode, error) {
	m, ok := modeNames[name]
	if !ok {
		return ModeRelaxed, fmt.Errorf("%w %q (want one of %v)", ErrUnknownMode, name, Names())
	}
	return m, nil
}

// Known reports whether name is one of the recognized mode names
func Known(name string) bool {
	_, ok := modeNames[name]
	return ok
}

// Modes lists the recognized modes from weakest to strongest
func Modes() []Mode {
	return []Mode{ModeRelaxed, ModeAcquireRelease, ModeSeqCst}
}

// Names lists the recognized mode names from weakest to strongest
func Names() []string {
	return []string{NameRelaxed, NameAcquireRelease, NameSeqCst}
}

// Policy returns the (load, store) orders for the mode
func (m Mode) Policy() Policy {
	switch m {
	case ModeAcquireRelease:
		return Policy{Load: Acquire, Store: Release}
	case ModeSeqCst:
		return Policy{Load: SeqCst, Store: SeqCst}
	default:
		return Policy{Load: Relaxed, Store: Relaxed}
	}
}

func (m Mode) String() string {
	switch m {
	case ModeRelaxed:
		return NameRelaxed
	case ModeAcquireRelease:
		return NameAcquireRelease
	case ModeSeqCst:
		return NameSeqCst
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}
