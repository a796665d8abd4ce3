// Package memory holds the registers shared by the controller and both
// workers, and the accessors that apply a per-call-site memory order.
package memory

import (
	"sync/atomic"

	"github.com/ehrlich-b/go-litmus/internal/constants"
	"github.com/ehrlich-b/go-litmus/internal/ordering"
)

// Register is a 32-bit cell padded out to a full cache line so that two
// registers never share a line.
type Register struct {
	v uint32
	_ [constants.CacheLineSize - 4]byte
}

// Load reads the register with the given order. An order that is
// meaningless for a load (Release) is upgraded to SeqCst.
func (r *Register) Load(order ordering.Order) uint32 {
	switch order {
	case ordering.Relaxed:
		return loadPlain(&r.v)
	case ordering.Acquire:
		return loadAcquire(&r.v)
	default:
		return atomic.LoadUint32(&r.v)
	}
}

// Store writes v with the given order. An order that is meaningless for a
// store (Acquire) is upgraded to SeqCst.
func (r *Register) Store(v uint32, order ordering.Order) {
	switch order {
	case ordering.Relaxed:
		storePlain(&r.v, v)
	case ordering.Release:
		storeRelease(&r.v, v)
	default:
		atomic.StoreUint32(&r.v, v)
	}
}
