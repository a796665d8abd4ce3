//go:build !amd64

package memory

import "sync/atomic"

// Portable acquire/release. Go exposes no weaker-than-seq-cst atomics, so
// seq-cst serves as the conservative superset of the required order.

func loadAcquire(p *uint32) uint32 {
	return atomic.LoadUint32(p)
}

func storeRelease(p *uint32, v uint32) {
	atomic.StoreUint32(p, v)
}
