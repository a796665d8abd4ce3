//go:build race

package memory

import "sync/atomic"

// Under the race detector plain accesses become atomics so the harness
// stays race-clean. Every mode then behaves as SeqCst.
const RaceEnabled = true

func loadPlain(p *uint32) uint32 {
	return atomic.LoadUint32(p)
}

func storePlain(p *uint32, v uint32) {
	atomic.StoreUint32(p, v)
}
