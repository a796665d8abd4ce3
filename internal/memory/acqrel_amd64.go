//go:build amd64

package memory

// x86-64 is TSO: every plain load already has acquire semantics and every
// plain store release semantics. Only store->load may be reordered, which
// acquire/release does not forbid.

func loadAcquire(p *uint32) uint32 {
	return loadPlain(p)
}

func storeRelease(p *uint32, v uint32) {
	storePlain(p, v)
}
