//go:build !race

package memory

// RaceEnabled reports whether plain accesses have been replaced by atomics
// for the race detector. With it set, no ordering mode can reorder.
const RaceEnabled = false

// loadPlain is a single word-sized load with no ordering beyond what the
// hardware provides. Kept out of line so the compiler cannot merge or
// hoist it across the surrounding accesses.
//
//go:noinline
func loadPlain(p *uint32) uint32 {
	return *p
}

//go:noinline
func storePlain(p *uint32, v uint32) {
	*p = v
}
