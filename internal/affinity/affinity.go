// Package affinity pins the calling OS thread to a single CPU.
package affinity

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnsupported is returned by Pin on platforms without thread affinity
var ErrUnsupported = errors.New("cpu affinity not supported on this platform")

// NoCPU means "do not pin"
const NoCPU = -1

// ParseList parses a comma separated CPU list such as "2,3". Whitespace
// around entries is ignored; an empty string yields nil.
func ParseList(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	cpus := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid cpu %q: %w", p, err)
		}
		if n < 0 {
			return nil, fmt.Errorf("invalid cpu %d: must be >= 0", n)
		}
		cpus = append(cpus, n)
	}
	return cpus, nil
}
