//go:build !linux

package affinity

// Pin is unsupported off Linux; NoCPU is still accepted.
func Pin(cpu int) error {
	if cpu == NoCPU {
		return nil
	}
	return ErrUnsupported
}

// Allowed is unsupported off Linux
func Allowed() ([]int, error) {
	return nil, ErrUnsupported
}
