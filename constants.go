package litmus

import "github.com/ehrlich-b/go-litmus/internal/constants"

// Re-export constants for public API
const (
	Parties       = constants.Parties
	Workers       = constants.Workers
	Unbounded     = constants.Unbounded
	DefaultSpan   = constants.DefaultSpan
	CacheLineSize = constants.CacheLineSize
)
