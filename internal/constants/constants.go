package constants

import "time"

// Harness shape
const (
	// Parties is the number of goroutines meeting at the trial barrier:
	// the controller and two workers.
	Parties = 3

	// Workers is the number of racing workers
	Workers = 2

	// Unbounded as a trial budget means run until the process is killed
	Unbounded = 0
)

// Delay generator defaults
const (
	// DefaultSpan is the size of the uniform draw range used by the spin
	// delay. The spin ends on a zero draw, so the expected spin is Span draws.
	DefaultSpan = 8

	// MinSpan is the smallest span that still produces a random delay
	MinSpan = 2
)

// Memory layout
const (
	// CacheLineSize is the padding unit that keeps registers on separate lines
	CacheLineSize = 64
)

// Reporting
const (
	// SummaryInterval is the minimum gap between periodic summaries in
	// verbose mode
	SummaryInterval = 10 * time.Second

	// MinParallelism is the GOMAXPROCS value below which the workers
	// cannot actually run at the same time
	MinParallelism = Parties
)
