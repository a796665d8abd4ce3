package interfaces

// Delay staggers a worker before its critical store. Implementations
// must busy-wait: a sleep or a yield hands the worker to the scheduler and
// adds ordering of its own, which can hide the reordering being measured.
type Delay interface {
	// Wait spins for a bounded, unpredictable time and returns the number
	// of random draws it took.
	Wait() uint64
}

// Logger is the subset of the logging API the internal packages use.
// *logging.Logger satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Observer receives per-trial events from the harness.
type Observer interface {
	// ObserveTrial is called once per classified trial with the two
	// result registers as read by the controller.
	ObserveTrial(trial uint64, r1, r2 uint32)

	// ObserveDelay is called by a worker after each pre-delay with the
	// number of draws it spun for.
	ObserveDelay(worker int, draws uint64)
}
