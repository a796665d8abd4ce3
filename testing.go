package litmus

import "sync"

// RecordingObserver keeps every classified trial and every delay event in
// memory. It is meant for tests of code built on the harness; a long run
// will grow it without bound.
type RecordingObserver struct {
	mu       sync.Mutex
	outcomes []Outcome
	trials   []uint64
	delays   [Workers]uint64
}

// NewRecordingObserver creates an empty recorder
func NewRecordingObserver() *RecordingObserver {
	return &RecordingObserver{}
}

// ObserveTrial implements Observer
func (r *RecordingObserver) ObserveTrial(trial uint64, r1, r2 uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trials = append(r.trials, trial)
	r.outcomes = append(r.outcomes, Outcome{R1: r1, R2: r2})
}

// ObserveDelay implements Observer
func (r *RecordingObserver) ObserveDelay(worker int, draws uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if worker >= 0 && worker < Workers {
		r.delays[worker]++
	}
}

// Outcomes returns a copy of the recorded outcomes in trial order
func (r *RecordingObserver) Outcomes() []Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Outcome, len(r.outcomes))
	copy(out, r.outcomes)
	return out
}

// Trials returns a copy of the recorded trial numbers
func (r *RecordingObserver) Trials() []uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]uint64, len(r.trials))
	copy(out, r.trials)
	return out
}

// DelayEvents returns how many delays each worker reported
func (r *RecordingObserver) DelayEvents() [Workers]uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.delays
}

// Reset clears everything recorded so far
func (r *RecordingObserver) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = nil
	r.trials = nil
	r.delays = [Workers]uint64{}
}

// Compile-time interface check
var _ Observer = (*RecordingObserver)(nil)
