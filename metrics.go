package litmus

import (
	"sync/atomic"
	"time"

	"github.com/ehrlich-b/go-litmus/internal/constants"
	"github.com/ehrlich-b/go-litmus/internal/interfaces"
)

// Outcome is the pair of results the controller read for a trial
type Outcome struct {
	R1 uint32
	R2 uint32
}

// Anomalous reports whether the outcome is the store-buffering anomaly:
// both workers missed the other's store. No interleaving of the two
// program-ordered bodies can produce it.
func (o Outcome) Anomalous() bool {
	return o.R1 == 0 && o.R2 == 0
}

// Index maps the outcome to 0..3 as R1<<1 | R2 for the histogram.
// Any nonzero result counts as 1.
func (o Outcome) Index() int {
	i := 0
	if o.R1 != 0 {
		i |= 2
	}
	if o.R2 != 0 {
		i |= 1
	}
	return i
}

// OutcomeLabels names the histogram slots by Index
var OutcomeLabels = [4]string{"r1=0 r2=0", "r1=0 r2=1", "r1=1 r2=0", "r1=1 r2=1"}

// Metrics tracks the trial accounting for one harness. The controller is
// the only writer of the trial counters; readers may snapshot at any time.
type Metrics struct {
	Iterations atomic.Uint64 // Classified trials
	Anomalies  atomic.Uint64 // Trials that read both results as zero

	// Outcome histogram indexed by Outcome.Index
	Outcomes [4]atomic.Uint64

	// Pre-store delay statistics per worker
	DelayDraws  [constants.Workers]atomic.Uint64
	DelayEvents [constants.Workers]atomic.Uint64

	// Trial number of the first and latest anomaly, plus one (0 = none)
	FirstAnomaly atomic.Uint64
	LastAnomaly  atomic.Uint64

	StartTime atomic.Int64 // Run start timestamp (UnixNano)
	StopTime  atomic.Int64 // Run stop timestamp (UnixNano)
}

// NewMetrics creates a new metrics instance
func NewMetrics() *Metrics {
	m := &Metrics{}
	m.StartTime.Store(time.Now().UnixNano())
	return m
}

// RecordTrial classifies and counts one trial. It returns the outcome and
// the running anomaly and iteration counts including this trial.
func (m *Metrics) RecordTrial(trial uint64, r1, r2 uint32) (o Outcome, anomalies, iterations uint64) {
	o = Outcome{R1: r1, R2: r2}
	m.Outcomes[o.Index()].Add(1)

	// Iterations first: a reader loading Anomalies then Iterations must
	// never see more of the former.
	iterations = m.Iterations.Add(1)
	if o.Anomalous() {
		anomalies = m.Anomalies.Add(1)
		m.FirstAnomaly.CompareAndSwap(0, trial+1)
		m.LastAnomaly.Store(trial + 1)
	} else {
		anomalies = m.Anomalies.Load()
	}
	return o, anomalies, iterations
}

// RecordDelay records the draws a worker spun for before its store
func (m *Metrics) RecordDelay(worker int, draws uint64) {
	if worker < 0 || worker >= constants.Workers {
		return
	}
	m.DelayDraws[worker].Add(draws)
	m.DelayEvents[worker].Add(1)
}

// Stop marks the run as stopped
func (m *Metrics) Stop() {
	m.StopTime.Store(time.Now().UnixNano())
}

// Reset resets all counters (useful for testing)
func (m *Metrics) Reset() {
	m.Iterations.Store(0)
	m.Anomalies.Store(0)
	for i := range m.Outcomes {
		m.Outcomes[i].Store(0)
	}
	for i := 0; i < constants.Workers; i++ {
		m.DelayDraws[i].Store(0)
		m.DelayEvents[i].Store(0)
	}
	m.FirstAnomaly.Store(0)
	m.LastAnomaly.Store(0)
	m.StartTime.Store(time.Now().UnixNano())
	m.StopTime.Store(0)
}

// MetricsSnapshot is a point-in-time copy of Metrics
type MetricsSnapshot struct {
	Iterations uint64
	Anomalies  uint64
	Outcomes   [4]uint64

	// Trial numbers of the first and latest anomaly, valid when Anomalies > 0
	FirstAnomalyTrial uint64
	LastAnomalyTrial  uint64

	// Computed statistics
	AnomalyRate   float64 // Anomalies per trial
	TrialsPerSec  float64
	AvgDelayDraws [constants.Workers]float64
	UptimeNs      uint64
}

// Snapshot creates a point-in-time snapshot of metrics. Anomalies is read
// before Iterations, the reverse of the write order in RecordTrial.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{}
	snap.Anomalies = m.Anomalies.Load()
	snap.Iterations = m.Iterations.Load()
	for i := range m.Outcomes {
		snap.Outcomes[i] = m.Outcomes[i].Load()
	}

	if first := m.FirstAnomaly.Load(); first > 0 {
		snap.FirstAnomalyTrial = first - 1
	}
	if last := m.LastAnomaly.Load(); last > 0 {
		snap.LastAnomalyTrial = last - 1
	}

	if snap.Iterations > 0 {
		snap.AnomalyRate = float64(snap.Anomalies) / float64(snap.Iterations)
	}

	for i := 0; i < constants.Workers; i++ {
		if events := m.DelayEvents[i].Load(); events > 0 {
			snap.AvgDelayDraws[i] = float64(m.DelayDraws[i].Load()) / float64(events)
		}
	}

	startTime := m.StartTime.Load()
	stopTime := m.StopTime.Load()
	if stopTime > 0 {
		snap.UptimeNs = uint64(stopTime - startTime)
	} else {
		snap.UptimeNs = uint64(time.Now().UnixNano() - startTime)
	}
	if snap.UptimeNs > 0 {
		snap.TrialsPerSec = float64(snap.Iterations) / (float64(snap.UptimeNs) / 1e9)
	}

	return snap
}

// Observer allows pluggable per-trial observation
type Observer = interfaces.Observer

// NoOpObserver is a no-op implementation of Observer
type NoOpObserver struct{}

func (NoOpObserver) ObserveTrial(uint64, uint32, uint32) {}
func (NoOpObserver) ObserveDelay(int, uint64)            {}

// MetricsObserver implements Observer using the built-in Metrics. Only the
// delay events go through it; trials are counted by the controller itself.
type MetricsObserver struct {
	metrics *Metrics
}

// NewMetricsObserver creates an observer that records to the given metrics
func NewMetricsObserver(m *Metrics) *MetricsObserver {
	return &MetricsObserver{metrics: m}
}

func (o *MetricsObserver) ObserveTrial(uint64, uint32, uint32) {}

func (o *MetricsObserver) ObserveDelay(worker int, draws uint64) {
	o.metrics.RecordDelay(worker, draws)
}

// Compile-time interface check
var _ Observer = (*MetricsObserver)(nil)
var _ Observer = (*NoOpObserver)(nil)
