package litmus

import (
	"sync"
	"testing"
	"time"
)

func TestOutcome(t *testing.T) {
	tests := []struct {
		r1, r2    uint32
		anomalous bool
		index     int
	}{
		{0, 0, true, 0},
		{0, 1, false, 1},
		{1, 0, false, 2},
		{1, 1, false, 3},
		{7, 0, false, 2},
	}

	for _, tt := range tests {
		o := Outcome{R1: tt.r1, R2: tt.r2}
		if o.Anomalous() != tt.anomalous {
			t.Errorf("Outcome%+v.Anomalous() = %v, want %v", o, o.Anomalous(), tt.anomalous)
		}
		if o.Index() != tt.index {
			t.Errorf("Outcome%+v.Index() = %d, want %d", o, o.Index(), tt.index)
		}
	}
}

func TestMetricsRecordTrial(t *testing.T) {
	m := NewMetrics()

	snap := m.Snapshot()
	if snap.Iterations != 0 || snap.Anomalies != 0 {
		t.Errorf("Expected empty metrics, got %+v", snap)
	}

	// A synthetic both-zero result must be classified as an anomaly
	o, anomalies, iterations := m.RecordTrial(0, 0, 0)
	if !o.Anomalous() {
		t.Error("Expected (0,0) to be anomalous")
	}
	if anomalies != 1 || iterations != 1 {
		t.Errorf("Expected 1/1, got %d/%d", anomalies, iterations)
	}

	_, anomalies, iterations = m.RecordTrial(1, 1, 0)
	if anomalies != 1 || iterations != 2 {
		t.Errorf("Expected 1/2, got %d/%d", anomalies, iterations)
	}

	m.RecordTrial(2, 0, 1)
	m.RecordTrial(3, 0, 0)
	m.RecordTrial(4, 1, 1)

	snap = m.Snapshot()
	if snap.Iterations != 5 {
		t.Errorf("Expected 5 iterations, got %d", snap.Iterations)
	}
	if snap.Anomalies != 2 {
		t.Errorf("Expected 2 anomalies, got %d", snap.Anomalies)
	}
	if snap.Outcomes != [4]uint64{2, 1, 1, 1} {
		t.Errorf("Unexpected outcome histogram %v", snap.Outcomes)
	}
	if snap.FirstAnomalyTrial != 0 || snap.LastAnomalyTrial != 3 {
		t.Errorf("Expected first/last anomaly 0/3, got %d/%d", snap.FirstAnomalyTrial, snap.LastAnomalyTrial)
	}
	if snap.AnomalyRate < 0.399 || snap.AnomalyRate > 0.401 {
		t.Errorf("Expected anomaly rate 0.4, got %f", snap.AnomalyRate)
	}
}

func TestMetricsDelay(t *testing.T) {
	m := NewMetrics()

	m.RecordDelay(0, 4)
	m.RecordDelay(0, 12)
	m.RecordDelay(1, 3)
	m.RecordDelay(5, 100) // out of range, ignored
	m.RecordDelay(-1, 100)

	snap := m.Snapshot()
	if snap.AvgDelayDraws[0] != 8 {
		t.Errorf("Expected avg draws 8 for worker 0, got %f", snap.AvgDelayDraws[0])
	}
	if snap.AvgDelayDraws[1] != 3 {
		t.Errorf("Expected avg draws 3 for worker 1, got %f", snap.AvgDelayDraws[1])
	}
}

func TestMetricsUptime(t *testing.T) {
	m := NewMetrics()

	time.Sleep(10 * time.Millisecond)

	snap := m.Snapshot()
	if snap.UptimeNs < 10*1000000 {
		t.Errorf("Expected uptime >= 10ms, got %d ns", snap.UptimeNs)
	}

	m.Stop()
	time.Sleep(5 * time.Millisecond)

	snap2 := m.Snapshot()
	if snap2.UptimeNs > snap.UptimeNs+2*1000000 {
		t.Errorf("Uptime increased too much after stop: %d -> %d", snap.UptimeNs, snap2.UptimeNs)
	}
}

func TestMetricsReset(t *testing.T) {
	m := NewMetrics()
	m.RecordTrial(0, 0, 0)
	m.RecordDelay(1, 9)
	m.Stop()

	m.Reset()

	snap := m.Snapshot()
	if snap.Iterations != 0 || snap.Anomalies != 0 {
		t.Errorf("Expected counters cleared, got %+v", snap)
	}
	if snap.Outcomes != [4]uint64{} {
		t.Errorf("Expected histogram cleared, got %v", snap.Outcomes)
	}
	if snap.AvgDelayDraws[1] != 0 {
		t.Errorf("Expected delay stats cleared, got %v", snap.AvgDelayDraws)
	}
	if m.StopTime.Load() != 0 {
		t.Error("Expected stop time cleared")
	}
}

// Snapshots taken while trials are recorded never show more anomalies than
// iterations.
func TestMetricsConcurrentSnapshot(t *testing.T) {
	m := NewMetrics()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := uint64(0); i < 20000; i++ {
			m.RecordTrial(i, 0, 0)
		}
	}()

	var prev uint64
	for i := 0; i < 2000; i++ {
		snap := m.Snapshot()
		if snap.Anomalies > snap.Iterations {
			t.Fatalf("anomalies %d > iterations %d", snap.Anomalies, snap.Iterations)
		}
		if snap.Anomalies < prev {
			t.Fatalf("anomaly count went backwards: %d -> %d", prev, snap.Anomalies)
		}
		prev = snap.Anomalies
	}
	wg.Wait()
}

func TestObservers(t *testing.T) {
	m := NewMetrics()
	var obs Observer = NewMetricsObserver(m)
	obs.ObserveDelay(0, 6)
	obs.ObserveTrial(0, 0, 0)

	snap := m.Snapshot()
	if snap.AvgDelayDraws[0] != 6 {
		t.Errorf("Expected delay to be recorded, got %v", snap.AvgDelayDraws)
	}
	if snap.Iterations != 0 {
		t.Error("MetricsObserver must not count trials; the controller does")
	}

	// Must not panic
	NoOpObserver{}.ObserveDelay(0, 1)
	NoOpObserver{}.ObserveTrial(0, 1, 1)
}
