package litmus

import (
	"fmt"
	"io"
	"strings"
)

// Summary describes a run for humans: what was tested and what was seen
type Summary struct {
	RunID  string
	Mode   Mode
	Policy Policy
	Fence  bool
	Stats  MetricsSnapshot
}

// Summary returns the current summary of the run
func (h *Harness) Summary() Summary {
	return Summary{
		RunID:  h.RunID,
		Mode:   h.mode,
		Policy: h.policy,
		Fence:  h.params.Fence,
		Stats:  h.metrics.Snapshot(),
	}
}

// WriteSummary renders s as an aligned text block
func WriteSummary(w io.Writer, s Summary) error {
	var b strings.Builder

	fmt.Fprintf(&b, "run:         %s\n", s.RunID)
	fmt.Fprintf(&b, "ordering:    %s (%s)\n", s.Mode, s.Policy)
	fmt.Fprintf(&b, "fence:       %t\n", s.Fence)
	fmt.Fprintf(&b, "iterations:  %d\n", s.Stats.Iterations)
	fmt.Fprintf(&b, "anomalies:   %d (%.4f%%)\n", s.Stats.Anomalies, s.Stats.AnomalyRate*100)
	if s.Stats.Anomalies > 0 {
		fmt.Fprintf(&b, "first/last:  trial %d / trial %d\n", s.Stats.FirstAnomalyTrial, s.Stats.LastAnomalyTrial)
	}
	b.WriteString("outcomes:\n")
	for i, label := range OutcomeLabels {
		marker := ""
		if i == 0 {
			marker = "  <- store buffering"
		}
		fmt.Fprintf(&b, "  %s  %d%s\n", label, s.Stats.Outcomes[i], marker)
	}
	fmt.Fprintf(&b, "delay draws: A %.2f, B %.2f\n", s.Stats.AvgDelayDraws[0], s.Stats.AvgDelayDraws[1])
	fmt.Fprintf(&b, "throughput:  %.0f trials/s\n", s.Stats.TrialsPerSec)

	_, err := io.WriteString(w, b.String())
	return err
}
