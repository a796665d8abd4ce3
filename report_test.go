package litmus

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteSummaryGolden(t *testing.T) {
	tests := []struct {
		name    string
		summary Summary
	}{
		{
			name: "summary_anomalies",
			summary: Summary{
				RunID:  uuid.Nil.String(),
				Mode:   Relaxed,
				Policy: Relaxed.Policy(),
				Fence:  true,
				Stats: MetricsSnapshot{
					Iterations:        1000,
					Anomalies:         3,
					Outcomes:          [4]uint64{3, 480, 510, 7},
					FirstAnomalyTrial: 17,
					LastAnomalyTrial:  912,
					AnomalyRate:       0.003,
					TrialsPerSec:      250000,
					AvgDelayDraws:     [Workers]float64{8, 7.5},
				},
			},
		},
		{
			name: "summary_clean",
			summary: Summary{
				RunID:  uuid.Nil.String(),
				Mode:   SeqCst,
				Policy: SeqCst.Policy(),
				Stats: MetricsSnapshot{
					Iterations: 500,
					Outcomes:   [4]uint64{0, 250, 249, 1},
				},
			},
		},
	}

	g := goldie.New(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteSummary(&buf, tt.summary))
			g.Assert(t, tt.name, buf.Bytes())
		})
	}
}

func TestHarnessSummary(t *testing.T) {
	params := DefaultParams()
	params.Ordering = "AcquireRelease"
	params.Fence = true
	params.Trials = 100

	h, _ := newTestHarness(t, params, nil)
	require.NoError(t, h.Run())

	s := h.Summary()
	assert.Equal(t, h.RunID, s.RunID)
	assert.Equal(t, AcquireRelease, s.Mode)
	assert.Equal(t, AcquireRelease.Policy(), s.Policy)
	assert.True(t, s.Fence)
	assert.Equal(t, uint64(100), s.Stats.Iterations)

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, s))
	assert.Contains(t, buf.String(), "ordering:    AcquireRelease (load=Acquire store=Release)")
	assert.Contains(t, buf.String(), "iterations:  100\n")
}
