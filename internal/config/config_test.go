package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	litmus "github.com/ehrlich-b/go-litmus"
	"github.com/ehrlich-b/go-litmus/internal/logging"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "litmus.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFull(t *testing.T) {
	path := writeFile(t, `
ordering: AcquireRelease
fence: true
trials: 5000
strict_ordering: true
cpus: [2, 3]
seed: 42
span: 16
log:
  level: debug
  format: json
`)

	f, err := Load(path)
	require.NoError(t, err)

	p := litmus.DefaultParams()
	f.Apply(&p)
	assert.Equal(t, "AcquireRelease", p.Ordering)
	assert.True(t, p.Fence)
	assert.Equal(t, uint64(5000), p.Trials)
	assert.True(t, p.StrictOrdering)
	assert.Equal(t, []int{2, 3}, p.CPUs)
	assert.Equal(t, uint64(42), p.Seed)
	assert.Equal(t, 16, p.Span)

	lc := logging.DefaultConfig()
	f.ApplyLogging(lc)
	assert.Equal(t, logging.LevelDebug, lc.Level)
	assert.Equal(t, "json", lc.Format)
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	f, err := Parse([]byte("fence: true\n"))
	require.NoError(t, err)

	p := litmus.DefaultParams()
	seed := p.Seed
	f.Apply(&p)
	assert.True(t, p.Fence)
	assert.Equal(t, "Relaxed", p.Ordering)
	assert.Equal(t, seed, p.Seed)
	assert.Equal(t, litmus.DefaultSpan, p.Span)
	assert.Nil(t, p.CPUs)

	lc := logging.DefaultConfig()
	f.ApplyLogging(lc)
	assert.Equal(t, logging.LevelInfo, lc.Level)
	assert.Equal(t, "text", lc.Format)
}

func TestParseEmpty(t *testing.T) {
	f, err := Parse(nil)
	require.NoError(t, err)

	p := litmus.DefaultParams()
	want := p
	f.Apply(&p)
	assert.Equal(t, want, p)
}

// Explicit zero values in the file still override
func TestParseExplicitZero(t *testing.T) {
	f, err := Parse([]byte("seed: 0\nfence: false\n"))
	require.NoError(t, err)

	p := litmus.DefaultParams()
	p.Fence = true
	f.Apply(&p)
	assert.Zero(t, p.Seed)
	assert.False(t, p.Fence)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"unknown key", "orderin: Relaxed\n"},
		{"unknown log key", "log:\n  colour: true\n"},
		{"one cpu", "cpus: [1]\n"},
		{"negative cpu", "cpus: [1, -1]\n"},
		{"negative span", "span: -2\n"},
		{"bad level", "log:\n  level: loud\n"},
		{"bad format", "log:\n  format: xml\n"},
		{"strict unknown ordering", "ordering: Consume\nstrict_ordering: true\n"},
		{"malformed", "trials: [\n"},
		{"wrong type", "trials: many\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestPermissiveUnknownOrdering(t *testing.T) {
	f, err := Parse([]byte("ordering: Consume\n"))
	require.NoError(t, err)

	p := litmus.DefaultParams()
	f.Apply(&p)
	assert.Equal(t, litmus.Relaxed, litmus.ParseMode(p.Ordering))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
