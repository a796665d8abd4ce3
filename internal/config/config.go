// Package config loads run settings from a YAML file.
//
// Every key is optional. Keys left out of the file leave the corresponding
// setting untouched, so a file can be layered over the defaults and then
// overridden again by command-line flags.
//
//	ordering: AcquireRelease
//	fence: true
//	trials: 1000000
//	cpus: [2, 3]
//	log:
//	  level: debug
//	  format: json
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	litmus "github.com/ehrlich-b/go-litmus"
	"github.com/ehrlich-b/go-litmus/internal/logging"
	"github.com/ehrlich-b/go-litmus/internal/ordering"
)

// File mirrors the YAML layout. Pointer fields distinguish "absent" from
// the zero value.
type File struct {
	Ordering       *string `yaml:"ordering"`
	Fence          *bool   `yaml:"fence"`
	Trials         *uint64 `yaml:"trials"`
	StrictOrdering *bool   `yaml:"strict_ordering"`
	CPUs           []int   `yaml:"cpus"`
	Seed           *uint64 `yaml:"seed"`
	Span           *int    `yaml:"span"`
	Log            Log     `yaml:"log"`
}

// Log is the logging section of the file
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads and validates a config file
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes YAML config data. Unknown keys are an error.
func Parse(data []byte) (*File, error) {
	var f File
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := f.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &f, nil
}

func (f *File) validate() error {
	if f.StrictOrdering != nil && *f.StrictOrdering && f.Ordering != nil && !ordering.Known(*f.Ordering) {
		return fmt.Errorf("ordering %q: %w", *f.Ordering, ordering.ErrUnknownMode)
	}
	if f.CPUs != nil && len(f.CPUs) != litmus.Workers {
		return fmt.Errorf("cpus must list exactly %d entries, got %d", litmus.Workers, len(f.CPUs))
	}
	for _, cpu := range f.CPUs {
		if cpu < 0 {
			return fmt.Errorf("invalid cpu %d", cpu)
		}
	}
	if f.Span != nil && *f.Span < 0 {
		return fmt.Errorf("invalid span %d", *f.Span)
	}
	if f.Log.Level != "" {
		if _, err := logging.ParseLevel(f.Log.Level); err != nil {
			return err
		}
	}
	switch f.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("invalid log format %q: must be text or json", f.Log.Format)
	}
	return nil
}

// Apply copies every setting present in the file onto p
func (f *File) Apply(p *litmus.Params) {
	if f.Ordering != nil {
		p.Ordering = *f.Ordering
	}
	if f.Fence != nil {
		p.Fence = *f.Fence
	}
	if f.Trials != nil {
		p.Trials = *f.Trials
	}
	if f.StrictOrdering != nil {
		p.StrictOrdering = *f.StrictOrdering
	}
	if f.CPUs != nil {
		p.CPUs = append([]int(nil), f.CPUs...)
	}
	if f.Seed != nil {
		p.Seed = *f.Seed
	}
	if f.Span != nil {
		p.Span = *f.Span
	}
}

// ApplyLogging copies the log section onto c. The level has already been
// validated by Parse.
func (f *File) ApplyLogging(c *logging.Config) {
	if f.Log.Level != "" {
		c.Level, _ = logging.ParseLevel(f.Log.Level)
	}
	if f.Log.Format != "" {
		c.Format = f.Log.Format
	}
}
