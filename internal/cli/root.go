// Package cli implements the litmus-sb command line.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	litmus "github.com/ehrlich-b/go-litmus"
	"github.com/ehrlich-b/go-litmus/internal/affinity"
	"github.com/ehrlich-b/go-litmus/internal/ordering"
)

// RootOptions holds the flags of the litmus-sb command
type RootOptions struct {
	Ordering       string
	Fence          bool
	Trials         uint64
	StrictOrdering bool
	CPUs           string
	Seed           uint64
	Span           int
	ConfigPath     string
	Verbose        bool
	LogFormat      string

	cpus []int
}

// Version is reported by --version
const Version = "1.0"

// ValidLogFormats defines the allowed log formats
var ValidLogFormats = []string{"text", "json"}

// NewRootCommand creates the litmus-sb command
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "litmus-sb",
		Short:   "Store-buffering litmus test",
		Version: Version,
		Long: `Run the store-buffering litmus test.

Two workers repeatedly set their own flag and read the other's. A trial in
which both read zero is a reordering the chosen memory ordering permits, and
is reported as it happens:

  <anomalies> Reorders observed after <iterations> iterations

Relaxed and AcquireRelease allow the reordering; SeqCst, or any ordering
with --barrier, forbid it.

Example:
  litmus-sb --ordering Relaxed
  litmus-sb -o AcquireRelease --barrier --trials 1000000
  litmus-sb -o SeqCst --cpus 2,3 --log-format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLitmus(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Ordering, "ordering", "o", ordering.NameRelaxed,
		fmt.Sprintf("memory ordering of the critical store and load (%v); unknown names run as Relaxed", ordering.Names()))
	cmd.Flags().BoolVarP(&opts.Fence, "barrier", "b", false, "insert a full fence between the store and the load")
	cmd.Flags().Uint64VarP(&opts.Trials, "trials", "n", litmus.Unbounded, "number of trials (0 runs until interrupted)")
	cmd.Flags().BoolVar(&opts.StrictOrdering, "strict-ordering", false, "reject unknown ordering names")
	cmd.Flags().StringVar(&opts.CPUs, "cpus", "", "pin worker A and B to two CPUs, e.g. 2,3")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "delay PRNG seed (time-based when unset)")
	cmd.Flags().IntVar(&opts.Span, "span", litmus.DefaultSpan, "delay draw range; the expected spin is span draws")
	cmd.Flags().StringVar(&opts.ConfigPath, "config", "", "YAML config file; flags given explicitly override it")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")
	cmd.PersistentFlags().StringVar(&opts.LogFormat, "log-format", "text", "log format (text|json)")

	cmd.AddCommand(NewModesCommand())

	return cmd
}

func (o *RootOptions) validate() error {
	if !isValidLogFormat(o.LogFormat) {
		return WrapExitError(ExitCommandError, "invalid flags",
			fmt.Errorf("invalid log format %q: must be one of %v", o.LogFormat, ValidLogFormats))
	}
	if o.StrictOrdering {
		if _, err := ordering.ParseStrict(o.Ordering); err != nil {
			return WrapExitError(ExitCommandError, "invalid flags", err)
		}
	}
	cpus, err := affinity.ParseList(o.CPUs)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid flags", err)
	}
	if cpus != nil && len(cpus) != litmus.Workers {
		return WrapExitError(ExitCommandError, "invalid flags",
			fmt.Errorf("--cpus needs exactly %d entries, got %d", litmus.Workers, len(cpus)))
	}
	o.cpus = cpus
	if o.Span < 0 {
		return WrapExitError(ExitCommandError, "invalid flags", fmt.Errorf("invalid span %d", o.Span))
	}
	return nil
}

// isValidLogFormat checks if the format is one of the allowed values
func isValidLogFormat(format string) bool {
	for _, f := range ValidLogFormats {
		if f == format {
			return true
		}
	}
	return false
}

// NewModesCommand lists the ordering modes and the orders each one applies
func NewModesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "modes",
		Short: "List ordering modes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, m := range ordering.Modes() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-15s %s\n", m, m.Policy())
			}
			return nil
		},
	}
}
