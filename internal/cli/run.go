package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	litmus "github.com/ehrlich-b/go-litmus"
	"github.com/ehrlich-b/go-litmus/internal/config"
	"github.com/ehrlich-b/go-litmus/internal/logging"
)

// buildParams layers defaults, the config file and explicitly set flags
func buildParams(cmd *cobra.Command, opts *RootOptions) (litmus.Params, *logging.Config, error) {
	params := litmus.DefaultParams()
	logConfig := logging.DefaultConfig()
	logConfig.Output = cmd.ErrOrStderr()
	logConfig.Sync = true

	if opts.ConfigPath != "" {
		f, err := config.Load(opts.ConfigPath)
		if err != nil {
			return params, nil, WrapExitError(ExitCommandError, "failed to load config", err)
		}
		f.Apply(&params)
		f.ApplyLogging(logConfig)
	}

	flags := cmd.Flags()
	if flags.Changed("ordering") {
		params.Ordering = opts.Ordering
	}
	if flags.Changed("barrier") {
		params.Fence = opts.Fence
	}
	if flags.Changed("trials") {
		params.Trials = opts.Trials
	}
	if flags.Changed("strict-ordering") {
		params.StrictOrdering = opts.StrictOrdering
	}
	if flags.Changed("cpus") {
		params.CPUs = opts.cpus
	}
	if flags.Changed("seed") {
		params.Seed = opts.Seed
	}
	if flags.Changed("span") {
		params.Span = opts.Span
	}
	if opts.Verbose {
		logConfig.Level = logging.LevelDebug
	}
	if flags.Changed("log-format") {
		logConfig.Format = opts.LogFormat
	}

	return params, logConfig, nil
}

func runLitmus(cmd *cobra.Command, opts *RootOptions) error {
	params, logConfig, err := buildParams(cmd, opts)
	if err != nil {
		return err
	}

	logger := logging.NewLogger(logConfig)

	out := &lockedWriter{w: cmd.OutOrStdout()}
	h, err := litmus.New(params, &litmus.Options{
		Logger: logger,
		Output: out,
	})
	if err != nil {
		code := ExitFailure
		if litmus.IsCode(err, litmus.ErrCodeInvalidParameters) || litmus.IsCode(err, litmus.ErrCodeUnknownOrdering) {
			code = ExitCommandError
		}
		return WrapExitError(code, "failed to create harness", err)
	}
	logger = logger.WithRun(h.RunID)
	logging.SetDefault(logger)
	logger.Info("configuration",
		"ordering", h.Mode().String(),
		"fence", params.Fence,
		"trials", params.Trials,
		"cpus", params.CPUs,
		"seed", params.Seed,
		"span", h.Params().Span)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGUSR1)
	defer signal.Stop(sigChan)

	runErr := make(chan error, 1)
	go func() {
		runErr <- h.Run()
	}()

	for {
		select {
		case err := <-runErr:
			if err != nil {
				return WrapExitError(ExitFailure, "litmus run failed", err)
			}
			return litmus.WriteSummary(out, h.Summary())

		case sig := <-sigChan:
			if sig == syscall.SIGUSR1 {
				if err := litmus.WriteSummary(out, h.Summary()); err != nil {
					logger.Warn("failed to write summary", "error", err.Error())
				}
				continue
			}
			// The workers are never joined; returning lets the process exit.
			logger.Info("received signal, stopping", "signal", sig.String())
			return litmus.WriteSummary(out, h.Summary())

		case <-ctx.Done():
			logger.Info("context cancelled, stopping")
			return litmus.WriteSummary(out, h.Summary())
		}
	}
}

// lockedWriter serializes anomaly lines from the controller with summaries
// printed on signals.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
