// Package litmus runs the store-buffering litmus test: two workers each set
// their own flag and read the other's, and a controller counts the trials in
// which both read zero.
//
// Each trial resets the flags, opens a three-party barrier, waits for both
// workers to report, and classifies the two results. The ordering mode and
// the optional fence only apply to the critical store and load inside the
// workers; everything else uses the strongest ordering.
//
// Example:
//
//	params := litmus.DefaultParams()
//	params.Ordering = "SeqCst"
//	params.Trials = 100_000
//	h, err := litmus.New(params, nil)
//	if err != nil { ... }
//	err = h.Run()
//	fmt.Println(h.Stats().Anomalies) // 0
package litmus

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/ehrlich-b/go-litmus/delay"
	"github.com/ehrlich-b/go-litmus/internal/affinity"
	"github.com/ehrlich-b/go-litmus/internal/constants"
	"github.com/ehrlich-b/go-litmus/internal/interfaces"
	"github.com/ehrlich-b/go-litmus/internal/logging"
	"github.com/ehrlich-b/go-litmus/internal/memory"
	"github.com/ehrlich-b/go-litmus/internal/ordering"
	"github.com/ehrlich-b/go-litmus/internal/rendezvous"
	"github.com/ehrlich-b/go-litmus/internal/worker"
)

// Mode is the ordering mode applied to the critical store and load
type Mode = ordering.Mode

// Order is the ordering of a single access
type Order = ordering.Order

// Policy is the (load, store) order pair derived from a Mode
type Policy = ordering.Policy

// Logger is the logging interface the harness writes to
type Logger = interfaces.Logger

const (
	Relaxed        = ordering.ModeRelaxed
	AcquireRelease = ordering.ModeAcquireRelease
	SeqCst         = ordering.ModeSeqCst
)

// ParseMode resolves an ordering name, treating unknown names as Relaxed
func ParseMode(name string) Mode {
	return ordering.Parse(name)
}

// ParseModeStrict resolves an ordering name and rejects unknown ones
func ParseModeStrict(name string) (Mode, error) {
	m, err := ordering.ParseStrict(name)
	if err != nil {
		return m, WrapError("PARSE_ORDERING", err)
	}
	return m, nil
}

// ModeNames lists the recognized ordering names
func ModeNames() []string {
	return ordering.Names()
}

// Params describes one litmus run
type Params struct {
	// Ordering names the mode: "Relaxed", "AcquireRelease" or "SeqCst".
	// Anything else runs as Relaxed unless StrictOrdering is set.
	Ordering       string
	StrictOrdering bool

	// Fence inserts a full fence between each worker's store and load
	Fence bool

	// Trials bounds the run; Unbounded (0) runs until the process exits
	Trials uint64

	// CPUs pins worker A and worker B to these CPUs. Empty leaves
	// scheduling to the OS.
	CPUs []int

	// Seed and Span configure the default spin delay
	Seed uint64
	Span int

	// Delay overrides the delay used by each worker (nil uses a spin delay
	// built from Seed and Span)
	Delay delay.Factory
}

// DefaultParams returns default run parameters: Relaxed, no fence,
// unbounded, unpinned, time-seeded spin delay.
func DefaultParams() Params {
	return Params{
		Ordering: ordering.NameRelaxed,
		Trials:   constants.Unbounded,
		Seed:     uint64(time.Now().UnixNano()),
		Span:     constants.DefaultSpan,
	}
}

// Options contains collaborators for the harness
type Options struct {
	// Logger for debug/info messages (if nil, no logging)
	Logger Logger

	// Observer receives every classified trial and delay (optional)
	Observer Observer

	// Output receives one line per anomaly (if nil, os.Stdout)
	Output io.Writer
}

// Phase is the controller's position within a trial
type Phase int32

const (
	PhaseIdle Phase = iota
	PhaseBarrierWait
	PhaseRacing
	PhaseAwaitingCompletion
	PhaseClassified
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "Idle"
	case PhaseBarrierWait:
		return "BarrierWait"
	case PhaseRacing:
		return "Racing"
	case PhaseAwaitingCompletion:
		return "AwaitingCompletion"
	case PhaseClassified:
		return "Classified"
	default:
		return fmt.Sprintf("Phase(%d)", int32(p))
	}
}

// Harness is the controller of a litmus run. It owns the trial loop and
// shares the registers with the two workers it starts.
type Harness struct {
	// RunID identifies the run in logs and summaries
	RunID string

	params  Params
	mode    Mode
	policy  Policy
	state   *memory.State
	barrier *rendezvous.Barrier
	done    chan worker.Completion
	workers [constants.Workers]*worker.Runner

	metrics  *Metrics
	observer Observer
	logger   Logger
	out      io.Writer

	running atomic.Bool
	phase   atomic.Int32
}

// New validates params and wires the shared state, the barrier and both
// workers. Nothing runs until Run is called.
func New(params Params, options *Options) (*Harness, error) {
	if options == nil {
		options = &Options{}
	}

	mode := ordering.Parse(params.Ordering)
	if params.StrictOrdering {
		m, err := ordering.ParseStrict(params.Ordering)
		if err != nil {
			return nil, WrapError("NEW", err)
		}
		mode = m
	}

	cpus := []int{affinity.NoCPU, affinity.NoCPU}
	switch len(params.CPUs) {
	case 0:
	case constants.Workers:
		for i, cpu := range params.CPUs {
			if cpu < 0 {
				return nil, NewError("NEW", ErrCodeInvalidParameters,
					fmt.Sprintf("invalid cpu %d", cpu))
			}
			cpus[i] = cpu
		}
	default:
		return nil, NewError("NEW", ErrCodeInvalidParameters,
			fmt.Sprintf("need exactly %d cpus, got %d", constants.Workers, len(params.CPUs)))
	}

	if params.Span < 0 {
		return nil, NewError("NEW", ErrCodeInvalidParameters,
			fmt.Sprintf("invalid delay span %d", params.Span))
	}
	if params.Span == 0 {
		params.Span = constants.DefaultSpan
	}
	delays := params.Delay
	if delays == nil {
		delays = delay.SpinFactory(params.Seed, params.Span)
	}

	h := &Harness{
		RunID:   uuid.NewString(),
		params:  params,
		mode:    mode,
		policy:  mode.Policy(),
		state:   memory.NewState(),
		barrier: rendezvous.New(constants.Parties),
		// Each worker sends once per trial and then blocks on the next
		// barrier, so two slots make every send non-blocking.
		done:     make(chan worker.Completion, constants.Workers),
		metrics:  NewMetrics(),
		observer: options.Observer,
		logger:   options.Logger,
		out:      options.Output,
	}
	if h.observer == nil {
		h.observer = NoOpObserver{}
	}
	if h.out == nil {
		h.out = os.Stdout
	}

	workerObserver := fanout{NewMetricsObserver(h.metrics), h.observer}
	for id := 0; id < constants.Workers; id++ {
		cfg := worker.ForRole(id, h.state, worker.Config{
			Policy:   h.policy,
			Fence:    params.Fence,
			Barrier:  h.barrier,
			Done:     h.done,
			Delay:    delays(id),
			Trials:   params.Trials,
			CPU:      cpus[id],
			Logger:   withWorker(h.logger, id),
			Observer: workerObserver,
		})
		r, err := worker.NewRunner(cfg)
		if err != nil {
			return nil, WrapError("NEW", err)
		}
		h.workers[id] = r
	}

	return h, nil
}

// Mode returns the resolved ordering mode
func (h *Harness) Mode() Mode {
	return h.mode
}

// Policy returns the (load, store) orders used by the workers
func (h *Harness) Policy() Policy {
	return h.policy
}

// Params returns the parameters the harness was built with
func (h *Harness) Params() Params {
	return h.params
}

// Phase returns the controller's current phase
func (h *Harness) Phase() Phase {
	return Phase(h.phase.Load())
}

// Stats returns a snapshot of the trial accounting. Safe to call while Run
// is in progress.
func (h *Harness) Stats() MetricsSnapshot {
	return h.metrics.Snapshot()
}

// Run starts both workers and drives trials on the calling goroutine,
// which stays locked to its OS thread until Run returns. With an unbounded
// budget it never returns unless the trial protocol is violated; with a
// budget it returns nil after that many trials. If either worker fails to
// start, both exit before the first trial. Run may only be called once.
func (h *Harness) Run() error {
	if !h.running.CompareAndSwap(false, true) {
		return NewError("RUN", ErrCodeAlreadyRunning, "Run called twice")
	}

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if h.logger != nil {
		if procs := runtime.GOMAXPROCS(0); procs < constants.MinParallelism {
			h.logger.Warn("GOMAXPROCS too low for the workers to race in parallel",
				"gomaxprocs", procs, "want", constants.MinParallelism)
		}
		if memory.RaceEnabled {
			h.logger.Warn("race detector build: every access is seq-cst, anomalies cannot occur")
		}
		h.logger.Info("starting litmus run",
			"run_id", h.RunID,
			"ordering", h.mode.String(),
			"load", h.policy.Load.String(),
			"store", h.policy.Store.String(),
			"fence", h.params.Fence,
			"trials", h.params.Trials)
	}

	if err := h.startWorkers(); err != nil {
		return err
	}

	h.metrics.Reset()
	err := h.loop()
	h.metrics.Stop()
	h.phase.Store(int32(PhaseIdle))

	if h.logger != nil {
		snap := h.metrics.Snapshot()
		if err != nil {
			withError(h.logger, err).Error("litmus run aborted",
				"iterations", snap.Iterations, "anomalies", snap.Anomalies)
		} else {
			h.logger.Info("litmus run finished",
				"iterations", snap.Iterations, "anomalies", snap.Anomalies)
		}
	}
	return err
}

// startWorkers waits until every worker is ready, then releases all of
// them into the trial loop, or none if any failed.
func (h *Harness) startWorkers() error {
	var ready [constants.Workers]<-chan error
	for i, w := range h.workers {
		ready[i] = w.Start()
	}

	var first *Error
	var started [constants.Workers]bool
	for i, w := range h.workers {
		err := <-ready[i]
		if err == nil {
			started[i] = true
			continue
		}
		if first == nil {
			first = WrapError("START", err)
			first.Code = ErrCodeAffinity
			first.Worker = w.ID()
		}
	}

	for i, w := range h.workers {
		if started[i] {
			w.Release(first == nil)
		}
	}
	if first != nil {
		return first
	}
	return nil
}

// loop is the controller side of the trial protocol
func (h *Harness) loop() error {
	budget := h.params.Trials
	lastProgress := time.Now()

	for trial := uint64(0); budget == 0 || trial < budget; trial++ {
		h.phase.Store(int32(PhaseIdle))
		h.state.Reset()

		h.phase.Store(int32(PhaseBarrierWait))
		h.barrier.Wait()
		h.phase.Store(int32(PhaseRacing))

		if err := h.collect(trial); err != nil {
			return err
		}

		r1, r2 := h.state.Results()
		h.phase.Store(int32(PhaseClassified))

		anomalies, iterations := h.classify(trial, r1, r2)
		if h.logger != nil && iterations&progressMask == 0 && time.Since(lastProgress) >= constants.SummaryInterval {
			lastProgress = time.Now()
			h.logger.Debug("progress", "iterations", iterations, "anomalies", anomalies)
		}
	}
	return nil
}

// classify counts the trial and reports it when both results are zero.
// It returns the running anomaly and iteration counts.
func (h *Harness) classify(trial uint64, r1, r2 uint32) (anomalies, iterations uint64) {
	o, anomalies, iterations := h.metrics.RecordTrial(trial, r1, r2)
	h.observer.ObserveTrial(trial, r1, r2)
	if o.Anomalous() {
		fmt.Fprintf(h.out, "%d Reorders observed after %d iterations\n", anomalies, iterations)
		if h.logger != nil {
			withTrial(h.logger, trial).Debug("store buffering observed", "anomalies", anomalies)
		}
	}
	return anomalies, iterations
}

// progressMask limits clock reads in the trial loop to one every 64K trials
const progressMask = 1<<16 - 1

// collect receives both completions for a trial, in either order. Anything
// other than one completion per worker for this trial is fatal.
func (h *Harness) collect(trial uint64) error {
	var seen [constants.Workers]bool
	for i := 0; i < constants.Workers; i++ {
		c := <-h.done
		if c.Worker < 0 || c.Worker >= constants.Workers {
			return NewWorkerError("RUN", c.Worker, int64(trial), ErrCodeSyncViolation,
				"completion from unknown worker")
		}
		if c.Trial != trial {
			return NewWorkerError("RUN", c.Worker, int64(trial), ErrCodeSyncViolation,
				fmt.Sprintf("completion for trial %d during trial %d", c.Trial, trial))
		}
		if seen[c.Worker] {
			return NewWorkerError("RUN", c.Worker, int64(trial), ErrCodeSyncViolation,
				"duplicate completion")
		}
		seen[c.Worker] = true
		if i == 0 {
			h.phase.Store(int32(PhaseAwaitingCompletion))
		}
	}
	return nil
}

// fanout forwards worker events to several observers
type fanout []Observer

func (f fanout) ObserveTrial(trial uint64, r1, r2 uint32) {
	for _, o := range f {
		o.ObserveTrial(trial, r1, r2)
	}
}

func (f fanout) ObserveDelay(worker int, draws uint64) {
	for _, o := range f {
		o.ObserveDelay(worker, draws)
	}
}

// withWorker, withTrial and withError attach context to a logger. Our own
// logger gets zerolog fields; any other Logger gets the pairs prepended to
// every call.
func withWorker(l Logger, id int) Logger {
	switch zl := l.(type) {
	case nil:
		return nil
	case *logging.Logger:
		return zl.WithWorker(id)
	default:
		return fieldLogger{l, []any{"worker", id}}
	}
}

func withTrial(l Logger, trial uint64) Logger {
	switch zl := l.(type) {
	case nil:
		return nil
	case *logging.Logger:
		return zl.WithTrial(trial)
	default:
		return fieldLogger{l, []any{"trial", trial}}
	}
}

func withError(l Logger, err error) Logger {
	switch zl := l.(type) {
	case nil:
		return nil
	case *logging.Logger:
		return zl.WithError(err)
	default:
		return fieldLogger{l, []any{"error", err.Error()}}
	}
}

type fieldLogger struct {
	Logger
	fields []any
}

func (f fieldLogger) with(args []any) []any {
	return append(append(make([]any, 0, len(f.fields)+len(args)), f.fields...), args...)
}

func (f fieldLogger) Debug(msg string, args ...any) { f.Logger.Debug(msg, f.with(args)...) }
func (f fieldLogger) Info(msg string, args ...any)  { f.Logger.Info(msg, f.with(args)...) }
func (f fieldLogger) Warn(msg string, args ...any)  { f.Logger.Warn(msg, f.with(args)...) }
func (f fieldLogger) Error(msg string, args ...any) { f.Logger.Error(msg, f.with(args)...) }
