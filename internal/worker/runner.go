// Package worker runs one side of the store-buffering pattern.
package worker

import (
	"fmt"
	"runtime"

	"github.com/ehrlich-b/go-litmus/internal/affinity"
	"github.com/ehrlich-b/go-litmus/internal/interfaces"
	"github.com/ehrlich-b/go-litmus/internal/memory"
	"github.com/ehrlich-b/go-litmus/internal/ordering"
	"github.com/ehrlich-b/go-litmus/internal/rendezvous"
)

// Worker ids. Worker A writes X and reads Y into R1, worker B writes Y and
// reads X into R2.
const (
	A = 0
	B = 1
)

// Completion is sent by a worker once its result for a trial is published
type Completion struct {
	Worker int
	Trial  uint64
}

// Config describes one worker
type Config struct {
	ID       int
	Own      *memory.Register // flag this worker sets
	Other    *memory.Register // flag this worker reads
	Result   *memory.Register // where the observed value is published
	Policy   ordering.Policy
	Fence    bool
	Barrier  *rendezvous.Barrier
	Done     chan<- Completion
	Delay    interfaces.Delay
	Trials   uint64 // 0 runs forever
	CPU      int    // affinity.NoCPU to leave unpinned
	Logger   interfaces.Logger
	Observer interfaces.Observer
}

// ForRole fills in the registers for worker A or B from a shared state
func ForRole(id int, state *memory.State, cfg Config) Config {
	cfg.ID = id
	if id == A {
		cfg.Own, cfg.Other, cfg.Result = &state.X, &state.Y, &state.R1
	} else {
		cfg.Own, cfg.Other, cfg.Result = &state.Y, &state.X, &state.R2
	}
	return cfg
}

// Runner executes trials for one worker
type Runner struct {
	id       int
	own      *memory.Register
	other    *memory.Register
	result   *memory.Register
	load     ordering.Order
	store    ordering.Order
	fence    bool
	barrier  *rendezvous.Barrier
	done     chan<- Completion
	delay    interfaces.Delay
	trials   uint64
	cpu      int
	logger   interfaces.Logger
	observer interfaces.Observer
	begin    chan bool
}

// NewRunner validates the config and creates a runner
func NewRunner(config Config) (*Runner, error) {
	if config.Own == nil || config.Other == nil || config.Result == nil {
		return nil, fmt.Errorf("worker %d: registers not set", config.ID)
	}
	if config.Own == config.Other {
		return nil, fmt.Errorf("worker %d: own and other flag are the same register", config.ID)
	}
	if config.Barrier == nil {
		return nil, fmt.Errorf("worker %d: barrier not set", config.ID)
	}
	if config.Done == nil {
		return nil, fmt.Errorf("worker %d: completion channel not set", config.ID)
	}
	if config.Delay == nil {
		return nil, fmt.Errorf("worker %d: delay not set", config.ID)
	}

	return &Runner{
		id:       config.ID,
		own:      config.Own,
		other:    config.Other,
		result:   config.Result,
		load:     config.Policy.Load,
		store:    config.Policy.Store,
		fence:    config.Fence,
		barrier:  config.Barrier,
		done:     config.Done,
		delay:    config.Delay,
		trials:   config.Trials,
		cpu:      config.CPU,
		logger:   config.Logger,
		observer: config.Observer,
		begin:    make(chan bool, 1),
	}, nil
}

// ID returns the worker id
func (r *Runner) ID() int {
	return r.id
}

// Start launches the trial loop on its own goroutine. Affinity errors are
// reported on the returned channel, which is closed once the worker is
// ready. A ready worker then waits for Release before its first barrier.
func (r *Runner) Start() <-chan error {
	ready := make(chan error, 1)
	go r.Run(ready)
	return ready
}

// Release lets a ready worker enter the trial loop, or makes it exit when
// ok is false. Call it once, and only for a worker that reported ready.
func (r *Runner) Release(ok bool) {
	r.begin <- ok
}

// Run is the worker loop. It locks itself to an OS thread, pins that thread
// when a CPU is configured, reports readiness, waits for Release and then
// runs trials until the budget is spent, or forever when there is none.
func (r *Runner) Run(ready chan<- error) {
	runtime.LockOSThread()
	if r.cpu == affinity.NoCPU {
		defer runtime.UnlockOSThread()
	}
	// A pinned thread stays locked, so the runtime discards it on exit
	// instead of reusing it with a narrowed CPU mask.

	if err := affinity.Pin(r.cpu); err != nil {
		if ready != nil {
			ready <- fmt.Errorf("worker %d: %w", r.id, err)
			close(ready)
		}
		return
	}
	if r.logger != nil {
		r.logger.Debug("worker started", "cpu", r.cpu,
			"load", r.load.String(), "store", r.store.String(), "fence", r.fence)
	}
	if ready != nil {
		close(ready)
	}

	if !<-r.begin {
		if r.logger != nil {
			r.logger.Debug("worker released without running")
		}
		return
	}

	for trial := uint64(0); r.trials == 0 || trial < r.trials; trial++ {
		r.barrier.Wait()

		draws := r.delay.Wait()
		r.Trial()

		if r.observer != nil {
			r.observer.ObserveDelay(r.id, draws)
		}
		r.done <- Completion{Worker: r.id, Trial: trial}
	}

	if r.logger != nil {
		r.logger.Debug("worker finished", "trials", r.trials)
	}
}

// Trial is the store-buffering body: set our flag, optionally fence, then
// publish what we see in the other flag.
func (r *Runner) Trial() {
	r.own.Store(1, r.store)
	if r.fence {
		memory.Fence()
	}
	r.result.Store(r.other.Load(r.load), ordering.SeqCst)
}
