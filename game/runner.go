package game

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"
)

// Runner defaults.
const (
	DefaultTickInterval = 16 * time.Millisecond
	DefaultInboxSize    = 64
	MaxStepDuration     = 250 * time.Millisecond
)

// Runner owns a Simulation on a single goroutine. Other goroutines talk to
// it only through Send.
type Runner struct {
	sim    *Simulation
	inbox  chan Message
	tick   time.Duration
	now    func() time.Time
	logger *slog.Logger
	paused atomic.Bool
}

// RunnerOptions configures a Runner.
type RunnerOptions struct {
	TickInterval time.Duration
	InboxSize    int
	Clock        func() time.Time
	Logger       *slog.Logger
}

// NewRunner wraps sim. The runner takes ownership: do not call sim methods
// from other goroutines once Run has started.
func NewRunner(sim *Simulation, opts RunnerOptions) *Runner {
	if opts.TickInterval <= 0 {
		opts.TickInterval = DefaultTickInterval
	}
	if opts.InboxSize <= 0 {
		opts.InboxSize = DefaultInboxSize
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = sim.logger
	}
	return &Runner{
		sim:    sim,
		inbox:  make(chan Message, opts.InboxSize),
		tick:   opts.TickInterval,
		now:    opts.Clock,
		logger: opts.Logger,
	}
}

// Send queues a message without blocking. Returns false when the inbox is
// full and the message was dropped.
func (r *Runner) Send(msg Message) bool {
	select {
	case r.inbox <- msg:
		return true
	default:
		r.logger.Warn("runner inbox full, message dropped", "type", Kind(msg))
		return false
	}
}

// SetPaused stops or resumes stepping. Messages are still applied while paused.
func (r *Runner) SetPaused(p bool) { r.paused.Store(p) }

// Paused reports whether stepping is suspended.
func (r *Runner) Paused() bool { return r.paused.Load() }

// Run ticks the simulation until ctx is cancelled or an Initialize message
// fails. Messages are applied as they arrive, between ticks.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.tick)
	defer ticker.Stop()

	last := r.now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-r.inbox:
			if err := r.apply(msg); err != nil {
				return err
			}
		case <-ticker.C:
			now := r.now()
			elapsed := now.Sub(last)
			last = now
			if elapsed > MaxStepDuration {
				elapsed = MaxStepDuration
			}
			if r.paused.Load() {
				continue
			}
			r.sim.Step(elapsed.Seconds())
			r.sim.Render()
		}
	}
}

func (r *Runner) apply(msg Message) error {
	err := r.sim.Handle(msg)
	if err == nil {
		return nil
	}
	if isInitialize(msg) {
		r.logger.Error("initialize failed", "error", err)
		return err
	}
	if errors.Is(err, ErrNotInitialized) {
		r.logger.Warn("message before initialize ignored", "type", Kind(msg))
		return nil
	}
	r.logger.Warn("message rejected", "type", Kind(msg), "error", err)
	return nil
}

func isInitialize(msg Message) bool {
	switch msg.(type) {
	case Initialize, *Initialize:
		return true
	}
	return false
}
