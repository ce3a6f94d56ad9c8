package sched

import (
	"context"
	"fmt"
	"log/slog"
	"math"
)

// ctxCheckInterval is how many actions run between context checks.
const ctxCheckInterval = 4096

// LevelTrace is the slog level of per-action logging, below Debug.
const LevelTrace = slog.LevelDebug - 4

// Scheduler is the single-threaded discrete-event kernel.
//
// All methods must be called from one goroutine: either the goroutine that
// calls RunUntil, or from inside an executing Task.
type Scheduler struct {
	clock    *Clock
	queue    actionQueue
	stopped  bool
	executed uint64
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock sets a pre-configured clock, e.g. one starting mid-week.
func WithClock(c *Clock) Option {
	return func(s *Scheduler) {
		s.clock = c
	}
}

// WithStartTime starts the clock at the given simulated hour.
func WithStartTime(t float64) Option {
	return func(s *Scheduler) {
		s.clock = NewClockAt(t)
	}
}

// New creates a Scheduler with an empty queue.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		clock: NewClock(),
		queue: make(actionQueue, 0, 1024),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the current simulated time in hours.
func (s *Scheduler) Now() float64 {
	return s.clock.Now()
}

// Len returns the number of pending Tasks.
func (s *Scheduler) Len() int {
	return len(s.queue)
}

// Executed returns the number of Tasks run so far.
func (s *Scheduler) Executed() uint64 {
	return s.executed
}

// Peek returns the execution time of the next pending Task.
func (s *Scheduler) Peek() (float64, bool) {
	h := s.queue.peek()
	if h == nil {
		return 0, false
	}
	return h.time, true
}

// Schedule enqueues task to run at the absolute time at.
//
// Scheduling at the current time is allowed; the Task runs after every
// already-queued Task with the same time and priority. Scheduling strictly
// before the current time returns a SchedulingError and enqueues nothing.
func (s *Scheduler) Schedule(at float64, priority int, task Task) (*Handle, error) {
	now := s.clock.Now()
	if task.Run == nil {
		return nil, &SchedulingError{Code: ErrCodeNilTask, Time: at, Now: now, Target: task.Target, Op: task.Op}
	}
	if math.IsNaN(at) || math.IsInf(at, 0) {
		return nil, &SchedulingError{Code: ErrCodeInvalidTime, Time: at, Now: now, Target: task.Target, Op: task.Op}
	}
	if at < now {
		return nil, &SchedulingError{Code: ErrCodeInPast, Time: at, Now: now, Target: task.Target, Op: task.Op}
	}

	h := &Handle{
		time:     at,
		priority: priority,
		seq:      s.clock.Next(),
		task:     task,
	}
	s.queue.push(h)
	return h, nil
}

// ScheduleAfter enqueues task to run delay hours from now.
func (s *Scheduler) ScheduleAfter(delay float64, priority int, task Task) (*Handle, error) {
	return s.Schedule(s.clock.Now()+delay, priority, task)
}

// Withdraw removes a pending Task. It returns false, and does nothing, if
// the handle already fired or was already withdrawn.
func (s *Scheduler) Withdraw(h *Handle) bool {
	if !h.Pending() || h.index >= len(s.queue) || s.queue[h.index] != h {
		return false
	}
	s.queue.remove(h)
	return true
}

// Stop asks RunUntil to return after the currently executing Task.
func (s *Scheduler) Stop() {
	s.stopped = true
}

// Stopped reports whether Stop was called during the current run.
func (s *Scheduler) Stopped() bool {
	return s.stopped
}

// Step executes the next pending Task, advancing the clock to its time.
// Returns false if the queue was empty.
func (s *Scheduler) Step() (bool, error) {
	if len(s.queue) == 0 {
		return false, nil
	}
	h := s.queue.pop()
	s.clock.advance(h.time)
	s.executed++
	slog.Log(context.Background(), LevelTrace, "action",
		"time", h.time, "priority", h.priority, "target", h.task.Target, "op", h.task.Op)
	if err := s.execute(h); err != nil {
		return true, err
	}
	return true, nil
}

// execute runs one Task. Errors and panics become ActionErrors.
func (s *Scheduler) execute(h *Handle) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ActionError{
				Time:   h.time,
				Target: h.task.Target,
				Op:     h.task.Op,
				Err:    fmt.Errorf("panic: %v", r),
			}
		}
	}()
	if runErr := h.task.Run(); runErr != nil {
		return &ActionError{Time: h.time, Target: h.task.Target, Op: h.task.Op, Err: runErr}
	}
	return nil
}

// RunUntil drains every Task with execution time <= horizon, in order.
//
// It returns nil when no due Task remains or Stop was called, the first
// ActionError if a Task fails, or ctx.Err() if the context is cancelled.
// When the queue drains below a finite horizon without Stop, the clock is
// moved to the horizon so later runs continue from there.
func (s *Scheduler) RunUntil(ctx context.Context, horizon float64) error {
	s.stopped = false
	slog.Debug("scheduler run", "from", s.clock.Now(), "horizon", horizon, "pending", len(s.queue))

	var n int
	for !s.stopped {
		h := s.queue.peek()
		if h == nil || h.time > horizon {
			break
		}

		n++
		if n%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		if _, err := s.Step(); err != nil {
			slog.Error("action failed", "target", h.task.Target, "op", h.task.Op, "time", h.time, "error", err)
			return err
		}
	}

	if !s.stopped && !math.IsInf(horizon, 1) {
		s.clock.advance(horizon)
	}
	slog.Debug("scheduler paused", "time", s.clock.Now(), "pending", len(s.queue), "executed", s.executed)
	return nil
}
