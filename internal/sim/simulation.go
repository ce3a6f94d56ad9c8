package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"

	"github.com/roach88/agentsim/internal/activity"
	"github.com/roach88/agentsim/internal/model"
	"github.com/roach88/agentsim/internal/modeldef"
	"github.com/roach88/agentsim/internal/phase"
	"github.com/roach88/agentsim/internal/rng"
	"github.com/roach88/agentsim/internal/sched"
)

// Action priorities. Lower runs first at the same instant.
const (
	PriorityActivity     = activity.DefaultPriority
	PriorityPhase        = 1
	PriorityIntervention = 5
	PriorityReport       = 10
)

var (
	// ErrAlreadyRun is returned by a second call to Run.
	ErrAlreadyRun = errors.New("simulation already ran")

	// ErrNoDisease is returned by phase operations on a model without one.
	ErrNoDisease = errors.New("model declares no disease")

	// ErrUnknownAgent is returned for a person id outside the population.
	ErrUnknownAgent = errors.New("unknown agent")
)

// Simulation runs one model from its start hour to its horizon.
// It is not safe for concurrent use.
type Simulation struct {
	model   *modeldef.Model
	pop     *model.Population
	sched   *sched.Scheduler
	machine *activity.Machine
	rng     *rng.Source

	policy   phase.Policy[string]
	reporter Reporter
	tracer   Tracer

	horizon float64
	phases  []*sched.Handle // pending transition per person
	report  *sched.Handle
	reports int
	last    *Snapshot

	starts, skips uint64

	ctx context.Context
	ran bool
}

// Option configures a Simulation.
type Option func(*Simulation)

// WithReporter sends snapshots to r.
func WithReporter(r Reporter) Option {
	return func(s *Simulation) {
		s.reporter = r
	}
}

// WithTracer installs an event tracer.
func WithTracer(t Tracer) Option {
	return func(s *Simulation) {
		s.tracer = t
	}
}

// WithPolicy replaces the default ChainPolicy.
func WithPolicy(p phase.Policy[string]) Option {
	return func(s *Simulation) {
		s.policy = p
	}
}

// Result summarizes a finished run.
type Result struct {
	Start    float64
	End      float64
	Executed uint64 // actions executed
	Pending  int    // actions still queued past the horizon
	Starts   uint64 // activities started with a positive duration
	Skips    uint64 // zero or undefined duration activities passed through
	Reports  int
	Final    *Snapshot
}

// New wires m to a fresh scheduler and queues the bootstrap actions: one
// program start per person, one phase entry per person when the model has
// a disease, and the first snapshot when reporting is enabled.
func New(m *modeldef.Model, opts ...Option) (*Simulation, error) {
	if m.Population == nil {
		return nil, errors.New("model has no population")
	}

	s := &Simulation{
		model:   m,
		pop:     m.Population,
		sched:   sched.New(sched.WithStartTime(m.StartHour)),
		rng:     rng.NewSource(m.Seed),
		horizon: m.StartHour + m.HorizonHours,
		ctx:     context.Background(),
	}
	if m.Disease != nil {
		s.policy = NewChainPolicy(m.Disease, s.rng)
	}
	for _, opt := range opts {
		opt(s)
	}

	s.machine = activity.NewMachine(s.pop, s.sched, m.Registry.Filler(),
		activity.WithPriority(PriorityActivity),
		activity.WithObserver(observer{s}),
	)

	if err := s.bootstrap(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Simulation) bootstrap() error {
	start := s.sched.Now()
	n := s.pop.Size()

	for agent := 0; agent < n; agent++ {
		_, err := s.sched.Schedule(start, PriorityActivity, sched.Task{
			Target: target(agent),
			Op:     "begin",
			Run:    func() error { return s.machine.Begin(agent) },
		})
		if err != nil {
			return err
		}
	}

	if d := s.model.Disease; d != nil {
		s.phases = make([]*sched.Handle, n)
		for agent := 0; agent < n; agent++ {
			p, err := d.Phases.ByOrdinal(s.pop.Phase(agent))
			if err != nil {
				return fmt.Errorf("agent %d: %w", agent, err)
			}
			h, err := s.sched.Schedule(start, PriorityPhase, s.phaseTask(agent, p))
			if err != nil {
				return err
			}
			s.phases[agent] = h
		}
	}

	if s.model.ReportEveryHours > 0 {
		return s.scheduleReport(start)
	}
	return nil
}

// Run executes every action due up to the horizon, then takes the final
// snapshot. A Reporter or action error stops the run and is returned.
func (s *Simulation) Run(ctx context.Context) (*Result, error) {
	if s.ran {
		return nil, ErrAlreadyRun
	}
	s.ran = true
	s.ctx = ctx
	defer func() { s.ctx = context.Background() }()

	start := s.sched.Now()
	slog.Info("simulation starting",
		"model", s.model.Name,
		"persons", s.pop.Size(),
		"start", start,
		"horizon", s.horizon,
		"seed", s.model.Seed,
	)

	if err := s.sched.RunUntil(ctx, s.horizon); err != nil {
		return nil, err
	}

	if s.report != nil {
		s.sched.Withdraw(s.report)
		s.report = nil
	}
	if s.last == nil || s.last.Time != s.sched.Now() {
		if err := s.emit(true); err != nil {
			return nil, err
		}
	}

	res := &Result{
		Start:    start,
		End:      s.sched.Now(),
		Executed: s.sched.Executed(),
		Pending:  s.sched.Len(),
		Starts:   s.starts,
		Skips:    s.skips,
		Reports:  s.reports,
		Final:    s.last,
	}
	slog.Info("simulation finished",
		"model", s.model.Name,
		"time", res.End,
		"executed", res.Executed,
		"pending", res.Pending,
		"reports", res.Reports,
	)
	return res, nil
}

// Stop ends the run after the current action.
func (s *Simulation) Stop() { s.sched.Stop() }

// Now returns the simulated time.
func (s *Simulation) Now() float64 { return s.sched.Now() }

// Horizon returns the time Run stops at.
func (s *Simulation) Horizon() float64 { return s.horizon }

// Model returns the model being run.
func (s *Simulation) Model() *modeldef.Model { return s.model }

// Intervene schedules fn at time at. It runs after activity and phase
// actions due at the same instant and before the snapshot.
func (s *Simulation) Intervene(at float64, name string, fn func() error) (*sched.Handle, error) {
	return s.sched.Schedule(at, PriorityIntervention, sched.Task{
		Target: "model " + s.model.Name,
		Op:     name,
		Run:    fn,
	})
}

// SetWeekPattern switches agent to the named week pattern. The current
// activity runs to completion; the next one comes from the new pattern.
func (s *Simulation) SetWeekPattern(agent int, name string) error {
	if err := s.checkAgent(agent); err != nil {
		return err
	}
	wp, err := s.model.Registry.WeekPattern(name)
	if err != nil {
		return err
	}
	s.pop.SetWeekPattern(agent, wp)
	return nil
}

// SetPhase moves agent into the named phase now, replacing any pending
// transition.
func (s *Simulation) SetPhase(agent int, name string) error {
	d := s.model.Disease
	if d == nil {
		return ErrNoDisease
	}
	if err := s.checkAgent(agent); err != nil {
		return err
	}
	p, err := d.Phases.ByName(name)
	if err != nil {
		return err
	}
	if h := s.phases[agent]; h != nil {
		s.sched.Withdraw(h)
		s.phases[agent] = nil
	}
	return s.enterPhase(agent, p)
}

// Phase returns agent's current phase.
func (s *Simulation) Phase(agent int) (*phase.Phase[string], error) {
	d := s.model.Disease
	if d == nil {
		return nil, ErrNoDisease
	}
	if err := s.checkAgent(agent); err != nil {
		return nil, err
	}
	return d.Phases.ByOrdinal(s.pop.Phase(agent))
}

func (s *Simulation) phaseTask(agent int, p *phase.Phase[string]) sched.Task {
	return sched.Task{
		Target: target(agent),
		Op:     "enter " + p.Name(),
		Run:    func() error { return s.enterPhase(agent, p) },
	}
}

func (s *Simulation) enterPhase(agent int, p *phase.Phase[string]) error {
	s.phases[agent] = nil
	s.pop.SetPhase(agent, p.Ordinal())
	if s.tracer != nil {
		s.tracer.PhaseEntered(s.sched.Now(), agent, p.Name())
	}
	if s.policy == nil {
		return nil
	}

	next, dwell, ok := s.policy.Next(agent, p)
	if !ok {
		return nil
	}
	h, err := s.sched.ScheduleAfter(dwell, PriorityPhase, s.phaseTask(agent, next))
	if err != nil {
		return fmt.Errorf("agent %d leaving %s: %w", agent, p.Name(), err)
	}
	s.phases[agent] = h
	return nil
}

func (s *Simulation) scheduleReport(at float64) error {
	h, err := s.sched.Schedule(at, PriorityReport, sched.Task{
		Target: "model " + s.model.Name,
		Op:     "report",
		Run:    s.reportTick,
	})
	if err != nil {
		return err
	}
	s.report = h
	return nil
}

func (s *Simulation) reportTick() error {
	s.report = nil
	if err := s.emit(false); err != nil {
		return err
	}
	return s.scheduleReport(s.sched.Now() + s.model.ReportEveryHours)
}

func (s *Simulation) emit(final bool) error {
	snap := s.Snapshot()
	snap.Final = final
	s.reports++
	s.last = snap
	if s.reporter == nil {
		return nil
	}
	if err := s.reporter.Report(s.ctx, snap); err != nil {
		return fmt.Errorf("report %d at t=%.4f: %w", snap.Seq, snap.Time, err)
	}
	return nil
}

// Snapshot captures the current model state. Seq is the number the next
// emitted report would carry.
func (s *Simulation) Snapshot() *Snapshot {
	reg := s.model.Registry
	snap := &Snapshot{
		Seq:      s.reports,
		Time:     s.sched.Now(),
		Executed: s.sched.Executed(),
	}

	locs := reg.Locations()
	snap.Locations = make([]LocationStat, 0, len(locs))
	for _, l := range locs {
		u := l.Usage()
		snap.Locations = append(snap.Locations, LocationStat{
			ID:           l.ID(),
			Name:         s.model.LocationName(l.ID()),
			Type:         reg.TypeName(l.Type()),
			Occupancy:    l.Count(),
			Samples:      u.Samples,
			Hours:        u.Hours,
			MaxOccupancy: u.MaxOccupancy,
		})
	}

	if d := s.model.Disease; d != nil {
		counts := make([]int, d.Phases.Len())
		for agent := 0; agent < s.pop.Size(); agent++ {
			counts[s.pop.Phase(agent)]++
		}
		for _, p := range d.Phases.All() {
			snap.Phases = append(snap.Phases, PhaseCount{
				Ordinal: p.Ordinal(),
				Name:    p.Name(),
				Class:   p.Class(),
				Count:   counts[p.Ordinal()],
			})
		}
	}
	return snap
}

func (s *Simulation) checkAgent(agent int) error {
	if agent < 0 || agent >= s.pop.Size() {
		return fmt.Errorf("agent %d of %d: %w", agent, s.pop.Size(), ErrUnknownAgent)
	}
	return nil
}

func target(agent int) string { return "agent " + strconv.Itoa(agent) }

// observer adapts activity starts to counters and the Tracer.
type observer struct{ s *Simulation }

func (o observer) ActivityStarted(now float64, agent int, act *activity.Activity, at activity.Place, hours float64) {
	s := o.s
	if math.IsNaN(hours) || hours <= 0 {
		s.skips++
	} else {
		s.starts++
	}
	if s.tracer != nil {
		s.tracer.ActivityStarted(now, agent, act.Name(), s.model.LocationName(at.ID()), hours)
	}
}
