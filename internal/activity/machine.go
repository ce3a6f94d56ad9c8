package activity

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"

	"github.com/roach88/agentsim/internal/sched"
)

// State is the per-agent mutable state the Machine reads and writes.
type State interface {
	Cursor(agent int) Cursor
	SetCursor(agent int, c Cursor)
	WeekPattern(agent int) *WeekPattern

	// Location is the agent's current location. Never nil.
	Location(agent int) Place
	SetLocation(agent int, p Place)

	// Member is the location whose membership includes the agent, or nil
	// after a skipped activity detached it.
	Member(agent int) Place
	SetMember(agent int, p Place)
}

// Timeline is the scheduling surface the Machine needs.
type Timeline interface {
	Now() float64
	ScheduleAfter(delay float64, priority int, task sched.Task) (*sched.Handle, error)
}

// Observer is notified of every activity start.
// duration is NaN or <= 0 for skipped activities.
type Observer interface {
	ActivityStarted(now float64, agent int, act *Activity, at Place, duration float64)
}

// ErrNoLocation is returned when a locator resolves to nil.
var ErrNoLocation = errors.New("locator returned no location")

// ErrNoProgress is returned when an agent skips through more activities in
// one instant than a week program can hold.
var ErrNoProgress = errors.New("activity chain made no progress")

// maxInstantSteps bounds consecutive zero-duration activities per advance.
const maxInstantSteps = 2*MaxActivitiesPerDay + 2

// DefaultPriority is the scheduling priority of activity completions.
const DefaultPriority = 0

// Machine drives agents through their week programs.
type Machine struct {
	state    State
	timeline Timeline
	filler   *Activity
	priority int
	observer Observer
}

// MachineOption configures a Machine.
type MachineOption func(*Machine)

// WithPriority sets the priority of completion actions.
func WithPriority(p int) MachineOption {
	return func(m *Machine) {
		m.priority = p
	}
}

// WithObserver installs an activity start observer.
func WithObserver(o Observer) MachineOption {
	return func(m *Machine) {
		m.observer = o
	}
}

// NewMachine creates a Machine. filler is the placeholder activity owned by
// the model that created the week patterns.
func NewMachine(state State, timeline Timeline, filler *Activity, opts ...MachineOption) *Machine {
	m := &Machine{
		state:    state,
		timeline: timeline,
		filler:   filler,
		priority: DefaultPriority,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Filler returns the placeholder activity.
func (m *Machine) Filler() *Activity { return m.filler }

// NextCursor computes the cursor that follows prev for agent at the
// current simulated time. It may move the agent (day-boundary snap).
func (m *Machine) NextCursor(agent int, prev Cursor) Cursor {
	weekday := Weekday(m.timeline.Now())
	if prev == Filler {
		return MakeCursor(weekday, 0)
	}

	oldWeekday := prev.Weekday()
	oldDay := m.state.WeekPattern(agent).Day(oldWeekday)
	next := prev.DayIndex() + 1

	if oldWeekday == weekday {
		if next < oldDay.Len() {
			return MakeCursor(weekday, next)
		}
		return Filler
	}

	// The previous activity ran past midnight. Order matters here.
	if next == oldDay.Len() {
		return MakeCursor(weekday, 0)
	}
	if next < oldDay.Len() && oldDay.At(next).StartAfterMidnight() {
		return MakeCursor(oldWeekday, next)
	}
	if last := oldDay.Last(); last != nil {
		m.snap(agent, last)
	}
	return MakeCursor(weekday, 0)
}

// snap moves agent to where act leaves it: the end location for travel,
// the activity location otherwise.
func (m *Machine) snap(agent int, act *Activity) {
	var p Place
	if act.IsTravel() {
		p = act.EndLocation(agent)
	} else {
		p = act.Location(agent)
	}
	if p == nil {
		return
	}
	if member := m.state.Member(agent); member != nil && member != p {
		member.RemovePerson(agent)
		p.AddPerson(agent)
		m.state.SetMember(agent, p)
	}
	m.state.SetLocation(agent, p)
}

// ActivityFor resolves a cursor to an activity. The filler covers the
// sentinel and cursors past the end of a (swapped, shorter) day pattern.
func (m *Machine) ActivityFor(agent int, c Cursor) *Activity {
	if c == Filler {
		return m.filler
	}
	day := m.state.WeekPattern(agent).Day(c.Weekday())
	if c.DayIndex() >= day.Len() {
		return m.filler
	}
	return day.At(c.DayIndex())
}

// Begin starts agent's program at the current time. The agent's cursor
// should be Filler.
func (m *Machine) Begin(agent int) error {
	return m.Advance(agent)
}

// Advance ends the agent's current activity and starts the next one.
// Zero-duration activities are passed through in the same instant.
func (m *Machine) Advance(agent int) error {
	for i := 0; i < maxInstantSteps; i++ {
		c := m.NextCursor(agent, m.state.Cursor(agent))
		m.state.SetCursor(agent, c)

		act := m.ActivityFor(agent, c)
		waiting, err := m.start(agent, act)
		if err != nil {
			return err
		}
		if waiting {
			return nil
		}
	}
	return fmt.Errorf("agent %d at t=%.4f: %w", agent, m.timeline.Now(), ErrNoProgress)
}

// start executes a fixed-duration activity. It returns true if a completion
// was scheduled, false if the activity was skipped.
func (m *Machine) start(agent int, act *Activity) (bool, error) {
	now := m.timeline.Now()
	target := act.Location(agent)
	if target == nil {
		return false, fmt.Errorf("agent %d activity %s at t=%.4f: %w", agent, act.Name(), now, ErrNoLocation)
	}

	dur := act.Duration(agent, now)
	if m.observer != nil {
		m.observer.ActivityStarted(now, agent, act, target, dur)
	}

	if math.IsNaN(dur) || dur <= 0 {
		if member := m.state.Member(agent); member != nil {
			member.RemovePerson(agent)
			m.state.SetMember(agent, nil)
		}
		return false, nil
	}

	if dur > HoursPerDay {
		slog.Warn("activity longer than one day",
			"agent", agent, "activity", act.Name(), "time", now, "duration", dur)
	}

	if member := m.state.Member(agent); member != target {
		if member != nil {
			member.RemovePerson(agent)
		}
		target.AddPerson(agent)
		m.state.SetMember(agent, target)
	}
	m.state.SetLocation(agent, target)
	target.RecordDuration(dur)

	_, err := m.timeline.ScheduleAfter(dur, m.priority, sched.Task{
		Target: "agent " + strconv.Itoa(agent),
		Op:     act.completeOp,
		Run:    func() error { return m.Advance(agent) },
	})
	if err != nil {
		return false, fmt.Errorf("agent %d activity %s: %w", agent, act.Name(), err)
	}
	return true, nil
}
