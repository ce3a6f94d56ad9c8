package activity

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/agentsim/internal/sched"
)

// fakePlace records membership and usage.
type fakePlace struct {
	id      int
	members map[int]bool
	samples int
	hours   float64
}

func newPlace(id int) *fakePlace {
	return &fakePlace{id: id, members: make(map[int]bool)}
}

func (p *fakePlace) ID() int { return p.id }
func (p *fakePlace) AddPerson(agent int) { p.members[agent] = true }
func (p *fakePlace) RemovePerson(agent int) { delete(p.members, agent) }
func (p *fakePlace) RecordDuration(h float64) { p.samples++; p.hours += h }
func (p *fakePlace) Count() int { return len(p.members) }

// fakeState is a slice-backed State.
type fakeState struct {
	cursors  []Cursor
	patterns []*WeekPattern
	locs     []Place
	members  []Place
}

func newState(n int, wp *WeekPattern, home *fakePlace) *fakeState {
	s := &fakeState{
		cursors:  make([]Cursor, n),
		patterns: make([]*WeekPattern, n),
		locs:     make([]Place, n),
		members:  make([]Place, n),
	}
	for i := 0; i < n; i++ {
		s.cursors[i] = Filler
		s.patterns[i] = wp
		s.locs[i] = home
		s.members[i] = home
		home.AddPerson(i)
	}
	return s
}

func (s *fakeState) Cursor(a int) Cursor { return s.cursors[a] }
func (s *fakeState) SetCursor(a int, c Cursor) { s.cursors[a] = c }
func (s *fakeState) WeekPattern(a int) *WeekPattern { return s.patterns[a] }
func (s *fakeState) Location(a int) Place { return s.locs[a] }
func (s *fakeState) SetLocation(a int, p Place) { s.locs[a] = p }
func (s *fakeState) Member(a int) Place { return s.members[a] }
func (s *fakeState) SetMember(a int, p Place) { s.members[a] = p }

// at returns a locator for a fixed place.
func at(p Place) Locator {
	return LocatorFunc(func(int) Place { return p })
}

func stay(name string, p Place, hours float64) *Activity {
	return MustNew(Def{Name: name, Kind: Stay, At: at(p), Duration: Fixed(hours)})
}

func day(t *testing.T, name string, acts ...*Activity) *DayPattern {
	t.Helper()
	d, err := NewDayPattern(name, acts...)
	require.NoError(t, err)
	return d
}

func uniform(t *testing.T, d *DayPattern) *WeekPattern {
	t.Helper()
	wp, err := Uniform(0, "uniform", d)
	require.NoError(t, err)
	return wp
}

// startRecord is one observed activity start.
type startRecord struct {
	time     float64
	agent    int
	activity string
	place    int
	duration float64
}

type recordingObserver struct {
	starts []startRecord
}

func (o *recordingObserver) ActivityStarted(now float64, agent int, act *Activity, p Place, d float64) {
	o.starts = append(o.starts, startRecord{time: now, agent: agent, activity: act.Name(), place: p.ID(), duration: d})
}

// newMachine wires a machine whose filler stays at the agent's current location.
func newMachine(state *fakeState, s *sched.Scheduler, opts ...MachineOption) *Machine {
	filler := NewFiller(LocatorFunc(func(a int) Place { return state.Location(a) }))
	return NewMachine(state, s, filler, opts...)
}
