package activity

import (
	"errors"
	"fmt"
)

// Place is the location surface the state machine needs.
type Place interface {
	ID() int
	AddPerson(agent int)
	RemovePerson(agent int)
	RecordDuration(hours float64)
}

// Locator resolves where an agent performs an activity.
// It must never return nil.
type Locator interface {
	Locate(agent int) Place
}

// LocatorFunc adapts a function to Locator.
type LocatorFunc func(agent int) Place

// Locate calls f.
func (f LocatorFunc) Locate(agent int) Place { return f(agent) }

// Duration decides how long an agent spends in an activity started at now.
// NaN or a non-positive result means the activity is skipped.
type Duration interface {
	Hours(agent int, now float64) float64
}

// Fixed is a constant duration in hours.
type Fixed float64

// Hours returns the fixed duration.
func (f Fixed) Hours(int, float64) float64 { return float64(f) }

// DurationFunc adapts a function to Duration.
type DurationFunc func(agent int, now float64) float64

// Hours calls f.
func (f DurationFunc) Hours(agent int, now float64) float64 { return f(agent, now) }

// untilMidnight is the filler's duration.
type untilMidnight struct{}

func (untilMidnight) Hours(_ int, now float64) float64 { return UntilMidnight(now) }

// Kind classifies activities.
type Kind uint8

const (
	// Stay keeps the agent at the activity location.
	Stay Kind = iota
	// Travel moves the agent between a start and an end location; the
	// activity location is the vehicle or route.
	Travel
	// Fill is the placeholder that idles until midnight.
	Fill
)

func (k Kind) String() string {
	switch k {
	case Stay:
		return "stay"
	case Travel:
		return "travel"
	case Fill:
		return "filler"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Def describes an Activity to construct.
// Start and End default to At when nil.
type Def struct {
	Name               string
	Kind               Kind
	At                 Locator
	Start              Locator
	End                Locator
	Duration           Duration
	StartAfterMidnight bool
}

// Activity is an immutable unit of behavior shared by every agent whose
// pattern contains it.
type Activity struct {
	name               string
	kind               Kind
	at, start, end     Locator
	duration           Duration
	startAfterMidnight bool
	completeOp         string
}

// ErrInvalidActivity is returned for malformed activity definitions.
var ErrInvalidActivity = errors.New("invalid activity")

// New builds an Activity from d.
func New(d Def) (*Activity, error) {
	if d.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidActivity)
	}
	if d.At == nil {
		return nil, fmt.Errorf("%w: %s: activity locator is required", ErrInvalidActivity, d.Name)
	}
	if d.Duration == nil {
		return nil, fmt.Errorf("%w: %s: duration is required", ErrInvalidActivity, d.Name)
	}
	a := &Activity{
		name:               d.Name,
		kind:               d.Kind,
		at:                 d.At,
		start:              d.Start,
		end:                d.End,
		duration:           d.Duration,
		startAfterMidnight: d.StartAfterMidnight,
		completeOp:         "complete " + d.Name,
	}
	if a.start == nil {
		a.start = a.at
	}
	if a.end == nil {
		a.end = a.at
	}
	return a, nil
}

// MustNew is New for construction code where a failure is a broken build.
func MustNew(d Def) *Activity {
	a, err := New(d)
	if err != nil {
		panic(err)
	}
	return a
}

// NewFiller builds the placeholder activity. loc must resolve to the
// agent's current location.
func NewFiller(loc Locator) *Activity {
	return MustNew(Def{Name: "filler", Kind: Fill, At: loc, Duration: untilMidnight{}})
}

func (a *Activity) Name() string { return a.name }
func (a *Activity) Kind() Kind { return a.kind }
func (a *Activity) IsTravel() bool { return a.kind == Travel }
func (a *Activity) IsFiller() bool { return a.kind == Fill }
func (a *Activity) StartAfterMidnight() bool { return a.startAfterMidnight }

// Location returns where agent performs the activity.
func (a *Activity) Location(agent int) Place { return a.at.Locate(agent) }

// StartLocation returns where agent begins the activity.
func (a *Activity) StartLocation(agent int) Place { return a.start.Locate(agent) }

// EndLocation returns where agent is left when the activity ends.
func (a *Activity) EndLocation(agent int) Place { return a.end.Locate(agent) }

// Duration returns the hours agent spends in the activity if started at now.
func (a *Activity) Duration(agent int, now float64) float64 {
	return a.duration.Hours(agent, now)
}

func (a *Activity) String() string { return a.name }

// DayPattern is an immutable 24-hour program.
type DayPattern struct {
	name       string
	activities []*Activity
}

// NewDayPattern builds a DayPattern. An empty pattern is allowed: the agent
// idles all day.
func NewDayPattern(name string, activities ...*Activity) (*DayPattern, error) {
	if len(activities) > MaxActivitiesPerDay {
		return nil, fmt.Errorf("day pattern %s: %d activities exceeds %d", name, len(activities), MaxActivitiesPerDay)
	}
	for i, a := range activities {
		if a == nil {
			return nil, fmt.Errorf("day pattern %s: activity %d is nil", name, i)
		}
	}
	return &DayPattern{name: name, activities: append([]*Activity(nil), activities...)}, nil
}

// Name returns the pattern name.
func (d *DayPattern) Name() string { return d.name }

// Len returns the number of activities.
func (d *DayPattern) Len() int { return len(d.activities) }

// At returns the activity at slot i.
func (d *DayPattern) At(i int) *Activity { return d.activities[i] }

// Last returns the final activity, or nil for an empty pattern.
func (d *DayPattern) Last() *Activity {
	if len(d.activities) == 0 {
		return nil
	}
	return d.activities[len(d.activities)-1]
}

// WeekPattern assigns a DayPattern to each weekday.
type WeekPattern struct {
	id   int
	name string
	days [DaysPerWeek]*DayPattern
}

// NewWeekPattern builds a WeekPattern. The id is the pattern's index in
// the model-wide list.
func NewWeekPattern(id int, name string, days [DaysPerWeek]*DayPattern) (*WeekPattern, error) {
	for i, d := range days {
		if d == nil {
			return nil, fmt.Errorf("week pattern %s: weekday %d has no day pattern", name, i)
		}
	}
	return &WeekPattern{id: id, name: name, days: days}, nil
}

// Uniform builds a WeekPattern that repeats day on all seven weekdays.
func Uniform(id int, name string, day *DayPattern) (*WeekPattern, error) {
	var days [DaysPerWeek]*DayPattern
	for i := range days {
		days[i] = day
	}
	return NewWeekPattern(id, name, days)
}

// ID returns the stable registration index.
func (w *WeekPattern) ID() int { return w.id }

// Name returns the pattern name.
func (w *WeekPattern) Name() string { return w.name }

// Day returns the DayPattern for weekday (0 = Monday).
func (w *WeekPattern) Day(weekday int) *DayPattern { return w.days[weekday] }
