package model

import (
	"errors"
	"fmt"
	"math"

	"github.com/roach88/agentsim/internal/activity"
	"github.com/roach88/agentsim/internal/props"
)

// Person property names.
const (
	PropCursor      = "cursor"
	PropWeekPattern = "week_pattern"
	PropLocation    = "location"
	PropMember      = "member"
	PropPhase       = "phase"
	PropHome        = "home"
	PropWork        = "work"
)

// noLocation marks an unset location-valued property.
const noLocation = -1

// Population is the columnar state of every person in the model. Person
// ids are dense indexes in [0, Size).
//
// It implements activity.State.
type Population struct {
	reg   *Registry
	props *props.Properties

	cursor   *props.Array
	pattern  *props.Array
	location *props.Array
	member   *props.Array
	phase    *props.Array
}

// NewPopulation allocates state for size persons and attaches it to reg.
// Every person starts with the Filler cursor, week pattern 0, no location.
func NewPopulation(reg *Registry, size int) (*Population, error) {
	if reg.pop != nil {
		return nil, errors.New("registry already has a population")
	}
	if len(reg.patterns) > math.MaxInt16 {
		return nil, fmt.Errorf("%d week patterns exceed the short id range", len(reg.patterns))
	}

	p := &Population{reg: reg, props: props.New("person", size)}
	specs := []struct {
		name string
		kind props.Kind
		dst  **props.Array
	}{
		{PropCursor, props.Int, &p.cursor},
		{PropWeekPattern, props.Short, &p.pattern},
		{PropLocation, props.Int, &p.location},
		{PropMember, props.Int, &p.member},
		{PropPhase, props.Byte, &p.phase},
	}
	for _, s := range specs {
		a, err := p.props.Create(s.name, s.kind)
		if err != nil {
			return nil, err
		}
		*s.dst = a
	}
	p.cursor.Fill(int32(activity.Filler))
	p.location.Fill(noLocation)
	p.member.Fill(noLocation)

	for _, name := range []string{PropHome, PropWork} {
		if _, err := p.AddLocationProperty(name); err != nil {
			return nil, err
		}
	}

	reg.pop = p
	return p, nil
}

// Size returns the number of persons.
func (p *Population) Size() int { return p.props.Size() }

// Props exposes the underlying property table.
func (p *Population) Props() *props.Properties { return p.props }

// Registry returns the registry this population is attached to.
func (p *Population) Registry() *Registry { return p.reg }

// AddLocationProperty creates an Int property holding location ids,
// initialized to "unset". Locators can resolve it by name.
func (p *Population) AddLocationProperty(name string) (*props.Array, error) {
	a, err := p.props.Create(name, props.Int)
	if err != nil {
		return nil, err
	}
	a.Fill(noLocation)
	return a, nil
}

// LocationProperty resolves a location-valued property for agent.
// ok is false when the property is unset.
func (p *Population) LocationProperty(name string, agent int) (*Location, bool) {
	id := int(p.props.GetInt(name, agent))
	if id == noLocation {
		return nil, false
	}
	l, err := p.reg.Location(id)
	if err != nil {
		panic(fmt.Sprintf("model: person %d property %s: %v", agent, name, err))
	}
	return l, true
}

// SetLocationProperty stores a location id in a location-valued property.
func (p *Population) SetLocationProperty(name string, agent int, l *Location) {
	p.props.SetInt(name, agent, int32(l.ID()))
}

// Place puts agent at l, as a member, before the run starts.
func (p *Population) Place(agent int, l *Location) {
	if old := p.Member(agent); old != nil {
		old.RemovePerson(agent)
	}
	l.AddPerson(agent)
	p.location.SetInt(agent, int32(l.ID()))
	p.member.SetInt(agent, int32(l.ID()))
}

// SetWeekPattern assigns agent's week pattern. May be called mid-run.
func (p *Population) SetWeekPattern(agent int, wp *activity.WeekPattern) {
	p.pattern.SetShort(agent, int16(wp.ID()))
}

// Phase returns agent's phase ordinal.
func (p *Population) Phase(agent int) int { return int(p.phase.Byte(agent)) }

// SetPhase stores agent's phase ordinal.
func (p *Population) SetPhase(agent int, ordinal int) {
	p.phase.SetByte(agent, int8(ordinal))
}

// CurrentLocation returns the concrete current location.
func (p *Population) CurrentLocation(agent int) *Location {
	return p.mustLocation(agent, int(p.location.Int(agent)))
}

func (p *Population) mustLocation(agent, id int) *Location {
	l, err := p.reg.Location(id)
	if err != nil {
		panic(fmt.Sprintf("model: person %d has no valid location: %v", agent, err))
	}
	return l
}

// Cursor implements activity.State.
func (p *Population) Cursor(agent int) activity.Cursor {
	return activity.Cursor(p.cursor.Int(agent))
}

// SetCursor implements activity.State.
func (p *Population) SetCursor(agent int, c activity.Cursor) {
	p.cursor.SetInt(agent, int32(c))
}

// WeekPattern implements activity.State.
func (p *Population) WeekPattern(agent int) *activity.WeekPattern {
	return p.reg.patterns[p.pattern.Short(agent)]
}

// Location implements activity.State.
func (p *Population) Location(agent int) activity.Place {
	return p.CurrentLocation(agent)
}

// SetLocation implements activity.State.
func (p *Population) SetLocation(agent int, l activity.Place) {
	p.location.SetInt(agent, int32(l.ID()))
}

// Member implements activity.State.
func (p *Population) Member(agent int) activity.Place {
	id := int(p.member.Int(agent))
	if id == noLocation {
		return nil
	}
	return p.mustLocation(agent, id)
}

// SetMember implements activity.State.
func (p *Population) SetMember(agent int, l activity.Place) {
	if l == nil {
		p.member.SetInt(agent, noLocation)
		return
	}
	p.member.SetInt(agent, int32(l.ID()))
}
