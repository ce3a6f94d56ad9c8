package model

// Usage aggregates the activity durations recorded against a location.
type Usage struct {
	Samples      int64
	Hours        float64
	MaxOccupancy int
}

// Location is a place persons occupy.
//
// Membership is an ordered slice with a position index, so add and remove
// are O(1) and iteration order depends only on the sequence of calls.
type Location struct {
	id       int
	typ      int
	capacity int
	open     bool

	members  []int
	position map[int]int
	usage    Usage
}

func newLocation(id, typ, capacity int, open bool) *Location {
	return &Location{
		id:       id,
		typ:      typ,
		capacity: capacity,
		open:     open,
		position: make(map[int]int),
	}
}

// ID returns the dense location id.
func (l *Location) ID() int { return l.id }

// Type returns the location type index.
func (l *Location) Type() int { return l.typ }

// Capacity returns the number of sub-locations (rooms, desks, seats).
func (l *Location) Capacity() int { return l.capacity }

// Open reports whether the location accepts visitors.
func (l *Location) Open() bool { return l.open }

// SetOpen opens or closes the location. Persons already inside stay.
func (l *Location) SetOpen(open bool) { l.open = open }

// AddPerson adds agent to the membership. Adding a member twice is a no-op.
func (l *Location) AddPerson(agent int) {
	if _, ok := l.position[agent]; ok {
		return
	}
	l.position[agent] = len(l.members)
	l.members = append(l.members, agent)
	if len(l.members) > l.usage.MaxOccupancy {
		l.usage.MaxOccupancy = len(l.members)
	}
}

// RemovePerson removes agent from the membership. The last member takes
// the removed member's slot.
func (l *Location) RemovePerson(agent int) {
	i, ok := l.position[agent]
	if !ok {
		return
	}
	last := len(l.members) - 1
	if i != last {
		moved := l.members[last]
		l.members[i] = moved
		l.position[moved] = i
	}
	l.members = l.members[:last]
	delete(l.position, agent)
}

// Contains reports whether agent is a member.
func (l *Location) Contains(agent int) bool {
	_, ok := l.position[agent]
	return ok
}

// Count returns the current number of members.
func (l *Location) Count() int { return len(l.members) }

// Members returns a copy of the membership in slot order.
func (l *Location) Members() []int {
	return append([]int(nil), l.members...)
}

// RecordDuration adds one activity duration sample.
func (l *Location) RecordDuration(hours float64) {
	l.usage.Samples++
	l.usage.Hours += hours
}

// Usage returns the aggregate statistics.
func (l *Location) Usage() Usage { return l.usage }
