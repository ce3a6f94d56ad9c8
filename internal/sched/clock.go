package sched

// Clock holds the simulated time and the submission counter.
//
// Time is measured in hours from the start of the simulated week (Monday
// 00:00 = 0). It never moves backwards. The submission counter gives every
// scheduled Task a unique, strictly increasing sequence number used to break
// ties between actions with equal time and priority.
type Clock struct {
	now float64
	seq int64
}

// NewClock creates a clock at time 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock at a specific simulated time.
func NewClockAt(start float64) *Clock {
	return &Clock{now: start}
}

// Now returns the current simulated time in hours.
func (c *Clock) Now() float64 {
	return c.now
}

// Next returns the next submission sequence number.
// The first call returns 1.
func (c *Clock) Next() int64 {
	c.seq++
	return c.seq
}

// Seq returns the last issued sequence number without incrementing.
func (c *Clock) Seq() int64 {
	return c.seq
}

// advance moves the clock forward. Callers guarantee t >= now.
func (c *Clock) advance(t float64) {
	if t > c.now {
		c.now = t
	}
}
