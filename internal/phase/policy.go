package phase

// Policy decides phase transitions for one agent.
//
// Next is called when an agent enters current. It returns the phase the
// agent moves to and the dwell time in hours before the move. ok is false
// when current is terminal.
type Policy[C any] interface {
	Next(agent int, current *Phase[C]) (next *Phase[C], dwell float64, ok bool)
}

// PolicyFunc adapts a function to Policy.
type PolicyFunc[C any] func(agent int, current *Phase[C]) (*Phase[C], float64, bool)

// Next calls f.
func (f PolicyFunc[C]) Next(agent int, current *Phase[C]) (*Phase[C], float64, bool) {
	return f(agent, current)
}
