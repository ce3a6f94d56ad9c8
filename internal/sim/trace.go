package sim

import (
	"fmt"
	"io"
)

// Tracer observes activity starts and phase entries as they happen.
// hours is NaN or <= 0 for skipped activities.
type Tracer interface {
	ActivityStarted(t float64, agent int, activity, location string, hours float64)
	PhaseEntered(t float64, agent int, phase string)
}

// TextTracer writes one line per event.
type TextTracer struct {
	w   io.Writer
	err error
}

// NewTextTracer creates a tracer writing to w.
func NewTextTracer(w io.Writer) *TextTracer {
	return &TextTracer{w: w}
}

// ActivityStarted implements Tracer.
func (t *TextTracer) ActivityStarted(now float64, agent int, activity, location string, hours float64) {
	t.printf("t=%.3f agent=%d start=%s at=%s hours=%.3f\n", now, agent, activity, location, hours)
}

// PhaseEntered implements Tracer.
func (t *TextTracer) PhaseEntered(now float64, agent int, phase string) {
	t.printf("t=%.3f agent=%d phase=%s\n", now, agent, phase)
}

// Err returns the first write error, if any.
func (t *TextTracer) Err() error { return t.err }

func (t *TextTracer) printf(format string, args ...any) {
	if t.err != nil {
		return
	}
	_, t.err = fmt.Fprintf(t.w, format, args...)
}
