package sim

import (
	"context"
	"sync"
)

// Snapshot is an immutable view of the model taken between actions.
type Snapshot struct {
	Seq       int            `json:"seq"`      // 0-based report number within the run
	Time      float64        `json:"time"`     // simulated hours
	Executed  uint64         `json:"executed"` // actions executed so far
	Final     bool           `json:"final"`    // taken when the run ended
	Locations []LocationStat `json:"locations"`
	Phases    []PhaseCount   `json:"phases,omitempty"`
}

// LocationStat is one location's occupancy and cumulative usage.
type LocationStat struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	Type         string  `json:"type"`
	Occupancy    int     `json:"occupancy"`
	Samples      int64   `json:"samples"`
	Hours        float64 `json:"hours"`
	MaxOccupancy int     `json:"max_occupancy"`
}

// PhaseCount is the number of persons in one phase.
type PhaseCount struct {
	Ordinal int    `json:"ordinal"`
	Name    string `json:"name"`
	Class   string `json:"class"`
	Count   int    `json:"count"`
}

// Occupancy returns the occupancy of the named location, or -1.
func (s *Snapshot) Occupancy(name string) int {
	for _, l := range s.Locations {
		if l.Name == name {
			return l.Occupancy
		}
	}
	return -1
}

// PhaseCount returns the count for the named phase, or -1.
func (s *Snapshot) PhaseCount(name string) int {
	for _, p := range s.Phases {
		if p.Name == name {
			return p.Count
		}
	}
	return -1
}

// Reporter receives snapshots as the run produces them. An error stops
// the run.
type Reporter interface {
	Report(ctx context.Context, snap *Snapshot) error
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(ctx context.Context, snap *Snapshot) error

// Report calls f.
func (f ReporterFunc) Report(ctx context.Context, snap *Snapshot) error { return f(ctx, snap) }

// Recorder keeps every snapshot in memory.
type Recorder struct {
	mu        sync.Mutex
	snapshots []*Snapshot
}

// Report implements Reporter.
func (r *Recorder) Report(_ context.Context, snap *Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots = append(r.snapshots, snap)
	return nil
}

// Snapshots returns the recorded snapshots in order.
func (r *Recorder) Snapshots() []*Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Snapshot(nil), r.snapshots...)
}
