package store

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/agentsim/internal/sim"
	"github.com/roach88/agentsim/internal/testutil"
)

// epoch is the first timestamp handed out by test clocks.
var epoch = time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)

// createTestStore creates a store in a temp dir with fixed run ids and a
// stepping clock.
func createTestStore(t *testing.T, ids ...string) *Store {
	t.Helper()
	if len(ids) == 0 {
		ids = []string{"run-1", "run-2", "run-3"}
	}
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path,
		WithRunIDGenerator(NewSequenceGenerator(ids...)),
		WithClock(testutil.NewStepClock(epoch, time.Minute)),
	)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestSnapshot builds a snapshot with two locations and two phases.
func createTestSnapshot(seq int, at float64, final bool) *sim.Snapshot {
	return &sim.Snapshot{
		Seq:      seq,
		Time:     at,
		Executed: uint64(10 * (seq + 1)),
		Final:    final,
		Locations: []sim.LocationStat{
			{ID: 0, Name: "house", Type: "home", Occupancy: 2 - seq%2, Samples: int64(seq + 1), Hours: 8, MaxOccupancy: 2},
			{ID: 1, Name: "office", Type: "office", Occupancy: seq % 2, Samples: int64(seq), Hours: 4.5, MaxOccupancy: 1},
		},
		Phases: []sim.PhaseCount{
			{Ordinal: 0, Name: "Susceptible", Class: "healthy", Count: 1},
			{Ordinal: 1, Name: "Infected", Class: "infectious", Count: 1},
		},
	}
}

func getTableIndexes(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()

	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type='index' AND tbl_name=?", table)
	if err != nil {
		t.Fatalf("failed to get indexes for %q: %v", table, err)
	}
	defer rows.Close()

	var indexes []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("failed to scan index name: %v", err)
		}
		indexes = append(indexes, name)
	}
	return indexes
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
