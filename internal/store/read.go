package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/agentsim/internal/sim"
)

// ErrRunNotFound is returned for an unknown run id.
var ErrRunNotFound = errors.New("run not found")

// Run is one recorded run.
type Run struct {
	ID           string  `json:"id"`
	Model        string  `json:"model"`
	Seed         uint64  `json:"seed"`
	StartHour    float64 `json:"start_hour"`
	HorizonHours float64 `json:"horizon_hours"`
	Persons      int     `json:"persons"`
	Status       string  `json:"status"`
	StartedAt    string  `json:"started_at"`
	FinishedAt   string  `json:"finished_at,omitempty"` // empty while running
	EndTime      float64 `json:"end_time"`              // simulated hours; valid once finished
	Executed     uint64  `json:"executed"`
	Error        string  `json:"error,omitempty"`
}

type runRow struct {
	ID           string          `db:"id"`
	Model        string          `db:"model"`
	Seed         int64           `db:"seed"`
	StartHour    float64         `db:"start_hour"`
	HorizonHours float64         `db:"horizon_hours"`
	Persons      int             `db:"persons"`
	Status       string          `db:"status"`
	StartedAt    string          `db:"started_at"`
	FinishedAt   sql.NullString  `db:"finished_at"`
	EndTime      sql.NullFloat64 `db:"end_time"`
	Executed     sql.NullInt64   `db:"executed"`
	Error        sql.NullString  `db:"error"`
}

func (r runRow) run() Run {
	return Run{
		ID:           r.ID,
		Model:        r.Model,
		Seed:         uint64(r.Seed),
		StartHour:    r.StartHour,
		HorizonHours: r.HorizonHours,
		Persons:      r.Persons,
		Status:       r.Status,
		StartedAt:    r.StartedAt,
		FinishedAt:   r.FinishedAt.String,
		EndTime:      r.EndTime.Float64,
		Executed:     uint64(r.Executed.Int64),
		Error:        r.Error.String,
	}
}

const runColumns = `id, model, seed, start_hour, horizon_hours, persons, status,
	started_at, finished_at, end_time, executed, error`

// ReadRun returns one run by id.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	var row runRow
	err := s.db.GetContext(ctx, &row, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("read run %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("read run %s: %w", id, err)
	}
	return row.run(), nil
}

// ListRuns returns every run, oldest first.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	var rows []runRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT `+runColumns+` FROM runs ORDER BY started_at ASC, id ASC`); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	runs := make([]Run, len(rows))
	for i, r := range rows {
		runs[i] = r.run()
	}
	return runs, nil
}

// LatestRun returns the most recently created run.
func (s *Store) LatestRun(ctx context.Context) (Run, error) {
	var row runRow
	err := s.db.GetContext(ctx, &row, `SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, id DESC LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("latest run: %w", ErrRunNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("latest run: %w", err)
	}
	return row.run(), nil
}

// ReadSnapshots returns every snapshot of a run in seq order, with
// locations by id and phases by ordinal.
func (s *Store) ReadSnapshots(ctx context.Context, runID string) ([]*sim.Snapshot, error) {
	var heads []snapshotRow
	err := s.db.SelectContext(ctx, &heads, `
		SELECT run_id, seq, time, executed, final
		FROM snapshots WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("read snapshots of %s: %w", runID, err)
	}

	var locs []locationRow
	err = s.db.SelectContext(ctx, &locs, `
		SELECT run_id, seq, location_id, name, type, occupancy, samples, hours, max_occupancy
		FROM location_snapshots WHERE run_id = ?
		ORDER BY seq ASC, location_id ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("read location snapshots of %s: %w", runID, err)
	}

	var phases []phaseRow
	err = s.db.SelectContext(ctx, &phases, `
		SELECT run_id, seq, ordinal, name, class, count
		FROM phase_counts WHERE run_id = ?
		ORDER BY seq ASC, ordinal ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("read phase counts of %s: %w", runID, err)
	}

	snaps := make([]*sim.Snapshot, len(heads))
	bySeq := make(map[int]*sim.Snapshot, len(heads))
	for i, h := range heads {
		snaps[i] = &sim.Snapshot{
			Seq:      h.Seq,
			Time:     h.Time,
			Executed: uint64(h.Executed),
			Final:    h.Final,
		}
		bySeq[h.Seq] = snaps[i]
	}
	for _, l := range locs {
		snap := bySeq[l.Seq]
		snap.Locations = append(snap.Locations, sim.LocationStat{
			ID:           l.LocationID,
			Name:         l.Name,
			Type:         l.Type,
			Occupancy:    l.Occupancy,
			Samples:      l.Samples,
			Hours:        l.Hours,
			MaxOccupancy: l.MaxOccupancy,
		})
	}
	for _, p := range phases {
		snap := bySeq[p.Seq]
		snap.Phases = append(snap.Phases, sim.PhaseCount{
			Ordinal: p.Ordinal,
			Name:    p.Name,
			Class:   p.Class,
			Count:   p.Count,
		})
	}
	return snaps, nil
}
