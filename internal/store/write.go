package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/roach88/agentsim/internal/sim"
)

// Run statuses.
const (
	StatusRunning  = "running"
	StatusFinished = "finished"
	StatusFailed   = "failed"
)

// RunInfo describes a run being started.
type RunInfo struct {
	Model        string
	Seed         uint64
	StartHour    float64
	HorizonHours float64
	Persons      int
}

// BeginRun records a new run with status "running" and returns its id.
func (s *Store) BeginRun(ctx context.Context, info RunInfo) (string, error) {
	id := s.ids.Generate()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs
		(id, model, seed, start_hour, horizon_hours, persons, status, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		id,
		info.Model,
		int64(info.Seed), // stored as the two's complement bit pattern
		info.StartHour,
		info.HorizonHours,
		info.Persons,
		StatusRunning,
		s.timestamp(),
	)
	if err != nil {
		return "", fmt.Errorf("begin run: %w", err)
	}
	return id, nil
}

// FinishRun marks a run finished, or failed when runErr is non-nil, and
// records the final clock and action count.
func (s *Store) FinishRun(ctx context.Context, id string, res *sim.Result, runErr error) error {
	status := StatusFinished
	var errText any
	if runErr != nil {
		status = StatusFailed
		errText = runErr.Error()
	}
	var endTime, executed any
	if res != nil {
		endTime = res.End
		executed = int64(res.Executed)
	}

	r, err := s.db.ExecContext(ctx, `
		UPDATE runs
		SET status = ?, finished_at = ?, end_time = ?, executed = ?, error = ?
		WHERE id = ?
	`, status, s.timestamp(), endTime, executed, errText, id)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", id, err)
	}
	if n, err := r.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finish run %s: %w", id, ErrRunNotFound)
	}
	return nil
}

// snapshotRow, locationRow and phaseRow mirror the snapshot tables.
type snapshotRow struct {
	RunID    string  `db:"run_id"`
	Seq      int     `db:"seq"`
	Time     float64 `db:"time"`
	Executed int64   `db:"executed"`
	Final    bool    `db:"final"`
}

type locationRow struct {
	RunID        string  `db:"run_id"`
	Seq          int     `db:"seq"`
	LocationID   int     `db:"location_id"`
	Name         string  `db:"name"`
	Type         string  `db:"type"`
	Occupancy    int     `db:"occupancy"`
	Samples      int64   `db:"samples"`
	Hours        float64 `db:"hours"`
	MaxOccupancy int     `db:"max_occupancy"`
}

type phaseRow struct {
	RunID   string `db:"run_id"`
	Seq     int    `db:"seq"`
	Ordinal int    `db:"ordinal"`
	Name    string `db:"name"`
	Class   string `db:"class"`
	Count   int    `db:"count"`
}

// WriteSnapshot stores one snapshot and its rows in a single transaction.
// Writing the same (run, seq) twice is an error.
func (s *Store) WriteSnapshot(ctx context.Context, runID string, snap *sim.Snapshot) error {
	if snap == nil {
		return errors.New("write snapshot: nil snapshot")
	}
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO snapshots (run_id, seq, time, executed, final)
			VALUES (:run_id, :seq, :time, :executed, :final)
		`, snapshotRow{
			RunID:    runID,
			Seq:      snap.Seq,
			Time:     snap.Time,
			Executed: int64(snap.Executed),
			Final:    snap.Final,
		})
		if err != nil {
			return err
		}

		for _, l := range snap.Locations {
			_, err := tx.NamedExecContext(ctx, `
				INSERT INTO location_snapshots
				(run_id, seq, location_id, name, type, occupancy, samples, hours, max_occupancy)
				VALUES (:run_id, :seq, :location_id, :name, :type, :occupancy, :samples, :hours, :max_occupancy)
			`, locationRow{
				RunID:        runID,
				Seq:          snap.Seq,
				LocationID:   l.ID,
				Name:         l.Name,
				Type:         l.Type,
				Occupancy:    l.Occupancy,
				Samples:      l.Samples,
				Hours:        l.Hours,
				MaxOccupancy: l.MaxOccupancy,
			})
			if err != nil {
				return err
			}
		}

		for _, p := range snap.Phases {
			_, err := tx.NamedExecContext(ctx, `
				INSERT INTO phase_counts (run_id, seq, ordinal, name, class, count)
				VALUES (:run_id, :seq, :ordinal, :name, :class, :count)
			`, phaseRow{
				RunID:   runID,
				Seq:     snap.Seq,
				Ordinal: p.Ordinal,
				Name:    p.Name,
				Class:   p.Class,
				Count:   p.Count,
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("write snapshot %d of run %s: %w", snap.Seq, runID, err)
	}
	return nil
}

// Reporter returns a sim.Reporter that writes snapshots under runID.
func (s *Store) Reporter(runID string) sim.Reporter {
	return sim.ReporterFunc(func(ctx context.Context, snap *sim.Snapshot) error {
		return s.WriteSnapshot(ctx, runID, snap)
	})
}

func (s *Store) timestamp() string {
	return s.clock.Now().UTC().Format(time.RFC3339Nano)
}
