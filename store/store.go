// Package store keeps finished sweeps in a sqlite database so curves can be
// re-plotted and compared later.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"heatopt/model"
)

var ErrRunNotFound = errors.New("run not found")

const schema = `
	CREATE TABLE IF NOT EXISTS runs (
		run_id            TEXT PRIMARY KEY,
		solver            TEXT NOT NULL,
		started_at        BIGINT NOT NULL,
		finished_at       BIGINT NOT NULL,
		config_json       TEXT
	);
	CREATE TABLE IF NOT EXISTS trials (
		run_id            TEXT NOT NULL,
		idx               INTEGER NOT NULL,
		radius            DOUBLE NOT NULL,
		mean_temperature  DOUBLE NOT NULL,
		min               DOUBLE,
		max               DOUBLE,
		nodes             INTEGER,
		duration_ms       BIGINT,
		PRIMARY KEY (run_id, idx),
		FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
	);
`

type Store struct {
	*sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// one writer; also keeps ":memory:" on a single connection
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db}, nil
}

// RunSummary is one row of the run listing.
type RunSummary struct {
	RunID      string    `json:"run_id"`
	Solver     string    `json:"solver"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Trials     int       `json:"trials"`
	BestRadius float64   `json:"best_radius"`
	BestMean   float64   `json:"best_mean"`
}

// SaveRun stores a finished sweep and the config it ran with.
func (s *Store) SaveRun(ctx context.Context, res *model.SweepResult, cfg model.SweepConfig) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return err
	}

	tx, err := s.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, solver, started_at, finished_at, config_json) VALUES (?, ?, ?, ?, ?)`,
		res.RunID, res.Solver, res.StartedAt.UnixNano(), res.FinishedAt.UnixNano(), string(raw),
	); err != nil {
		return fmt.Errorf("insert run %s: %w", res.RunID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO trials (run_id, idx, radius, mean_temperature, min, max, nodes, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, t := range res.Trials {
		if _, err := stmt.ExecContext(ctx, res.RunID, t.Index, t.Radius, t.MeanTemperature,
			t.Min, t.Max, t.Nodes, t.Duration.Milliseconds()); err != nil {
			return fmt.Errorf("insert trial %d: %w", t.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	log.WithFields(log.Fields{"run": res.RunID, "trials": len(res.Trials)}).Info("run saved")
	return nil
}

// Runs lists stored runs, newest first.
func (s *Store) Runs(ctx context.Context) ([]RunSummary, error) {
	rows, err := s.QueryContext(ctx, `
		SELECT r.run_id, r.solver, r.started_at, r.finished_at,
			(SELECT COUNT(*) FROM trials t WHERE t.run_id = r.run_id),
			COALESCE((SELECT t.radius FROM trials t WHERE t.run_id = r.run_id
				ORDER BY t.mean_temperature DESC, t.idx ASC LIMIT 1), 0.0),
			COALESCE((SELECT MAX(t.mean_temperature) FROM trials t WHERE t.run_id = r.run_id), 0.0)
		FROM runs r
		ORDER BY r.started_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var rs RunSummary
		var started, finished int64
		if err := rows.Scan(&rs.RunID, &rs.Solver, &started, &finished, &rs.Trials, &rs.BestRadius, &rs.BestMean); err != nil {
			return nil, err
		}
		rs.StartedAt = time.Unix(0, started).UTC()
		rs.FinishedAt = time.Unix(0, finished).UTC()
		out = append(out, rs)
	}
	return out, rows.Err()
}

// Load returns a stored run with its trials in index order.
func (s *Store) Load(ctx context.Context, runID string) (*model.SweepResult, error) {
	res := &model.SweepResult{RunID: runID}
	var started, finished int64
	err := s.QueryRowContext(ctx,
		`SELECT solver, started_at, finished_at FROM runs WHERE run_id = ?`, runID,
	).Scan(&res.Solver, &started, &finished)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, err
	}
	res.StartedAt = time.Unix(0, started).UTC()
	res.FinishedAt = time.Unix(0, finished).UTC()

	rows, err := s.QueryContext(ctx, `
		SELECT idx, radius, mean_temperature, min, max, nodes, duration_ms
		FROM trials WHERE run_id = ? ORDER BY idx`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res.Trials = []model.TrialResult{}
	for rows.Next() {
		var t model.TrialResult
		var ms int64
		if err := rows.Scan(&t.Index, &t.Radius, &t.MeanTemperature, &t.Min, &t.Max, &t.Nodes, &ms); err != nil {
			return nil, err
		}
		t.Duration = time.Duration(ms) * time.Millisecond
		res.Trials = append(res.Trials, t)
	}
	return res, rows.Err()
}

// LoadConfig returns the config a run was started with.
func (s *Store) LoadConfig(ctx context.Context, runID string) (model.SweepConfig, error) {
	var raw sql.NullString
	err := s.QueryRowContext(ctx, `SELECT config_json FROM runs WHERE run_id = ?`, runID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return model.SweepConfig{}, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return model.SweepConfig{}, err
	}
	var cfg model.SweepConfig
	if raw.Valid && raw.String != "" {
		if err := json.Unmarshal([]byte(raw.String), &cfg); err != nil {
			return model.SweepConfig{}, fmt.Errorf("run %s config: %w", runID, err)
		}
	}
	return cfg, nil
}

// DeleteRun removes a run and its trials.
func (s *Store) DeleteRun(ctx context.Context, runID string) error {
	tx, err := s.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM trials WHERE run_id = ?`, runID); err != nil {
		return err
	}
	r, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE run_id = ?`, runID)
	if err != nil {
		return err
	}
	if n, _ := r.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return tx.Commit()
}
