// Package store archives simulation runs and their per-channel recovery
// metrics in a SQLite database.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Store handles database operations. Connections are opened lazily, a
// write connection with WAL journaling and a separate read-only one.
type Store struct {
	dbPath string

	writeDB     *sql.DB
	writeDBOnce sync.Once
	writeDBErr  error

	readDB     *sql.DB
	readDBOnce sync.Once
	readDBErr  error

	closeOnce sync.Once
	closeErr  error
}

// New creates a store backed by the SQLite database at dbPath. The file
// is created and the schema initialized on first write.
func New(dbPath string) *Store {
	return &Store{dbPath: dbPath}
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(schemaSQL)
	return err
}

func (s *Store) getWriteDB() (*sql.DB, error) {
	s.writeDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", "file:"+s.dbPath+"?_journal_mode=WAL&_synchronous=NORMAL")
		if err != nil {
			s.writeDBErr = fmt.Errorf("opening write connection: %w", err)
			return
		}

		if err = initSchema(db); err != nil {
			_ = db.Close()
			s.writeDBErr = fmt.Errorf("initializing schema: %w", err)
			return
		}

		s.writeDB = db
	})

	return s.writeDB, s.writeDBErr
}

func (s *Store) getReadDB() (*sql.DB, error) {
	s.readDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", "file:"+s.dbPath+"?mode=ro")
		if err != nil {
			s.readDBErr = fmt.Errorf("opening read connection: %w", err)
			return
		}
		s.readDB = db
	})

	return s.readDB, s.readDBErr
}

func closeWithError(cl interface{ Close() error }, err *error) {
	if cErr := cl.Close(); cErr != nil && *err == nil {
		*err = cErr
	}
}

// rollbackWithError discards the transaction unless it already committed.
func rollbackWithError(tx *sql.Tx, err *error) {
	if rErr := tx.Rollback(); rErr != nil && !errors.Is(rErr, sql.ErrTxDone) && *err == nil {
		*err = rErr
	}
}

const insertRunSQL = `
INSERT INTO runs (created_at,
                  label,
                  sample_rate,
                  duration,
                  cutoff_hz,
                  filter_order,
                  noise_kind,
                  noise_stddev,
                  noise_seed,
                  workers,
                  config)
VALUES (CURRENT_TIMESTAMP, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// CreateRun inserts a run and returns its ID. The ID, CreatedAt and
// Config fields of run are ignored; config is stored as-is when it is a
// string or []byte and marshaled to JSON otherwise.
func (s *Store) CreateRun(ctx context.Context, run RunData, config any) (runID int64, err error) {
	var configData sql.NullString

	if config != nil {
		switch config.(type) {
		case string:
			configData.Valid = true
			configData.String = config.(string)

		case []byte:
			configData.Valid = true
			configData.String = string(config.([]byte))

		default:
			var p []byte
			if p, err = json.Marshal(config); err != nil {
				err = fmt.Errorf("marshaling config: %w", err)
				return
			}

			configData.Valid = true
			configData.String = string(p)
		}
	}

	db, err := s.getWriteDB()
	if err != nil {
		err = fmt.Errorf("getting write connection: %w", err)
		return
	}

	stmt, err := db.PrepareContext(ctx, insertRunSQL)
	if err != nil {
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer closeWithError(stmt, &err)

	result, err := stmt.ExecContext(ctx,
		run.Label,
		run.SampleRate,
		run.Duration,
		run.CutoffHz,
		run.FilterOrder,
		run.NoiseKind,
		run.NoiseStdDev,
		run.NoiseSeed,
		run.Workers,
		configData,
	)
	if err != nil {
		err = fmt.Errorf("inserting run: %w", err)
		return
	}

	return result.LastInsertId()
}

const selectRunSQL = `
SELECT
    id,
    created_at,
    label,
    sample_rate,
    duration,
    cutoff_hz,
    filter_order,
    noise_kind,
    noise_stddev,
    noise_seed,
    workers,
    config
FROM runs
WHERE
    id = ?`

// Run returns a run by its ID.
func (s *Store) Run(ctx context.Context, id int64) (run *RunData, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	stmt, err := db.PrepareContext(ctx, selectRunSQL)
	if err != nil {
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer closeWithError(stmt, &err)

	var r RunData
	if err = stmt.QueryRowContext(ctx, id).Scan(
		&r.ID,
		&r.CreatedAt,
		&r.Label,
		&r.SampleRate,
		&r.Duration,
		&r.CutoffHz,
		&r.FilterOrder,
		&r.NoiseKind,
		&r.NoiseStdDev,
		&r.NoiseSeed,
		&r.Workers,
		&r.Config,
	); err != nil {
		err = fmt.Errorf("scanning run: %w", err)
		return
	}
	return &r, nil
}

const selectRunsSQL = `
SELECT
    id,
    created_at,
    label,
    sample_rate,
    duration,
    cutoff_hz,
    filter_order,
    noise_kind,
    noise_stddev,
    noise_seed,
    workers,
    config
FROM runs
ORDER BY id`

// Runs returns all stored runs in insertion order.
func (s *Store) Runs(ctx context.Context) (runs []RunData, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	rows, err := db.QueryContext(ctx, selectRunsSQL)
	if err != nil {
		err = fmt.Errorf("querying runs: %w", err)
		return
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var r RunData
		if err = rows.Scan(
			&r.ID,
			&r.CreatedAt,
			&r.Label,
			&r.SampleRate,
			&r.Duration,
			&r.CutoffHz,
			&r.FilterOrder,
			&r.NoiseKind,
			&r.NoiseStdDev,
			&r.NoiseSeed,
			&r.Workers,
			&r.Config,
		); err != nil {
			err = fmt.Errorf("scanning run: %w", err)
			return
		}
		runs = append(runs, r)
	}
	if err = rows.Err(); err != nil {
		err = fmt.Errorf("iterating runs: %w", err)
		return
	}
	return
}

const insertMetricSQL = `
INSERT INTO channel_metrics (run_id,
                             channel,
                             message_hz,
                             carrier_hz,
                             amplitude,
                             phase_rad,
                             residual_rms,
                             correlation,
                             samples)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

// BatchInsertMetrics inserts multiple channel metrics in a single
// transaction.
func (s *Store) BatchInsertMetrics(ctx context.Context, metrics []ChannelMetricData) (err error) {
	if len(metrics) == 0 {
		return
	}

	db, err := s.getWriteDB()
	if err != nil {
		return fmt.Errorf("getting write connection: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer rollbackWithError(tx, &err)

	stmt, err := tx.PrepareContext(ctx, insertMetricSQL)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(stmt, &err)

	for _, metric := range metrics {
		_, err = stmt.ExecContext(ctx,
			metric.RunID,
			metric.Channel,
			metric.MessageHz,
			metric.CarrierHz,
			metric.Amplitude,
			metric.PhaseRad,
			metric.ResidualRMS,
			metric.Correlation,
			metric.Samples,
		)
		if err != nil {
			return fmt.Errorf("inserting metric: %w", err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return
}

const selectMetricsSQL = `
SELECT
    id,
    run_id,
    channel,
    message_hz,
    carrier_hz,
    amplitude,
    phase_rad,
    residual_rms,
    correlation,
    samples
FROM channel_metrics
WHERE
    run_id = ?
ORDER BY channel`

// ChannelMetrics returns the metrics stored for a run, ordered by
// channel index.
func (s *Store) ChannelMetrics(ctx context.Context, runID int64) (metrics []ChannelMetricData, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	rows, err := db.QueryContext(ctx, selectMetricsSQL, runID)
	if err != nil {
		err = fmt.Errorf("querying metrics: %w", err)
		return
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var m ChannelMetricData
		if err = rows.Scan(
			&m.ID,
			&m.RunID,
			&m.Channel,
			&m.MessageHz,
			&m.CarrierHz,
			&m.Amplitude,
			&m.PhaseRad,
			&m.ResidualRMS,
			&m.Correlation,
			&m.Samples,
		); err != nil {
			err = fmt.Errorf("scanning metric: %w", err)
			return
		}
		metrics = append(metrics, m)
	}
	if err = rows.Err(); err != nil {
		err = fmt.Errorf("iterating metrics: %w", err)
		return
	}
	return
}

// SaveRun archives a run together with its per-channel metrics and
// returns the new run ID. Each metric is stamped with that ID before
// insertion.
func (s *Store) SaveRun(ctx context.Context, run RunData, config any, metrics []ChannelMetricData) (runID int64, err error) {
	if runID, err = s.CreateRun(ctx, run, config); err != nil {
		return
	}

	for i := range metrics {
		metrics[i].RunID = runID
	}

	if err = s.BatchInsertMetrics(ctx, metrics); err != nil {
		return
	}
	return runID, nil
}

// Close closes the database connections.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		var writeErr, readErr error

		if s.writeDB != nil {
			writeErr = s.writeDB.Close()
			s.writeDB = nil
		}

		if s.readDB != nil {
			readErr = s.readDB.Close()
			s.readDB = nil
		}

		switch {
		case writeErr != nil && readErr != nil:
			s.closeErr = errors.Join(writeErr, readErr)
		case writeErr != nil:
			s.closeErr = writeErr
		case readErr != nil:
			s.closeErr = readErr
		}
	})

	return s.closeErr
}
