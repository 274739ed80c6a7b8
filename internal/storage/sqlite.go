package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"
	"github.com/tebeka/atexit"

	"github.com/san-kum/ivpsolve/internal/dynamo"
)

type sample struct {
	runID string
	seq   int
	t, y  float64
}

// Recorder streams trajectory samples into a SQLite database. It is a
// dynamo.Observer: attach it to a simulator after BeginRun. Samples are
// buffered and written in batches; pending samples are flushed on Close
// and at process exit.
type Recorder struct {
	*sql.DB
	runStmt    *sql.Stmt
	sampleStmt *sql.Stmt

	path      string
	runID     string
	seq       int
	buffer    []sample
	batchSize int
	err       error
}

// NewRecorder opens (or creates) the database at path.
func NewRecorder(path string) (*Recorder, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	r := &Recorder{
		DB:        db,
		path:      path,
		batchSize: 10000,
	}
	if err := r.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	if err := r.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}

	atexit.Register(func() { r.Flush() })

	return r, nil
}

func (r *Recorder) Path() string { return r.path }

func (r *Recorder) createTables() error {
	_, err := r.Exec(`
		CREATE TABLE IF NOT EXISTS runs
		(
			id          TEXT PRIMARY KEY,
			model       TEXT NOT NULL,
			integrator  TEXT NOT NULL,
			created_at  TEXT NOT NULL,
			y0          REAL,
			t0          REAL,
			tf          REAL,
			h           REAL,
			tolerance   REAL,
			adaptive    INTEGER
		);

		CREATE TABLE IF NOT EXISTS samples
		(
			run_id TEXT    NOT NULL,
			seq    INTEGER NOT NULL,
			t      REAL    NOT NULL,
			y      REAL
		);

		CREATE INDEX IF NOT EXISTS samples_run_id_index
			ON samples (run_id, seq);
	`)
	return err
}

func (r *Recorder) prepareStatements() error {
	var err error

	r.runStmt, err = r.Prepare(`INSERT INTO runs VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}

	r.sampleStmt, err = r.Prepare(`INSERT INTO samples VALUES (?, ?, ?, ?)`)
	return err
}

// BeginRun registers a run and directs subsequent samples to it. Samples
// still buffered for a previous run are flushed first.
func (r *Recorder) BeginRun(meta RunMetadata) error {
	if err := r.Flush(); err != nil {
		return err
	}
	if meta.ID == "" {
		meta.ID = NewRunID(meta.Model)
	}
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}

	_, err := r.runStmt.Exec(
		meta.ID,
		meta.Model,
		meta.Integrator,
		meta.Timestamp.Format(time.RFC3339Nano),
		meta.Y0,
		meta.T0,
		meta.Tf,
		meta.H,
		meta.Tolerance,
		meta.Adaptive,
	)
	if err != nil {
		return fmt.Errorf("record run %s: %w", meta.ID, err)
	}

	r.runID = meta.ID
	r.seq = 0
	return nil
}

func (r *Recorder) RunID() string { return r.runID }

// OnStep implements dynamo.Observer. Write errors are kept and reported by
// the next Flush.
func (r *Recorder) OnStep(t, y float64) {
	if r.runID == "" {
		return
	}
	r.buffer = append(r.buffer, sample{runID: r.runID, seq: r.seq, t: t, y: y})
	r.seq++
	if len(r.buffer) >= r.batchSize {
		// Flush folds any earlier pending error into the one it returns.
		if err := r.Flush(); err != nil {
			r.err = err
		}
	}
}

// Flush writes all buffered samples in one transaction and returns any
// error kept from a batch written by OnStep. A batch that fails to write
// is dropped and the error says how many samples were lost.
func (r *Recorder) Flush() error {
	pending := r.err
	r.err = nil

	if len(r.buffer) == 0 {
		return pending
	}

	err := r.writeBuffer()
	if err != nil {
		err = fmt.Errorf("dropped %d samples: %w", len(r.buffer), err)
	}
	r.buffer = r.buffer[:0]
	return errors.Join(pending, err)
}

func (r *Recorder) writeBuffer() error {
	tx, err := r.Begin()
	if err != nil {
		return err
	}

	stmt := tx.Stmt(r.sampleStmt)
	for _, s := range r.buffer {
		var y any = s.y
		if math.IsNaN(s.y) {
			y = nil
		}
		if _, err := stmt.Exec(s.runID, s.seq, s.t, y); err != nil {
			tx.Rollback()
			return fmt.Errorf("record sample %d of %s: %w", s.seq, s.runID, err)
		}
	}

	return tx.Commit()
}

// Trajectory reads back the samples of one run in recording order. NULL
// states come back as NaN.
func (r *Recorder) Trajectory(runID string) (*dynamo.Trajectory, error) {
	if err := r.Flush(); err != nil {
		return nil, err
	}

	rows, err := r.Query(`SELECT t, y FROM samples WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tr := dynamo.NewTrajectory(0)
	for rows.Next() {
		var (
			t float64
			y sql.NullFloat64
		)
		if err := rows.Scan(&t, &y); err != nil {
			return nil, err
		}
		if !y.Valid {
			y.Float64 = math.NaN()
		}
		tr.Append(t, y.Float64)
	}
	return tr, rows.Err()
}

// Runs lists the recorded run IDs, oldest first.
func (r *Recorder) Runs() ([]string, error) {
	rows, err := r.Query(`SELECT id FROM runs ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *Recorder) Close() error {
	flushErr := r.Flush()
	r.runStmt.Close()
	r.sampleStmt.Close()
	if err := r.DB.Close(); err != nil {
		return err
	}
	return flushErr
}
