// Package sqlite stores extraction runs and their records in a SQLite
// database.
package sqlite

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/tsawler/wikimelt/model"
	"github.com/tsawler/wikimelt/pipeline"
)

// ErrRunNotFound is returned for an unknown run ID.
var ErrRunNotFound = errors.New("run not found")

// Run describes one stored extraction run.
type Run struct {
	ID        string
	Source    string
	CreatedAt time.Time

	Records           int
	TablesDiscovered  int
	TablesParsed      int
	TablesWithRecords int
}

// RunInput is what SaveRun persists. Report may be nil.
type RunInput struct {
	Source  string
	Dataset *model.Dataset
	Report  *pipeline.Report
}

// Store is a SQLite-backed run store. It is safe for concurrent use.
type Store struct {
	db *sql.DB

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// Open opens the database at path with WAL mode and foreign keys enabled,
// creating the schema if needed. ":memory:" opens a private in-memory
// database.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Every connection to :memory: is a separate database
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return &Store{
		db:      db,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	source TEXT NOT NULL,
	created_at TEXT NOT NULL,
	record_count INTEGER NOT NULL DEFAULT 0,
	tables_discovered INTEGER NOT NULL DEFAULT 0,
	tables_parsed INTEGER NOT NULL DEFAULT 0,
	tables_with_records INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS records (
	run_id TEXT NOT NULL,
	seq INTEGER NOT NULL,
	identifier TEXT NOT NULL,
	attribute TEXT NOT NULL,
	value TEXT NOT NULL,
	table_index INTEGER NOT NULL,
	heading TEXT NOT NULL,
	PRIMARY KEY(run_id, seq),
	UNIQUE(run_id, identifier, attribute, value, table_index),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_records_identifier ON records(run_id, identifier);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

func (s *Store) newID(t time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), s.entropy).String()
}

// SaveRun stores a run and its records in one transaction and returns the
// stored run. Records keep their emission order.
func (s *Store) SaveRun(ctx context.Context, in RunInput) (Run, error) {
	now := time.Now().UTC()
	run := Run{
		ID:        s.newID(now),
		Source:    in.Source,
		CreatedAt: now,
		Records:   in.Dataset.Len(),
	}
	if in.Report != nil {
		run.TablesDiscovered = in.Report.TablesDiscovered
		run.TablesParsed = in.Report.TablesParsed
		run.TablesWithRecords = in.Report.TablesWithRecords
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
INSERT INTO runs (id, source, created_at, record_count, tables_discovered, tables_parsed, tables_with_records)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Source, run.CreatedAt.Format(time.RFC3339Nano), run.Records,
		run.TablesDiscovered, run.TablesParsed, run.TablesWithRecords)
	if err != nil {
		return Run{}, fmt.Errorf("inserting run: %w", err)
	}

	if in.Dataset != nil && len(in.Dataset.Records) > 0 {
		stmt, err := tx.PrepareContext(ctx, `
INSERT OR IGNORE INTO records (run_id, seq, identifier, attribute, value, table_index, heading)
VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return Run{}, err
		}
		defer stmt.Close()

		for i, r := range in.Dataset.Records {
			if _, err := stmt.ExecContext(ctx, run.ID, i, r.Identifier, r.Attribute, r.Value, r.TableIndex, r.HeadingContext); err != nil {
				return Run{}, fmt.Errorf("inserting record %d: %w", i, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, err
	}
	return run, nil
}

// Runs returns the most recent runs first. A limit <= 0 returns all runs.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT id, source, created_at, record_count, tables_discovered, tables_parsed, tables_with_records
FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Run returns the run with the given ID, or ErrRunNotFound.
func (s *Store) Run(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, source, created_at, record_count, tables_discovered, tables_parsed, tables_with_records
FROM runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrRunNotFound
	}
	return run, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var run Run
	var created string
	if err := sc.Scan(&run.ID, &run.Source, &created, &run.Records,
		&run.TablesDiscovered, &run.TablesParsed, &run.TablesWithRecords); err != nil {
		return Run{}, err
	}

	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return Run{}, fmt.Errorf("parsing created_at of run %s: %w", run.ID, err)
	}
	run.CreatedAt = t
	return run, nil
}

// Records returns the records of a run in emission order.
func (s *Store) Records(ctx context.Context, runID string) ([]model.Record, error) {
	if _, err := s.Run(ctx, runID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT identifier, attribute, value, table_index, heading
FROM records WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]model.Record, 0)
	for rows.Next() {
		var r model.Record
		if err := rows.Scan(&r.Identifier, &r.Attribute, &r.Value, &r.TableIndex, &r.HeadingContext); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Dataset returns the records of a run as a dataset.
func (s *Store) Dataset(ctx context.Context, runID string) (*model.Dataset, error) {
	records, err := s.Records(ctx, runID)
	if err != nil {
		return nil, err
	}
	return model.NewDataset(records), nil
}

// CountByIdentifier returns the number of records per identifier in a run.
func (s *Store) CountByIdentifier(ctx context.Context, runID string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT identifier, COUNT(*) FROM records WHERE run_id = ? GROUP BY identifier`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		counts[id] = n
	}
	return counts, rows.Err()
}

// DeleteRun removes a run and its records.
func (s *Store) DeleteRun(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// foreign_keys is per connection, so the cascade is not relied on
	if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE run_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRunNotFound
	}
	return tx.Commit()
}
