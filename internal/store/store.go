// Package store persists fixture datasets as named snapshots in SQLite so
// fixtures can be imported once and served from disk.
package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/raysh454/addrmeta/internal/dataset"
	"github.com/raysh454/addrmeta/internal/logging"

	_ "modernc.org/sqlite" // SQLite driver
)

//go:embed schema.sql
var schemaFS embed.FS

var ErrSnapshotNotFound = errors.New("snapshot not found")

// Snapshot describes one imported dataset.
type Snapshot struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	RecordCount int       `json:"record_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store wraps the snapshot database.
type Store struct {
	db     *sql.DB
	logger logging.Logger
}

// Open opens (creating if needed) the SQLite database at path and applies
// the schema. Use ":memory:" for a throwaway store.
func Open(path string, logger logging.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot database: %w", err)
	}
	// One connection: an in-memory database is per connection, and SQLite
	// serialises writers anyway.
	db.SetMaxOpenConns(1)

	s, err := New(db, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an already opened database and applies the schema.
func New(db *sql.DB, logger logging.Logger) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	if err := applySchema(db); err != nil {
		return nil, err
	}
	return &Store{
		db:     db,
		logger: logging.OrNop(logger).With(logging.Field{Key: "component", Value: "store"}),
	}, nil
}

// applySchema sets pragmas and creates the tables.
func applySchema(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("failed to read schema.sql: %w", err)
	}
	if _, err := db.Exec(string(schemaSQL)); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Import stores every record of ds under a new snapshot and returns it.
func (s *Store) Import(ctx context.Context, name string, ds *dataset.Dataset) (*Snapshot, error) {
	if ds == nil {
		return nil, fmt.Errorf("dataset is nil")
	}
	snap := &Snapshot{
		ID:          uuid.New().String(),
		Name:        name,
		RecordCount: ds.Len(),
		CreatedAt:   time.Now().UTC(),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO snapshots (id, name, record_count, created_at) VALUES (?, ?, ?, ?)`,
		snap.ID, snap.Name, snap.RecordCount, snap.CreatedAt.UnixNano()); err != nil {
		return nil, fmt.Errorf("insert snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO records (snapshot_id, key, value) VALUES (?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("prepare record insert: %w", err)
	}
	defer stmt.Close()

	for _, key := range ds.Keys() {
		value, _ := ds.Record(key)
		if _, err := stmt.ExecContext(ctx, snap.ID, key, value); err != nil {
			return nil, fmt.Errorf("insert record %q: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	s.logger.Info("imported snapshot",
		logging.Field{Key: "snapshot_id", Value: snap.ID},
		logging.Field{Key: "name", Value: snap.Name},
		logging.Field{Key: "records", Value: snap.RecordCount})
	return snap, nil
}

// Get returns snapshot metadata.
func (s *Store) Get(ctx context.Context, id string) (*Snapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, record_count, created_at FROM snapshots WHERE id = ?`, id)
	snap, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	return snap, nil
}

// Latest returns the most recently imported snapshot.
func (s *Store) Latest(ctx context.Context) (*Snapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, record_count, created_at FROM snapshots ORDER BY created_at DESC, rowid DESC LIMIT 1`)
	snap, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("latest snapshot: %w", err)
	}
	return snap, nil
}

// List returns every snapshot, newest first.
func (s *Store) List(ctx context.Context) ([]Snapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, record_count, created_at FROM snapshots ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		out = append(out, *snap)
	}
	return out, rows.Err()
}

// Load rebuilds the dataset stored under a snapshot.
func (s *Store) Load(ctx context.Context, id string) (*dataset.Dataset, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM records WHERE snapshot_id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	defer rows.Close()

	records := make(map[string]string)
	for rows.Next() {
		var key string
		var value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records[key] = string(value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}

	s.logger.Debug("loaded snapshot",
		logging.Field{Key: "snapshot_id", Value: id},
		logging.Field{Key: "records", Value: len(records)})
	return dataset.FromRecords(records), nil
}

// LoadLatest loads the most recent snapshot.
func (s *Store) LoadLatest(ctx context.Context) (*dataset.Dataset, *Snapshot, error) {
	snap, err := s.Latest(ctx)
	if err != nil {
		return nil, nil, err
	}
	ds, err := s.Load(ctx, snap.ID)
	if err != nil {
		return nil, nil, err
	}
	return ds, snap, nil
}

// Delete removes a snapshot and its records.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrSnapshotNotFound, id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(r rowScanner) (*Snapshot, error) {
	var snap Snapshot
	var created int64
	if err := r.Scan(&snap.ID, &snap.Name, &snap.RecordCount, &created); err != nil {
		return nil, err
	}
	snap.CreatedAt = time.Unix(0, created).UTC()
	return &snap, nil
}
