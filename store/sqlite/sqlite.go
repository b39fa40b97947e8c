/*
Package sqlite provides the SQLite-backed implementation of
engine.LaunchStore.

PURPOSE:
  Persists launch records. In production the same patterns apply to
  PostgreSQL - only minor SQL dialect differences.

SERIALIZATION BOUNDARY:
  The input snapshot and the computed breakdown are stored as JSON
  columns, encoded and decoded ONLY here through encodeInput/
  decodeInput and encodeBreakdown/decodeBreakdown. Nothing upstream
  ever sees a serialized KPI list; claimed/credited KPIs stay typed
  []string through the whole pipeline.

ID CONTRACT:
  id is INTEGER PRIMARY KEY AUTOINCREMENT, so IDs are strictly
  increasing in insertion order - the property the reconciliation
  tie-break depends on. ref is a uuid for external reference.

MUTATIONS:
  Only two mutations exist after creation, matching the workflow:
  - SetStatus: pending -> approved | rejected
  - ApplyEdit: replaces input+breakdown in place and marks the row
    edited_admin (approval status untouched, no new row)
  Calculation results are otherwise immutable.

WAL MODE:
  Opened with WAL for read concurrency; a sync.RWMutex serializes
  writers the same way the rest of the codebase expects.

USAGE:
  store, err := sqlite.New("./data/comp.db")
  if err != nil { log.Fatal(err) }
  defer store.Close()
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/comp-engine/engine"
)

// Store implements engine.LaunchStore on SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ engine.LaunchStore = (*Store)(nil)

// New opens (or creates) the database at dbPath and migrates the
// schema. Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS launch_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ref TEXT NOT NULL UNIQUE,
		worker_id TEXT NOT NULL,
		date TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		edit_status TEXT NOT NULL DEFAULT 'original',
		edited_by TEXT NOT NULL DEFAULT '',
		edited_at TEXT,
		input_json TEXT NOT NULL,
		breakdown_json TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	-- History listing (hot path): worker + date range
	CREATE INDEX IF NOT EXISTS idx_launches_worker_date
		ON launch_records(worker_id, date);

	-- Approval queue filtering
	CREATE INDEX IF NOT EXISTS idx_launches_status
		ON launch_records(status);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// JSON CODEC - the single (de)serialization point
// =============================================================================

func encodeInput(in engine.ShiftInput) (string, error) {
	b, err := json.Marshal(in)
	if err != nil {
		return "", fmt.Errorf("encode input: %w", err)
	}
	return string(b), nil
}

func decodeInput(raw string) (engine.ShiftInput, error) {
	var in engine.ShiftInput
	if err := json.Unmarshal([]byte(raw), &in); err != nil {
		return engine.ShiftInput{}, fmt.Errorf("decode input: %w", err)
	}
	return in, nil
}

func encodeBreakdown(bd engine.Breakdown) (string, error) {
	b, err := json.Marshal(bd)
	if err != nil {
		return "", fmt.Errorf("encode breakdown: %w", err)
	}
	return string(b), nil
}

func decodeBreakdown(raw string) (engine.Breakdown, error) {
	var bd engine.Breakdown
	if err := json.Unmarshal([]byte(raw), &bd); err != nil {
		return engine.Breakdown{}, fmt.Errorf("decode breakdown: %w", err)
	}
	return bd, nil
}

// =============================================================================
// LAUNCH STORE
// =============================================================================

// Create persists a new record, assigning ID, Ref, and CreatedAt.
func (s *Store) Create(ctx context.Context, rec *engine.LaunchRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	inputJSON, err := encodeInput(rec.Input)
	if err != nil {
		return err
	}
	bdJSON, err := encodeBreakdown(rec.Breakdown)
	if err != nil {
		return err
	}

	if rec.Status == "" {
		rec.Status = engine.StatusPending
	}
	if rec.EditStatus == "" {
		rec.EditStatus = engine.EditOriginal
	}
	rec.Ref = uuid.NewString()
	rec.CreatedAt = time.Now().UTC()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO launch_records
			(ref, worker_id, date, status, edit_status, edited_by, edited_at,
			 input_json, breakdown_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, NULL, ?, ?, ?)`,
		rec.Ref,
		string(rec.WorkerID),
		rec.Date.UTC().Format("2006-01-02"),
		string(rec.Status),
		string(rec.EditStatus),
		rec.EditedBy,
		inputJSON,
		bdJSON,
		rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert launch record: %w", err)
	}

	rec.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	return nil
}

// Get returns one record by ID.
func (s *Store) Get(ctx context.Context, id int64) (*engine.LaunchRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, ref, worker_id, date, status, edit_status, edited_by, edited_at,
		       input_json, breakdown_json, created_at
		FROM launch_records WHERE id = ?`, id)

	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, engine.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// SetStatus applies an approve/reject transition to a pending record.
func (s *Store) SetStatus(ctx context.Context, id int64, status engine.Status) error {
	if status != engine.StatusApproved && status != engine.StatusRejected {
		return &engine.InvalidInputError{Field: "status", Reason: "must be approved or rejected"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var current string
	err := s.db.QueryRowContext(ctx,
		`SELECT status FROM launch_records WHERE id = ?`, id).Scan(&current)
	if err == sql.ErrNoRows {
		return engine.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load status: %w", err)
	}
	if engine.Status(current) != engine.StatusPending {
		return &engine.TransitionError{ID: id, From: engine.Status(current), To: status}
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE launch_records SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	return nil
}

// ApplyEdit replaces the record's input and breakdown and marks it
// edited_admin. Approval status is untouched; rejected records cannot
// be edited (the workflow expects a fresh launch instead).
func (s *Store) ApplyEdit(ctx context.Context, id int64, input engine.ShiftInput, bd engine.Breakdown, editedBy string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var current string
	err := s.db.QueryRowContext(ctx,
		`SELECT status FROM launch_records WHERE id = ?`, id).Scan(&current)
	if err == sql.ErrNoRows {
		return engine.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load status: %w", err)
	}
	if engine.Status(current) == engine.StatusRejected {
		return &engine.EditRejectedError{ID: id}
	}

	inputJSON, err := encodeInput(input)
	if err != nil {
		return err
	}
	bdJSON, err := encodeBreakdown(bd)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE launch_records
		SET input_json = ?, breakdown_json = ?,
		    edit_status = ?, edited_by = ?, edited_at = ?,
		    date = ?
		WHERE id = ?`,
		inputJSON, bdJSON,
		string(engine.EditAdmin), editedBy, at.UTC().Format(time.RFC3339Nano),
		input.Date.UTC().Format("2006-01-02"),
		id,
	)
	if err != nil {
		return fmt.Errorf("apply edit: %w", err)
	}
	return nil
}

// List returns raw records matching the filter, ordered by date then
// ID. The result is un-reconciled by design.
func (s *Store) List(ctx context.Context, f engine.LaunchFilter) ([]engine.LaunchRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, ref, worker_id, date, status, edit_status, edited_by, edited_at,
		       input_json, breakdown_json, created_at
		FROM launch_records WHERE 1=1`
	var args []any

	if f.WorkerID != "" {
		query += ` AND worker_id = ?`
		args = append(args, string(f.WorkerID))
	}
	if !f.From.IsZero() {
		query += ` AND date >= ?`
		args = append(args, f.From.UTC().Format("2006-01-02"))
	}
	if !f.To.IsZero() {
		query += ` AND date <= ?`
		args = append(args, f.To.UTC().Format("2006-01-02"))
	}
	query += ` ORDER BY date, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list launch records: %w", err)
	}
	defer rows.Close()

	var out []engine.LaunchRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

// =============================================================================
// SCANNING
// =============================================================================

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(r rowScanner) (*engine.LaunchRecord, error) {
	var (
		rec           engine.LaunchRecord
		workerID      string
		date          string
		status        string
		editStatus    string
		editedAt      sql.NullString
		inputJSON     string
		breakdownJSON string
		createdAt     string
	)
	err := r.Scan(&rec.ID, &rec.Ref, &workerID, &date, &status, &editStatus,
		&rec.EditedBy, &editedAt, &inputJSON, &breakdownJSON, &createdAt)
	if err != nil {
		return nil, err
	}

	rec.WorkerID = engine.WorkerID(workerID)
	rec.Status = engine.Status(status)
	rec.EditStatus = engine.EditStatus(editStatus)

	if rec.Date, err = time.Parse("2006-01-02", date); err != nil {
		return nil, fmt.Errorf("parse date %q: %w", date, err)
	}
	if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	if editedAt.Valid && editedAt.String != "" {
		if rec.EditedAt, err = time.Parse(time.RFC3339Nano, editedAt.String); err != nil {
			return nil, fmt.Errorf("parse edited_at %q: %w", editedAt.String, err)
		}
	}

	if rec.Input, err = decodeInput(inputJSON); err != nil {
		return nil, err
	}
	if rec.Breakdown, err = decodeBreakdown(breakdownJSON); err != nil {
		return nil, err
	}
	return &rec, nil
}
