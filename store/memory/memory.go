// Package memory provides an in-memory engine.LaunchStore for tests
// and development.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/warp/comp-engine/engine"
)

// Store keeps launch records in memory. IDs are assigned strictly
// increasing, matching the SQLite store's contract.
type Store struct {
	mu      sync.RWMutex
	nextID  int64
	records map[int64]engine.LaunchRecord
}

var _ engine.LaunchStore = (*Store)(nil)

func New() *Store {
	return &Store{
		nextID:  1,
		records: make(map[int64]engine.LaunchRecord),
	}
}

func (m *Store) Create(_ context.Context, rec *engine.LaunchRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rec.Status == "" {
		rec.Status = engine.StatusPending
	}
	if rec.EditStatus == "" {
		rec.EditStatus = engine.EditOriginal
	}
	rec.ID = m.nextID
	m.nextID++
	rec.Ref = uuid.NewString()
	rec.CreatedAt = time.Now().UTC()

	m.records[rec.ID] = *rec
	return nil
}

func (m *Store) Get(_ context.Context, id int64) (*engine.LaunchRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[id]
	if !ok {
		return nil, engine.ErrNotFound
	}
	return &rec, nil
}

func (m *Store) SetStatus(_ context.Context, id int64, status engine.Status) error {
	if status != engine.StatusApproved && status != engine.StatusRejected {
		return &engine.InvalidInputError{Field: "status", Reason: "must be approved or rejected"}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[id]
	if !ok {
		return engine.ErrNotFound
	}
	if rec.Status != engine.StatusPending {
		return &engine.TransitionError{ID: id, From: rec.Status, To: status}
	}
	rec.Status = status
	m.records[id] = rec
	return nil
}

func (m *Store) ApplyEdit(_ context.Context, id int64, input engine.ShiftInput, bd engine.Breakdown, editedBy string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[id]
	if !ok {
		return engine.ErrNotFound
	}
	if rec.Status == engine.StatusRejected {
		return &engine.EditRejectedError{ID: id}
	}

	rec.Input = input
	rec.Breakdown = bd
	rec.Date = input.Date
	rec.EditStatus = engine.EditAdmin
	rec.EditedBy = editedBy
	rec.EditedAt = at.UTC()
	m.records[id] = rec
	return nil
}

func (m *Store) List(_ context.Context, f engine.LaunchFilter) ([]engine.LaunchRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []engine.LaunchRecord
	for _, rec := range m.records {
		if f.WorkerID != "" && rec.WorkerID != f.WorkerID {
			continue
		}
		if !f.From.IsZero() && rec.Date.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && rec.Date.After(f.To) {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
