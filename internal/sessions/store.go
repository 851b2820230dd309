// Package sessions persists portal session records and signs the browser cookie
// that refers to them.
package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/wolfman30/clinic-portal/internal/access"
	"github.com/wolfman30/clinic-portal/internal/booking"
)

// ErrNotFound is returned when a record is unknown or expired.
var ErrNotFound = errors.New("sessions: not found")

// Record is the server-side half of a login.
type Record struct {
	ID           string         `json:"id"`
	Session      access.Session `json:"session"`
	BackendToken string         `json:"backend_token"`
	Wizard       *booking.State `json:"wizard,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	ExpiresAt    time.Time      `json:"expires_at"`
}

// Expired reports whether the record is past its expiry at now.
func (r *Record) Expired(now time.Time) bool {
	return !r.ExpiresAt.After(now)
}

// Store persists session records.
type Store interface {
	Get(ctx context.Context, id string) (*Record, error)
	Save(ctx context.Context, rec *Record) error
	Delete(ctx context.Context, id string) error
}

func encodeRecord(rec *Record) ([]byte, error) {
	if rec == nil || rec.ID == "" {
		return nil, errors.New("sessions: record id required")
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("sessions: marshal record: %w", err)
	}
	return data, nil
}

func decodeRecord(data []byte) (*Record, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("sessions: decode record: %w", err)
	}
	return &rec, nil
}

// MemoryStore keeps records in process. Records are stored encoded so callers
// never share state with the store.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string][]byte
	expires map[string]time.Time
	now     func() time.Time
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string][]byte),
		expires: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Record, error) {
	s.mu.RLock()
	data, ok := s.records[id]
	expiresAt := s.expires[id]
	s.mu.RUnlock()
	if !ok || !expiresAt.After(s.now()) {
		return nil, ErrNotFound
	}
	return decodeRecord(data)
}

func (s *MemoryStore) Save(_ context.Context, rec *Record) error {
	data, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ID] = data
	s.expires[rec.ID] = rec.ExpiresAt
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, id)
	delete(s.expires, id)
	return nil
}

// Sweep drops expired records and returns how many were removed.
func (s *MemoryStore) Sweep(_ context.Context) (int64, error) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed int64
	for id, expiresAt := range s.expires {
		if !expiresAt.After(now) {
			delete(s.records, id)
			delete(s.expires, id)
			removed++
		}
	}
	return removed, nil
}
