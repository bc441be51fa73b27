package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sessions in process for dev mode and tests.
type MemoryStore struct {
	mu   sync.Mutex
	rows map[string]Row
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[string]Row)}
}

func (s *MemoryStore) Create(_ context.Context, row Row, _ DeviceContext) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[row.ID] = row
	return nil
}

func (s *MemoryStore) GetByID(_ context.Context, sessionID string) (Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.rows[sessionID]
	if !ok {
		return Row{}, ErrSessionNotFound
	}
	return row, nil
}

func (s *MemoryStore) Touch(_ context.Context, now time.Time, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if row, ok := s.rows[sessionID]; ok {
		row.LastUsedAt = &now
		s.rows[sessionID] = row
	}
	return nil
}

func (s *MemoryStore) Revoke(_ context.Context, now time.Time, sessionID, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if row, ok := s.rows[sessionID]; ok && row.RevokedAt == nil {
		row.RevokedAt = &now
		s.rows[sessionID] = row
	}
	return nil
}

func (s *MemoryStore) RevokeAll(_ context.Context, now time.Time, userID, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, row := range s.rows {
		if row.UserID == userID && row.RevokedAt == nil {
			row.RevokedAt = &now
			s.rows[id] = row
		}
	}
	return nil
}
