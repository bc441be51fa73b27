package invitation

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps invitations in process. MarkAttended is atomic under its lock.
type MemoryStore struct {
	mu      sync.RWMutex
	byToken map[string]*Invitation
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byToken: make(map[string]*Invitation)}
}

func (s *MemoryStore) Create(ctx context.Context, in NewRecord) (Invitation, error) {
	if err := ctx.Err(); err != nil {
		return Invitation{}, err
	}
	inv, err := build(in)
	if err != nil {
		return Invitation{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.byToken[inv.QRCodeValue]; dup {
		return Invitation{}, ErrDuplicateToken
	}
	row := inv
	s.byToken[inv.QRCodeValue] = &row
	return inv, nil
}

func (s *MemoryStore) GetByToken(ctx context.Context, token string) (Invitation, error) {
	if err := ctx.Err(); err != nil {
		return Invitation{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.byToken[token]
	if !ok {
		return Invitation{}, ErrNotFound
	}
	return clone(*row), nil
}

func (s *MemoryStore) MarkAttended(ctx context.Context, token string, now time.Time) (Invitation, error) {
	if err := ctx.Err(); err != nil {
		return Invitation{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.byToken[token]
	if !ok {
		return Invitation{}, ErrNotFound
	}
	if row.Status == StatusAttended {
		return clone(*row), ErrAlreadyAttended
	}

	at := now.UTC().Truncate(time.Microsecond)
	row.Status = StatusAttended
	row.AttendedAt = &at
	return clone(*row), nil
}

func (s *MemoryStore) List(ctx context.Context) ([]Invitation, error) {
	return s.collect(ctx, func(Invitation) bool { return true })
}

func (s *MemoryStore) ListByInviter(ctx context.Context, inviterID string) ([]Invitation, error) {
	return s.collect(ctx, func(inv Invitation) bool { return inv.InviterID == inviterID })
}

func (s *MemoryStore) collect(ctx context.Context, keep func(Invitation) bool) ([]Invitation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := make([]Invitation, 0, len(s.byToken))
	for _, row := range s.byToken {
		if keep(*row) {
			out = append(out, clone(*row))
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func clone(inv Invitation) Invitation {
	if inv.AttendedAt != nil {
		at := *inv.AttendedAt
		inv.AttendedAt = &at
	}
	return inv
}
