package identity

import (
	"context"
	"sort"
	"sync"

	"github.com/Mykel-Eze/tcn-invite/cmd/security/password"
)

// MemoryStore is an in-process Store used when no database is configured.
type MemoryStore struct {
	hasher Hasher

	mu      sync.RWMutex
	byID    map[string]UserAuth
	byEmail map[string]string
}

// NewMemoryStore returns an empty MemoryStore. A nil hasher uses password.DefaultConfig.
func NewMemoryStore(h Hasher) *MemoryStore {
	if h == nil {
		h = password.DefaultConfig()
	}
	return &MemoryStore{
		hasher:  h,
		byID:    make(map[string]UserAuth),
		byEmail: make(map[string]string),
	}
}

func (s *MemoryStore) CreateUser(ctx context.Context, in CreateUserInput) (User, error) {
	const op = "identity.CreateUser"
	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	p, err := prepareCreate(op, in, s.hasher)
	if err != nil {
		return User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byEmail[p.emailNorm]; taken {
		return User{}, ConflictError{Op: op, Field: "email"}
	}
	s.byID[p.user.ID] = UserAuth{User: p.user, PasswordHash: p.hash}
	s.byEmail[p.emailNorm] = p.user.ID
	return p.user, nil
}

func (s *MemoryStore) GetUserByID(_ context.Context, id string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ua, ok := s.byID[id]
	if !ok {
		return User{}, NotFoundError{Op: "identity.GetUserByID", Resource: "user"}
	}
	return ua.User, nil
}

func (s *MemoryStore) GetUserAuthByEmail(_ context.Context, email string) (UserAuth, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[NormalizeEmail(email)]
	if !ok {
		return UserAuth{}, NotFoundError{Op: "identity.GetUserAuthByEmail", Resource: "user"}
	}
	return s.byID[id], nil
}

func (s *MemoryStore) ListUsers(_ context.Context) ([]User, error) {
	s.mu.RLock()
	out := make([]User, 0, len(s.byID))
	for _, ua := range s.byID {
		out = append(out, ua.User)
	}
	s.mu.RUnlock()

	// ULIDs sort by creation time.
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *MemoryStore) UpdateRole(_ context.Context, id string, role Role) (User, error) {
	const op = "identity.UpdateRole"
	if !role.Valid() {
		return User{}, invalid(op, "unknown role")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ua, ok := s.byID[id]
	if !ok {
		return User{}, NotFoundError{Op: op, Resource: "user"}
	}
	ua.User.Role = role
	s.byID[id] = ua
	return ua.User, nil
}
