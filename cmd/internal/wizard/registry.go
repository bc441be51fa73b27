package wizard

import (
	"sync"
	"time"

	"github.com/Mykel-Eze/tcn-invite/cmd/identity/ids"
	"github.com/Mykel-Eze/tcn-invite/cmd/internal/auth"
	"github.com/Mykel-Eze/tcn-invite/cmd/internal/invitation"
)

// DefaultIdleTTL is how long an untouched wizard survives.
const DefaultIdleTTL = 30 * time.Minute

// Registry holds in-progress wizards keyed by id. A wizard is only visible
// to the member who started it.
type Registry struct {
	deps Deps
	ttl  time.Duration

	mu      sync.Mutex
	wizards map[string]*Wizard
}

// NewRegistry validates deps and returns an empty registry.
func NewRegistry(deps Deps, idleTTL time.Duration) (*Registry, error) {
	deps, err := deps.withDefaults()
	if err != nil {
		return nil, err
	}
	if idleTTL <= 0 {
		idleTTL = DefaultIdleTTL
	}
	return &Registry{deps: deps, ttl: idleTTL, wizards: make(map[string]*Wizard)}, nil
}

// Start creates a wizard owned by p.
func (r *Registry) Start(p *auth.Principal) (*Wizard, error) {
	if p == nil || p.UserID == "" {
		return nil, invitation.E("wizard.Start", invitation.KindAccessDenied, nil)
	}

	now := r.deps.Now()
	id, err := ids.New(now)
	if err != nil {
		return nil, err
	}
	w, err := New(id, p.UserID, r.deps)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweepLocked(now)
	r.wizards[id] = w
	return w, nil
}

// Get returns p's wizard with id. Someone else's wizard reads as missing.
func (r *Registry) Get(p *auth.Principal, id string) (*Wizard, error) {
	const op = "wizard.Get"
	if p == nil {
		return nil, invitation.E(op, invitation.KindAccessDenied, nil)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweepLocked(r.deps.Now())

	w, ok := r.wizards[id]
	if !ok || w.ownerID != p.UserID {
		return nil, invitation.E(op, invitation.KindNotFound, ErrNotFound)
	}
	return w, nil
}

// Discard drops p's wizard with id.
func (r *Registry) Discard(p *auth.Principal, id string) error {
	if _, err := r.Get(p, id); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.wizards, id)
	return nil
}

// Sweep drops idle wizards and returns how many were removed.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sweepLocked(r.deps.Now())
}

func (r *Registry) sweepLocked(now time.Time) int {
	n := 0
	for id, w := range r.wizards {
		if now.Sub(w.LastActive()) > r.ttl {
			delete(r.wizards, id)
			n++
		}
	}
	return n
}

// Len returns the number of live wizards.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.wizards)
}
