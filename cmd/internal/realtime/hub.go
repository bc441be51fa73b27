package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/Mykel-Eze/tcn-invite/cmd/internal/invitation"

	"go.uber.org/zap"
)

// Hub fans check-in events out to connected clients. Slow clients miss
// events instead of stalling the verifier.
type Hub struct {
	log *zap.SugaredLogger
	now func() time.Time

	mu      sync.RWMutex
	clients map[string]*Client
	dropped uint64
}

var _ invitation.Listener = (*Hub)(nil)

// NewHub constructs an empty Hub.
func NewHub(log *zap.SugaredLogger) *Hub {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Hub{
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
		clients: make(map[string]*Client),
	}
}

// Join registers c under its connection id.
func (h *Hub) Join(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.ID] = c
}

// Leave removes the client registered under id.
func (h *Hub) Leave(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, id)
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Dropped returns how many deliveries were skipped under backpressure.
func (h *Hub) Dropped() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.dropped
}

// Publish offers env to every client and returns how many accepted it.
func (h *Hub) Publish(env Envelope) int {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	delivered := 0
	var missed uint64
	for _, c := range targets {
		if c.offer(env) {
			delivered++
		} else {
			missed++
		}
	}

	if missed > 0 {
		h.mu.Lock()
		h.dropped += missed
		h.mu.Unlock()
		h.log.Warnw("ws.publish.dropped", "type", env.Type, "missed", missed)
	}
	return delivered
}

// CheckedIn publishes a checkin.confirmed envelope.
func (h *Hub) CheckedIn(_ context.Context, c invitation.CheckIn) {
	inv := c.Result.Invitation
	p := CheckInPayload{
		InvitationID: inv.ID,
		GuestName:    inv.GuestName,
		CampusID:     inv.CampusID,
		CampusName:   c.Result.CampusName,
		ServiceTime:  inv.ServiceTime,
		InviterID:    inv.InviterID,
		InviterName:  c.Result.InviterName,
		VerifiedBy:   c.VerifiedBy,
	}
	if inv.AttendedAt != nil {
		p.AttendedAt = *inv.AttendedAt
	}

	env, err := newEnvelope(TypeCheckInConfirmed, p, h.now())
	if err != nil {
		h.log.Errorw("ws.publish.encode.fail", "invitation_id", inv.ID, "err", err)
		return
	}
	h.Publish(env)
}
