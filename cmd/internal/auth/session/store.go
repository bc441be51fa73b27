package session

import (
	"context"
	"net"
	"time"
)

// DeviceContext describes the client that signed in.
type DeviceContext struct {
	UserAgent string
	IP        net.IP
}

// Row mirrors a sessions row.
type Row struct {
	ID         string
	UserID     string
	CreatedAt  time.Time
	LastUsedAt *time.Time
	ExpiresAt  time.Time
	RevokedAt  *time.Time
}

// Active reports whether the row is usable at now.
func (r Row) Active(now time.Time) error {
	if r.RevokedAt != nil {
		return ErrSessionRevoked
	}
	if !r.ExpiresAt.After(now) {
		return ErrSessionExpired
	}
	return nil
}

// Store persists session rows.
type Store interface {
	Create(ctx context.Context, row Row, dev DeviceContext) error
	GetByID(ctx context.Context, sessionID string) (Row, error)
	Touch(ctx context.Context, now time.Time, sessionID string) error

	// Revoke and RevokeAll are idempotent and keep the first revocation time.
	Revoke(ctx context.Context, now time.Time, sessionID, reason string) error
	RevokeAll(ctx context.Context, now time.Time, userID, reason string) error
}
