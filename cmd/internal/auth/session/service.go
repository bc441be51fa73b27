package session

import (
	"context"
	"strings"
	"time"

	"github.com/Mykel-Eze/tcn-invite/cmd/identity/ids"
)

// Service signs members in and out and validates access tokens.
type Service struct {
	cfg    Config
	tokens TokenManager
	store  Store
}

// Issued is the result of a sign-in.
type Issued struct {
	SessionID   string
	AccessToken string
	AccessExp   time.Time
	SessionExp  time.Time
}

// NewService constructs a Service.
func NewService(cfg Config, store Store, tokens TokenManager) *Service {
	return &Service{cfg: cfg, store: store, tokens: tokens}
}

// SignIn creates a session row and returns an access token bound to it.
func (s *Service) SignIn(ctx context.Context, now time.Time, userID string, dev DeviceContext) (Issued, error) {
	sid, err := ids.New(now)
	if err != nil {
		return Issued{}, err
	}

	row := Row{
		ID:        sid,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.SessionTTL),
	}
	if err := s.store.Create(ctx, row, dev); err != nil {
		return Issued{}, err
	}

	tok, exp, err := s.tokens.Issue(userID, sid, now)
	if err != nil {
		return Issued{}, err
	}
	if exp.After(row.ExpiresAt) {
		exp = row.ExpiresAt
	}

	return Issued{SessionID: sid, AccessToken: tok, AccessExp: exp, SessionExp: row.ExpiresAt}, nil
}

// Refresh issues a new access token for a still-active session.
func (s *Service) Refresh(ctx context.Context, now time.Time, claims AccessClaims) (Issued, error) {
	row, err := s.store.GetByID(ctx, claims.SessionID)
	if err != nil {
		return Issued{}, err
	}
	if err := row.Active(now); err != nil {
		return Issued{}, err
	}

	tok, exp, err := s.tokens.Issue(row.UserID, row.ID, now)
	if err != nil {
		return Issued{}, err
	}
	if exp.After(row.ExpiresAt) {
		exp = row.ExpiresAt
	}
	return Issued{SessionID: row.ID, AccessToken: tok, AccessExp: exp, SessionExp: row.ExpiresAt}, nil
}

// Validate verifies token and checks its session row is still active.
func (s *Service) Validate(ctx context.Context, token string, now time.Time) (AccessClaims, error) {
	token = strings.TrimSpace(token)
	if token == "" || len(token) > 4096 {
		return AccessClaims{}, ErrInvalidToken
	}

	claims, err := s.tokens.Verify(token, now)
	if err != nil {
		return AccessClaims{}, err
	}

	row, err := s.store.GetByID(ctx, claims.SessionID)
	if err != nil {
		return AccessClaims{}, err
	}
	if row.UserID != claims.UserID {
		return AccessClaims{}, ErrInvalidToken
	}
	if err := row.Active(now); err != nil {
		return AccessClaims{}, err
	}
	return claims, nil
}

// SignOut revokes one session.
func (s *Service) SignOut(ctx context.Context, now time.Time, sessionID string) error {
	return s.store.Revoke(ctx, now, sessionID, "logout")
}

// SignOutEverywhere revokes every session of a user.
func (s *Service) SignOutEverywhere(ctx context.Context, now time.Time, userID string) error {
	return s.store.RevokeAll(ctx, now, userID, "logout_all")
}

// Touch records activity on a session. Failures are not fatal to callers.
func (s *Service) Touch(ctx context.Context, now time.Time, sessionID string) error {
	return s.store.Touch(ctx, now, sessionID)
}
