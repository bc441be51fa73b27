package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Mykel-Eze/tcn-invite/cmd/internal/dbschema"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store over the sessions table.
type PostgresStore struct {
	pool   *pgxpool.Pool
	schema string
}

// NewPostgresStore creates a Postgres-backed session store in schema ("" means default).
func NewPostgresStore(pool *pgxpool.Pool, schema string) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("session: nil pool")
	}
	if schema == "" {
		schema = dbschema.DefaultSchema
	}
	if !dbschema.ValidIdent(schema) {
		return nil, fmt.Errorf("session: invalid schema identifier")
	}
	return &PostgresStore{pool: pool, schema: schema}, nil
}

func (s *PostgresStore) table() string { return dbschema.Ident(s.schema, "sessions") }

func (s *PostgresStore) Create(ctx context.Context, row Row, dev DeviceContext) error {
	var ip any
	if dev.IP != nil {
		ip = dev.IP.String()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO `+s.table()+` (
			id, user_id, created_at, last_used_at, expires_at, revoked_at, user_agent, ip
		) VALUES ($1, $2, $3, $3, $4, NULL, $5, $6)
	`, row.ID, row.UserID, row.CreatedAt, row.ExpiresAt, nullIfEmpty(dev.UserAgent), ip)
	return err
}

func (s *PostgresStore) GetByID(ctx context.Context, sessionID string) (Row, error) {
	var row Row
	err := s.pool.QueryRow(ctx, `
		SELECT id, user_id, created_at, last_used_at, expires_at, revoked_at
		FROM `+s.table()+`
		WHERE id = $1
	`, sessionID).Scan(
		&row.ID,
		&row.UserID,
		&row.CreatedAt,
		&row.LastUsedAt,
		&row.ExpiresAt,
		&row.RevokedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Row{}, ErrSessionNotFound
	}
	if err != nil {
		return Row{}, err
	}
	return row, nil
}

func (s *PostgresStore) Touch(ctx context.Context, now time.Time, sessionID string) error {
	_, err := s.pool.Exec(ctx, `UPDATE `+s.table()+` SET last_used_at = $2 WHERE id = $1`, sessionID, now)
	return err
}

func (s *PostgresStore) Revoke(ctx context.Context, now time.Time, sessionID, reason string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE `+s.table()+`
		SET revoked_at = COALESCE(revoked_at, $2),
		    revocation_reason = COALESCE(revocation_reason, $3)
		WHERE id = $1
	`, sessionID, now, reason)
	return err
}

func (s *PostgresStore) RevokeAll(ctx context.Context, now time.Time, userID, reason string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE `+s.table()+`
		SET revoked_at = COALESCE(revoked_at, $2),
		    revocation_reason = COALESCE(revocation_reason, $3)
		WHERE user_id = $1
	`, userID, now, reason)
	return err
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
