package invitation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Mykel-Eze/tcn-invite/cmd/internal/dbschema"
	"github.com/Mykel-Eze/tcn-invite/cmd/internal/flyer"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists invitations in PostgreSQL.
type PostgresStore struct {
	pool   *pgxpool.Pool
	schema string
}

// StoreOption configures PostgresStore.
type StoreOption func(*PostgresStore) error

// WithSchema sets the DB schema used by the store (default "tcn").
func WithSchema(schema string) StoreOption {
	return func(s *PostgresStore) error {
		schema = strings.TrimSpace(schema)
		if !dbschema.ValidIdent(schema) {
			return fmt.Errorf("invitation: invalid schema identifier")
		}
		s.schema = schema
		return nil
	}
}

// NewPostgresStore constructs a PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool, opts ...StoreOption) (*PostgresStore, error) {
	st := &PostgresStore{pool: pool, schema: dbschema.DefaultSchema}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(st); err != nil {
			return nil, err
		}
	}
	if st.pool == nil {
		return nil, ErrInvalidInput
	}
	return st, nil
}

const invitationCols = `id, qr_code_value, guest_name, guest_phone, guest_email, campus_id, service_time,
	inviter_id, flyer_design_id, status, delivery_method, created_at, attended_at`

func (s *PostgresStore) table() string { return dbschema.Ident(s.schema, "invitations") }

func (s *PostgresStore) Create(ctx context.Context, in NewRecord) (Invitation, error) {
	inv, err := build(in)
	if err != nil {
		return Invitation{}, err
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO `+s.table()+` (`+invitationCols+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NULL)`,
		inv.ID,
		inv.QRCodeValue,
		inv.GuestName,
		nullIfEmpty(inv.GuestPhone),
		nullIfEmpty(inv.GuestEmail),
		inv.CampusID,
		inv.ServiceTime,
		inv.InviterID,
		string(inv.Design),
		string(inv.Status),
		inv.DeliveryMethod,
		inv.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505": // unique_violation
				return Invitation{}, ErrDuplicateToken
			case "23503": // foreign_key_violation
				return Invitation{}, ErrMissingReference
			}
		}
		return Invitation{}, err
	}
	return inv, nil
}

func (s *PostgresStore) GetByToken(ctx context.Context, token string) (Invitation, error) {
	inv, err := scanInvitation(s.pool.QueryRow(ctx,
		`SELECT `+invitationCols+` FROM `+s.table()+` WHERE qr_code_value = $1`, token))
	if errors.Is(err, pgx.ErrNoRows) {
		return Invitation{}, ErrNotFound
	}
	if err != nil {
		return Invitation{}, err
	}
	return inv, nil
}

// MarkAttended updates only rows that are not attended yet, so racing scans
// cannot move attended_at once set.
func (s *PostgresStore) MarkAttended(ctx context.Context, token string, now time.Time) (Invitation, error) {
	if now.IsZero() {
		now = time.Now()
	}

	inv, err := scanInvitation(s.pool.QueryRow(ctx,
		`UPDATE `+s.table()+`
		    SET status = 'attended',
		        attended_at = $2
		  WHERE qr_code_value = $1
		    AND status <> 'attended'
		RETURNING `+invitationCols,
		token, now.UTC().Truncate(time.Microsecond),
	))
	if err == nil {
		return inv, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Invitation{}, err
	}

	// Distinguish not-found vs already attended.
	cur, selErr := s.GetByToken(ctx, token)
	if selErr != nil {
		return Invitation{}, selErr
	}
	return cur, ErrAlreadyAttended
}

func (s *PostgresStore) List(ctx context.Context) ([]Invitation, error) {
	return s.query(ctx, `SELECT `+invitationCols+` FROM `+s.table()+` ORDER BY created_at DESC, id DESC`)
}

func (s *PostgresStore) ListByInviter(ctx context.Context, inviterID string) ([]Invitation, error) {
	return s.query(ctx,
		`SELECT `+invitationCols+` FROM `+s.table()+` WHERE inviter_id = $1 ORDER BY created_at DESC, id DESC`,
		inviterID)
}

func (s *PostgresStore) query(ctx context.Context, sql string, args ...any) ([]Invitation, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func scanInvitation(row pgx.Row) (Invitation, error) {
	var (
		inv           Invitation
		phone, email  *string
		design, state string
	)
	err := row.Scan(
		&inv.ID,
		&inv.QRCodeValue,
		&inv.GuestName,
		&phone,
		&email,
		&inv.CampusID,
		&inv.ServiceTime,
		&inv.InviterID,
		&design,
		&state,
		&inv.DeliveryMethod,
		&inv.CreatedAt,
		&inv.AttendedAt,
	)
	if err != nil {
		return Invitation{}, err
	}
	if phone != nil {
		inv.GuestPhone = *phone
	}
	if email != nil {
		inv.GuestEmail = *email
	}
	inv.Design = flyer.Design(design)
	inv.Status = Status(state)
	inv.CreatedAt = inv.CreatedAt.UTC()
	if inv.AttendedAt != nil {
		at := inv.AttendedAt.UTC()
		inv.AttendedAt = &at
	}
	return inv, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
