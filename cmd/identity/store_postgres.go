package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Mykel-Eze/tcn-invite/cmd/internal/dbschema"
	"github.com/Mykel-Eze/tcn-invite/cmd/security/password"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store over PostgreSQL.
// The pool is owned by the caller; the store never closes it.
type PostgresStore struct {
	pool   *pgxpool.Pool
	schema string
	hasher Hasher
}

// PostgresOption configures the store.
type PostgresOption func(*PostgresStore) error

// WithSchema sets the Postgres schema (default "tcn").
func WithSchema(schema string) PostgresOption {
	return func(s *PostgresStore) error {
		schema = strings.TrimSpace(schema)
		if !dbschema.ValidIdent(schema) {
			return fmt.Errorf("identity: invalid schema identifier")
		}
		s.schema = schema
		return nil
	}
}

// WithHasher sets the password hasher used by CreateUser.
func WithHasher(h Hasher) PostgresOption {
	return func(s *PostgresStore) error {
		if h == nil {
			return fmt.Errorf("identity: nil hasher")
		}
		s.hasher = h
		return nil
	}
}

// NewPostgresStore constructs a PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool, opts ...PostgresOption) (*PostgresStore, error) {
	st := &PostgresStore{
		pool:   pool,
		schema: dbschema.DefaultSchema,
		hasher: password.DefaultConfig(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(st); err != nil {
			return nil, err
		}
	}
	if st.pool == nil {
		return nil, fmt.Errorf("identity: nil pool")
	}
	return st, nil
}

func (s *PostgresStore) users() string { return dbschema.Ident(s.schema, "users") }
func (s *PostgresStore) creds() string { return dbschema.Ident(s.schema, "user_credentials") }

// CreateUser inserts the profile and its credentials in one transaction.
func (s *PostgresStore) CreateUser(ctx context.Context, in CreateUserInput) (User, error) {
	const op = "identity.CreateUser"

	p, err := prepareCreate(op, in, s.hasher)
	if err != nil {
		return User{}, err
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.ReadCommitted,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return User{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	u := p.user
	_, err = tx.Exec(ctx,
		`INSERT INTO `+s.users()+` (id, email, email_norm, full_name, role, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		u.ID, u.Email, p.emailNorm, u.FullName, string(u.Role), u.CreatedAt,
	)
	if err != nil {
		if field, ok := pgClassifyUniqueViolation(err); ok {
			return User{}, ConflictError{Op: op, Field: field}
		}
		return User{}, err
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO `+s.creds()+` (user_id, password_hash, created_at, updated_at)
		 VALUES ($1, $2, $3, $3)`,
		u.ID, p.hash, u.CreatedAt,
	)
	if err != nil {
		return User{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return User{}, err
	}
	return u, nil
}

const userCols = `u.id, u.email, u.full_name, u.role, u.created_at`

func scanUser(row pgx.Row, extra ...any) (User, error) {
	var (
		u    User
		role string
	)
	dest := append([]any{&u.ID, &u.Email, &u.FullName, &role, &u.CreatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return User{}, err
	}
	u.Role = Role(role)
	return u, nil
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id string) (User, error) {
	const op = "identity.GetUserByID"

	u, err := scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userCols+` FROM `+s.users()+` u WHERE u.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, NotFoundError{Op: op, Resource: "user"}
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}

func (s *PostgresStore) GetUserAuthByEmail(ctx context.Context, email string) (UserAuth, error) {
	const op = "identity.GetUserAuthByEmail"

	var hash string
	u, err := scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userCols+`, c.password_hash
		   FROM `+s.users()+` u
		   JOIN `+s.creds()+` c ON c.user_id = u.id
		  WHERE u.email_norm = $1`,
		NormalizeEmail(email),
	), &hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return UserAuth{}, NotFoundError{Op: op, Resource: "user"}
	}
	if err != nil {
		return UserAuth{}, err
	}
	return UserAuth{User: u, PasswordHash: hash}, nil
}

func (s *PostgresStore) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+userCols+` FROM `+s.users()+` u ORDER BY u.created_at DESC, u.id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpdateRole(ctx context.Context, id string, role Role) (User, error) {
	const op = "identity.UpdateRole"
	if !role.Valid() {
		return User{}, invalid(op, "unknown role")
	}

	u, err := scanUser(s.pool.QueryRow(ctx,
		`UPDATE `+s.users()+` u SET role = $2 WHERE u.id = $1 RETURNING `+userCols,
		id, string(role)))
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, NotFoundError{Op: op, Resource: "user"}
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}

func pgClassifyUniqueViolation(err error) (field string, ok bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return "", false
	}
	if strings.Contains(strings.ToLower(pgErr.ConstraintName), "email") {
		return "email", true
	}
	return "unique", true
}
