package app

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Mykel-Eze/tcn-invite/cmd/identity"
	"github.com/Mykel-Eze/tcn-invite/cmd/internal/auth/session"
	"github.com/Mykel-Eze/tcn-invite/cmd/internal/campus"
	"github.com/Mykel-Eze/tcn-invite/cmd/internal/invitation"
	"github.com/Mykel-Eze/tcn-invite/cmd/security/password"
)

// CampusStore lists and seeds campuses.
type CampusStore interface {
	campus.Directory
	campus.Seeder
}

// Stores groups the persistence backends. Pool is nil in in-memory mode.
type Stores struct {
	Pool *pgxpool.Pool

	Hasher      password.Config
	Users       identity.Store
	Sessions    session.Store
	Campuses    CampusStore
	Invitations invitation.Store
}

// DBEnabled reports whether the stores are Postgres-backed.
func (s *Stores) DBEnabled() bool { return s != nil && s.Pool != nil }

// Close releases the pool. The stores do not own other resources.
func (s *Stores) Close() {
	if s != nil && s.Pool != nil {
		s.Pool.Close()
	}
}

// OpenStores picks Postgres when TCN_DATABASE_URL is set and in-memory
// stores otherwise. In-memory mode seeds the default campuses.
func OpenStores(ctx context.Context, cfg Config, log Logger) (*Stores, error) {
	hasher, err := password.FromEnv()
	if err != nil {
		return nil, err
	}

	if !cfg.DBEnabled() {
		log.Infow("db.disabled.inmemory_store")
		return &Stores{
			Hasher:      hasher,
			Users:       identity.NewMemoryStore(hasher),
			Sessions:    session.NewMemoryStore(),
			Campuses:    campus.NewMemoryDirectory(campus.DefaultCampuses()...),
			Invitations: invitation.NewMemoryStore(),
		}, nil
	}

	pool, err := NewDBPool(ctx, cfg)
	if err != nil {
		return nil, err
	}

	st, err := postgresStores(pool, cfg.DBSchema, hasher)
	if err != nil {
		pool.Close()
		return nil, err
	}
	log.Infow("db.enabled.postgres_store", "schema", cfg.DBSchema)
	return st, nil
}

func postgresStores(pool *pgxpool.Pool, schema string, hasher password.Config) (*Stores, error) {
	users, err := identity.NewPostgresStore(pool, identity.WithSchema(schema), identity.WithHasher(hasher))
	if err != nil {
		return nil, err
	}
	sessions, err := session.NewPostgresStore(pool, schema)
	if err != nil {
		return nil, err
	}
	campuses, err := campus.NewPostgresDirectory(pool, schema)
	if err != nil {
		return nil, err
	}
	invitations, err := invitation.NewPostgresStore(pool, invitation.WithSchema(schema))
	if err != nil {
		return nil, err
	}
	return &Stores{
		Pool:        pool,
		Hasher:      hasher,
		Users:       users,
		Sessions:    sessions,
		Campuses:    campuses,
		Invitations: invitations,
	}, nil
}

// EnsureAdmin creates an admin account for email unless one is registered.
// An existing non-admin account is promoted.
func EnsureAdmin(ctx context.Context, users identity.Store, email, fullName, plain string) (identity.User, bool, error) {
	ua, err := users.GetUserAuthByEmail(ctx, identity.NormalizeEmail(email))
	switch {
	case err == nil && ua.User.Role.IsAdmin():
		return ua.User, false, nil
	case err == nil:
		u, err := users.UpdateRole(ctx, ua.User.ID, identity.RoleAdmin)
		return u, err == nil, err
	case !errors.Is(err, identity.ErrNotFound):
		return identity.User{}, false, err
	}

	u, err := users.CreateUser(ctx, identity.CreateUserInput{
		Email:    email,
		FullName: fullName,
		Password: plain,
		Role:     identity.RoleAdmin,
	})
	if err != nil {
		return identity.User{}, false, err
	}
	return u, true, nil
}
