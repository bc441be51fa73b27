package identity

import (
	"context"
	"time"
)

// User is a member profile.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// UserAuth pairs a user with their stored password hash. It never leaves the auth layer.
type UserAuth struct {
	User         User
	PasswordHash string
}

// CreateUserInput describes a signup. Role defaults to RoleInviter.
type CreateUserInput struct {
	Email    string
	FullName string
	Password string
	Role     Role
	Now      time.Time
}

// Store is the profile persistence boundary.
type Store interface {
	CreateUser(ctx context.Context, in CreateUserInput) (User, error)
	GetUserByID(ctx context.Context, id string) (User, error)
	GetUserAuthByEmail(ctx context.Context, email string) (UserAuth, error)

	// ListUsers returns every profile, newest first.
	ListUsers(ctx context.Context) ([]User, error)

	// UpdateRole sets a user's role and returns the updated profile.
	UpdateRole(ctx context.Context, id string, role Role) (User, error)
}

// prepared is the validated, normalized, hashed form of CreateUserInput shared by stores.
type prepared struct {
	user      User
	emailNorm string
	hash      string
}

func prepareCreate(op string, in CreateUserInput, h Hasher) (prepared, error) {
	email := NormalizeEmail(in.Email)
	if email == "" {
		return prepared{}, invalid(op, "email is required")
	}
	name := NormalizeName(in.FullName)
	if name == "" {
		return prepared{}, invalid(op, "full name is required")
	}

	role := in.Role
	if role == "" {
		role = RoleInviter
	}
	if !role.Valid() {
		return prepared{}, invalid(op, "unknown role")
	}

	hash, err := h.Hash(in.Password)
	if err != nil {
		return prepared{}, invalid(op, err.Error())
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	id, err := NewULID(now)
	if err != nil {
		return prepared{}, err
	}

	return prepared{
		user: User{
			ID:        id,
			Email:     email,
			FullName:  name,
			Role:      role,
			CreatedAt: now,
		},
		emailNorm: email,
		hash:      hash,
	}, nil
}
