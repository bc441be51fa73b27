package identity

import (
	"context"
	"errors"

	"github.com/Mykel-Eze/tcn-invite/cmd/security/password"
)

// Hasher hashes and checks passwords. password.Config satisfies it.
type Hasher interface {
	Hash(plain string) (string, error)
	Verify(encodedHash, plain string) (bool, error)
}

var _ Hasher = password.Config{}

// Authenticate resolves email + password to a user.
// Unknown email and wrong password both return ErrInvalidCredentials.
func Authenticate(ctx context.Context, st Store, h Hasher, email, plain string) (User, error) {
	ua, err := st.GetUserAuthByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Spend the same hashing time as a real check.
			_, _ = h.Hash(plain)
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}

	ok, err := h.Verify(ua.PasswordHash, plain)
	if err != nil {
		if errors.Is(err, password.ErrInvalidHash) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if !ok {
		return User{}, ErrInvalidCredentials
	}
	return ua.User, nil
}
