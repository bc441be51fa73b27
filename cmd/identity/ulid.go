package identity

import (
	"time"

	"github.com/Mykel-Eze/tcn-invite/cmd/identity/ids"
)

// NewULID returns a new user id.
func NewULID(now time.Time) (string, error) { return ids.New(now) }
