package identity

import (
	"fmt"
	"strings"
)

// Role gates what a signed-in user may do.
type Role string

const (
	// RoleInviter is every member's role at signup. Inviters create invitations.
	RoleInviter Role = "inviter"
	// RolePCUHost checks guests in at the door.
	RolePCUHost Role = "pcu_host"
	// RoleAdmin sees everything and manages roles.
	RoleAdmin Role = "admin"
)

// Roles lists every role in display order.
func Roles() []Role { return []Role{RoleInviter, RolePCUHost, RoleAdmin} }

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleInviter, RolePCUHost, RoleAdmin:
		return true
	}
	return false
}

// CanVerify reports whether r may confirm attendance.
func (r Role) CanVerify() bool { return r == RoleAdmin || r == RolePCUHost }

// IsAdmin reports whether r is the admin role.
func (r Role) IsAdmin() bool { return r == RoleAdmin }

// ParseRole accepts a role name case-insensitively.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("%w: unknown role %q", ErrInvalidInput, s)
	}
	return r, nil
}
