package admin

import (
	"cmp"
	"slices"
	"strings"

	"github.com/Mykel-Eze/tcn-invite/cmd/identity"
	"github.com/Mykel-Eze/tcn-invite/cmd/internal/invitation"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// InvitationRow is an invitation joined with display names.
type InvitationRow struct {
	invitation.Invitation
	CampusName   string `json:"campus_name"`
	InviterName  string `json:"inviter_name"`
	InviterEmail string `json:"inviter_email"`
}

// SortKey orders a listing.
type SortKey string

const (
	SortName    SortKey = "name"
	SortCreated SortKey = "created"
	SortInvites SortKey = "invites"
)

// ParseSortKey maps "" to SortCreated. Unknown keys report false.
func ParseSortKey(s string) (SortKey, bool) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return SortCreated, true
	case SortName, SortCreated, SortInvites:
		return k, true
	}
	return "", false
}

// InvitationFilter narrows an invitation listing. Zero values match all.
type InvitationFilter struct {
	Status invitation.Status
	Query  string
}

// UserFilter narrows a member listing. Zero values match all.
type UserFilter struct {
	Role  identity.Role
	Query string
}

// FilterInvitations returns the rows matching f in their original order.
// Query matches guest name, email, phone, campus and inviter case-insensitively.
func FilterInvitations(rows []InvitationRow, f InvitationFilter) []InvitationRow {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]InvitationRow, 0, len(rows))
	for _, r := range rows {
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		if q != "" && !containsAny(q, r.GuestName, r.GuestEmail, r.GuestPhone, r.CampusName, r.InviterName, r.InviterEmail) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// FilterUsers returns the members matching f in their original order.
func FilterUsers(users []identity.User, f UserFilter) []identity.User {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]identity.User, 0, len(users))
	for _, u := range users {
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		if q != "" && !containsAny(q, u.FullName, u.Email) {
			continue
		}
		out = append(out, u)
	}
	return out
}

func containsAny(q string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

func newCollator() *collate.Collator {
	return collate.New(language.English, collate.IgnoreCase, collate.IgnoreDiacritics)
}

// SortUsers returns a sorted copy of users. Name sorts A to Z, created and
// invites sort largest first. Equal keys keep their input order.
func SortUsers(users []identity.User, key SortKey, counts map[string]int) []identity.User {
	out := slices.Clone(users)
	switch key {
	case SortName:
		c := newCollator()
		slices.SortStableFunc(out, func(a, b identity.User) int {
			return c.CompareString(a.FullName, b.FullName)
		})
	case SortInvites:
		slices.SortStableFunc(out, func(a, b identity.User) int {
			return cmp.Compare(counts[b.ID], counts[a.ID])
		})
	default:
		slices.SortStableFunc(out, func(a, b identity.User) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		})
	}
	return out
}

// SortInvitations returns a sorted copy of rows. Name sorts guests A to Z;
// anything else sorts newest first. Equal keys keep their input order.
func SortInvitations(rows []InvitationRow, key SortKey) []InvitationRow {
	out := slices.Clone(rows)
	switch key {
	case SortName:
		c := newCollator()
		slices.SortStableFunc(out, func(a, b InvitationRow) int {
			return c.CompareString(a.GuestName, b.GuestName)
		})
	default:
		slices.SortStableFunc(out, func(a, b InvitationRow) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		})
	}
	return out
}

// Rows joins invitations with campus and inviter names.
func Rows(invs []invitation.Invitation, campusNames map[string]string, users []identity.User) []InvitationRow {
	byID := make(map[string]identity.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	out := make([]InvitationRow, 0, len(invs))
	for _, inv := range invs {
		u := byID[inv.InviterID]
		out = append(out, InvitationRow{
			Invitation:   inv,
			CampusName:   campusNames[inv.CampusID],
			InviterName:  u.FullName,
			InviterEmail: u.Email,
		})
	}
	return out
}
