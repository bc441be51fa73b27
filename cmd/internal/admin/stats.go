package admin

import (
	"math"
	"strconv"

	"github.com/Mykel-Eze/tcn-invite/cmd/identity"
	"github.com/Mykel-Eze/tcn-invite/cmd/internal/invitation"
)

// Stats are the dashboard headline figures.
type Stats struct {
	TotalInvitations    int            `json:"total_invitations"`
	AttendedInvitations int            `json:"attended_invitations"`
	TotalUsers          int            `json:"total_users"`
	ConversionRate      float64        `json:"conversion_rate"`
	ConversionLabel     string         `json:"conversion_label"`
	InviteCounts        map[string]int `json:"invite_counts"`
}

// Compute derives Stats from full snapshots.
func Compute(invs []invitation.Invitation, users []identity.User) Stats {
	s := Stats{
		TotalInvitations: len(invs),
		TotalUsers:       len(users),
		InviteCounts:     InviteCounts(invs, users),
	}
	for _, inv := range invs {
		if inv.Attended() {
			s.AttendedInvitations++
		}
	}
	s.ConversionRate = ConversionRate(s.AttendedInvitations, s.TotalInvitations)
	s.ConversionLabel = FormatRate(s.AttendedInvitations, s.TotalInvitations)
	return s
}

// InviteCounts maps every user id to the number of invitations they sent.
// Users with none map to 0.
func InviteCounts(invs []invitation.Invitation, users []identity.User) map[string]int {
	out := make(map[string]int, len(users))
	for _, u := range users {
		out[u.ID] = 0
	}
	for _, inv := range invs {
		if _, ok := out[inv.InviterID]; ok {
			out[inv.InviterID]++
		}
	}
	return out
}

// ConversionRate is attended/total as a percentage rounded to one decimal.
// It is 0 when total is 0.
func ConversionRate(attended, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(attended)/float64(total)*1000) / 10
}

// FormatRate renders the conversion rate: "0%" with no invitations,
// otherwise one decimal such as "33.3%".
func FormatRate(attended, total int) string {
	if total <= 0 {
		return "0%"
	}
	return strconv.FormatFloat(ConversionRate(attended, total), 'f', 1, 64) + "%"
}
