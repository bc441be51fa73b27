package admin

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Mykel-Eze/tcn-invite/cmd/identity"
	"github.com/Mykel-Eze/tcn-invite/cmd/internal/campus"
	"github.com/Mykel-Eze/tcn-invite/cmd/internal/invitation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

func inv(id, guest, inviter string, status invitation.Status, age time.Duration) invitation.Invitation {
	return invitation.Invitation{
		ID:        id,
		GuestName: guest,
		InviterID: inviter,
		CampusID:  "tcn-ikeja",
		Status:    status,
		CreatedAt: t0.Add(-age),
	}
}

func fixtures() ([]invitation.Invitation, []identity.User) {
	invs := []invitation.Invitation{
		inv("i1", "Ada Lovelace", "u1", invitation.StatusAttended, time.Hour),
		inv("i2", "Émile Zola", "u1", invitation.StatusSent, 2*time.Hour),
		inv("i3", "alan Turing", "u2", invitation.StatusSent, 3*time.Hour),
	}
	users := []identity.User{
		{ID: "u1", FullName: "Grace Hopper", Email: "grace@tcn.test", Role: identity.RoleInviter, CreatedAt: t0},
		{ID: "u2", FullName: "Barbara Liskov", Email: "barbara@tcn.test", Role: identity.RolePCUHost, CreatedAt: t0.Add(-time.Hour)},
		{ID: "u3", FullName: "anita Borg", Email: "anita@tcn.test", Role: identity.RoleAdmin, CreatedAt: t0.Add(-2 * time.Hour)},
	}
	return invs, users
}

func TestFormatRate(t *testing.T) {
	cases := []struct {
		attended, total int
		want            string
	}{
		{0, 0, "0%"},
		{1, 3, "33.3%"},
		{2, 3, "66.7%"},
		{0, 4, "0.0%"},
		{3, 3, "100.0%"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatRate(tc.attended, tc.total), "%d/%d", tc.attended, tc.total)
	}
	assert.Equal(t, 33.3, ConversionRate(1, 3))
	assert.Equal(t, 0.0, ConversionRate(5, 0))
}

func TestCompute(t *testing.T) {
	invs, users := fixtures()
	s := Compute(invs, users)

	assert.Equal(t, 3, s.TotalInvitations)
	assert.Equal(t, 1, s.AttendedInvitations)
	assert.Equal(t, 3, s.TotalUsers)
	assert.Equal(t, "33.3%", s.ConversionLabel)
	assert.Equal(t, map[string]int{"u1": 2, "u2": 1, "u3": 0}, s.InviteCounts)

	empty := Compute(nil, nil)
	assert.Equal(t, "0%", empty.ConversionLabel)
	assert.Zero(t, empty.ConversionRate)
}

func TestFilterInvitations(t *testing.T) {
	invs, users := fixtures()
	rows := Rows(invs, map[string]string{"tcn-ikeja": "TCN Ikeja"}, users)

	got := FilterInvitations(rows, InvitationFilter{Status: invitation.StatusSent})
	require.Len(t, got, 2)
	assert.Equal(t, "i2", got[0].ID)

	got = FilterInvitations(rows, InvitationFilter{Query: "GRACE"})
	assert.Len(t, got, 2, "inviter name matches")

	got = FilterInvitations(rows, InvitationFilter{Query: "ikeja"})
	assert.Len(t, got, 3, "campus name matches")

	got = FilterInvitations(rows, InvitationFilter{Status: invitation.StatusAttended, Query: "turing"})
	assert.Empty(t, got)
}

func TestFilterUsers(t *testing.T) {
	_, users := fixtures()

	got := FilterUsers(users, UserFilter{Role: identity.RoleAdmin})
	require.Len(t, got, 1)
	assert.Equal(t, "u3", got[0].ID)

	got = FilterUsers(users, UserFilter{Query: "tcn.test"})
	assert.Len(t, got, 3)
}

func TestSortUsers_StableAndNonMutating(t *testing.T) {
	_, users := fixtures()
	before := append([]identity.User(nil), users...)

	byName := SortUsers(users, SortName, nil)
	assert.Equal(t, []string{"u3", "u2", "u1"}, userIDs(byName), "case-insensitive collation")

	counts := map[string]int{"u1": 1, "u2": 1, "u3": 0}
	byInvites := SortUsers(users, SortInvites, counts)
	assert.Equal(t, []string{"u1", "u2", "u3"}, userIDs(byInvites), "ties keep input order")

	shuffled := []identity.User{users[2], users[0], users[1]}
	byCreated := SortUsers(shuffled, SortCreated, nil)
	assert.Equal(t, []string{"u1", "u2", "u3"}, userIDs(byCreated))

	assert.Equal(t, before, users)
}

func TestSortInvitations(t *testing.T) {
	invs, users := fixtures()
	rows := Rows(invs, nil, users)

	byName := SortInvitations(rows, SortName)
	assert.Equal(t, []string{"Ada Lovelace", "alan Turing", "Émile Zola"}, guestNames(byName))

	reversed := []InvitationRow{rows[2], rows[1], rows[0]}
	byCreated := SortInvitations(reversed, SortCreated)
	assert.Equal(t, []string{"i1", "i2", "i3"}, []string{byCreated[0].ID, byCreated[1].ID, byCreated[2].ID})
	assert.Equal(t, "i3", reversed[0].ID)
}

func TestParseSortKey(t *testing.T) {
	k, ok := ParseSortKey("")
	assert.True(t, ok)
	assert.Equal(t, SortCreated, k)

	k, ok = ParseSortKey("Invites")
	assert.True(t, ok)
	assert.Equal(t, SortInvites, k)

	_, ok = ParseSortKey("random")
	assert.False(t, ok)
}

type failingUsers struct{}

func (failingUsers) ListUsers(context.Context) ([]identity.User, error) {
	return nil, errors.New("profiles unavailable")
}

type staticUsers []identity.User

func (s staticUsers) ListUsers(context.Context) ([]identity.User, error) { return s, nil }

func TestLoader(t *testing.T) {
	ctx := context.Background()
	_, users := fixtures()

	store := invitation.NewMemoryStore()
	_, err := store.Create(ctx, invitation.NewRecord{
		QRCodeValue: "tok-1", GuestName: "Ada Lovelace", CampusID: "tcn-ikeja", InviterID: "u1", Design: "modern", Now: t0,
	})
	require.NoError(t, err)

	l := Loader{
		Invitations: store,
		Users:       staticUsers(users),
		Campuses:    campus.NewMemoryDirectory(campus.DefaultCampuses()...),
	}
	snap, err := l.Load(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Invitations, 1)
	assert.Equal(t, "TCN Ikeja", snap.Invitations[0].CampusName)
	assert.Equal(t, "Grace Hopper", snap.Invitations[0].InviterName)
	assert.Equal(t, 1, snap.Stats.InviteCounts["u1"])

	l.Users = failingUsers{}
	_, err = l.Load(ctx)
	assert.EqualError(t, err, "profiles unavailable")
}

func userIDs(us []identity.User) []string {
	out := make([]string, 0, len(us))
	for _, u := range us {
		out = append(out, u.ID)
	}
	return out
}

func guestNames(rows []InvitationRow) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.GuestName)
	}
	return out
}
