package adminapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mykel-Eze/tcn-invite/cmd/identity"
	"github.com/Mykel-Eze/tcn-invite/cmd/internal/admin"
	"github.com/Mykel-Eze/tcn-invite/cmd/internal/auth"
	"github.com/Mykel-Eze/tcn-invite/cmd/internal/campus"
	"github.com/Mykel-Eze/tcn-invite/cmd/internal/flyer"
	"github.com/Mykel-Eze/tcn-invite/cmd/internal/invitation"
	"github.com/Mykel-Eze/tcn-invite/cmd/security/password"
)

type fixture struct {
	srv            *httptest.Server
	users          *identity.MemoryStore
	admin, inviter identity.User
	host           identity.User
}

func fastHasher() password.Config {
	cfg := password.DefaultConfig()
	cfg.Params.MemoryKiB = 8 * 1024
	cfg.Params.Iterations = 1
	cfg.Params.Parallelism = 1
	return cfg
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2026, 1, 4, 8, 0, 0, 0, time.UTC)

	users := identity.NewMemoryStore(fastHasher())
	mk := func(email, name string, role identity.Role, at time.Time) identity.User {
		u, err := users.CreateUser(ctx, identity.CreateUserInput{
			Email: email, FullName: name, Password: "a-long-test-password-7", Role: role, Now: at,
		})
		require.NoError(t, err)
		return u
	}
	f := &fixture{users: users}
	f.admin = mk("admin@example.com", "Zoë Admin", identity.RoleAdmin, base)
	f.inviter = mk("ada@example.com", "Ada Lovelace", identity.RoleInviter, base.Add(time.Hour))
	f.host = mk("emeka@example.com", "Émeka Host", identity.RolePCUHost, base.Add(2*time.Hour))

	invs := invitation.NewMemoryStore()
	for i, g := range []string{"Grace", "Barbara", "Katherine"} {
		_, err := invs.Create(ctx, invitation.NewRecord{
			QRCodeValue: "tok-" + g,
			GuestName:   g,
			CampusID:    "tcn-lekki",
			InviterID:   f.inviter.ID,
			Design:      flyer.DesignModern,
			Now:         base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}
	_, err := invs.MarkAttended(ctx, "tok-Grace", base.Add(24*time.Hour))
	require.NoError(t, err)

	h, err := NewHandler(nil, admin.Loader{
		Invitations: invs,
		Users:       users,
		Campuses:    campus.NewMemoryDirectory(campus.DefaultCampuses()...),
	}, users)
	require.NoError(t, err)

	mux := http.NewServeMux()
	h.Register(mux)
	byToken := map[string]identity.User{"admin": f.admin, "inviter": f.inviter, "host": f.host}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u, ok := byToken[r.Header.Get("Authorization")]; ok {
			r = r.WithContext(auth.WithPrincipal(r.Context(), &auth.Principal{UserID: u.ID, Role: u.Role}))
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fixture) do(t *testing.T, method, path, who string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, f.srv.URL+path, &buf)
	require.NoError(t, err)
	if who != "" {
		req.Header.Set("Authorization", who)
	}
	res, err := f.srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = res.Body.Close() })
	return res
}

func read[T any](t *testing.T, res *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(res.Body).Decode(&v))
	return v
}

func TestAdminOnly(t *testing.T) {
	f := newFixture(t)

	for _, tc := range []struct {
		who  string
		want int
	}{
		{"", http.StatusUnauthorized},
		{"inviter", http.StatusForbidden},
		{"host", http.StatusForbidden},
		{"admin", http.StatusOK},
	} {
		res := f.do(t, http.MethodGet, "/api/admin/stats", tc.who, nil)
		assert.Equal(t, tc.want, res.StatusCode, tc.who)
	}
}

func TestStats(t *testing.T) {
	f := newFixture(t)

	res := f.do(t, http.MethodGet, "/api/admin/stats", "admin", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	got := read[statsResponse](t, res).Stats
	assert.Equal(t, 3, got.TotalInvitations)
	assert.Equal(t, 1, got.AttendedInvitations)
	assert.Equal(t, 3, got.TotalUsers)
	assert.Equal(t, "33.3%", got.ConversionLabel)
	assert.Equal(t, 3, got.InviteCounts[f.inviter.ID])
}

func TestUsers_FilterAndSort(t *testing.T) {
	f := newFixture(t)

	res := f.do(t, http.MethodGet, "/api/admin/users?sort=name", "admin", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	all := read[usersResponse](t, res)
	require.Len(t, all.Users, 3)
	assert.Equal(t, []string{"Ada Lovelace", "Émeka Host", "Zoë Admin"},
		[]string{all.Users[0].FullName, all.Users[1].FullName, all.Users[2].FullName})

	res = f.do(t, http.MethodGet, "/api/admin/users?sort=invites", "admin", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	top := read[usersResponse](t, res)
	assert.Equal(t, f.inviter.ID, top.Users[0].ID)
	assert.Equal(t, 3, top.Users[0].Invites)

	res = f.do(t, http.MethodGet, "/api/admin/users?role=pcu_host", "admin", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	hosts := read[usersResponse](t, res)
	require.Len(t, hosts.Users, 1)
	assert.Equal(t, 3, hosts.Total)

	res = f.do(t, http.MethodGet, "/api/admin/users?sort=height", "admin", nil)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestInvitations_FilterAndSort(t *testing.T) {
	f := newFixture(t)

	res := f.do(t, http.MethodGet, "/api/admin/invitations?status=attended", "admin", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	got := read[invitationsResponse](t, res)
	require.Len(t, got.Invitations, 1)
	assert.Equal(t, "Grace", got.Invitations[0].GuestName)
	assert.Equal(t, "TCN Lekki", got.Invitations[0].CampusName)
	assert.Equal(t, "Ada Lovelace", got.Invitations[0].InviterName)

	res = f.do(t, http.MethodGet, "/api/admin/invitations?q=barb", "admin", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Len(t, read[invitationsResponse](t, res).Invitations, 1)

	res = f.do(t, http.MethodGet, "/api/admin/invitations?status=pending", "admin", nil)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestRoleUpdate(t *testing.T) {
	f := newFixture(t)

	res := f.do(t, http.MethodPatch, "/api/admin/users/"+f.inviter.ID+"/role", "admin", roleRequest{Role: "pcu_host"})
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, identity.RolePCUHost, read[identity.User](t, res).Role)

	u, err := f.users.GetUserByID(context.Background(), f.inviter.ID)
	require.NoError(t, err)
	assert.Equal(t, identity.RolePCUHost, u.Role)

	res = f.do(t, http.MethodPatch, "/api/admin/users/"+f.admin.ID+"/role", "admin", roleRequest{Role: "inviter"})
	assert.Equal(t, http.StatusConflict, res.StatusCode)

	res = f.do(t, http.MethodPatch, "/api/admin/users/"+f.host.ID+"/role", "admin", roleRequest{Role: "admin"})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res = f.do(t, http.MethodPatch, "/api/admin/users/nobody/role", "admin", roleRequest{Role: "inviter"})
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	res = f.do(t, http.MethodPatch, "/api/admin/users/"+f.host.ID+"/role", "host", roleRequest{Role: "inviter"})
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
}
