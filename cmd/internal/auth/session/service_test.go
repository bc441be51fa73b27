package session

import (
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/Mykel-Eze/tcn-invite/cmd/internal/dbschema"
	"github.com/Mykel-Eze/tcn-invite/cmd/internal/pgtest"

	paseto "aidanwoods.dev/go-paseto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUserID = "01HZZZZZZZZZZZZZZZZZZZZZZZ"

func testConfig(t *testing.T) Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.PasetoV4SecretKeyHex = paseto.NewV4AsymmetricSecretKey().ExportHex()
	require.NoError(t, cfg.Validate())
	return cfg
}

func newTestService(t *testing.T) (*Service, Config) {
	t.Helper()
	cfg := testConfig(t)
	tokens, err := NewPasetoV4(cfg)
	require.NoError(t, err)
	return NewService(cfg, NewMemoryStore(), tokens), cfg
}

func TestPasetoV4_IssueAndVerify(t *testing.T) {
	cfg := testConfig(t)
	mgr, err := NewPasetoV4(cfg)
	require.NoError(t, err)

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	tok, exp, err := mgr.Issue(testUserID, "01HYYYYYYYYYYYYYYYYYYYYYYY", now)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(tok, "v4.public."))
	assert.Equal(t, now.Add(cfg.AccessTokenTTL), exp)

	claims, err := mgr.Verify(tok, now.Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, testUserID, claims.UserID)
	assert.Equal(t, "01HYYYYYYYYYYYYYYYYYYYYYYY", claims.SessionID)

	_, err = mgr.Verify(tok, exp.Add(time.Minute))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasetoV4_RejectsForeignKeyAndIssuer(t *testing.T) {
	now := time.Now().UTC()

	a, err := NewPasetoV4(testConfig(t))
	require.NoError(t, err)
	b, err := NewPasetoV4(testConfig(t))
	require.NoError(t, err)

	tok, _, err := a.Issue(testUserID, "s1", now)
	require.NoError(t, err)
	_, err = b.Verify(tok, now)
	assert.ErrorIs(t, err, ErrInvalidToken)

	cfg := testConfig(t)
	other := cfg
	other.Issuer = "someone-else"
	issuer, err := NewPasetoV4(other)
	require.NoError(t, err)
	verifier, err := NewPasetoV4(cfg)
	require.NoError(t, err)
	tok, _, err = issuer.Issue(testUserID, "s1", now)
	require.NoError(t, err)
	_, err = verifier.Verify(tok, now)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestService_SignInValidateSignOut(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	now := time.Now().UTC()

	issued, err := svc.SignIn(ctx, now, testUserID, DeviceContext{UserAgent: "test", IP: net.ParseIP("127.0.0.1")})
	require.NoError(t, err)
	require.NotEmpty(t, issued.SessionID)
	assert.False(t, issued.AccessExp.After(issued.SessionExp))

	claims, err := svc.Validate(ctx, issued.AccessToken, now.Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, issued.SessionID, claims.SessionID)
	require.NoError(t, svc.Touch(ctx, now, claims.SessionID))

	require.NoError(t, svc.SignOut(ctx, now, issued.SessionID))
	_, err = svc.Validate(ctx, issued.AccessToken, now.Add(2*time.Second))
	assert.ErrorIs(t, err, ErrSessionRevoked)
}

func TestService_SignOutEverywhere(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	now := time.Now().UTC()

	first, err := svc.SignIn(ctx, now, testUserID, DeviceContext{})
	require.NoError(t, err)
	second, err := svc.SignIn(ctx, now, testUserID, DeviceContext{})
	require.NoError(t, err)

	require.NoError(t, svc.SignOutEverywhere(ctx, now, testUserID))

	for _, tok := range []string{first.AccessToken, second.AccessToken} {
		_, err := svc.Validate(ctx, tok, now)
		assert.ErrorIs(t, err, ErrSessionRevoked)
	}
}

func TestService_ValidateRejects(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	now := time.Now().UTC()

	_, err := svc.Validate(ctx, "", now)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = svc.Validate(ctx, "v4.public.garbage", now)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// Signed token whose session row was never stored.
	tok, _, err := svc.tokens.Issue(testUserID, "01HXXXXXXXXXXXXXXXXXXXXXXX", now)
	require.NoError(t, err)
	_, err = svc.Validate(ctx, tok, now)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestService_RefreshStopsAtSessionExpiry(t *testing.T) {
	ctx := context.Background()
	svc, cfg := newTestService(t)
	now := time.Now().UTC()

	issued, err := svc.SignIn(ctx, now, testUserID, DeviceContext{})
	require.NoError(t, err)
	claims, err := svc.Validate(ctx, issued.AccessToken, now)
	require.NoError(t, err)

	later := now.Add(cfg.SessionTTL / 2)
	again, err := svc.Refresh(ctx, later, claims)
	require.NoError(t, err)
	assert.Equal(t, issued.SessionID, again.SessionID)

	_, err = svc.Refresh(ctx, now.Add(cfg.SessionTTL), claims)
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestPostgresStore(t *testing.T) {
	pool := pgtest.Open(t)
	schema := pgtest.Schema(t, pool)
	ctx := context.Background()

	st, err := NewPostgresStore(pool, schema)
	require.NoError(t, err)

	// sessions.user_id references users.
	_, err = pool.Exec(ctx, `INSERT INTO `+dbschema.Ident(schema, "users")+` (id, email, email_norm, full_name, role, created_at)
		VALUES ($1, 'usher@tcn.test', 'usher@tcn.test', 'Usher', 'pcu_host', now())`, testUserID)
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Microsecond)
	row := Row{ID: "01HSSSSSSSSSSSSSSSSSSSSSSS", UserID: testUserID, CreatedAt: now, ExpiresAt: now.Add(time.Hour)}
	require.NoError(t, st.Create(ctx, row, DeviceContext{UserAgent: "ua", IP: net.ParseIP("10.0.0.1")}))

	got, err := st.GetByID(ctx, row.ID)
	require.NoError(t, err)
	assert.Equal(t, testUserID, got.UserID)
	assert.NoError(t, got.Active(now))

	require.NoError(t, st.Touch(ctx, now.Add(time.Minute), row.ID))
	require.NoError(t, st.Revoke(ctx, now.Add(2*time.Minute), row.ID, "logout"))
	require.NoError(t, st.RevokeAll(ctx, now.Add(3*time.Minute), testUserID, "logout_all"))

	got, err = st.GetByID(ctx, row.ID)
	require.NoError(t, err)
	require.NotNil(t, got.RevokedAt)
	assert.True(t, got.RevokedAt.Equal(now.Add(2*time.Minute)))
	assert.ErrorIs(t, got.Active(now), ErrSessionRevoked)

	_, err = st.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
