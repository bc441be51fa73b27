package invitationapi

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mykel-Eze/tcn-invite/cmd/identity"
	"github.com/Mykel-Eze/tcn-invite/cmd/internal/auth"
	"github.com/Mykel-Eze/tcn-invite/cmd/internal/campus"
	"github.com/Mykel-Eze/tcn-invite/cmd/internal/invitation"
	"github.com/Mykel-Eze/tcn-invite/cmd/internal/wizard"
)

const baseURL = "https://invite.example.test"

var principals = map[string]*auth.Principal{
	"inviter-token": {UserID: "u-inviter", SessionID: "s1", Role: identity.RoleInviter, FullName: "Ada Member"},
	"other-token":   {UserID: "u-other", SessionID: "s2", Role: identity.RoleInviter, FullName: "Other Member"},
	"host-token":    {UserID: "u-host", SessionID: "s3", Role: identity.RolePCUHost, FullName: "Host"},
}

// bearer stands in for the session middleware.
func bearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p, ok := principals[r.Header.Get("Authorization")]; ok {
			r = r.WithContext(auth.WithPrincipal(r.Context(), p))
		}
		next.ServeHTTP(w, r)
	})
}

type env struct {
	srv   *httptest.Server
	store *invitation.MemoryStore
	now   time.Time
}

func newEnv(t *testing.T) *env {
	t.Helper()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	store := invitation.NewMemoryStore()
	dir := campus.NewMemoryDirectory(campus.DefaultCampuses()...)

	reg, err := wizard.NewRegistry(wizard.Deps{
		Store:    store,
		Campuses: dir,
		BaseURL:  baseURL,
		Now:      clock,
	}, time.Hour)
	require.NoError(t, err)

	v, err := invitation.NewVerifier(store,
		invitation.WithDirectory(dir),
		invitation.WithClock(func() time.Time { return now.Add(-2 * time.Hour) }),
	)
	require.NoError(t, err)

	h, err := NewHandler(Deps{
		Wizards:     reg,
		Verifier:    v,
		Campuses:    dir,
		Invitations: store,
		Now:         clock,
	})
	require.NoError(t, err)

	mux := http.NewServeMux()
	h.Register(mux)
	srv := httptest.NewServer(bearer(mux))
	t.Cleanup(srv.Close)
	return &env{srv: srv, store: store, now: now}
}

func (e *env) call(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, rd)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	res, err := e.srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = res.Body.Close() })
	return res
}

func decodeInto[T any](t *testing.T, res *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(res.Body).Decode(&v))
	return v
}

func errCode(t *testing.T, res *http.Response) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	return body.Error.Code
}

// walk drives a fresh wizard to a generated invitation and returns its id
// and the generate response.
func walk(t *testing.T, e *env, guest string) (string, generateResponse) {
	t.Helper()
	res := e.call(t, http.MethodPost, "/api/wizards", "inviter-token", nil)
	require.Equal(t, http.StatusCreated, res.StatusCode)
	id := decodeInto[wizardResponse](t, res).Wizard.ID
	base := "/api/wizards/" + id

	steps := []struct {
		method, path string
		body         any
	}{
		{http.MethodPut, "/guest", guestRequest{Name: guest, Phone: "+2348000000000"}},
		{http.MethodPut, "/campus", campusRequest{CampusID: "tcn-ikeja"}},
		{http.MethodPut, "/time", timeRequest{Time: "11:00 AM"}},
		{http.MethodPost, "/next", nil},
		{http.MethodPut, "/design", designRequest{Design: "golden"}},
	}
	for _, s := range steps {
		res := e.call(t, s.method, base+s.path, "inviter-token", s.body)
		require.Equal(t, http.StatusOK, res.StatusCode, s.path)
	}

	res = e.call(t, http.MethodPost, base+"/generate", "inviter-token", nil)
	require.Equal(t, http.StatusCreated, res.StatusCode)
	return id, decodeInto[generateResponse](t, res)
}

func TestWizardFlow_GenerateDownloadVerify(t *testing.T) {
	e := newEnv(t)

	id, gen := walk(t, e, "Ada Lovelace")
	assert.True(t, gen.Persisted)
	assert.Nil(t, gen.PersistError)
	assert.Equal(t, wizard.StateGenerated, gen.Wizard.State)
	assert.Equal(t, "invite-ada-lovelace.png", gen.FileName)
	assert.Equal(t, "u-inviter", gen.Invitation.InviterID)
	assert.Equal(t, invitation.StatusSent, gen.Invitation.Status)
	assert.Equal(t, baseURL+"/verify/"+gen.Invitation.QRCodeValue, gen.VerificationURL)

	res := e.call(t, http.MethodGet, "/api/wizards/"+id+"/flyer", "inviter-token", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "image/png", res.Header.Get("Content-Type"))
	assert.Equal(t, `attachment; filename="invite-ada-lovelace.png"`, res.Header.Get("Content-Disposition"))
	img, err := png.Decode(res.Body)
	require.NoError(t, err)
	assert.Equal(t, gen.Width, img.Bounds().Dx())

	res = e.call(t, http.MethodGet, "/api/wizards/"+id+"/share", "inviter-token", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	share := decodeInto[shareResponse](t, res)
	assert.Equal(t, "Hi Ada Lovelace, I'd love to invite you to church at TCN Ikeja!", share.Message)

	// A member may not confirm attendance.
	res = e.call(t, http.MethodPost, "/api/checkins", "inviter-token", checkInRequest{Code: gen.VerificationURL})
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
	assert.Equal(t, "access_denied", errCode(t, res))

	res = e.call(t, http.MethodPost, "/api/checkins", "host-token", checkInRequest{Code: gen.VerificationURL})
	require.Equal(t, http.StatusOK, res.StatusCode)
	first := decodeInto[verifyResponse](t, res)
	assert.Equal(t, invitation.OutcomeConfirmed, first.Outcome)
	assert.Equal(t, "TCN Ikeja", first.CampusName)
	assert.Equal(t, "2 hours ago", first.AttendedAgo)
	require.NotNil(t, first.Invitation.AttendedAt)

	res = e.call(t, http.MethodGet, "/verify/"+gen.Invitation.QRCodeValue, "host-token", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	second := decodeInto[verifyResponse](t, res)
	assert.Equal(t, invitation.OutcomeAlreadyConfirmed, second.Outcome)
	assert.Equal(t, first.Invitation.AttendedAt.UTC(), second.Invitation.AttendedAt.UTC())

	res = e.call(t, http.MethodGet, "/api/invitations/mine", "inviter-token", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	mine := decodeInto[mineResponse](t, res)
	assert.Equal(t, 1, mine.Total)
	assert.Equal(t, 1, mine.Attended)
}

func TestVerify_UnknownToken(t *testing.T) {
	e := newEnv(t)

	res := e.call(t, http.MethodGet, "/verify/00000000-0000-4000-8000-000000000000", "host-token", nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Equal(t, "invalid_invitation", errCode(t, res))

	res = e.call(t, http.MethodGet, "/verify/00000000-0000-4000-8000-000000000000", "", nil)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
}

func TestWizard_OwnerScopedAndAuthRequired(t *testing.T) {
	e := newEnv(t)

	res := e.call(t, http.MethodPost, "/api/wizards", "", nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	res = e.call(t, http.MethodPost, "/api/wizards", "inviter-token", nil)
	require.Equal(t, http.StatusCreated, res.StatusCode)
	id := decodeInto[wizardResponse](t, res).Wizard.ID

	res = e.call(t, http.MethodGet, "/api/wizards/"+id, "other-token", nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	res = e.call(t, http.MethodDelete, "/api/wizards/"+id, "inviter-token", nil)
	assert.Equal(t, http.StatusNoContent, res.StatusCode)

	res = e.call(t, http.MethodGet, "/api/wizards/"+id, "inviter-token", nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestWizard_ValidationErrors(t *testing.T) {
	e := newEnv(t)

	res := e.call(t, http.MethodPost, "/api/wizards", "inviter-token", nil)
	require.Equal(t, http.StatusCreated, res.StatusCode)
	base := "/api/wizards/" + decodeInto[wizardResponse](t, res).Wizard.ID

	res = e.call(t, http.MethodPost, base+"/next", "inviter-token", nil)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, "invalid_request", errCode(t, res))

	res = e.call(t, http.MethodPut, base+"/campus", "inviter-token", campusRequest{CampusID: "nowhere"})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res = e.call(t, http.MethodGet, base+"/flyer", "inviter-token", nil)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res = e.call(t, http.MethodPost, base+"/generate", "inviter-token", nil)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestWizard_ResetKeepsPersistedInvitation(t *testing.T) {
	e := newEnv(t)
	id, gen := walk(t, e, "Grace Hopper")

	res := e.call(t, http.MethodPost, "/api/wizards/"+id+"/reset", "inviter-token", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	snap := decodeInto[wizardResponse](t, res).Wizard
	assert.Equal(t, wizard.StateCollectingGuestData, snap.State)
	assert.Empty(t, snap.Guest.Name)

	_, err := e.store.GetByToken(context.Background(), gen.Invitation.QRCodeValue)
	assert.NoError(t, err)

	res = e.call(t, http.MethodPost, "/api/wizards/"+id+"/retry-persist", "inviter-token", nil)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestPreviewAndCatalog(t *testing.T) {
	e := newEnv(t)

	res := e.call(t, http.MethodGet, "/api/campuses", "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Len(t, decodeInto[campusesResponse](t, res).Campuses, len(campus.DefaultCampuses()))

	res = e.call(t, http.MethodGet, "/api/flyers/designs", "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Len(t, decodeInto[designsResponse](t, res).Designs, 5)

	res = e.call(t, http.MethodGet, "/api/flyers/preview?design=luxury&guest=Ada&campus_id=tcn-yaba", "inviter-token", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "image/png", res.Header.Get("Content-Type"))
	assert.Empty(t, res.Header.Get("Content-Disposition"))

	res = e.call(t, http.MethodGet, "/api/flyers/preview?design=neon", "inviter-token", nil)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}
