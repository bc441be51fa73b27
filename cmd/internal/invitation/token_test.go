package invitation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewToken_Distinct(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		tok, err := NewToken()
		require.NoError(t, err)
		require.Len(t, tok, 36)
		require.False(t, seen[tok])
		seen[tok] = true
	}
}

func TestVerificationURL_RoundTrip(t *testing.T) {
	t.Parallel()

	tok := "0b7a2f1c-55a6-4d7b-9d6e-2f4f7d0c9a11"
	u := VerificationURL("https://invite.example.org/", tok)
	assert.Equal(t, "https://invite.example.org/verify/"+tok, u)

	got, ok := ParseToken(u)
	require.True(t, ok)
	assert.Equal(t, tok, got)
}

func TestParseToken(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{in: "abc-123", want: "abc-123", ok: true},
		{in: "  abc-123\n", want: "abc-123", ok: true},
		{in: "http://localhost:5173/verify/abc-123", want: "abc-123", ok: true},
		{in: "https://x.org/app/verify/abc-123/", want: "abc-123", ok: true},
		{in: "https://x.org/verify/abc-123?utm=qr", want: "abc-123", ok: true},
		{in: "/verify/abc-123", want: "abc-123", ok: true},
		{in: "", ok: false},
		{in: "https://x.org/profile/abc", ok: false},
		{in: "https://x.org/verify/", ok: false},
		{in: "drop table;", ok: false},
		{in: "https://x.org/verify/a%20b", ok: false},
	}
	for _, tc := range cases {
		got, ok := ParseToken(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestShareURL(t *testing.T) {
	t.Parallel()

	got := ShareURL("", "Ada", "TCN Ikeja")
	assert.Equal(t, "https://wa.me/?text=Hi%20Ada%2C%20I%27d%20love%20to%20invite%20you%20to%20church%20at%20TCN%20Ikeja%21", got)
	assert.Equal(t, "Hi Ada, I'd love to invite you to church at TCN Ikeja!", ShareMessage(" Ada ", "TCN Ikeja"))
}

func TestFlyerFileName(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{in: "Ada Lovelace", want: "invite-ada-lovelace.png"},
		{in: "  Zoë  O'Brien ", want: "invite-zoe-o-brien.png"},
		{in: "", want: "invite-guest.png"},
		{in: "!!!", want: "invite-guest.png"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FlyerFileName(tc.in), tc.in)
	}
	assert.Equal(t, FlyerFileName("Ada Lovelace"), FlyerFileName("Ada Lovelace"))
}

func TestKindOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, KindAccessDenied, KindOf(E("op", KindAccessDenied, nil)))
	assert.Equal(t, KindNotFound, KindOf(ErrNotFound))
	assert.Equal(t, KindValidation, KindOf(ErrInvalidInput))
	assert.Equal(t, KindUnknown, KindOf(assert.AnError))
	assert.Equal(t, Kind(""), KindOf(nil))
	assert.True(t, KindTimeout.Retryable())
	assert.False(t, KindNotFound.Retryable())
}
