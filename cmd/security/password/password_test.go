package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig() Config {
	cfg := DefaultConfig()
	cfg.Params.MemoryKiB = 8 * 1024
	cfg.Params.Iterations = 1
	cfg.Params.Parallelism = 1
	return cfg
}

func TestHashAndVerify(t *testing.T) {
	t.Parallel()
	cfg := fastConfig()

	h, err := cfg.Hash("welcome to sunday service")
	require.NoError(t, err)

	ok, err := cfg.Verify(h, "welcome to sunday service")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = cfg.Verify(h, "wrong password")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerify_InvalidHash(t *testing.T) {
	t.Parallel()
	cfg := fastConfig()

	for _, enc := range []string{
		"not-a-hash",
		"$argon2i$v=19$m=8192,t=1,p=1$c2FsdHNhbHQ$a2V5a2V5a2V5a2V5a2V5",
		"$argon2id$v=18$m=8192,t=1,p=1$c2FsdHNhbHQ$a2V5a2V5a2V5a2V5a2V5",
		"$argon2id$v=19$m=0,t=1,p=1$c2FsdHNhbHQ$a2V5a2V5a2V5a2V5a2V5",
	} {
		ok, err := cfg.Verify(enc, "whatever")
		assert.ErrorIs(t, err, ErrInvalidHash, enc)
		assert.False(t, ok)
	}
}

func TestVerify_RejectsOversizedCost(t *testing.T) {
	t.Parallel()
	strong := fastConfig()
	strong.Params.Iterations = 10
	h, err := strong.Hash("a perfectly fine phrase")
	require.NoError(t, err)

	_, err = fastConfig().Verify(h, "a perfectly fine phrase")
	assert.ErrorIs(t, err, ErrInvalidHash)
}

func TestValidate(t *testing.T) {
	t.Parallel()
	cfg := fastConfig()
	cfg.Policy.MaxLength = 20

	cases := []struct {
		in   string
		want error
	}{
		{in: "short", want: ErrPasswordTooShort},
		{in: "this password is definitely too long", want: ErrPasswordTooLong},
		{in: "password", want: ErrWeakPassword},
		{in: "11111111", want: ErrWeakPassword},
		{in: "aaaaaaaaaa", want: ErrWeakPassword},
		{in: "Jesus123", want: ErrWeakPassword},
		{in: "grace-and-peace", want: nil},
	}
	for _, tc := range cases {
		err := cfg.Validate(tc.in)
		if tc.want == nil {
			assert.NoError(t, err, tc.in)
			continue
		}
		assert.ErrorIs(t, err, tc.want, tc.in)
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("TCN_PASSWORD_MIN_LENGTH", "10")
	t.Setenv("TCN_ARGON2_ITERATIONS", "2")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Policy.MinLength)
	assert.Equal(t, uint32(2), cfg.Params.Iterations)
	assert.Equal(t, uint32(64*1024), cfg.Params.MemoryKiB)
}

func TestFromEnv_OutOfRange(t *testing.T) {
	t.Setenv("TCN_ARGON2_ITERATIONS", "99")

	_, err := FromEnv()
	require.Error(t, err)
}
