package ids

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_SortableAndValid(t *testing.T) {
	t.Parallel()

	t1 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	a, err := New(t1)
	require.NoError(t, err)
	b, err := New(t1.Add(time.Second))
	require.NoError(t, err)

	assert.Len(t, a, 26)
	assert.True(t, Valid(a))
	assert.Less(t, a, b)

	got, ok := Time(a)
	require.True(t, ok)
	assert.True(t, got.Equal(t1))
}

func TestValid_Rejects(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"", "nope", "01HZZZZZZZZZZZZZZZZZZZZZZZ0"} {
		assert.False(t, Valid(s), s)
	}
}
