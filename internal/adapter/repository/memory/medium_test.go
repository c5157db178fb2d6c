package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMedium_GetSetRemove(t *testing.T) {
	ctx := context.Background()
	medium := NewMedium()

	_, ok, err := medium.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, medium.Set(ctx, "k", "v1"))
	require.NoError(t, medium.Set(ctx, "k", "v2"))

	value, ok, err := medium.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v2", value)

	require.NoError(t, medium.Remove(ctx, "k"))
	require.NoError(t, medium.Remove(ctx, "k")) // absent key is a no-op

	_, ok, err = medium.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBoundedMedium_EnforcesQuota(t *testing.T) {
	ctx := context.Background()
	medium := NewBoundedMedium(10)

	require.NoError(t, medium.Set(ctx, "a", "12345")) // 6 bytes
	assert.ErrorIs(t, medium.Set(ctx, "b", "123456"), ErrQuotaExceeded)

	// Replacing an existing value is judged against the replacement size.
	require.NoError(t, medium.Set(ctx, "a", "123456789")) // 10 bytes

	// Freeing space re-admits writes.
	require.NoError(t, medium.Remove(ctx, "a"))
	require.NoError(t, medium.Set(ctx, "b", "123456"))
}

func TestMedium_Unavailable(t *testing.T) {
	ctx := context.Background()
	medium := NewMedium()
	medium.SetUnavailable(true)

	_, _, err := medium.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, medium.Set(ctx, "k", "v"), ErrUnavailable)
	assert.ErrorIs(t, medium.Remove(ctx, "k"), ErrUnavailable)

	medium.SetUnavailable(false)
	assert.NoError(t, medium.Set(ctx, "k", "v"))
}
