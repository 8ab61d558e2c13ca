package substrate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySubstrate(t *testing.T) {
	sub := NewMemorySubstrate()
	ctx := context.Background()

	_, found, err := sub.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, sub.Set(ctx, "k", `{"a":1}`))
	got, found, err := sub.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `{"a":1}`, got)

	// Overwrite replaces the whole value.
	require.NoError(t, sub.Set(ctx, "k", ""))
	got, found, err = sub.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "", got)

	require.NoError(t, sub.Delete(ctx, "k"))
	_, found, err = sub.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)

	// Deleting an absent key is a no-op.
	require.NoError(t, sub.Delete(ctx, "k"))
}
