package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenStore_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	store := NewTokenStore()

	_, ok, err := store.Get(ctx, "adminToken")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "adminToken", "abc"))
	require.NoError(t, store.Set(ctx, "token", "xyz"))

	v, ok, err := store.Get(ctx, "adminToken")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc", v)

	require.NoError(t, store.Delete(ctx, "adminToken", "missing"))

	_, ok, _ = store.Get(ctx, "adminToken")
	assert.False(t, ok)
	v, ok, _ = store.Get(ctx, "token")
	assert.True(t, ok, "deleting one scope must not touch the other")
	assert.Equal(t, "xyz", v)
}
