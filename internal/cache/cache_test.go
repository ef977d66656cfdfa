package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	defer c.Close()

	key := SessionKey("s1", "products_cache")
	assert.Equal(t, "session:s1:products_cache", key)

	_, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	value := []byte(`[{"id":"p1"}]`)
	require.NoError(t, c.Set(ctx, key, value))
	value[0] = 'x'

	got, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `[{"id":"p1"}]`, string(got), "stored values are copies")

	require.NoError(t, c.Delete(ctx, key, "missing"))
	_, ok, _ = c.Get(ctx, key)
	assert.False(t, ok)
}
