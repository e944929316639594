package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/nani/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	c, err := NewRedisCache(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestRedisCache_SetAndGet(t *testing.T) {
	c, mr := newTestRedisCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "session:abc", []byte(`{"id":"abc"}`), time.Hour))

	got, err := c.Get(ctx, "session:abc")
	require.NoError(t, err)
	assert.Equal(t, `{"id":"abc"}`, string(got))

	// keys are namespaced
	assert.True(t, mr.Exists("nani:session:abc"))
	assert.Equal(t, time.Hour, mr.TTL("nani:session:abc"))
}

func TestRedisCache_Miss(t *testing.T) {
	c, _ := newTestRedisCache(t)

	_, err := c.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
}

func TestRedisCache_Expiration(t *testing.T) {
	c, mr := newTestRedisCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	mr.FastForward(2 * time.Minute)

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
}

func TestRedisCache_DeleteAndExists(t *testing.T) {
	c, _ := newTestRedisCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))

	exists, err := c.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, c.Delete(ctx, "k"))

	exists, err = c.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestNewRedisCache_Errors(t *testing.T) {
	t.Run("invalid url", func(t *testing.T) {
		_, err := NewRedisCache(context.Background(), "://bad")
		assert.Error(t, err)
	})

	t.Run("unreachable server", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()

		_, err := NewRedisCache(context.Background(), "redis://"+addr)
		assert.Error(t, err)
	})
}
