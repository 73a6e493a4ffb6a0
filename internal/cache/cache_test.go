package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseClient(t *testing.T, c Client) {
	t.Helper()
	ctx := context.Background()

	_, err := c.Get(ctx, "missing")
	assert.True(t, IsNotFound(err))

	require.NoError(t, c.Set(ctx, "k", []byte("v1"), 0))
	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), got)

	require.NoError(t, c.Set(ctx, "k", []byte("v2"), time.Minute))
	got, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got)

	require.NoError(t, c.Delete(ctx, "k"))
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, c.Ping(ctx))
}

func TestMemoryClient(t *testing.T) {
	c := NewMemory("test", time.Hour)
	defer c.Close()
	assert.Equal(t, "memory", c.Driver())
	exerciseClient(t, c)
}

func TestMemoryClient_TTL(t *testing.T) {
	c := NewMemory("", 0)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "short", []byte("x"), 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)
	_, err := c.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryClient_ReturnsCopy(t *testing.T) {
	c := NewMemory("", 0)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k", []byte("abc"), 0))
	b, _ := c.Get(ctx, "k")
	b[0] = 'z'
	again, _ := c.Get(ctx, "k")
	assert.Equal(t, []byte("abc"), again)
}

func TestNew_DefaultsToMemory(t *testing.T) {
	c, err := New(context.Background(), Config{})
	require.NoError(t, err)
	assert.Equal(t, "memory", c.Driver())
}

func TestRedisClient(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	c, err := New(context.Background(), Config{Driver: "redis", Addr: addr, Prefix: "hellocert-test"})
	require.NoError(t, err)
	defer c.Close()
	assert.Equal(t, "redis", c.Driver())
	exerciseClient(t, c)
}

func TestNewRedis_RequiresAddr(t *testing.T) {
	_, err := NewRedis(context.Background(), Config{Driver: "redis"})
	assert.Error(t, err)
}
