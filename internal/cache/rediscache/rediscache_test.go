package rediscache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func TestRedisCache_GetSetDelete(t *testing.T) {
	mr := miniredis.RunT(t)
	c := New(mr.Addr())

	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "branches", []byte("[]"), time.Minute))
	require.True(t, mr.Exists("console:branches"))

	b, ok, err := c.Get(ctx, "branches")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("[]"), b)

	require.NoError(t, c.Delete(ctx, "branches", "vehicles"))
	_, ok, err = c.Get(ctx, "branches")
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, c.Delete(ctx))
}

func TestRedisCache_TTL(t *testing.T) {
	mr := miniredis.RunT(t)
	c := New(mr.Addr())
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	mr.FastForward(2 * time.Minute)
	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRedisCache_Ping(t *testing.T) {
	mr := miniredis.RunT(t)
	c := New(mr.Addr())
	require.NoError(t, c.Ping(context.Background()))

	mr.Close()
	require.Error(t, c.Ping(context.Background()))
}

func TestRateLimiter_Allow(t *testing.T) {
	mr := miniredis.RunT(t)
	rl := NewRateLimiter(mr.Addr())

	ctx := context.Background()
	ok, n, err := rl.Allow(ctx, "login:a@b.c", 2, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(1), n)

	ok, n, _ = rl.Allow(ctx, "login:a@b.c", 2, time.Minute)
	require.True(t, ok)
	require.Equal(t, int64(2), n)

	ok, n, _ = rl.Allow(ctx, "login:a@b.c", 2, time.Minute)
	require.False(t, ok)
	require.Equal(t, int64(3), n)

	require.NoError(t, rl.Reset(ctx, "login:a@b.c"))
	ok, n, _ = rl.Allow(ctx, "login:a@b.c", 2, time.Minute)
	require.True(t, ok)
	require.Equal(t, int64(1), n)
}

func TestRateLimiter_WindowExpires(t *testing.T) {
	mr := miniredis.RunT(t)
	rl := NewRateLimiter(mr.Addr())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, _, _ = rl.Allow(ctx, "k", 1, time.Minute)
	}
	mr.FastForward(61 * time.Second)
	ok, _, err := rl.Allow(ctx, "k", 1, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
}
