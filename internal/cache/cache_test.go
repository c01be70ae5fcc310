package cache

import (
	"context"
	"testing"
	"time"

	"campusdrive/internal/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ services.Cache = (*RedisCache)(nil)
	_ services.Cache = (*Memory)(nil)
	_ services.Cache = Noop{}
)

func TestMemory_DeleteByPrefix(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	require.NoError(t, c.Set(ctx, "drive:list:a:1", []byte("x"), time.Minute))
	require.NoError(t, c.Set(ctx, "drive:list:a:2", []byte("y"), time.Minute))
	require.NoError(t, c.Set(ctx, "drive:list:b:1", []byte("z"), time.Minute))

	require.NoError(t, c.DeleteByPrefix(ctx, "drive:list:a:"))

	_, ok, err := c.Get(ctx, "drive:list:a:1")
	require.NoError(t, err)
	assert.False(t, ok)

	val, ok, err := c.Get(ctx, "drive:list:b:1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("z"), val)
}

func TestMemory_Expiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()
	now := time.Now()
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Second))
	now = now.Add(2 * time.Second)

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNoop_AlwaysMisses(t *testing.T) {
	ctx := context.Background()
	var c Noop
	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}
