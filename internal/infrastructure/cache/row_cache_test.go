package cache

import (
	"context"
	"testing"
	"time"

	"github.com/facultymis/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func TestInMemoryRowCache(t *testing.T) {
	ctx := context.Background()

	t.Run("set then get returns a copy", func(t *testing.T) {
		c := NewInMemoryRowCache(time.Hour)
		defer c.Close()

		val := []byte(`{"rows":[]}`)
		require.NoError(t, c.Set(ctx, RowKey("fac_teach", "CS"), val, time.Minute))
		val[0] = 'X'

		got, ok, err := c.Get(ctx, RowKey("fac_teach", "CS"))
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, `{"rows":[]}`, string(got))
	})

	t.Run("miss", func(t *testing.T) {
		c := NewInMemoryRowCache(time.Hour)
		defer c.Close()

		got, ok, err := c.Get(ctx, "absent")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, got)
	})

	t.Run("expired entries miss and are swept", func(t *testing.T) {
		c := NewInMemoryRowCache(time.Hour)
		defer c.Close()
		now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		c.now = func() time.Time { return now }

		require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Second))
		now = now.Add(2 * time.Second)

		_, ok, err := c.Get(ctx, "k")
		require.NoError(t, err)
		assert.False(t, ok)

		c.cleanup()
		assert.Equal(t, 0, c.Size())
	})

	t.Run("zero ttl stores nothing", func(t *testing.T) {
		c := NewInMemoryRowCache(time.Hour)
		defer c.Close()
		require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))
		assert.Equal(t, 0, c.Size())
	})

	t.Run("delete entity drops all its scopes only", func(t *testing.T) {
		c := NewInMemoryRowCache(time.Hour)
		defer c.Close()
		require.NoError(t, c.Set(ctx, RowKey("fac_teach", "all"), []byte("a"), time.Minute))
		require.NoError(t, c.Set(ctx, RowKey("fac_teach", "CS,EC"), []byte("b"), time.Minute))
		require.NoError(t, c.Set(ctx, RowKey("fac_teaching", "all"), []byte("c"), time.Minute))

		require.NoError(t, c.DeleteEntity(ctx, "fac_teach"))
		assert.Equal(t, 1, c.Size())
		_, ok, _ := c.Get(ctx, RowKey("fac_teaching", "all"))
		assert.True(t, ok)
	})

	t.Run("closed cache rejects use", func(t *testing.T) {
		c := NewInMemoryRowCache(time.Hour)
		require.NoError(t, c.Close())
		require.NoError(t, c.Close())

		_, _, err := c.Get(ctx, "k")
		assert.ErrorIs(t, err, ErrCacheClosed)
		assert.ErrorIs(t, c.Set(ctx, "k", []byte("v"), time.Minute), ErrCacheClosed)
	})
}

func TestInMemoryRowCache_NoGoroutineLeak(t *testing.T) {
	defer goleak.VerifyNone(t)

	c := NewInMemoryRowCache(time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, c.Close())
}

func TestRowCacheFactory(t *testing.T) {
	unreachable := config.RedisConfig{Host: "127.0.0.1", Port: 1}

	t.Run("falls back to memory when redis is unreachable", func(t *testing.T) {
		f := NewRowCacheFactory(unreachable, WithLogger(zaptest.NewLogger(t)), WithSweepInterval(time.Hour))
		c, err := f.CreateCache(context.Background())
		require.NoError(t, err)
		defer c.Close()
		assert.IsType(t, &InMemoryRowCache{}, c)
	})

	t.Run("fails when fallback is disabled", func(t *testing.T) {
		f := NewRowCacheFactory(unreachable, WithInMemoryFallback(false))
		_, err := f.CreateCache(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "redis required")
	})
}

func TestRowKey(t *testing.T) {
	assert.Equal(t, "fmis:rows:fac_edu:all", RowKey("fac_edu", "all"))
	assert.True(t, hasEntityPrefix(RowKey("fac_edu", "CS"), "fac_edu"))
	assert.False(t, hasEntityPrefix(RowKey("fac_education", "CS"), "fac_edu"))
}
