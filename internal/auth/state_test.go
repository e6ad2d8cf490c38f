package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStateStore(t *testing.T) {
	ctx := context.Background()

	t.Run("Single Use", func(t *testing.T) {
		s := NewMemoryStateStore(nil)
		require.NoError(t, s.Save(ctx, "abc", StateTTL))

		ok, err := s.Consume(ctx, "abc")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = s.Consume(ctx, "abc")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Expires", func(t *testing.T) {
		now := time.Unix(1_700_000_000, 0)
		s := NewMemoryStateStore(func() time.Time { return now })
		require.NoError(t, s.Save(ctx, "abc", StateTTL))

		now = now.Add(StateTTL)
		ok, err := s.Consume(ctx, "abc")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Zero(t, s.Len(), "expired state is still removed")
	})

	t.Run("Save Sweeps Expired", func(t *testing.T) {
		now := time.Unix(1_700_000_000, 0)
		s := NewMemoryStateStore(func() time.Time { return now })
		require.NoError(t, s.Save(ctx, "old", time.Minute))

		now = now.Add(2 * time.Minute)
		require.NoError(t, s.Save(ctx, "new", time.Minute))
		assert.Equal(t, 1, s.Len())
	})
}

func TestRedisStateStore(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*RedisStateStore, *miniredis.Miniredis) {
		t.Helper()
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { client.Close() })
		return NewRedisStateStore(client, "sonar:"), mr
	}

	t.Run("Single Use", func(t *testing.T) {
		s, mr := setup(t)
		require.NoError(t, s.Save(ctx, "abc", StateTTL))
		assert.True(t, mr.Exists("sonar:oauth:state:abc"))

		ok, err := s.Consume(ctx, "abc")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = s.Consume(ctx, "abc")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("TTL", func(t *testing.T) {
		s, mr := setup(t)
		require.NoError(t, s.Save(ctx, "abc", StateTTL))
		assert.Equal(t, StateTTL, mr.TTL("sonar:oauth:state:abc"))

		mr.FastForward(StateTTL + time.Second)

		ok, err := s.Consume(ctx, "abc")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Connection Error", func(t *testing.T) {
		s, mr := setup(t)
		mr.Close()

		_, err := s.Consume(ctx, "abc")
		assert.Error(t, err)
	})

	t.Run("Client From URL", func(t *testing.T) {
		mr := miniredis.RunT(t)
		client, err := NewRedisClient(ctx, "redis://"+mr.Addr()+"/0")
		require.NoError(t, err)
		defer client.Close()

		_, err = NewRedisClient(ctx, "not a url")
		assert.Error(t, err)
	})
}
