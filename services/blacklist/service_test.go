package blacklist

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tech-arch1tect/authcore/config"
	"github.com/tech-arch1tect/authcore/testutils"
)

func getTestBlacklistConfig() *config.Config {
	return &config.Config{
		Blacklist: config.BlacklistConfig{Store: "memory"},
	}
}

func TestMemoryStore(t *testing.T) {
	t.Run("add and lookup", func(t *testing.T) {
		store := NewMemoryStore()

		require.NoError(t, store.Add("access-token", time.Hour))

		blacklisted, err := store.IsBlacklisted("access-token")
		require.NoError(t, err)
		assert.True(t, blacklisted)

		blacklisted, err = store.IsBlacklisted("other-token")
		require.NoError(t, err)
		assert.False(t, blacklisted)
	})

	t.Run("expired entries read as absent", func(t *testing.T) {
		store := NewMemoryStore()

		require.NoError(t, store.Add("short-lived", -time.Second))

		blacklisted, err := store.IsBlacklisted("short-lived")
		require.NoError(t, err)
		assert.False(t, blacklisted)
	})

	t.Run("prune removes only expired entries", func(t *testing.T) {
		store := NewMemoryStore()

		require.NoError(t, store.Add("expired-1", -time.Minute))
		require.NoError(t, store.Add("expired-2", -time.Minute))
		require.NoError(t, store.Add("live", time.Hour))

		pruned, err := store.PruneExpiredTokens()
		require.NoError(t, err)
		assert.Equal(t, int64(2), pruned)

		blacklisted, err := store.IsBlacklisted("live")
		require.NoError(t, err)
		assert.True(t, blacklisted)
	})

	t.Run("prune is idempotent", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.Add("expired", -time.Minute))

		_, err := store.PruneExpiredTokens()
		require.NoError(t, err)

		pruned, err := store.PruneExpiredTokens()
		require.NoError(t, err)
		assert.Zero(t, pruned)
	})
}

func setupRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisStore(client), mr
}

func TestRedisStore(t *testing.T) {
	t.Run("add and lookup", func(t *testing.T) {
		store, _ := setupRedisStore(t)

		require.NoError(t, store.Add("access-token", time.Hour))

		blacklisted, err := store.IsBlacklisted("access-token")
		require.NoError(t, err)
		assert.True(t, blacklisted)

		blacklisted, err = store.IsBlacklisted("other-token")
		require.NoError(t, err)
		assert.False(t, blacklisted)
	})

	t.Run("entries expire with their TTL", func(t *testing.T) {
		store, mr := setupRedisStore(t)

		require.NoError(t, store.Add("short-lived", time.Minute))
		mr.FastForward(2 * time.Minute)

		blacklisted, err := store.IsBlacklisted("short-lived")
		require.NoError(t, err)
		assert.False(t, blacklisted)
	})

	t.Run("non-positive ttl is dropped", func(t *testing.T) {
		store, _ := setupRedisStore(t)

		require.NoError(t, store.Add("already-expired", -time.Second))

		blacklisted, err := store.IsBlacklisted("already-expired")
		require.NoError(t, err)
		assert.False(t, blacklisted)
	})

	t.Run("prune succeeds when redis is reachable", func(t *testing.T) {
		store, _ := setupRedisStore(t)
		require.NoError(t, store.Add("live", time.Hour))

		pruned, err := store.PruneExpiredTokens()
		require.NoError(t, err)
		assert.Zero(t, pruned)
	})
}

func TestService(t *testing.T) {
	t.Run("delegates to the store", func(t *testing.T) {
		service := NewService(getTestBlacklistConfig(), NewMemoryStore(), nil)

		require.NoError(t, service.Add("access-token", time.Hour))

		blacklisted, err := service.IsBlacklisted("access-token")
		require.NoError(t, err)
		assert.True(t, blacklisted)

		pruned, err := service.PruneExpiredTokens()
		require.NoError(t, err)
		assert.Zero(t, pruned)
	})

	t.Run("nil store surfaces a typed error", func(t *testing.T) {
		service := NewService(getTestBlacklistConfig(), nil, nil)

		err := service.Add("access-token", time.Hour)
		testutils.AssertErrorType(t, ErrStoreNotConfigured, err)

		_, err = service.IsBlacklisted("access-token")
		testutils.AssertErrorType(t, ErrStoreNotConfigured, err)

		_, err = service.PruneExpiredTokens()
		testutils.AssertErrorType(t, ErrStoreNotConfigured, err)
	})
}
