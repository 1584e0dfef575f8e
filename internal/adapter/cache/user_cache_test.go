package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	domain "user-resource-service/internal/domain/user"
)

func setupTestCache(t *testing.T, ttl time.Duration) (UserCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisUserCache(client, ttl, zaptest.NewLogger(t)), mr
}

func TestRedisUserCache_SetAndGet(t *testing.T) {
	c, _ := setupTestCache(t, 5*time.Minute)
	ctx := context.Background()

	u := &domain.User{ID: 1, Name: "Alice", Email: "a@x.com"}
	require.NoError(t, c.Set(ctx, u))

	got, err := c.Get(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, u.Name, got.Name)
	assert.Equal(t, u.Email, got.Email)
}

func TestRedisUserCache_GetMiss(t *testing.T) {
	c, _ := setupTestCache(t, 5*time.Minute)

	got, err := c.Get(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisUserCache_SetNilUser(t *testing.T) {
	c, _ := setupTestCache(t, 5*time.Minute)

	err := c.Set(context.Background(), nil)
	assert.Error(t, err)
}

func TestRedisUserCache_Delete(t *testing.T) {
	c, _ := setupTestCache(t, 5*time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, &domain.User{ID: 1, Name: "Alice", Email: "a@x.com"}))
	require.NoError(t, c.Delete(ctx, 1))

	got, err := c.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, got)

	// Deleting an absent key is not an error
	assert.NoError(t, c.Delete(ctx, 42))
}

func TestRedisUserCache_TTLExpiry(t *testing.T) {
	c, mr := setupTestCache(t, time.Second)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, &domain.User{ID: 1, Name: "Alice", Email: "a@x.com"}))

	mr.FastForward(2 * time.Second)

	got, err := c.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, got)
}
