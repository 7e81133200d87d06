package cache

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Needs a live server: FITTRACK_TEST_REDIS_URL=redis://localhost:6379/15
func setupRedis(t *testing.T) *RedisKV {
	t.Helper()
	url := os.Getenv("FITTRACK_TEST_REDIS_URL")
	if url == "" {
		t.Skip("FITTRACK_TEST_REDIS_URL not set")
	}
	kv, err := NewRedisKV(context.Background(), url, "fittrack-test:"+uuid.NewString()+":")
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })
	return kv
}

func TestRedisKVRoundTrip(t *testing.T) {
	kv := setupRedis(t)
	ctx := context.Background()

	_, ok, err := kv.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Set(ctx, "a", "1"))
	require.NoError(t, kv.Set(ctx, "b", "2"))

	val, ok, err := kv.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1", val)

	require.NoError(t, kv.Remove(ctx, "a", "b"))
	_, ok, err = kv.Get(ctx, "b")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewRedisKVBadURL(t *testing.T) {
	_, err := NewRedisKV(context.Background(), "not a url", "")
	assert.Error(t, err)
}
