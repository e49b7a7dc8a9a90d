package acestudy

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests need a live Redis; set REDIS_TEST_ADDR to run them.
func openTestRedis(t *testing.T) *RedisAttemptStore {
	t.Helper()
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	store, err := NewRedisAttemptStore(context.Background(), addr, time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRedisAttemptStore(t *testing.T) {
	ctx := context.Background()
	store := openTestRedis(t)
	a := testAttempt()

	require.NoError(t, store.Create(ctx, a))
	t.Cleanup(func() { store.Delete(ctx, a.ID) })

	got, err := store.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.State, got.State)
	assert.Equal(t, a.Context, got.Context)

	p := got.Resume(got.StartedAt)
	p.SelectOption(2)
	got.Record(p)
	require.NoError(t, store.Save(ctx, got))

	ttl, err := store.client.TTL(ctx, attemptKeyPrefix+a.ID).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	got, err = store.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.State.UserAnswers[0])

	require.NoError(t, store.Delete(ctx, a.ID))
	_, err = store.Get(ctx, a.ID)
	assert.ErrorIs(t, err, ErrAttemptNotFound)
	assert.ErrorIs(t, store.Save(ctx, a), ErrAttemptNotFound)
}
