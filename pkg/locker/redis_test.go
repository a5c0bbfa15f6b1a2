package locker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testLockKey = "cache-warm"

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return client, mr
}

func TestRedisLocker_Acquire(t *testing.T) {
	client, mr := setupTestRedis(t)
	locker := NewRedisLocker(client, "discovery", zap.NewNop())

	acquired, err := locker.Acquire(context.Background(), testLockKey, 5*time.Second)

	require.NoError(t, err)
	assert.True(t, acquired)
	assert.True(t, mr.Exists("discovery:lock:"+testLockKey))
}

func TestRedisLocker_AlreadyHeld(t *testing.T) {
	client, _ := setupTestRedis(t)
	first := NewRedisLocker(client, "discovery", zap.NewNop())
	second := NewRedisLocker(client, "discovery", zap.NewNop())
	ctx := context.Background()

	acquired, err := first.Acquire(ctx, testLockKey, 5*time.Second)
	require.NoError(t, err)
	require.True(t, acquired)

	acquired, _ = second.Acquire(ctx, testLockKey, 5*time.Second)
	assert.False(t, acquired)

	require.NoError(t, first.Release(ctx, testLockKey))
	acquired, err = second.Acquire(ctx, testLockKey, 5*time.Second)
	require.NoError(t, err)
	assert.True(t, acquired)
}

func TestRedisLocker_ExpiresWithoutRelease(t *testing.T) {
	client, mr := setupTestRedis(t)
	first := NewRedisLocker(client, "discovery", zap.NewNop())
	second := NewRedisLocker(client, "discovery", zap.NewNop())
	ctx := context.Background()

	acquired, err := first.Acquire(ctx, testLockKey, 2*time.Second)
	require.NoError(t, err)
	require.True(t, acquired)

	mr.FastForward(3 * time.Second)

	acquired, err = second.Acquire(ctx, testLockKey, 2*time.Second)
	require.NoError(t, err)
	assert.True(t, acquired)
}

func TestRedisLocker_ReleaseNotOwned(t *testing.T) {
	client, _ := setupTestRedis(t)
	owner := NewRedisLocker(client, "discovery", zap.NewNop())
	other := NewRedisLocker(client, "discovery", zap.NewNop())
	ctx := context.Background()

	acquired, err := owner.Acquire(ctx, testLockKey, 5*time.Second)
	require.NoError(t, err)
	require.True(t, acquired)

	require.NoError(t, other.Release(ctx, testLockKey))

	// the owner still holds it
	acquired, _ = other.Acquire(ctx, testLockKey, 5*time.Second)
	assert.False(t, acquired)
}

func TestRedisLocker_ConcurrentAcquisition(t *testing.T) {
	client, _ := setupTestRedis(t)

	const instances = 8
	var wins atomic.Int32
	var wg sync.WaitGroup
	for range instances {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l := NewRedisLocker(client, "discovery", zap.NewNop())
			if ok, _ := l.Acquire(context.Background(), testLockKey, 5*time.Second); ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}

func TestLocalLocker(t *testing.T) {
	l := NewLocalLocker()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	l.clock = func() time.Time { return now }
	ctx := context.Background()

	acquired, err := l.Acquire(ctx, testLockKey, time.Minute)
	require.NoError(t, err)
	assert.True(t, acquired)

	acquired, _ = l.Acquire(ctx, testLockKey, time.Minute)
	assert.False(t, acquired)

	now = now.Add(time.Minute)
	acquired, _ = l.Acquire(ctx, testLockKey, time.Minute)
	assert.True(t, acquired)

	require.NoError(t, l.Release(ctx, testLockKey))
	acquired, _ = l.Acquire(ctx, testLockKey, time.Minute)
	assert.True(t, acquired)
}

func TestWithLock(t *testing.T) {
	l := NewLocalLocker()
	ctx := context.Background()

	ran, err := WithLock(ctx, l, testLockKey, time.Minute, func(context.Context) error {
		// held while fn runs
		acquired, _ := l.Acquire(ctx, testLockKey, time.Minute)
		assert.False(t, acquired)
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)

	// released afterwards, and fn errors are returned
	boom := errors.New("boom")
	ran, err = WithLock(ctx, l, testLockKey, time.Minute, func(context.Context) error { return boom })
	assert.True(t, ran)
	assert.ErrorIs(t, err, boom)

	// skipped while held elsewhere
	_, _ = l.Acquire(ctx, testLockKey, time.Minute)
	ran, err = WithLock(ctx, l, testLockKey, time.Minute, func(context.Context) error {
		t.Fatal("must not run")
		return nil
	})
	require.NoError(t, err)
	assert.False(t, ran)
}
