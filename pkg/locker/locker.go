// Package locker provides distributed locking so periodic jobs run on one
// service instance at a time.
package locker

import (
	"context"
	"sync"
	"time"
)

// DistributedLocker provides lock capabilities across multiple instances.
// Implementations must be safe for concurrent use.
type DistributedLocker interface {
	// Acquire tries once to take the lock. It returns false, not an error,
	// when another holder has it. The lock expires after ttl if not released.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release gives up a lock this instance holds. Releasing a lock held
	// elsewhere, or already expired, is a no-op.
	Release(ctx context.Context, key string) error
}

// WithLock runs fn while holding key. It reports false without calling fn
// when the lock is held elsewhere.
func WithLock(ctx context.Context, l DistributedLocker, key string, ttl time.Duration, fn func(context.Context) error) (bool, error) {
	acquired, err := l.Acquire(ctx, key, ttl)
	if err != nil || !acquired {
		return false, err
	}
	defer func() { _ = l.Release(context.WithoutCancel(ctx), key) }()

	return true, fn(ctx)
}

// LocalLocker is an in-process DistributedLocker for single-instance deployments.
type LocalLocker struct {
	mu    sync.Mutex
	held  map[string]time.Time
	clock func() time.Time
}

// NewLocalLocker creates a new LocalLocker.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(map[string]time.Time), clock: time.Now}
}

// Acquire takes key unless an unexpired holder has it.
func (l *LocalLocker) Acquire(_ context.Context, key string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	if until, ok := l.held[key]; ok && now.Before(until) {
		return false, nil
	}
	l.held[key] = now.Add(ttl)
	return true, nil
}

// Release drops key.
func (l *LocalLocker) Release(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, key)
	return nil
}
