package runlock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockHeld is returned when another owner holds the lock.
var ErrLockHeld = errors.New("lock held by another process")

const lockPrefix = "docsync:lock:"

// Locker acquires and releases named locks.
type Locker interface {
	Acquire(ctx context.Context, name string, ttl time.Duration) error
	Release(ctx context.Context, name string) error
}

// RedisLock implements Locker using Redis SETNX with TTL. The owner ID
// guards against releasing a lock another process took over after expiry.
type RedisLock struct {
	client  *redis.Client
	ownerID string
}

var _ Locker = (*RedisLock)(nil)

// NewRedisLock creates a lock bound to client.
func NewRedisLock(client *redis.Client) *RedisLock {
	hostname, _ := os.Hostname()
	return &RedisLock{
		client:  client,
		ownerID: fmt.Sprintf("%s:%d:%s", hostname, os.Getpid(), uuid.NewString()),
	}
}

// NewRedisLockFromURL parses a redis:// URL and returns a lock using a new
// client.
func NewRedisLockFromURL(url string) (*RedisLock, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return NewRedisLock(redis.NewClient(opts)), nil
}

// Acquire takes the lock or returns ErrLockHeld.
func (l *RedisLock) Acquire(ctx context.Context, name string, ttl time.Duration) error {
	ok, err := l.client.SetNX(ctx, lockPrefix+name, l.ownerID, ttl).Result()
	if err != nil {
		return fmt.Errorf("acquire lock %s: %w", name, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrLockHeld, name)
	}
	return nil
}

var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// Release deletes the lock if this instance still owns it. Releasing a
// lock that expired or was never held is not an error.
func (l *RedisLock) Release(ctx context.Context, name string) error {
	_, err := releaseScript.Run(ctx, l.client, []string{lockPrefix + name}, l.ownerID).Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("release lock %s: %w", name, err)
	}
	return nil
}

var extendScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("pexpire", KEYS[1], ARGV[2])
	else
		return 0
	end
`)

// Extend resets the TTL of a lock this instance holds.
func (l *RedisLock) Extend(ctx context.Context, name string, ttl time.Duration) error {
	result, err := extendScript.Run(ctx, l.client, []string{lockPrefix + name}, l.ownerID, ttl.Milliseconds()).Int64()
	if err != nil {
		return fmt.Errorf("extend lock %s: %w", name, err)
	}
	if result == 0 {
		return fmt.Errorf("lock %s not held by this instance", name)
	}
	return nil
}

// OwnerID identifies this lock holder.
func (l *RedisLock) OwnerID() string {
	return l.ownerID
}

// Close closes the underlying client.
func (l *RedisLock) Close() error {
	return l.client.Close()
}

// Hold acquires the lock and keeps extending it every ttl/2 until the
// returned release func is called.
func (l *RedisLock) Hold(ctx context.Context, name string, ttl time.Duration) (func(), error) {
	if err := l.Acquire(ctx, name, ttl); err != nil {
		return nil, err
	}

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(ttl / 2)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := l.Extend(ctx, name, ttl); err != nil {
					slog.WarnContext(ctx, "failed to extend run lock", "lock", name, "error", err)
				}
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			wg.Wait()
			if err := l.Release(context.WithoutCancel(ctx), name); err != nil {
				slog.WarnContext(ctx, "failed to release run lock", "lock", name, "error", err)
			}
		})
	}, nil
}
