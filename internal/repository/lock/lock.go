// Package lock serializes spreadsheet synchronization across requests and
// replicas.
package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrBusy is returned when the lock could not be obtained within the wait bound.
var ErrBusy = errors.New("sync lock busy")

// ReleaseFunc gives the lock back. It is safe to call once.
type ReleaseFunc func(ctx context.Context) error

// Locker grants exclusive ownership of a named lock.
type Locker interface {
	Acquire(ctx context.Context, name string, wait time.Duration) (ReleaseFunc, error)
}

const retryInterval = 50 * time.Millisecond

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// refreshScript extends the key only while it still holds our token.
var refreshScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// RedisLocker implements Locker with SET NX PX and a per-holder token. The key
// is re-armed every ttl/3 while held, so ttl only bounds how long a crashed
// holder blocks others.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisLocker builds a Locker whose keys expire after ttl if never released.
func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &RedisLocker{client: client, ttl: ttl}
}

// Acquire polls until the key is free or wait elapses.
func (l *RedisLocker) Acquire(ctx context.Context, name string, wait time.Duration) (ReleaseFunc, error) {
	token := uuid.NewString()
	deadline := time.Now().Add(wait)

	for {
		ok, err := l.client.SetNX(ctx, name, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire %s: %w", name, err)
		}
		if ok {
			stop := l.keepAlive(name, token)
			var once sync.Once
			return func(ctx context.Context) error {
				once.Do(stop)
				if err := releaseScript.Run(ctx, l.client, []string{name}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
					return fmt.Errorf("release %s: %w", name, err)
				}
				return nil
			}, nil
		}

		if !time.Now().Before(deadline) {
			return nil, ErrBusy
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryInterval):
		}
	}
}

// keepAlive refreshes the key until the returned stop func is called or the
// token is no longer ours.
func (l *RedisLocker) keepAlive(name, token string) func() {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(l.ttl / 3)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				held, err := refreshScript.Run(ctx, l.client, []string{name}, token, l.ttl.Milliseconds()).Int()
				if err != nil && ctx.Err() != nil {
					return
				}
				if err == nil && held == 0 {
					return
				}
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}

// LocalLocker implements Locker inside a single process.
type LocalLocker struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

// NewLocalLocker returns an empty process-local Locker.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{slots: make(map[string]chan struct{})}
}

func (l *LocalLocker) slot(name string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	ch, ok := l.slots[name]
	if !ok {
		ch = make(chan struct{}, 1)
		l.slots[name] = ch
	}
	return ch
}

// Acquire blocks until the named slot is free, wait elapses or ctx ends.
func (l *LocalLocker) Acquire(ctx context.Context, name string, wait time.Duration) (ReleaseFunc, error) {
	ch := l.slot(name)
	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case ch <- struct{}{}:
	case <-timer.C:
		return nil, ErrBusy
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	var once sync.Once
	return func(context.Context) error {
		once.Do(func() { <-ch })
		return nil
	}, nil
}
