package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// MemberLocker serializes mutating operations on a single member's
// wallet+level state. Claims, transfers and the self-income job all take the
// member's lock before their read-modify-write sequence.
type MemberLocker interface {
	// Lock blocks until the member's lock is held or ctx is done.
	// The returned func releases the lock.
	Lock(ctx context.Context, memberID uint) (func(), error)
}

// LocalLocker is a process-local keyed lock. Sufficient for a single
// instance; multi-instance deployments use RedisLocker.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[uint]*entry
}

// entry is a channel-based mutex so acquisition can race ctx cancellation.
type entry struct {
	ch   chan struct{}
	refs int
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[uint]*entry)}
}

func (l *LocalLocker) Lock(ctx context.Context, memberID uint) (func(), error) {
	l.mu.Lock()
	e, ok := l.locks[memberID]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		l.locks[memberID] = e
	}
	e.refs++
	l.mu.Unlock()

	release := func() {
		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.locks, memberID)
		}
		l.mu.Unlock()
	}

	select {
	case e.ch <- struct{}{}:
		return func() {
			<-e.ch
			release()
		}, nil
	case <-ctx.Done():
		release()
		return nil, ctx.Err()
	}
}

// RedisLocker takes a SETNX lease per member. Covers claims racing across
// multiple server instances and against background jobs.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
	retry  time.Duration
}

func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{client: client, ttl: 10 * time.Second, retry: 50 * time.Millisecond}
}

func (l *RedisLocker) Lock(ctx context.Context, memberID uint) (func(), error) {
	key := fmt.Sprintf("lock:member:%d", memberID)
	token := fmt.Sprintf("%d", time.Now().UnixNano())
	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			return func() {
				// Release only our own lease.
				val, err := l.client.Get(context.Background(), key).Result()
				if err == nil && val == token {
					l.client.Del(context.Background(), key)
				}
			}, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retry):
		}
	}
}
