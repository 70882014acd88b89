// Package lock provides advisory locks that narrow contention around invoice
// numbering. They are never the source of truth: the unique index on
// invoice_no is.
package lock

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisLocker holds distributed locks in Redis so several API instances
// serialise numbering for the same fiscal year. When Redis cannot grant a lock
// it falls back to a process-local lock on the same key.
type RedisLocker struct {
	client *redislock.Client
	local  *LocalLocker
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisLocker wraps an existing go-redis client.
func NewRedisLocker(rdb *redis.Client, ttl time.Duration, log *zap.Logger) *RedisLocker {
	return &RedisLocker{client: redislock.New(rdb), local: NewLocalLocker(), ttl: ttl, log: log.Named("lock")}
}

// Acquire waits for the lock until ctx is done. If Redis cannot grant it the
// caller takes the local lock instead, which still serialises this instance;
// across instances the database constraint decides. The returned release func
// must be called exactly once.
func (l *RedisLocker) Acquire(ctx context.Context, key string) (release func()) {
	opts := &redislock.Options{RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(25*time.Millisecond), int(l.ttl/(25*time.Millisecond)))}
	lk, err := l.client.Obtain(ctx, "lock:"+key, l.ttl, opts)
	if errors.Is(err, redislock.ErrNotObtained) {
		l.log.Warn("could not obtain lock; using local lock", zap.String("key", key))
		return l.local.Acquire(ctx, key)
	}
	if err != nil {
		l.log.Warn("error obtaining lock; using local lock", zap.String("key", key), zap.Error(err))
		return l.local.Acquire(ctx, key)
	}
	return func() {
		// the request context may already be cancelled
		if err := lk.Release(context.Background()); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			l.log.Warn("failed to release lock", zap.String("key", key), zap.Error(err))
		}
	}
}

// LocalLocker serialises holders of the same key within one process.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[string]chan struct{})}
}

// Acquire blocks until the key is free or ctx is done. On ctx expiry the
// caller proceeds unlocked, matching RedisLocker.
func (l *LocalLocker) Acquire(ctx context.Context, key string) (release func()) {
	l.mu.Lock()
	ch, ok := l.locks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		l.locks[key] = ch
	}
	l.mu.Unlock()

	select {
	case ch <- struct{}{}:
		var once sync.Once
		return func() { once.Do(func() { <-ch }) }
	case <-ctx.Done():
		return func() {}
	}
}

// NewRedisClient connects to Redis and pings it once.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}
