// Package lock 基于 Redis 的简单分布式互斥锁
package lock

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrNotAcquired = errors.New("lock: not acquired")

// 只有持有者才能释放
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

type Locker struct {
	rdb *redis.Client
}

func NewLocker(rdb *redis.Client) *Locker {
	return &Locker{rdb: rdb}
}

type Lock struct {
	rdb   *redis.Client
	key   string
	token string
}

// TryAcquire SET NX PX，已被占用时返回 ErrNotAcquired
func (l *Locker) TryAcquire(ctx context.Context, key string, ttl time.Duration) (*Lock, error) {
	token, err := newToken()
	if err != nil {
		return nil, err
	}
	ok, err := l.rdb.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotAcquired
	}
	return &Lock{rdb: l.rdb, key: key, token: token}, nil
}

// Acquire 轮询直到拿到锁或 ctx 结束
func (l *Locker) Acquire(ctx context.Context, key string, ttl, retryInterval time.Duration) (*Lock, error) {
	ticker := time.NewTicker(retryInterval)
	defer ticker.Stop()
	for {
		lk, err := l.TryAcquire(ctx, key, ttl)
		if err == nil {
			return lk, nil
		}
		if !errors.Is(err, ErrNotAcquired) {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (lk *Lock) Release(ctx context.Context) error {
	_, err := releaseScript.Run(ctx, lk.rdb, []string{lk.key}, lk.token).Result()
	return err
}

func (lk *Lock) Key() string {
	return lk.key
}

func newToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
