package background

import (
	"context"
	"errors"
	"time"

	"github.com/bsm/redislock"
	"github.com/go-co-op/gocron/v2"
	"github.com/redis/go-redis/v9"
)

const lockPrefix = "storeops:jobs:"

// redisLocker makes a job run on one instance only when several share the same redis.
type redisLocker struct {
	client *redislock.Client
	ttl    time.Duration
}

// NewRedisLocker returns a gocron locker backed by redislock. ttl bounds how long a crashed
// instance can hold a job.
func NewRedisLocker(rdb redis.UniversalClient, ttl time.Duration) gocron.Locker {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &redisLocker{client: redislock.New(rdb), ttl: ttl}
}

func (l *redisLocker) Lock(ctx context.Context, key string) (gocron.Lock, error) {
	lock, err := l.client.Obtain(ctx, lockPrefix+key, l.ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, errors.New("job " + key + " is running on another instance")
	}
	if err != nil {
		return nil, err
	}
	return &redisLock{lock: lock}, nil
}

type redisLock struct {
	lock *redislock.Lock
}

func (l *redisLock) Unlock(ctx context.Context) error {
	err := l.lock.Release(ctx)
	if errors.Is(err, redislock.ErrLockNotHeld) {
		return nil
	}
	return err
}
