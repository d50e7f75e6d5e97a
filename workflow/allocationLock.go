package workflow

import (
	"context"
	"errors"
	"time"

	"github.com/bsm/redislock"
	"github.com/sirupsen/logrus"
)

// AllocationLock serialises identifier allocation across processes. Acquire blocks until the
// lock is held or fails; the returned release func must be called once the transaction ends.
type AllocationLock interface {
	Acquire(ctx context.Context) (release func(), err error)
}

const orderCommitLockKey = "lock:scm:order-commit"

// RedisAllocationLock holds one redislock for the whole order commit, which covers both the
// POID and the DeliveryID allocation.
type RedisAllocationLock struct {
	Locker *redislock.Client
	Logger *logrus.Logger
	Key    string
	TTL    time.Duration
	Wait   time.Duration
}

func NewRedisAllocationLock(locker *redislock.Client, logger *logrus.Logger) *RedisAllocationLock {
	return &RedisAllocationLock{
		Locker: locker,
		Logger: logger,
		Key:    orderCommitLockKey,
		TTL:    30 * time.Second,
		Wait:   5 * time.Second,
	}
}

func (l *RedisAllocationLock) Acquire(ctx context.Context) (func(), error) {
	backoff := 50 * time.Millisecond
	opts := &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(backoff), int(l.Wait/backoff)),
	}
	lock, err := l.Locker.Obtain(ctx, l.Key, l.TTL, opts)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrAllocationLockBusy
	} else if err != nil {
		return nil, err
	}

	return func() {
		// The commit context may already be cancelled; the lock must still be released.
		if releaseErr := lock.Release(context.Background()); releaseErr != nil && l.Logger != nil {
			l.Logger.WithFields(logrus.Fields{
				"field": "OrderCommit",
				"key":   l.Key,
			}).Warn("failed to release allocation lock: " + releaseErr.Error())
		}
	}, nil
}
