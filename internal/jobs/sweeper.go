package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	sweepLockKey = "wishlist:sweep"
	sweepLockTTL = 5 * time.Minute
)

// WishSweeper applies due automatic transitions to every stored wish.
type WishSweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// Locker guards a sweep so only one instance runs it at a time.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (release func(), ok bool, err error)
}

// NoLock always acquires; used when no Redis is configured.
type NoLock struct{}

func (NoLock) TryLock(context.Context, string, time.Duration) (func(), bool, error) {
	return func() {}, true, nil
}

var unlockScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`)

// RedisLock is a SET NX lock with an owner token, released only by its owner.
type RedisLock struct {
	Client *redis.Client
}

func (l RedisLock) TryLock(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	token := uuid.NewString()
	ok, err := l.Client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, false, nil
	}
	release := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := unlockScript.Run(ctx, l.Client, []string{key}, token).Err(); err != nil {
			logrus.WithError(err).WithField("key", key).Warn("Failed to release lock")
		}
	}
	return release, true, nil
}

type Sweeper struct {
	Service WishSweeper
	Lock    Locker
}

// NewSweeper creates a sweeper; a nil redis client means no cross-instance lock.
func NewSweeper(service WishSweeper, client *redis.Client) *Sweeper {
	var lock Locker = NoLock{}
	if client != nil {
		lock = RedisLock{Client: client}
	}
	return &Sweeper{Service: service, Lock: lock}
}

// RunSweep evaluates every wish once so due transitions reach the store
// even when nobody reads the list.
func (s *Sweeper) RunSweep(ctx context.Context) error {
	release, ok, err := s.Lock.TryLock(ctx, sweepLockKey, sweepLockTTL)
	if err != nil {
		return err
	}
	if !ok {
		logrus.Debug("Sweep already running elsewhere, skipping")
		return nil
	}
	defer release()

	start := time.Now()
	n, err := s.Service.Sweep(ctx)
	if err != nil {
		return fmt.Errorf("sweep wishes: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"transitions": n,
		"duration":    time.Since(start).String(),
	}).Info("Sweep completed")
	return nil
}
