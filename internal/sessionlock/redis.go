package sessionlock

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const defaultPrefix = "mines:session-lock:"

// Redis locks keys across every server sharing one Redis.
type Redis struct {
	locker *redsync.Redsync
	prefix string
	expiry time.Duration
}

// NewRedis returns a locker whose locks expire after expiry unless released,
// so a crashed holder cannot wedge a session.
func NewRedis(client redis.UniversalClient, expiry time.Duration) *Redis {
	return &Redis{
		locker: redsync.New(goredis.NewPool(client)),
		prefix: defaultPrefix,
		expiry: expiry,
	}
}

func (r *Redis) Lock(ctx context.Context, key string) (Unlock, error) {
	mutex := r.locker.NewMutex(
		r.prefix+key,
		redsync.WithExpiry(r.expiry),
		redsync.WithTries(64),
		redsync.WithRetryDelay(25*time.Millisecond),
	)
	if err := mutex.LockContext(ctx); err != nil {
		return nil, fmt.Errorf("unable to lock session %s: %w", key, err)
	}
	return func() {
		ok, err := mutex.Unlock()
		if err != nil || !ok {
			Log.WithFields(logrus.Fields{
				"key":   key,
				"error": err,
			}).Warn("unable to release session lock")
		}
	}, nil
}
