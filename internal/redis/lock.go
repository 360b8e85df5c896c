package redisclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	ErrLockNotAcquired = errors.New("technician lock not acquired")
)

// Locker guards the booking write path so that two concurrent requests for
// the same technician cannot both pass the overlap check and insert.
type Locker interface {
	WithTechnicianLock(ctx context.Context, technicianID uuid.UUID, start time.Time, fn func(ctx context.Context) error) error
}

type redisTechnicianLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisTechnicianLocker creates a locker keyed per technician and
// calendar date. One key per day keeps the key space small while still
// serializing every write that could overlap.
func NewRedisTechnicianLocker(client *redis.Client, ttl time.Duration) Locker {
	return &redisTechnicianLocker{
		client: client,
		ttl:    ttl,
	}
}

func (l *redisTechnicianLocker) WithTechnicianLock(ctx context.Context, technicianID uuid.UUID, start time.Time, fn func(ctx context.Context) error) error {
	key := fmt.Sprintf("lock:technician:%s:%s", technicianID.String(), start.Format("2006-01-02"))
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return fmt.Errorf("acquire technician lock: %w", err)
	}
	if !ok {
		return ErrLockNotAcquired
	}

	defer func() {
		_ = l.release(ctx, key, token)
	}()

	ctxWithTimeout, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()

	return fn(ctxWithTimeout)
}

var unlockScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if val == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`)

func (l *redisTechnicianLocker) release(ctx context.Context, key, token string) error {
	_, err := unlockScript.Run(ctx, l.client, []string{key}, token).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release technician lock: %w", err)
	}
	return nil
}
