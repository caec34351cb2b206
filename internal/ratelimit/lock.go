package ratelimit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

// releaseScript deletes a lease only when the caller still holds it, so a
// replica whose lease expired cannot release a newer holder's lease.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker hands out expiring redis leases. It is best-effort: leases guard
// duplicate background work (catalog seeding, the recount sweep), never
// correctness, so callers may proceed unlocked when redis is unreachable.
type Locker struct {
	client *redis.Client
}

func NewLocker(client *redis.Client) *Locker {
	if client == nil {
		return nil
	}
	return &Locker{client: client}
}

// TryLock takes the named lease for ttl. The returned token proves ownership
// to Release; acquired is false when another holder has the lease.
func (l *Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (token string, acquired bool, err error) {
	if l == nil || l.client == nil {
		return "", false, errors.New("lease redis client is not configured")
	}
	if key == "" || ttl <= 0 {
		return "", false, errors.New("lease needs a key and a positive ttl")
	}

	token = uuid.NewString()
	acquired, err = l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return "", false, err
	}
	if !acquired {
		return "", false, nil
	}
	return token, true, nil
}

// Release gives the lease back. Unknown keys and stale tokens are ignored;
// the lease has already moved on.
func (l *Locker) Release(ctx context.Context, key, token string) error {
	if l == nil || l.client == nil || key == "" || token == "" {
		return nil
	}
	return releaseScript.Run(ctx, l.client, []string{key}, token).Err()
}
