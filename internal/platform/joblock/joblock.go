// Package joblock provides a best-effort distributed lock so that only
// one replica runs a given background job per tick. Losing the lock is
// never fatal. The issuance and sweep jobs are idempotent re-runs, so
// the lock only suppresses duplicate work, it does not guarantee
// exclusion.
package joblock

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Locker acquires named job locks with a TTL.
type Locker struct {
	client redis.UniversalClient
	owner  string
}

// New builds a Locker. owner identifies this replica in the lock value
// so a holder only releases its own lock.
func New(client redis.UniversalClient, owner string) *Locker {
	return &Locker{client: client, owner: owner}
}

// Acquire takes the named lock for ttl. It returns false when another
// replica already holds it.
func (l *Locker) Acquire(ctx context.Context, job string, ttl time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, key(job), l.owner, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire job lock %s: %w", job, err)
	}
	return ok, nil
}

// releaseScript deletes the lock only when this replica still owns it,
// so an expired-and-reacquired lock is never released out from under
// the new holder.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// Release frees the named lock if this replica holds it.
func (l *Locker) Release(ctx context.Context, job string) error {
	if err := releaseScript.Run(ctx, l.client, []string{key(job)}, l.owner).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("release job lock %s: %w", job, err)
	}
	return nil
}

func key(job string) string {
	return "keypulse:joblock:" + job
}
