package joblock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocker(t *testing.T, owner string) (*Locker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client, owner), mr
}

func TestAcquireRelease(t *testing.T) {
	ctx := context.Background()
	locker, mr := newLocker(t, "replica-1")

	ok, err := locker.Acquire(ctx, "sweep", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	// Same replica cannot double-acquire while held.
	ok, err = locker.Acquire(ctx, "sweep", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, locker.Release(ctx, "sweep"))

	ok, err = locker.Acquire(ctx, "sweep", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	_ = mr
}

func TestContention(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	clientA := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	clientB := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = clientA.Close(); _ = clientB.Close() })

	lockerA := New(clientA, "replica-a")
	lockerB := New(clientB, "replica-b")

	ok, err := lockerA.Acquire(ctx, "issue", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = lockerB.Acquire(ctx, "issue", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "second replica must not get the lock")

	// Releasing someone else's lock is a no-op.
	require.NoError(t, lockerB.Release(ctx, "issue"))
	ok, err = lockerB.Acquire(ctx, "issue", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "lock still held by the original owner")
}

func TestExpiredLockReacquired(t *testing.T) {
	ctx := context.Background()
	locker, mr := newLocker(t, "replica-1")

	ok, err := locker.Acquire(ctx, "sweep", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Second)

	ok, err = locker.Acquire(ctx, "sweep", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "expired lock is free to take")
}

func TestJobsAreIndependent(t *testing.T) {
	ctx := context.Background()
	locker, _ := newLocker(t, "replica-1")

	ok, err := locker.Acquire(ctx, "sweep", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = locker.Acquire(ctx, "issue", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "different jobs use different keys")
}
