package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cstaulbee/quickscope/internal/adapters/redis"
)

func newLockClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	return mr, backend.NewClient(&backend.Options{Addr: mr.Addr()})
}

func TestLocker_LockUnlock(t *testing.T) {
	mr, client := newLockClient(t)
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "session1", 5*time.Second)
	require.NoError(t, err)
	assert.True(t, mr.Exists("test:lock:session1"))

	require.NoError(t, unlock(ctx))
	assert.False(t, mr.Exists("test:lock:session1"))
}

func TestLocker_Contention(t *testing.T) {
	_, client := newLockClient(t)
	locker1 := redis.NewLocker(client, "test:")
	locker2 := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlock1, err := locker1.Lock(ctx, "shared", 5*time.Second)
	require.NoError(t, err)

	// The second locker must block until its context times out.
	ctxTimeout, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	_, err = locker2.Lock(ctxTimeout, "shared", 5*time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, unlock1(ctx))

	unlock2, err := locker2.Lock(ctx, "shared", 5*time.Second)
	require.NoError(t, err)
	require.NoError(t, unlock2(ctx))
}

func TestLocker_StaleUnlockIsNoop(t *testing.T) {
	mr, client := newLockClient(t)
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlock1, err := locker.Lock(ctx, "session1", 50*time.Millisecond)
	require.NoError(t, err)

	// Simulate expiry and re-acquisition by another holder.
	mr.FastForward(100 * time.Millisecond)
	unlock2, err := locker.Lock(ctx, "session1", 5*time.Second)
	require.NoError(t, err)

	// The stale unlock must not release the new holder's lock.
	require.NoError(t, unlock1(ctx))
	assert.True(t, mr.Exists("test:lock:session1"))

	require.NoError(t, unlock2(ctx))
	assert.False(t, mr.Exists("test:lock:session1"))
}
