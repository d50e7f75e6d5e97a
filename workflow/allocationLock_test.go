package workflow

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/bsm/redislock"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Needs a reachable Redis: REDIS_ADDRESS=localhost:6379 go test ./workflow/...
func newTestLocker(t *testing.T) *redislock.Client {
	t.Helper()
	addr := os.Getenv("REDIS_ADDRESS")
	if addr == "" {
		t.Skip("REDIS_ADDRESS not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(context.Background()).Err())
	return redislock.New(client)
}

func TestRedisAllocationLock_IsExclusive(t *testing.T) {
	locker := newTestLocker(t)
	first := NewRedisAllocationLock(locker, nil)
	first.Key = "lock:scm:test:" + uuid.NewString()
	second := *first
	second.Wait = 100 * time.Millisecond

	release, err := first.Acquire(context.Background())
	require.NoError(t, err)

	_, err = second.Acquire(context.Background())
	assert.ErrorIs(t, err, ErrAllocationLockBusy)
	kind, _ := ClassifyError(err)
	assert.Equal(t, ErrorKindTransactionConflict, kind)

	release()
	releaseAgain, err := second.Acquire(context.Background())
	require.NoError(t, err)
	releaseAgain()
}

func TestCommit_WithRedisAllocationLock(t *testing.T) {
	locker := newTestLocker(t)
	db := newTestDB(t)
	c, _ := newTestCommitter(t, db)
	lock := NewRedisAllocationLock(locker, c.Logger)
	lock.Key = "lock:scm:test:" + uuid.NewString()
	c.Lock = lock

	result, err := c.Commit(context.Background(), sampleInput(2))
	require.NoError(t, err)
	assert.Equal(t, 1, result.POID)

	// released after commit
	release, err := lock.Acquire(context.Background())
	require.NoError(t, err)
	release()
}
