package cache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stockflow/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced clock
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newClockedStore(t *testing.T) (*InMemoryIdempotencyStore, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)}
	store := NewInMemoryIdempotencyStore(WithClock(clock.Now))
	t.Cleanup(func() { _ = store.Close() })
	return store, clock
}

func TestInMemoryIdempotencyStore_Claims(t *testing.T) {
	ctx := context.Background()

	t.Run("first claim wins, second is refused", func(t *testing.T) {
		store, _ := newClockedStore(t)

		claimed, err := store.MarkProcessed(ctx, "scan-1", time.Hour)
		require.NoError(t, err)
		assert.True(t, claimed)

		claimed, err = store.MarkProcessed(ctx, "scan-1", time.Hour)
		require.NoError(t, err)
		assert.False(t, claimed)

		held, err := store.IsProcessed(ctx, "scan-1")
		require.NoError(t, err)
		assert.True(t, held)
	})

	t.Run("expired claim can be taken again", func(t *testing.T) {
		store, clock := newClockedStore(t)

		_, _ = store.MarkProcessed(ctx, "scan-2", time.Minute)
		clock.Advance(time.Minute)

		held, _ := store.IsProcessed(ctx, "scan-2")
		assert.False(t, held)

		claimed, err := store.MarkProcessed(ctx, "scan-2", time.Minute)
		require.NoError(t, err)
		assert.True(t, claimed)
	})

	t.Run("released claim can be retried", func(t *testing.T) {
		store, _ := newClockedStore(t)

		_, _ = store.MarkProcessed(ctx, "scan-3", time.Hour)
		require.NoError(t, store.Release(ctx, "scan-3"))
		require.NoError(t, store.Release(ctx, "never-claimed"))

		claimed, err := store.MarkProcessed(ctx, "scan-3", time.Hour)
		require.NoError(t, err)
		assert.True(t, claimed)
	})
}

func TestInMemoryIdempotencyStore_Sweep(t *testing.T) {
	ctx := context.Background()
	store, clock := newClockedStore(t)

	_, _ = store.MarkProcessed(ctx, "short", time.Second)
	_, _ = store.MarkProcessed(ctx, "long", time.Hour)
	require.Equal(t, 2, store.Size())

	clock.Advance(time.Minute)
	store.sweep()

	assert.Equal(t, 1, store.Size())
	held, _ := store.IsProcessed(ctx, "long")
	assert.True(t, held)
}

func TestInMemoryIdempotencyStore_SweepLoop(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Now()}
	store := newInMemoryStore(10*time.Millisecond, WithClock(clock.Now))
	defer store.Close()

	_, _ = store.MarkProcessed(ctx, "scan", time.Second)
	clock.Advance(2 * time.Second)

	testutil.AssertEventually(t, func() bool { return store.Size() == 0 },
		time.Second, 10*time.Millisecond, "expired claim should be swept")
}

func TestInMemoryIdempotencyStore_SweepLoopKeepsLiveClaims(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Now()}
	store := newInMemoryStore(5*time.Millisecond, WithClock(clock.Now))
	defer store.Close()

	_, _ = store.MarkProcessed(ctx, "in-flight", 30*time.Second)
	clock.Advance(29 * time.Second)

	testutil.AssertNever(t, func() bool { return store.Size() == 0 },
		100*time.Millisecond, 5*time.Millisecond, "a claim inside its lease must survive sweeps")
	held, err := store.IsProcessed(ctx, "in-flight")
	require.NoError(t, err)
	assert.True(t, held)
}

func TestInMemoryIdempotencyStore_ConcurrentClaims(t *testing.T) {
	ctx := context.Background()
	store, _ := newClockedStore(t)

	const workers = 50
	var (
		wg   sync.WaitGroup
		wins atomic.Int32
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if ok, _ := store.MarkProcessed(ctx, "same-scan", time.Hour); ok {
				wins.Add(1)
			}
			_, _ = store.MarkProcessed(ctx, fmt.Sprintf("scan-%d", i), time.Hour)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	assert.Equal(t, workers+1, store.Size())
}

func TestInMemoryIdempotencyStore_Close(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}
