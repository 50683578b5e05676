package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(clk Clock) *Cache {
	return New(Options{
		Clock:         clk,
		StaleAfter:    30 * time.Second,
		InactiveAfter: 5 * time.Minute,
	})
}

// countingFetcher returns val and counts invocations.
func countingFetcher(val any, calls *atomic.Int32) Fetcher {
	return func(ctx context.Context) (any, error) {
		calls.Add(1)
		return val, nil
	}
}

func TestGetFetchesOnceWhileFresh(t *testing.T) {
	clk := newFakeClock()
	c := newTestCache(clk)
	key := NewKey("events", "list", "all")

	var calls atomic.Int32
	fetch := countingFetcher([]string{"overhaul"}, &calls)

	res := c.Get(context.Background(), key, fetch, QueryOptions{})
	require.NoError(t, res.Err)
	assert.Equal(t, StateSuccess, res.State)
	assert.Equal(t, []string{"overhaul"}, res.Data)

	// Fresh hit: served synchronously from the cache.
	res = c.Get(context.Background(), key, fetch, QueryOptions{})
	assert.Equal(t, []string{"overhaul"}, res.Data)
	assert.False(t, res.Stale)
	assert.Equal(t, int32(1), calls.Load())
}

func TestStaleHitServesCachedAndRevalidates(t *testing.T) {
	clk := newFakeClock()
	c := newTestCache(clk)
	key := NewKey("events", "detail", "7")

	var calls atomic.Int32
	res := c.Get(context.Background(), key, countingFetcher("v1", &calls), QueryOptions{})
	require.NoError(t, res.Err)

	clk.Advance(31 * time.Second)

	res = c.Get(context.Background(), key, countingFetcher("v2", &calls), QueryOptions{})
	assert.Equal(t, "v1", res.Data, "stale hit returns cached value synchronously")
	assert.True(t, res.Stale)

	require.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, time.Millisecond)
	require.Eventually(t, func() bool {
		r, ok := c.Peek(key)
		return ok && r.Data == "v2" && !r.Stale
	}, time.Second, time.Millisecond)
}

func TestConcurrentGetsDeduplicate(t *testing.T) {
	clk := newFakeClock()
	c := newTestCache(clk)
	key := NewKey("inspections", "list", "all")

	var calls atomic.Int32
	release := make(chan struct{})
	fetch := func(ctx context.Context) (any, error) {
		calls.Add(1)
		<-release
		return "shared", nil
	}

	var wg sync.WaitGroup
	results := make([]Result, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = c.Get(context.Background(), key, fetch, QueryOptions{})
		}(i)
	}

	// Let both goroutines reach the fetch before releasing it.
	require.Eventually(t, func() bool { return calls.Load() >= 1 }, time.Second, time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load(), "exactly one network request for concurrent gets")
	assert.Equal(t, "shared", results[0].Data)
	assert.Equal(t, results[0].Data, results[1].Data)
}

func TestRefetchSupersedesInflightResponse(t *testing.T) {
	clk := newFakeClock()
	c := newTestCache(clk)
	key := NewKey("events", "detail", "3")

	slowStarted := make(chan struct{})
	slowRelease := make(chan struct{})
	slow := func(ctx context.Context) (any, error) {
		close(slowStarted)
		<-slowRelease
		return "old", nil
	}
	fast := func(ctx context.Context) (any, error) { return "new", nil }

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.Get(context.Background(), key, slow, QueryOptions{})
	}()
	<-slowStarted

	res := c.Refetch(context.Background(), key, fast, QueryOptions{})
	require.NoError(t, res.Err)
	assert.Equal(t, "new", res.Data)

	// The older request resolves after the newer one: its response must not
	// overwrite the fresher data.
	close(slowRelease)
	<-done

	got, ok := c.Peek(key)
	require.True(t, ok)
	assert.Equal(t, "new", got.Data)
}

func TestInvalidatePrefixMarksDescendantsStale(t *testing.T) {
	clk := newFakeClock()
	c := newTestCache(clk)

	var calls atomic.Int32
	listKey := NewKey("inspections", "list", Filters{"maintenance_event_id": "7"}.Segment())
	detailKey := NewKey("inspections", "detail", "42")
	eventKey := NewKey("events", "detail", "7")

	for _, k := range []Key{listKey, detailKey, eventKey} {
		res := c.Get(context.Background(), k, countingFetcher("x", &calls), QueryOptions{})
		require.NoError(t, res.Err)
	}

	n := c.Invalidate(NewKey("inspections"))
	assert.Equal(t, 2, n)

	for _, k := range []Key{listKey, detailKey} {
		r, ok := c.Peek(k)
		require.True(t, ok)
		assert.True(t, r.Stale, "descendant %s must be stale", k)
	}
	r, ok := c.Peek(eventKey)
	require.True(t, ok)
	assert.False(t, r.Stale, "unrelated key must stay fresh")
}

func TestInvalidateRefetchesSubscribedKeys(t *testing.T) {
	clk := newFakeClock()
	c := newTestCache(clk)
	key := NewKey("events", "list", "all")

	var calls atomic.Int32
	res := c.Get(context.Background(), key, countingFetcher("v", &calls), QueryOptions{})
	require.NoError(t, res.Err)

	unsubscribe := c.Subscribe(key)
	defer unsubscribe()

	c.Invalidate(NewKey("events"))
	require.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, time.Millisecond)

	require.Eventually(t, func() bool {
		r, ok := c.Peek(key)
		return ok && !r.Stale
	}, time.Second, time.Millisecond)
}

func TestInvalidateLeavesUnobservedKeysStale(t *testing.T) {
	clk := newFakeClock()
	c := newTestCache(clk)
	key := NewKey("events", "list", "all")

	var calls atomic.Int32
	c.Get(context.Background(), key, countingFetcher("v", &calls), QueryOptions{})

	c.Invalidate(NewKey("events"))
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load(), "no subscriber, no refetch")

	r, ok := c.Peek(key)
	require.True(t, ok)
	assert.True(t, r.Stale)
}

func TestGCRemovesInactiveEntries(t *testing.T) {
	clk := newFakeClock()
	c := newTestCache(clk)

	var calls atomic.Int32
	idle := NewKey("equipment", "search", "psv")
	watched := NewKey("events", "list", "all")
	c.Get(context.Background(), idle, countingFetcher("a", &calls), QueryOptions{})
	c.Get(context.Background(), watched, countingFetcher("b", &calls), QueryOptions{})

	unsubscribe := c.Subscribe(watched)
	defer unsubscribe()

	clk.Advance(6 * time.Minute)
	removed := c.RunGC()
	assert.Equal(t, 1, removed)

	_, ok := c.Peek(idle)
	assert.False(t, ok, "inactive entry collected")
	_, ok = c.Peek(watched)
	assert.True(t, ok, "subscribed entry survives")
}

func TestErrorStateCarriesError(t *testing.T) {
	clk := newFakeClock()
	c := newTestCache(clk)
	key := NewKey("events", "detail", "404")

	boom := errors.New("connection refused")
	fetch := func(ctx context.Context) (any, error) { return nil, boom }

	res := c.Get(context.Background(), key, fetch, QueryOptions{Retry: NoRetry})
	assert.Equal(t, StateError, res.State)
	assert.ErrorIs(t, res.Err, boom)
}

func TestWarmDataIsStale(t *testing.T) {
	clk := newFakeClock()
	c := newTestCache(clk)
	key := NewKey("events", "list", "all")

	c.Warm(key, "persisted")
	r, ok := c.Peek(key)
	require.True(t, ok)
	assert.Equal(t, "persisted", r.Data)
	assert.True(t, r.Stale, "warmed data must be revalidated before trust")
}
