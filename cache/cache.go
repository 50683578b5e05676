package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// State is the per-key query lifecycle.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateSuccess
	StateError
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	default:
		return "idle"
	}
}

// Fetcher loads the value for a key from the backend.
type Fetcher func(ctx context.Context) (any, error)

// QueryOptions tune one key's staleness and resilience policy.
type QueryOptions struct {
	// StaleAfter overrides the cache-wide staleness window when > 0.
	StaleAfter time.Duration
	// Retry is the maximum retry count after the first attempt. Zero means
	// the cache default; NoRetry disables retries.
	Retry int
	// RetryBase is the first backoff delay (default 1s). Delays double per
	// attempt and are capped at RetryCap (default 30s).
	RetryBase time.Duration
	RetryCap  time.Duration
	// Retryable classifies errors. Nil retries everything.
	Retryable func(error) bool
}

// NoRetry disables the retry loop for a query (used by mutations and
// one-shot lookups).
const NoRetry = -1

// Result is what a read returns to its caller.
type Result struct {
	Data      any
	Err       error
	State     State
	Stale     bool
	UpdatedAt time.Time
}

// SnapshotStore persists successful query results so a restarted gateway can
// warm its cache. Implementations are best-effort: errors are logged, never
// propagated to readers.
type SnapshotStore interface {
	Save(ctx context.Context, key string, data []byte) error
	Load(ctx context.Context, key string) ([]byte, bool, error)
}

type entry struct {
	key         Key
	state       State
	data        any
	hasData     bool
	err         error
	updatedAt   time.Time
	lastAccess  time.Time
	forcedStale bool
	seq         uint64
	subscribers int
	fetch       Fetcher
	opts        QueryOptions
	gate        chan struct{} // serializes optimistic writes to this key
}

// restorePoint captures everything an optimistic rollback must put back.
type restorePoint struct {
	data        any
	hasData     bool
	state       State
	err         error
	updatedAt   time.Time
	forcedStale bool
}

// Options configure a Cache.
type Options struct {
	Clock         Clock
	StaleAfter    time.Duration
	InactiveAfter time.Duration
	Retry         int
	Snapshots     SnapshotStore
}

// Cache is the process-wide query cache. All dashboard reads go through it;
// it guarantees one in-flight fetch per key and that a late response never
// overwrites data from a fetch issued after it.
type Cache struct {
	mu        sync.Mutex
	entries   map[string]*entry
	group     singleflight.Group
	clock     Clock
	stale     time.Duration
	inactive  time.Duration
	retry     int
	snapshots SnapshotStore
	log       *logrus.Entry

	stopGC chan struct{}
	gcOnce sync.Once
}

func New(opts Options) *Cache {
	if opts.Clock == nil {
		opts.Clock = SystemClock
	}
	if opts.StaleAfter == 0 {
		opts.StaleAfter = 30 * time.Second
	}
	if opts.InactiveAfter == 0 {
		opts.InactiveAfter = 5 * time.Minute
	}
	if opts.Retry == 0 {
		opts.Retry = 3
	}
	return &Cache{
		entries:   make(map[string]*entry),
		clock:     opts.Clock,
		stale:     opts.StaleAfter,
		inactive:  opts.InactiveAfter,
		retry:     opts.Retry,
		snapshots: opts.Snapshots,
		log:       logrus.WithField("component", "cache"),
		stopGC:    make(chan struct{}),
	}
}

func (c *Cache) ensureLocked(key Key) *entry {
	ks := key.String()
	e, ok := c.entries[ks]
	if !ok {
		e = &entry{key: key, state: StateIdle, gate: make(chan struct{}, 1)}
		c.entries[ks] = e
	}
	return e
}

func (c *Cache) isStaleLocked(e *entry) bool {
	if e.forcedStale {
		return true
	}
	window := e.opts.StaleAfter
	if window <= 0 {
		window = c.stale
	}
	return c.clock.Now().Sub(e.updatedAt) >= window
}

func (c *Cache) resultLocked(e *entry) Result {
	return Result{
		Data:      e.data,
		Err:       e.err,
		State:     e.state,
		Stale:     e.hasData && c.isStaleLocked(e),
		UpdatedAt: e.updatedAt,
	}
}

// Get returns the cached value for key, fetching when the slot is empty and
// revalidating in the background when it is stale. Fresh hits never touch
// the network. Concurrent gets for one key share a single fetch.
func (c *Cache) Get(ctx context.Context, key Key, fetch Fetcher, opts QueryOptions) Result {
	c.mu.Lock()
	e := c.ensureLocked(key)
	e.lastAccess = c.clock.Now()
	e.fetch = fetch
	e.opts = opts

	if e.hasData {
		res := c.resultLocked(e)
		stale := c.isStaleLocked(e)
		c.mu.Unlock()
		if stale {
			go c.refreshInBackground(key, fetch, opts)
		}
		return res
	}
	c.mu.Unlock()

	data, err := c.doFetch(ctx, key, fetch, opts, false)
	return c.resultAfterFetch(key, data, err)
}

// Refetch forces a fresh fetch regardless of staleness. Any in-flight fetch
// for the key stops mattering: its response can no longer commit.
func (c *Cache) Refetch(ctx context.Context, key Key, fetch Fetcher, opts QueryOptions) Result {
	c.mu.Lock()
	e := c.ensureLocked(key)
	e.lastAccess = c.clock.Now()
	e.fetch = fetch
	e.opts = opts
	c.mu.Unlock()

	data, err := c.doFetch(ctx, key, fetch, opts, true)
	return c.resultAfterFetch(key, data, err)
}

func (c *Cache) resultAfterFetch(key Key, data any, err error) Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key.String()]; ok {
		res := c.resultLocked(e)
		// A newer fetch may have committed after ours; prefer the entry, but
		// surface our own failure to the caller who triggered it.
		if err != nil && res.Err == nil && !e.hasData {
			res.Err = err
			res.State = StateError
		}
		return res
	}
	if err != nil {
		return Result{Err: err, State: StateError}
	}
	return Result{Data: data, State: StateSuccess, UpdatedAt: c.clock.Now()}
}

// Peek returns the cached result without fetching or touching access time.
func (c *Cache) Peek(key Key) (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key.String()]
	if !ok || (!e.hasData && e.state == StateIdle) {
		return Result{}, false
	}
	return c.resultLocked(e), true
}

func (c *Cache) refreshInBackground(key Key, fetch Fetcher, opts QueryOptions) {
	if _, err := c.doFetch(context.Background(), key, fetch, opts, false); err != nil {
		c.log.WithField("key", key.String()).WithError(err).Warn("background refresh failed")
	}
}

// doFetch deduplicates concurrent fetches per key. force breaks the caller
// out of any in-flight round so a brand-new fetch is issued.
func (c *Cache) doFetch(ctx context.Context, key Key, fetch Fetcher, opts QueryOptions, force bool) (any, error) {
	ks := key.String()
	if force {
		c.mu.Lock()
		if e, ok := c.entries[ks]; ok {
			e.seq++ // retire any in-flight response
		}
		c.mu.Unlock()
		c.group.Forget(ks)
	}
	v, err, _ := c.group.Do(ks, func() (any, error) {
		seq := c.beginFetch(key)
		data, ferr := c.fetchWithRetry(ctx, key, fetch, opts)
		c.commit(key, seq, data, ferr)
		if ferr != nil {
			return nil, ferr
		}
		return data, nil
	})
	return v, err
}

func (c *Cache) beginFetch(key Key) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.ensureLocked(key)
	e.seq++
	if !e.hasData {
		e.state = StateLoading
	}
	return e.seq
}

// commit installs a fetch outcome unless a newer fetch was issued for the
// key while this one was in flight.
func (c *Cache) commit(key Key, seq uint64, data any, err error) {
	c.mu.Lock()
	e, ok := c.entries[key.String()]
	if !ok || e.seq != seq {
		c.mu.Unlock()
		c.log.WithField("key", key.String()).Debug("discarding superseded response")
		return
	}
	if err != nil {
		e.state = StateError
		e.err = err
		c.mu.Unlock()
		return
	}
	e.data = data
	e.hasData = true
	e.err = nil
	e.state = StateSuccess
	e.updatedAt = c.clock.Now()
	e.forcedStale = false
	c.mu.Unlock()

	if c.snapshots != nil {
		go c.saveSnapshot(key, data)
	}
}

func (c *Cache) saveSnapshot(key Key, data any) {
	raw, err := json.Marshal(data)
	if err != nil {
		return
	}
	if err := c.snapshots.Save(context.Background(), key.String(), raw); err != nil {
		c.log.WithField("key", key.String()).WithError(err).Debug("snapshot save failed")
	}
}

// LoadSnapshot returns the persisted raw value for a key, if any.
func (c *Cache) LoadSnapshot(ctx context.Context, key Key) ([]byte, bool) {
	if c.snapshots == nil {
		return nil, false
	}
	raw, ok, err := c.snapshots.Load(ctx, key.String())
	if err != nil {
		c.log.WithField("key", key.String()).WithError(err).Debug("snapshot load failed")
		return nil, false
	}
	return raw, ok
}

// Warm seeds a key with a persisted value. Warmed data is installed stale so
// the first reader revalidates against the backend before trusting it.
func (c *Cache) Warm(key Key, data any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.ensureLocked(key)
	if e.hasData {
		return
	}
	e.data = data
	e.hasData = true
	e.state = StateSuccess
	e.updatedAt = c.clock.Now()
	e.forcedStale = true
}

// SetData writes a value directly into the cache as fresh. Used when a
// mutation response is authoritative for a key.
func (c *Cache) SetData(key Key, data any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.ensureLocked(key)
	e.data = data
	e.hasData = true
	e.err = nil
	e.state = StateSuccess
	e.updatedAt = c.clock.Now()
	e.forcedStale = false
}

// Invalidate marks every entry at or under prefix stale and refetches the
// ones with live subscribers. Returns the number of entries touched.
func (c *Cache) Invalidate(prefix Key) int {
	type refetchTarget struct {
		key   Key
		fetch Fetcher
		opts  QueryOptions
	}
	var targets []refetchTarget

	c.mu.Lock()
	n := 0
	for _, e := range c.entries {
		if !e.key.HasPrefix(prefix) {
			continue
		}
		e.forcedStale = true
		n++
		if e.subscribers > 0 && e.fetch != nil {
			targets = append(targets, refetchTarget{key: e.key, fetch: e.fetch, opts: e.opts})
		}
	}
	c.mu.Unlock()

	for _, t := range targets {
		go c.refreshInBackground(t.key, t.fetch, t.opts)
	}
	return n
}

// CancelInflight retires any in-flight fetch for key: its response will be
// discarded and the next reader starts a fresh fetch.
func (c *Cache) CancelInflight(key Key) {
	c.mu.Lock()
	if e, ok := c.entries[key.String()]; ok {
		e.seq++
	}
	c.mu.Unlock()
	c.group.Forget(key.String())
}

// Subscribe registers interest in a key so invalidations trigger refetches
// and GC leaves it alone. The returned func unsubscribes.
func (c *Cache) Subscribe(key Key) func() {
	c.mu.Lock()
	e := c.ensureLocked(key)
	e.subscribers++
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			if e, ok := c.entries[key.String()]; ok && e.subscribers > 0 {
				e.subscribers--
				e.lastAccess = c.clock.Now()
			}
			c.mu.Unlock()
		})
	}
}

// RunGC drops unobserved entries idle past the inactive window.
func (c *Cache) RunGC() int {
	now := c.clock.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for ks, e := range c.entries {
		if e.subscribers > 0 || e.state == StateLoading {
			continue
		}
		if now.Sub(e.lastAccess) > c.inactive {
			delete(c.entries, ks)
			removed++
		}
	}
	return removed
}

// StartGC sweeps on the given interval until Stop.
func (c *Cache) StartGC(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-c.stopGC:
				return
			case <-ticker.C:
				if n := c.RunGC(); n > 0 {
					c.log.WithField("removed", n).Debug("cache gc")
				}
			}
		}
	}()
}

func (c *Cache) Stop() {
	c.gcOnce.Do(func() { close(c.stopGC) })
}

// EntryStat is a diagnostics view of one cache slot.
type EntryStat struct {
	Key         string    `json:"key"`
	State       string    `json:"state"`
	Stale       bool      `json:"stale"`
	Subscribers int       `json:"subscribers"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Stats lists all live entries for the diagnostics endpoint.
func (c *Cache) Stats() []EntryStat {
	c.mu.Lock()
	defer c.mu.Unlock()
	stats := make([]EntryStat, 0, len(c.entries))
	for _, e := range c.entries {
		stats = append(stats, EntryStat{
			Key:         e.key.String(),
			State:       e.state.String(),
			Stale:       e.hasData && c.isStaleLocked(e),
			Subscribers: e.subscribers,
			UpdatedAt:   e.updatedAt,
		})
	}
	return stats
}
