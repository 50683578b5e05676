package cache

import "context"

// MutationCall performs one backend write and returns the server's
// authoritative value. Mutations never retry.
type MutationCall func(ctx context.Context) (any, error)

// Mutate runs a write and, on success, invalidates every key whose data the
// write could have changed. The caller decides the invalidation fan.
func (c *Cache) Mutate(ctx context.Context, call MutationCall, invalidates ...Key) (any, error) {
	data, err := call(ctx)
	if err != nil {
		return nil, err
	}
	for _, key := range invalidates {
		c.Invalidate(key)
	}
	return data, nil
}

// MutateOptimistic writes a predicted value for key before the backend
// confirms it, then reconciles. The sequence is:
//
//  1. retire any in-flight fetch for the key, so a resolving read cannot
//     overwrite the optimistic value,
//  2. snapshot the slot,
//  3. install apply(current),
//  4. on success install the server value and invalidate the fan,
//  5. on failure restore the snapshot exactly as it was.
//
// Optimistic writes to the same key are serialized on the entry's gate: a
// second writer blocks until the first settles, so its snapshot is always a
// consistent pre-write value and rollbacks cannot clobber each other.
func (c *Cache) MutateOptimistic(ctx context.Context, key Key, apply func(current any) any, call MutationCall, invalidates ...Key) (any, error) {
	c.mu.Lock()
	e := c.ensureLocked(key)
	gate := e.gate
	c.mu.Unlock()

	select {
	case gate <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-gate }()

	c.CancelInflight(key)

	c.mu.Lock()
	e = c.ensureLocked(key)
	snap := restorePoint{
		data:        e.data,
		hasData:     e.hasData,
		state:       e.state,
		err:         e.err,
		updatedAt:   e.updatedAt,
		forcedStale: e.forcedStale,
	}
	e.data = apply(e.data)
	e.hasData = true
	e.err = nil
	e.state = StateSuccess
	c.mu.Unlock()

	data, err := call(ctx)
	if err != nil {
		c.mu.Lock()
		if e, ok := c.entries[key.String()]; ok {
			e.data = snap.data
			e.hasData = snap.hasData
			e.state = snap.state
			e.err = snap.err
			e.updatedAt = snap.updatedAt
			e.forcedStale = snap.forcedStale
		}
		c.mu.Unlock()
		return nil, err
	}

	c.SetData(key, data)
	for _, k := range invalidates {
		c.Invalidate(k)
	}
	return data, nil
}
