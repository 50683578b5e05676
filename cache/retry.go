package cache

import (
	"context"
	"time"
)

// fetchWithRetry runs a fetch with bounded exponential backoff. The delay
// before retry n is RetryBase<<(n-1), capped at RetryCap. The Retryable
// classifier short-circuits permanent failures (401, 404, malformed bodies).
func (c *Cache) fetchWithRetry(ctx context.Context, key Key, fetch Fetcher, opts QueryOptions) (any, error) {
	retries := opts.Retry
	if retries == 0 {
		retries = c.retry
	}
	if retries == NoRetry {
		retries = 0
	}

	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			delay := backoffDelay(opts.RetryBase, opts.RetryCap, attempt)
			c.log.WithField("key", key.String()).
				WithField("attempt", attempt).
				WithField("delay", delay).
				Debug("retrying fetch")
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-c.clock.After(delay):
			}
		}
		data, err := fetch(ctx)
		if err == nil {
			return data, nil
		}
		lastErr = err
		if opts.Retryable != nil && !opts.Retryable(err) {
			break
		}
	}
	return nil, lastErr
}

// backoffDelay computes the wait before retry attempt n (1-based):
// base, 2*base, 4*base, ... capped.
func backoffDelay(base, cap time.Duration, attempt int) time.Duration {
	if base <= 0 {
		base = time.Second
	}
	if cap <= 0 {
		cap = 30 * time.Second
	}
	delay := base << (attempt - 1)
	if delay > cap || delay <= 0 {
		delay = cap
	}
	return delay
}
