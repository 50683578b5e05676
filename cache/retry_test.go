package cache

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maintdeck/upstream"
)

func TestRetryPolicyTransientFailure(t *testing.T) {
	clk := newFakeClock()
	c := newTestCache(clk)
	key := NewKey("events", "list", "all")

	var calls atomic.Int32
	fetch := func(ctx context.Context) (any, error) {
		calls.Add(1)
		return nil, &upstream.APIError{Status: http.StatusInternalServerError, Message: "boom"}
	}

	res := c.Get(context.Background(), key, fetch, QueryOptions{
		Retry:     3,
		Retryable: upstream.Retryable,
	})

	assert.Equal(t, StateError, res.State)
	assert.Equal(t, int32(4), calls.Load(), "1 initial attempt + 3 retries")
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}, clk.Delays())
}

func TestRetryPolicyNeverRetriesAuthErrors(t *testing.T) {
	clk := newFakeClock()
	c := newTestCache(clk)
	key := NewKey("events", "list", "all")

	var calls atomic.Int32
	fetch := func(ctx context.Context) (any, error) {
		calls.Add(1)
		return nil, &upstream.APIError{Status: http.StatusUnauthorized, Message: "token expired"}
	}

	res := c.Get(context.Background(), key, fetch, QueryOptions{
		Retry:     3,
		Retryable: upstream.Retryable,
	})

	assert.Equal(t, StateError, res.State)
	assert.Equal(t, int32(1), calls.Load(), "401 is permanent, no retries")
	assert.Empty(t, clk.Delays())
}

func TestRetryPolicyNeverRetriesNotFound(t *testing.T) {
	clk := newFakeClock()
	c := newTestCache(clk)

	var calls atomic.Int32
	fetch := func(ctx context.Context) (any, error) {
		calls.Add(1)
		return nil, &upstream.APIError{Status: http.StatusNotFound, Message: "no such event"}
	}

	c.Get(context.Background(), NewKey("events", "detail", "9"), fetch, QueryOptions{
		Retry:     3,
		Retryable: upstream.Retryable,
	})
	assert.Equal(t, int32(1), calls.Load())
}

func TestRetrySucceedsMidway(t *testing.T) {
	clk := newFakeClock()
	c := newTestCache(clk)

	var calls atomic.Int32
	fetch := func(ctx context.Context) (any, error) {
		if calls.Add(1) < 3 {
			return nil, &upstream.APIError{Status: http.StatusBadGateway, Message: "flaky"}
		}
		return "recovered", nil
	}

	res := c.Get(context.Background(), NewKey("reports", "list", "5"), fetch, QueryOptions{
		Retry:     3,
		Retryable: upstream.Retryable,
	})
	require.NoError(t, res.Err)
	assert.Equal(t, "recovered", res.Data)
	assert.Equal(t, int32(3), calls.Load())
}

func TestBackoffDelayCaps(t *testing.T) {
	assert.Equal(t, time.Second, backoffDelay(0, 0, 1))
	assert.Equal(t, 2*time.Second, backoffDelay(0, 0, 2))
	assert.Equal(t, 4*time.Second, backoffDelay(0, 0, 3))
	assert.Equal(t, 16*time.Second, backoffDelay(0, 0, 5))
	assert.Equal(t, 30*time.Second, backoffDelay(0, 0, 6), "32s is capped at 30s")
	assert.Equal(t, 30*time.Second, backoffDelay(0, 0, 40), "shift overflow falls back to cap")
}
