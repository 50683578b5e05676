package syncer

import (
	"time"

	"github.com/sirupsen/logrus"

	"maintdeck/cache"
	"maintdeck/upstream"
)

// Notifier receives mutation outcomes for user display. notify.Center
// satisfies it; tests plug in a spy.
type Notifier interface {
	Success(title, message string)
	Error(title string, err error)
}

type nopNotifier struct{}

func (nopNotifier) Success(string, string) {}
func (nopNotifier) Error(string, error)    {}

// Syncer binds the maintenance entities to the query cache: it declares the
// key for every read, the invalidation fan for every write, and the
// staleness/retry policy per entity.
type Syncer struct {
	client *upstream.Client
	cache  *cache.Cache
	notify Notifier
	log    *logrus.Entry
}

func New(client *upstream.Client, c *cache.Cache, notifier Notifier) *Syncer {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &Syncer{
		client: client,
		cache:  c,
		notify: notifier,
		log:    logrus.WithField("component", "syncer"),
	}
}

func (s *Syncer) Cache() *cache.Cache { return s.cache }

// queryOpts is the shared read policy: bounded retry with the upstream
// error classifier. Entity bindings override StaleAfter where the data
// churns faster or slower than the default.
func (s *Syncer) queryOpts(staleAfter time.Duration) cache.QueryOptions {
	return cache.QueryOptions{
		StaleAfter: staleAfter,
		Retryable:  upstream.Retryable,
	}
}

// QueryResult is the typed view of a cache read handed to the web layer.
type QueryResult[T any] struct {
	Data      T
	Err       error
	Loading   bool
	Stale     bool
	UpdatedAt time.Time
}

// typed converts an untyped cache result. A type mismatch can only come
// from a programming error (two bindings sharing a key), so it surfaces
// loudly instead of silently returning zero data.
func typed[T any](res cache.Result) QueryResult[T] {
	out := QueryResult[T]{
		Err:       res.Err,
		Loading:   res.State == cache.StateLoading,
		Stale:     res.Stale,
		UpdatedAt: res.UpdatedAt,
	}
	if res.Data != nil {
		data, ok := res.Data.(T)
		if !ok {
			logrus.Errorf("cache type mismatch: key holds %T", res.Data)
			return out
		}
		out.Data = data
	}
	return out
}

// disabled is returned when a query's enabled predicate fails (e.g. an
// inspections list with no scope). No fetch is issued.
func disabled[T any]() QueryResult[T] {
	return QueryResult[T]{}
}
