package syncer

import (
	"context"
	"encoding/json"

	"maintdeck/cache"
	"maintdeck/upstream"
)

// WarmFromSnapshots seeds the landing-page queries from the snapshot store
// so a restarted gateway renders immediately. Warmed entries load stale and
// are revalidated on first access.
func (s *Syncer) WarmFromSnapshots(ctx context.Context) {
	warmed := 0
	warmed += warmKey[[]upstream.MaintenanceEvent](ctx, s, eventsListKey(EventFilters{}))
	warmed += warmKey[[]upstream.Inspection](ctx, s, inspectionsListKey(InspectionFilters{All: true}))
	if warmed > 0 {
		s.log.WithField("keys", warmed).Info("cache warmed from snapshots")
	}
}

func warmKey[T any](ctx context.Context, s *Syncer, key cache.Key) int {
	raw, ok := s.cache.LoadSnapshot(ctx, key)
	if !ok {
		return 0
	}
	var data T
	if err := json.Unmarshal(raw, &data); err != nil {
		s.log.WithField("key", key.String()).WithError(err).Debug("discarding unreadable snapshot")
		return 0
	}
	s.cache.Warm(key, data)
	return 1
}
