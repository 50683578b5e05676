package syncer

import (
	"context"
	"strings"
	"time"

	"maintdeck/cache"
	"maintdeck/upstream"
)

// Equipment is owned by the asset registry and changes rarely; cache
// searches for longer than operational data.
const equipmentStaleAfter = 5 * time.Minute

// SearchEquipment looks up equipment by tag fragment. Disabled until the
// operator has typed something.
func (s *Syncer) SearchEquipment(ctx context.Context, keyword string) QueryResult[[]upstream.Equipment] {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return disabled[[]upstream.Equipment]()
	}
	res := s.cache.Get(ctx, equipmentSearchKey(keyword), func(ctx context.Context) (any, error) {
		items, err := s.client.SearchEquipment(ctx, keyword)
		if err != nil {
			return nil, err
		}
		return items, nil
	}, s.queryOpts(equipmentStaleAfter))
	return typed[[]upstream.Equipment](res)
}

func (s *Syncer) Equipment(ctx context.Context, tag string) QueryResult[*upstream.Equipment] {
	if tag == "" {
		return disabled[*upstream.Equipment]()
	}
	res := s.cache.Get(ctx, cache.NewKey("equipment", "detail", tag), func(ctx context.Context) (any, error) {
		item, err := s.client.GetEquipment(ctx, tag)
		if err != nil {
			return nil, err
		}
		return item, nil
	}, s.queryOpts(equipmentStaleAfter))
	return typed[*upstream.Equipment](res)
}
