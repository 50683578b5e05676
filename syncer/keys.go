package syncer

import (
	"strconv"

	"maintdeck/cache"
)

// Cache key layout. Detail keys are structural descendants of the entity
// root, so invalidating the root reaches every list and detail under it.
//
//	events
//	events/list/<filters>
//	events/detail/<id>
//	events/detail/<id>/sub-events
//	sub-events/detail/<id>
//	inspections
//	inspections/list/<filters>
//	inspections/detail/<id>
//	inspections/detail/<id>/reports
//	reports/detail/<id>
//	equipment/search/<keyword>

func eventsKey() cache.Key { return cache.NewKey("events") }

func eventsListKey(f EventFilters) cache.Key {
	return cache.NewKey("events", "list", f.filters().Segment())
}

func eventDetailKey(id int64) cache.Key {
	return cache.NewKey("events", "detail", strconv.FormatInt(id, 10))
}

func subEventsKey(parentEventID int64) cache.Key {
	return cache.NewKey("events", "detail", strconv.FormatInt(parentEventID, 10), "sub-events")
}

func subEventDetailKey(id int64) cache.Key {
	return cache.NewKey("sub-events", "detail", strconv.FormatInt(id, 10))
}

func inspectionsKey() cache.Key { return cache.NewKey("inspections") }

func inspectionsListKey(f InspectionFilters) cache.Key {
	return cache.NewKey("inspections", "list", f.filters().Segment())
}

func inspectionDetailKey(id int64) cache.Key {
	return cache.NewKey("inspections", "detail", strconv.FormatInt(id, 10))
}

func reportsListKey(inspectionID int64) cache.Key {
	return cache.NewKey("inspections", "detail", strconv.FormatInt(inspectionID, 10), "reports")
}

func reportDetailKey(id int64) cache.Key {
	return cache.NewKey("reports", "detail", strconv.FormatInt(id, 10))
}

func equipmentRootKey() cache.Key { return cache.NewKey("equipment") }

func equipmentSearchKey(keyword string) cache.Key {
	return cache.NewKey("equipment", "search", keyword)
}
