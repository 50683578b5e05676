package syncer

// Entity names used by backend change notices.
const (
	EntityEvent      = "maintenance_event"
	EntitySubEvent   = "maintenance_sub_event"
	EntityInspection = "inspection"
	EntityReport     = "daily_report"
	EntityEquipment  = "equipment"
)

// InvalidateEntity marks every key touched by an externally-reported change
// stale. parentID scopes child collections: the event for a sub-event or
// inspection, the inspection for a report. Unknown entities are ignored.
func (s *Syncer) InvalidateEntity(entity string, id, parentID int64) {
	switch entity {
	case EntityEvent:
		if id > 0 {
			s.cache.Invalidate(eventDetailKey(id))
		}
		s.cache.Invalidate(eventsKey())
	case EntitySubEvent:
		if id > 0 {
			s.cache.Invalidate(subEventDetailKey(id))
		}
		if parentID > 0 {
			s.cache.Invalidate(eventDetailKey(parentID))
		} else {
			s.cache.Invalidate(eventsKey())
		}
	case EntityInspection:
		if id > 0 {
			s.cache.Invalidate(inspectionDetailKey(id))
		}
		s.cache.Invalidate(inspectionsKey())
		if parentID > 0 {
			s.cache.Invalidate(eventDetailKey(parentID))
		}
	case EntityReport:
		if id > 0 {
			s.cache.Invalidate(reportDetailKey(id))
		}
		if parentID > 0 {
			s.cache.Invalidate(reportsListKey(parentID))
		}
	case EntityEquipment:
		s.cache.Invalidate(equipmentRootKey())
	default:
		s.log.WithField("entity", entity).Debug("ignoring change notice for unknown entity")
	}
}
