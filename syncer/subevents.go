package syncer

import (
	"context"
	"fmt"

	"maintdeck/upstream"
)

// SubEvents lists the children of a maintenance event. Disabled until a
// parent id is known.
func (s *Syncer) SubEvents(ctx context.Context, parentEventID int64) QueryResult[[]upstream.MaintenanceSubEvent] {
	if parentEventID <= 0 {
		return disabled[[]upstream.MaintenanceSubEvent]()
	}
	res := s.cache.Get(ctx, subEventsKey(parentEventID), func(ctx context.Context) (any, error) {
		subs, err := s.client.ListSubEvents(ctx, parentEventID)
		if err != nil {
			return nil, err
		}
		return subs, nil
	}, s.queryOpts(0))
	return typed[[]upstream.MaintenanceSubEvent](res)
}

func (s *Syncer) SubEvent(ctx context.Context, id int64) QueryResult[*upstream.MaintenanceSubEvent] {
	if id <= 0 {
		return disabled[*upstream.MaintenanceSubEvent]()
	}
	res := s.cache.Get(ctx, subEventDetailKey(id), func(ctx context.Context) (any, error) {
		sub, err := s.client.GetSubEvent(ctx, id)
		if err != nil {
			return nil, err
		}
		return sub, nil
	}, s.queryOpts(0))
	return typed[*upstream.MaintenanceSubEvent](res)
}

type CreateSubEventInput struct {
	ParentEventID    int64  `json:"parentEventId"`
	Title            string `json:"title"`
	PlannedStartDate string `json:"plannedStartDate"`
	PlannedEndDate   string `json:"plannedEndDate"`
}

type UpdateSubEventInput struct {
	Title                *string  `json:"title"`
	PlannedStartDate     *string  `json:"plannedStartDate"`
	PlannedEndDate       *string  `json:"plannedEndDate"`
	CompletionPercentage *float64 `json:"completionPercentage"`
}

// subEventFan invalidates everything a sub-event write can touch: the
// sub-event itself, the parent's sub-event list and detail (child counts),
// and the events lists.
func (s *Syncer) subEventFan(sub *upstream.MaintenanceSubEvent) {
	s.cache.Invalidate(subEventDetailKey(sub.ID))
	s.cache.Invalidate(eventsKey())
}

func (s *Syncer) CreateSubEvent(ctx context.Context, in CreateSubEventInput) (*upstream.MaintenanceSubEvent, error) {
	sub, err := s.client.CreateSubEvent(ctx, &upstream.CreateSubEventRequest{
		ParentEventID:    in.ParentEventID,
		Title:            in.Title,
		PlannedStartDate: in.PlannedStartDate,
		PlannedEndDate:   in.PlannedEndDate,
	})
	if err != nil {
		s.notify.Error("Failed to create sub-event", err)
		return nil, err
	}
	s.subEventFan(sub)
	s.notify.Success("Sub-event created", sub.Title)
	return sub, nil
}

func (s *Syncer) UpdateSubEvent(ctx context.Context, id int64, in UpdateSubEventInput) (*upstream.MaintenanceSubEvent, error) {
	sub, err := s.client.UpdateSubEvent(ctx, id, &upstream.UpdateSubEventRequest{
		Title:                in.Title,
		PlannedStartDate:     in.PlannedStartDate,
		PlannedEndDate:       in.PlannedEndDate,
		CompletionPercentage: in.CompletionPercentage,
	})
	if err != nil {
		s.notify.Error("Failed to update sub-event", err)
		return nil, err
	}
	s.subEventFan(sub)
	s.notify.Success("Sub-event updated", sub.Title)
	return sub, nil
}

func (s *Syncer) DeleteSubEvent(ctx context.Context, id int64) error {
	if err := s.client.DeleteSubEvent(ctx, id); err != nil {
		s.notify.Error("Failed to delete sub-event", err)
		return err
	}
	s.cache.Invalidate(subEventDetailKey(id))
	s.cache.Invalidate(eventsKey())
	s.cache.Invalidate(inspectionsKey())
	s.notify.Success("Sub-event deleted", fmt.Sprintf("Sub-event #%d removed", id))
	return nil
}

// TransitionSubEvent mirrors the event lifecycle on a child.
func (s *Syncer) TransitionSubEvent(ctx context.Context, id int64, action EventAction) (*upstream.MaintenanceSubEvent, error) {
	call := map[EventAction]func(context.Context, int64) (*upstream.MaintenanceSubEvent, error){
		ActionStart:      s.client.StartSubEvent,
		ActionComplete:   s.client.CompleteSubEvent,
		ActionApprove:    s.client.ApproveSubEvent,
		ActionRevert:     s.client.RevertSubEvent,
		ActionReactivate: s.client.ReactivateSubEvent,
	}[action]
	if call == nil {
		return nil, fmt.Errorf("unknown sub-event action %q", action)
	}

	sub, err := call(ctx, id)
	if err != nil {
		s.notify.Error(fmt.Sprintf("Failed to %s sub-event", action), err)
		return nil, err
	}
	s.subEventFan(sub)
	s.notify.Success("Sub-event status updated", fmt.Sprintf("%s is now %s", sub.Title, sub.Status))
	return sub, nil
}
