package syncer

import (
	"context"
	"fmt"

	"maintdeck/cache"
	"maintdeck/upstream"
)

// EventFilters is the dashboard-side filter shape (camelCase). filters()
// translates to the server field names used for both the query string and
// the cache key, so key identity follows the backend's vocabulary.
type EventFilters struct {
	Status    string `json:"status"`
	EventType string `json:"eventType"`
	FromDate  string `json:"fromDate"`
	ToDate    string `json:"toDate"`
	Search    string `json:"search"`
}

func (f EventFilters) filters() cache.Filters {
	return cache.Filters{
		"status":     f.Status,
		"event_type": f.EventType,
		"from_date":  f.FromDate,
		"to_date":    f.ToDate,
		"search":     f.Search,
	}
}

func (f EventFilters) upstream() upstream.EventFilters {
	return upstream.EventFilters{
		Status:    f.Status,
		EventType: f.EventType,
		FromDate:  f.FromDate,
		ToDate:    f.ToDate,
		Search:    f.Search,
	}
}

// Events reads the events list through the cache.
func (s *Syncer) Events(ctx context.Context, f EventFilters) QueryResult[[]upstream.MaintenanceEvent] {
	res := s.cache.Get(ctx, eventsListKey(f), func(ctx context.Context) (any, error) {
		events, err := s.client.ListEvents(ctx, f.upstream())
		if err != nil {
			return nil, err
		}
		return events, nil
	}, s.queryOpts(0))
	return typed[[]upstream.MaintenanceEvent](res)
}

// RefetchEvents forces a fresh list regardless of staleness.
func (s *Syncer) RefetchEvents(ctx context.Context, f EventFilters) QueryResult[[]upstream.MaintenanceEvent] {
	res := s.cache.Refetch(ctx, eventsListKey(f), func(ctx context.Context) (any, error) {
		events, err := s.client.ListEvents(ctx, f.upstream())
		if err != nil {
			return nil, err
		}
		return events, nil
	}, s.queryOpts(0))
	return typed[[]upstream.MaintenanceEvent](res)
}

func (s *Syncer) Event(ctx context.Context, id int64) QueryResult[*upstream.MaintenanceEvent] {
	if id <= 0 {
		return disabled[*upstream.MaintenanceEvent]()
	}
	res := s.cache.Get(ctx, eventDetailKey(id), func(ctx context.Context) (any, error) {
		event, err := s.client.GetEvent(ctx, id)
		if err != nil {
			return nil, err
		}
		return event, nil
	}, s.queryOpts(0))
	return typed[*upstream.MaintenanceEvent](res)
}

// CreateEventInput is the dashboard-side create form (camelCase fields).
type CreateEventInput struct {
	Title            string `json:"title"`
	EventType        string `json:"eventType"`
	EventNumber      string `json:"eventNumber"`
	PlannedStartDate string `json:"plannedStartDate"`
	PlannedEndDate   string `json:"plannedEndDate"`
}

func (in CreateEventInput) upstream() *upstream.CreateEventRequest {
	return &upstream.CreateEventRequest{
		Title:            in.Title,
		EventType:        in.EventType,
		EventNumber:      in.EventNumber,
		PlannedStartDate: in.PlannedStartDate,
		PlannedEndDate:   in.PlannedEndDate,
	}
}

type UpdateEventInput struct {
	Title            *string `json:"title"`
	EventType        *string `json:"eventType"`
	PlannedStartDate *string `json:"plannedStartDate"`
	PlannedEndDate   *string `json:"plannedEndDate"`
}

func (in UpdateEventInput) upstream() *upstream.UpdateEventRequest {
	return &upstream.UpdateEventRequest{
		Title:            in.Title,
		EventType:        in.EventType,
		PlannedStartDate: in.PlannedStartDate,
		PlannedEndDate:   in.PlannedEndDate,
	}
}

func (s *Syncer) CreateEvent(ctx context.Context, in CreateEventInput) (*upstream.MaintenanceEvent, error) {
	data, err := s.cache.Mutate(ctx, func(ctx context.Context) (any, error) {
		return s.client.CreateEvent(ctx, in.upstream())
	}, eventsKey())
	if err != nil {
		s.notify.Error("Failed to create maintenance event", err)
		return nil, err
	}
	event := data.(*upstream.MaintenanceEvent)
	s.notify.Success("Maintenance event created", event.Title)
	return event, nil
}

func (s *Syncer) UpdateEvent(ctx context.Context, id int64, in UpdateEventInput) (*upstream.MaintenanceEvent, error) {
	data, err := s.cache.Mutate(ctx, func(ctx context.Context) (any, error) {
		return s.client.UpdateEvent(ctx, id, in.upstream())
	}, eventsKey())
	if err != nil {
		s.notify.Error("Failed to update maintenance event", err)
		return nil, err
	}
	event := data.(*upstream.MaintenanceEvent)
	s.notify.Success("Maintenance event updated", event.Title)
	return event, nil
}

func (s *Syncer) DeleteEvent(ctx context.Context, id int64) error {
	_, err := s.cache.Mutate(ctx, func(ctx context.Context) (any, error) {
		return nil, s.client.DeleteEvent(ctx, id)
	}, eventsKey(), inspectionsKey())
	if err != nil {
		s.notify.Error("Failed to delete maintenance event", err)
		return err
	}
	s.notify.Success("Maintenance event deleted", fmt.Sprintf("Event #%d removed", id))
	return nil
}

// EventAction is a status-transition verb on a maintenance event.
type EventAction string

const (
	ActionStart      EventAction = "start"
	ActionComplete   EventAction = "complete"
	ActionApprove    EventAction = "approve"
	ActionRevert     EventAction = "revert"
	ActionReactivate EventAction = "reactivate"
)

// TransitionEvent drives the event lifecycle. Every transition invalidates
// the whole events subtree: lists carry status columns and the detail
// carries server-computed dates.
func (s *Syncer) TransitionEvent(ctx context.Context, id int64, action EventAction) (*upstream.MaintenanceEvent, error) {
	call := map[EventAction]func(context.Context, int64) (*upstream.MaintenanceEvent, error){
		ActionStart:      s.client.StartEvent,
		ActionComplete:   s.client.CompleteEvent,
		ActionApprove:    s.client.ApproveEvent,
		ActionRevert:     s.client.RevertEvent,
		ActionReactivate: s.client.ReactivateEvent,
	}[action]
	if call == nil {
		return nil, fmt.Errorf("unknown event action %q", action)
	}

	data, err := s.cache.Mutate(ctx, func(ctx context.Context) (any, error) {
		return call(ctx, id)
	}, eventsKey())
	if err != nil {
		s.notify.Error(fmt.Sprintf("Failed to %s event", action), err)
		return nil, err
	}
	event := data.(*upstream.MaintenanceEvent)
	s.notify.Success("Event status updated", fmt.Sprintf("%s is now %s", event.Title, event.Status))
	return event, nil
}
