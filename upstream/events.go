package upstream

import (
	"context"
	"fmt"
	"net/url"
)

// EventFilters narrows the events list. Zero values are omitted from the
// query string.
type EventFilters struct {
	Status    string
	EventType string
	FromDate  string
	ToDate    string
	Search    string
}

func (f EventFilters) query() string {
	v := url.Values{}
	if f.Status != "" {
		v.Set("status", f.Status)
	}
	if f.EventType != "" {
		v.Set("event_type", f.EventType)
	}
	if f.FromDate != "" {
		v.Set("from_date", f.FromDate)
	}
	if f.ToDate != "" {
		v.Set("to_date", f.ToDate)
	}
	if f.Search != "" {
		v.Set("search", f.Search)
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}

func (c *Client) ListEvents(ctx context.Context, f EventFilters) ([]MaintenanceEvent, error) {
	var events []MaintenanceEvent
	if err := c.get(ctx, "/maintenance/events"+f.query(), &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (c *Client) GetEvent(ctx context.Context, id int64) (*MaintenanceEvent, error) {
	var event MaintenanceEvent
	if err := c.get(ctx, fmt.Sprintf("/maintenance/events/%d", id), &event); err != nil {
		return nil, err
	}
	return &event, nil
}

func (c *Client) CreateEvent(ctx context.Context, req *CreateEventRequest) (*MaintenanceEvent, error) {
	var event MaintenanceEvent
	if err := c.post(ctx, "/maintenance/events", req, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

func (c *Client) UpdateEvent(ctx context.Context, id int64, req *UpdateEventRequest) (*MaintenanceEvent, error) {
	var event MaintenanceEvent
	if err := c.put(ctx, fmt.Sprintf("/maintenance/events/%d", id), req, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// DeleteEvent is a hard removal.
func (c *Client) DeleteEvent(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("/maintenance/events/%d", id))
}

// transitionEvent drives the event status lifecycle via action endpoints.
func (c *Client) transitionEvent(ctx context.Context, id int64, action string) (*MaintenanceEvent, error) {
	var event MaintenanceEvent
	if err := c.post(ctx, fmt.Sprintf("/maintenance/events/%d/%s", id, action), nil, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

func (c *Client) StartEvent(ctx context.Context, id int64) (*MaintenanceEvent, error) {
	return c.transitionEvent(ctx, id, "start")
}

func (c *Client) CompleteEvent(ctx context.Context, id int64) (*MaintenanceEvent, error) {
	return c.transitionEvent(ctx, id, "complete")
}

func (c *Client) ApproveEvent(ctx context.Context, id int64) (*MaintenanceEvent, error) {
	return c.transitionEvent(ctx, id, "approve")
}

func (c *Client) RevertEvent(ctx context.Context, id int64) (*MaintenanceEvent, error) {
	return c.transitionEvent(ctx, id, "revert")
}

func (c *Client) ReactivateEvent(ctx context.Context, id int64) (*MaintenanceEvent, error) {
	return c.transitionEvent(ctx, id, "reactivate")
}

// --- sub-events ---

func (c *Client) ListSubEvents(ctx context.Context, parentEventID int64) ([]MaintenanceSubEvent, error) {
	var subs []MaintenanceSubEvent
	path := fmt.Sprintf("/maintenance/events/%d/sub-events", parentEventID)
	if err := c.get(ctx, path, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

func (c *Client) GetSubEvent(ctx context.Context, id int64) (*MaintenanceSubEvent, error) {
	var sub MaintenanceSubEvent
	if err := c.get(ctx, fmt.Sprintf("/maintenance/sub-events/%d", id), &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

func (c *Client) CreateSubEvent(ctx context.Context, req *CreateSubEventRequest) (*MaintenanceSubEvent, error) {
	var sub MaintenanceSubEvent
	if err := c.post(ctx, "/maintenance/sub-events", req, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

func (c *Client) UpdateSubEvent(ctx context.Context, id int64, req *UpdateSubEventRequest) (*MaintenanceSubEvent, error) {
	var sub MaintenanceSubEvent
	if err := c.put(ctx, fmt.Sprintf("/maintenance/sub-events/%d", id), req, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

func (c *Client) DeleteSubEvent(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("/maintenance/sub-events/%d", id))
}

func (c *Client) transitionSubEvent(ctx context.Context, id int64, action string) (*MaintenanceSubEvent, error) {
	var sub MaintenanceSubEvent
	if err := c.post(ctx, fmt.Sprintf("/maintenance/sub-events/%d/%s", id, action), nil, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

func (c *Client) StartSubEvent(ctx context.Context, id int64) (*MaintenanceSubEvent, error) {
	return c.transitionSubEvent(ctx, id, "start")
}

func (c *Client) CompleteSubEvent(ctx context.Context, id int64) (*MaintenanceSubEvent, error) {
	return c.transitionSubEvent(ctx, id, "complete")
}

func (c *Client) ApproveSubEvent(ctx context.Context, id int64) (*MaintenanceSubEvent, error) {
	return c.transitionSubEvent(ctx, id, "approve")
}

func (c *Client) RevertSubEvent(ctx context.Context, id int64) (*MaintenanceSubEvent, error) {
	return c.transitionSubEvent(ctx, id, "revert")
}

func (c *Client) ReactivateSubEvent(ctx context.Context, id int64) (*MaintenanceSubEvent, error) {
	return c.transitionSubEvent(ctx, id, "reactivate")
}
