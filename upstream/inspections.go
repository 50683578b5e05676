package upstream

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// InspectionFilters scopes the inspections list. EventID and SubEventID are
// mutually exclusive in practice; both empty means "all inspections".
type InspectionFilters struct {
	EventID    int64
	SubEventID int64
	Status     string
	IsPlanned  *bool
}

func (f InspectionFilters) query() string {
	v := url.Values{}
	if f.EventID != 0 {
		v.Set("maintenance_event_id", strconv.FormatInt(f.EventID, 10))
	}
	if f.SubEventID != 0 {
		v.Set("maintenance_sub_event_id", strconv.FormatInt(f.SubEventID, 10))
	}
	if f.Status != "" {
		v.Set("status", f.Status)
	}
	if f.IsPlanned != nil {
		v.Set("is_planned", strconv.FormatBool(*f.IsPlanned))
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}

func (c *Client) ListInspections(ctx context.Context, f InspectionFilters) ([]Inspection, error) {
	var inspections []Inspection
	if err := c.get(ctx, "/inspections"+f.query(), &inspections); err != nil {
		return nil, err
	}
	return inspections, nil
}

func (c *Client) GetInspection(ctx context.Context, id int64) (*Inspection, error) {
	var insp Inspection
	if err := c.get(ctx, fmt.Sprintf("/inspections/%d", id), &insp); err != nil {
		return nil, err
	}
	return &insp, nil
}

func (c *Client) CreateInspection(ctx context.Context, req *CreateInspectionRequest) (*Inspection, error) {
	var insp Inspection
	if err := c.post(ctx, "/inspections", req, &insp); err != nil {
		return nil, err
	}
	return &insp, nil
}

func (c *Client) UpdateInspection(ctx context.Context, id int64, req *UpdateInspectionRequest) (*Inspection, error) {
	var insp Inspection
	if err := c.put(ctx, fmt.Sprintf("/inspections/%d", id), req, &insp); err != nil {
		return nil, err
	}
	return &insp, nil
}

func (c *Client) DeleteInspection(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("/inspections/%d", id))
}

func (c *Client) transitionInspection(ctx context.Context, id int64, action string) (*Inspection, error) {
	var insp Inspection
	if err := c.post(ctx, fmt.Sprintf("/inspections/%d/%s", id, action), nil, &insp); err != nil {
		return nil, err
	}
	return &insp, nil
}

func (c *Client) StartInspection(ctx context.Context, id int64) (*Inspection, error) {
	return c.transitionInspection(ctx, id, "start")
}

func (c *Client) CompleteInspection(ctx context.Context, id int64) (*Inspection, error) {
	return c.transitionInspection(ctx, id, "complete")
}

func (c *Client) HoldInspection(ctx context.Context, id int64) (*Inspection, error) {
	return c.transitionInspection(ctx, id, "hold")
}

func (c *Client) CancelInspection(ctx context.Context, id int64) (*Inspection, error) {
	return c.transitionInspection(ctx, id, "cancel")
}
