package upstream

import (
	"context"
	"fmt"
)

func (c *Client) ListReports(ctx context.Context, inspectionID int64) ([]DailyReport, error) {
	var reports []DailyReport
	path := fmt.Sprintf("/inspections/%d/daily-reports", inspectionID)
	if err := c.get(ctx, path, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

func (c *Client) GetReport(ctx context.Context, id int64) (*DailyReport, error) {
	var report DailyReport
	if err := c.get(ctx, fmt.Sprintf("/daily-reports/%d", id), &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (c *Client) CreateReport(ctx context.Context, req *CreateReportRequest) (*DailyReport, error) {
	var report DailyReport
	if err := c.post(ctx, "/daily-reports", req, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (c *Client) UpdateReport(ctx context.Context, id int64, req *UpdateReportRequest) (*DailyReport, error) {
	var report DailyReport
	if err := c.put(ctx, fmt.Sprintf("/daily-reports/%d", id), req, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (c *Client) DeleteReport(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("/daily-reports/%d", id))
}
