package syncer

import (
	"context"
	"fmt"
	"time"

	"maintdeck/upstream"
)

// Daily reports churn during a shift; keep their staleness window tight.
const reportStaleAfter = 10 * time.Second

func (s *Syncer) Reports(ctx context.Context, inspectionID int64) QueryResult[[]upstream.DailyReport] {
	if inspectionID <= 0 {
		return disabled[[]upstream.DailyReport]()
	}
	res := s.cache.Get(ctx, reportsListKey(inspectionID), func(ctx context.Context) (any, error) {
		reports, err := s.client.ListReports(ctx, inspectionID)
		if err != nil {
			return nil, err
		}
		return reports, nil
	}, s.queryOpts(reportStaleAfter))
	return typed[[]upstream.DailyReport](res)
}

func (s *Syncer) Report(ctx context.Context, id int64) QueryResult[*upstream.DailyReport] {
	if id <= 0 {
		return disabled[*upstream.DailyReport]()
	}
	res := s.cache.Get(ctx, reportDetailKey(id), func(ctx context.Context) (any, error) {
		report, err := s.client.GetReport(ctx, id)
		if err != nil {
			return nil, err
		}
		return report, nil
	}, s.queryOpts(reportStaleAfter))
	return typed[*upstream.DailyReport](res)
}

type CreateReportInput struct {
	InspectionID    int64    `json:"inspectionId"`
	ReportDate      string   `json:"reportDate"`
	Description     string   `json:"description"`
	Findings        string   `json:"findings"`
	Recommendations string   `json:"recommendations"`
	Attachments     []string `json:"attachments"`
}

type UpdateReportInput struct {
	Description     *string  `json:"description"`
	Findings        *string  `json:"findings"`
	Recommendations *string  `json:"recommendations"`
	Attachments     []string `json:"attachments"`
}

func (s *Syncer) CreateReport(ctx context.Context, in CreateReportInput) (*upstream.DailyReport, error) {
	report, err := s.client.CreateReport(ctx, &upstream.CreateReportRequest{
		InspectionID:    in.InspectionID,
		ReportDate:      in.ReportDate,
		Description:     in.Description,
		Findings:        in.Findings,
		Recommendations: in.Recommendations,
		Attachments:     in.Attachments,
	})
	if err != nil {
		s.notify.Error("Failed to create daily report", err)
		return nil, err
	}
	s.cache.Invalidate(reportsListKey(in.InspectionID))
	s.cache.Invalidate(inspectionDetailKey(in.InspectionID))
	s.notify.Success("Daily report created", fmt.Sprintf("Report for %s", report.ReportDate))
	return report, nil
}

// UpdateReport is the optimistic path: report field edits are low-risk and
// high-frequency, so the proposed value lands in the cache before the
// backend confirms. On failure the pre-edit value is restored exactly and
// the error surfaces as a toast. The reports list to refresh is taken from
// the server's response, not from the caller.
func (s *Syncer) UpdateReport(ctx context.Context, id int64, in UpdateReportInput) (*upstream.DailyReport, error) {
	apply := func(current any) any {
		report, ok := current.(*upstream.DailyReport)
		if !ok || report == nil {
			return current
		}
		patched := *report
		if in.Description != nil {
			patched.Description = *in.Description
		}
		if in.Findings != nil {
			patched.Findings = *in.Findings
		}
		if in.Recommendations != nil {
			patched.Recommendations = *in.Recommendations
		}
		if in.Attachments != nil {
			patched.Attachments = in.Attachments
		}
		return &patched
	}

	data, err := s.cache.MutateOptimistic(ctx, reportDetailKey(id), apply,
		func(ctx context.Context) (any, error) {
			return s.client.UpdateReport(ctx, id, &upstream.UpdateReportRequest{
				Description:     in.Description,
				Findings:        in.Findings,
				Recommendations: in.Recommendations,
				Attachments:     in.Attachments,
			})
		},
	)
	if err != nil {
		s.notify.Error("Failed to update daily report", err)
		return nil, err
	}
	report := data.(*upstream.DailyReport)
	if report.InspectionID > 0 {
		s.cache.Invalidate(reportsListKey(report.InspectionID))
	}
	s.notify.Success("Daily report saved", fmt.Sprintf("Report for %s", report.ReportDate))
	return report, nil
}

func (s *Syncer) DeleteReport(ctx context.Context, id, inspectionID int64) error {
	if err := s.client.DeleteReport(ctx, id); err != nil {
		s.notify.Error("Failed to delete daily report", err)
		return err
	}
	s.cache.Invalidate(reportDetailKey(id))
	s.cache.Invalidate(reportsListKey(inspectionID))
	s.cache.Invalidate(inspectionDetailKey(inspectionID))
	s.notify.Success("Daily report deleted", fmt.Sprintf("Report #%d removed", id))
	return nil
}
