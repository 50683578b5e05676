package syncer

import (
	"context"
	"fmt"
	"strconv"

	"maintdeck/cache"
	"maintdeck/upstream"
)

// InspectionFilters is the dashboard-side inspections scope. All=true asks
// for the unscoped list explicitly; otherwise the query is disabled until
// an event or sub-event id is present.
type InspectionFilters struct {
	All        bool   `json:"all"`
	EventID    int64  `json:"eventId"`
	SubEventID int64  `json:"subEventId"`
	Status     string `json:"status"`
	IsPlanned  *bool  `json:"isPlanned"`
}

func (f InspectionFilters) enabled() bool {
	return f.All || f.EventID > 0 || f.SubEventID > 0
}

func (f InspectionFilters) filters() cache.Filters {
	m := cache.Filters{"status": f.Status}
	if f.EventID > 0 {
		m["maintenance_event_id"] = strconv.FormatInt(f.EventID, 10)
	}
	if f.SubEventID > 0 {
		m["maintenance_sub_event_id"] = strconv.FormatInt(f.SubEventID, 10)
	}
	if f.IsPlanned != nil {
		m["is_planned"] = strconv.FormatBool(*f.IsPlanned)
	}
	return m
}

func (f InspectionFilters) upstream() upstream.InspectionFilters {
	return upstream.InspectionFilters{
		EventID:    f.EventID,
		SubEventID: f.SubEventID,
		Status:     f.Status,
		IsPlanned:  f.IsPlanned,
	}
}

func (s *Syncer) Inspections(ctx context.Context, f InspectionFilters) QueryResult[[]upstream.Inspection] {
	if !f.enabled() {
		return disabled[[]upstream.Inspection]()
	}
	res := s.cache.Get(ctx, inspectionsListKey(f), func(ctx context.Context) (any, error) {
		inspections, err := s.client.ListInspections(ctx, f.upstream())
		if err != nil {
			return nil, err
		}
		return inspections, nil
	}, s.queryOpts(0))
	return typed[[]upstream.Inspection](res)
}

func (s *Syncer) Inspection(ctx context.Context, id int64) QueryResult[*upstream.Inspection] {
	if id <= 0 {
		return disabled[*upstream.Inspection]()
	}
	res := s.cache.Get(ctx, inspectionDetailKey(id), func(ctx context.Context) (any, error) {
		insp, err := s.client.GetInspection(ctx, id)
		if err != nil {
			return nil, err
		}
		return insp, nil
	}, s.queryOpts(0))
	return typed[*upstream.Inspection](res)
}

type CreateInspectionInput struct {
	EventID        int64  `json:"eventId"`
	SubEventID     *int64 `json:"subEventId"`
	EquipmentTag   string `json:"equipmentTag"`
	InspectionType string `json:"inspectionType"`
	IsPlanned      bool   `json:"isPlanned"`
	StartDate      string `json:"startDate"`
	EndDate        string `json:"endDate"`
}

type UpdateInspectionInput struct {
	EquipmentTag   *string `json:"equipmentTag"`
	InspectionType *string `json:"inspectionType"`
	StartDate      *string `json:"startDate"`
	EndDate        *string `json:"endDate"`
}

// inspectionFan invalidates what an inspection write touches: the detail,
// every inspections list, and the owning event's detail (embedded counts
// change with the inspection). Sub-event scoping rides on the event subtree.
func (s *Syncer) inspectionFan(insp *upstream.Inspection) {
	s.cache.Invalidate(inspectionDetailKey(insp.ID))
	s.cache.Invalidate(cache.NewKey("inspections", "list"))
	s.cache.Invalidate(eventDetailKey(insp.EventID))
	if insp.SubEventID != nil {
		s.cache.Invalidate(subEventDetailKey(*insp.SubEventID))
	}
}

func (s *Syncer) CreateInspection(ctx context.Context, in CreateInspectionInput) (*upstream.Inspection, error) {
	insp, err := s.client.CreateInspection(ctx, &upstream.CreateInspectionRequest{
		EventID:        in.EventID,
		SubEventID:     in.SubEventID,
		EquipmentTag:   in.EquipmentTag,
		InspectionType: in.InspectionType,
		IsPlanned:      in.IsPlanned,
		StartDate:      in.StartDate,
		EndDate:        in.EndDate,
	})
	if err != nil {
		s.notify.Error("Failed to create inspection", err)
		return nil, err
	}
	s.inspectionFan(insp)
	s.notify.Success("Inspection created", insp.EquipmentTag)
	return insp, nil
}

func (s *Syncer) UpdateInspection(ctx context.Context, id int64, in UpdateInspectionInput) (*upstream.Inspection, error) {
	insp, err := s.client.UpdateInspection(ctx, id, &upstream.UpdateInspectionRequest{
		EquipmentTag:   in.EquipmentTag,
		InspectionType: in.InspectionType,
		StartDate:      in.StartDate,
		EndDate:        in.EndDate,
	})
	if err != nil {
		s.notify.Error("Failed to update inspection", err)
		return nil, err
	}
	s.inspectionFan(insp)
	s.notify.Success("Inspection updated", insp.EquipmentTag)
	return insp, nil
}

func (s *Syncer) DeleteInspection(ctx context.Context, id int64) error {
	// The owning event is needed for the fan; read it before the delete.
	var eventID int64
	if insp, err := s.client.GetInspection(ctx, id); err == nil {
		eventID = insp.EventID
	}
	if err := s.client.DeleteInspection(ctx, id); err != nil {
		s.notify.Error("Failed to delete inspection", err)
		return err
	}
	s.cache.Invalidate(inspectionsKey())
	if eventID > 0 {
		s.cache.Invalidate(eventDetailKey(eventID))
	}
	s.notify.Success("Inspection deleted", fmt.Sprintf("Inspection #%d removed", id))
	return nil
}

// InspectionAction is a status-transition verb on an inspection.
type InspectionAction string

const (
	InspectionStart    InspectionAction = "start"
	InspectionComplete InspectionAction = "complete"
	InspectionHold     InspectionAction = "hold"
	InspectionCancel   InspectionAction = "cancel"
)

func (s *Syncer) TransitionInspection(ctx context.Context, id int64, action InspectionAction) (*upstream.Inspection, error) {
	call := map[InspectionAction]func(context.Context, int64) (*upstream.Inspection, error){
		InspectionStart:    s.client.StartInspection,
		InspectionComplete: s.client.CompleteInspection,
		InspectionHold:     s.client.HoldInspection,
		InspectionCancel:   s.client.CancelInspection,
	}[action]
	if call == nil {
		return nil, fmt.Errorf("unknown inspection action %q", action)
	}

	insp, err := call(ctx, id)
	if err != nil {
		s.notify.Error(fmt.Sprintf("Failed to %s inspection", action), err)
		return nil, err
	}
	s.inspectionFan(insp)
	s.notify.Success("Inspection status updated",
		fmt.Sprintf("%s is now %s", insp.EquipmentTag, insp.Status))
	return insp, nil
}
