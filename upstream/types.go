package upstream

import "time"

// Maintenance event lifecycle states.
const (
	EventStatusPlanned    = "Planned"
	EventStatusInProgress = "InProgress"
	EventStatusCompleted  = "Completed"
	EventStatusApproved   = "Approved"
	EventStatusCancelled  = "Cancelled"
)

// Inspection lifecycle states.
const (
	InspectionStatusPlanned    = "Planned"
	InspectionStatusInProgress = "InProgress"
	InspectionStatusCompleted  = "Completed"
	InspectionStatusOnHold     = "OnHold"
	InspectionStatusCancelled  = "Cancelled"
)

// MaintenanceEvent is a top-level maintenance campaign. Counts are
// server-computed and change when child inspections change.
type MaintenanceEvent struct {
	ID               int64      `json:"id"`
	EventNumber      string     `json:"event_number"`
	Title            string     `json:"title"`
	EventType        string     `json:"event_type"`
	Status           string     `json:"status"`
	PlannedStartDate string     `json:"planned_start_date"`
	PlannedEndDate   string     `json:"planned_end_date"`
	ActualStartDate  *string    `json:"actual_start_date,omitempty"`
	ActualEndDate    *string    `json:"actual_end_date,omitempty"`
	SubEventCount    int        `json:"sub_event_count"`
	InspectionCount  int        `json:"inspection_count"`
	CompletedCount   int        `json:"completed_inspection_count"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        *time.Time `json:"updated_at,omitempty"`
}

type MaintenanceSubEvent struct {
	ID                   int64   `json:"id"`
	ParentEventID        int64   `json:"parent_event_id"`
	Title                string  `json:"title"`
	Status               string  `json:"status"`
	PlannedStartDate     string  `json:"planned_start_date"`
	PlannedEndDate       string  `json:"planned_end_date"`
	ActualStartDate      *string `json:"actual_start_date,omitempty"`
	ActualEndDate        *string `json:"actual_end_date,omitempty"`
	CompletionPercentage float64 `json:"completion_percentage"`
	InspectionCount      int     `json:"inspection_count"`
}

// Inspection belongs to exactly one event and optionally one sub-event.
type Inspection struct {
	ID             int64     `json:"id"`
	EventID        int64     `json:"maintenance_event_id"`
	SubEventID     *int64    `json:"maintenance_sub_event_id,omitempty"`
	EquipmentTag   string    `json:"equipment_tag"`
	InspectionType string    `json:"inspection_type"`
	Status         string    `json:"status"`
	IsPlanned      bool      `json:"is_planned"`
	StartDate      *string   `json:"start_date,omitempty"`
	EndDate        *string   `json:"end_date,omitempty"`
	ReportCount    int       `json:"report_count"`
	CreatedAt      time.Time `json:"created_at"`
}

// DailyReport is an append-only log entry for an inspection.
type DailyReport struct {
	ID              int64     `json:"id"`
	InspectionID    int64     `json:"inspection_id"`
	ReportDate      string    `json:"report_date"`
	Description     string    `json:"description"`
	Findings        string    `json:"findings"`
	Recommendations string    `json:"recommendations"`
	Attachments     []string  `json:"attachments,omitempty"`
	CreatedBy       string    `json:"created_by"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Equipment is referenced by tag from inspections and RBI views. Read-only
// for the dashboard.
type Equipment struct {
	Tag          string  `json:"tag"`
	Description  string  `json:"description"`
	Type         string  `json:"type"`
	Unit         string  `json:"unit"`
	TrainNumber  string  `json:"train_number"`
	RiskCategory string  `json:"risk_category"`
	RiskScore    float64 `json:"risk_score"`
}

// --- request bodies (server field naming) ---

type CreateEventRequest struct {
	Title            string `json:"title"`
	EventType        string `json:"event_type"`
	EventNumber      string `json:"event_number,omitempty"`
	PlannedStartDate string `json:"planned_start_date"`
	PlannedEndDate   string `json:"planned_end_date"`
}

type UpdateEventRequest struct {
	Title            *string `json:"title,omitempty"`
	EventType        *string `json:"event_type,omitempty"`
	PlannedStartDate *string `json:"planned_start_date,omitempty"`
	PlannedEndDate   *string `json:"planned_end_date,omitempty"`
}

type CreateSubEventRequest struct {
	ParentEventID    int64  `json:"parent_event_id"`
	Title            string `json:"title"`
	PlannedStartDate string `json:"planned_start_date"`
	PlannedEndDate   string `json:"planned_end_date"`
}

type UpdateSubEventRequest struct {
	Title                *string  `json:"title,omitempty"`
	PlannedStartDate     *string  `json:"planned_start_date,omitempty"`
	PlannedEndDate       *string  `json:"planned_end_date,omitempty"`
	CompletionPercentage *float64 `json:"completion_percentage,omitempty"`
}

type CreateInspectionRequest struct {
	EventID        int64  `json:"maintenance_event_id"`
	SubEventID     *int64 `json:"maintenance_sub_event_id,omitempty"`
	EquipmentTag   string `json:"equipment_tag"`
	InspectionType string `json:"inspection_type"`
	IsPlanned      bool   `json:"is_planned"`
	StartDate      string `json:"start_date,omitempty"`
	EndDate        string `json:"end_date,omitempty"`
}

type UpdateInspectionRequest struct {
	EquipmentTag   *string `json:"equipment_tag,omitempty"`
	InspectionType *string `json:"inspection_type,omitempty"`
	StartDate      *string `json:"start_date,omitempty"`
	EndDate        *string `json:"end_date,omitempty"`
}

type CreateReportRequest struct {
	InspectionID    int64    `json:"inspection_id"`
	ReportDate      string   `json:"report_date"`
	Description     string   `json:"description"`
	Findings        string   `json:"findings"`
	Recommendations string   `json:"recommendations"`
	Attachments     []string `json:"attachments,omitempty"`
}

type UpdateReportRequest struct {
	Description     *string  `json:"description,omitempty"`
	Findings        *string  `json:"findings,omitempty"`
	Recommendations *string  `json:"recommendations,omitempty"`
	Attachments     []string `json:"attachments,omitempty"`
}

type PingInfo struct {
	Product string `json:"product"`
	Version string `json:"version"`
}
