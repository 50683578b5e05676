// Package messaging consumes push-invalidation events from the maintenance
// backend. When another system writes an event, sub-event, inspection or
// report, the backend publishes a change notice; the gateway marks the
// affected cache keys stale instead of waiting for staleness timers.
package messaging

import (
	"encoding/json"
	"fmt"
	"time"
)

// Entities the backend publishes change notices for.
const (
	EntityEvent      = "maintenance_event"
	EntitySubEvent   = "maintenance_sub_event"
	EntityInspection = "inspection"
	EntityReport     = "daily_report"
	EntityEquipment  = "equipment"
)

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Envelope is the wire format of one change notice.
type Envelope struct {
	Entity     string    `json:"entity"`
	ID         int64     `json:"id"`
	ParentID   int64     `json:"parent_id,omitempty"`
	Action     string    `json:"action"`
	Source     string    `json:"source,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func DecodeEnvelope(raw []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode change notice: %w", err)
	}
	if env.Entity == "" {
		return Envelope{}, fmt.Errorf("change notice missing entity")
	}
	return env, nil
}
