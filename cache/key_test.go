package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFiltersSegmentOrderIndependent(t *testing.T) {
	f1 := Filters{"status": "Completed", "event_type": "Overhaul", "from_date": "2024-01-01"}
	f2 := Filters{"from_date": "2024-01-01", "event_type": "Overhaul", "status": "Completed"}

	assert.Equal(t, f1.Segment(), f2.Segment())
	assert.Equal(t, NewKey("events", "list", f1.Segment()).String(),
		NewKey("events", "list", f2.Segment()).String())
}

func TestFiltersSegmentDropsEmptyValues(t *testing.T) {
	f1 := Filters{"status": "Planned", "search": ""}
	f2 := Filters{"status": "Planned"}
	assert.Equal(t, f2.Segment(), f1.Segment())

	assert.Equal(t, "all", Filters{}.Segment())
	assert.Equal(t, "all", Filters{"status": ""}.Segment())
}

func TestFiltersSegmentEscapes(t *testing.T) {
	f := Filters{"search": "relief valve & drain"}
	assert.NotContains(t, f.Segment(), " ")
}

func TestKeyHierarchy(t *testing.T) {
	all := NewKey("inspections")
	list := NewKey("inspections", "list", Filters{"maintenance_event_id": "7"}.Segment())
	detail := NewKey("inspections", "detail", "42")
	other := NewKey("events", "detail", "7")

	assert.True(t, list.HasPrefix(all))
	assert.True(t, detail.HasPrefix(all))
	assert.True(t, detail.HasPrefix(detail))
	assert.False(t, other.HasPrefix(all))
	assert.False(t, all.HasPrefix(detail))
}

func TestNewKeyDropsEmptySegments(t *testing.T) {
	assert.Equal(t, "reports/list/9", NewKey("reports", "list", "", "9").String())
}
