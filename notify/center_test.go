package notify

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maintdeck/upstream"
)

func TestErrorDerivesMessageFromAPIError(t *testing.T) {
	c := NewCenter(true, nil)

	c.Error("Update failed", &upstream.APIError{Status: 422, Code: "invalid_dates", Message: "planned end before start"})

	history := c.History()
	require.Len(t, history, 1)
	assert.Equal(t, LevelError, history[0].Level)
	assert.Equal(t, "planned end before start", history[0].Message)
	assert.Equal(t, "invalid_dates", history[0].Code)
	assert.Equal(t, 422, history[0].Status)
}

func TestDuplicateAuthErrorsSuppressedOutsideProduction(t *testing.T) {
	c := NewCenter(false, nil)

	c.Error("Load failed", &upstream.APIError{Status: 401, Message: "token expired"})
	c.Error("Load failed", &upstream.APIError{Status: 401, Message: "token expired"})
	c.Error("Load failed", &upstream.APIError{Status: 401, Message: "token expired"})

	assert.Len(t, c.History(), 1, "repeated 401s collapse outside production")
}

func TestDuplicateAuthErrorsKeptInProduction(t *testing.T) {
	c := NewCenter(true, nil)

	c.Error("Load failed", &upstream.APIError{Status: 401, Message: "token expired"})
	c.Error("Load failed", &upstream.APIError{Status: 401, Message: "token expired"})

	assert.Len(t, c.History(), 2)
}

func TestNonAuthErrorsNeverSuppressed(t *testing.T) {
	c := NewCenter(false, nil)

	c.Error("Save failed", errors.New("connection refused"))
	c.Error("Save failed", errors.New("connection refused"))

	assert.Len(t, c.History(), 2)
}

func TestSubscribeReceivesLiveNotifications(t *testing.T) {
	c := NewCenter(true, nil)
	ch, unsubscribe := c.Subscribe()
	defer unsubscribe()

	c.Success("Event created", "Annual Overhaul")

	n := <-ch
	assert.Equal(t, LevelSuccess, n.Level)
	assert.Equal(t, "Event created", n.Title)
	assert.NotEmpty(t, n.ID)

	unsubscribe()
	c.Success("Event created", "again")
	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("unsubscribed channel received a notification")
		}
	default:
	}
}

type recorderSpy struct{ records []string }

func (r *recorderSpy) RecordNotification(level, title, message, code string) error {
	r.records = append(r.records, level+":"+title)
	return nil
}

func TestNotificationsRecorded(t *testing.T) {
	spy := &recorderSpy{}
	c := NewCenter(true, spy)

	c.Success("Inspection completed", "PSV-104")
	c.Warning("Messaging", "broker disconnected")

	require.Len(t, spy.records, 2)
	assert.Equal(t, "success:Inspection completed", spy.records[0])
}
