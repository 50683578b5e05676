package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"maintdeck/upstream"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification is a user-facing toast: mutation outcomes, connection changes.
type Notification struct {
	ID        string    `json:"id"`
	Level     Level     `json:"level"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Code      string    `json:"code,omitempty"`
	Status    int       `json:"status,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Recorder persists emitted notifications (the store's notification log).
type Recorder interface {
	RecordNotification(level, title, message, code string) error
}

const historySize = 200

// authDedupWindow collapses repeated 401 toasts outside production; one
// expired token otherwise floods every open page with the same error.
const authDedupWindow = 30 * time.Second

// Center fans notifications out to live subscribers (the SSE stream) and
// keeps a bounded history for late-connecting dashboards.
type Center struct {
	mu         sync.Mutex
	subs       map[int64]chan Notification
	nextSub    int64
	history    []Notification
	production bool
	recorder   Recorder
	lastAuthAt time.Time
	log        *logrus.Entry
}

func NewCenter(production bool, recorder Recorder) *Center {
	return &Center{
		subs:       make(map[int64]chan Notification),
		production: production,
		recorder:   recorder,
		log:        logrus.WithField("component", "notify"),
	}
}

func (c *Center) Success(title, message string) {
	c.publish(Notification{Level: LevelSuccess, Title: title, Message: message})
}

func (c *Center) Info(title, message string) {
	c.publish(Notification{Level: LevelInfo, Title: title, Message: message})
}

func (c *Center) Warning(title, message string) {
	c.publish(Notification{Level: LevelWarning, Title: title, Message: message})
}

// Error derives the toast message from the error payload. Repeated 401s are
// suppressed outside production builds; every other error goes through.
func (c *Center) Error(title string, err error) {
	n := Notification{Level: LevelError, Title: title, Message: err.Error()}
	if apiErr, ok := upstream.AsAPIError(err); ok {
		n.Message = apiErr.Message
		n.Code = apiErr.Code
		n.Status = apiErr.Status

		if apiErr.Status == 401 && !c.production {
			c.mu.Lock()
			since := time.Since(c.lastAuthAt)
			c.lastAuthAt = time.Now()
			c.mu.Unlock()
			if since < authDedupWindow {
				c.log.Debug("suppressing duplicate auth notification")
				return
			}
		}
	}
	c.publish(n)
}

func (c *Center) publish(n Notification) {
	n.ID = uuid.New().String()
	n.CreatedAt = time.Now()

	if c.recorder != nil {
		if err := c.recorder.RecordNotification(string(n.Level), n.Title, n.Message, n.Code); err != nil {
			c.log.WithError(err).Debug("notification record failed")
		}
	}

	c.mu.Lock()
	c.history = append(c.history, n)
	if len(c.history) > historySize {
		c.history = c.history[len(c.history)-historySize:]
	}
	for _, ch := range c.subs {
		select {
		case ch <- n:
		default: // slow subscriber, drop rather than block mutations
		}
	}
	c.mu.Unlock()
}

// Subscribe returns a live notification channel and an unsubscribe func.
func (c *Center) Subscribe() (<-chan Notification, func()) {
	ch := make(chan Notification, 16)
	c.mu.Lock()
	c.nextSub++
	id := c.nextSub
	c.subs[id] = ch
	c.mu.Unlock()

	return ch, func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// History returns recent notifications, newest last.
func (c *Center) History() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Notification, len(c.history))
	copy(out, c.history)
	return out
}
