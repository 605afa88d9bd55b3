package migration

import (
	"time"

	"github.com/poesyliang/poesy-blog/internal/models"
)

// EventType names a step of a migration run.
type EventType string

const (
	EventRunStarted      EventType = "run_started"
	EventRecordSucceeded EventType = "record_succeeded"
	EventRecordFailed    EventType = "record_failed"
	EventRunCompleted    EventType = "run_completed"
	EventRunFailed       EventType = "run_failed"

	// EventSubscribed is sent once to each new event subscriber.
	EventSubscribed EventType = "subscribed"
)

// Event reports run progress to observers.
type Event struct {
	Type       EventType     `json:"type"`
	RunID      string        `json:"run_id"`
	Index      int           `json:"index,omitempty"`
	Total      int           `json:"total"`
	Title      string        `json:"title,omitempty"`
	Source     models.Origin `json:"source,omitempty"`
	OriginalID string        `json:"original_id,omitempty"`
	BlogID     string        `json:"blog_id,omitempty"`
	Error      string        `json:"error,omitempty"`
	Successful int           `json:"successful"`
	Failed     int           `json:"failed"`
	Time       time.Time     `json:"time"`
}

// Observer receives events. Calls are serialized per runner.
type Observer func(Event)

// Terminal reports whether the event ends a run.
func (e Event) Terminal() bool {
	return e.Type == EventRunCompleted || e.Type == EventRunFailed
}
