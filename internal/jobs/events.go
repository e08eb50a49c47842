// Package jobs tracks background model-building jobs and streams their
// progress events to subscribers.
package jobs

import (
	"github.com/palmto/trajgen-backend-go/internal/models"
)

// EventType enumerates the progress stream event kinds
type EventType string

const (
	EventProgress  EventType = "progress"
	EventComplete  EventType = "complete"
	EventError     EventType = "error"
	EventKeepalive EventType = "keepalive"
)

// Event is one immutable progress record. Progress is a pointer so keepalive
// and error events omit the field entirely.
type Event struct {
	Type      EventType             `json:"type"`
	Message   string                `json:"message,omitempty"`
	Progress  *int                  `json:"progress,omitempty"`
	CacheFile string                `json:"cache_file,omitempty"`
	Stats     *models.PipelineStats `json:"stats,omitempty"`
}

// Terminal reports whether the event ends a job's stream
func (e Event) Terminal() bool {
	return e.Type == EventComplete || e.Type == EventError
}

// Progress builds a progress event
func Progress(percent int, message string) Event {
	return Event{Type: EventProgress, Message: message, Progress: &percent}
}

// Complete builds the terminal success event carrying the cache reference
// and the job's summary statistics
func Complete(message, cacheFile string, stats models.PipelineStats) Event {
	full := 100
	return Event{
		Type:      EventComplete,
		Message:   message,
		Progress:  &full,
		CacheFile: cacheFile,
		Stats:     &stats,
	}
}

// Error builds the terminal failure event
func Error(message string) Event {
	return Event{Type: EventError, Message: message}
}

// Keepalive builds the idle-stream heartbeat event
func Keepalive() Event {
	return Event{Type: EventKeepalive}
}
