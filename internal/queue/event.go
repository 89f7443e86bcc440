// Package queue defines the message payloads exchanged over the broker
// and the background consumer that turns them into an audit trail.
package queue

// LessonEventsQueue is the durable queue carrying lesson change events.
const LessonEventsQueue = "lesson.events"

// Actions recorded on the lesson.events queue.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// LessonEvent is published after a lesson mutation commits.  It carries
// enough for downstream consumers to log or notify without querying the
// primary database.
type LessonEvent struct {
	Action    string `json:"action"`
	LessonID  string `json:"lesson_id"`
	AccountID uint64 `json:"account_id"`
	Title     string `json:"title,omitempty"`
	At        string `json:"at"` // RFC3339 UTC
}
