// Package events provides the in-process event bus used to push trainer
// activity to live clients.
package events

import "time"

// EventType identifies a kind of event.
type EventType string

const (
	// AnswerRecorded fires after an answer is graded and the repetition record updated.
	AnswerRecorded EventType = "ANSWER_RECORDED"
	// ProgressReset fires after attempts and the repetition queue are cleared.
	ProgressReset EventType = "PROGRESS_RESET"
	// SettingsChanged fires after the user settings are saved.
	SettingsChanged EventType = "SETTINGS_CHANGED"
	// BackupCompleted fires after a backup is exported, restored or uploaded.
	BackupCompleted EventType = "BACKUP_COMPLETED"
	// ErrorOccurred carries failures from background jobs.
	ErrorOccurred EventType = "ERROR_OCCURRED"
)

// AllEventTypes lists every event type, in the order streams subscribe to them.
var AllEventTypes = []EventType{
	AnswerRecorded,
	ProgressReset,
	SettingsChanged,
	BackupCompleted,
	ErrorOccurred,
}

// Event is a single emitted event.
type Event struct {
	Type      EventType              `json:"type"`
	Module    string                 `json:"module"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// Handler receives events. Handlers run on the emitting goroutine and must not block.
type Handler func(event *Event)
