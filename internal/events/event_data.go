package events

// EventData is implemented by every typed event payload.
type EventData interface {
	// EventType returns the event type this data is associated with
	EventType() EventType
}

// AnswerRecordedData contains data for AnswerRecorded events
type AnswerRecordedData struct {
	AttemptID     string  `json:"attempt_id"`
	Position      string  `json:"position"`
	Hand          string  `json:"hand"`
	UserAction    string  `json:"user_action"`
	CorrectAction string  `json:"correct_action"`
	IsCorrect     bool    `json:"is_correct"`
	BoundaryScore float64 `json:"boundary_score"`
	Streak        int     `json:"streak"`
	NextReviewAt  int64   `json:"next_review_at"`
}

// EventType returns the event type for AnswerRecordedData
func (d *AnswerRecordedData) EventType() EventType {
	return AnswerRecorded
}

// ProgressResetData contains data for ProgressReset events
type ProgressResetData struct {
	AttemptsDeleted int `json:"attempts_deleted"`
	RecordsDeleted  int `json:"records_deleted"`
}

// EventType returns the event type for ProgressResetData
func (d *ProgressResetData) EventType() EventType {
	return ProgressReset
}

// SettingsChangedData contains data for SettingsChanged events
type SettingsChangedData struct {
	EnabledPositions []string `json:"enabled_positions"`
	Mode             string   `json:"mode"`
	QuestionCount    int      `json:"question_count"`
	Theme            string   `json:"theme"`
}

// EventType returns the event type for SettingsChangedData
func (d *SettingsChangedData) EventType() EventType {
	return SettingsChanged
}

// BackupCompletedData contains data for BackupCompleted events
type BackupCompletedData struct {
	Operation string `json:"operation"` // export, import, r2_upload
	Format    string `json:"format"`
	Filename  string `json:"filename,omitempty"`
	SizeBytes int64  `json:"size_bytes"`
	Attempts  int    `json:"attempts"`
	Records   int    `json:"records"`
}

// EventType returns the event type for BackupCompletedData
func (d *BackupCompletedData) EventType() EventType {
	return BackupCompleted
}

// ErrorEventData contains data for ErrorOccurred events
type ErrorEventData struct {
	Error   string                 `json:"error"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// EventType returns the event type for ErrorEventData
func (d *ErrorEventData) EventType() EventType {
	return ErrorOccurred
}
