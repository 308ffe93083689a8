package trainer

import (
	"github.com/aristath/rfitrainer/internal/domain"
	"github.com/aristath/rfitrainer/internal/modules/attempts"
	"github.com/aristath/rfitrainer/internal/modules/srs"
	"github.com/aristath/rfitrainer/internal/modules/strategy"
)

// Result is the verdict on one answer.
type Result string

const (
	ResultCorrect   Result = "correct"
	ResultIncorrect Result = "incorrect"
)

// Feedback is returned after grading an answer.
type Feedback struct {
	Result        Result                   `json:"result"`
	IsCorrect     bool                     `json:"isCorrect"`
	Position      domain.Position          `json:"position"`
	Hand          string                   `json:"hand"`
	CorrectAction domain.Action            `json:"correctAction"`
	UserAction    domain.Action            `json:"userAction"`
	Frequencies   domain.ActionFrequencies `json:"frequencies"`
	BoundaryScore float64                  `json:"boundaryScore"`
	Record        srs.Record               `json:"record"`
	AttemptID     string                   `json:"attemptId,omitempty"`
}

// Stats combines the attempt log summary with the repetition queue size.
type Stats struct {
	attempts.Stats
	DueCount     int `json:"dueCount"`
	TrackedCount int `json:"trackedCount"`
}

// ResetResult reports what a bulk reset removed.
type ResetResult struct {
	AttemptsDeleted int `json:"attemptsDeleted"`
	RecordsDeleted  int `json:"recordsDeleted"`
}

// StrategyInfo describes the loaded strategy table.
type StrategyInfo struct {
	Meta      strategy.Meta     `json:"meta"`
	Sizes     strategy.Sizes    `json:"sizes"`
	Positions []domain.Position `json:"positions"`
	HandCount int               `json:"handCount"`
}

// SessionStats is the running score of one drill session. It lives with the
// caller and is never persisted.
type SessionStats struct {
	Streak  int `json:"streak"`
	Total   int `json:"total"`
	Correct int `json:"correct"`
}

// Record returns the stats after one more answer.
func (s SessionStats) Record(isCorrect bool) SessionStats {
	s.Total++
	if isCorrect {
		s.Correct++
		s.Streak++
	} else {
		s.Streak = 0
	}
	return s
}

// Accuracy returns Correct/Total, or 0 before the first answer.
func (s SessionStats) Accuracy() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Total)
}

// Finished reports whether a session limited to limit questions is over.
// A limit of zero never finishes.
func (s SessionStats) Finished(limit int) bool {
	return limit > 0 && s.Total >= limit
}
