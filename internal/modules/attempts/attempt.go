// Package attempts keeps the append-only log of graded answers and derives
// progress statistics from it.
package attempts

import (
	"time"

	"github.com/google/uuid"

	"github.com/aristath/rfitrainer/internal/domain"
)

// DefaultHistoryLimit is the number of attempts returned when no limit is given.
const DefaultHistoryLimit = 100

// Attempt is one graded answer. Timestamp is unix milliseconds.
type Attempt struct {
	ID            string          `json:"id" msgpack:"id"`
	Timestamp     int64           `json:"timestamp" msgpack:"timestamp"`
	Position      domain.Position `json:"position" msgpack:"position"`
	Hand          string          `json:"hand" msgpack:"hand"`
	UserAction    domain.Action   `json:"userAction" msgpack:"userAction"`
	IsCorrect     bool            `json:"isCorrect" msgpack:"isCorrect"`
	BoundaryScore float64         `json:"boundaryScore" msgpack:"boundaryScore"`
}

// New builds an Attempt with a fresh id.
func New(position domain.Position, hand string, userAction domain.Action, isCorrect bool, boundaryScore float64, now time.Time) Attempt {
	return Attempt{
		ID:            uuid.New().String(),
		Timestamp:     now.UnixMilli(),
		Position:      position,
		Hand:          hand,
		UserAction:    userAction,
		IsCorrect:     isCorrect,
		BoundaryScore: boundaryScore,
	}
}
