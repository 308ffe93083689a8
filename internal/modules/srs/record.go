// Package srs tracks spaced-repetition state per (position, hand) and applies
// the review update rule after every answer.
package srs

import (
	"math"
	"time"

	"github.com/aristath/rfitrainer/internal/domain"
)

// Intervals of the update rule, in milliseconds.
const (
	IncorrectIntervalMs int64 = 60_000     // 1 minute, review again soon
	FirstIntervalMs     int64 = 600_000    // 10 minutes after the first correct answer
	SecondIntervalMs    int64 = 86_400_000 // 1 day after the second
)

// DefaultEasinessFactor is stored on new records. The update rule never reads it.
const DefaultEasinessFactor = 2.5

// Record is the repetition state of one (position, hand) pair.
type Record struct {
	ID             string          `json:"id" msgpack:"id"`
	Position       domain.Position `json:"position" msgpack:"position"`
	Hand           string          `json:"hand" msgpack:"hand"`
	Streak         int             `json:"streak" msgpack:"streak"`
	IntervalMs     int64           `json:"interval" msgpack:"interval"`
	NextReviewAt   int64           `json:"nextReviewTime" msgpack:"nextReviewTime"` // unix milliseconds
	EasinessFactor float64         `json:"easinessFactor" msgpack:"easinessFactor"`
}

// Key derives the record identity from (position, hand), e.g. "RFI_UTG_AA".
func Key(position domain.Position, hand string) string {
	return string(position) + "_" + hand
}

// NewRecord returns the defaults used when a pair is answered for the first time.
func NewRecord(position domain.Position, hand string) Record {
	return Record{
		ID:             Key(position, hand),
		Position:       position,
		Hand:           hand,
		EasinessFactor: DefaultEasinessFactor,
	}
}

// IsDue reports whether the record is due at now.
func (r Record) IsDue(now time.Time) bool {
	return r.NextReviewAt <= now.UnixMilli()
}

// Advance applies the update rule and returns the new record:
//
//	incorrect      streak 0, interval 1 minute
//	streak 1       interval 10 minutes
//	streak 2       interval 1 day
//	streak >= 3    interval doubles
//
// In every case the next review is now + interval. Both values saturate at
// math.MaxInt64 instead of wrapping, so a long streak never turns due again.
func Advance(rec Record, isCorrect bool, now time.Time) Record {
	next := rec

	if !isCorrect {
		next.Streak = 0
		next.IntervalMs = IncorrectIntervalMs
	} else {
		next.Streak = rec.Streak + 1
		switch next.Streak {
		case 1:
			next.IntervalMs = FirstIntervalMs
		case 2:
			next.IntervalMs = SecondIntervalMs
		default:
			if rec.IntervalMs > math.MaxInt64/2 {
				next.IntervalMs = math.MaxInt64
			} else {
				next.IntervalMs = rec.IntervalMs * 2
			}
		}
	}

	next.NextReviewAt = saturatingAdd(now.UnixMilli(), next.IntervalMs)
	return next
}

// saturatingAdd returns a+b for a non-negative b, clamped at math.MaxInt64.
func saturatingAdd(a, b int64) int64 {
	if a > 0 && b > math.MaxInt64-a {
		return math.MaxInt64
	}
	return a + b
}
