package testing

import (
	"github.com/aristath/rfitrainer/internal/domain"
	"github.com/aristath/rfitrainer/internal/modules/attempts"
	"github.com/aristath/rfitrainer/internal/modules/srs"
)

// FixtureEpochMs is the reference "now" the fixtures are built around.
const FixtureEpochMs int64 = 1_700_000_000_000

// NewAttemptFixtures returns one wrong fold on a boundary hand and one
// correct raise on a premium hand, oldest first.
func NewAttemptFixtures() []attempts.Attempt {
	return []attempts.Attempt{
		{
			ID:            "a-1",
			Timestamp:     FixtureEpochMs - 1_000_000,
			Position:      domain.PositionBTN,
			Hand:          "K9o",
			UserAction:    domain.ActionFold,
			IsCorrect:     false,
			BoundaryScore: 0.5,
		},
		{
			ID:            "a-2",
			Timestamp:     FixtureEpochMs - 500_000,
			Position:      domain.PositionCO,
			Hand:          "AA",
			UserAction:    domain.ActionRaise,
			IsCorrect:     true,
			BoundaryScore: 0,
		},
	}
}

// NewReviewFixtures returns a record on its second correct answer, due one
// day after FixtureEpochMs.
func NewReviewFixtures() []srs.Record {
	rec := srs.NewRecord(domain.PositionBTN, "K9o")
	rec.Streak = 2
	rec.IntervalMs = srs.SecondIntervalMs
	rec.NextReviewAt = FixtureEpochMs + srs.SecondIntervalMs
	return []srs.Record{rec}
}
