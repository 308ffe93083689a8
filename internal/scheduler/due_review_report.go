package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// DueReviewReportJob logs how many repetition records are due, broken down
// by position.
type DueReviewReportJob struct {
	reviews DueSource
	now     func() time.Time
	log     zerolog.Logger
}

// NewDueReviewReportJob creates a new DueReviewReportJob
func NewDueReviewReportJob(reviews DueSource, log zerolog.Logger) *DueReviewReportJob {
	return &DueReviewReportJob{
		reviews: reviews,
		now:     time.Now,
		log:     log.With().Str("job", "due_review_report").Logger(),
	}
}

// Name returns the job name
func (j *DueReviewReportJob) Name() string {
	return "due_review_report"
}

// Run executes the due review report job
func (j *DueReviewReportJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	due, err := j.reviews.DueItems(ctx, j.now())
	if err != nil {
		return err
	}
	tracked, err := j.reviews.Count(ctx)
	if err != nil {
		return err
	}

	byPosition := zerolog.Dict()
	counts := make(map[string]int)
	for _, rec := range due {
		counts[string(rec.Position)]++
	}
	for position, n := range counts {
		byPosition.Int(position, n)
	}

	j.log.Info().
		Int("due", len(due)).
		Int("tracked", tracked).
		Dict("by_position", byPosition).
		Msg("Due review report")
	return nil
}
