package scheduler

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	name string
	runs atomic.Int32
	err  error
}

func (j *countingJob) Name() string { return j.name }

func (j *countingJob) Run() error {
	j.runs.Add(1)
	return j.err
}

func TestScheduler_AddJobRejectsInvalidSchedule(t *testing.T) {
	s := New(zerolog.Nop())

	err := s.AddJob("every day please", &countingJob{name: "bad"})
	assert.Error(t, err)
	assert.Empty(t, s.Jobs())
}

func TestScheduler_AddJobRequiresSecondsField(t *testing.T) {
	s := New(zerolog.Nop())

	require.NoError(t, s.AddJob("0 */30 * * * *", &countingJob{name: "wal"}))
	assert.Error(t, s.AddJob("*/30 * * * *", &countingJob{name: "five_fields"}))
}

func TestScheduler_JobsSortedByName(t *testing.T) {
	s := New(zerolog.Nop())
	require.NoError(t, s.AddJob("0 0 3 * * *", &countingJob{name: "r2_backup"}))
	require.NoError(t, s.AddJob("@hourly", &countingJob{name: "due_review_report"}))

	assert.Equal(t, []JobInfo{
		{Name: "due_review_report", Schedule: "@hourly"},
		{Name: "r2_backup", Schedule: "0 0 3 * * *"},
	}, s.Jobs())
}

func TestScheduler_RunsJobsOnSchedule(t *testing.T) {
	s := New(zerolog.Nop())
	ok := &countingJob{name: "ok"}
	failing := &countingJob{name: "failing", err: errors.New("boom")}
	require.NoError(t, s.AddJob("@every 1s", ok))
	require.NoError(t, s.AddJob("@every 1s", failing))

	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return ok.runs.Load() > 0 && failing.runs.Load() > 0
	}, 5*time.Second, 50*time.Millisecond)
}

func TestScheduler_RunNow(t *testing.T) {
	s := New(zerolog.Nop())
	job := &countingJob{name: "manual", err: errors.New("nope")}

	err := s.RunNow(job)
	assert.EqualError(t, err, "nope")
	assert.Equal(t, int32(1), job.runs.Load())
}
