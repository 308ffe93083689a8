package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/aristath/rfitrainer/internal/database"
	"github.com/aristath/rfitrainer/internal/domain"
	"github.com/aristath/rfitrainer/internal/events"
	"github.com/aristath/rfitrainer/internal/modules/settings"
	"github.com/aristath/rfitrainer/internal/modules/srs"
	"github.com/aristath/rfitrainer/internal/reliability"
	testingutil "github.com/aristath/rfitrainer/internal/testing"
)

type mockSettings struct {
	mock.Mock
}

func (m *mockSettings) GetFloat(key string) (float64, error) {
	args := m.Called(key)
	return args.Get(0).(float64), args.Error(1)
}

type mockUploader struct {
	mock.Mock
}

func (m *mockUploader) CreateAndUploadBackup(ctx context.Context) (reliability.BackupInfo, error) {
	args := m.Called(ctx)
	return args.Get(0).(reliability.BackupInfo), args.Error(1)
}

func (m *mockUploader) RotateOldBackups(ctx context.Context, retentionDays int) (int, error) {
	args := m.Called(ctx, retentionDays)
	return args.Int(0), args.Error(1)
}

func TestCheckWALCheckpointsJob_Name(t *testing.T) {
	assert.Equal(t, "check_wal_checkpoints", NewCheckWALCheckpointsJob().Name())
}

func TestCheckWALCheckpointsJob_Run_NoDatabases(t *testing.T) {
	job := NewCheckWALCheckpointsJob(nil, nil)
	job.SetLogger(zerolog.Nop())

	assert.NoError(t, job.Run())
}

func TestCheckWALCheckpointsJob_Run_WithDatabases(t *testing.T) {
	config, _ := testingutil.NewTestDB(t, database.NameConfig)
	progress, _ := testingutil.NewTestDB(t, database.NameProgress)

	job := NewCheckWALCheckpointsJob(config, nil, progress)
	assert.NoError(t, job.Run())
}

func TestR2BackupJob_DisabledSkipsUpload(t *testing.T) {
	s := new(mockSettings)
	s.On("GetFloat", settings.KeyR2BackupEnabled).Return(0.0, nil)
	up := new(mockUploader)

	job := NewR2BackupJob(s, up, zerolog.Nop())
	require.NoError(t, job.Run())

	up.AssertNotCalled(t, "CreateAndUploadBackup", mock.Anything)
	s.AssertExpectations(t)
}

func TestR2BackupJob_UploadsThenRotates(t *testing.T) {
	s := new(mockSettings)
	s.On("GetFloat", settings.KeyR2BackupEnabled).Return(1.0, nil)
	s.On("GetFloat", settings.KeyR2RetentionDays).Return(14.0, nil)

	up := new(mockUploader)
	up.On("CreateAndUploadBackup", mock.Anything).
		Return(reliability.BackupInfo{Filename: "rfitrainer-backup-2026-01-01-030000.msgpack.gz", SizeBytes: 512}, nil)
	up.On("RotateOldBackups", mock.Anything, 14).Return(2, nil)

	job := NewR2BackupJob(s, up, zerolog.Nop())
	require.NoError(t, job.Run())

	assert.Equal(t, "r2_backup", job.Name())
	up.AssertExpectations(t)
}

func TestR2BackupJob_UploadFailure(t *testing.T) {
	s := new(mockSettings)
	s.On("GetFloat", settings.KeyR2BackupEnabled).Return(1.0, nil)
	s.On("GetFloat", settings.KeyR2RetentionDays).Return(30.0, nil)

	up := new(mockUploader)
	up.On("CreateAndUploadBackup", mock.Anything).Return(reliability.BackupInfo{}, errors.New("bucket gone"))

	err := NewR2BackupJob(s, up, zerolog.Nop()).Run()
	assert.EqualError(t, err, "bucket gone")
	up.AssertNotCalled(t, "RotateOldBackups", mock.Anything, mock.Anything)
}

func TestR2BackupJob_UploadFailureEmitsError(t *testing.T) {
	s := new(mockSettings)
	s.On("GetFloat", settings.KeyR2BackupEnabled).Return(1.0, nil)
	s.On("GetFloat", settings.KeyR2RetentionDays).Return(14.0, nil)

	up := new(mockUploader)
	up.On("CreateAndUploadBackup", mock.Anything).Return(reliability.BackupInfo{}, errors.New("bucket gone"))

	bus := events.NewBus(zerolog.Nop())
	var received []*events.Event
	unsubscribe := bus.Subscribe(events.ErrorOccurred, func(e *events.Event) {
		received = append(received, e)
	})
	defer unsubscribe()

	job := NewR2BackupJob(s, up, zerolog.Nop())
	job.SetEventManager(events.NewManager(bus, zerolog.Nop()))

	require.Error(t, job.Run())
	require.Len(t, received, 1)
	assert.Equal(t, "r2_backup", received[0].Module)
	assert.Equal(t, "bucket gone", received[0].Data["error"])
}

func TestR2BackupJob_RotationFailureIsNotFatal(t *testing.T) {
	s := new(mockSettings)
	s.On("GetFloat", settings.KeyR2BackupEnabled).Return(1.0, nil)
	s.On("GetFloat", settings.KeyR2RetentionDays).Return(30.0, nil)

	up := new(mockUploader)
	up.On("CreateAndUploadBackup", mock.Anything).Return(reliability.BackupInfo{Filename: "x"}, nil)
	up.On("RotateOldBackups", mock.Anything, 30).Return(0, errors.New("list failed"))

	assert.NoError(t, NewR2BackupJob(s, up, zerolog.Nop()).Run())
}

func TestDueReviewReportJob_Run(t *testing.T) {
	ctx := context.Background()
	store := srs.NewStore(srs.NewInMemoryRepository(zerolog.Nop()), zerolog.Nop())
	answered := time.UnixMilli(1_700_000_000_000)

	_, err := store.RecordAnswer(ctx, domain.PositionBTN, "K9o", false, answered)
	require.NoError(t, err)
	_, err = store.RecordAnswer(ctx, domain.PositionSB, "AA", true, answered)
	require.NoError(t, err)

	job := NewDueReviewReportJob(store, zerolog.Nop())
	job.now = func() time.Time { return answered.Add(2 * time.Minute) }

	assert.Equal(t, "due_review_report", job.Name())
	assert.NoError(t, job.Run())
}

func TestDueReviewReportJob_Fixtures(t *testing.T) {
	reviews := testingutil.NewMockReviewSource(testingutil.NewReviewFixtures()...)

	job := NewDueReviewReportJob(reviews, zerolog.Nop())
	job.now = func() time.Time {
		return time.UnixMilli(testingutil.FixtureEpochMs + srs.SecondIntervalMs)
	}

	require.NoError(t, job.Run())
	assert.Equal(t, 2, reviews.Calls())
}

func TestDueReviewReportJob_SourceError(t *testing.T) {
	reviews := testingutil.NewMockReviewSource()
	reviews.SetError(errors.New("database is locked"))

	err := NewDueReviewReportJob(reviews, zerolog.Nop()).Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database is locked")
	assert.Equal(t, 1, reviews.Calls())
}
