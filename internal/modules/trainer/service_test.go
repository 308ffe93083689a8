package trainer

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/aristath/rfitrainer/internal/database"
	"github.com/aristath/rfitrainer/internal/domain"
	"github.com/aristath/rfitrainer/internal/events"
	"github.com/aristath/rfitrainer/internal/modules/attempts"
	"github.com/aristath/rfitrainer/internal/modules/selector"
	"github.com/aristath/rfitrainer/internal/modules/srs"
	"github.com/aristath/rfitrainer/internal/modules/strategy"
)

var testNow = time.UnixMilli(1_700_000_000_000)

type mockAttemptLog struct {
	mock.Mock
}

func (m *mockAttemptLog) Append(ctx context.Context, a attempts.Attempt) error {
	return m.Called(ctx, a).Error(0)
}

func (m *mockAttemptLog) Recent(ctx context.Context, limit int) ([]attempts.Attempt, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]attempts.Attempt), args.Error(1)
}

func (m *mockAttemptLog) All(ctx context.Context) ([]attempts.Attempt, error) {
	args := m.Called(ctx)
	return args.Get(0).([]attempts.Attempt), args.Error(1)
}

func (m *mockAttemptLog) DeleteAll(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func testIndex() *strategy.Index {
	return strategy.NewIndex(&strategy.Table{
		Meta:  strategy.Meta{Format: "rfi", Ante: true, StackBBLabelSeen: 50},
		Sizes: strategy.Sizes{OpenRaiseBB: 2.3, SBRaiseBB: 3, AllInLabelSeenBB: 50},
		Strategies: map[domain.Position]strategy.HandStrategy{
			domain.PositionBTN: {
				"AA":  {Raise: 1},
				"K9o": {Raise: 0.75, Fold: 0.25},
				"72o": {Fold: 1},
			},
			domain.PositionSB: {
				"J7s": {Raise: 0.2, Call: 0.5, Fold: 0.3},
			},
		},
	})
}

func attemptDB(t *testing.T) *attempts.Repository {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(database.Schema(database.NameLedger))
	require.NoError(t, err)
	return attempts.NewRepository(db, zerolog.Nop())
}

func newTestService(t *testing.T, log AttemptLog, opts ...Option) (*Service, *srs.Store) {
	index := testIndex()
	store := srs.NewStore(srs.NewInMemoryRepository(zerolog.Nop()), zerolog.Nop())
	sel := selector.New(index, store, zerolog.Nop())
	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	return NewService(index, store, sel, log, zerolog.Nop(), opts...), store
}

func TestAnswer_Correct(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, attemptDB(t))

	fb, err := svc.Answer(ctx, domain.PositionBTN, "K9o", domain.ActionRaise)
	require.NoError(t, err)
	assert.Equal(t, ResultCorrect, fb.Result)
	assert.True(t, fb.IsCorrect)
	assert.Equal(t, domain.ActionRaise, fb.CorrectAction)
	assert.InDelta(t, 0.25, fb.BoundaryScore, 1e-9)
	assert.Equal(t, 1, fb.Record.Streak)
	assert.Equal(t, testNow.UnixMilli()+srs.FirstIntervalMs, fb.Record.NextReviewAt)
	assert.NotEmpty(t, fb.AttemptID)
}

func TestAnswer_IncorrectLogsAttemptAndSchedulesReview(t *testing.T) {
	ctx := context.Background()
	log := attemptDB(t)
	svc, store := newTestService(t, log)

	fb, err := svc.Answer(ctx, domain.PositionSB, "J7s", domain.ActionRaise)
	require.NoError(t, err)
	assert.Equal(t, ResultIncorrect, fb.Result)
	assert.Equal(t, domain.ActionCall, fb.CorrectAction)
	assert.Equal(t, srs.IncorrectIntervalMs, fb.Record.IntervalMs)

	history, err := svc.History(ctx, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.ActionRaise, history[0].UserAction)
	assert.False(t, history[0].IsCorrect)

	rec, err := store.Get(ctx, domain.PositionSB, "J7s")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, 0, rec.Streak)
}

func TestAnswer_UnknownHand(t *testing.T) {
	svc, store := newTestService(t, attemptDB(t))

	_, err := svc.Answer(context.Background(), domain.PositionBTN, "32o", domain.ActionFold)
	assert.ErrorIs(t, err, strategy.ErrNotFound)

	n, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestAnswer_AttemptLogFailureDoesNotFailAnswer(t *testing.T) {
	log := new(mockAttemptLog)
	log.On("Append", mock.Anything, mock.AnythingOfType("attempts.Attempt")).Return(errors.New("disk full"))
	svc, _ := newTestService(t, log)

	fb, err := svc.Answer(context.Background(), domain.PositionBTN, "AA", domain.ActionRaise)
	require.NoError(t, err)
	assert.Equal(t, ResultCorrect, fb.Result)
	assert.Empty(t, fb.AttemptID)
	assert.Equal(t, 1, fb.Record.Streak)
	log.AssertExpectations(t)
}

func TestAnswer_EmitsEvent(t *testing.T) {
	bus := events.NewBus(zerolog.Nop())
	var got *events.Event
	bus.Subscribe(events.AnswerRecorded, func(e *events.Event) { got = e })

	svc, _ := newTestService(t, attemptDB(t), WithEventManager(events.NewManager(bus, zerolog.Nop())))
	_, err := svc.Answer(context.Background(), domain.PositionBTN, "72o", domain.ActionRaise)
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Equal(t, "72o", got.Data["hand"])
	assert.Equal(t, "fold", got.Data["correct_action"])
	assert.Equal(t, false, got.Data["is_correct"])
}

func TestSelectNext_UsesSettings(t *testing.T) {
	svc, _ := newTestService(t, attemptDB(t))

	for i := 0; i < 50; i++ {
		pick, err := svc.SelectNext(context.Background(),
			domain.NewSessionSettings([]domain.Position{domain.PositionSB}, domain.ModeRandom))
		require.NoError(t, err)
		assert.Equal(t, domain.PositionSB, pick.Position)
		assert.Equal(t, "J7s", pick.Hand)
	}

	_, err := svc.SelectNext(context.Background(),
		domain.NewSessionSettings([]domain.Position{domain.PositionUTG}, domain.ModeRandom))
	assert.ErrorIs(t, err, selector.ErrNoCandidates)
}

func TestStatsAndReset(t *testing.T) {
	ctx := context.Background()
	bus := events.NewBus(zerolog.Nop())
	var reset *events.Event
	bus.Subscribe(events.ProgressReset, func(e *events.Event) { reset = e })

	svc, _ := newTestService(t, attemptDB(t), WithEventManager(events.NewManager(bus, zerolog.Nop())))

	_, err := svc.Answer(ctx, domain.PositionBTN, "AA", domain.ActionRaise)
	require.NoError(t, err)
	_, err = svc.Answer(ctx, domain.PositionBTN, "K9o", domain.ActionFold)
	require.NoError(t, err)
	_, err = svc.RecordAnswer(ctx, domain.PositionSB, "J7s", false)
	require.NoError(t, err)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Correct)
	assert.InDelta(t, 0.5, stats.Accuracy, 1e-9)
	assert.Equal(t, 3, stats.TrackedCount)
	assert.Zero(t, stats.DueCount)

	result, err := svc.Reset(ctx)
	require.NoError(t, err)
	assert.Equal(t, ResetResult{AttemptsDeleted: 2, RecordsDeleted: 3}, result)
	require.NotNil(t, reset)

	stats, err = svc.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Total)
	assert.Zero(t, stats.TrackedCount)
}

func TestDueItems_UsesClock(t *testing.T) {
	ctx := context.Background()
	current := testNow
	index := testIndex()
	store := srs.NewStore(srs.NewInMemoryRepository(zerolog.Nop()), zerolog.Nop())
	svc := NewService(index, store, selector.New(index, store, zerolog.Nop()), attemptDB(t), zerolog.Nop(),
		WithClock(func() time.Time { return current }))

	_, err := svc.Answer(ctx, domain.PositionBTN, "AA", domain.ActionFold)
	require.NoError(t, err)

	due, err := svc.DueItems(ctx)
	require.NoError(t, err)
	assert.Empty(t, due)

	current = testNow.Add(time.Minute)
	due, err = svc.DueItems(ctx)
	require.NoError(t, err)
	assert.Len(t, due, 1)
}

func TestStrategyInfo(t *testing.T) {
	svc, _ := newTestService(t, attemptDB(t))

	info := svc.StrategyInfo()
	assert.Equal(t, []domain.Position{domain.PositionBTN, domain.PositionSB}, info.Positions)
	assert.Equal(t, 4, info.HandCount)
	assert.Equal(t, 2.3, info.Sizes.OpenRaiseBB)

	grid, err := svc.Chart(domain.PositionBTN)
	require.NoError(t, err)
	require.NotNil(t, grid[0][0])
	assert.Equal(t, "AA", grid[0][0].Hand)
}

func TestSessionStats(t *testing.T) {
	var s SessionStats
	s = s.Record(true).Record(true).Record(false).Record(true)

	assert.Equal(t, SessionStats{Streak: 1, Total: 4, Correct: 3}, s)
	assert.InDelta(t, 0.75, s.Accuracy(), 1e-9)
	assert.True(t, s.Finished(4))
	assert.False(t, s.Finished(0))
	assert.False(t, s.Finished(5))
}
