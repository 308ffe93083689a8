package srs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/rfitrainer/internal/domain"
)

func newMemoryStore() *Store {
	return NewStore(NewInMemoryRepository(zerolog.Nop()), zerolog.Nop())
}

func TestRecordAnswer_CreatesOnFirstAnswer(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	now := time.UnixMilli(1_700_000_000_000)

	rec, err := store.RecordAnswer(ctx, domain.PositionBTN, "K9o", true, now)
	require.NoError(t, err)
	assert.Equal(t, "RFI_BTN_K9o", rec.ID)
	assert.Equal(t, 1, rec.Streak)
	assert.Equal(t, FirstIntervalMs, rec.IntervalMs)
	assert.Equal(t, DefaultEasinessFactor, rec.EasinessFactor)

	stored, err := store.Get(ctx, domain.PositionBTN, "K9o")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, rec, *stored)
}

func TestRecordAnswer_IncorrectTwice(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	first := time.UnixMilli(1_700_000_000_000)
	second := first.Add(5 * time.Second)

	a, err := store.RecordAnswer(ctx, domain.PositionCO, "A5s", false, first)
	require.NoError(t, err)
	b, err := store.RecordAnswer(ctx, domain.PositionCO, "A5s", false, second)
	require.NoError(t, err)

	assert.Equal(t, 0, a.Streak)
	assert.Equal(t, 0, b.Streak)
	assert.Equal(t, int64(60_000), a.IntervalMs)
	assert.Equal(t, int64(60_000), b.IntervalMs)
	assert.Equal(t, second.UnixMilli()+60_000, b.NextReviewAt)
}

func TestRecordAnswer_ThreeCorrect(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	now := time.UnixMilli(1_700_000_000_000)

	var intervals []int64
	for i := 0; i < 3; i++ {
		rec, err := store.RecordAnswer(ctx, domain.PositionHJ, "KTs", true, now)
		require.NoError(t, err)
		intervals = append(intervals, rec.IntervalMs)
	}

	assert.Equal(t, []int64{600_000, 86_400_000, 172_800_000}, intervals)
}

func TestRecordAnswer_WrongResetsStreak(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	now := time.UnixMilli(1_700_000_000_000)

	for i := 0; i < 3; i++ {
		_, err := store.RecordAnswer(ctx, domain.PositionLJ, "99", true, now)
		require.NoError(t, err)
	}
	rec, err := store.RecordAnswer(ctx, domain.PositionLJ, "99", false, now)
	require.NoError(t, err)
	assert.Equal(t, 0, rec.Streak)

	rec, err = store.RecordAnswer(ctx, domain.PositionLJ, "99", true, now)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Streak)
	assert.Equal(t, FirstIntervalMs, rec.IntervalMs)
}

func TestDueItems_Boundary(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	T := time.UnixMilli(1_700_000_000_000)

	_, err := store.RecordAnswer(ctx, domain.PositionSB, "J7s", false, T)
	require.NoError(t, err)

	due, err := store.DueItems(ctx, T.Add(59_999*time.Millisecond))
	require.NoError(t, err)
	assert.Empty(t, due)

	due, err = store.DueItems(ctx, T.Add(60_000*time.Millisecond))
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "RFI_SB_J7s", due[0].ID)
}

func TestDueItems_OnlyDueRecords(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	T := time.UnixMilli(1_700_000_000_000)

	_, err := store.RecordAnswer(ctx, domain.PositionSB, "J7s", false, T)
	require.NoError(t, err)
	_, err = store.RecordAnswer(ctx, domain.PositionSB, "A2o", true, T)
	require.NoError(t, err)

	due, err := store.DueItems(ctx, T.Add(2*time.Minute))
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "J7s", due[0].Hand)

	due, err = store.DueItems(ctx, T.Add(10*time.Minute))
	require.NoError(t, err)
	assert.Len(t, due, 2)
}

func TestRecordAnswer_ConcurrentDifferentKeys(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	now := time.UnixMilli(1_700_000_000_000)

	hands := domain.CanonicalHands()[:40]
	var wg sync.WaitGroup
	for _, h := range hands {
		wg.Add(1)
		go func(hand string) {
			defer wg.Done()
			_, err := store.RecordAnswer(ctx, domain.PositionBTN, hand, true, now)
			assert.NoError(t, err)
		}(h)
	}
	wg.Wait()

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(hands), n)

	all, err := store.All(ctx)
	require.NoError(t, err)
	for _, rec := range all {
		assert.Equal(t, 1, rec.Streak, "record %s", rec.ID)
	}
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	now := time.Now()

	for i := 0; i < 3; i++ {
		_, err := store.RecordAnswer(ctx, domain.PositionUTG, fmt.Sprintf("hand%d", i), false, now)
		require.NoError(t, err)
	}
	require.NoError(t, store.Reset(ctx))

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

type failingRepository struct {
	InMemoryRepository
}

func (f *failingRepository) Get(context.Context, string) (*Record, error) {
	return nil, errors.New("disk unavailable")
}

func TestRecordAnswer_PropagatesStorageError(t *testing.T) {
	store := NewStore(&failingRepository{}, zerolog.Nop())

	_, err := store.RecordAnswer(context.Background(), domain.PositionBTN, "AA", true, time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk unavailable")
}
