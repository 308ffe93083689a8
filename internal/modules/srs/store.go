package srs

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/rfitrainer/internal/domain"
)

// Store is the Repetition Store: it reads due items and is the only writer
// of repetition records during normal operation.
type Store struct {
	repo Repository
	log  zerolog.Logger
}

// NewStore creates a Store over repo.
func NewStore(repo Repository, log zerolog.Logger) *Store {
	return &Store{
		repo: repo,
		log:  log.With().Str("service", "srs").Logger(),
	}
}

// DueItems returns every record with NextReviewAt <= now, in no particular order.
func (s *Store) DueItems(ctx context.Context, now time.Time) ([]Record, error) {
	due, err := s.repo.DueBefore(ctx, now.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("failed to load due items: %w", err)
	}
	return due, nil
}

// RecordAnswer applies the update rule to the (position, hand) record,
// creating it with defaults on first answer, and persists the result.
// Answers for different pairs never touch the same row; concurrent answers
// for the same pair are last-write-wins.
func (s *Store) RecordAnswer(ctx context.Context, position domain.Position, hand string, isCorrect bool, now time.Time) (Record, error) {
	key := Key(position, hand)

	existing, err := s.repo.Get(ctx, key)
	if err != nil {
		return Record{}, fmt.Errorf("failed to load srs item %s: %w", key, err)
	}

	current := NewRecord(position, hand)
	if existing != nil {
		current = *existing
	}

	updated := Advance(current, isCorrect, now)
	if err := s.repo.Upsert(ctx, updated); err != nil {
		return Record{}, err
	}

	s.log.Debug().
		Str("id", key).
		Bool("correct", isCorrect).
		Int("streak", updated.Streak).
		Int64("interval_ms", updated.IntervalMs).
		Msg("Repetition record updated")

	return updated, nil
}

// Get returns the record for (position, hand), or nil if it was never answered.
func (s *Store) Get(ctx context.Context, position domain.Position, hand string) (*Record, error) {
	return s.repo.Get(ctx, Key(position, hand))
}

// All returns every record, due or not.
func (s *Store) All(ctx context.Context) ([]Record, error) {
	return s.repo.All(ctx)
}

// Count returns the number of tracked records.
func (s *Store) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

// Reset deletes every record.
func (s *Store) Reset(ctx context.Context) error {
	if err := s.repo.DeleteAll(ctx); err != nil {
		return err
	}
	s.log.Info().Msg("Repetition queue cleared")
	return nil
}

// Restore replaces the whole queue, used when importing a backup.
func (s *Store) Restore(ctx context.Context, records []Record) error {
	return s.repo.ReplaceAll(ctx, records)
}
