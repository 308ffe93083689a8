// Package trainer is the caller-facing API of the drill: it picks questions,
// grades answers and reports progress.
package trainer

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/rfitrainer/internal/domain"
	"github.com/aristath/rfitrainer/internal/events"
	"github.com/aristath/rfitrainer/internal/modules/attempts"
	"github.com/aristath/rfitrainer/internal/modules/selector"
	"github.com/aristath/rfitrainer/internal/modules/srs"
	"github.com/aristath/rfitrainer/internal/modules/strategy"
)

// AttemptLog is the persistence collaborator for graded answers.
type AttemptLog interface {
	Append(ctx context.Context, a attempts.Attempt) error
	Recent(ctx context.Context, limit int) ([]attempts.Attempt, error)
	All(ctx context.Context) ([]attempts.Attempt, error)
	DeleteAll(ctx context.Context) (int, error)
}

// Service wires the strategy index, repetition store and selector together.
type Service struct {
	index        *strategy.Index
	store        *srs.Store
	selector     *selector.Selector
	attempts     AttemptLog
	eventManager *events.Manager
	now          func() time.Time
	log          zerolog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithEventManager makes the service emit events. Without it nothing is emitted.
func WithEventManager(m *events.Manager) Option {
	return func(s *Service) {
		s.eventManager = m
	}
}

// NewService creates the trainer service.
func NewService(
	index *strategy.Index,
	store *srs.Store,
	sel *selector.Selector,
	attemptLog AttemptLog,
	log zerolog.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		index:    index,
		store:    store,
		selector: sel,
		attempts: attemptLog,
		now:      time.Now,
		log:      log.With().Str("service", "trainer").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SelectNext picks the next question for settings.
func (s *Service) SelectNext(ctx context.Context, settings domain.SessionSettings) (selector.Pick, error) {
	return s.selector.SelectNext(ctx, settings, s.now())
}

// Evaluate returns the strategy evaluation of (position, hand).
func (s *Service) Evaluate(position domain.Position, hand string) (strategy.HandEvaluation, error) {
	return s.index.Evaluate(position, hand)
}

// Chart returns the 13x13 grid of evaluations for position.
func (s *Service) Chart(position domain.Position) ([][]*strategy.HandEvaluation, error) {
	return s.index.Chart(position)
}

// StrategyInfo describes the loaded table.
func (s *Service) StrategyInfo() StrategyInfo {
	positions := s.index.Positions()
	count := 0
	for _, p := range positions {
		count += len(s.index.AllEvaluations(p))
	}
	return StrategyInfo{
		Meta:      s.index.Meta(),
		Sizes:     s.index.Sizes(),
		Positions: positions,
		HandCount: count,
	}
}

// RecordAnswer updates the repetition record of (position, hand) without
// grading or logging an attempt.
func (s *Service) RecordAnswer(ctx context.Context, position domain.Position, hand string, isCorrect bool) (srs.Record, error) {
	return s.store.RecordAnswer(ctx, position, hand, isCorrect, s.now())
}

// Answer grades userAction against the best action for (position, hand),
// logs the attempt and advances the repetition record.
// It returns strategy.ErrNotFound for hands outside the table.
func (s *Service) Answer(ctx context.Context, position domain.Position, hand string, userAction domain.Action) (Feedback, error) {
	ev, err := s.index.Evaluate(position, hand)
	if err != nil {
		return Feedback{}, err
	}

	now := s.now()
	isCorrect := userAction == ev.BestAction

	attempt := attempts.New(position, hand, userAction, isCorrect, ev.BoundaryScore, now)
	if err := s.attempts.Append(ctx, attempt); err != nil {
		s.log.Error().Err(err).
			Str("position", string(position)).
			Str("hand", hand).
			Msg("Failed to log attempt")
		attempt.ID = ""
	}

	rec, err := s.store.RecordAnswer(ctx, position, hand, isCorrect, now)
	if err != nil {
		return Feedback{}, fmt.Errorf("failed to record answer: %w", err)
	}

	fb := Feedback{
		Result:        ResultIncorrect,
		IsCorrect:     isCorrect,
		Position:      position,
		Hand:          hand,
		CorrectAction: ev.BestAction,
		UserAction:    userAction,
		Frequencies:   ev.Frequencies,
		BoundaryScore: ev.BoundaryScore,
		Record:        rec,
		AttemptID:     attempt.ID,
	}
	if isCorrect {
		fb.Result = ResultCorrect
	}

	if s.eventManager != nil {
		s.eventManager.EmitTyped(events.AnswerRecorded, "trainer", &events.AnswerRecordedData{
			AttemptID:     attempt.ID,
			Position:      string(position),
			Hand:          hand,
			UserAction:    string(userAction),
			CorrectAction: string(ev.BestAction),
			IsCorrect:     isCorrect,
			BoundaryScore: ev.BoundaryScore,
			Streak:        rec.Streak,
			NextReviewAt:  rec.NextReviewAt,
		})
	}

	s.log.Debug().
		Str("position", string(position)).
		Str("hand", hand).
		Str("result", string(fb.Result)).
		Msg("Answer graded")

	return fb, nil
}

// DueItems returns the records due now.
func (s *Service) DueItems(ctx context.Context) ([]srs.Record, error) {
	return s.store.DueItems(ctx, s.now())
}

// History returns the most recent attempts, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]attempts.Attempt, error) {
	return s.attempts.Recent(ctx, limit)
}

// Stats summarises the attempt log and the repetition queue.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	list, err := s.attempts.All(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to load attempts: %w", err)
	}
	due, err := s.store.DueItems(ctx, s.now())
	if err != nil {
		return Stats{}, err
	}
	tracked, err := s.store.Count(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to count srs items: %w", err)
	}

	return Stats{
		Stats:        attempts.ComputeStats(list),
		DueCount:     len(due),
		TrackedCount: tracked,
	}, nil
}

// Reset clears the attempt log and the repetition queue.
func (s *Service) Reset(ctx context.Context) (ResetResult, error) {
	records, err := s.store.Count(ctx)
	if err != nil {
		return ResetResult{}, fmt.Errorf("failed to count srs items: %w", err)
	}
	deleted, err := s.attempts.DeleteAll(ctx)
	if err != nil {
		return ResetResult{}, err
	}
	if err := s.store.Reset(ctx); err != nil {
		return ResetResult{}, err
	}

	result := ResetResult{AttemptsDeleted: deleted, RecordsDeleted: records}
	if s.eventManager != nil {
		s.eventManager.EmitTyped(events.ProgressReset, "trainer", &events.ProgressResetData{
			AttemptsDeleted: result.AttemptsDeleted,
			RecordsDeleted:  result.RecordsDeleted,
		})
	}
	s.log.Info().
		Int("attempts", result.AttemptsDeleted).
		Int("records", result.RecordsDeleted).
		Msg("Progress reset")
	return result, nil
}
