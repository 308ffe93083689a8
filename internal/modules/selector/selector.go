// Package selector picks the next (position, hand) to quiz.
//
// Each call draws one uniform value r in [0,1) and walks an ordered list of
// tiers. A tier either returns a pick or falls through to the next one:
//
//	due-review  r < 0.20         a due repetition record in an active position
//	boundary    r < 0.90         the hardest 20% (at least 20) of all active hands
//	random      otherwise        a uniform position, then a uniform hand
//
// The mode in SessionSettings adjusts the walk:
//
//	boundary    the boundary tier ignores r
//	random      the boundary tier is skipped
//	review      due-review ignores r, and the boundary and random pools are
//	            limited to hands that already have a repetition record
//
// Due-review always runs first, whatever the mode. The selector keeps no
// state between calls.
package selector

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/rfitrainer/internal/domain"
	"github.com/aristath/rfitrainer/internal/modules/srs"
	"github.com/aristath/rfitrainer/internal/modules/strategy"
)

// Draw cut-offs and boundary slice sizing.
const (
	DueReviewCutoff  = 0.20
	BoundaryCutoff   = 0.90
	BoundaryFraction = 0.2
	MinBoundarySlice = 20
)

// ErrNoCandidates means no question can be produced for these settings,
// usually because an active position has no hands in the table.
var ErrNoCandidates = errors.New("no candidates for the current settings")

// Tier names the selection strategy that produced a pick.
type Tier string

const (
	TierDueReview Tier = "due_review"
	TierBoundary  Tier = "boundary"
	TierRandom    Tier = "random"
)

// Pick is the selector's answer.
type Pick struct {
	Position   domain.Position         `json:"position"`
	Hand       string                  `json:"hand"`
	Evaluation strategy.HandEvaluation `json:"evaluation"`
	Tier       Tier                    `json:"tier"`
}

// Rand is the randomness the selector consumes. *rand.Rand from math/rand/v2
// satisfies it.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

// Evaluator is the read side of the strategy index.
type Evaluator interface {
	Evaluate(position domain.Position, hand string) (strategy.HandEvaluation, error)
	AllEvaluations(position domain.Position) []strategy.HandEvaluation
	Positions() []domain.Position
}

// ReviewSource is the read side of the repetition store.
type ReviewSource interface {
	DueItems(ctx context.Context, now time.Time) ([]srs.Record, error)
	All(ctx context.Context) ([]srs.Record, error)
}

// Selector implements the three-tier selection policy.
type Selector struct {
	index   Evaluator
	reviews ReviewSource
	rng     Rand
	log     zerolog.Logger
}

// Option configures a Selector.
type Option func(*Selector)

// WithRand replaces the default process-wide random source.
func WithRand(r Rand) Option {
	return func(s *Selector) {
		s.rng = r
	}
}

// New creates a Selector.
func New(index Evaluator, reviews ReviewSource, log zerolog.Logger, opts ...Option) *Selector {
	s := &Selector{
		index:   index,
		reviews: reviews,
		rng:     globalRand{},
		log:     log.With().Str("service", "selector").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// globalRand uses the top-level math/rand/v2 functions, which are safe for
// concurrent use.
type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }
func (globalRand) IntN(n int) int   { return rand.IntN(n) }

// BoundarySliceSize is max(20, floor(poolSize * 0.2)). Callers cap it at poolSize.
func BoundarySliceSize(poolSize int) int {
	size := int(math.Floor(float64(poolSize) * BoundaryFraction))
	if size < MinBoundarySlice {
		size = MinBoundarySlice
	}
	return size
}

// request carries the inputs of one SelectNext call through the tiers.
type request struct {
	ctx       context.Context
	settings  domain.SessionSettings
	now       time.Time
	draw      float64
	active    []domain.Position
	activeSet map[domain.Position]bool
	seen      []strategy.HandEvaluation // review mode only
}

// tier returns ok=false to fall through.
type tier func(req *request) (pick Pick, ok bool)

func (s *Selector) tiers(mode domain.Mode) []tier {
	if mode == domain.ModeRandom {
		return []tier{s.dueReviewTier, s.randomTier}
	}
	return []tier{s.dueReviewTier, s.boundaryTier, s.randomTier}
}

// SelectNext returns the next question, or ErrNoCandidates.
func (s *Selector) SelectNext(ctx context.Context, settings domain.SessionSettings, now time.Time) (Pick, error) {
	req := &request{
		ctx:      ctx,
		settings: settings,
		now:      now,
		draw:     s.rng.Float64(),
		active:   settings.ActivePositions(s.index.Positions()),
	}
	req.activeSet = make(map[domain.Position]bool, len(req.active))
	for _, p := range req.active {
		req.activeSet[p] = true
	}
	if settings.Mode == domain.ModeReview {
		req.seen = s.seenCandidates(req)
	}

	for _, try := range s.tiers(settings.Mode) {
		if pick, ok := try(req); ok {
			s.log.Debug().
				Str("position", string(pick.Position)).
				Str("hand", pick.Hand).
				Str("tier", string(pick.Tier)).
				Float64("draw", req.draw).
				Msg("Selected next hand")
			return pick, nil
		}
	}

	s.log.Warn().
		Interface("positions", req.active).
		Str("mode", string(settings.Mode)).
		Msg("No candidates for selection")
	return Pick{}, ErrNoCandidates
}

func (s *Selector) dueReviewTier(req *request) (Pick, bool) {
	if req.settings.Mode != domain.ModeReview && req.draw >= DueReviewCutoff {
		return Pick{}, false
	}

	due, err := s.reviews.DueItems(req.ctx, req.now)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to load due reviews, skipping due-review tier")
		return Pick{}, false
	}

	relevant := make([]srs.Record, 0, len(due))
	for _, rec := range due {
		if req.activeSet[rec.Position] {
			relevant = append(relevant, rec)
		}
	}
	if len(relevant) == 0 {
		return Pick{}, false
	}

	rec := relevant[s.rng.IntN(len(relevant))]
	ev, err := s.index.Evaluate(rec.Position, rec.Hand)
	if err != nil {
		s.log.Debug().Str("id", rec.ID).Msg("Due item missing from strategy table, falling through")
		return Pick{}, false
	}
	return newPick(ev, TierDueReview), true
}

func (s *Selector) boundaryTier(req *request) (Pick, bool) {
	if req.settings.Mode != domain.ModeBoundary && req.draw >= BoundaryCutoff {
		return Pick{}, false
	}

	var pool []strategy.HandEvaluation
	if len(req.seen) > 0 {
		pool = append(pool, req.seen...)
	} else {
		for _, p := range req.active {
			pool = append(pool, s.index.AllEvaluations(p)...)
		}
	}
	if len(pool) == 0 {
		return Pick{}, false
	}

	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].BoundaryScore > pool[j].BoundaryScore
	})
	top := pool[:min(BoundarySliceSize(len(pool)), len(pool))]

	return newPick(top[s.rng.IntN(len(top))], TierBoundary), true
}

func (s *Selector) randomTier(req *request) (Pick, bool) {
	if len(req.seen) > 0 {
		return newPick(req.seen[s.rng.IntN(len(req.seen))], TierRandom), true
	}
	if len(req.active) == 0 {
		return Pick{}, false
	}

	position := req.active[s.rng.IntN(len(req.active))]
	hands := s.index.AllEvaluations(position)
	if len(hands) == 0 {
		s.log.Warn().Str("position", string(position)).Msg("Position has no hands in strategy table")
		return Pick{}, false
	}
	return newPick(hands[s.rng.IntN(len(hands))], TierRandom), true
}

// seenCandidates resolves every repetition record in an active position,
// due or not, against the strategy index.
func (s *Selector) seenCandidates(req *request) []strategy.HandEvaluation {
	records, err := s.reviews.All(req.ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to load repetition records for review mode")
		return nil
	}

	seen := make([]strategy.HandEvaluation, 0, len(records))
	for _, rec := range records {
		if !req.activeSet[rec.Position] {
			continue
		}
		if ev, err := s.index.Evaluate(rec.Position, rec.Hand); err == nil {
			seen = append(seen, ev)
		}
	}
	return seen
}

func newPick(ev strategy.HandEvaluation, t Tier) Pick {
	return Pick{
		Position:   ev.Position,
		Hand:       ev.Hand,
		Evaluation: ev,
		Tier:       t,
	}
}
