package strategy

import (
	"errors"
	"sort"

	"github.com/aristath/rfitrainer/internal/domain"
)

// ErrNotFound is returned when a position or hand is absent from the table.
// Callers treat it as "skip this candidate", never as fatal.
var ErrNotFound = errors.New("hand not found in strategy table")

// HandEvaluation is the derived view of one (position, hand) entry.
type HandEvaluation struct {
	Position      domain.Position          `json:"position"`
	Hand          string                   `json:"hand"`
	Frequencies   domain.ActionFrequencies `json:"frequencies"`
	BestAction    domain.Action            `json:"bestAction"`
	BoundaryScore float64                  `json:"boundaryScore"`
}

// BoundaryScore returns 1 - max(frequency). 0 means a pure decision;
// the maximum of 2/3 is an even three-way mix.
func BoundaryScore(f domain.ActionFrequencies) float64 {
	return 1 - maxFrequency(f)
}

// BestAction returns the most frequent action. Ties go raise > call > fold.
func BestAction(f domain.ActionFrequencies) domain.Action {
	switch {
	case f.Raise >= f.Call && f.Raise >= f.Fold:
		return domain.ActionRaise
	case f.Call >= f.Fold:
		return domain.ActionCall
	default:
		return domain.ActionFold
	}
}

func maxFrequency(f domain.ActionFrequencies) float64 {
	m := f.Raise
	if f.Call > m {
		m = f.Call
	}
	if f.Fold > m {
		m = f.Fold
	}
	return m
}

// Evaluate derives the evaluation for a single table entry.
func Evaluate(position domain.Position, hand string, f domain.ActionFrequencies) HandEvaluation {
	return HandEvaluation{
		Position:      position,
		Hand:          hand,
		Frequencies:   f,
		BestAction:    BestAction(f),
		BoundaryScore: BoundaryScore(f),
	}
}

// Index answers evaluation queries over a Table. Evaluations are computed once
// at construction, so lookups are plain map reads. It is read-only and safe
// for concurrent use.
type Index struct {
	table       *Table
	positions   []domain.Position
	byPosition  map[domain.Position]map[string]HandEvaluation
	evaluations map[domain.Position][]HandEvaluation
}

// NewIndex builds an Index over table. The table must not be modified afterwards.
func NewIndex(table *Table) *Index {
	ix := &Index{
		table:       table,
		byPosition:  make(map[domain.Position]map[string]HandEvaluation, len(table.Strategies)),
		evaluations: make(map[domain.Position][]HandEvaluation, len(table.Strategies)),
	}

	for position, hands := range table.Strategies {
		lookup := make(map[string]HandEvaluation, len(hands))
		list := make([]HandEvaluation, 0, len(hands))
		for hand, freqs := range hands {
			ev := Evaluate(position, hand, freqs)
			lookup[hand] = ev
			list = append(list, ev)
		}
		sortByChart(list)
		ix.byPosition[position] = lookup
		ix.evaluations[position] = list
		ix.positions = append(ix.positions, position)
	}
	ix.positions = domain.SortPositions(ix.positions)

	return ix
}

// Evaluate returns the evaluation of hand at position, or ErrNotFound.
func (ix *Index) Evaluate(position domain.Position, hand string) (HandEvaluation, error) {
	hands, ok := ix.byPosition[position]
	if !ok {
		return HandEvaluation{}, ErrNotFound
	}
	ev, ok := hands[hand]
	if !ok {
		return HandEvaluation{}, ErrNotFound
	}
	return ev, nil
}

// AllEvaluations returns one evaluation per hand defined at position.
// Callers must not rely on the order. Unknown positions yield an empty slice.
func (ix *Index) AllEvaluations(position domain.Position) []HandEvaluation {
	list := ix.evaluations[position]
	out := make([]HandEvaluation, len(list))
	copy(out, list)
	return out
}

// Positions returns the positions present in the table, in seat order.
func (ix *Index) Positions() []domain.Position {
	return append([]domain.Position(nil), ix.positions...)
}

// Meta returns the table metadata.
func (ix *Index) Meta() Meta {
	return ix.table.Meta
}

// Sizes returns the bet sizes the table assumes.
func (ix *Index) Sizes() Sizes {
	return ix.table.Sizes
}

// Chart lays out the evaluations of position on the 13x13 starting-hand grid.
// Cells for hands missing from the table are nil.
func (ix *Index) Chart(position domain.Position) ([][]*HandEvaluation, error) {
	hands, ok := ix.byPosition[position]
	if !ok {
		return nil, ErrNotFound
	}

	grid := make([][]*HandEvaluation, domain.GridSize)
	for row := range grid {
		grid[row] = make([]*HandEvaluation, domain.GridSize)
		for col := range grid[row] {
			if ev, ok := hands[domain.HandAt(row, col)]; ok {
				ev := ev
				grid[row][col] = &ev
			}
		}
	}
	return grid, nil
}

// sortByChart orders canonical hands by chart position and puts any other
// labels after them alphabetically.
func sortByChart(list []HandEvaluation) {
	sort.Slice(list, func(i, j int) bool {
		oi, oj := domain.HandOrder(list[i].Hand), domain.HandOrder(list[j].Hand)
		switch {
		case oi >= 0 && oj >= 0:
			return oi < oj
		case oi >= 0:
			return true
		case oj >= 0:
			return false
		default:
			return list[i].Hand < list[j].Hand
		}
	})
}
