package attempts

import (
	"sort"

	"github.com/markcheno/go-talib"
	"gonum.org/v1/gonum/stat"

	"github.com/aristath/rfitrainer/internal/domain"
)

// TrendWindow is the SMA period of the accuracy trend.
const TrendWindow = 10

// PositionStats is the accuracy breakdown for one position.
type PositionStats struct {
	Position domain.Position `json:"position"`
	Total    int             `json:"total"`
	Correct  int             `json:"correct"`
	Accuracy float64         `json:"accuracy"`
}

// Stats summarises the attempt log.
type Stats struct {
	Total         int             `json:"total"`
	Correct       int             `json:"correct"`
	Accuracy      float64         `json:"accuracy"`
	CurrentStreak int             `json:"currentStreak"`
	BestStreak    int             `json:"bestStreak"`
	ByPosition    []PositionStats `json:"byPosition"`

	// Trend is the rolling accuracy over TrendWindow attempts, oldest first.
	// Empty until TrendWindow attempts exist.
	Trend []float64 `json:"trend"`

	// Boundary score of missed hands: high means mistakes cluster on mixed spots.
	MissBoundaryMean   float64 `json:"missBoundaryMean"`
	MissBoundaryStdDev float64 `json:"missBoundaryStdDev"`
}

// ComputeStats derives Stats from attempts in chronological order.
func ComputeStats(list []Attempt) Stats {
	s := Stats{Total: len(list), ByPosition: []PositionStats{}, Trend: []float64{}}
	if len(list) == 0 {
		return s
	}

	outcomes := make([]float64, len(list))
	var missScores []float64
	perPosition := make(map[domain.Position]*PositionStats)
	streak := 0

	for i, a := range list {
		ps, ok := perPosition[a.Position]
		if !ok {
			ps = &PositionStats{Position: a.Position}
			perPosition[a.Position] = ps
		}
		ps.Total++

		if a.IsCorrect {
			outcomes[i] = 1
			s.Correct++
			ps.Correct++
			streak++
			if streak > s.BestStreak {
				s.BestStreak = streak
			}
		} else {
			missScores = append(missScores, a.BoundaryScore)
			streak = 0
		}
	}
	s.CurrentStreak = streak
	s.Accuracy = stat.Mean(outcomes, nil)

	switch len(missScores) {
	case 0:
	case 1:
		s.MissBoundaryMean = missScores[0]
	default:
		s.MissBoundaryMean, s.MissBoundaryStdDev = stat.MeanStdDev(missScores, nil)
	}

	if len(outcomes) >= TrendWindow {
		sma := talib.Sma(outcomes, TrendWindow)
		s.Trend = append(s.Trend, sma[TrendWindow-1:]...)
	}

	for _, p := range domain.AllPositions {
		if ps, ok := perPosition[p]; ok {
			ps.Accuracy = float64(ps.Correct) / float64(ps.Total)
			s.ByPosition = append(s.ByPosition, *ps)
			delete(perPosition, p)
		}
	}
	rest := make([]PositionStats, 0, len(perPosition))
	for _, ps := range perPosition {
		ps.Accuracy = float64(ps.Correct) / float64(ps.Total)
		rest = append(rest, *ps)
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i].Position < rest[j].Position })
	s.ByPosition = append(s.ByPosition, rest...)

	return s
}
