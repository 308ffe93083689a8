// Package strategy loads the raise-first-in strategy table and answers
// per-hand evaluation queries against it.
package strategy

import (
	"github.com/aristath/rfitrainer/internal/domain"
)

// Meta describes how the table was produced.
type Meta struct {
	Format           string  `json:"format"`
	Ante             bool    `json:"ante"`
	StackBBLabelSeen float64 `json:"stack_bb_label_seen"`
	Note             string  `json:"note"`
	CreatedAt        string  `json:"created_at,omitempty"`
}

// Sizes holds the bet sizes the table assumes.
type Sizes struct {
	OpenRaiseBB      float64 `json:"open_raise_bb"`
	SBRaiseBB        float64 `json:"sb_raise_bb"`
	AllInLabelSeenBB float64 `json:"all_in_label_seen_bb"`
}

// HandStrategy maps a hand label to its action frequencies.
type HandStrategy map[string]domain.ActionFrequencies

// Table is the immutable strategy table. It is loaded once at startup and
// owned by whoever constructed it; there is no package-level cache.
type Table struct {
	Meta       Meta                             `json:"meta"`
	Sizes      Sizes                            `json:"sizes"`
	Strategies map[domain.Position]HandStrategy `json:"strategies"`
}

// HandCount returns the number of hands defined across all positions.
func (t *Table) HandCount() int {
	n := 0
	for _, hands := range t.Strategies {
		n += len(hands)
	}
	return n
}
