// Package domain provides the core poker types shared by all trainer modules.
package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Position is a seat label selecting which opening range applies (e.g. "RFI_BTN").
type Position string

// PositionPrefix marks a raise-first-in spot. Bare seat labels ("BTN") are
// accepted on input and stored with the prefix.
const PositionPrefix = "RFI_"

const (
	PositionUTG  Position = "RFI_UTG"
	PositionUTG1 Position = "RFI_UTG+1"
	PositionLJ   Position = "RFI_LJ"
	PositionHJ   Position = "RFI_HJ"
	PositionCO   Position = "RFI_CO"
	PositionBTN  Position = "RFI_BTN"
	PositionSB   Position = "RFI_SB"
)

// AllPositions lists the seven seats in table order, earliest first.
var AllPositions = []Position{
	PositionUTG,
	PositionUTG1,
	PositionLJ,
	PositionHJ,
	PositionCO,
	PositionBTN,
	PositionSB,
}

// Valid reports whether p is one of the seven known seats.
func (p Position) Valid() bool {
	for _, known := range AllPositions {
		if p == known {
			return true
		}
	}
	return false
}

// SortPositions returns a copy of positions in seat order. Unknown labels
// follow the known seats alphabetically.
func SortPositions(positions []Position) []Position {
	out := append([]Position(nil), positions...)
	seat := make(map[Position]int, len(AllPositions))
	for i, p := range AllPositions {
		seat[p] = i
	}
	sort.SliceStable(out, func(i, j int) bool {
		si, iok := seat[out[i]]
		sj, jok := seat[out[j]]
		switch {
		case iok && jok:
			return si < sj
		case iok:
			return true
		case jok:
			return false
		default:
			return out[i] < out[j]
		}
	})
	return out
}

// NormalizePosition trims s and adds PositionPrefix to a bare seat label.
// Labels that are not a known seat either way are returned trimmed.
func NormalizePosition(s string) Position {
	p := Position(strings.TrimSpace(s))
	if p.Valid() {
		return p
	}
	if prefixed := Position(PositionPrefix + string(p)); prefixed.Valid() {
		return prefixed
	}
	return p
}

// ParsePosition converts a string into a known Position. "BTN" and
// "RFI_BTN" both parse to PositionBTN.
func ParsePosition(s string) (Position, error) {
	p := NormalizePosition(s)
	if !p.Valid() {
		return "", fmt.Errorf("unknown position %q", s)
	}
	return p, nil
}

// Action is one of the three pre-flop decisions.
type Action string

const (
	ActionRaise Action = "raise"
	ActionCall  Action = "call"
	ActionFold  Action = "fold"
)

// ParseAction converts a string into an Action.
func ParseAction(s string) (Action, error) {
	switch a := Action(strings.ToLower(strings.TrimSpace(s))); a {
	case ActionRaise, ActionCall, ActionFold:
		return a, nil
	default:
		return "", fmt.Errorf("unknown action %q", s)
	}
}

// ActionFrequencies holds the solver mix for one hand. The three values sum to 1.0
// by construction of the input table; nothing re-validates that.
type ActionFrequencies struct {
	Raise float64 `json:"raise" msgpack:"raise"`
	Call  float64 `json:"call" msgpack:"call"`
	Fold  float64 `json:"fold" msgpack:"fold"`
}

// Of returns the frequency of a single action.
func (f ActionFrequencies) Of(a Action) float64 {
	switch a {
	case ActionRaise:
		return f.Raise
	case ActionCall:
		return f.Call
	case ActionFold:
		return f.Fold
	}
	return 0
}
