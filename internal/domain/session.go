package domain

import (
	"fmt"
	"strings"
)

// Mode biases how the selector picks the next question.
type Mode string

const (
	// ModeBoundary forces the boundary tier whenever due-review does not fire.
	ModeBoundary Mode = "boundary"
	// ModeRandom skips the boundary tier.
	ModeRandom Mode = "random"
	// ModeReview drills only hands that already have a repetition record.
	ModeReview Mode = "review"
)

// AllModes lists the accepted modes.
var AllModes = []Mode{ModeBoundary, ModeRandom, ModeReview}

// ParseMode converts a string into a Mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeBoundary, ModeRandom, ModeReview:
		return m, nil
	default:
		return "", fmt.Errorf("unknown mode %q", s)
	}
}

// SessionSettings is the per-call input to the selector. It is a value: callers
// build a fresh one for every selection and nothing downstream mutates it.
type SessionSettings struct {
	EnabledPositions []Position `json:"enabledPositions"`
	Mode             Mode       `json:"mode"`
}

// NewSessionSettings copies positions so later changes by the caller are not observed.
func NewSessionSettings(positions []Position, mode Mode) SessionSettings {
	return SessionSettings{
		EnabledPositions: append([]Position(nil), positions...),
		Mode:             mode,
	}
}

// ActivePositions returns the enabled positions, or known when none are enabled.
func (s SessionSettings) ActivePositions(known []Position) []Position {
	if len(s.EnabledPositions) > 0 {
		return append([]Position(nil), s.EnabledPositions...)
	}
	return append([]Position(nil), known...)
}
