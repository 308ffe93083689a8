package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalHands_Unique169(t *testing.T) {
	hands := CanonicalHands()
	require.Len(t, hands, 169)

	seen := make(map[string]bool, len(hands))
	for _, h := range hands {
		assert.False(t, seen[h], "duplicate hand %s", h)
		seen[h] = true
	}
}

func TestHandAt_Layout(t *testing.T) {
	assert.Equal(t, "AA", HandAt(0, 0))
	assert.Equal(t, "AKs", HandAt(0, 1))
	assert.Equal(t, "AKo", HandAt(1, 0))
	assert.Equal(t, "72o", HandAt(12, 7))
	assert.Equal(t, "22", HandAt(12, 12))
}

func TestHandOrder(t *testing.T) {
	assert.Equal(t, 0, HandOrder("AA"))
	assert.Equal(t, 168, HandOrder("22"))
	assert.Equal(t, -1, HandOrder("AAs"))
	assert.True(t, IsCanonicalHand("T9s"))
	assert.False(t, IsCanonicalHand("9Ts"))
}

func TestParsePosition(t *testing.T) {
	p, err := ParsePosition(" RFI_UTG+1 ")
	require.NoError(t, err)
	assert.Equal(t, PositionUTG1, p)

	_, err = ParsePosition("RFI_BB")
	assert.Error(t, err)

	p, err = ParsePosition("BTN")
	require.NoError(t, err)
	assert.Equal(t, PositionBTN, p)

	_, err = ParsePosition("RFI_RFI_BTN")
	assert.Error(t, err)
}

func TestNormalizePosition(t *testing.T) {
	assert.Equal(t, PositionUTG1, NormalizePosition("UTG+1"))
	assert.Equal(t, PositionSB, NormalizePosition(" RFI_SB"))
	assert.Equal(t, Position("STRADDLE"), NormalizePosition("STRADDLE"))
}

func TestParseAction(t *testing.T) {
	a, err := ParseAction("Raise")
	require.NoError(t, err)
	assert.Equal(t, ActionRaise, a)

	_, err = ParseAction("check")
	assert.Error(t, err)
}

func TestActionFrequencies_Of(t *testing.T) {
	f := ActionFrequencies{Raise: 0.5, Call: 0.2, Fold: 0.3}
	assert.Equal(t, 0.5, f.Of(ActionRaise))
	assert.Equal(t, 0.2, f.Of(ActionCall))
	assert.Equal(t, 0.3, f.Of(ActionFold))
	assert.Equal(t, 0.0, f.Of(Action("limp")))
}

func TestParseMode(t *testing.T) {
	for _, m := range AllModes {
		got, err := ParseMode(string(m))
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	_, err := ParseMode("endless")
	assert.Error(t, err)
}

func TestSessionSettings_ActivePositions(t *testing.T) {
	known := []Position{PositionCO, PositionBTN}

	empty := NewSessionSettings(nil, ModeBoundary)
	assert.Equal(t, known, empty.ActivePositions(known))

	enabled := []Position{PositionSB}
	s := NewSessionSettings(enabled, ModeRandom)
	enabled[0] = PositionUTG
	assert.Equal(t, []Position{PositionSB}, s.ActivePositions(known))
}
