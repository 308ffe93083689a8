package domain

// Ranks in descending order. Grid rows and columns follow this order.
const Ranks = "AKQJT98765432"

// GridSize is the side of the 13x13 starting-hand chart.
const GridSize = len(Ranks)

// HandAt returns the canonical label at chart cell (row, col).
// The diagonal holds pairs, above it suited hands, below it offsuit hands.
func HandAt(row, col int) string {
	r, c := Ranks[row], Ranks[col]
	switch {
	case row == col:
		return string([]byte{r, c})
	case row < col:
		return string([]byte{r, c, 's'})
	default:
		return string([]byte{c, r, 'o'})
	}
}

// CanonicalHands returns all 169 starting-hand labels in chart order.
func CanonicalHands() []string {
	hands := make([]string, 0, GridSize*GridSize)
	for row := 0; row < GridSize; row++ {
		for col := 0; col < GridSize; col++ {
			hands = append(hands, HandAt(row, col))
		}
	}
	return hands
}

var canonicalIndex = func() map[string]int {
	m := make(map[string]int, GridSize*GridSize)
	for i, h := range CanonicalHands() {
		m[h] = i
	}
	return m
}()

// IsCanonicalHand reports whether label is one of the 169 chart labels.
func IsCanonicalHand(label string) bool {
	_, ok := canonicalIndex[label]
	return ok
}

// HandOrder returns the chart position of label, or -1 for non-canonical labels.
func HandOrder(label string) int {
	if i, ok := canonicalIndex[label]; ok {
		return i
	}
	return -1
}
