package measure

import "strings"

// Per-character width ratios relative to the font size. Derived from
// average proportional-face metrics; deliberately coarse.
const (
	charWidthRatio   = 0.55 // default character
	narrowWidthRatio = 0.30 // i l j t f r and punctuation
	wideWidthRatio   = 0.85 // m w M W and similar
	lineHeightRatio  = 1.20
)

const narrowChars = "iljtfr.,:;'|!()[] "
const wideChars = "mwMW@%"

// Heuristic approximates text extents from per-character width classes
// without any font data. It deliberately over-estimates slightly so boxes
// sized from it never clip their labels.
type Heuristic struct{}

// NewHeuristic creates the approximate oracle.
func NewHeuristic() Heuristic {
	return Heuristic{}
}

// Measure returns the approximate extent of text at fontSize.
// The fontFamily hint is ignored.
func (Heuristic) Measure(text string, fontSize float64, fontFamily string) (Size, error) {
	if err := validateFontSize(fontSize); err != nil {
		return Size{}, err
	}

	var width float64
	for _, r := range text {
		switch {
		case strings.ContainsRune(narrowChars, r):
			width += fontSize * narrowWidthRatio
		case strings.ContainsRune(wideChars, r):
			width += fontSize * wideWidthRatio
		default:
			width += fontSize * charWidthRatio
		}
	}

	return Size{
		Width:  width,
		Height: fontSize * lineHeightRatio,
	}, nil
}

// Ensure Heuristic implements Oracle.
var _ Oracle = Heuristic{}
