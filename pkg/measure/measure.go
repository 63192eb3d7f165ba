// Package measure provides text size oracles for the layout engines.
//
// An [Oracle] answers one question: how much space does a string occupy at a
// given font size? Two implementations exist with the same contract:
//
//   - [FontOracle] measures against real font metrics (the embedded Go
//     Regular face) and is used by the CLI and server.
//   - [Heuristic] approximates widths from per-character ratios and needs no
//     font data; it is the fallback and the one used in layout tests.
//
// Layout engines never assume sub-pixel agreement between the two.
package measure

import (
	"math"

	"github.com/pkoenig/boxtree/pkg/errors"
)

// Size is a measured text extent in pixels.
type Size struct {
	Width  float64
	Height float64
}

// Oracle measures the rendered extent of a single line of text.
type Oracle interface {
	// Measure returns the extent of text at fontSize. fontFamily is a
	// hint; an oracle may ignore it when it only carries one face.
	Measure(text string, fontSize float64, fontFamily string) (Size, error)
}

// validateFontSize rejects sizes a renderer could never draw. A bad size
// here almost always means a corrupted options struct upstream, so this is
// a hard error rather than a silent clamp.
func validateFontSize(fontSize float64) error {
	if fontSize <= 0 || math.IsNaN(fontSize) || math.IsInf(fontSize, 0) {
		return errors.New(errors.ErrCodeInvalidGeometry, "invalid font size: %v", fontSize)
	}
	return nil
}
