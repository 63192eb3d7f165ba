package layout

import (
	"math"
	"strings"

	"github.com/pkoenig/boxtree/pkg/measure"
)

// wrapText greedily wraps text into lines no wider than maxWidth, keeping
// at least one word per line. It returns the lines and the extent of the
// wrapped block (widest line by total line height).
func wrapText(oracle measure.Oracle, text string, fontSize float64, fontFamily string, maxWidth float64) ([]string, measure.Size, error) {
	words := strings.Fields(text)
	if len(words) == 0 {
		size, err := oracle.Measure("", fontSize, fontFamily)
		return []string{""}, size, err
	}

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		candidate := current + " " + word
		ext, err := oracle.Measure(candidate, fontSize, fontFamily)
		if err != nil {
			return nil, measure.Size{}, err
		}
		if ext.Width > maxWidth {
			lines = append(lines, current)
			current = word
			continue
		}
		current = candidate
	}
	lines = append(lines, current)

	var block measure.Size
	for _, line := range lines {
		ext, err := oracle.Measure(line, fontSize, fontFamily)
		if err != nil {
			return nil, measure.Size{}, err
		}
		block.Width = math.Max(block.Width, ext.Width)
		block.Height += ext.Height
	}
	return lines, block, nil
}

// wrapToRatio wraps text toward the width a box of the given aspect ratio
// would have if it held exactly the text's single-line area:
// idealWidth = sqrt(area * ratio). Labels that already fit inside the
// ideal width stay on one line.
func wrapToRatio(oracle measure.Oracle, text string, fontSize float64, fontFamily string, ratio float64) (measure.Size, error) {
	single, err := oracle.Measure(text, fontSize, fontFamily)
	if err != nil {
		return measure.Size{}, err
	}

	area := single.Width * single.Height
	if area <= 0 || ratio <= 0 {
		return single, nil
	}

	ideal := math.Sqrt(area * ratio)
	if single.Width <= ideal {
		return single, nil
	}

	_, block, err := wrapText(oracle, text, fontSize, fontFamily, ideal)
	return block, err
}

// wrapToSquare wraps text toward a square-ish block.
func wrapToSquare(oracle measure.Oracle, text string, fontSize float64, fontFamily string) (measure.Size, error) {
	return wrapToRatio(oracle, text, fontSize, fontFamily, 1.0)
}
