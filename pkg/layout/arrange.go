package layout

import "math"

// Item is the size of one box to be arranged.
type Item struct {
	Width, Height float64
}

// Point is a position in the shared coordinate space.
type Point struct {
	X, Y float64
}

// Arrangement is a row-major grid partition of a set of items: per-column
// widths, per-row heights, and the resulting bounding box including the
// spacing gaps between cells. Every cell in a column shares that column's
// width and every cell in a row shares that row's height; there is no
// per-cell sizing.
type Arrangement struct {
	Columns      int
	ColumnWidths []float64
	RowHeights   []float64
	TotalWidth   float64
	TotalHeight  float64
	Spacing      float64

	// Fallback is set when no candidate produced a finite aspect ratio
	// and the square-ish ceil(sqrt(n)) column count was used instead.
	Fallback bool
}

// Ratio returns the aspect ratio of the arrangement's bounding box.
// A zero-height arrangement has no finite ratio and returns +Inf.
func (a Arrangement) Ratio() float64 {
	if a.TotalHeight == 0 {
		return math.Inf(1)
	}
	return a.TotalWidth / a.TotalHeight
}

// Area returns the bounding box area.
func (a Arrangement) Area() float64 {
	return a.TotalWidth * a.TotalHeight
}

// Positions returns the top-left corner of each item's cell, in item order,
// relative to the arrangement's own origin. Items are placed at the cell's
// top-left corner (column start, row start) and are not centered within the
// cell, so a narrow item in a wide column leaves its slack to the right.
func (a Arrangement) Positions(n int) []Point {
	if n == 0 || a.Columns == 0 {
		return nil
	}

	colStarts := make([]float64, len(a.ColumnWidths))
	x := 0.0
	for i, w := range a.ColumnWidths {
		colStarts[i] = x
		x += w + a.Spacing
	}
	rowStarts := make([]float64, len(a.RowHeights))
	y := 0.0
	for i, h := range a.RowHeights {
		rowStarts[i] = y
		y += h + a.Spacing
	}

	pts := make([]Point, n)
	for i := 0; i < n; i++ {
		pts[i] = Point{X: colStarts[i%a.Columns], Y: rowStarts[i/a.Columns]}
	}
	return pts
}

// FindBestArrangement scans every column count from 1 to len(items) and
// returns the partition whose bounding box ratio is closest to targetRatio.
//
// Ties are broken by the first (lowest) column count that reaches the
// minimal deviation. That tie-break is a compatibility policy, not an
// optimality claim: downstream output depends on it, so it must not change.
//
// With no items the zero Arrangement is returned. If no candidate has a
// finite ratio (every item has zero height), the ceil(sqrt(n)) fallback is
// used and flagged via the Fallback field for the caller to log.
func FindBestArrangement(items []Item, targetRatio, spacing float64) Arrangement {
	n := len(items)
	if n == 0 {
		return Arrangement{Spacing: spacing}
	}

	best := Arrangement{}
	bestDev := math.Inf(1)
	found := false

	for c := 1; c <= n; c++ {
		cand := arrangeColumns(items, c, spacing)
		ratio := cand.Ratio()
		if math.IsInf(ratio, 0) || math.IsNaN(ratio) {
			continue
		}
		if dev := math.Abs(ratio - targetRatio); dev < bestDev {
			bestDev = dev
			best = cand
			found = true
		}
	}

	if !found {
		best = arrangeColumns(items, int(math.Ceil(math.Sqrt(float64(n)))), spacing)
		best.Fallback = true
	}
	return best
}

// ArrangeFixed partitions items into a grid with exactly the given column
// count (capped at the item count). Used by the plain grid engine, where
// the column count comes from configuration rather than the ratio search.
func ArrangeFixed(items []Item, columns int, spacing float64) Arrangement {
	n := len(items)
	if n == 0 {
		return Arrangement{Spacing: spacing}
	}
	if columns < 1 {
		columns = 1
	}
	if columns > n {
		columns = n
	}
	return arrangeColumns(items, columns, spacing)
}

// arrangeColumns builds the row-major partition for a specific column count.
func arrangeColumns(items []Item, columns int, spacing float64) Arrangement {
	n := len(items)
	rows := (n + columns - 1) / columns

	colWidths := make([]float64, columns)
	rowHeights := make([]float64, rows)
	for i, it := range items {
		col := i % columns
		row := i / columns
		colWidths[col] = math.Max(colWidths[col], it.Width)
		rowHeights[row] = math.Max(rowHeights[row], it.Height)
	}

	totalW := spacing * float64(columns-1)
	for _, w := range colWidths {
		totalW += w
	}
	totalH := spacing * float64(rows-1)
	for _, h := range rowHeights {
		totalH += h
	}

	return Arrangement{
		Columns:      columns,
		ColumnWidths: colWidths,
		RowHeights:   rowHeights,
		TotalWidth:   totalW,
		TotalHeight:  totalH,
		Spacing:      spacing,
	}
}
