package layout

import (
	"math"
	"testing"
)

func TestFindBestArrangementSquareItems(t *testing.T) {
	// Four identical squares with a square target must form a 2x2 grid.
	items := []Item{{50, 50}, {50, 50}, {50, 50}, {50, 50}}
	arr := FindBestArrangement(items, 1.0, 0)

	if arr.Columns != 2 {
		t.Fatalf("Columns = %d, want 2", arr.Columns)
	}
	if arr.TotalWidth != 100 || arr.TotalHeight != 100 {
		t.Errorf("bounds = %v x %v, want 100 x 100", arr.TotalWidth, arr.TotalHeight)
	}
	if arr.Ratio() != 1.0 {
		t.Errorf("Ratio = %v, want 1.0", arr.Ratio())
	}
}

func TestFindBestArrangementTieBreaksLow(t *testing.T) {
	// Two 100x100 items: one column gives ratio 0.5, two columns ratio 2.
	// A target of 1.25 deviates 0.75 from both; the lower column count
	// must win the tie.
	items := []Item{{100, 100}, {100, 100}}
	arr := FindBestArrangement(items, 1.25, 0)
	if arr.Columns != 1 {
		t.Fatalf("Columns = %d, want 1 (tie must break toward fewer columns)", arr.Columns)
	}
}

func TestFindBestArrangementSpacingCountsTowardBounds(t *testing.T) {
	items := []Item{{40, 40}, {40, 40}, {40, 40}, {40, 40}}
	arr := FindBestArrangement(items, 1.0, 10)
	if arr.Columns != 2 {
		t.Fatalf("Columns = %d, want 2", arr.Columns)
	}
	// 2 columns of 40 plus one 10px gap on each axis.
	if arr.TotalWidth != 90 || arr.TotalHeight != 90 {
		t.Errorf("bounds = %v x %v, want 90 x 90", arr.TotalWidth, arr.TotalHeight)
	}
}

func TestFindBestArrangementFallback(t *testing.T) {
	// Zero-height items never produce a finite ratio; the solver must
	// fall back to a ceil(sqrt(n)) grid and flag it.
	items := []Item{{10, 0}, {10, 0}, {10, 0}, {10, 0}, {10, 0}}
	arr := FindBestArrangement(items, 16.0/9.0, 0)
	if !arr.Fallback {
		t.Fatal("Fallback not set")
	}
	if want := int(math.Ceil(math.Sqrt(5))); arr.Columns != want {
		t.Errorf("Columns = %d, want %d", arr.Columns, want)
	}
}

func TestFindBestArrangementEmpty(t *testing.T) {
	arr := FindBestArrangement(nil, 1.0, 5)
	if arr.Columns != 0 || arr.TotalWidth != 0 || arr.TotalHeight != 0 {
		t.Errorf("empty arrangement = %+v, want zero", arr)
	}
	if arr.Positions(0) != nil {
		t.Error("Positions(0) should be nil")
	}
}

func TestArrangeFixedClampsColumns(t *testing.T) {
	items := []Item{{10, 10}, {10, 10}}

	if got := ArrangeFixed(items, 5, 0).Columns; got != 2 {
		t.Errorf("columns above item count: got %d, want 2", got)
	}
	if got := ArrangeFixed(items, 0, 0).Columns; got != 1 {
		t.Errorf("columns below one: got %d, want 1", got)
	}
}

func TestArrangementRowColumnMaxima(t *testing.T) {
	// Row-major fill of a ragged 2-column grid: widths are per-column
	// maxima, heights per-row maxima, and the last row may be short.
	items := []Item{
		{100, 50},
		{50, 100},
		{75, 75},
	}
	arr := ArrangeFixed(items, 2, 5)

	if got, want := arr.ColumnWidths, []float64{100, 50}; !equalFloats(got, want) {
		t.Errorf("ColumnWidths = %v, want %v", got, want)
	}
	if got, want := arr.RowHeights, []float64{100, 75}; !equalFloats(got, want) {
		t.Errorf("RowHeights = %v, want %v", got, want)
	}
	if arr.TotalWidth != 155 || arr.TotalHeight != 180 {
		t.Errorf("bounds = %v x %v, want 155 x 180", arr.TotalWidth, arr.TotalHeight)
	}
}

func TestArrangementPositions(t *testing.T) {
	items := []Item{
		{100, 50},
		{50, 100},
		{75, 75},
	}
	arr := ArrangeFixed(items, 2, 5)

	got := arr.Positions(len(items))
	want := []Point{
		{X: 0, Y: 0},
		{X: 105, Y: 0},
		{X: 0, Y: 105},
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestArrangementRatioZeroHeight(t *testing.T) {
	arr := Arrangement{TotalWidth: 10}
	if !math.IsInf(arr.Ratio(), 1) {
		t.Errorf("Ratio of zero-height arrangement = %v, want +Inf", arr.Ratio())
	}
}

func equalFloats(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
