package layout

import (
	"math"
	"testing"

	"github.com/pkoenig/boxtree/pkg/hierarchy"
)

func TestTreemapEqualLeavesGetEqualAreas(t *testing.T) {
	// Three leaves with identical labels weigh the same and must split
	// their parent's area into near-thirds. Minimum sizes are disabled
	// so the floor cannot distort the proportions.
	opts := DefaultOptions()
	opts.MinNodeWidth = 1
	opts.MinNodeHeight = 1

	roots := mustForest(t, []hierarchy.Node{
		{ID: "root", Name: "root"},
		{ID: "a", Name: "node", Parent: "root"},
		{ID: "b", Name: "node", Parent: "root"},
		{ID: "c", Name: "node", Parent: "root"},
	})

	eng := NewTreemap(opts, DefaultStyle(), testOracle(), testLogger())
	roots, err := eng.CalculateLayout(roots)
	if err != nil {
		t.Fatalf("CalculateLayout: %v", err)
	}
	assertLayoutValid(t, roots)

	areas := make([]float64, 3)
	for i, c := range roots[0].Children {
		areas[i] = c.Layout.Box.Width * c.Layout.Box.Height
	}
	// Spacing insets shave slightly different amounts off differently
	// shaped cells, so a few percent of slack is expected.
	for i := 1; i < len(areas); i++ {
		if !almostEqual(areas[i], areas[0], areas[0]*0.05) {
			t.Errorf("leaf areas diverge: %v", areas)
		}
	}
}

func TestTreemapAreasProportionalToWeights(t *testing.T) {
	// One label four times as long as the other: same line height, so
	// four times the weight, so roughly four times the area.
	opts := DefaultOptions()
	opts.MinNodeWidth = 1
	opts.MinNodeHeight = 1

	roots := mustForest(t, []hierarchy.Node{
		{ID: "root", Name: "root"},
		{ID: "big", Name: "abcdefghijkl", Parent: "root"},
		{ID: "small", Name: "abc", Parent: "root"},
	})

	eng := NewTreemap(opts, DefaultStyle(), testOracle(), testLogger())
	roots, err := eng.CalculateLayout(roots)
	if err != nil {
		t.Fatalf("CalculateLayout: %v", err)
	}

	var big, small float64
	for _, c := range roots[0].Children {
		a := c.Layout.Box.Width * c.Layout.Box.Height
		if c.Data.ID == "big" {
			big = a
		} else {
			small = a
		}
	}
	if ratio := big / small; ratio < 3.0 || ratio > 5.0 {
		t.Errorf("area ratio = %v, want near 4", ratio)
	}
}

func TestTreemapSiblingsDisjointWithoutFlooring(t *testing.T) {
	// Labels long enough that no box hits the minimum-size floor, so the
	// squarified partition's disjointness must survive intact.
	opts := DefaultOptions()
	opts.MinNodeWidth = 1
	opts.MinNodeHeight = 1

	roots := mustForest(t, []hierarchy.Node{
		{ID: "root", Name: "root"},
		{ID: "a", Name: "first service component", Parent: "root"},
		{ID: "b", Name: "second service component", Parent: "root"},
		{ID: "c", Name: "third", Parent: "root"},
		{ID: "d", Name: "fourth service", Parent: "root"},
	})

	eng := NewTreemap(opts, DefaultStyle(), testOracle(), testLogger())
	roots, err := eng.CalculateLayout(roots)
	if err != nil {
		t.Fatalf("CalculateLayout: %v", err)
	}
	assertLayoutValid(t, roots)
	assertStrictGeometry(t, roots)
}

func TestTreemapParentEnclosesChildren(t *testing.T) {
	roots := mustForest(t, sampleNodes())
	eng := NewTreemap(DefaultOptions(), DefaultStyle(), testOracle(), testLogger())
	roots, err := eng.CalculateLayout(roots)
	if err != nil {
		t.Fatalf("CalculateLayout: %v", err)
	}

	const eps = 1e-6
	hierarchy.WalkForest(roots, func(n *hierarchy.TreeNode) {
		for _, c := range n.Children {
			if !n.Layout.Box.Contains(c.Layout.Box, eps) {
				t.Errorf("child %s outside parent %s: %+v not in %+v",
					c.Data.ID, n.Data.ID, c.Layout.Box, n.Layout.Box)
			}
		}
	})
}

func TestTreemapDoesNotReorderChildren(t *testing.T) {
	roots := mustForest(t, []hierarchy.Node{
		{ID: "root", Name: "root"},
		{ID: "small", Name: "ab", Parent: "root"},
		{ID: "big", Name: "abcdefghijklmnop", Parent: "root"},
	})

	eng := NewTreemap(DefaultOptions(), DefaultStyle(), testOracle(), testLogger())
	roots, err := eng.CalculateLayout(roots)
	if err != nil {
		t.Fatalf("CalculateLayout: %v", err)
	}

	// Partition order is value-descending internally, but the Children
	// slice itself keeps insertion order.
	if roots[0].Children[0].Data.ID != "small" || roots[0].Children[1].Data.ID != "big" {
		t.Errorf("children reordered: %s, %s",
			roots[0].Children[0].Data.ID, roots[0].Children[1].Data.ID)
	}
}

func TestSquarifyFillsRectExactly(t *testing.T) {
	rect := hierarchy.Rect{X: 0, Y: 0, Width: 600, Height: 400}
	areas := []float64{120000, 60000, 36000, 24000}

	out := make([]hierarchy.Rect, len(areas))
	squarify(areas, rect, out)

	total := 0.0
	for i, r := range out {
		got := r.Width * r.Height
		if !almostEqual(got, areas[i], areas[i]*1e-9) {
			t.Errorf("rect %d area = %v, want %v", i, got, areas[i])
		}
		if !rect.Contains(r, 1e-9) {
			t.Errorf("rect %d escapes the canvas: %+v", i, r)
		}
		total += got
	}
	if !almostEqual(total, rect.Width*rect.Height, 1e-6) {
		t.Errorf("total area = %v, want %v", total, rect.Width*rect.Height)
	}

	for i := range out {
		for j := i + 1; j < len(out); j++ {
			if out[i].Overlaps(out[j]) {
				t.Errorf("rects %d and %d overlap: %+v vs %+v", i, j, out[i], out[j])
			}
		}
	}
}

func TestSquarifyRowSelectionPrefersSquareish(t *testing.T) {
	// A classic squarify check: equal areas in a 2:1 canvas should not be
	// sliced into one long strip; the worst aspect ratio must stay low.
	rect := hierarchy.Rect{Width: 400, Height: 200}
	areas := []float64{20000, 20000, 20000, 20000}

	out := make([]hierarchy.Rect, len(areas))
	squarify(areas, rect, out)

	worst := 0.0
	for _, r := range out {
		ratio := r.Width / r.Height
		if ratio < 1 {
			ratio = 1 / ratio
		}
		worst = math.Max(worst, ratio)
	}
	// Naive slicing would give 100x200 strips (ratio 2); squarify finds
	// the 2x2 grid of 200x100 cells... also ratio 2 here, so just bound
	// the worst case at the slice ratio.
	if worst > 2.0+1e-9 {
		t.Errorf("worst aspect ratio = %v, want <= 2", worst)
	}
}

func TestWorstAspect(t *testing.T) {
	// One area a laid against side l occupies a strip of thickness a/l,
	// so its ratio is l / (a/l) = l*l/a.
	if got := worstAspect(100, 100, 100, 10); !almostEqual(got, 1.0, 1e-12) {
		t.Errorf("square case = %v, want 1", got)
	}
	if got := worstAspect(50, 50, 50, 10); !almostEqual(got, 2.0, 1e-12) {
		t.Errorf("half area = %v, want 2", got)
	}
	if !math.IsInf(worstAspect(0, 0, 0, 10), 1) {
		t.Error("zero area must be infinitely bad")
	}
}

func TestTreemapOverflowScalesChildrenBack(t *testing.T) {
	// Minimum sizes far larger than the proportional cells force the
	// overflow correction: children may keep their floored proportions
	// but must end up inside the parent's box.
	opts := DefaultOptions()
	opts.MinNodeWidth = 150
	opts.MinNodeHeight = 120

	nodes := []hierarchy.Node{{ID: "root", Name: "root"}}
	ids := []string{"a", "b", "c", "d", "e", "f"}
	for _, id := range ids {
		nodes = append(nodes, hierarchy.Node{ID: id, Name: id, Parent: "root"})
	}

	eng := NewTreemap(opts, DefaultStyle(), testOracle(), testLogger())
	roots, err := eng.CalculateLayout(mustForest(t, nodes))
	if err != nil {
		t.Fatalf("CalculateLayout: %v", err)
	}

	const eps = 1e-6
	root := roots[0]
	for _, c := range root.Children {
		if !root.Layout.Box.Contains(c.Layout.Box, eps) {
			t.Errorf("child %s not pulled back inside parent: %+v not in %+v",
				c.Data.ID, c.Layout.Box, root.Layout.Box)
		}
	}
}
