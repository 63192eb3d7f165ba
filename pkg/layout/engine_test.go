package layout

import (
	"io"
	"math"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/pkoenig/boxtree/pkg/hierarchy"
	"github.com/pkoenig/boxtree/pkg/measure"
)

// fixedOracle measures every character at a constant width and every line
// at a constant height, making geometry assertions exact.
type fixedOracle struct {
	charWidth  float64
	lineHeight float64
}

func (o fixedOracle) Measure(text string, _ float64, _ string) (measure.Size, error) {
	return measure.Size{
		Width:  o.charWidth * float64(len(text)),
		Height: o.lineHeight,
	}, nil
}

func testOracle() fixedOracle {
	return fixedOracle{charWidth: 10, lineHeight: 20}
}

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

func mustForest(t *testing.T, nodes []hierarchy.Node) []*hierarchy.TreeNode {
	t.Helper()
	roots, err := hierarchy.BuildForest(nodes)
	if err != nil {
		t.Fatalf("BuildForest: %v", err)
	}
	return roots
}

// assertLayoutValid checks that every node got a positive-sized box.
func assertLayoutValid(t *testing.T, roots []*hierarchy.TreeNode) {
	t.Helper()
	hierarchy.WalkForest(roots, func(n *hierarchy.TreeNode) {
		if n.Layout == nil {
			t.Fatalf("node %s has no layout", n.Data.ID)
		}
		box := n.Layout.Box
		if box.Width <= 0 || box.Height <= 0 {
			t.Errorf("node %s has degenerate box %+v", n.Data.ID, box)
		}
	})
}

// assertStrictGeometry checks sibling disjointness and parent containment.
// Children must stay inside the parent's content area, not just its box,
// so nothing can overlap the title strip. The grid-family engines
// guarantee both unconditionally; the treemap only when minimum-size
// flooring stays out of play, so its tests call this with the floor
// effectively disabled.
func assertStrictGeometry(t *testing.T, roots []*hierarchy.TreeNode) {
	t.Helper()
	const eps = 1e-6
	hierarchy.WalkForest(roots, func(n *hierarchy.TreeNode) {
		bounds := n.Layout.Box
		if n.Layout.ContentArea != nil {
			bounds = *n.Layout.ContentArea
		}
		for i, a := range n.Children {
			for _, b := range n.Children[i+1:] {
				if a.Layout.Box.Overlaps(b.Layout.Box) {
					t.Errorf("siblings %s and %s overlap: %+v vs %+v",
						a.Data.ID, b.Data.ID, a.Layout.Box, b.Layout.Box)
				}
			}
			if !bounds.Contains(a.Layout.Box, eps) {
				t.Errorf("child %s escapes parent %s content area: %+v not in %+v",
					a.Data.ID, n.Data.ID, a.Layout.Box, bounds)
			}
		}
	})
}

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

// Two levels, mixed leaf and internal nodes, two roots.
func sampleNodes() []hierarchy.Node {
	return []hierarchy.Node{
		{ID: "app", Name: "app"},
		{ID: "svc", Name: "service", Parent: "app"},
		{ID: "db", Name: "database", Parent: "app"},
		{ID: "cache", Name: "cache", Parent: "svc"},
		{ID: "queue", Name: "queue", Parent: "svc"},
		{ID: "lib", Name: "library"},
	}
}

func TestNewSelectsEngineForEveryType(t *testing.T) {
	for _, typ := range Types {
		t.Run(string(typ), func(t *testing.T) {
			opts := DefaultOptions()
			opts.LayoutType = typ
			eng := New(opts, DefaultStyle(), testOracle(), testLogger())
			if eng == nil {
				t.Fatal("New returned nil")
			}

			roots, err := eng.CalculateLayout(mustForest(t, sampleNodes()))
			if err != nil {
				t.Fatalf("CalculateLayout: %v", err)
			}
			assertLayoutValid(t, roots)
			if typ != TypeTreemap {
				assertStrictGeometry(t, roots)
			}

			w, h := eng.DiagramDimensions(roots)
			if w <= 0 || h <= 0 {
				t.Errorf("DiagramDimensions = %v x %v, want positive", w, h)
			}
		})
	}
}

func TestNewFallsBackToGridOnUnknownType(t *testing.T) {
	opts := DefaultOptions()
	opts.LayoutType = "freeform"
	eng := New(opts, DefaultStyle(), testOracle(), testLogger())

	if _, ok := eng.(*gridEngine); !ok {
		t.Fatalf("fallback engine is %T, want *gridEngine", eng)
	}
	roots, err := eng.CalculateLayout(mustForest(t, sampleNodes()))
	if err != nil {
		t.Fatalf("CalculateLayout: %v", err)
	}
	assertLayoutValid(t, roots)
	assertStrictGeometry(t, roots)
}

func TestParseType(t *testing.T) {
	tests := []struct {
		in      string
		want    Type
		wantErr bool
	}{
		{in: "grid", want: TypeGrid},
		{in: "GRID", want: TypeGrid},
		{in: "  AspectRatio ", want: TypeAspectRatio},
		{in: "flowgrid", want: TypeFlowGrid},
		{in: "permutation", want: TypePermutation},
		{in: "packing", want: TypePacking},
		{in: "treemap", want: TypeTreemap},
		{in: "circle", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseType(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseType(%q) = %v, want error", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseType(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseType(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestOptionsValidate(t *testing.T) {
	valid := DefaultOptions()
	if err := valid.Validate(); err != nil {
		t.Fatalf("default options invalid: %v", err)
	}

	mutations := []struct {
		name string
		mut  func(*Options)
	}{
		{"zero columns", func(o *Options) { o.Columns = 0 }},
		{"negative padding", func(o *Options) { o.Padding = -1 }},
		{"negative spacing", func(o *Options) { o.Spacing = -0.5 }},
		{"zero min width", func(o *Options) { o.MinNodeWidth = 0 }},
		{"zero min height", func(o *Options) { o.MinNodeHeight = 0 }},
		{"zero target ratio", func(o *Options) { o.TargetAspectRatio = 0 }},
	}
	for _, tt := range mutations {
		t.Run(tt.name, func(t *testing.T) {
			o := DefaultOptions()
			tt.mut(&o)
			if err := o.Validate(); err == nil {
				t.Error("Validate accepted invalid options")
			}
		})
	}
}

func TestDiagramDimensions(t *testing.T) {
	roots := mustForest(t, []hierarchy.Node{{ID: "a"}, {ID: "b"}})
	roots[0].Layout = &hierarchy.NodeLayout{Box: hierarchy.Rect{X: 0, Y: 0, Width: 100, Height: 40}}
	roots[1].Layout = &hierarchy.NodeLayout{Box: hierarchy.Rect{X: 105, Y: 10, Width: 60, Height: 80}}

	w, h := DiagramDimensions(roots)
	if w != 165 || h != 90 {
		t.Errorf("DiagramDimensions = %v x %v, want 165 x 90", w, h)
	}
}
