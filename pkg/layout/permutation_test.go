package layout

import (
	"math"
	"testing"

	"github.com/pkoenig/boxtree/pkg/hierarchy"
)

// bruteForceBest replicates the search the engine performs: every ordering
// of items, every row count, both column candidates per row count.
func bruteForceBest(items []Item, target, spacing float64) (bestDev, bestArea float64) {
	n := len(items)
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	bestDev, bestArea = math.Inf(1), math.Inf(1)

	permItems := make([]Item, n)
	for {
		for i, from := range perm {
			permItems[i] = items[from]
		}
		for rows := 1; rows <= n; rows++ {
			for _, cols := range candidateColumns(n, rows) {
				arr := arrangeColumns(permItems, cols, spacing)
				ratio := arr.Ratio()
				if math.IsInf(ratio, 0) || math.IsNaN(ratio) {
					continue
				}
				dev := (ratio - target) * (ratio - target)
				if dev < bestDev-permScoreEps ||
					(math.Abs(dev-bestDev) <= permScoreEps && arr.Area() < bestArea) {
					bestDev = dev
					bestArea = arr.Area()
				}
			}
		}
		if !nextPermutation(perm) {
			break
		}
	}
	return bestDev, bestArea
}

func permChildren(t *testing.T, n int) []*hierarchy.TreeNode {
	t.Helper()
	nodes := make([]hierarchy.Node, n)
	ids := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i"}
	for i := range nodes {
		nodes[i] = hierarchy.Node{ID: ids[i]}
	}
	return mustForest(t, nodes)
}

func TestPermutationMatchesBruteForce(t *testing.T) {
	items := []Item{
		{Width: 100, Height: 50},
		{Width: 50, Height: 100},
		{Width: 75, Height: 75},
	}
	opts := DefaultOptions()
	opts.LayoutType = TypePermutation
	eng := NewPermutation(opts, DefaultStyle(), testOracle(), testLogger())

	arr, order, err := eng.arrangeSiblings(nil, permChildren(t, 3), items)
	if err != nil {
		t.Fatalf("arrangeSiblings: %v", err)
	}
	if order == nil {
		t.Fatal("no ordering returned")
	}

	wantDev, wantArea := bruteForceBest(items, opts.TargetAspectRatio, opts.Spacing)
	gotDev := (arr.Ratio() - opts.TargetAspectRatio) * (arr.Ratio() - opts.TargetAspectRatio)
	if !almostEqual(gotDev, wantDev, 1e-9) {
		t.Errorf("deviation = %v, brute force found %v", gotDev, wantDev)
	}
	if !almostEqual(arr.Area(), wantArea, 1e-6) {
		t.Errorf("area = %v, brute force found %v", arr.Area(), wantArea)
	}

	// order must be a permutation of 0..n-1.
	seen := make(map[int]bool)
	for _, i := range order {
		if i < 0 || i >= len(items) || seen[i] {
			t.Fatalf("order %v is not a permutation", order)
		}
		seen[i] = true
	}
}

func TestPermutationBeatsFixedOrderWhenReorderingHelps(t *testing.T) {
	// Alternating tall and wide items: row-major in the given order wastes
	// space that grouping equal heights per row recovers.
	items := []Item{
		{Width: 120, Height: 30},
		{Width: 30, Height: 120},
		{Width: 120, Height: 30},
		{Width: 30, Height: 120},
	}
	opts := DefaultOptions()
	eng := NewPermutation(opts, DefaultStyle(), testOracle(), testLogger())

	arr, _, err := eng.arrangeSiblings(nil, permChildren(t, 4), items)
	if err != nil {
		t.Fatalf("arrangeSiblings: %v", err)
	}

	fixed := FindBestArrangement(items, opts.TargetAspectRatio, opts.Spacing)
	fixedDev := math.Abs(fixed.Ratio() - opts.TargetAspectRatio)
	searchDev := math.Abs(arr.Ratio() - opts.TargetAspectRatio)
	if searchDev > fixedDev+permScoreEps {
		t.Errorf("search deviation %v worse than fixed-order %v", searchDev, fixedDev)
	}
}

func TestPermutationSkipsSearchAboveLimit(t *testing.T) {
	opts := DefaultOptions()
	eng := NewPermutation(opts, DefaultStyle(), testOracle(), testLogger())
	eng.MaxChildren = 2

	items := []Item{{50, 50}, {60, 60}, {70, 70}}
	arr, order, err := eng.arrangeSiblings(nil, permChildren(t, 3), items)
	if err != nil {
		t.Fatalf("arrangeSiblings: %v", err)
	}
	if order != nil {
		t.Errorf("order = %v, want nil above MaxChildren", order)
	}
	want := FindBestArrangement(items, opts.TargetAspectRatio, opts.Spacing)
	if arr.Columns != want.Columns {
		t.Errorf("columns = %d, want ratio-search result %d", arr.Columns, want.Columns)
	}
}

func TestPermutationMemoizesBySiblingIDs(t *testing.T) {
	opts := DefaultOptions()
	eng := NewPermutation(opts, DefaultStyle(), testOracle(), testLogger())

	items := []Item{{100, 50}, {50, 100}, {75, 75}}
	children := permChildren(t, 3)

	if _, _, err := eng.arrangeSiblings(nil, children, items); err != nil {
		t.Fatalf("first call: %v", err)
	}
	if len(eng.memo) != 1 {
		t.Fatalf("memo has %d entries, want 1", len(eng.memo))
	}

	first := eng.memo
	if _, _, err := eng.arrangeSiblings(nil, children, items); err != nil {
		t.Fatalf("second call: %v", err)
	}
	if len(first) != 1 {
		t.Errorf("repeat call added memo entries: %d", len(first))
	}

	eng.ClearCache()
	if len(eng.memo) != 0 || len(eng.texts) != 0 {
		t.Errorf("ClearCache left %d memo and %d text entries", len(eng.memo), len(eng.texts))
	}
}

func TestPermutationReordersChildrenInLayout(t *testing.T) {
	// Full end-to-end run over a parent whose children profit from
	// reordering: the Children slice itself must reflect the final order.
	opts := DefaultOptions()
	style := DefaultStyle()
	style.LeafNodeWidth = 0

	nodes := []hierarchy.Node{
		{ID: "p", Name: "p"},
		{ID: "wide-1", Name: "aaaaaaaaaaaaaaaaaaaa", Parent: "p"},
		{ID: "tall-1", Name: "b", Parent: "p"},
		{ID: "wide-2", Name: "cccccccccccccccccccc", Parent: "p"},
		{ID: "tall-2", Name: "d", Parent: "p"},
	}

	eng := NewPermutation(opts, style, testOracle(), testLogger())
	roots, err := eng.CalculateLayout(mustForest(t, nodes))
	if err != nil {
		t.Fatalf("CalculateLayout: %v", err)
	}
	assertLayoutValid(t, roots)
	assertStrictGeometry(t, roots)

	got := make(map[string]bool)
	for _, c := range roots[0].Children {
		got[c.Data.ID] = true
	}
	for _, id := range []string{"wide-1", "tall-1", "wide-2", "tall-2"} {
		if !got[id] {
			t.Errorf("child %s missing after reordering", id)
		}
	}
}

func TestNextPermutation(t *testing.T) {
	p := []int{0, 1, 2}
	var seen [][]int
	for {
		cp := append([]int(nil), p...)
		seen = append(seen, cp)
		if !nextPermutation(p) {
			break
		}
	}
	if len(seen) != 6 {
		t.Fatalf("enumerated %d permutations of 3, want 6", len(seen))
	}
	want := [][]int{
		{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0},
	}
	for i := range want {
		for j := range want[i] {
			if seen[i][j] != want[i][j] {
				t.Fatalf("permutation %d = %v, want %v", i, seen[i], want[i])
			}
		}
	}
}

func TestCandidateColumns(t *testing.T) {
	tests := []struct {
		n, rows int
		want    []int
	}{
		{n: 4, rows: 1, want: []int{4}},
		{n: 4, rows: 2, want: []int{2}},
		{n: 4, rows: 3, want: []int{2, 1}},
		{n: 7, rows: 3, want: []int{3, 2}},
		{n: 1, rows: 1, want: []int{1}},
	}
	for _, tt := range tests {
		got := candidateColumns(tt.n, tt.rows)
		if len(got) != len(tt.want) {
			t.Errorf("candidateColumns(%d, %d) = %v, want %v", tt.n, tt.rows, got, tt.want)
			continue
		}
		for i := range tt.want {
			if got[i] != tt.want[i] {
				t.Errorf("candidateColumns(%d, %d) = %v, want %v", tt.n, tt.rows, got, tt.want)
			}
		}
	}
}
