package layout

import (
	"math"

	"github.com/charmbracelet/log"

	"github.com/pkoenig/boxtree/pkg/cache"
	"github.com/pkoenig/boxtree/pkg/hierarchy"
	"github.com/pkoenig/boxtree/pkg/measure"
)

// DefaultMaxPermutationChildren bounds the exhaustive ordering search.
// Above this sibling count the factorial blowup is prohibitive and the
// engine keeps the original order.
const DefaultMaxPermutationChildren = 8

// permScoreEps is the deviation window within which two candidates are
// considered tied and the smaller total area wins.
const permScoreEps = 1e-9

// PermutationEngine extends the aspect-ratio grid arrangement with an
// exhaustive search over sibling orderings. For each ordering it evaluates
// several (rows, columns) splits and keeps the one with the smallest
// squared deviation from the target aspect ratio, breaking near-ties by
// total area. The winning order replaces the original Children order,
// an observable side effect beyond the layout itself.
//
// Results are memoized per engine instance, keyed by the sibling id list
// and a hash of the layout settings. The memo is unbounded; an engine
// instance is expected to live for one diagram generation session. It is
// not safe for concurrent CalculateLayout calls.
type PermutationEngine struct {
	*gridEngine

	// MaxChildren is the sibling count above which the ordering search
	// is skipped.
	MaxChildren int

	settings string
	memo     map[string]permResult
	texts    map[string]measure.Size
}

type permResult struct {
	arr   Arrangement
	order []int
}

// NewPermutation creates a permutation search engine.
func NewPermutation(opts Options, style Style, oracle measure.Oracle, logger *log.Logger) *PermutationEngine {
	e := &PermutationEngine{
		gridEngine:  newGridEngine(opts, style, oracle, logger, TypePermutation, gridPolicy{leafWidthOverride: true}),
		MaxChildren: DefaultMaxPermutationChildren,
		settings:    cache.Key("layout-settings", opts, style),
		memo:        make(map[string]permResult),
		texts:       make(map[string]measure.Size),
	}
	e.gridEngine.arrange = e.arrangeSiblings
	e.gridEngine.oracle = &memoOracle{inner: oracle, seen: e.texts}
	return e
}

// ClearCache drops all memoized measurements and arrangements. Call it
// between layout runs when cold-state reproducibility matters.
func (e *PermutationEngine) ClearCache() {
	clear(e.memo)
	clear(e.texts)
}

// arrangeSiblings finds the (ordering, grid split) pair minimizing squared
// deviation from the target ratio.
func (e *PermutationEngine) arrangeSiblings(parent *hierarchy.TreeNode, children []*hierarchy.TreeNode, items []Item) (Arrangement, []int, error) {
	n := len(items)
	if n == 0 {
		return Arrangement{Spacing: e.opts.Spacing}, nil, nil
	}
	if n > e.MaxChildren {
		return FindBestArrangement(items, e.opts.TargetAspectRatio, e.opts.Spacing), nil, nil
	}

	ids := make([]string, n)
	for i, c := range children {
		ids[i] = c.Data.ID
	}
	key := cache.Key("perm", ids, e.settings)
	if r, ok := e.memo[key]; ok {
		return r.arr, r.order, nil
	}

	target := e.opts.TargetAspectRatio
	bestDev := math.Inf(1)
	bestArea := math.Inf(1)
	var best Arrangement
	var bestOrder []int

	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	permItems := make([]Item, n)

	for {
		for i, from := range perm {
			permItems[i] = items[from]
		}
		for rows := 1; rows <= n; rows++ {
			for _, cols := range candidateColumns(n, rows) {
				arr := arrangeColumns(permItems, cols, e.opts.Spacing)
				ratio := arr.Ratio()
				if math.IsInf(ratio, 0) || math.IsNaN(ratio) {
					continue
				}
				dev := (ratio - target) * (ratio - target)
				switch {
				case dev < bestDev-permScoreEps:
					// clearly better
				case math.Abs(dev-bestDev) <= permScoreEps && arr.Area() < bestArea:
					// tie on deviation, smaller footprint
				default:
					continue
				}
				bestDev = dev
				bestArea = arr.Area()
				best = arr
				bestOrder = append(bestOrder[:0:0], perm...)
			}
		}
		if !nextPermutation(perm) {
			break
		}
	}

	if bestOrder == nil {
		// Pathological sizes with no finite ratio anywhere.
		arr := FindBestArrangement(items, target, e.opts.Spacing)
		e.warnFallback(arr, "permutation search")
		e.memo[key] = permResult{arr: arr}
		return arr, nil, nil
	}

	r := permResult{arr: best, order: bestOrder}
	e.memo[key] = r
	return r.arr, r.order, nil
}

// candidateColumns yields the column counts tried for a given row count:
// both the ceiling and the rounding of n/rows, clamped to [1, n].
func candidateColumns(n, rows int) []int {
	ceil := (n + rows - 1) / rows
	round := int(math.Round(float64(n) / float64(rows)))
	if round < 1 {
		round = 1
	}
	if ceil == round {
		return []int{ceil}
	}
	return []int{ceil, round}
}

// nextPermutation advances p to its lexicographic successor, returning
// false once p is the final (descending) permutation.
func nextPermutation(p []int) bool {
	i := len(p) - 2
	for i >= 0 && p[i] >= p[i+1] {
		i--
	}
	if i < 0 {
		return false
	}
	j := len(p) - 1
	for p[j] <= p[i] {
		j--
	}
	p[i], p[j] = p[j], p[i]
	for l, r := i+1, len(p)-1; l < r; l, r = l+1, r-1 {
		p[l], p[r] = p[r], p[l]
	}
	return true
}

// memoOracle caches text measurements across repeated layout calls. The
// permutation engine re-measures the same labels on every invocation;
// this keeps those lookups out of the oracle.
type memoOracle struct {
	inner measure.Oracle
	seen  map[string]measure.Size
}

func (m *memoOracle) Measure(text string, fontSize float64, fontFamily string) (measure.Size, error) {
	key := cache.Key("text", text, fontSize, fontFamily)
	if s, ok := m.seen[key]; ok {
		return s, nil
	}
	s, err := m.inner.Measure(text, fontSize, fontFamily)
	if err != nil {
		return measure.Size{}, err
	}
	m.seen[key] = s
	return s, nil
}
