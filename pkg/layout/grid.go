package layout

import (
	"math"

	"github.com/charmbracelet/log"

	"github.com/pkoenig/boxtree/pkg/hierarchy"
	"github.com/pkoenig/boxtree/pkg/measure"
)

// gridPolicy captures the behavioral differences between the grid-family
// engines. The engines share one implementation; each named engine is a
// policy over it.
type gridPolicy struct {
	// fixedColumns uses Options.Columns instead of the ratio search.
	fixedColumns bool

	// centerVertical centers the children block vertically in the
	// content area instead of aligning it to the top.
	centerVertical bool

	// squareChildren fixes each node's child arrangement target at 1.0
	// regardless of the diagram-level target ratio.
	squareChildren bool

	// wrapLeafLabels sizes leaves from word-wrapped multi-line extents
	// instead of a single-line measurement.
	wrapLeafLabels bool

	// leafWidthOverride honors Style.LeafNodeWidth for leaf widths.
	leafWidthOverride bool
}

// gridEngine is the shared implementation behind the grid, aspectratio,
// flowgrid, permutation and packing engines: bottom-up sizing with boxes
// pinned to the origin, then a top-down positioning pass.
type gridEngine struct {
	opts   Options
	style  Style
	oracle measure.Oracle
	logger *log.Logger
	policy gridPolicy
	name   Type

	// arrange decides the grid partition for one sibling set. parent is
	// nil for the forest's root set. A non-nil order permutes the
	// siblings (only the permutation engine returns one).
	arrange func(parent *hierarchy.TreeNode, children []*hierarchy.TreeNode, items []Item) (Arrangement, []int, error)
}

func newGridEngine(opts Options, style Style, oracle measure.Oracle, logger *log.Logger, name Type, policy gridPolicy) *gridEngine {
	if logger == nil {
		logger = log.Default()
	}
	e := &gridEngine{
		opts:   opts,
		style:  style,
		oracle: oracle,
		logger: logger,
		policy: policy,
		name:   name,
	}
	e.arrange = e.defaultArrange
	return e
}

// NewGrid creates the plain grid engine: children are packed row-major
// into Options.Columns columns.
func NewGrid(opts Options, style Style, oracle measure.Oracle, logger *log.Logger) Engine {
	return newGridEngine(opts, style, oracle, logger, TypeGrid, gridPolicy{
		fixedColumns:      true,
		leafWidthOverride: true,
	})
}

// NewAspectRatioGrid creates the engine that picks each sibling grid's
// column count by closest match to the target aspect ratio.
func NewAspectRatioGrid(opts Options, style Style, oracle measure.Oracle, logger *log.Logger) Engine {
	return newGridEngine(opts, style, oracle, logger, TypeAspectRatio, gridPolicy{
		leafWidthOverride: true,
	})
}

// NewFlowGrid creates the aspect-ratio engine variant that also centers
// the children block vertically within the content area.
func NewFlowGrid(opts Options, style Style, oracle measure.Oracle, logger *log.Logger) Engine {
	return newGridEngine(opts, style, oracle, logger, TypeFlowGrid, gridPolicy{
		centerVertical:    true,
		leafWidthOverride: true,
	})
}

// NewPacking creates the packing engine: leaves are sized from word
// wrapped labels, every node targets a square-ish child grid, and the
// children block is centered on both axes.
func NewPacking(opts Options, style Style, oracle measure.Oracle, logger *log.Logger) Engine {
	return newGridEngine(opts, style, oracle, logger, TypePacking, gridPolicy{
		centerVertical: true,
		squareChildren: true,
		wrapLeafLabels: true,
	})
}

// defaultArrange partitions one sibling set without reordering it.
func (e *gridEngine) defaultArrange(parent *hierarchy.TreeNode, children []*hierarchy.TreeNode, items []Item) (Arrangement, []int, error) {
	if e.policy.fixedColumns {
		return ArrangeFixed(items, e.opts.Columns, e.opts.Spacing), nil, nil
	}
	arr := FindBestArrangement(items, e.childTargetRatio(), e.opts.Spacing)
	return arr, nil, nil
}

func (e *gridEngine) childTargetRatio() float64 {
	if e.policy.squareChildren {
		return 1.0
	}
	return e.opts.TargetAspectRatio
}

// CalculateLayout computes a fresh layout for the forest.
func (e *gridEngine) CalculateLayout(roots []*hierarchy.TreeNode) ([]*hierarchy.TreeNode, error) {
	state := &gridState{
		arrs:   make(map[*hierarchy.TreeNode]Arrangement),
		titles: make(map[*hierarchy.TreeNode]measure.Size),
	}

	// Pass 1: sizes, with every box pinned to the origin. Sizes never
	// depend on final positions.
	items := make([]Item, len(roots))
	for i, r := range roots {
		it, err := e.sizeNode(r, state)
		if err != nil {
			return nil, err
		}
		items[i] = it
	}

	// Pass 2: positions, top-down. A single root starts at the origin;
	// multiple roots are arranged like a sibling set.
	if len(roots) > 1 {
		arr, order, err := e.arrange(nil, roots, items)
		if err != nil {
			return nil, err
		}
		if order != nil {
			roots = applyOrder(roots, order)
		}
		e.warnFallback(arr, "root set")
		for i, pt := range arr.Positions(len(roots)) {
			roots[i].Layout.Box.X = pt.X
			roots[i].Layout.Box.Y = pt.Y
		}
	}
	for _, r := range roots {
		if err := e.placeChildren(r, state); err != nil {
			return nil, err
		}
	}

	return roots, nil
}

// DiagramDimensions returns the forest's overall bounding box.
func (e *gridEngine) DiagramDimensions(roots []*hierarchy.TreeNode) (width, height float64) {
	return DiagramDimensions(roots)
}

// gridState carries the per-call intermediate results between the sizing
// and positioning passes.
type gridState struct {
	arrs   map[*hierarchy.TreeNode]Arrangement
	titles map[*hierarchy.TreeNode]measure.Size
}

// sizeNode computes the node's width and height bottom-up, storing the
// result as a layout at the origin. Returns the node's size as an Item.
func (e *gridEngine) sizeNode(n *hierarchy.TreeNode, state *gridState) (Item, error) {
	title, err := e.oracle.Measure(n.Data.Label(), e.style.FontSize, e.style.FontFamily)
	if err != nil {
		return Item{}, err
	}
	state.titles[n] = title

	if n.IsLeaf() {
		return e.sizeLeaf(n, title)
	}

	items := make([]Item, len(n.Children))
	for i, c := range n.Children {
		it, err := e.sizeNode(c, state)
		if err != nil {
			return Item{}, err
		}
		items[i] = it
	}

	arr, order, err := e.arrange(n, n.Children, items)
	if err != nil {
		return Item{}, err
	}
	if order != nil {
		n.Children = applyOrder(n.Children, order)
	}
	e.warnFallback(arr, n.Data.ID)
	state.arrs[n] = arr

	p := e.opts.Padding
	w := math.Max(arr.TotalWidth+2*p, title.Width+2*p)
	w = math.Max(w, e.opts.MinNodeWidth)
	h := math.Max(title.Height+p+arr.TotalHeight+p, e.opts.MinNodeHeight)

	n.Layout = &hierarchy.NodeLayout{Box: hierarchy.Rect{Width: w, Height: h}}
	return Item{Width: w, Height: h}, nil
}

// sizeLeaf derives a leaf box from its label extent.
func (e *gridEngine) sizeLeaf(n *hierarchy.TreeNode, title measure.Size) (Item, error) {
	p := e.opts.Padding
	text := title

	if e.policy.wrapLeafLabels {
		wrapped, err := wrapToSquare(e.oracle, n.Data.Label(), e.style.FontSize, e.style.FontFamily)
		if err != nil {
			return Item{}, err
		}
		text = wrapped
	}

	var w float64
	if e.policy.leafWidthOverride && e.style.LeafNodeWidth > 0 {
		w = e.style.LeafNodeWidth
	} else {
		w = math.Max(text.Width+2*p, e.opts.MinNodeWidth)
	}
	h := math.Max(text.Height+2*p, e.opts.MinNodeHeight)

	n.Layout = &hierarchy.NodeLayout{Box: hierarchy.Rect{Width: w, Height: h}}
	return Item{Width: w, Height: h}, nil
}

// placeChildren positions n's children inside its content area and
// recurses. n's own box position must already be final.
func (e *gridEngine) placeChildren(n *hierarchy.TreeNode, state *gridState) error {
	if n.IsLeaf() {
		return nil
	}

	p := e.opts.Padding
	box := n.Layout.Box
	title := state.titles[n]

	content := hierarchy.Rect{
		X:      box.X + p,
		Y:      box.Y + title.Height + p,
		Width:  box.Width - 2*p,
		Height: box.Height - title.Height - 2*p,
	}
	n.Layout.ContentArea = &content

	arr := state.arrs[n]

	// The children block is centered horizontally when the content area
	// is wider than the arrangement; vertical centering is policy.
	offX := content.X
	if content.Width > arr.TotalWidth {
		offX += (content.Width - arr.TotalWidth) / 2
	}
	offY := content.Y
	if e.policy.centerVertical && content.Height > arr.TotalHeight {
		offY += (content.Height - arr.TotalHeight) / 2
	}

	for i, pt := range arr.Positions(len(n.Children)) {
		c := n.Children[i]
		c.Layout.Box.X = offX + pt.X
		c.Layout.Box.Y = offY + pt.Y
		if err := e.placeChildren(c, state); err != nil {
			return err
		}
	}
	return nil
}

func (e *gridEngine) warnFallback(arr Arrangement, where string) {
	if arr.Fallback {
		e.logger.Warn("no finite aspect ratio candidate, using square-ish grid", "engine", e.name, "node", where)
	}
}

// applyOrder returns nodes permuted by order (order[i] is the index into
// the original slice of the node that goes to position i).
func applyOrder(nodes []*hierarchy.TreeNode, order []int) []*hierarchy.TreeNode {
	out := make([]*hierarchy.TreeNode, len(nodes))
	for i, from := range order {
		out[i] = nodes[from]
	}
	return out
}
