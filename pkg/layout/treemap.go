package layout

import (
	"math"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/pkoenig/boxtree/pkg/hierarchy"
	"github.com/pkoenig/boxtree/pkg/measure"
)

// DefaultTargetLeafAspectRatio is the per-leaf ratio the treemap biases
// toward; 1.0 keeps leaves square-ish.
const DefaultTargetLeafAspectRatio = 1.0

// Treemap canvas sizing. The initial canvas scales with the total content
// area so label-heavy diagrams get room to breathe, bounded so degenerate
// inputs cannot produce an absurd viewport.
const (
	treemapAreaScale = 1.25
	treemapCanvasMin = 320.0
	treemapCanvasMax = 4096.0
)

const treemapEps = 1e-6

// TreemapEngine lays the forest out as a squarified treemap: every node
// receives area proportional to its weight (leaves weigh what their
// wrapped label occupies, internal nodes the sum of their children), and
// rows are chosen to keep aspect ratios near the leaf target.
//
// Minimum size enforcement happens per node after its strip is assigned,
// so children can overflow their parent's content bounds; the engine then
// scales them back down proportionally. With many children all pinned to
// the minimum size this correction is best-effort; the containment
// property is a goal here, not a guarantee.
type TreemapEngine struct {
	opts   Options
	style  Style
	oracle measure.Oracle
	logger *log.Logger

	// LeafAspectRatio is the per-leaf width/height target used both for
	// label wrapping and row scoring.
	LeafAspectRatio float64
}

// NewTreemap creates a squarified treemap engine.
func NewTreemap(opts Options, style Style, oracle measure.Oracle, logger *log.Logger) *TreemapEngine {
	if logger == nil {
		logger = log.Default()
	}
	return &TreemapEngine{
		opts:            opts,
		style:           style,
		oracle:          oracle,
		logger:          logger,
		LeafAspectRatio: DefaultTargetLeafAspectRatio,
	}
}

// CalculateLayout computes a fresh treemap layout for the forest.
func (e *TreemapEngine) CalculateLayout(roots []*hierarchy.TreeNode) ([]*hierarchy.TreeNode, error) {
	values := make(map[*hierarchy.TreeNode]float64, hierarchy.Count(roots))
	total := 0.0
	for _, r := range roots {
		v, err := e.computeValues(r, values)
		if err != nil {
			return nil, err
		}
		total += v
	}

	w, h := e.canvas(total)
	canvas := hierarchy.Rect{Width: w, Height: h}

	if len(roots) == 1 {
		return roots, e.layoutNode(roots[0], canvas, values)
	}

	order, rects := e.partition(roots, canvas, values)
	for i, r := range order {
		if err := e.layoutNode(r, insetRect(rects[i], e.opts.Spacing/2), values); err != nil {
			return nil, err
		}
	}
	return roots, nil
}

// DiagramDimensions returns the forest's overall bounding box.
func (e *TreemapEngine) DiagramDimensions(roots []*hierarchy.TreeNode) (width, height float64) {
	return DiagramDimensions(roots)
}

// computeValues assigns area weights bottom-up. A leaf weighs the area of
// its word-wrapped label block, floored at 1 so empty labels still occupy
// space; an internal node weighs the sum of its children.
func (e *TreemapEngine) computeValues(n *hierarchy.TreeNode, values map[*hierarchy.TreeNode]float64) (float64, error) {
	if n.IsLeaf() {
		block, err := wrapToRatio(e.oracle, n.Data.Label(), e.style.FontSize, e.style.FontFamily, e.LeafAspectRatio)
		if err != nil {
			return 0, err
		}
		v := math.Max(block.Width*block.Height, 1)
		values[n] = v
		return v, nil
	}

	sum := 0.0
	for _, c := range n.Children {
		v, err := e.computeValues(c, values)
		if err != nil {
			return 0, err
		}
		sum += v
	}
	values[n] = sum
	return sum, nil
}

// canvas derives the initial rectangle from the total content area and
// the diagram-level target ratio, clamped on both axes.
func (e *TreemapEngine) canvas(total float64) (w, h float64) {
	area := math.Max(total, 1) * treemapAreaScale
	w = math.Sqrt(area * e.opts.TargetAspectRatio)
	w = math.Min(math.Max(w, treemapCanvasMin), treemapCanvasMax)
	h = area / w
	h = math.Min(math.Max(h, treemapCanvasMin), treemapCanvasMax)
	return w, h
}

// layoutNode assigns n's box within rect (floored to the minimum node
// size) and recursively partitions its content area among its children.
func (e *TreemapEngine) layoutNode(n *hierarchy.TreeNode, rect hierarchy.Rect, values map[*hierarchy.TreeNode]float64) error {
	box := hierarchy.Rect{
		X:      rect.X,
		Y:      rect.Y,
		Width:  math.Max(rect.Width, e.opts.MinNodeWidth),
		Height: math.Max(rect.Height, e.opts.MinNodeHeight),
	}
	n.Layout = &hierarchy.NodeLayout{Box: box}

	if n.IsLeaf() {
		return nil
	}

	title, err := e.oracle.Measure(n.Data.Label(), e.style.FontSize, e.style.FontFamily)
	if err != nil {
		return err
	}

	p := e.opts.Padding
	content := hierarchy.Rect{
		X:      box.X + p,
		Y:      box.Y + title.Height + p,
		Width:  math.Max(box.Width-2*p, 1),
		Height: math.Max(box.Height-title.Height-2*p, 1),
	}

	order, rects := e.partition(n.Children, content, values)
	for i, c := range order {
		if err := e.layoutNode(c, insetRect(rects[i], e.opts.Spacing/2), values); err != nil {
			return err
		}
	}

	// Minimum-size flooring below may have pushed children past the
	// content bounds; pull them back with a uniform scale about the
	// content origin.
	bbox := childBounds(n)
	if bbox.Right() > content.Right()+treemapEps || bbox.Bottom() > content.Bottom()+treemapEps {
		s := math.Min(
			content.Width/math.Max(bbox.Right()-content.X, treemapEps),
			content.Height/math.Max(bbox.Bottom()-content.Y, treemapEps),
		)
		for _, c := range n.Children {
			scaleSubtree(c, content.X, content.Y, s)
		}
		bbox = childBounds(n)
	}

	// Tighten the box around the children plus padding, while keeping
	// the title and minimum size satisfied.
	right := math.Max(bbox.Right()+p, box.X+title.Width+2*p)
	right = math.Max(right, box.X+e.opts.MinNodeWidth)
	bottom := math.Max(bbox.Bottom()+p, box.Y+e.opts.MinNodeHeight)
	n.Layout.Box.Width = right - box.X
	n.Layout.Box.Height = bottom - box.Y

	n.Layout.ContentArea = &hierarchy.Rect{
		X:      content.X,
		Y:      content.Y,
		Width:  n.Layout.Box.Width - 2*p,
		Height: n.Layout.Box.Height - title.Height - 2*p,
	}
	return nil
}

// partition runs the squarify row selection over nodes within rect.
// It returns the nodes in layout order (value-descending, stable) with a
// parallel slice of assigned rectangles. The input slice is not reordered.
func (e *TreemapEngine) partition(nodes []*hierarchy.TreeNode, rect hierarchy.Rect, values map[*hierarchy.TreeNode]float64) ([]*hierarchy.TreeNode, []hierarchy.Rect) {
	order := make([]*hierarchy.TreeNode, len(nodes))
	copy(order, nodes)
	sort.SliceStable(order, func(i, j int) bool {
		return values[order[i]] > values[order[j]]
	})

	total := 0.0
	for _, n := range order {
		total += values[n]
	}

	rects := make([]hierarchy.Rect, len(order))
	if total <= 0 || rect.Width <= 0 || rect.Height <= 0 {
		for i := range rects {
			rects[i] = hierarchy.Rect{X: rect.X, Y: rect.Y}
		}
		return order, rects
	}

	// Scale weights to absolute areas inside rect.
	areas := make([]float64, len(order))
	scale := rect.Width * rect.Height / total
	for i, n := range order {
		areas[i] = values[n] * scale
	}

	squarify(areas, rect, rects)
	return order, rects
}

// squarify assigns each area a rectangle inside rect using the classical
// squarified treemap recurrence: grow a row while its worst aspect ratio
// improves, lay the row along the shorter side of the remaining space,
// and repeat on the rest.
func squarify(areas []float64, rect hierarchy.Rect, out []hierarchy.Rect) {
	remaining := rect
	i := 0
	for i < len(areas) {
		short := math.Min(remaining.Width, remaining.Height)
		if short <= 0 {
			// Degenerate leftover space; stack the rest at the corner.
			for ; i < len(areas); i++ {
				out[i] = hierarchy.Rect{X: remaining.X, Y: remaining.Y}
			}
			return
		}

		rowStart := i
		rowSum := areas[i]
		rowMin, rowMax := areas[i], areas[i]
		worst := worstAspect(rowSum, rowMin, rowMax, short)
		i++
		for i < len(areas) {
			s := rowSum + areas[i]
			mn := math.Min(rowMin, areas[i])
			mx := math.Max(rowMax, areas[i])
			w := worstAspect(s, mn, mx, short)
			if w > worst {
				break
			}
			rowSum, rowMin, rowMax, worst = s, mn, mx, w
			i++
		}

		thickness := rowSum / short
		row := areas[rowStart:i]
		if remaining.Width >= remaining.Height {
			// Vertical strip on the left, items stacked downward.
			y := remaining.Y
			for k, a := range row {
				h := 0.0
				if thickness > 0 {
					h = a / thickness
				}
				out[rowStart+k] = hierarchy.Rect{X: remaining.X, Y: y, Width: thickness, Height: h}
				y += h
			}
			remaining.X += thickness
			remaining.Width -= thickness
		} else {
			// Horizontal strip on top, items flowing rightward.
			x := remaining.X
			for k, a := range row {
				w := 0.0
				if thickness > 0 {
					w = a / thickness
				}
				out[rowStart+k] = hierarchy.Rect{X: x, Y: remaining.Y, Width: w, Height: thickness}
				x += w
			}
			remaining.Y += thickness
			remaining.Height -= thickness
		}
	}
}

// worstAspect is the worst aspect ratio a row with the given area stats
// would have when laid against a side of length l.
func worstAspect(sum, min, max, l float64) float64 {
	if sum <= 0 || min <= 0 {
		return math.Inf(1)
	}
	s2 := sum * sum
	l2 := l * l
	return math.Max(l2*max/s2, s2/(l2*min))
}

// insetRect shrinks r by d on every side, collapsing to a point at the
// center when r is too small.
func insetRect(r hierarchy.Rect, d float64) hierarchy.Rect {
	if r.Width <= 2*d || r.Height <= 2*d {
		return hierarchy.Rect{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
	}
	return hierarchy.Rect{X: r.X + d, Y: r.Y + d, Width: r.Width - 2*d, Height: r.Height - 2*d}
}

// childBounds returns the union of n's direct children boxes.
func childBounds(n *hierarchy.TreeNode) hierarchy.Rect {
	first := n.Children[0].Layout.Box
	minX, minY := first.X, first.Y
	maxX, maxY := first.Right(), first.Bottom()
	for _, c := range n.Children[1:] {
		b := c.Layout.Box
		minX = math.Min(minX, b.X)
		minY = math.Min(minY, b.Y)
		maxX = math.Max(maxX, b.Right())
		maxY = math.Max(maxY, b.Bottom())
	}
	return hierarchy.Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// scaleSubtree scales every box in c's subtree by s about (ox, oy).
func scaleSubtree(c *hierarchy.TreeNode, ox, oy, s float64) {
	c.Walk(func(n *hierarchy.TreeNode) {
		if n.Layout == nil {
			return
		}
		b := &n.Layout.Box
		b.X = ox + (b.X-ox)*s
		b.Y = oy + (b.Y-oy)*s
		b.Width *= s
		b.Height *= s
		if ca := n.Layout.ContentArea; ca != nil {
			ca.X = ox + (ca.X-ox)*s
			ca.Y = oy + (ca.Y-oy)*s
			ca.Width *= s
			ca.Height *= s
		}
	})
}
