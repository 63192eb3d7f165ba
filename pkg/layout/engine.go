// Package layout computes box geometry for hierarchy forests.
//
// Every engine implements the same contract: size each node so its label
// fits, pack children inside their parent without overlap, and steer each
// arrangement toward a target aspect ratio. The engines differ in how they
// arrange siblings:
//
//   - grid: fixed column count from Options.Columns
//   - aspectratio: column count chosen by the arrangement solver
//   - flowgrid: aspectratio plus title-aware widths and vertical centering
//   - permutation: aspectratio plus exhaustive sibling reordering
//   - packing: word-wrapped leaf sizing with square-ish child grids
//   - treemap: squarified area-proportional partition
//
// All computation is synchronous and CPU-bound. Engines mutate the Layout
// field of the nodes they are given (and, for permutation, the order of
// Children); callers sharing a forest across goroutines must serialize
// CalculateLayout calls or clone the forest.
package layout

import (
	"github.com/charmbracelet/log"

	"github.com/pkoenig/boxtree/pkg/hierarchy"
	"github.com/pkoenig/boxtree/pkg/measure"
)

// Engine is the contract every layout algorithm implements.
type Engine interface {
	// CalculateLayout computes and stores a layout for every node of the
	// forest. It returns the same root references it was given. Prior
	// Layout values are fully overwritten, never merged.
	CalculateLayout(roots []*hierarchy.TreeNode) ([]*hierarchy.TreeNode, error)

	// DiagramDimensions returns the canvas size needed to show the laid
	// out forest: the maximum x+width and y+height over every node.
	DiagramDimensions(roots []*hierarchy.TreeNode) (width, height float64)
}

// New selects and constructs the engine for opts.LayoutType. An unknown
// type logs a warning and falls back to the grid engine; producing some
// layout always beats failing.
func New(opts Options, style Style, oracle measure.Oracle, logger *log.Logger) Engine {
	if logger == nil {
		logger = log.Default()
	}

	t, err := ParseType(string(opts.LayoutType))
	if err != nil {
		logger.Warn("unknown layout type, falling back to grid", "type", opts.LayoutType)
		t = TypeGrid
	}

	switch t {
	case TypeAspectRatio:
		return NewAspectRatioGrid(opts, style, oracle, logger)
	case TypeFlowGrid:
		return NewFlowGrid(opts, style, oracle, logger)
	case TypePermutation:
		return NewPermutation(opts, style, oracle, logger)
	case TypePacking:
		return NewPacking(opts, style, oracle, logger)
	case TypeTreemap:
		return NewTreemap(opts, style, oracle, logger)
	default:
		return NewGrid(opts, style, oracle, logger)
	}
}

// DiagramDimensions computes the overall bounding box of a laid out forest.
// It assumes the forest's top-left sits near the origin and takes the max
// of x+width and y+height across every node. Nodes without a layout
// contribute nothing.
func DiagramDimensions(roots []*hierarchy.TreeNode) (width, height float64) {
	hierarchy.WalkForest(roots, func(n *hierarchy.TreeNode) {
		if n.Layout == nil {
			return
		}
		if r := n.Layout.Box.Right(); r > width {
			width = r
		}
		if b := n.Layout.Box.Bottom(); b > height {
			height = b
		}
	})
	return width, height
}
