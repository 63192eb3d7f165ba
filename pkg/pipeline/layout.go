package pipeline

import (
	"github.com/pkoenig/boxtree/pkg/diagram"
	"github.com/pkoenig/boxtree/pkg/hierarchy"
	"github.com/pkoenig/boxtree/pkg/layout"
)

// =============================================================================
// Layout Stage
// =============================================================================

// GenerateLayout runs the configured engine over the forest and packages the
// result as a serializable diagram. The forest's Layout fields are written
// in place; the returned diagram snapshots them.
func GenerateLayout(roots []*hierarchy.TreeNode, opts Options) (diagram.Diagram, error) {
	oracle, err := opts.NewOracle()
	if err != nil {
		return diagram.Diagram{}, err
	}

	layoutOpts, style := opts.LayoutOptions()
	engine := layout.New(layoutOpts, style, oracle, opts.Logger)

	roots, err = engine.CalculateLayout(roots)
	if err != nil {
		return diagram.Diagram{}, err
	}

	width, height := engine.DiagramDimensions(roots)
	return diagram.FromForest(roots, opts.LayoutType, width, height)
}
