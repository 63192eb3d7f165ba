package pipeline

import (
	"context"

	"github.com/pkoenig/boxtree/pkg/diagram"
	"github.com/pkoenig/boxtree/pkg/render"
)

// =============================================================================
// Render Stage
// =============================================================================

// RenderDiagram generates output artifacts in every requested format,
// keyed by format name.
func RenderDiagram(ctx context.Context, d diagram.Diagram, opts Options) (map[string][]byte, error) {
	renderOpts := opts.RenderOptions()
	artifacts := make(map[string][]byte, len(opts.Formats))

	for _, name := range opts.Formats {
		format, err := render.ParseFormat(name)
		if err != nil {
			return nil, err
		}
		data, err := render.Render(ctx, d, format, renderOpts...)
		if err != nil {
			return nil, err
		}
		artifacts[string(format)] = data
	}

	return artifacts, nil
}
