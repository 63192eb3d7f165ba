package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pkoenig/boxtree/pkg/diagram"
	"github.com/pkoenig/boxtree/pkg/pipeline"
)

// visualizeCommand creates the visualize command for rendering from a
// precomputed diagram.
func (c *CLI) visualizeCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		noCache    bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "visualize [diagram.json]",
		Short: "Render visualization from a computed diagram",
		Long: `Render visualization from a computed diagram.

The visualize command takes a diagram.json file (produced by 'layout') and
renders it to SVG, PNG, PDF, or DOT. The diagram contains all positioning
information, so this step is purely about rendering.

Use 'render' as a shortcut to go directly from a node list to visual output.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c.applyConfig(cmd, &opts)
			opts.Formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			return c.runVisualize(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, json, dot (comma-separated)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	addRenderFlags(cmd, &opts)

	return cmd
}

// runVisualize loads the diagram and renders it.
func (c *CLI) runVisualize(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	d, err := diagram.ReadFile(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger
	// The diagram remembers the engine that produced it; keying artifacts
	// by it keeps them apart from other engines' output.
	opts.LayoutType = d.LayoutType

	spinner := newSpinnerWithContext(ctx, "Rendering diagram...")
	spinner.Start()

	artifacts, cacheHit, err := runner.RenderWithCacheInfo(ctx, d, opts)
	if err != nil {
		spinner.StopWithError("Visualization failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	paths, err := writeArtifacts(artifacts, opts.Formats, input, output)
	if err != nil {
		return err
	}

	printSuccess("Visualization complete")
	for _, p := range paths {
		printFile(p)
	}
	printStats(len(d.Nodes), rootBoxCount(d), cacheHit)

	return nil
}
