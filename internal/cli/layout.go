package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pkoenig/boxtree/pkg/diagram"
	"github.com/pkoenig/boxtree/pkg/pipeline"
)

// layoutCommand creates the layout command for computing box geometry.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		refresh bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "layout [nodes.json|nodes.csv]",
		Short: "Compute box geometry for a node list",
		Long: `Compute box geometry for a node list.

The layout command reads a flat node list, runs the selected layout engine,
and writes a diagram.json file holding every box's position and size. The
diagram can be rendered to SVG/PNG/PDF with the 'visualize' command.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c.applyConfig(cmd, &opts)
			opts.Input = args[0]
			opts.Refresh = refresh
			return c.runLayout(cmd.Context(), opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.diagram.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute even when cached")
	addLayoutFlags(cmd, &opts)

	return cmd
}

// runLayout parses the input, computes the layout, and writes the diagram.
func (c *CLI) runLayout(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger
	opts.SetLayoutDefaults()

	roots, err := runner.Parse(ctx, opts)
	if err != nil {
		return err
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Computing %s layout...", opts.LayoutType))
	spinner.Start()

	d, cacheHit, err := runner.GenerateLayoutWithCacheInfo(ctx, roots, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	out := outputPath(output, opts.Input, ".diagram.json")
	if err := diagram.WriteFile(d, out); err != nil {
		return err
	}

	printSuccess("Layout complete")
	printFile(out)
	printStats(len(d.Nodes), rootBoxCount(d), cacheHit)
	printNewline()
	printNextStep("Render", fmt.Sprintf("%s visualize %s", appName, out))

	return nil
}

// rootBoxCount counts the diagram's top-level boxes.
func rootBoxCount(d diagram.Diagram) int {
	n := 0
	for _, b := range d.Boxes {
		if b.Depth == 0 {
			n++
		}
	}
	return n
}
