package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pkoenig/boxtree/pkg/hierarchy"
	boxio "github.com/pkoenig/boxtree/pkg/io"
)

// buildCommand creates the build command for validating and normalizing
// flat node lists.
func (c *CLI) buildCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "build [nodes.json|nodes.csv]",
		Short: "Validate a flat node list and write it in normalized form",
		Long: `Validate a flat node list and write it in normalized form.

The build command reads a flat, parent-referenced node list from a JSON or
CSV file, checks it (unique ids, known parents, no cycles), and writes the
normalized JSON form that the other commands consume. CSV input is the main
use case: build converts it once so later runs skip the conversion.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBuild(cmd.Context(), args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.nodes.json)")

	return cmd
}

// runBuild imports, validates, and re-exports the node list.
func (c *CLI) runBuild(ctx context.Context, input, output string) error {
	logger := loggerFromContext(ctx)
	p := newProgress(logger)

	nodes, err := boxio.Import(input)
	if err != nil {
		return err
	}
	logger.Debug("imported node list", "file", input, "nodes", len(nodes))

	roots, err := hierarchy.BuildForest(nodes)
	if err != nil {
		return err
	}
	p.done(fmt.Sprintf("Validated %d nodes", len(nodes)))

	if ctx.Err() != nil {
		return ctx.Err()
	}

	out := outputPath(output, input, ".nodes.json")
	if err := boxio.ExportJSON(nodes, out); err != nil {
		return err
	}

	printSuccess("Hierarchy is valid")
	printFile(out)
	printStats(hierarchy.Count(roots), len(roots), false)
	printNewline()
	printNextStep("Compute a layout", fmt.Sprintf("%s layout %s", appName, out))

	return nil
}
