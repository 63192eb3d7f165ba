package cli

import (
	"github.com/spf13/cobra"

	"github.com/pkoenig/boxtree/pkg/pipeline"
)

// addLayoutFlags registers the flags shared by every command that computes
// a layout. Zero values mean "use pipeline defaults".
func addLayoutFlags(cmd *cobra.Command, opts *pipeline.Options) {
	cmd.Flags().StringVarP(&opts.LayoutType, "engine", "e", opts.LayoutType, "layout engine: grid (default), aspectratio, flowgrid, permutation, packing, treemap")
	cmd.Flags().IntVar(&opts.Columns, "columns", opts.Columns, "fixed column count (grid engine)")
	cmd.Flags().Float64Var(&opts.Padding, "padding", opts.Padding, "inner padding between a box and its children")
	cmd.Flags().Float64Var(&opts.Spacing, "spacing", opts.Spacing, "spacing between sibling boxes")
	cmd.Flags().Float64Var(&opts.MinNodeWidth, "min-width", opts.MinNodeWidth, "minimum box width")
	cmd.Flags().Float64Var(&opts.MinNodeHeight, "min-height", opts.MinNodeHeight, "minimum box height")
	cmd.Flags().Float64Var(&opts.TargetAspectRatio, "aspect-ratio", opts.TargetAspectRatio, "target width/height ratio for child arrangements")
	cmd.Flags().Float64Var(&opts.LeafNodeWidth, "leaf-width", opts.LeafNodeWidth, "fixed leaf width, bypasses the minimum (0 = off)")
	cmd.Flags().Float64Var(&opts.FontSize, "font-size", opts.FontSize, "label font size")
	cmd.Flags().StringVar(&opts.FontFamily, "font-family", opts.FontFamily, "label font family")
	cmd.Flags().StringVar(&opts.Oracle, "oracle", opts.Oracle, "text measurement: font (default), heuristic")
}

// addRenderFlags registers the flags shared by every command that renders
// artifacts.
func addRenderFlags(cmd *cobra.Command, opts *pipeline.Options) {
	cmd.Flags().Float64Var(&opts.Scale, "scale", opts.Scale, "raster scale factor for png output")
	cmd.Flags().BoolVar(&opts.NoLabels, "no-labels", opts.NoLabels, "draw boxes without labels")
}
