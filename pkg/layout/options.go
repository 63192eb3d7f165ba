package layout

import (
	"strings"

	"github.com/pkoenig/boxtree/pkg/errors"
)

// Type selects the layout algorithm.
type Type string

// Available layout algorithms.
const (
	TypeGrid        Type = "grid"
	TypeAspectRatio Type = "aspectratio"
	TypeFlowGrid    Type = "flowgrid"
	TypePermutation Type = "permutation"
	TypePacking     Type = "packing"
	TypeTreemap     Type = "treemap"
)

// Types lists every known layout type, in display order.
var Types = []Type{TypeGrid, TypeAspectRatio, TypeFlowGrid, TypePermutation, TypePacking, TypeTreemap}

// ParseType normalizes a layout type name. Matching is case-insensitive.
// Unknown names return an INVALID_LAYOUT_TYPE error; callers that prefer a
// fallback over an error use [New], which warns and selects grid.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Types {
		if t == known {
			return known, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidLayoutType, "unknown layout type: %q", s)
}

// Default option values.
const (
	DefaultColumns           = 2
	DefaultPadding           = 10.0
	DefaultSpacing           = 5.0
	DefaultMinNodeWidth      = 100.0
	DefaultMinNodeHeight     = 40.0
	DefaultTargetAspectRatio = 16.0 / 9.0
	DefaultFontSize          = 14.0
	DefaultFontFamily        = "Helvetica, Arial, sans-serif"
)

// Options configures a layout engine. An Options value is treated as
// immutable for the duration of a CalculateLayout call.
type Options struct {
	// Columns is the fixed column count used by the plain grid engine.
	// The aspect-ratio driven engines ignore it.
	Columns int

	// Padding is applied inside every box, between the border and both
	// the title strip and the content area.
	Padding float64

	// Spacing is the gap between sibling boxes.
	Spacing float64

	// MinNodeWidth and MinNodeHeight are hard floors for every box.
	MinNodeWidth  float64
	MinNodeHeight float64

	// TargetAspectRatio is the width/height ratio each arrangement
	// tries to approximate.
	TargetAspectRatio float64

	// LayoutType selects the algorithm.
	LayoutType Type
}

// DefaultOptions returns the standard option set.
func DefaultOptions() Options {
	return Options{
		Columns:           DefaultColumns,
		Padding:           DefaultPadding,
		Spacing:           DefaultSpacing,
		MinNodeWidth:      DefaultMinNodeWidth,
		MinNodeHeight:     DefaultMinNodeHeight,
		TargetAspectRatio: DefaultTargetAspectRatio,
		LayoutType:        TypeGrid,
	}
}

// Validate rejects option values no engine can work with.
func (o Options) Validate() error {
	if o.Columns < 1 {
		return errors.New(errors.ErrCodeInvalidOptions, "columns must be >= 1, got %d", o.Columns)
	}
	if o.Padding < 0 {
		return errors.New(errors.ErrCodeInvalidOptions, "padding must be >= 0, got %v", o.Padding)
	}
	if o.Spacing < 0 {
		return errors.New(errors.ErrCodeInvalidOptions, "spacing must be >= 0, got %v", o.Spacing)
	}
	if o.MinNodeWidth <= 0 || o.MinNodeHeight <= 0 {
		return errors.New(errors.ErrCodeInvalidOptions, "minimum node size must be positive, got %vx%v", o.MinNodeWidth, o.MinNodeHeight)
	}
	if o.TargetAspectRatio <= 0 {
		return errors.New(errors.ErrCodeInvalidOptions, "target aspect ratio must be > 0, got %v", o.TargetAspectRatio)
	}
	return nil
}

// Style carries the text-related hints used for sizing. None of these are
// drawing instructions; the renderer has its own styling.
type Style struct {
	// FontSize and FontFamily are forwarded to the text size oracle.
	FontSize   float64
	FontFamily string

	// LeafNodeWidth, when positive, fixes the width of leaf boxes in
	// the grid-family engines instead of deriving it from the label.
	LeafNodeWidth float64
}

// DefaultStyle returns the standard style hints.
func DefaultStyle() Style {
	return Style{
		FontSize:   DefaultFontSize,
		FontFamily: DefaultFontFamily,
	}
}
