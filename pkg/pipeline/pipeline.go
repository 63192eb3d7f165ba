// Package pipeline provides the core diagram pipeline for Boxtree.
//
// This package implements the complete parse → layout → render pipeline that
// can be used by CLI and API components. By centralizing this logic, we
// ensure consistent behavior across all entry points and avoid code
// duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Parse: Read flat node lists from files or inline data and build a forest
//  2. Layout: Compute nested box geometry for the forest
//  3. Render: Generate output in various formats (SVG, PNG, PDF, JSON, DOT)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Input:      "nodes.json",
//	    LayoutType: "flowgrid",
//	    Formats:    []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	// Parse only
//	roots, err := runner.Parse(ctx, opts)
//
//	// Layout with an existing forest
//	d, err := runner.GenerateLayout(ctx, roots, opts)
//
//	// Render with an existing diagram
//	artifacts, err := runner.Render(ctx, d, opts)
package pipeline

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/pkoenig/boxtree/pkg/cache"
	"github.com/pkoenig/boxtree/pkg/diagram"
	"github.com/pkoenig/boxtree/pkg/errors"
	"github.com/pkoenig/boxtree/pkg/hierarchy"
	"github.com/pkoenig/boxtree/pkg/layout"
	"github.com/pkoenig/boxtree/pkg/measure"
	"github.com/pkoenig/boxtree/pkg/render"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultLayoutType is the layout engine used when none is requested.
	DefaultLayoutType = string(layout.TypeGrid)

	// DefaultOracle is the text measurement backend used when none is
	// requested. The font oracle measures real glyph advances; the
	// heuristic estimates from character classes and needs no font data.
	DefaultOracle = OracleFont

	// DefaultFormat is the output format used when none is requested.
	DefaultFormat = string(render.FormatSVG)

	// DefaultScale is the raster scale factor for PNG output.
	DefaultScale = 2.0
)

// Text measurement oracle names.
const (
	OracleFont      = "font"
	OracleHeuristic = "heuristic"
)

// ValidOracles is the set of supported measurement oracles.
var ValidOracles = map[string]bool{
	OracleFont:      true,
	OracleHeuristic: true,
}

// Input format constants.
const (
	InputJSON   = "json"
	InputCSV    = "csv"
	InputInline = "inline"
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the diagram pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Parse options. Exactly one of Input or Nodes must be set; Nodes
	// takes precedence and is what API requests use.
	Input   string           `json:"input,omitempty"`
	Nodes   []hierarchy.Node `json:"nodes,omitempty"`
	Refresh bool             `json:"refresh,omitempty"`

	// Layout options
	LayoutType        string  `json:"layout_type,omitempty"`
	Columns           int     `json:"columns,omitempty"`
	Padding           float64 `json:"padding,omitempty"`
	Spacing           float64 `json:"spacing,omitempty"`
	MinNodeWidth      float64 `json:"min_node_width,omitempty"`
	MinNodeHeight     float64 `json:"min_node_height,omitempty"`
	TargetAspectRatio float64 `json:"target_aspect_ratio,omitempty"`
	LeafNodeWidth     float64 `json:"leaf_node_width,omitempty"`
	FontSize          float64 `json:"font_size,omitempty"`
	FontFamily        string  `json:"font_family,omitempty"`
	Oracle            string  `json:"oracle,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Scale    float64  `json:"scale,omitempty"`
	NoLabels bool     `json:"no_labels,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Forest is the parsed hierarchy with layout annotations.
	Forest []*hierarchy.TreeNode

	// ForestHash is the content hash of the flat node list.
	ForestHash string

	// Diagram is the serializable laid out diagram.
	Diagram diagram.Diagram

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	RootCount  int
	ParseTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ParseHit  bool // Whether the parsed node list came from cache
	LayoutHit bool // Whether the diagram came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormats checks that all requested output formats are supported.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if _, err := render.ParseFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateOracle checks that a measurement oracle name is valid.
func ValidateOracle(oracle string) error {
	if !ValidOracles[oracle] {
		return errors.New(errors.ErrCodeInvalidOptions,
			"invalid oracle: %q (must be one of: font, heuristic)", oracle)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. This method is idempotent - calling it multiple times has
// the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForParse(); err != nil {
		return err
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForParse checks required fields for parsing.
func (o *Options) ValidateForParse() error {
	if o.Input == "" && len(o.Nodes) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "input file or inline nodes required")
	}
	if len(o.Nodes) == 0 {
		if _, err := o.InputFormat(); err != nil {
			return err
		}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// InputFormat reports where the node list comes from: json, csv, or inline.
func (o *Options) InputFormat() (string, error) {
	if len(o.Nodes) > 0 {
		return InputInline, nil
	}
	switch strings.ToLower(filepath.Ext(o.Input)) {
	case ".json":
		return InputJSON, nil
	case ".csv":
		return InputCSV, nil
	default:
		return "", errors.New(errors.ErrCodeUnsupported,
			"unsupported input format %q (want .json or .csv)", filepath.Ext(o.Input))
	}
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.LayoutType == "" {
		o.LayoutType = DefaultLayoutType
	}
	if o.Columns == 0 {
		o.Columns = layout.DefaultColumns
	}
	if o.Padding == 0 {
		o.Padding = layout.DefaultPadding
	}
	if o.Spacing == 0 {
		o.Spacing = layout.DefaultSpacing
	}
	if o.MinNodeWidth == 0 {
		o.MinNodeWidth = layout.DefaultMinNodeWidth
	}
	if o.MinNodeHeight == 0 {
		o.MinNodeHeight = layout.DefaultMinNodeHeight
	}
	if o.TargetAspectRatio == 0 {
		o.TargetAspectRatio = layout.DefaultTargetAspectRatio
	}
	if o.FontSize == 0 {
		o.FontSize = layout.DefaultFontSize
	}
	if o.FontFamily == "" {
		o.FontFamily = layout.DefaultFontFamily
	}
	if o.Oracle == "" {
		o.Oracle = DefaultOracle
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if _, err := layout.ParseType(o.LayoutType); err != nil {
		return err
	}
	if err := ValidateOracle(o.Oracle); err != nil {
		return err
	}
	opts, _ := o.LayoutOptions()
	return opts.Validate()
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
// Format names are normalized in place so artifact maps and cache keys
// always use the canonical lowercase names.
func (o *Options) ValidateForRender() error {
	o.SetLayoutDefaults()
	o.SetRenderDefaults()
	for i, f := range o.Formats {
		format, err := render.ParseFormat(f)
		if err != nil {
			return err
		}
		o.Formats[i] = string(format)
	}
	if o.Scale <= 0 {
		return errors.New(errors.ErrCodeInvalidOptions, "scale must be positive, got %v", o.Scale)
	}
	return nil
}

// LayoutOptions converts pipeline options into the layout package's types.
func (o *Options) LayoutOptions() (layout.Options, layout.Style) {
	opts := layout.Options{
		LayoutType:        layout.Type(o.LayoutType),
		Columns:           o.Columns,
		Padding:           o.Padding,
		Spacing:           o.Spacing,
		MinNodeWidth:      o.MinNodeWidth,
		MinNodeHeight:     o.MinNodeHeight,
		TargetAspectRatio: o.TargetAspectRatio,
	}
	style := layout.Style{
		FontSize:      o.FontSize,
		FontFamily:    o.FontFamily,
		LeafNodeWidth: o.LeafNodeWidth,
	}
	return opts, style
}

// NewOracle constructs the configured text measurement oracle.
func (o *Options) NewOracle() (measure.Oracle, error) {
	switch o.Oracle {
	case OracleHeuristic:
		return measure.NewHeuristic(), nil
	default:
		return measure.NewFontOracle()
	}
}

// RenderOptions converts pipeline options into render package options.
func (o *Options) RenderOptions() []render.Option {
	renderOpts := []render.Option{
		render.WithFontSize(o.FontSize),
		render.WithFontFamily(o.FontFamily),
		render.WithScale(o.Scale),
	}
	if o.NoLabels {
		renderOpts = append(renderOpts, render.WithoutLabels())
	}
	return renderOpts
}

// ForestKeyOpts returns cache key options for forest construction.
func (o *Options) ForestKeyOpts() cache.ForestKeyOpts {
	format, _ := o.InputFormat()
	return cache.ForestKeyOpts{Format: format}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		LayoutType:        o.LayoutType,
		Columns:           o.Columns,
		Padding:           o.Padding,
		Spacing:           o.Spacing,
		MinNodeWidth:      o.MinNodeWidth,
		MinNodeHeight:     o.MinNodeHeight,
		TargetAspectRatio: o.TargetAspectRatio,
		LeafNodeWidth:     o.LeafNodeWidth,
		FontSize:          o.FontSize,
		FontFamily:        o.FontFamily,
		Oracle:            o.Oracle,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
// Scale is folded into the style component so differently scaled
// rasters never collide.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	style := "labels"
	if o.NoLabels {
		style = "plain"
	}
	return cache.ArtifactKeyOpts{
		Format:  format,
		VizType: o.LayoutType,
		Style:   fmt.Sprintf("%s-%gx", style, o.Scale),
	}
}
