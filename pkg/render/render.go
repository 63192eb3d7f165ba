// Package render turns diagrams into output artifacts.
//
// The SVG renderer is the primary sink; PNG rasterizes the SVG, PDF draws
// the same geometry natively, DOT produces a node-link view of the
// hierarchy for Graphviz, and JSON is the diagram's own serialization.
// All renderers are pure functions of the diagram plus options and are
// safe for concurrent use.
package render

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/pkoenig/boxtree/pkg/diagram"
	"github.com/pkoenig/boxtree/pkg/errors"
)

// Format is an output artifact type.
type Format string

// Supported output formats.
const (
	FormatSVG  Format = "svg"
	FormatPNG  Format = "png"
	FormatPDF  Format = "pdf"
	FormatJSON Format = "json"
	FormatDOT  Format = "dot"
)

// Formats lists every supported format, in display order.
var Formats = []Format{FormatSVG, FormatPNG, FormatPDF, FormatJSON, FormatDOT}

// ParseFormat normalizes a format name. Matching is case-insensitive.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return known, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unknown output format: %q", s)
}

// FormatFromPath derives the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", errors.New(errors.ErrCodeInvalidFormat, "output path %q has no extension", path)
	}
	return ParseFormat(ext)
}

// Render produces the artifact bytes for a diagram in the given format.
// The context is only consulted by the DOT path, which runs Graphviz.
func Render(ctx context.Context, d diagram.Diagram, format Format, opts ...Option) ([]byte, error) {
	switch format {
	case FormatSVG:
		return RenderSVG(d, opts...), nil
	case FormatPNG:
		return RenderPNG(d, opts...)
	case FormatPDF:
		return RenderPDF(d, opts...)
	case FormatJSON:
		return diagram.Marshal(d)
	case FormatDOT:
		return RenderDOTSVG(ctx, ToDOT(d))
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown output format: %q", format)
	}
}

// Option configures a renderer.
type Option func(*config)

type config struct {
	fontSize   float64
	fontFamily string
	scale      float64
	showLabels bool
}

func newConfig(opts ...Option) config {
	c := config{
		fontSize:   14,
		fontFamily: "Helvetica, Arial, sans-serif",
		scale:      2.0,
		showLabels: true,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithFontSize sets the label font size in points.
func WithFontSize(size float64) Option {
	return func(c *config) { c.fontSize = size }
}

// WithFontFamily sets the label font stack.
func WithFontFamily(family string) Option {
	return func(c *config) { c.fontFamily = family }
}

// WithScale sets the PNG rasterization factor (default 2.0 for 2x output).
func WithScale(s float64) Option {
	return func(c *config) { c.scale = s }
}

// WithoutLabels disables label drawing, leaving bare rectangles.
func WithoutLabels() Option {
	return func(c *config) { c.showLabels = false }
}
