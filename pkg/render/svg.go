package render

import (
	"bytes"
	"fmt"

	svg "github.com/ajstarks/svgo/float"

	"github.com/pkoenig/boxtree/pkg/diagram"
)

const (
	svgStrokeWidth = 1.5
	svgCornerR     = 3.0

	// Title baselines sit a fraction of the font size below the top edge.
	titleBaselinePad = 0.4
)

// RenderSVG renders a diagram as a nested-rectangle SVG. Boxes arrive in
// pre-order, so parents are drawn first and children paint on top.
func RenderSVG(d diagram.Diagram, opts ...Option) []byte {
	c := newConfig(opts...)

	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Start(d.Width, d.Height)

	for _, b := range d.Boxes {
		style := fmt.Sprintf("fill:%s;stroke:%s;stroke-width:%.1f", fillFor(b), strokeColor, svgStrokeWidth)
		canvas.Roundrect(b.X, b.Y, b.Width, b.Height, svgCornerR, svgCornerR, style)
	}

	if c.showLabels {
		for _, b := range d.Boxes {
			renderLabel(canvas, b, c)
		}
	}

	canvas.End()
	return buf.Bytes()
}

// renderLabel emits the label text for one box. Labels are passed through
// raw; canvas.Text XML-escapes its content.
func renderLabel(canvas *svg.SVG, b diagram.Box, c config) {
	label := b.Label
	style := fmt.Sprintf("font-family:%s;font-size:%.1fpx;fill:%s", c.fontFamily, c.fontSize, textColor)

	if b.Leaf {
		// Centered in the box.
		canvas.Text(b.X+b.Width/2, b.Y+b.Height/2+c.fontSize*titleBaselinePad, label,
			style+";text-anchor:middle")
		return
	}
	// Title strip along the top edge.
	canvas.Text(b.X+b.Width/2, b.Y+c.fontSize*(1+titleBaselinePad), label,
		style+";text-anchor:middle;font-weight:bold")
}
