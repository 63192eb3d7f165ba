package render

import (
	"bytes"

	"github.com/jung-kurt/gofpdf"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/pkoenig/boxtree/pkg/diagram"
	"github.com/pkoenig/boxtree/pkg/errors"
)

// RenderPDF renders a diagram as a single-page PDF, drawing the boxes
// natively rather than embedding a raster image.
func RenderPDF(d diagram.Diagram, opts ...Option) ([]byte, error) {
	c := newConfig(opts...)

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: d.Width, Ht: d.Height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	pdf.SetLineWidth(svgStrokeWidth)
	pdf.SetFont("Helvetica", "", c.fontSize)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	sr, sg, sb := hexToRGB(strokeColor)
	pdf.SetDrawColor(sr, sg, sb)
	trr, tg, tb := hexToRGB(textColor)

	for _, b := range d.Boxes {
		fr, fg, fb := hexToRGB(fillFor(b))
		pdf.SetFillColor(fr, fg, fb)
		pdf.Rect(b.X, b.Y, b.Width, b.Height, "FD")
	}

	if c.showLabels {
		pdf.SetTextColor(trr, tg, tb)
		for _, b := range d.Boxes {
			label := tr(b.Label)
			w := pdf.GetStringWidth(label)
			if b.Leaf {
				pdf.Text(b.X+(b.Width-w)/2, b.Y+b.Height/2+c.fontSize*titleBaselinePad, label)
				continue
			}
			pdf.SetFont("Helvetica", "B", c.fontSize)
			w = pdf.GetStringWidth(label)
			pdf.Text(b.X+(b.Width-w)/2, b.Y+c.fontSize*(1+titleBaselinePad), label)
			pdf.SetFont("Helvetica", "", c.fontSize)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "write pdf")
	}
	return buf.Bytes(), nil
}

// hexToRGB converts a #rrggbb string to 8-bit channels.
func hexToRGB(hex string) (int, int, int) {
	col, err := colorful.Hex(hex)
	if err != nil {
		return 0, 0, 0
	}
	r, g, b := col.RGB255()
	return int(r), int(g), int(b)
}
