package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"sync"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/pkoenig/boxtree/pkg/diagram"
	"github.com/pkoenig/boxtree/pkg/errors"
)

// pngDPI matches the SVG user-unit convention of 1px = 1/72in at 72dpi.
const pngDPI = 72

// labelColor is textColor in image space.
var labelColor = color.NRGBA{R: 0x1a, G: 0x1a, B: 0x21, A: 0xff}

var (
	labelFontsOnce sync.Once
	labelRegular   *opentype.Font
	labelBold      *opentype.Font
	labelFontsErr  error
)

// labelFonts parses the embedded faces on first use.
func labelFonts() (regular, bold *opentype.Font, err error) {
	labelFontsOnce.Do(func() {
		labelRegular, labelFontsErr = opentype.Parse(goregular.TTF)
		if labelFontsErr != nil {
			return
		}
		labelBold, labelFontsErr = opentype.Parse(gobold.TTF)
	})
	if labelFontsErr != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInternal, labelFontsErr, "parse embedded label fonts")
	}
	return labelRegular, labelBold, nil
}

// RenderPNG renders a diagram to PNG. Box geometry is rasterized from the
// label-free SVG; labels are then drawn straight onto the raster, since the
// SVG rasterizer handles shapes only, not text elements.
// The scale option multiplies the pixel dimensions (default 2x).
func RenderPNG(d diagram.Diagram, opts ...Option) ([]byte, error) {
	c := newConfig(opts...)
	if c.scale <= 0 || math.IsNaN(c.scale) || math.IsInf(c.scale, 0) {
		return nil, errors.New(errors.ErrCodeInvalidOptions, "invalid png scale: %v", c.scale)
	}

	shapeOpts := append(append([]Option{}, opts...), WithoutLabels())
	svgData := RenderSVG(d, shapeOpts...)

	icon, err := oksvg.ReadIconStream(bytes.NewReader(svgData), oksvg.StrictErrorMode)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "parse svg for rasterization")
	}

	w := int(math.Ceil(d.Width * c.scale))
	h := int(math.Ceil(d.Height * c.scale))
	if w < 1 || h < 1 {
		return nil, errors.New(errors.ErrCodeInvalidGeometry, "diagram rasterizes to %dx%d pixels", w, h)
	}

	icon.SetTarget(0, 0, float64(w), float64(h))
	rgba := image.NewRGBA(image.Rect(0, 0, w, h))

	scanner := rasterx.NewScannerGV(w, h, rgba, rgba.Bounds())
	raster := rasterx.NewDasher(w, h, scanner)
	icon.Draw(raster, 1.0)

	if c.showLabels {
		if err := drawLabels(rgba, d, c); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, rgba); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode png")
	}
	return buf.Bytes(), nil
}

// drawLabels paints each box label in raster space, mirroring the anchors
// the SVG renderer uses: leaves centered in the box, titles along the top
// edge in bold.
func drawLabels(img *image.RGBA, d diagram.Diagram, c config) error {
	regular, bold, err := labelFonts()
	if err != nil {
		return err
	}

	size := c.fontSize * c.scale
	regularFace, err := opentype.NewFace(regular, &opentype.FaceOptions{
		Size:    size,
		DPI:     pngDPI,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "build label face at size %v", size)
	}
	boldFace, err := opentype.NewFace(bold, &opentype.FaceOptions{
		Size:    size,
		DPI:     pngDPI,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "build title face at size %v", size)
	}

	for _, b := range d.Boxes {
		if b.Label == "" {
			continue
		}

		face := boldFace
		baseline := (b.Y + c.fontSize*(1+titleBaselinePad)) * c.scale
		if b.Leaf {
			face = regularFace
			baseline = (b.Y + b.Height/2 + c.fontSize*titleBaselinePad) * c.scale
		}

		drawer := &font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(labelColor),
			Face: face,
		}
		width := drawer.MeasureString(b.Label)
		centerX := (b.X + b.Width/2) * c.scale
		drawer.Dot = fixed.Point26_6{
			X: floatToFixed(centerX) - width/2,
			Y: floatToFixed(baseline),
		}
		drawer.DrawString(b.Label)
	}
	return nil
}

// floatToFixed converts float64 pixels to 26.6 fixed point.
func floatToFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(v * 64))
}
