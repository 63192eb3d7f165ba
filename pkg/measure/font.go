package measure

import (
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/pkoenig/boxtree/pkg/errors"
)

// fontDPI matches the SVG user-unit convention of 1px = 1/72in at 72dpi,
// so measured widths line up with the rendered output.
const fontDPI = 72

// FontOracle measures text against real font metrics using the embedded
// Go Regular face. Faces are built lazily per font size and reused.
//
// FontOracle is safe for concurrent use.
type FontOracle struct {
	mu    sync.Mutex
	sfnt  *opentype.Font
	faces map[float64]font.Face
}

// NewFontOracle parses the embedded font and returns a ready oracle.
func NewFontOracle() (*FontOracle, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "parse embedded font")
	}
	return &FontOracle{
		sfnt:  f,
		faces: make(map[float64]font.Face),
	}, nil
}

// Measure returns the pixel extent of text at fontSize.
// The fontFamily hint is ignored; this oracle carries a single face.
func (o *FontOracle) Measure(text string, fontSize float64, fontFamily string) (Size, error) {
	if err := validateFontSize(fontSize); err != nil {
		return Size{}, err
	}

	face, err := o.face(fontSize)
	if err != nil {
		return Size{}, err
	}

	advance := font.MeasureString(face, text)
	metrics := face.Metrics()

	return Size{
		Width:  fixedToFloat(advance),
		Height: fixedToFloat(metrics.Ascent + metrics.Descent),
	}, nil
}

// face returns a cached face for size, building it on first use.
func (o *FontOracle) face(size float64) (font.Face, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if f, ok := o.faces[size]; ok {
		return f, nil
	}

	f, err := opentype.NewFace(o.sfnt, &opentype.FaceOptions{
		Size:    size,
		DPI:     fontDPI,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "build font face at size %v", size)
	}
	o.faces[size] = f
	return f, nil
}

// fixedToFloat converts a 26.6 fixed-point value to float64 pixels.
func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

// Ensure FontOracle implements Oracle.
var _ Oracle = (*FontOracle)(nil)
