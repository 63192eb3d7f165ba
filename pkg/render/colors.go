package render

import (
	"hash/fnv"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/pkoenig/boxtree/pkg/diagram"
)

// Palette parameters. Hues are derived from the root ancestor id so the
// same input always gets the same colors, and nesting depth lightens the
// fill so deeper boxes stay readable under their parents.
const (
	fillSaturation = 0.45
	fillLightness  = 0.62
	depthLighten   = 0.06
	maxLightness   = 0.92

	strokeColor = "#33333b"
	textColor   = "#1a1a21"
)

// fillFor returns the hex fill color for a box.
func fillFor(b diagram.Box) string {
	h := fnv.New32a()
	h.Write([]byte(b.Root))
	hue := float64(h.Sum32() % 360)

	l := fillLightness + float64(b.Depth)*depthLighten
	if l > maxLightness {
		l = maxLightness
	}
	return colorful.Hsl(hue, fillSaturation, l).Clamped().Hex()
}
