package render

import (
	"github.com/cosmicled/cosmicled/internal/color"
	"github.com/cosmicled/cosmicled/internal/config"
)

// Normalize runs the color pipeline over every cell of f into dst
// (len(dst) == 3*len(f)): clamp, hue/saturation adjust, gamma, then
// brightness. Gamma shapes the curve before brightness scales the output;
// reversing that order shifts the perceived color balance.
//
// This is the only trust boundary between animation math and the hardware:
// whatever a program wrote, dst holds bytes.
func Normalize(dst []byte, f Frame, snap config.Snapshot) {
	shiftHue := snap.HueOffset != 0 || snap.Saturation != 1
	for i, px := range f {
		r := color.Clamp8(px.R)
		g := color.Clamp8(px.G)
		b := color.Clamp8(px.B)

		if shiftHue {
			h, s, v := color.RGBToHSV(r, g, b)
			r, g, b = color.HSVToRGB(h+snap.HueOffset, s*snap.Saturation, v)
		}

		r = color.Gamma(r, snap.Gamma)
		g = color.Gamma(g, snap.Gamma)
		b = color.Gamma(b, snap.Gamma)

		dst[i*3+0] = color.Clamp8(float64(r) * snap.Brightness)
		dst[i*3+1] = color.Clamp8(float64(g) * snap.Brightness)
		dst[i*3+2] = color.Clamp8(float64(b) * snap.Brightness)
	}
}
