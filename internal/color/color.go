package color

import "math"

// Clamp8 rounds x and clamps it to the byte range. Every channel value that
// leaves this package goes through here; animation code upstream is never
// trusted to stay inside [0,255].
func Clamp8(x float64) uint8 {
	if math.IsNaN(x) {
		return 0
	}
	v := math.Round(x)
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}

// HSVToRGB converts h in degrees (wrapped mod 360) and s,v in [0,1]
// (clamped) to byte RGB.
func HSVToRGB(h, s, v float64) (r, g, b uint8) {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	s = clamp01(s)
	v = clamp01(v)

	c := v * s
	hp := h / 60.0
	x := c * (1 - math.Abs(math.Mod(hp, 2)-1))
	var rf, gf, bf float64
	switch {
	case hp < 1:
		rf, gf, bf = c, x, 0
	case hp < 2:
		rf, gf, bf = x, c, 0
	case hp < 3:
		rf, gf, bf = 0, c, x
	case hp < 4:
		rf, gf, bf = 0, x, c
	case hp < 5:
		rf, gf, bf = x, 0, c
	default:
		rf, gf, bf = c, 0, x
	}
	m := v - c
	return Clamp8((rf + m) * 255), Clamp8((gf + m) * 255), Clamp8((bf + m) * 255)
}

// RGBToHSV converts byte RGB to h in [0,360), s,v in [0,1].
func RGBToHSV(r, g, b uint8) (h, s, v float64) {
	rf := float64(r) / 255
	gf := float64(g) / 255
	bf := float64(b) / 255

	max := math.Max(rf, math.Max(gf, bf))
	min := math.Min(rf, math.Min(gf, bf))
	d := max - min

	v = max
	if max > 0 {
		s = d / max
	}
	if d == 0 {
		return 0, s, v
	}
	switch max {
	case rf:
		h = math.Mod((gf-bf)/d, 6)
	case gf:
		h = (bf-rf)/d + 2
	default:
		h = (rf-gf)/d + 4
	}
	h *= 60
	if h < 0 {
		h += 360
	}
	return h, s, v
}

// Gamma applies power-curve correction to a single channel:
// round(255 * (c/255)^gamma), clamped.
func Gamma(c uint8, gamma float64) uint8 {
	if gamma <= 0 {
		return c
	}
	return Clamp8(math.Pow(float64(c)/255.0, gamma) * 255.0)
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
