package color

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHSVToRGBPrimaries(t *testing.T) {
	cases := []struct {
		h       float64
		s, v    float64
		r, g, b uint8
	}{
		{0, 1, 1, 255, 0, 0},
		{120, 1, 1, 0, 255, 0},
		{240, 1, 1, 0, 0, 255},
		{60, 1, 1, 255, 255, 0},
		{180, 1, 1, 0, 255, 255},
		{300, 1, 1, 255, 0, 255},
		{0, 0, 1, 255, 255, 255},
		{0, 0, 0, 0, 0, 0},
	}
	for _, c := range cases {
		r, g, b := HSVToRGB(c.h, c.s, c.v)
		require.Equal(t, c.r, r, "h=%v", c.h)
		require.Equal(t, c.g, g, "h=%v", c.h)
		require.Equal(t, c.b, b, "h=%v", c.h)
	}
}

func TestHSVToRGBAlwaysInRange(t *testing.T) {
	// Sweep the whole input space, including values outside the declared
	// domains; output must stay byte-ranged regardless.
	for h := -720.0; h < 720.0; h += 7.3 {
		for s := -0.5; s <= 1.5; s += 0.25 {
			for v := -0.5; v <= 1.5; v += 0.25 {
				r, g, b := HSVToRGB(h, s, v)
				_ = r
				_ = g
				_ = b // uint8 by construction; just exercise the paths
			}
		}
	}
}

func TestRGBToHSVRoundTrip(t *testing.T) {
	for _, c := range []RGB{{255, 0, 0}, {0, 255, 0}, {0, 0, 255}, {128, 64, 32}, {10, 200, 150}} {
		h, s, v := RGBToHSV(c.R, c.G, c.B)
		r, g, b := HSVToRGB(h, s, v)
		require.InDelta(t, float64(c.R), float64(r), 1)
		require.InDelta(t, float64(c.G), float64(g), 1)
		require.InDelta(t, float64(c.B), float64(b), 1)
	}
}

func TestClamp8(t *testing.T) {
	require.Equal(t, uint8(0), Clamp8(-10))
	require.Equal(t, uint8(0), Clamp8(0))
	require.Equal(t, uint8(255), Clamp8(256))
	require.Equal(t, uint8(255), Clamp8(300))
	require.Equal(t, uint8(128), Clamp8(127.6))
	require.Equal(t, uint8(0), Clamp8(nan()))
}

func nan() float64 {
	z := 0.0
	return z / z
}

func TestGamma(t *testing.T) {
	// gamma=1 is identity
	for _, c := range []uint8{0, 1, 100, 254, 255} {
		require.Equal(t, c, Gamma(c, 1.0))
	}
	// endpoints are fixed for any gamma
	require.Equal(t, uint8(0), Gamma(0, 2.2))
	require.Equal(t, uint8(255), Gamma(255, 2.2))
	// gamma > 1 darkens mid-range
	require.Less(t, Gamma(128, 2.2), uint8(128))
	// gamma < 1 brightens mid-range
	require.Greater(t, Gamma(128, 0.5), uint8(128))
}
