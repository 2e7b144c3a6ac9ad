package color

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPaletteColorClosedLoop(t *testing.T) {
	tbl := DefaultTable()
	rainbow, ok := tbl.Get("rainbow")
	require.True(t, ok)

	first := rainbow.Points[0]
	require.Equal(t, first, rainbow.Color(0.0))
	// Position 1.0 wraps to the first control point again.
	require.Equal(t, first, rainbow.Color(1.0))
	require.Equal(t, first, rainbow.Color(2.0))
	require.Equal(t, first, rainbow.Color(-1.0))
}

func TestPaletteColorInterpolates(t *testing.T) {
	p := Palette{Name: "rg", Points: []RGB{{255, 0, 0}, {0, 255, 0}}}
	// Midpoint of the first segment.
	mid := p.Color(0.25)
	require.InDelta(t, 128, float64(mid.R), 1)
	require.InDelta(t, 128, float64(mid.G), 1)
	require.Equal(t, uint8(0), mid.B)
	// Second segment blends back toward the first point (closed loop).
	back := p.Color(0.75)
	require.InDelta(t, 128, float64(back.R), 1)
	require.InDelta(t, 128, float64(back.G), 1)
}

func TestPaletteSinglePointAndEmpty(t *testing.T) {
	one := Palette{Name: "solo", Points: []RGB{{7, 8, 9}}}
	require.Equal(t, RGB{7, 8, 9}, one.Color(0.42))

	var empty Palette
	require.Equal(t, RGB{255, 255, 255}, empty.Color(0.5))
}

func TestTableRegisterReplacesWholeEntry(t *testing.T) {
	tbl := NewTable()
	require.Error(t, tbl.Register(Palette{Name: ""}))
	require.Error(t, tbl.Register(Palette{Name: "x"}))

	require.NoError(t, tbl.Register(Palette{Name: "x", Points: []RGB{{1, 1, 1}}}))
	p1, _ := tbl.Get("x")

	require.NoError(t, tbl.Register(Palette{Name: "x", Points: []RGB{{2, 2, 2}, {3, 3, 3}}}))
	p2, _ := tbl.Get("x")
	require.Len(t, p2.Points, 2)

	// The copy taken before the replacement is untouched.
	require.Len(t, p1.Points, 1)
	require.Equal(t, RGB{1, 1, 1}, p1.Points[0])
}

func TestTableGetOr(t *testing.T) {
	tbl := DefaultTable()
	p := tbl.GetOr("nope", "rainbow")
	require.Equal(t, "rainbow", p.Name)
	p = tbl.GetOr("nope", "also-nope")
	require.Equal(t, "white", p.Name)
	require.Equal(t, []string{"fire", "forest", "ocean", "rainbow", "sunset"}, tbl.List())
}
