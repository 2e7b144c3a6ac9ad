package layout

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIndexProgressive(t *testing.T) {
	l := Layout{Width: 4, Height: 3}
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			i, err := l.Index(x, y)
			require.NoError(t, err)
			require.Equal(t, y*4+x, i)
		}
	}
}

func TestIndexSerpentineOddRowsReversed(t *testing.T) {
	l := Layout{Width: 4, Height: 3, Serpentine: true}

	i, err := l.Index(0, 0)
	require.NoError(t, err)
	require.Equal(t, 0, i)

	// Row 1 runs right-to-left: logical (0,1) sits at the far end of the row.
	i, err = l.Index(0, 1)
	require.NoError(t, err)
	require.Equal(t, 7, i)

	i, err = l.Index(3, 1)
	require.NoError(t, err)
	require.Equal(t, 4, i)

	i, err = l.Index(0, 2)
	require.NoError(t, err)
	require.Equal(t, 8, i)
}

func TestIndexBijection(t *testing.T) {
	for _, serp := range []bool{false, true} {
		l := Layout{Width: 10, Height: 10, Serpentine: serp}
		seen := make(map[int]bool, l.Count())
		for y := 0; y < l.Height; y++ {
			for x := 0; x < l.Width; x++ {
				i, err := l.Index(x, y)
				require.NoError(t, err)
				require.GreaterOrEqual(t, i, 0)
				require.Less(t, i, l.Count())
				require.False(t, seen[i], "duplicate physical index %d (serpentine=%v)", i, serp)
				seen[i] = true

				// Round trip back to logical coordinates.
				xx, yy, err := l.XY(i)
				require.NoError(t, err)
				require.Equal(t, x, xx)
				require.Equal(t, y, yy)
			}
		}
		require.Len(t, seen, l.Count())
	}
}

func TestIndexOutOfRange(t *testing.T) {
	l := Layout{Width: 4, Height: 3, Serpentine: true}
	for _, c := range [][2]int{{-1, 0}, {0, -1}, {4, 0}, {0, 3}, {4, 3}} {
		_, err := l.Index(c[0], c[1])
		require.Error(t, err, "expected error for (%d,%d)", c[0], c[1])
	}
	_, _, err := l.XY(-1)
	require.Error(t, err)
	_, _, err = l.XY(12)
	require.Error(t, err)
}
