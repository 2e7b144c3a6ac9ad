package layout

import "fmt"

// Layout describes the physical wiring of a rectangular LED matrix.
type Layout struct {
	Width      int
	Height     int
	Serpentine bool
}

// Index maps logical (x,y) -> linear LED index (0..N-1).
// Serpentine wiring reverses the column direction on odd rows; progressive
// wiring is a plain row-major scan.
func (l Layout) Index(x, y int) (int, error) {
	if x < 0 || x >= l.Width || y < 0 || y >= l.Height {
		return 0, fmt.Errorf("layout: (%d,%d) outside %dx%d matrix", x, y, l.Width, l.Height)
	}
	if l.Serpentine && y%2 == 1 {
		return y*l.Width + (l.Width - 1 - x), nil
	}
	return y*l.Width + x, nil
}

// XY is the inverse of Index.
func (l Layout) XY(index int) (x, y int, err error) {
	if index < 0 || index >= l.Count() {
		return 0, 0, fmt.Errorf("layout: index %d outside 0..%d", index, l.Count()-1)
	}
	y = index / l.Width
	x = index % l.Width
	if l.Serpentine && y%2 == 1 {
		x = l.Width - 1 - x
	}
	return x, y, nil
}

func (l Layout) Count() int {
	return l.Width * l.Height
}

// Valid reports whether the layout has usable dimensions.
func (l Layout) Valid() bool {
	return l.Width > 0 && l.Height > 0
}
