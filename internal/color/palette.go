package color

import (
	"fmt"
	"math"
	"sort"
	"sync"
)

// RGB is a palette control point.
type RGB struct {
	R, G, B uint8
}

// Palette is a named, ordered set of control points. Palettes are treated as
// immutable once registered; Color interpolates across them as a closed loop
// so position 1.0 wraps back to the first point.
type Palette struct {
	Name   string
	Points []RGB
}

// Color returns the interpolated color at pos. pos is wrapped modulo 1.0,
// never rejected.
func (p Palette) Color(pos float64) RGB {
	n := len(p.Points)
	if n == 0 {
		return RGB{255, 255, 255}
	}
	if n == 1 {
		return p.Points[0]
	}
	pos = math.Mod(pos, 1.0)
	if pos < 0 {
		pos += 1.0
	}
	scaled := pos * float64(n)
	seg := int(scaled)
	frac := scaled - float64(seg)

	c1 := p.Points[seg%n]
	c2 := p.Points[(seg+1)%n]
	return RGB{
		R: Clamp8(float64(c1.R) + (float64(c2.R)-float64(c1.R))*frac),
		G: Clamp8(float64(c1.G) + (float64(c2.G)-float64(c1.G))*frac),
		B: Clamp8(float64(c1.B) + (float64(c2.B)-float64(c1.B))*frac),
	}
}

// Table holds registered palettes. Register replaces the whole entry under
// lock; readers hold the returned Palette by value, so an in-flight
// interpolation never observes a partially replaced palette.
type Table struct {
	mu sync.RWMutex
	m  map[string]Palette
}

func NewTable() *Table {
	return &Table{m: map[string]Palette{}}
}

func (t *Table) Register(p Palette) error {
	if p.Name == "" {
		return fmt.Errorf("palette: empty name")
	}
	if len(p.Points) == 0 {
		return fmt.Errorf("palette %q: no control points", p.Name)
	}
	t.mu.Lock()
	t.m[p.Name] = p
	t.mu.Unlock()
	return nil
}

func (t *Table) Get(name string) (Palette, bool) {
	t.mu.RLock()
	p, ok := t.m[name]
	t.mu.RUnlock()
	return p, ok
}

// GetOr falls back to the named default, then to a flat white palette.
func (t *Table) GetOr(name, fallback string) Palette {
	if p, ok := t.Get(name); ok {
		return p
	}
	if p, ok := t.Get(fallback); ok {
		return p
	}
	return Palette{Name: "white", Points: []RGB{{255, 255, 255}}}
}

func (t *Table) List() []string {
	t.mu.RLock()
	out := make([]string, 0, len(t.m))
	for k := range t.m {
		out = append(out, k)
	}
	t.mu.RUnlock()
	sort.Strings(out)
	return out
}

// DefaultTable returns a table preloaded with the stock palettes.
func DefaultTable() *Table {
	t := NewTable()
	for _, p := range []Palette{
		{Name: "rainbow", Points: []RGB{
			{255, 0, 0}, {255, 127, 0}, {255, 255, 0}, {0, 255, 0},
			{0, 0, 255}, {75, 0, 130}, {148, 0, 211},
		}},
		{Name: "fire", Points: []RGB{
			{255, 0, 0}, {255, 69, 0}, {255, 140, 0}, {255, 215, 0}, {255, 255, 0},
		}},
		{Name: "ocean", Points: []RGB{
			{0, 0, 139}, {0, 0, 255}, {0, 191, 255}, {0, 255, 255}, {127, 255, 212},
		}},
		{Name: "forest", Points: []RGB{
			{0, 100, 0}, {0, 128, 0}, {50, 205, 50}, {144, 238, 144}, {255, 255, 0},
		}},
		{Name: "sunset", Points: []RGB{
			{25, 25, 112}, {138, 43, 226}, {255, 0, 255}, {255, 69, 0}, {255, 140, 0},
		}},
	} {
		_ = t.Register(p)
	}
	return t
}
