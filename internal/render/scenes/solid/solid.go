// Package solid fills the whole matrix with one color. The dim variant is
// the engine's safe fallback pattern.
package solid

import (
	"github.com/cosmicled/cosmicled/internal/config"
	"github.com/cosmicled/cosmicled/internal/render"
)

type Scene struct {
	name    string
	r, g, b float64
}

func New(name string, r, g, b float64) *Scene {
	return &Scene{name: name, r: r, g: g, b: b}
}

// Dim returns the static low-brightness pattern the engine uses as its
// last-resort fallback.
func Dim() *Scene {
	return New("solid-dim", 8, 8, 16)
}

func (s *Scene) Name() string { return s.name }

func (s *Scene) Meta() render.Metadata {
	return render.Metadata{Name: s.name, Description: "static single-color fill"}
}

func (s *Scene) Render(f render.Frame, _ config.Snapshot, _ uint64) error {
	for i := range f {
		f[i] = render.RGB{R: s.r, G: s.g, B: s.b}
	}
	return nil
}
