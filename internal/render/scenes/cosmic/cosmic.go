// Package cosmic is the stock flowing-colors animation and the safe default
// when nothing else has been loaded.
package cosmic

import (
	"math"

	"github.com/cosmicled/cosmicled/internal/color"
	"github.com/cosmicled/cosmicled/internal/config"
	"github.com/cosmicled/cosmicled/internal/layout"
	"github.com/cosmicled/cosmicled/internal/render"
)

type Scene struct {
	lay layout.Layout
}

func New(lay layout.Layout) *Scene {
	return &Scene{lay: lay}
}

func (s *Scene) Name() string { return "cosmic" }

func (s *Scene) Meta() render.Metadata {
	return render.Metadata{
		Name:        "cosmic",
		Description: "flowing three-wave color field",
		Params:      map[string]string{"speed": "wave drift rate", "scale": "spatial frequency"},
	}
}

func (s *Scene) Render(f render.Frame, snap config.Snapshot, frame uint64) error {
	t := float64(frame) * snap.Speed
	for y := 0; y < s.lay.Height; y++ {
		for x := 0; x < s.lay.Width; x++ {
			fx := float64(x) * snap.Scale
			fy := float64(y) * snap.Scale

			wave1 := math.Sin((fx+t*0.1)*0.3)*0.5 + 0.5
			wave2 := math.Sin((fy+t*0.08)*0.25)*0.5 + 0.5
			wave3 := math.Sin((fx+fy+t*0.12)*0.2)*0.5 + 0.5

			hue := (wave1 + wave2 + wave3) / 3 * 360
			r, g, b := color.HSVToRGB(hue, 1, 1)

			idx, err := s.lay.Index(x, y)
			if err != nil {
				return err
			}
			f[idx] = render.RGB{R: float64(r), G: float64(g), B: float64(b)}
		}
	}
	return nil
}
