// Package aurora draws flowing curtains of light with exponential vertical
// falloff, loosely modelled on the borealis.
package aurora

import (
	"math"

	"github.com/cosmicled/cosmicled/internal/color"
	"github.com/cosmicled/cosmicled/internal/config"
	"github.com/cosmicled/cosmicled/internal/layout"
	"github.com/cosmicled/cosmicled/internal/render"
)

const layers = 4

type Scene struct {
	lay layout.Layout
}

func New(lay layout.Layout) *Scene {
	return &Scene{lay: lay}
}

func (s *Scene) Name() string { return "aurora" }

func (s *Scene) Meta() render.Metadata {
	return render.Metadata{
		Name:        "aurora",
		Description: "layered aurora curtains",
		Params:      map[string]string{"speed": "curtain drift", "scale": "wave frequency"},
	}
}

func (s *Scene) Render(f render.Frame, snap config.Snapshot, frame uint64) error {
	t := float64(frame) * snap.Speed * 0.06
	baseHeight := float64(s.lay.Height) * 0.3

	for y := 0; y < s.lay.Height; y++ {
		for x := 0; x < s.lay.Width; x++ {
			fx := float64(x) * snap.Scale

			intensity := 0.0
			hueAcc := 0.0
			weight := 0.0
			for l := 0; l < layers; l++ {
				off := float64(l) * 0.7
				spd := 1.0 + float64(l)*0.3

				wave1 := math.Sin(fx*0.3 + t*spd + off)
				wave2 := math.Sin(fx*0.15 + t*spd*0.7 + off*1.5)
				wave3 := math.Cos(fx*0.45 + t*spd*1.2 + off*0.8)

				curtain := baseHeight + (wave1+wave2*0.7+wave3*0.5)*2.0
				dist := math.Abs(float64(y) - curtain)
				li := math.Exp(-dist * 0.4)

				stream := math.Sin(float64(y)*0.8+t*2.0+fx*0.1)*0.3 + 0.7
				li *= stream

				hue := math.Mod(float64(l)*60+t*15+math.Sin(fx*0.2+t*0.8+float64(l)*1.2)*40, 360)
				intensity += li
				hueAcc += hue * li
				weight += li
			}

			var r, g, b uint8
			if weight > 0 {
				if intensity > 1 {
					intensity = 1
				}
				r, g, b = color.HSVToRGB(hueAcc/weight, 1, intensity)
			}

			idx, err := s.lay.Index(x, y)
			if err != nil {
				return err
			}
			f[idx] = render.RGB{R: float64(r), G: float64(g), B: float64(b)}
		}
	}
	return nil
}
