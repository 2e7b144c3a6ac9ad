// Package plasma is a beat-synchronized plasma field. Phase derives from the
// frame counter and the configured fps, so swapping programs mid-show stays
// on the beat.
package plasma

import (
	"math"

	"github.com/cosmicled/cosmicled/internal/color"
	"github.com/cosmicled/cosmicled/internal/config"
	"github.com/cosmicled/cosmicled/internal/layout"
	"github.com/cosmicled/cosmicled/internal/render"
)

const bpm = 120

type Scene struct {
	lay      layout.Layout
	palettes *color.Table
}

func New(lay layout.Layout, palettes *color.Table) *Scene {
	return &Scene{lay: lay, palettes: palettes}
}

func (s *Scene) Name() string { return "plasma" }

func (s *Scene) Meta() render.Metadata {
	return render.Metadata{
		Name:        "plasma",
		Version:     "120bpm",
		Description: "palette-colored plasma field locked to 120 BPM",
	}
}

func (s *Scene) Render(f render.Frame, snap config.Snapshot, frame uint64) error {
	beatsPerSecond := float64(bpm) / 60.0
	framesPerBeat := float64(snap.FPS) / beatsPerSecond
	beatProgress := math.Mod(float64(frame), framesPerBeat) / framesPerBeat

	kick := 0.0
	if beatProgress < 0.15 {
		kick = 1.0
	}
	pulse := math.Sin(beatProgress*2*math.Pi)*0.5 + 0.5

	t := float64(frame) / float64(snap.FPS) * snap.Speed * beatsPerSecond
	fieldScale := snap.Scale * 2.0
	pal := s.palettes.GetOr(snap.ActivePalette, "rainbow")

	w := float64(s.lay.Width)
	h := float64(s.lay.Height)

	for y := 0; y < s.lay.Height; y++ {
		for x := 0; x < s.lay.Width; x++ {
			nx := (float64(x) - w/2) / w * fieldScale
			ny := (float64(y) - h/2) / h * fieldScale

			v := math.Sin(nx*8+t) +
				math.Sin(ny*6+t*1.3) +
				math.Sin(math.Sqrt(nx*nx+ny*ny)*(8+kick*4)-t*2) +
				math.Sin((nx+ny)*5+t*0.7)
			pos := math.Mod(v/8+0.5+pulse*0.1, 1.0)

			c := pal.Color(pos)
			boost := 1.0 + kick*0.4
			idx, err := s.lay.Index(x, y)
			if err != nil {
				return err
			}
			f[idx] = render.RGB{
				R: float64(c.R) * boost,
				G: float64(c.G) * boost,
				B: float64(c.B) * boost,
			}
		}
	}
	return nil
}
