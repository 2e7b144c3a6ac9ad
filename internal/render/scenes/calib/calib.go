// Package calib contains hardware bring-up patterns: a single white pixel
// walking the strip in wiring order, then full-matrix R/G/B fills. Useful for
// spotting wiring and color-order mistakes.
package calib

import (
	"github.com/cosmicled/cosmicled/internal/config"
	"github.com/cosmicled/cosmicled/internal/layout"
	"github.com/cosmicled/cosmicled/internal/render"
)

// Frames spent on each step of a pattern.
const stepFrames = 10

type Scene struct {
	lay layout.Layout
}

func New(lay layout.Layout) *Scene {
	return &Scene{lay: lay}
}

func (s *Scene) Name() string { return "calib" }

func (s *Scene) Meta() render.Metadata {
	return render.Metadata{
		Name:        "calib",
		Description: "index sweep and channel fills for wiring checks",
	}
}

func (s *Scene) Render(f render.Frame, _ config.Snapshot, frame uint64) error {
	f.Clear()
	n := s.lay.Count()
	step := int(frame / stepFrames)

	// Phase 1: walk every physical index. Phase 2: R, G, B full fills.
	cycle := n + 3
	step = step % cycle

	if step < n {
		f[step] = render.RGB{R: 255, G: 255, B: 255}
		return nil
	}
	var c render.RGB
	switch step - n {
	case 0:
		c = render.RGB{R: 255}
	case 1:
		c = render.RGB{G: 255}
	default:
		c = render.RGB{B: 255}
	}
	for i := range f {
		f[i] = c
	}
	return nil
}
