package render

import (
	"fmt"
	"math"

	"gopkg.in/yaml.v3"

	"github.com/cosmicled/cosmicled/internal/color"
	"github.com/cosmicled/cosmicled/internal/config"
	"github.com/cosmicled/cosmicled/internal/layout"
)

// Scripted programs replace arbitrary uploaded code with a declarative
// source format: a stack of additive wave layers plus a coloring mode.
// The source is YAML:
//
//	meta:
//	  author: someone
//	  description: slow two-layer wash
//	coloring: palette        # "palette" or "hsv"
//	layers:
//	  - {axis: x, freq: 0.3, speed: 1.0, weight: 1.0}
//	  - {axis: radial, freq: 0.8, speed: 0.5, weight: 0.5, phase: 1.57}
type scriptSource struct {
	Meta     scriptMeta    `yaml:"meta"`
	Coloring string        `yaml:"coloring"`
	Layers   []scriptLayer `yaml:"layers"`
}

type scriptMeta struct {
	Version     string `yaml:"version"`
	Author      string `yaml:"author"`
	Description string `yaml:"description"`
}

type scriptLayer struct {
	Axis   string  `yaml:"axis"`
	Freq   float64 `yaml:"freq"`
	Speed  float64 `yaml:"speed"`
	Weight float64 `yaml:"weight"`
	Phase  float64 `yaml:"phase"`
}

// Script is a validated scripted program.
type Script struct {
	name     string
	meta     Metadata
	coloring string
	layers   []scriptLayer
	lay      layout.Layout
	palettes *color.Table
}

// CompileScript parses and validates scripted program source. It does not
// dry-run; the registry does that on Register.
func CompileScript(name, source string, lay layout.Layout, palettes *color.Table) (*Script, error) {
	if name == "" {
		return nil, &ValidationError{Name: name, Reason: "empty program name"}
	}
	var src scriptSource
	if err := yaml.Unmarshal([]byte(source), &src); err != nil {
		return nil, &ValidationError{Name: name, Reason: fmt.Sprintf("parse: %v", err)}
	}
	if len(src.Layers) == 0 {
		return nil, &ValidationError{Name: name, Reason: "no layers"}
	}
	switch src.Coloring {
	case "", "palette", "hsv":
	default:
		return nil, &ValidationError{Name: name, Reason: fmt.Sprintf("unknown coloring %q", src.Coloring)}
	}
	total := 0.0
	for i := range src.Layers {
		l := &src.Layers[i]
		switch l.Axis {
		case "x", "y", "diag", "radial":
		default:
			return nil, &ValidationError{Name: name, Reason: fmt.Sprintf("layer %d: unknown axis %q", i, l.Axis)}
		}
		for _, v := range []float64{l.Freq, l.Speed, l.Weight, l.Phase} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, &ValidationError{Name: name, Reason: fmt.Sprintf("layer %d: non-finite value", i)}
			}
		}
		if l.Weight == 0 {
			l.Weight = 1
		}
		if l.Weight < 0 {
			return nil, &ValidationError{Name: name, Reason: fmt.Sprintf("layer %d: negative weight", i)}
		}
		total += l.Weight
	}
	if total <= 0 {
		return nil, &ValidationError{Name: name, Reason: "zero total weight"}
	}

	coloring := src.Coloring
	if coloring == "" {
		coloring = "palette"
	}
	return &Script{
		name: name,
		meta: Metadata{
			Name:        name,
			Version:     src.Meta.Version,
			Author:      src.Meta.Author,
			Description: src.Meta.Description,
		},
		coloring: coloring,
		layers:   src.Layers,
		lay:      lay,
		palettes: palettes,
	}, nil
}

func (s *Script) Name() string   { return s.name }
func (s *Script) Meta() Metadata { return s.meta }

func (s *Script) Render(f Frame, snap config.Snapshot, frame uint64) error {
	t := float64(frame) / float64(snap.FPS) * snap.Speed
	cx := float64(s.lay.Width-1) / 2
	cy := float64(s.lay.Height-1) / 2

	var pal color.Palette
	if s.coloring == "palette" && s.palettes != nil {
		pal = s.palettes.GetOr(snap.ActivePalette, "rainbow")
	}

	total := 0.0
	for _, l := range s.layers {
		total += l.Weight
	}

	for y := 0; y < s.lay.Height; y++ {
		for x := 0; x < s.lay.Width; x++ {
			sum := 0.0
			for _, l := range s.layers {
				var coord float64
				switch l.Axis {
				case "x":
					coord = float64(x)
				case "y":
					coord = float64(y)
				case "diag":
					coord = float64(x + y)
				case "radial":
					dx, dy := float64(x)-cx, float64(y)-cy
					coord = math.Sqrt(dx*dx + dy*dy)
				}
				w := math.Sin(coord*l.Freq*snap.Scale+t*l.Speed+l.Phase)*0.5 + 0.5
				sum += w * l.Weight
			}
			pos := sum / total

			var r, g, b float64
			if s.coloring == "hsv" {
				r8, g8, b8 := color.HSVToRGB(pos*360, 1, 1)
				r, g, b = float64(r8), float64(g8), float64(b8)
			} else {
				c := pal.Color(pos)
				r, g, b = float64(c.R), float64(c.G), float64(c.B)
			}

			idx, err := s.lay.Index(x, y)
			if err != nil {
				return err
			}
			f[idx] = RGB{R: r, G: g, B: b}
		}
	}
	return nil
}
