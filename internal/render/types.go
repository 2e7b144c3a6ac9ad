package render

import "github.com/cosmicled/cosmicled/internal/config"

// RGB is one pixel in working space. Channels are nominally 0..255 but are
// deliberately unclamped floats: programs sum sinusoids and drift out of
// range all the time, and the pipeline is the single place that clamps.
type RGB struct {
	R, G, B float64
}

// Frame is a pixel buffer in physical wiring order (post layout mapping).
// It is owned by the engine for the duration of one tick; programs must not
// retain it across calls.
type Frame []RGB

func NewFrame(n int) Frame {
	return make(Frame, n)
}

func (f Frame) Clear() {
	for i := range f {
		f[i] = RGB{}
	}
}

// Metadata describes a program. All fields are advisory; a program without
// metadata is still valid.
type Metadata struct {
	Name        string            `json:"name,omitempty"`
	Version     string            `json:"version,omitempty"`
	Author      string            `json:"author,omitempty"`
	Description string            `json:"description,omitempty"`
	Params      map[string]string `json:"params,omitempty"`
}

// Program is one animation. Render fills f for the given frame counter using
// the parameter snapshot; returning an error (or panicking) makes the engine
// fall back to the last good frame for this tick.
type Program interface {
	Name() string
	Meta() Metadata
	Render(f Frame, snap config.Snapshot, frame uint64) error
}
