package config

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/cosmicled/cosmicled/internal/color"
)

// Snapshot is an immutable point-in-time copy of the runtime parameters.
// The render loop takes one per tick and never sees a writer mid-frame.
type Snapshot struct {
	Params
	Version uint64 `json:"version"`
}

// Store is the shared, mutable parameter set. Writers (web, MQTT) go through
// Update; the render loop goes through Snapshot. Both hold the mutex only for
// the duration of a field copy.
type Store struct {
	mu       sync.Mutex
	cur      Snapshot
	palettes *color.Table
}

// New validates the persisted defaults and builds the store. Out-of-range
// defaults are a startup failure, not something to silently clamp.
func New(defaults Params, palettes *color.Table) (*Store, error) {
	s := &Store{palettes: palettes}
	for name, v := range map[string]float64{
		"brightness": defaults.Brightness,
		"speed":      defaults.Speed,
		"scale":      defaults.Scale,
		"hue_offset": defaults.HueOffset,
		"saturation": defaults.Saturation,
		"gamma":      defaults.Gamma,
	} {
		if err := checkRange(name, v); err != nil {
			return nil, err
		}
	}
	if defaults.FPS < 1 || defaults.FPS > 60 {
		return nil, fmt.Errorf("config: fps %d outside [1,60]", defaults.FPS)
	}
	if defaults.ActiveProgram == "" {
		return nil, fmt.Errorf("config: active_program is empty")
	}
	if defaults.ActivePalette == "" {
		return nil, fmt.Errorf("config: active_palette is empty")
	}
	s.cur = Snapshot{Params: defaults, Version: 0}
	return s, nil
}

// Snapshot returns a consistent copy of the current parameters.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	snap := s.cur
	s.mu.Unlock()
	return snap
}

// Version returns the current change counter.
func (s *Store) Version() uint64 {
	s.mu.Lock()
	v := s.cur.Version
	s.mu.Unlock()
	return v
}

// Update applies a partial parameter map. Each field is validated on its own:
// a rejected field never aborts the rest of the request. The version counter
// increments once when at least one field applied.
func (s *Store) Update(fields map[string]any) (applied, rejected []string) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.cur.Params
	for _, k := range keys {
		if s.applyField(&next, k, fields[k]) {
			applied = append(applied, k)
		} else {
			rejected = append(rejected, k)
		}
	}
	if len(applied) > 0 {
		s.cur.Params = next
		s.cur.Version++
	}
	return applied, rejected
}

func (s *Store) applyField(p *Params, key string, val any) bool {
	switch key {
	case "brightness", "speed", "scale", "hue_offset", "saturation", "gamma":
		f, ok := toFloat(val)
		if !ok || checkRange(key, f) != nil {
			return false
		}
		switch key {
		case "brightness":
			p.Brightness = f
		case "speed":
			p.Speed = f
		case "scale":
			p.Scale = f
		case "hue_offset":
			p.HueOffset = f
		case "saturation":
			p.Saturation = f
		case "gamma":
			p.Gamma = f
		}
		return true
	case "fps":
		f, ok := toFloat(val)
		if !ok {
			return false
		}
		n := int(math.Round(f))
		if n < 1 || n > 60 {
			return false
		}
		p.FPS = n
		return true
	case "active_palette":
		name, ok := val.(string)
		if !ok || name == "" {
			return false
		}
		if s.palettes != nil {
			if _, found := s.palettes.Get(name); !found {
				return false
			}
		}
		p.ActivePalette = name
		return true
	case "active_program":
		name, ok := val.(string)
		if !ok || name == "" {
			return false
		}
		p.ActiveProgram = name
		return true
	default:
		return false
	}
}

func checkRange(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("config: %s is not finite", name)
	}
	var lo, hi float64
	var openHi bool
	switch name {
	case "brightness", "saturation":
		lo, hi = 0, 1
	case "speed":
		lo, hi = 0.1, 5.0
	case "scale":
		lo, hi = 0.1, 3.0
	case "gamma":
		lo, hi = 0.1, 3.0
	case "hue_offset":
		lo, hi, openHi = 0, 360, true
	default:
		return fmt.Errorf("config: unknown field %q", name)
	}
	if v < lo || v > hi || (openHi && v == hi) {
		return fmt.Errorf("config: %s=%v outside range", name, v)
	}
	return nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
