package render

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/cosmicled/cosmicled/internal/color"
	"github.com/cosmicled/cosmicled/internal/config"
	"github.com/cosmicled/cosmicled/internal/layout"
)

// State tracks a program slot through its lifecycle.
type State string

const (
	StateUnloaded   State = "unloaded"
	StateValidating State = "validating"
	StateLoaded     State = "loaded"
	StateRejected   State = "rejected"
)

// Info is the externally visible view of a program slot.
type Info struct {
	Name   string   `json:"name"`
	State  State    `json:"state"`
	LoadID string   `json:"load_id,omitempty"`
	Reason string   `json:"reason,omitempty"`
	Meta   Metadata `json:"meta,omitempty"`
}

type slot struct {
	prog   Program
	state  State
	loadID string
	reason string
}

// handle pairs a program with its load identity. The active handle is swapped
// as a whole, so a tick in progress sees either the old or the new program,
// never a mixture.
type handle struct {
	prog   Program
	loadID string
}

// Registry loads, validates and hot-swaps programs.
type Registry struct {
	mu     sync.RWMutex
	slots  map[string]*slot
	active atomic.Pointer[handle]

	lay      layout.Layout
	palettes *color.Table
}

func NewRegistry(lay layout.Layout, palettes *color.Table) *Registry {
	return &Registry{
		slots:    map[string]*slot{},
		lay:      lay,
		palettes: palettes,
	}
}

// Register validates and installs a compiled-in program. An existing slot
// with the same name is replaced only if validation passes; until then the
// old program keeps serving, including to a render in flight.
func (r *Registry) Register(p Program) error {
	if p == nil {
		return &ValidationError{Name: "", Reason: "nil program"}
	}
	name := p.Name()
	if name == "" {
		return &ValidationError{Name: name, Reason: "empty name"}
	}

	r.setState(name, StateValidating, "", "")
	if err := r.dryRun(p); err != nil {
		reason := err.Error()
		r.setState(name, StateRejected, "", reason)
		log.Warn().Str("program", name).Str("reason", reason).Msg("program rejected")
		return &ValidationError{Name: name, Reason: reason}
	}

	id := uuid.NewString()
	r.mu.Lock()
	r.slots[name] = &slot{prog: p, state: StateLoaded, loadID: id}
	r.mu.Unlock()

	// If this name is currently active, swap the fresh load in atomically.
	if cur := r.active.Load(); cur != nil && cur.prog.Name() == name {
		r.active.Store(&handle{prog: p, loadID: id})
	}
	log.Info().Str("program", name).Str("load_id", id).Msg("program loaded")
	return nil
}

// LoadScript compiles scripted program source and registers the result.
func (r *Registry) LoadScript(name, source string) error {
	p, err := CompileScript(name, source, r.lay, r.palettes)
	if err != nil {
		r.setState(name, StateRejected, "", err.Error())
		return err
	}
	return r.Register(p)
}

// Activate swaps the active handle to the named program. Unknown or rejected
// names leave the current program untouched.
func (r *Registry) Activate(name string) error {
	r.mu.RLock()
	s, ok := r.slots[name]
	r.mu.RUnlock()
	if !ok || s.state != StateLoaded {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	r.active.Store(&handle{prog: s.prog, loadID: s.loadID})
	log.Info().Str("program", name).Msg("program activated")
	return nil
}

// Active returns the current program, or nil when nothing is activated yet.
// The returned value stays valid even if a swap happens immediately after.
func (r *Registry) Active() Program {
	if h := r.active.Load(); h != nil {
		return h.prog
	}
	return nil
}

func (r *Registry) ActiveName() string {
	if h := r.active.Load(); h != nil {
		return h.prog.Name()
	}
	return ""
}

// List returns all slots sorted by name.
func (r *Registry) List() []Info {
	r.mu.RLock()
	out := make([]Info, 0, len(r.slots))
	for name, s := range r.slots {
		info := Info{Name: name, State: s.state, LoadID: s.loadID, Reason: s.reason}
		if s.prog != nil {
			info.Meta = s.prog.Meta()
		}
		out = append(out, info)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *Registry) setState(name string, st State, loadID, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[name]
	if !ok {
		r.slots[name] = &slot{state: st, loadID: loadID, reason: reason}
		return
	}
	if s.state == StateLoaded && (st == StateValidating || st == StateRejected) {
		// A reload in progress (or a failed one) must not clobber a working
		// slot; the old program keeps serving until a replacement passes.
		return
	}
	s.state = st
	if reason != "" {
		s.reason = reason
	}
}

// dryRun executes one synthetic tick against a scratch buffer to catch
// immediate crashes before a program is exposed to the live loop.
func (r *Registry) dryRun(p Program) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic during dry run: %v", rec)
		}
	}()
	scratch := NewFrame(r.lay.Count())
	snap := config.Snapshot{Params: config.Default().Defaults}
	if rerr := p.Render(scratch, snap, 0); rerr != nil {
		return fmt.Errorf("dry run: %w", rerr)
	}
	return nil
}
