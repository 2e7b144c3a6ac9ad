// Package playlist rotates the active program on a timed schedule. The
// render loop drives it through its per-tick hook; activation goes through
// the same hot-swap path the web API uses.
package playlist

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
)

// Entry names a program and how long it should run, in seconds.
type Entry struct {
	Program string  `yaml:"program" json:"program"`
	Seconds float64 `yaml:"seconds" json:"seconds"`
}

// Show is a full rotation.
type Show struct {
	Loop    bool    `yaml:"loop" json:"loop"`
	Entries []Entry `yaml:"entries" json:"entries"`
}

type State string

const (
	Idle    State = "idle"
	Running State = "running"
	Paused  State = "paused"
)

// Player owns the show timeline. Activation is injected so the player stays
// decoupled from the registry.
type Player struct {
	mu       sync.Mutex
	state    State
	show     Show
	idx      int
	elapsed  float64
	activate func(name string) error
}

func NewPlayer(activate func(name string) error) *Player {
	return &Player{state: Idle, activate: activate}
}

// Load replaces the current show and resets to Idle.
func (p *Player) Load(show Show) error {
	if len(show.Entries) == 0 {
		return errors.New("playlist: show has no entries")
	}
	for _, e := range show.Entries {
		if e.Program == "" || e.Seconds <= 0 {
			return errors.New("playlist: entry needs a program and a positive duration")
		}
	}
	p.mu.Lock()
	p.show = show
	p.idx = 0
	p.elapsed = 0
	p.state = Idle
	p.mu.Unlock()
	return nil
}

// Start begins playback and activates the first entry.
func (p *Player) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == Running || len(p.show.Entries) == 0 {
		return
	}
	p.state = Running
	p.idx = 0
	p.elapsed = 0
	p.activateLocked(p.show.Entries[0].Program)
}

func (p *Player) Pause() {
	p.mu.Lock()
	if p.state == Running {
		p.state = Paused
	}
	p.mu.Unlock()
}

func (p *Player) Resume() {
	p.mu.Lock()
	if p.state == Paused {
		p.state = Running
	}
	p.mu.Unlock()
}

func (p *Player) Stop() {
	p.mu.Lock()
	p.state = Idle
	p.idx = 0
	p.elapsed = 0
	p.mu.Unlock()
}

func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Current returns the program name of the running entry, or "".
func (p *Player) Current() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == Idle || len(p.show.Entries) == 0 {
		return ""
	}
	return p.show.Entries[p.idx].Program
}

// Tick advances the timeline by dt seconds. Called once per rendered frame.
func (p *Player) Tick(dt float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != Running || dt <= 0 {
		return
	}
	p.elapsed += dt
	for p.elapsed >= p.show.Entries[p.idx].Seconds {
		p.elapsed -= p.show.Entries[p.idx].Seconds
		if p.idx+1 < len(p.show.Entries) {
			p.idx++
		} else if p.show.Loop {
			p.idx = 0
		} else {
			p.state = Idle
			p.idx = 0
			p.elapsed = 0
			return
		}
		p.activateLocked(p.show.Entries[p.idx].Program)
	}
}

func (p *Player) activateLocked(name string) {
	if p.activate == nil {
		return
	}
	if err := p.activate(name); err != nil {
		// Skipping is better than killing the show; the entry's time still
		// elapses so the rotation stays on schedule.
		log.Warn().Err(err).Str("program", name).Msg("playlist activation failed")
	}
}
