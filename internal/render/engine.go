package render

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cosmicled/cosmicled/internal/config"
	"github.com/cosmicled/cosmicled/internal/diagnostics"
	"github.com/cosmicled/cosmicled/internal/led"
)

// After this many consecutive sink write failures the engine stops talking
// to the hardware and renders into a void sink. Visual output is best-effort;
// loop liveness is not.
const sinkFailLimit = 30

// Stats is a point-in-time view of loop health.
type Stats struct {
	FPSActual  float64 `json:"fps_actual"`
	FrameCount uint64  `json:"frame_count"`
	Uptime     float64 `json:"uptime"`
	ErrorCount uint64  `json:"error_count"`
	SinkErrors uint64  `json:"sink_errors"`
	LastError  string  `json:"last_error,omitempty"`
	Degraded   bool    `json:"degraded,omitempty"`
}

// Engine owns the render loop: one tick reads a parameter snapshot, runs the
// active program, normalizes the buffer and writes the sink, then sleeps off
// the rest of the frame budget.
type Engine struct {
	store    *config.Store
	reg      *Registry
	sink     led.Sink
	fallback Program

	frame    Frame
	out      []byte
	lastGood []byte
	haveGood bool

	onDiag   func(diagnostics.Diagnostic)
	onFrame  func([]byte)
	tickHook func(dt float64)

	consecSinkFail int

	mu         sync.Mutex
	frameCount uint64
	errorCount uint64
	sinkErrors uint64
	lastError  string
	degraded   bool
	fpsActual  float64
	winStart   time.Time
	winFrames  int
	start      time.Time
}

func NewEngine(store *config.Store, reg *Registry, pixels int, sink led.Sink) (*Engine, error) {
	if pixels <= 0 {
		return nil, fmt.Errorf("render: invalid pixel count %d", pixels)
	}
	if sink == nil {
		sink = led.NewSim()
	}
	now := time.Now()
	return &Engine{
		store:    store,
		reg:      reg,
		sink:     sink,
		frame:    NewFrame(pixels),
		out:      make([]byte, pixels*3),
		lastGood: make([]byte, pixels*3),
		start:    now,
		winStart: now,
	}, nil
}

// SetFallback installs the program used when nothing has been activated yet.
func (e *Engine) SetFallback(p Program) { e.fallback = p }

// OnDiagnostic registers a callback for error events. Called from the loop
// goroutine; must not block.
func (e *Engine) OnDiagnostic(fn func(diagnostics.Diagnostic)) { e.onDiag = fn }

// OnFrame registers a callback receiving a copy of every frame written to the
// sink. Called from the loop goroutine; must not block.
func (e *Engine) OnFrame(fn func([]byte)) { e.onFrame = fn }

// OnTick registers a per-tick hook (playlist advancement). dt is the frame
// budget in seconds.
func (e *Engine) OnTick(fn func(dt float64)) { e.tickHook = fn }

// Run drives the loop until ctx is cancelled. The stop signal is observed at
// the top of a tick only, so the sink is always left holding a complete
// frame; a final black frame is written on the way out, matching the
// hardware clear the original controller performs.
func (e *Engine) Run(ctx context.Context) error {
	e.mu.Lock()
	e.start = time.Now()
	e.winStart = e.start
	e.mu.Unlock()
	log.Info().Msg("render loop started")

	for {
		select {
		case <-ctx.Done():
			e.clear()
			log.Info().Msg("render loop stopped")
			return ctx.Err()
		default:
		}

		tickStart := time.Now()
		snap := e.Step()

		budget := time.Second / time.Duration(snap.FPS)
		if remain := budget - time.Since(tickStart); remain > 0 {
			// Overruns skip the sleep and carry on: dropped frames are
			// slower, never queued.
			time.Sleep(remain)
		}
	}
}

// Step executes exactly one tick without pacing and returns the snapshot it
// used. Exposed for the simulation runner and tests.
func (e *Engine) Step() config.Snapshot {
	snap := e.store.Snapshot()

	if e.tickHook != nil {
		e.tickHook(1.0 / float64(snap.FPS))
	}

	prog := e.reg.Active()
	if prog == nil {
		prog = e.fallback
	}

	fc := e.frameCounter()
	var renderErr error
	if prog != nil {
		renderErr = e.renderSafe(prog, snap, fc)
	}

	if renderErr != nil {
		e.recordError(prog, renderErr)
		// Previous good frame keeps the hardware stable for this tick; the
		// program stays active so a transient error can self-resolve.
		copy(e.out, e.lastGood)
	} else {
		Normalize(e.out, e.frame, snap)
		copy(e.lastGood, e.out)
		e.haveGood = true
	}

	e.writeSink()
	e.bumpFrame()

	if e.onFrame != nil {
		dup := make([]byte, len(e.out))
		copy(dup, e.out)
		e.onFrame(dup)
	}
	return snap
}

// Stats returns current runtime counters.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Stats{
		FPSActual:  e.fpsActual,
		FrameCount: e.frameCount,
		Uptime:     time.Since(e.start).Seconds(),
		ErrorCount: e.errorCount,
		SinkErrors: e.sinkErrors,
		LastError:  e.lastError,
		Degraded:   e.degraded,
	}
}

func (e *Engine) renderSafe(p Program, snap config.Snapshot, fc uint64) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic in %s: %v", p.Name(), rec)
		}
	}()
	return p.Render(e.frame, snap, fc)
}

func (e *Engine) writeSink() {
	err := e.sink.Write(e.out)
	if err == nil {
		e.consecSinkFail = 0
		return
	}

	e.consecSinkFail++
	e.mu.Lock()
	e.sinkErrors++
	e.lastError = err.Error()
	n := e.sinkErrors
	e.mu.Unlock()

	// Log the first failure and then every 100th; a dead SPI bus at 60fps
	// would otherwise flood the journal.
	if n == 1 || n%100 == 0 {
		log.Error().Err(err).Uint64("sink_errors", n).Msg("sink write failed")
	}
	e.emitDiag(diagnostics.Err, "SINK.WRITE_FAILED", err.Error())

	if e.consecSinkFail >= sinkFailLimit {
		log.Warn().Int("consecutive", e.consecSinkFail).Msg("sink unresponsive, degrading to void output")
		e.sink = &led.Void{}
		e.consecSinkFail = 0
		e.mu.Lock()
		e.degraded = true
		e.mu.Unlock()
	}
}

func (e *Engine) recordError(p Program, err error) {
	name := ""
	if p != nil {
		name = p.Name()
	}
	e.mu.Lock()
	e.errorCount++
	e.lastError = err.Error()
	n := e.errorCount
	e.mu.Unlock()

	if n == 1 || n%100 == 0 {
		log.Error().Err(err).Str("program", name).Uint64("error_count", n).Msg("program render failed")
	}
	d := diagnostics.New(diagnostics.Err, "RENDER.PROGRAM_ERROR", err.Error())
	d.Evidence = map[string]any{"program": name, "error_count": n}
	if e.onDiag != nil {
		e.onDiag(d)
	}
}

func (e *Engine) emitDiag(sev diagnostics.Severity, code, detail string) {
	if e.onDiag == nil {
		return
	}
	d := diagnostics.New(sev, code, detail)
	e.onDiag(d)
}

func (e *Engine) frameCounter() uint64 {
	e.mu.Lock()
	fc := e.frameCount
	e.mu.Unlock()
	return fc
}

// bumpFrame advances the counter unconditionally: BPM-synced programs stay
// phase-consistent across errors and program switches.
func (e *Engine) bumpFrame() {
	e.mu.Lock()
	e.frameCount++
	e.winFrames++
	if since := time.Since(e.winStart); since >= time.Second {
		e.fpsActual = float64(e.winFrames) / since.Seconds()
		e.winFrames = 0
		e.winStart = time.Now()
	}
	e.mu.Unlock()
}

// clear writes one complete black frame so a stop never leaves half of the
// matrix lit.
func (e *Engine) clear() {
	for i := range e.out {
		e.out[i] = 0
	}
	if err := e.sink.Write(e.out); err != nil {
		log.Warn().Err(err).Msg("final clear failed")
	}
	_ = e.sink.Close()
}
