// Package app assembles the engine from configuration: palettes, layout,
// parameter store, program registry, output sink, and the timed show player.
// Both binaries build on the same core so behavior cannot drift between them.
package app

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/cosmicled/cosmicled/internal/color"
	"github.com/cosmicled/cosmicled/internal/config"
	"github.com/cosmicled/cosmicled/internal/layout"
	"github.com/cosmicled/cosmicled/internal/led"
	"github.com/cosmicled/cosmicled/internal/playlist"
	"github.com/cosmicled/cosmicled/internal/render"
	"github.com/cosmicled/cosmicled/internal/render/scenes/aurora"
	"github.com/cosmicled/cosmicled/internal/render/scenes/calib"
	"github.com/cosmicled/cosmicled/internal/render/scenes/cosmic"
	"github.com/cosmicled/cosmicled/internal/render/scenes/plasma"
	"github.com/cosmicled/cosmicled/internal/render/scenes/solid"
)

// Core holds the assembled runtime.
type Core struct {
	Cfg      *config.File
	Layout   layout.Layout
	Palettes *color.Table
	Store    *config.Store
	Registry *render.Registry
	Engine   *render.Engine
	Show     *playlist.Player

	sink led.Sink
}

// InitCore builds the full runtime from a loaded configuration. forceSim
// overrides the configured driver with the no-op sink.
func InitCore(cfg *config.File, forceSim bool) (*Core, error) {
	lay := layout.Layout{
		Width:      cfg.Matrix.Width,
		Height:     cfg.Matrix.Height,
		Serpentine: cfg.Matrix.Serpentine,
	}
	if !lay.Valid() {
		return nil, fmt.Errorf("app: invalid matrix %dx%d", lay.Width, lay.Height)
	}

	palettes := color.DefaultTable()
	store, err := config.New(cfg.Defaults, palettes)
	if err != nil {
		return nil, err
	}

	reg := render.NewRegistry(lay, palettes)
	for _, p := range []render.Program{
		cosmic.New(lay),
		aurora.New(lay),
		plasma.New(lay, palettes),
		calib.New(lay),
		solid.New("white", 255, 255, 255),
	} {
		if err := reg.Register(p); err != nil {
			return nil, fmt.Errorf("app: builtin %q rejected: %w", p.Name(), err)
		}
	}

	sink, err := openSink(cfg, lay.Count(), forceSim)
	if err != nil {
		return nil, err
	}

	eng, err := render.NewEngine(store, reg, lay.Count(), sink)
	if err != nil {
		sink.Close()
		return nil, err
	}
	eng.SetFallback(solid.Dim())

	show := playlist.NewPlayer(reg.Activate)
	eng.OnTick(show.Tick)

	if name := cfg.Defaults.ActiveProgram; name != "" {
		if err := reg.Activate(name); err != nil {
			log.Warn().Err(err).Str("program", name).Msg("configured program unavailable, using fallback")
		}
	}

	return &Core{
		Cfg:      cfg,
		Layout:   lay,
		Palettes: palettes,
		Store:    store,
		Registry: reg,
		Engine:   eng,
		Show:     show,
		sink:     sink,
	}, nil
}

func openSink(cfg *config.File, count int, forceSim bool) (led.Sink, error) {
	driver := cfg.Driver
	if forceSim {
		driver = "sim"
	}
	switch driver {
	case "", "sim":
		log.Info().Msg("output: simulation (no hardware)")
		return led.NewSim(), nil
	case "term":
		log.Info().Msg("output: terminal preview")
		return led.NewTerm(count)
	case "spi":
		log.Info().Str("dev", cfg.SPI.Dev).Int("speed_hz", cfg.SPI.SpeedHz).Msg("output: spi")
		return led.NewSPI(cfg.SPI.Dev, count, cfg.SPI.SpeedHz)
	default:
		return nil, fmt.Errorf("app: unknown driver %q", driver)
	}
}

// DefaultShow rotates through the visual builtins, a minute each.
func DefaultShow() playlist.Show {
	return playlist.Show{
		Loop: true,
		Entries: []playlist.Entry{
			{Program: "cosmic", Seconds: 60},
			{Program: "aurora", Seconds: 60},
			{Program: "plasma", Seconds: 60},
		},
	}
}

// Stop releases the output sink. The engine closes its own sink reference
// when Run returns, so Stop is only needed when Run was never started.
func (c *Core) Stop() {
	if c.sink != nil {
		c.sink.Close()
	}
}
