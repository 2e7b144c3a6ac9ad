// simled runs the engine headless for a fixed number of frames and dumps the
// resulting stats as JSON. Handy for profiling programs and smoke-testing a
// config without hardware or a browser.
package main

import (
	"encoding/json"
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/cosmicled/cosmicled/internal/app"
	"github.com/cosmicled/cosmicled/internal/config"
)

func main() {
	var (
		configPath = flag.String("config", "config.yaml", "path to config.yaml")
		frames     = flag.Int("frames", 300, "number of frames to render")
		program    = flag.String("program", "", "program to run (default: configured)")
		term       = flag.Bool("term", false, "render to the terminal instead of discarding")
	)
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	cfg, err := config.Load(*configPath)
	if err != nil {
		cfg = config.Default()
	}
	if *term {
		cfg.Driver = "term"
	}

	core, err := app.InitCore(cfg, !*term)
	if err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
	defer core.Stop()

	if *program != "" {
		if err := core.Registry.Activate(*program); err != nil {
			log.Fatal().Err(err).Str("program", *program).Msg("activation failed")
		}
	}

	start := time.Now()
	for i := 0; i < *frames; i++ {
		core.Engine.Step()
	}
	elapsed := time.Since(start)

	stats := core.Engine.Stats()
	out := map[string]any{
		"stats":      stats,
		"frames":     *frames,
		"elapsed_ms": elapsed.Milliseconds(),
		"program":    core.Registry.ActiveName(),
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatal().Err(err).Msg("encode stats")
	}
}
