package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/cosmicled/cosmicled/internal/app"
	"github.com/cosmicled/cosmicled/internal/config"
	"github.com/cosmicled/cosmicled/internal/mqtt"
	"github.com/cosmicled/cosmicled/internal/web"
)

func main() {
	var (
		configPath = flag.String("config", "config.yaml", "path to config.yaml")
		addr       = flag.String("addr", "", "HTTP listen address (overrides config)")
		driver     = flag.String("driver", "", "output driver: spi | term | sim (overrides config)")
		simOnly    = flag.Bool("sim-only", false, "force simulation (no hardware output)")
		logLevel   = flag.String("log-level", "", "zerolog level (overrides config)")
	)
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Warn().Err(err).Str("path", *configPath).Msg("config load failed, using defaults")
		cfg = config.Default()
	}
	if *addr != "" {
		cfg.Web.Addr = *addr
	}
	if *driver != "" {
		cfg.Driver = *driver
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil && cfg.LogLevel != "" {
		zerolog.SetGlobalLevel(lvl)
	}

	core, err := app.InitCore(cfg, *simOnly)
	if err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := web.New(core.Store, core.Registry, core.Engine, core.Palettes, core.Layout, core.Show)
	core.Engine.OnFrame(srv.BroadcastFrame)
	core.Engine.OnDiagnostic(srv.BroadcastDiag)

	httpSrv := &http.Server{Addr: cfg.Web.Addr, Handler: srv.Routes()}
	go func() {
		log.Info().Str("addr", cfg.Web.Addr).Msg("http listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server failed")
			stop()
		}
	}()

	if cfg.MQTT.Enabled {
		bridge := mqtt.NewBridge(cfg.MQTT, core.Store, core.Registry, core.Engine)
		go func() {
			if err := bridge.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("mqtt bridge stopped")
			}
		}()
	}

	log.Info().
		Int("width", core.Layout.Width).
		Int("height", core.Layout.Height).
		Bool("serpentine", core.Layout.Serpentine).
		Str("program", core.Registry.ActiveName()).
		Msg("render loop starting")

	if err := core.Engine.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("render loop exited")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(shutdownCtx)
	log.Info().Msg("shutdown complete")
}
