// Command kiosk is the TimeClock entry point: it loads configuration,
// wires the dependency graph, starts the event loop, tag source, worker
// pool, scheduler and HTTP server, then waits for a shutdown signal.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/randhum/timeclock/internal/config"
	"github.com/randhum/timeclock/internal/di"
	"github.com/randhum/timeclock/pkg/logger"
)

func main() {
	// --data-dir takes highest priority over TIME_CLOCK_DATA_DIR.
	var dataDirFlag string
	flag.StringVar(&dataDirFlag, "data-dir", "", "database directory path (overrides TIME_CLOCK_DATA_DIR)")
	flag.Parse()

	cfg, err := config.Load(dataDirFlag)
	if err != nil {
		fallback := logger.New(logger.Config{Level: "info", Pretty: true})
		fallback.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: true})
	log.Info().Str("data_dir", cfg.DataDir).Int("port", cfg.Port).Msg("starting timeclock kiosk")

	container, err := di.Build(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build dependency graph")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := container.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start kiosk")
	}
	log.Info().Msg("timeclock kiosk is running")

	<-ctx.Done()
	log.Info().Msg("shutdown signal received, stopping kiosk")
	container.Shutdown()
	log.Info().Msg("timeclock kiosk stopped cleanly")
}
