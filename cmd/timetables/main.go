package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"

	"github.com/dominic0df/2023-amse/internal/config"
	"github.com/dominic0df/2023-amse/internal/db"
	"github.com/dominic0df/2023-amse/internal/logging"
	"github.com/dominic0df/2023-amse/internal/pipeline"
)

// Runs as its own process after cmd/connections; the town set arrives
// through the artifact at TOWNSET_PATH.
func main() {
	config.LoadDotEnv()
	cfg := config.Load()
	logging.Init(cfg.Debug, "timetables")

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", "err", err)
	}
	creds, err := config.LoadCredentials(cfg.CredentialsFile)
	if err != nil {
		log.Fatal("failed to load credentials", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sink, err := db.Open(ctx, cfg.SinkDriver, cfg.DatabasePath, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to open sink", "err", err)
	}
	defer sink.Close()

	if err := pipeline.NewTimetableStage(cfg, creds, sink).Run(ctx); err != nil {
		sink.Close()
		log.Fatal("timetables stage failed", "err", err)
	}
}
