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

func main() {
	config.LoadDotEnv()
	cfg := config.Load()
	logging.Init(cfg.Debug, "connections")

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sink, err := db.Open(ctx, cfg.SinkDriver, cfg.DatabasePath, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to open sink", "err", err)
	}
	defer sink.Close()

	if err := pipeline.NewConnectionsStage(cfg, sink).Run(ctx); err != nil {
		sink.Close()
		log.Fatal("connections stage failed", "err", err)
	}
}
