package main

import (
	"context"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/dominic0df/2023-amse/internal/api/handlers"
	"github.com/dominic0df/2023-amse/internal/api/repository"
	"github.com/dominic0df/2023-amse/internal/config"
	"github.com/dominic0df/2023-amse/internal/logging"
)

type apiRepository interface {
	handlers.NetworkRepository
	handlers.HealthRepository
}

func main() {
	config.LoadDotEnv()
	cfg := config.Load()
	logging.Init(cfg.Debug, "api")

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", "err", err)
	}

	tables := repository.Tables{
		Connections: cfg.ConnectionsTable,
		Towns:       cfg.TownsTable,
		Timetable:   cfg.TimetableTable,
	}

	var repo apiRepository
	switch cfg.SinkDriver {
	case "postgres":
		pg, err := repository.NewPostgresRepository(context.Background(), cfg.DatabaseURL, tables)
		if err != nil {
			log.Fatal("failed to connect to PostgreSQL", "err", err)
		}
		defer pg.Close()
		repo = pg
		log.Info("PostgreSQL connection established")
	default:
		log.Info("connecting to SQLite database", "path", cfg.DatabasePath)
		sqliteDB, err := repository.NewSQLiteDB(cfg.DatabasePath)
		if err != nil {
			log.Fatal("failed to initialize SQLite database", "err", err)
		}
		defer sqliteDB.Close()
		repo = repository.NewSQLiteRepository(sqliteDB.GetDB(), tables)
		log.Info("SQLite database connection established")
	}

	networkHandler := handlers.NewNetworkHandler(repo)
	healthHandler := handlers.NewHealthHandler(repo)

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	r.Get("/health", healthHandler.GetHealth)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Get("/api/health/data", healthHandler.GetDataFreshness)

	r.Get("/api/towns", networkHandler.GetTowns)
	r.Get("/api/connections", networkHandler.GetConnections)
	r.Get("/api/timetable", networkHandler.GetTimetable)

	if staticDir := os.Getenv("STATIC_DIR"); staticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(staticDir)))
	}

	log.Info("API server starting", "port", cfg.Port)
	log.Info("endpoints",
		"network", "GET /api/towns, /api/connections?source=&destination=, /api/timetable?town=",
		"health", "GET /health, /api/health/data")

	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal("server failed to start", "err", err)
	}
}
