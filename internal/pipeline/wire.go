package pipeline

import (
	"github.com/dominic0df/2023-amse/internal/config"
	"github.com/dominic0df/2023-amse/internal/db"
	"github.com/dominic0df/2023-amse/internal/httpclient"
	"github.com/dominic0df/2023-amse/internal/ratelimit"
	"github.com/dominic0df/2023-amse/internal/source"
	"github.com/dominic0df/2023-amse/internal/timetable"
)

// TablesFromConfig returns the configured output table names.
func TablesFromConfig(cfg *config.Config) Tables {
	return Tables{
		Connections: cfg.ConnectionsTable,
		Towns:       cfg.TownsTable,
		Timetable:   cfg.TimetableTable,
		Stations:    cfg.StationsTable,
	}
}

// NewConnectionsStage builds stage 1 from configuration. The source host
// rejects default Go clients, so requests carry a browser User-Agent.
func NewConnectionsStage(cfg *config.Config, sink db.Sink) *ConnectionsStage {
	client := httpclient.New(httpclient.Options{
		Timeout:     cfg.HTTPTimeout,
		MaxAttempts: cfg.MaxAttempts,
		RetryDelay:  cfg.RetryDelay,
		UserAgent:   source.BrowserUserAgent,
	})
	return &ConnectionsStage{
		Source:      source.NewFetcher(client, cfg.SourceURL, cfg.SourceEncoding),
		Sink:        sink,
		Namespaces:  cfg.Namespaces,
		TownSetPath: cfg.TownSetPath,
		Tables:      TablesFromConfig(cfg),
	}
}

// NewTimetableStage builds stage 2. Every attempt against the timetable API,
// retries included, draws from one per-minute budget.
func NewTimetableStage(cfg *config.Config, creds timetable.Credentials, sink db.Sink) *TimetableStage {
	client := httpclient.New(httpclient.Options{
		Timeout:     cfg.HTTPTimeout,
		MaxAttempts: cfg.MaxAttempts,
		RetryDelay:  cfg.RetryDelay,
		Limiter:     ratelimit.PerMinute(cfg.RateLimit),
	})
	return &TimetableStage{
		API:           timetable.NewClient(client, cfg.TimetableBaseURL, creds),
		Sink:          sink,
		TownSetPath:   cfg.TownSetPath,
		TownSetMaxAge: cfg.TownSetMaxAge,
		Tables:        TablesFromConfig(cfg),
	}
}
