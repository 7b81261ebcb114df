// Package db is the relational sink. Every write replaces a named table
// wholesale; there is no incremental update path.
package db

import (
	"context"
	"fmt"
	"time"
)

// Sink receives the finished tables of a pipeline stage.
type Sink interface {
	ReplaceTable(ctx context.Context, t Table) error
	RecordRun(ctx context.Context, r Run) error
	Close() error
}

// Run is one completed stage execution.
type Run struct {
	ID            string
	Stage         string
	StartedAt     time.Time
	FinishedAt    time.Time
	TablesWritten int
	RowsWritten   int
}

type runRecord struct {
	RunID         string `db:"run_id"`
	Stage         string `db:"stage"`
	StartedAtUTC  string `db:"started_at_utc"`
	FinishedAtUTC string `db:"finished_at_utc"`
	TablesWritten int    `db:"tables_written"`
	RowsWritten   int    `db:"rows_written"`
}

func (r Run) record() runRecord {
	return runRecord{
		RunID:         r.ID,
		Stage:         r.Stage,
		StartedAtUTC:  r.StartedAt.UTC().Format(time.RFC3339),
		FinishedAtUTC: r.FinishedAt.UTC().Format(time.RFC3339),
		TablesWritten: r.TablesWritten,
		RowsWritten:   r.RowsWritten,
	}
}

// Open connects the sink named by driver: "sqlite" uses path, "postgres" uses url.
func Open(ctx context.Context, driver, path, url string) (Sink, error) {
	switch driver {
	case "", "sqlite":
		return Connect(ctx, path)
	case "postgres":
		if url == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the postgres sink")
		}
		return ConnectPostgres(ctx, url)
	default:
		return nil, fmt.Errorf("unknown sink driver %q", driver)
	}
}
