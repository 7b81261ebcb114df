// Package pipeline wires the two batch stages together. Stage 1 turns the
// MOIN dump into the connections and towns tables and persists the town set;
// stage 2 reads that town set back and fetches timetable changes per town.
package pipeline

import (
	"context"
	"time"

	"github.com/dominic0df/2023-amse/internal/db"
	"github.com/dominic0df/2023-amse/internal/timetable"
)

// Stage names recorded in pipeline_runs.
const (
	StageConnections = "connections"
	StageTimetables  = "timetables"
)

// SourceFetcher returns the decompressed source document.
type SourceFetcher interface {
	Fetch(ctx context.Context) (string, error)
}

// TimetableAPI is the remote timetable service.
type TimetableAPI interface {
	Stations(ctx context.Context) ([]timetable.Station, error)
	Changes(ctx context.Context, eva string) (*timetable.Timetable, error)
}

// Tables names the output tables.
type Tables struct {
	Connections string
	Towns       string
	Timetable   string
	Stations    string
}

// DefaultTables returns the standard table names.
func DefaultTables() Tables {
	return Tables{
		Connections: "connections",
		Towns:       "towns",
		Timetable:   "timetable_changes",
		Stations:    "town_stations",
	}
}

// writeTables replaces each table in order and records the run.
func writeTables(ctx context.Context, sink db.Sink, runID, stage string, started time.Time, now func() time.Time, tables ...db.Table) error {
	rows := 0
	for _, t := range tables {
		if err := sink.ReplaceTable(ctx, t); err != nil {
			return err
		}
		rows += len(t.Rows)
	}
	return sink.RecordRun(ctx, db.Run{
		ID:            runID,
		Stage:         stage,
		StartedAt:     started,
		FinishedAt:    now(),
		TablesWritten: len(tables),
		RowsWritten:   rows,
	})
}

func nowOr(now func() time.Time) func() time.Time {
	if now == nil {
		return time.Now
	}
	return now
}
