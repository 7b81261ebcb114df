package models

import "time"

// Stage names match the pipeline_runs.stage values
const (
	StageConnections = "connections"
	StageTimetables  = "timetables"
)

// AllStages returns the pipeline stages in run order
func AllStages() []string {
	return []string{StageConnections, StageTimetables}
}

// StageRun is a row of pipeline_runs
type StageRun struct {
	RunID         string `db:"run_id"`
	Stage         string `db:"stage"`
	StartedAtUTC  string `db:"started_at_utc"`
	FinishedAtUTC string `db:"finished_at_utc"`
	TablesWritten int    `db:"tables_written"`
	RowsWritten   int    `db:"rows_written"`
}

// DataFreshness represents how recently a stage last completed
type DataFreshness struct {
	Stage       string     `json:"stage"`
	LastRunID   string     `json:"lastRunId,omitempty"`
	LastRunAt   *time.Time `json:"lastRunAt"`
	AgeSeconds  int        `json:"ageSeconds"`
	Status      string     `json:"status"` // "fresh", "stale", "unavailable"
	RowsWritten int        `json:"rowsWritten"`
}

// FreshnessStatus constants
const (
	FreshnessFresh       = "fresh"       // < 1 day
	FreshnessStale       = "stale"       // 1 - 7 days
	FreshnessUnavailable = "unavailable" // > 7 days or never run
)

// CalculateFreshnessStatus returns the freshness status based on age
func CalculateFreshnessStatus(ageSeconds int) string {
	const day = 24 * 60 * 60
	if ageSeconds < 0 {
		return FreshnessUnavailable
	}
	if ageSeconds < day {
		return FreshnessFresh
	}
	if ageSeconds < 7*day {
		return FreshnessStale
	}
	return FreshnessUnavailable
}

// Freshness derives the freshness of a stage from its latest run, which may be nil.
func Freshness(stage string, run *StageRun, now time.Time) DataFreshness {
	f := DataFreshness{Stage: stage, AgeSeconds: -1, Status: FreshnessUnavailable}
	if run == nil {
		return f
	}
	finished, err := time.Parse(time.RFC3339, run.FinishedAtUTC)
	if err != nil {
		return f
	}
	f.LastRunID = run.RunID
	f.LastRunAt = &finished
	f.AgeSeconds = int(now.Sub(finished).Seconds())
	f.Status = CalculateFreshnessStatus(f.AgeSeconds)
	f.RowsWritten = run.RowsWritten
	return f
}
