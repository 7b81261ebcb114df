package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/dominic0df/2023-amse/internal/db"
	"github.com/dominic0df/2023-amse/internal/timetable"
	"github.com/dominic0df/2023-amse/internal/townset"
	"github.com/dominic0df/2023-amse/internal/transform"
)

// TimetableStage is stage 2.
type TimetableStage struct {
	API           TimetableAPI
	Sink          db.Sink
	TownSetPath   string
	TownSetMaxAge time.Duration
	Tables        Tables
	Now           func() time.Time
}

// Run loads the town set written by stage 1, matches each town to a station
// and stores the station's changes. Towns without a station are skipped with
// a warning; any API failure aborts the run.
func (s *TimetableStage) Run(ctx context.Context) error {
	now := nowOr(s.Now)
	started := now()
	log.Info("timetable stage starting")

	artifact, err := townset.Load(s.TownSetPath)
	if err != nil {
		return err
	}
	if artifact.IsStale(s.TownSetMaxAge, now()) {
		log.Warn("town artifact is stale, using it anyway", "generated_at", artifact.GeneratedAt, "max_age", s.TownSetMaxAge)
	}
	towns := artifact.Set()
	log.Info("town artifact loaded", "towns", towns.Len(), "source_run", artifact.RunID)

	stations, err := s.API.Stations(ctx)
	if err != nil {
		return err
	}
	index := timetable.NewStationIndex(stations)
	log.Info("stations listed", "stations", index.Len())

	var (
		matches []transform.TownStation
		changes []transform.TimetableChange
		skipped int
	)
	for _, town := range towns.Sorted() {
		station, err := index.Lookup(town)
		if errors.Is(err, timetable.ErrStationNotFound) {
			log.Warn("no station for town, skipping", "town", town)
			skipped++
			continue
		}
		if err != nil {
			return err
		}

		tt, err := s.API.Changes(ctx, station.EVA)
		if err != nil {
			return err
		}

		batch := transform.NormalizeTimetable(town, tt)
		log.Debug("changes fetched", "town", town, "station", station.Name, "eva", station.EVA, "changes", len(batch))

		matches = append(matches, transform.TownStation{Town: town, Station: station})
		changes = append(changes, batch...)
	}
	log.Info("towns matched", "matched", len(matches), "skipped", skipped)

	// stage 2 has its own run id; the source run is traceable through the artifact
	runID := uuid.NewString()
	err = writeTables(ctx, s.Sink, runID, StageTimetables, started, now,
		transform.TimetableTable(s.Tables.Timetable, runID, changes),
		transform.StationsTable(s.Tables.Stations, runID, matches),
	)
	if err != nil {
		return err
	}

	log.Info("timetable stage complete", "run_id", runID, "changes", len(changes))
	return nil
}
