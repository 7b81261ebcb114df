package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dominic0df/2023-amse/internal/db"
	"github.com/dominic0df/2023-amse/internal/extract"
	"github.com/dominic0df/2023-amse/internal/graph"
	"github.com/dominic0df/2023-amse/internal/repair"
	"github.com/dominic0df/2023-amse/internal/townset"
	"github.com/dominic0df/2023-amse/internal/transform"
)

// ConnectionsStage is stage 1.
type ConnectionsStage struct {
	Source      SourceFetcher
	Sink        db.Sink
	Namespaces  graph.Namespaces
	TownSetPath string
	Tables      Tables
	Now         func() time.Time
}

// Run executes fetch, repair, parse, extract, normalize and write. A parse
// failure aborts the run with an error matching graph.ErrRepairIncomplete.
func (s *ConnectionsStage) Run(ctx context.Context) error {
	now := nowOr(s.Now)
	started := now()
	log.Info("connections stage starting")

	raw, err := s.Source.Fetch(ctx)
	if err != nil {
		return err
	}

	repaired, stats := repair.NewEngine(repair.Vocabulary{
		EntityPrefix:   s.Namespaces.EntityPrefix,
		EntityIRI:      s.Namespaces.EntityIRI,
		OntologyPrefix: s.Namespaces.OntologyPrefix,
		OntologyIRI:    s.Namespaces.OntologyIRI,
		ConnectsTo:     "connectsTo",
	}).Repair(raw)
	log.Info("source repaired",
		"lines", stats.Lines,
		"blocks_opened", stats.BlocksOpened,
		"blocks_closed", stats.BlocksClosed,
		"urls_escaped", stats.URLsEscaped,
		"blank_removed", stats.BlankRemoved)

	g, err := graph.Parse(repaired, s.Namespaces)
	if err != nil {
		return fmt.Errorf("failed to parse repaired source: %w", err)
	}
	log.Info("graph built", "triples", g.Len())

	towns := extract.Towns(g, s.Namespaces)
	log.Info("towns extracted", "towns", towns.Len())

	artifact := townset.NewArtifact(towns, now())
	if err := townset.Save(s.TownSetPath, artifact); err != nil {
		return err
	}
	log.Info("town artifact saved", "path", s.TownSetPath, "run_id", artifact.RunID)

	rows := extract.Connections(g, s.Namespaces)
	conns, report := transform.NormalizeConnections(rows, towns, s.Namespaces)
	log.Info("connections normalized",
		"extracted", report.Input,
		"kept", report.Kept,
		"unknown_town", report.UnknownTown,
		"bad_duration", report.BadDuration)

	err = writeTables(ctx, s.Sink, artifact.RunID, StageConnections, started, now,
		transform.ConnectionsTable(s.Tables.Connections, artifact.RunID, conns),
		transform.TownsTable(s.Tables.Towns, artifact.RunID, towns),
	)
	if err != nil {
		return err
	}

	log.Info("connections stage complete", "run_id", artifact.RunID, "connections", len(conns), "towns", towns.Len())
	return nil
}
