// Package extract projects the town set and the connection relation out of a
// parsed MOIN graph.
package extract

import (
	"net/url"
	"sort"
	"strings"

	"github.com/dominic0df/2023-amse/internal/graph"
	"github.com/dominic0df/2023-amse/internal/townset"
)

// ConnectionRow is one trip of a connect-to block. Values are the full IRIs
// or lexical forms from the graph; stripping is left to the transform.
type ConnectionRow struct {
	Source          string
	ConnectedTo     string
	Duration        string
	TransportType   string
	StartTime       *string
	EndTime         *string
	DrivingDistance *string
}

// Towns returns the local names of every subject in the entity namespace.
func Towns(g *graph.Graph, ns graph.Namespaces) townset.Set {
	towns := townset.New()
	for _, s := range g.Subjects() {
		if s.Kind != graph.KindIRI || !strings.HasPrefix(s.Value, ns.EntityIRI) {
			continue
		}
		local := strings.TrimPrefix(s.Value, ns.EntityIRI)
		if local == "" {
			continue
		}
		if decoded, err := url.PathUnescape(local); err == nil {
			local = decoded
		}
		towns.Add(local)
	}
	return towns
}

// Connections matches
//
//	?source connectsTo ?block . ?block connectsTo ?dest .
//	?block hasTrip ?trip . ?trip duration ?d . ?trip transportType ?t
//
// and returns one row per trip, sorted by source, destination, duration and
// transport type.
func Connections(g *graph.Graph, ns graph.Namespaces) []ConnectionRow {
	connectsTo := graph.Fixed(ns.Ontology("connectsTo"))

	bindings := g.Select(
		graph.Pattern{S: graph.Var("source"), P: connectsTo, O: graph.Var("block")},
		graph.Pattern{S: graph.Var("block"), P: connectsTo, O: graph.Var("dest")},
		graph.Pattern{S: graph.Var("block"), P: graph.Fixed(ns.Ontology("hasTrip")), O: graph.Var("trip")},
		graph.Pattern{S: graph.Var("trip"), P: graph.Fixed(ns.Ontology("duration")), O: graph.Var("duration")},
		graph.Pattern{S: graph.Var("trip"), P: graph.Fixed(ns.Ontology("transportType")), O: graph.Var("type")},
	)

	rows := make([]ConnectionRow, 0, len(bindings))
	for _, b := range bindings {
		// the nested block is anonymous; a named node here is a sibling-form leftover
		if b["block"].Kind != graph.KindBlank {
			continue
		}
		trip := b["trip"]
		rows = append(rows, ConnectionRow{
			Source:          b["source"].Value,
			ConnectedTo:     b["dest"].Value,
			Duration:        b["duration"].Value,
			TransportType:   b["type"].Value,
			StartTime:       optional(g, trip, ns.Ontology("startTime")),
			EndTime:         optional(g, trip, ns.Ontology("endTime")),
			DrivingDistance: optional(g, trip, ns.Ontology("drivingDistance")),
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		if a.ConnectedTo != b.ConnectedTo {
			return a.ConnectedTo < b.ConnectedTo
		}
		if a.Duration != b.Duration {
			return a.Duration < b.Duration
		}
		return a.TransportType < b.TransportType
	})

	return rows
}

// optional returns the first object of (subject, predicate), or nil.
func optional(g *graph.Graph, subject, predicate graph.Term) *string {
	objects := g.Objects(subject, predicate)
	if len(objects) == 0 {
		return nil
	}
	v := objects[0].Value
	return &v
}
