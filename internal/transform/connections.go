// Package transform turns extracted rows and fetched timetables into the
// clean tables written to the sink.
package transform

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/sosodev/duration"

	"github.com/dominic0df/2023-amse/internal/extract"
	"github.com/dominic0df/2023-amse/internal/graph"
	"github.com/dominic0df/2023-amse/internal/townset"
)

// Connection is one row of the connections table.
type Connection struct {
	Source            string
	Destination       string
	DurationMinutes   int
	TransportType     string
	StartTime         *string
	EndTime           *string
	DrivingDistanceKm *float64
}

// Report counts what NormalizeConnections kept and why it dropped the rest.
type Report struct {
	Input       int
	Kept        int
	UnknownTown int
	BadDuration int
}

// NormalizeConnections strips namespaces, keeps rows whose source and
// destination are both known towns, and converts durations to minutes.
// Rows with an unreadable or negative duration are dropped and counted.
func NormalizeConnections(rows []extract.ConnectionRow, towns townset.Set, ns graph.Namespaces) ([]Connection, Report) {
	report := Report{Input: len(rows)}
	out := make([]Connection, 0, len(rows))

	for _, r := range rows {
		source := townName(r.Source, ns)
		dest := townName(r.ConnectedTo, ns)
		if !towns.Contains(source) || !towns.Contains(dest) {
			report.UnknownTown++
			continue
		}

		minutes, err := ParseDurationMinutes(r.Duration)
		if err != nil {
			report.BadDuration++
			continue
		}

		out = append(out, Connection{
			Source:            source,
			Destination:       dest,
			DurationMinutes:   minutes,
			TransportType:     stripNamespaces(r.TransportType, ns),
			StartTime:         r.StartTime,
			EndTime:           r.EndTime,
			DrivingDistanceKm: parseDistance(r.DrivingDistance),
		})
	}

	report.Kept = len(out)
	return out, report
}

// ParseDurationMinutes reads an ISO 8601 duration and returns whole minutes,
// rounded down: PT322M is 322, PT9134.0S is 152.
func ParseDurationMinutes(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}
	d, err := duration.Parse(s)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration %q: %w", s, err)
	}

	td := d.ToTimeDuration()
	if td < 0 {
		return 0, fmt.Errorf("negative duration %q", s)
	}
	return int(math.Floor(td.Seconds() / 60)), nil
}

// stripNamespaces removes the entity and ontology namespace IRIs as plain substrings.
func stripNamespaces(v string, ns graph.Namespaces) string {
	v = strings.ReplaceAll(v, ns.EntityIRI, "")
	return strings.ReplaceAll(v, ns.OntologyIRI, "")
}

// townName strips namespaces and percent-decodes, matching extract.Towns.
func townName(v string, ns graph.Namespaces) string {
	v = stripNamespaces(v, ns)
	if decoded, err := url.PathUnescape(v); err == nil {
		return decoded
	}
	return v
}

func parseDistance(v *string) *float64 {
	if v == nil {
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(*v), 64)
	if err != nil {
		return nil
	}
	return &f
}
