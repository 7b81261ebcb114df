package transform

import (
	"testing"

	"github.com/dominic0df/2023-amse/internal/extract"
	"github.com/dominic0df/2023-amse/internal/graph"
	"github.com/dominic0df/2023-amse/internal/timetable"
	"github.com/dominic0df/2023-amse/internal/townset"
)

var ns = graph.DefaultNamespaces()

func strPtr(s string) *string { return &s }

func row(source, dest, duration, transport string) extract.ConnectionRow {
	return extract.ConnectionRow{
		Source:        ns.EntityIRI + source,
		ConnectedTo:   ns.EntityIRI + dest,
		Duration:      duration,
		TransportType: ns.OntologyIRI + transport,
	}
}

func TestNormalizeConnectionsFiltersUnknownTowns(t *testing.T) {
	towns := townset.New("Bremerhaven", "Marl")
	rows := []extract.ConnectionRow{
		row("Bremerhaven", "Marl", "PT322M", "Car"),
		row("Bremerhaven", "Unknown", "PT10M", "Car"),
		row("Unknown", "Marl", "PT10M", "Car"),
	}

	got, report := NormalizeConnections(rows, towns, ns)

	if len(got) != 1 {
		t.Fatalf("expected 1 connection, got %d: %+v", len(got), got)
	}
	want := Connection{Source: "Bremerhaven", Destination: "Marl", DurationMinutes: 322, TransportType: "Car"}
	if got[0] != want {
		t.Errorf("connection = %+v, want %+v", got[0], want)
	}
	if report != (Report{Input: 3, Kept: 1, UnknownTown: 2}) {
		t.Errorf("report = %+v", report)
	}
}

func TestNormalizeConnectionsDropsBadDurations(t *testing.T) {
	towns := townset.New("A", "B")
	rows := []extract.ConnectionRow{
		row("A", "B", "PT5M", "Bus"),
		row("A", "B", "five minutes", "Bus"),
		row("A", "B", "-PT5M", "Bus"),
	}

	got, report := NormalizeConnections(rows, towns, ns)

	if len(got) != 1 || got[0].DurationMinutes != 5 {
		t.Errorf("expected only the PT5M row, got %+v", got)
	}
	if report.BadDuration != 2 {
		t.Errorf("BadDuration = %d, want 2", report.BadDuration)
	}
	for _, c := range got {
		if c.DurationMinutes < 0 {
			t.Errorf("negative duration survived: %+v", c)
		}
	}
}

func TestNormalizeConnectionsOptionalFields(t *testing.T) {
	towns := townset.New("Müllheim", "B")
	r := row("M%C3%BCllheim", "B", "PT1H", "Train")
	r.StartTime = strPtr("08:00")
	r.DrivingDistance = strPtr("12.5")

	bad := row("B", "M%C3%BCllheim", "PT1H", "Train")
	bad.DrivingDistance = strPtr("far")

	got, _ := NormalizeConnections([]extract.ConnectionRow{r, bad}, towns, ns)
	if len(got) != 2 {
		t.Fatalf("expected 2 connections, got %+v", got)
	}

	if got[0].Source != "Müllheim" || got[0].DurationMinutes != 60 {
		t.Errorf("first connection = %+v", got[0])
	}
	if got[0].StartTime == nil || *got[0].StartTime != "08:00" || got[0].EndTime != nil {
		t.Errorf("start/end = %v/%v", got[0].StartTime, got[0].EndTime)
	}
	if got[0].DrivingDistanceKm == nil || *got[0].DrivingDistanceKm != 12.5 {
		t.Errorf("distance = %v", got[0].DrivingDistanceKm)
	}
	// an unreadable distance is kept as missing, not dropped
	if got[1].DrivingDistanceKm != nil {
		t.Errorf("expected nil distance, got %v", *got[1].DrivingDistanceKm)
	}
}

func TestParseDurationMinutes(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"PT322M", 322, false},
		{"PT9134.0S", 152, false},
		{"PT1H30M", 90, false},
		{"PT59S", 0, false},
		{"P1D", 1440, false},
		{" PT5M ", 5, false},
		{"", 0, true},
		{"322", 0, true},
		{"-PT5M", 0, true},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseDurationMinutes(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Errorf("expected error, got %d", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("ParseDurationMinutes(%q) = %d, want %d", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalizeTimetable(t *testing.T) {
	tt := &timetable.Timetable{
		Station:  "Bremerhaven Hbf",
		EVA:      "8000051",
		Messages: []timetable.Message{{ID: "r1", Type: "h", Timestamp: "2306011200"}},
		Stops: []timetable.Stop{
			{
				ID:       "s1",
				Messages: []timetable.Message{{ID: "r2", Type: "q"}},
				Arrival: &timetable.Event{
					Messages: []timetable.Message{{ID: "r3", Type: "d", Code: "36", From: "2301151030", To: "bogus"}},
				},
			},
			{
				ID:        "s2",
				Departure: &timetable.Event{Messages: []timetable.Message{{ID: "r4", Type: "f", Category: "Störung", Priority: "1"}}},
			},
		},
	}

	got := NormalizeTimetable("Bremerhaven", tt)
	if len(got) != 4 {
		t.Fatalf("expected 4 changes, got %d: %+v", len(got), got)
	}

	wantScopes := []string{ScopeStation, ScopeStop, ScopeArrival, ScopeDeparture}
	for i, c := range got {
		if c.Town != "Bremerhaven" || c.EVA != "8000051" || c.Station != "Bremerhaven Hbf" {
			t.Errorf("change %d lost its town or station: %+v", i, c)
		}
		if c.Scope != wantScopes[i] {
			t.Errorf("change %d scope = %q, want %q", i, c.Scope, wantScopes[i])
		}
	}

	// summer time, UTC+2
	if got[0].Timestamp != "2023-06-01T12:00:00+02:00" {
		t.Errorf("timestamp = %q", got[0].Timestamp)
	}
	// winter time, UTC+1
	if got[2].ValidFrom != "2023-01-15T10:30:00+01:00" {
		t.Errorf("valid_from = %q", got[2].ValidFrom)
	}
	if got[2].ValidTo != "bogus" {
		t.Errorf("unparseable value should pass through, got %q", got[2].ValidTo)
	}
	if got[1].StopID != "s1" || got[3].StopID != "s2" || got[0].StopID != "" {
		t.Errorf("stop ids = %q %q %q", got[0].StopID, got[1].StopID, got[3].StopID)
	}
}

func TestNormalizeTimetableNil(t *testing.T) {
	if got := NormalizeTimetable("X", nil); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}

func TestTables(t *testing.T) {
	dist := 4.2
	conns := []Connection{
		{Source: "A", Destination: "B", DurationMinutes: 5, TransportType: "Car", DrivingDistanceKm: &dist},
		{Source: "B", Destination: "A", DurationMinutes: 6, TransportType: "Bus"},
	}

	ct := ConnectionsTable("connections", "run-1", conns)
	if err := ct.Validate(); err != nil {
		t.Fatalf("connections table invalid: %v", err)
	}
	if len(ct.Rows) != 2 || ct.Rows[0][0] != "run-1" || ct.Rows[0][7] != 4.2 {
		t.Errorf("connections rows = %v", ct.Rows)
	}
	if ct.Rows[1][7] != nil {
		t.Errorf("missing distance should be untyped nil, got %#v", ct.Rows[1][7])
	}

	tt := TownsTable("towns", "run-1", townset.New("b", "a"))
	if err := tt.Validate(); err != nil {
		t.Fatalf("towns table invalid: %v", err)
	}
	if tt.Rows[0][1] != "a" || tt.Rows[1][1] != "b" {
		t.Errorf("towns rows not sorted: %v", tt.Rows)
	}

	changes := NormalizeTimetable("A", &timetable.Timetable{Messages: []timetable.Message{{ID: "r1"}}})
	if err := TimetableTable("timetable_changes", "run-1", changes).Validate(); err != nil {
		t.Errorf("timetable table invalid: %v", err)
	}

	st := StationsTable("town_stations", "run-1", []TownStation{{Town: "A", Station: timetable.Station{Name: "A Hbf", EVA: "1"}}})
	if err := st.Validate(); err != nil {
		t.Errorf("stations table invalid: %v", err)
	}
	if st.Rows[0][3] != "1" {
		t.Errorf("stations row = %v", st.Rows[0])
	}
}
