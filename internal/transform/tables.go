package transform

import (
	"github.com/dominic0df/2023-amse/internal/db"
	"github.com/dominic0df/2023-amse/internal/townset"
)

func textCol(name string) db.Column { return db.Column{Name: name, Type: db.TypeText} }
func intCol(name string) db.Column  { return db.Column{Name: name, Type: db.TypeInteger} }
func realCol(name string) db.Column { return db.Column{Name: name, Type: db.TypeReal} }

// orNull turns a nil pointer into an untyped nil so every driver writes NULL.
func orNull[T any](v *T) any {
	if v == nil {
		return nil
	}
	return *v
}

// ConnectionsTable builds the connections table.
func ConnectionsTable(name, runID string, conns []Connection) db.Table {
	t := db.Table{
		Name: name,
		Columns: []db.Column{
			textCol("run_id"),
			textCol("source"),
			textCol("destination"),
			intCol("duration_minutes"),
			textCol("transport_type"),
			textCol("start_time"),
			textCol("end_time"),
			realCol("driving_distance_km"),
		},
		Rows: make([][]any, 0, len(conns)),
	}
	for _, c := range conns {
		t.Rows = append(t.Rows, []any{
			runID, c.Source, c.Destination, c.DurationMinutes, c.TransportType,
			orNull(c.StartTime), orNull(c.EndTime), orNull(c.DrivingDistanceKm),
		})
	}
	return t
}

// TownsTable builds the towns table, one row per town in lexical order.
func TownsTable(name, runID string, towns townset.Set) db.Table {
	t := db.Table{
		Name:    name,
		Columns: []db.Column{textCol("run_id"), textCol("town")},
		Rows:    make([][]any, 0, towns.Len()),
	}
	for _, town := range towns.Sorted() {
		t.Rows = append(t.Rows, []any{runID, town})
	}
	return t
}

// TimetableTable builds the timetable changes table.
func TimetableTable(name, runID string, changes []TimetableChange) db.Table {
	t := db.Table{
		Name: name,
		Columns: []db.Column{
			textCol("run_id"),
			textCol("town"),
			textCol("station"),
			textCol("eva"),
			textCol("stop_id"),
			textCol("scope"),
			textCol("message_id"),
			textCol("message_type"),
			textCol("code"),
			textCol("category"),
			textCol("priority"),
			textCol("issued_at"),
			textCol("valid_from"),
			textCol("valid_to"),
		},
		Rows: make([][]any, 0, len(changes)),
	}
	for _, c := range changes {
		t.Rows = append(t.Rows, []any{
			runID, c.Town, c.Station, c.EVA, c.StopID, c.Scope, c.MessageID,
			c.Type, c.Code, c.Category, c.Priority, c.Timestamp, c.ValidFrom, c.ValidTo,
		})
	}
	return t
}

// StationsTable builds the town to station mapping table.
func StationsTable(name, runID string, matches []TownStation) db.Table {
	t := db.Table{
		Name:    name,
		Columns: []db.Column{textCol("run_id"), textCol("town"), textCol("station"), textCol("eva"), textCol("ds100")},
		Rows:    make([][]any, 0, len(matches)),
	}
	for _, m := range matches {
		t.Rows = append(t.Rows, []any{runID, m.Town, m.Station.Name, m.Station.EVA, m.Station.DS100})
	}
	return t
}
