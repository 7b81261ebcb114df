package transform

import (
	"time"
	_ "time/tzdata"

	"github.com/dominic0df/2023-amse/internal/timetable"
)

// Message scopes, from the level of the XML document a message was found at.
const (
	ScopeStation   = "station"
	ScopeStop      = "stop"
	ScopeArrival   = "arrival"
	ScopeDeparture = "departure"
)

// timetableLayout is the API's YYMMddHHmm timestamp form.
const timetableLayout = "0601021504"

var berlin = mustLoadLocation("Europe/Berlin")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

// TimetableChange is one row of the timetable changes table.
type TimetableChange struct {
	Town      string
	Station   string
	EVA       string
	StopID    string
	Scope     string
	MessageID string
	Type      string
	Code      string
	Category  string
	Priority  string
	Timestamp string
	ValidFrom string
	ValidTo   string
}

// TownStation records which station a town was matched to.
type TownStation struct {
	Town    string
	Station timetable.Station
}

// NormalizeTimetable flattens every message of tt into rows and attaches town.
func NormalizeTimetable(town string, tt *timetable.Timetable) []TimetableChange {
	if tt == nil {
		return nil
	}

	var out []TimetableChange
	add := func(stopID, scope string, msgs []timetable.Message) {
		for _, m := range msgs {
			out = append(out, TimetableChange{
				Town:      town,
				Station:   tt.Station,
				EVA:       tt.EVA,
				StopID:    stopID,
				Scope:     scope,
				MessageID: m.ID,
				Type:      m.Type,
				Code:      m.Code,
				Category:  m.Category,
				Priority:  m.Priority,
				Timestamp: ParseTimetableTime(m.Timestamp),
				ValidFrom: ParseTimetableTime(m.From),
				ValidTo:   ParseTimetableTime(m.To),
			})
		}
	}

	add("", ScopeStation, tt.Messages)
	for _, s := range tt.Stops {
		add(s.ID, ScopeStop, s.Messages)
		if s.Arrival != nil {
			add(s.ID, ScopeArrival, s.Arrival.Messages)
		}
		if s.Departure != nil {
			add(s.ID, ScopeDeparture, s.Departure.Messages)
		}
	}
	return out
}

// ParseTimetableTime converts a YYMMddHHmm local time to RFC 3339. Values in
// any other form are returned unchanged.
func ParseTimetableTime(v string) string {
	if v == "" {
		return ""
	}
	t, err := time.ParseInLocation(timetableLayout, v, berlin)
	if err != nil {
		return v
	}
	return t.Format(time.RFC3339)
}
