package models

// Town is a row of the towns table
type Town struct {
	Name  string `json:"name" db:"town"`
	RunID string `json:"runId" db:"run_id"`
}

// Connection is a row of the connections table
type Connection struct {
	Source            string   `json:"source" db:"source"`
	Destination       string   `json:"destination" db:"destination"`
	DurationMinutes   int      `json:"durationMinutes" db:"duration_minutes"`
	TransportType     string   `json:"transportType" db:"transport_type"`
	StartTime         *string  `json:"startTime,omitempty" db:"start_time"`
	EndTime           *string  `json:"endTime,omitempty" db:"end_time"`
	DrivingDistanceKm *float64 `json:"drivingDistanceKm,omitempty" db:"driving_distance_km"`
	RunID             string   `json:"runId" db:"run_id"`
}

// ConnectionFilter narrows GET /api/connections. Empty fields match everything.
type ConnectionFilter struct {
	Source      string
	Destination string
}

// TimetableChange is a row of the timetable changes table
type TimetableChange struct {
	Town      string `json:"town" db:"town"`
	Station   string `json:"station" db:"station"`
	EVA       string `json:"eva" db:"eva"`
	StopID    string `json:"stopId,omitempty" db:"stop_id"`
	Scope     string `json:"scope" db:"scope"`
	MessageID string `json:"messageId" db:"message_id"`
	Type      string `json:"type" db:"message_type"`
	Code      string `json:"code,omitempty" db:"code"`
	Category  string `json:"category,omitempty" db:"category"`
	Priority  string `json:"priority,omitempty" db:"priority"`
	IssuedAt  string `json:"issuedAt,omitempty" db:"issued_at"`
	ValidFrom string `json:"validFrom,omitempty" db:"valid_from"`
	ValidTo   string `json:"validTo,omitempty" db:"valid_to"`
}
