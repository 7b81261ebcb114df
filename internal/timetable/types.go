package timetable

import "encoding/xml"

// StationList is the body of GET /station/*.
type StationList struct {
	XMLName  xml.Name  `xml:"stations"`
	Stations []Station `xml:"station"`
}

// Station is one entry of the station list.
type Station struct {
	Name  string `xml:"name,attr"`
	EVA   string `xml:"eva,attr"`
	DS100 string `xml:"ds100,attr"`
}

// Timetable is the body of GET /fchg/{eva}: all known changes for one station.
type Timetable struct {
	XMLName  xml.Name  `xml:"timetable"`
	Station  string    `xml:"station,attr"`
	EVA      string    `xml:"eva,attr"`
	Messages []Message `xml:"m"`
	Stops    []Stop    `xml:"s"`
}

// Stop is a timetable stop with its optional arrival and departure events.
type Stop struct {
	ID        string    `xml:"id,attr"`
	EVA       string    `xml:"eva,attr"`
	Messages  []Message `xml:"m"`
	Arrival   *Event    `xml:"ar"`
	Departure *Event    `xml:"dp"`
}

// Event holds the changed attributes of an arrival or a departure.
type Event struct {
	ChangedTime     string    `xml:"ct,attr"`
	ChangedPlatform string    `xml:"cp,attr"`
	ChangedStatus   string    `xml:"cs,attr"`
	Line            string    `xml:"l,attr"`
	Messages        []Message `xml:"m"`
}

// Message is a single change notice.
type Message struct {
	ID        string `xml:"id,attr"`
	Type      string `xml:"t,attr"`
	Code      string `xml:"c,attr"`
	Category  string `xml:"cat,attr"`
	Priority  string `xml:"pr,attr"`
	Timestamp string `xml:"ts,attr"`
	From      string `xml:"from,attr"`
	To        string `xml:"to,attr"`
}
