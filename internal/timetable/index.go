package timetable

import (
	"errors"
	"strings"

	"github.com/bluele/gcache"
)

// ErrStationNotFound means no station matched a town.
var ErrStationNotFound = errors.New("no matching station")

// StationIndex matches town names to stations.
type StationIndex struct {
	byName map[string]Station
	cache  gcache.Cache
}

// NewStationIndex indexes stations by lower-cased name. The first station
// wins when two share a name.
func NewStationIndex(stations []Station) *StationIndex {
	idx := &StationIndex{byName: make(map[string]Station, len(stations))}
	for _, s := range stations {
		key := strings.ToLower(strings.TrimSpace(s.Name))
		if _, ok := idx.byName[key]; !ok {
			idx.byName[key] = s
		}
	}

	idx.cache = gcache.New(4096).
		LRU().
		LoaderFunc(func(key interface{}) (interface{}, error) {
			return idx.match(key.(string))
		}).
		Build()
	return idx
}

// Len returns the number of distinct station names.
func (i *StationIndex) Len() int { return len(i.byName) }

// Lookup returns the station for town, trying the exact name first and then
// the main station ("<town> Hbf"). Underscores in town count as spaces.
func (i *StationIndex) Lookup(town string) (Station, error) {
	v, err := i.cache.Get(town)
	if err != nil {
		return Station{}, err
	}
	return v.(Station), nil
}

func (i *StationIndex) match(town string) (Station, error) {
	name := strings.ToLower(strings.TrimSpace(town))
	names := []string{name}
	if spaced := strings.ReplaceAll(name, "_", " "); spaced != name {
		names = append(names, spaced)
	}

	for _, n := range names {
		if s, ok := i.byName[n]; ok {
			return s, nil
		}
	}
	for _, n := range names {
		if s, ok := i.byName[n+" hbf"]; ok {
			return s, nil
		}
	}
	return Station{}, ErrStationNotFound
}
