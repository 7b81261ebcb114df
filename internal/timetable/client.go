// Package timetable is a client for the DB Timetables XML API: the station
// list and the per-station change feed.
package timetable

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Credentials are the two static API headers.
type Credentials struct {
	ClientID string `yaml:"client_id" validate:"required"`
	APIKey   string `yaml:"api_key" validate:"required"`
}

// Getter fetches a URL. *httpclient.Client satisfies it; the rate limit
// guard is attached there so it covers every attempt.
type Getter interface {
	Get(ctx context.Context, url string, header http.Header) ([]byte, error)
}

// Client calls the timetable API.
type Client struct {
	getter  Getter
	baseURL string
	header  http.Header
}

// NewClient returns a Client for baseURL.
func NewClient(getter Getter, baseURL string, creds Credentials) *Client {
	header := http.Header{}
	header.Set("DB-Client-Id", creds.ClientID)
	header.Set("DB-Api-Key", creds.APIKey)
	header.Set("Accept", "application/xml")

	return &Client{
		getter:  getter,
		baseURL: strings.TrimRight(baseURL, "/"),
		header:  header,
	}
}

// Stations lists every station known to the API.
func (c *Client) Stations(ctx context.Context) ([]Station, error) {
	body, err := c.getter.Get(ctx, c.baseURL+"/station/*", c.header)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stations: %w", err)
	}

	var list StationList
	if err := xml.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("failed to parse stations: %w", err)
	}
	return list.Stations, nil
}

// Changes returns all known changes for the station with the given EVA number.
func (c *Client) Changes(ctx context.Context, eva string) (*Timetable, error) {
	body, err := c.getter.Get(ctx, c.baseURL+"/fchg/"+url.PathEscape(eva), c.header)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch changes for %s: %w", eva, err)
	}

	var tt Timetable
	if err := xml.Unmarshal(body, &tt); err != nil {
		return nil, fmt.Errorf("failed to parse changes for %s: %w", eva, err)
	}
	if tt.EVA == "" {
		tt.EVA = eva
	}
	return &tt, nil
}
