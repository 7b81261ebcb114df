package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dominic0df/2023-amse/internal/api/models"
)

// NetworkRepository defines the read operations over the pipeline tables
type NetworkRepository interface {
	GetTowns(ctx context.Context) ([]models.Town, error)
	GetConnections(ctx context.Context, filter models.ConnectionFilter) ([]models.Connection, error)
	GetTimetable(ctx context.Context, town string) ([]models.TimetableChange, error)
}

// NetworkHandler handles HTTP requests for towns, connections and timetable changes
type NetworkHandler struct {
	repo NetworkRepository
}

// NewNetworkHandler creates a new handler with the given repository
func NewNetworkHandler(repo NetworkRepository) *NetworkHandler {
	return &NetworkHandler{repo: repo}
}

// ErrorResponse is the JSON error response structure
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// TownsResponse is the JSON response for GET /api/towns
type TownsResponse struct {
	Towns []models.Town `json:"towns"`
	Count int           `json:"count"`
}

// ConnectionsResponse is the JSON response for GET /api/connections
type ConnectionsResponse struct {
	Connections []models.Connection `json:"connections"`
	Count       int                 `json:"count"`
}

// TimetableResponse is the JSON response for GET /api/timetable
type TimetableResponse struct {
	Town    string                   `json:"town"`
	Changes []models.TimetableChange `json:"changes"`
	Count   int                      `json:"count"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string, err error) {
	resp := ErrorResponse{Error: msg}
	if err != nil {
		log.Error(msg, "err", err)
		resp.Details = map[string]interface{}{"internal": err.Error()}
	}
	writeJSON(w, status, resp)
}

// GetTowns handles GET /api/towns
func (h *NetworkHandler) GetTowns(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	towns, err := h.repo.GetTowns(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to retrieve towns", err)
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=300")
	writeJSON(w, http.StatusOK, TownsResponse{Towns: towns, Count: len(towns)})
}

// GetConnections handles GET /api/connections
// Optional query parameters: source, destination
func (h *NetworkHandler) GetConnections(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	filter := models.ConnectionFilter{
		Source:      r.URL.Query().Get("source"),
		Destination: r.URL.Query().Get("destination"),
	}

	conns, err := h.repo.GetConnections(ctx, filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to retrieve connections", err)
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=300")
	writeJSON(w, http.StatusOK, ConnectionsResponse{Connections: conns, Count: len(conns)})
}

// GetTimetable handles GET /api/timetable?town=
func (h *NetworkHandler) GetTimetable(w http.ResponseWriter, r *http.Request) {
	town := r.URL.Query().Get("town")
	if town == "" {
		writeError(w, http.StatusBadRequest, "town parameter is required", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	changes, err := h.repo.GetTimetable(ctx, town)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to retrieve timetable changes", err)
		return
	}

	writeJSON(w, http.StatusOK, TimetableResponse{Town: town, Changes: changes, Count: len(changes)})
}
