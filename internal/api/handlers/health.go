package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/dominic0df/2023-amse/internal/api/models"
)

// HealthRepository defines the interface for health operations
type HealthRepository interface {
	Ping(ctx context.Context) error
	GetLatestRun(ctx context.Context, stage string) (*models.StageRun, error)
}

// HealthHandler handles HTTP requests for service and data health
type HealthHandler struct {
	repo HealthRepository
	now  func() time.Time
}

// NewHealthHandler creates a new handler with the given repository
func NewHealthHandler(repo HealthRepository) *HealthHandler {
	return &HealthHandler{repo: repo, now: time.Now}
}

// DataFreshnessResponse is the JSON response for GET /api/health/data
type DataFreshnessResponse struct {
	Stages      []models.DataFreshness `json:"stages"`
	LastChecked time.Time              `json:"lastChecked"`
}

// GetHealth handles GET /health with a database connectivity test
func (h *HealthHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.repo.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "error",
			"database":  "disconnected",
			"timestamp": h.now().UTC(),
			"error":     err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"database":  "connected",
		"timestamp": h.now().UTC(),
	})
}

// GetDataFreshness handles GET /api/health/data
// Returns when each pipeline stage last completed
func (h *HealthHandler) GetDataFreshness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	now := h.now().UTC()
	stages := make([]models.DataFreshness, 0, len(models.AllStages()))
	for _, stage := range models.AllStages() {
		run, err := h.repo.GetLatestRun(ctx, stage)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to get data freshness", err)
			return
		}
		stages = append(stages, models.Freshness(stage, run, now))
	}

	writeJSON(w, http.StatusOK, DataFreshnessResponse{Stages: stages, LastChecked: now})
}
