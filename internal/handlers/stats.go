package handlers

import (
	"net/http"

	"github.com/nexcodes/softec-25-sub000/internal/services"
)

// StatsHandler serves the analytics dashboard
type StatsHandler struct {
	statsService *services.StatsService
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(statsService *services.StatsService) *StatsHandler {
	return &StatsHandler{
		statsService: statsService,
	}
}

// Summary handles GET /api/v1/stats
func (h *StatsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.statsService.Summary(r.Context())
	if err != nil {
		respondServiceError(w, r, err, "Failed to load stats")
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

// MapPoints handles GET /api/v1/stats/map
func (h *StatsHandler) MapPoints(w http.ResponseWriter, r *http.Request) {
	points, err := h.statsService.MapPoints(r.Context())
	if err != nil {
		respondServiceError(w, r, err, "Failed to load map points")
		return
	}
	respondJSON(w, http.StatusOK, points)
}
