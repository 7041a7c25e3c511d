package handlers

import (
	"net/http"

	"github.com/nexcodes/softec-25-sub000/internal/middleware"
	"github.com/nexcodes/softec-25-sub000/internal/models"
	"github.com/nexcodes/softec-25-sub000/internal/repository"
	"github.com/nexcodes/softec-25-sub000/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// CrimeHandler handles crime report HTTP requests
type CrimeHandler struct {
	crimeService *services.CrimeService
	hub          *services.FeedHub
	push         *services.PushService
}

// NewCrimeHandler creates a new crime handler
func NewCrimeHandler(crimeService *services.CrimeService, hub *services.FeedHub, push *services.PushService) *CrimeHandler {
	return &CrimeHandler{
		crimeService: crimeService,
		hub:          hub,
		push:         push,
	}
}

// ReportCrime handles POST /api/v1/crimes
func (h *CrimeHandler) ReportCrime(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req services.ReportCrimeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	crime, err := h.crimeService.Report(ctx, userID, req)
	if err != nil {
		respondServiceError(w, r, err, "Failed to report crime")
		return
	}

	log.Info().
		Str("crime_id", crime.ID).
		Str("crime_type", string(crime.CrimeType)).
		Bool("anonymous", crime.UserID == nil).
		Msg("Crime reported")

	respondJSON(w, http.StatusCreated, crime)
}

// GetCrime handles GET /api/v1/crimes/{crime_id}
func (h *CrimeHandler) GetCrime(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	crime, err := h.crimeService.Get(ctx, middleware.GetUserID(ctx), chi.URLParam(r, "crime_id"))
	if err != nil {
		respondServiceError(w, r, err, "Failed to get crime")
		return
	}
	respondJSON(w, http.StatusOK, crime)
}

// ListCrimes handles GET /api/v1/crimes
func (h *CrimeHandler) ListCrimes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	filter := repository.CrimeFilter{
		Query:        query.Get("q"),
		CrimeType:    models.CrimeType(query.Get("crime_type")),
		Verification: models.Verification(query.Get("verification")),
		Page:         parsePage(r),
	}

	crimes, total, err := h.crimeService.List(ctx, middleware.GetUserID(ctx), filter)
	if err != nil {
		respondServiceError(w, r, err, "Failed to list crimes")
		return
	}

	page := filter.Page.Normalized()
	respondJSON(w, http.StatusOK, ListResponse{
		Items:  crimes,
		Total:  total,
		Limit:  page.Limit,
		Offset: page.Offset,
	})
}

// UpdateCrime handles PATCH /api/v1/crimes/{crime_id}
func (h *CrimeHandler) UpdateCrime(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req services.UpdateCrimeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	crime, err := h.crimeService.Update(ctx, userID, chi.URLParam(r, "crime_id"), req)
	if err != nil {
		respondServiceError(w, r, err, "Failed to update crime")
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("crime_id", crime.ID).
		Msg("Crime updated")

	respondJSON(w, http.StatusOK, crime)
}

// ModerateCrime handles PATCH /api/v1/crimes/{crime_id}/moderation
func (h *CrimeHandler) ModerateCrime(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	adminID := middleware.GetUserID(ctx)

	var req services.ModerateCrimeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	crime, err := h.crimeService.Moderate(ctx, adminID, chi.URLParam(r, "crime_id"), req)
	if err != nil {
		respondServiceError(w, r, err, "Failed to moderate crime")
		return
	}

	log.Info().
		Str("admin_id", adminID).
		Str("crime_id", crime.ID).
		Str("verification", string(crime.Verification)).
		Bool("is_live", crime.IsLive).
		Msg("Crime moderated")

	h.hub.Publish(crime.ID, services.EventCrimeModerated, map[string]interface{}{
		"verification": crime.Verification,
		"is_live":      crime.IsLive,
	})
	notifyReporter(h.push, crime.ID, adminID,
		"Report reviewed",
		"\""+crime.Title+"\" is now "+string(crime.Verification))

	respondJSON(w, http.StatusOK, crime)
}
