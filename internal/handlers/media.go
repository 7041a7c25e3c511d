package handlers

import (
	"net/http"

	"github.com/nexcodes/softec-25-sub000/internal/middleware"
	"github.com/nexcodes/softec-25-sub000/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// MediaHandler handles media-related HTTP requests
type MediaHandler struct {
	mediaService *services.MediaService
}

// NewMediaHandler creates a new media handler
func NewMediaHandler(mediaService *services.MediaService) *MediaHandler {
	return &MediaHandler{
		mediaService: mediaService,
	}
}

// CreateUploadURL handles POST /api/v1/crimes/{crime_id}/media/upload-url
func (h *MediaHandler) CreateUploadURL(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	crimeID := chi.URLParam(r, "crime_id")

	var req services.UploadRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.mediaService.CreateUploadURL(ctx, userID, crimeID, req)
	if err != nil {
		respondServiceError(w, r, err, "Failed to generate upload URL")
		return
	}

	log.Info().
		Str("crime_id", crimeID).
		Str("media_id", resp.MediaID).
		Msg("Upload URL generated")

	respondJSON(w, http.StatusOK, resp)
}

// AttachMedia handles POST /api/v1/crimes/{crime_id}/media
func (h *MediaHandler) AttachMedia(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	crimeID := chi.URLParam(r, "crime_id")

	var req services.AttachMediaRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	media, err := h.mediaService.AttachMedia(ctx, userID, crimeID, req)
	if err != nil {
		respondServiceError(w, r, err, "Failed to attach media")
		return
	}

	log.Info().
		Str("crime_id", crimeID).
		Str("media_id", media.ID).
		Str("type", string(media.Type)).
		Msg("Media attached")

	respondJSON(w, http.StatusCreated, media)
}

// ListMedia handles GET /api/v1/crimes/{crime_id}/media
func (h *MediaHandler) ListMedia(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	media, err := h.mediaService.ListMedia(ctx, middleware.GetUserID(ctx), chi.URLParam(r, "crime_id"))
	if err != nil {
		respondServiceError(w, r, err, "Failed to list media")
		return
	}
	respondJSON(w, http.StatusOK, media)
}
