package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/nexcodes/softec-25-sub000/internal/apperr"
	"github.com/nexcodes/softec-25-sub000/internal/middleware"
	"github.com/nexcodes/softec-25-sub000/internal/repository"
	"github.com/nexcodes/softec-25-sub000/internal/services"

	"github.com/rs/zerolog/log"
)

const (
	maxBodyBytes = 1 << 20
	pushTimeout  = 10 * time.Second
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
	Field string `json:"field,omitempty"`
}

// ListResponse wraps one page of a listing
type ListResponse struct {
	Items  interface{} `json:"items"`
	Total  int64       `json:"total"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	kind := apperr.KindInternal
	switch statusCode {
	case http.StatusBadRequest:
		kind = apperr.KindValidation
	case http.StatusUnauthorized:
		kind = apperr.KindUnauthorized
	case http.StatusNotFound:
		kind = apperr.KindNotFound
	}
	respondJSON(w, statusCode, ErrorResponse{Error: message, Kind: string(kind)})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

// respondServiceError maps a service error onto its status and body.
// Unexpected errors are logged and hidden behind a generic message.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		log.Error().Err(err).Str("path", r.URL.Path).Msg(msg)
		respondJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error: "Internal server error",
			Kind:  string(apperr.KindInternal),
		})
		return
	}

	switch appErr.Kind {
	case apperr.KindInconsistentState:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("Inconsistent state")
	case apperr.KindInternal:
		log.Error().Err(err).Str("path", r.URL.Path).Msg(msg)
	default:
		log.Debug().
			Err(err).
			Str("path", r.URL.Path).
			Str("role", string(middleware.GetRole(r.Context()))).
			Msg(msg)
	}

	respondJSON(w, appErr.StatusCode(), ErrorResponse{
		Error: appErr.Message,
		Kind:  string(appErr.Kind),
		Field: appErr.Field,
	})
}

// decodeJSON reads a JSON body into dst, answering 400 itself on failure
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

// parsePage reads limit and offset query parameters; bad values fall back to defaults
func parsePage(r *http.Request) repository.Page {
	var page repository.Page
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil {
			page.Limit = parsedLimit
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if parsedOffset, err := strconv.Atoi(offsetStr); err == nil {
			page.Offset = parsedOffset
		}
	}
	return page
}

// notifyReporter sends a push in the background so the response is not held
// up by APNs
func notifyReporter(push *services.PushService, crimeID, actorID, title, body string) {
	if !push.Enabled() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
		defer cancel()
		push.NotifyReporter(ctx, crimeID, actorID, title, body)
	}()
}
