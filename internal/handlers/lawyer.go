package handlers

import (
	"net/http"

	"github.com/nexcodes/softec-25-sub000/internal/middleware"
	"github.com/nexcodes/softec-25-sub000/internal/repository"
	"github.com/nexcodes/softec-25-sub000/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// LawyerHandler handles lawyer profile and directory HTTP requests
type LawyerHandler struct {
	lawyerService *services.LawyerService
}

// NewLawyerHandler creates a new lawyer handler
func NewLawyerHandler(lawyerService *services.LawyerService) *LawyerHandler {
	return &LawyerHandler{
		lawyerService: lawyerService,
	}
}

// SubmitProfile handles POST /api/v1/lawyers/profile. Answers 201 when the
// caller was promoted and 200 when an existing profile was updated.
func (h *LawyerHandler) SubmitProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req services.LawyerProfileInput
	if !decodeJSON(w, r, &req) {
		return
	}

	lawyer, created, err := h.lawyerService.SubmitOrUpdateProfile(ctx, userID, req)
	if err != nil {
		respondServiceError(w, r, err, "Failed to submit lawyer profile")
		return
	}

	if created {
		log.Info().
			Str("user_id", userID).
			Str("lawyer_id", lawyer.ID).
			Msg("User promoted to lawyer")
		respondJSON(w, http.StatusCreated, lawyer)
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("lawyer_id", lawyer.ID).
		Msg("Lawyer profile updated")
	respondJSON(w, http.StatusOK, lawyer)
}

// GetOwnProfile handles GET /api/v1/lawyers/profile
func (h *LawyerHandler) GetOwnProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lawyer, err := h.lawyerService.GetProfile(ctx, middleware.GetUserID(ctx))
	if err != nil {
		respondServiceError(w, r, err, "Failed to get lawyer profile")
		return
	}
	respondJSON(w, http.StatusOK, lawyer)
}

// SearchLawyers handles GET /api/v1/lawyers
func (h *LawyerHandler) SearchLawyers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := repository.LawyerFilter{
		Query:          query.Get("q"),
		Specialization: query.Get("specialization"),
		VerifiedOnly:   query.Get("verified") == "true",
		Page:           parsePage(r),
	}

	lawyers, total, err := h.lawyerService.SearchLawyers(r.Context(), filter)
	if err != nil {
		respondServiceError(w, r, err, "Failed to search lawyers")
		return
	}

	page := filter.Page.Normalized()
	respondJSON(w, http.StatusOK, ListResponse{
		Items:  lawyers,
		Total:  total,
		Limit:  page.Limit,
		Offset: page.Offset,
	})
}

// GetLawyer handles GET /api/v1/lawyers/{lawyer_id}
func (h *LawyerHandler) GetLawyer(w http.ResponseWriter, r *http.Request) {
	lawyer, err := h.lawyerService.GetLawyer(r.Context(), chi.URLParam(r, "lawyer_id"))
	if err != nil {
		respondServiceError(w, r, err, "Failed to get lawyer")
		return
	}
	respondJSON(w, http.StatusOK, lawyer)
}

// VerifyLawyerRequest represents the request body for verifying a lawyer
type VerifyLawyerRequest struct {
	Verified bool `json:"verified"`
}

// VerifyLawyer handles PATCH /api/v1/lawyers/{lawyer_id}/verify
func (h *LawyerHandler) VerifyLawyer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	adminID := middleware.GetUserID(ctx)

	var req VerifyLawyerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	lawyer, err := h.lawyerService.VerifyLawyer(ctx, adminID, chi.URLParam(r, "lawyer_id"), req.Verified)
	if err != nil {
		respondServiceError(w, r, err, "Failed to verify lawyer")
		return
	}

	log.Info().
		Str("admin_id", adminID).
		Str("lawyer_id", lawyer.ID).
		Bool("verified", lawyer.IsVerified).
		Msg("Lawyer verification changed")

	respondJSON(w, http.StatusOK, lawyer)
}
