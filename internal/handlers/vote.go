package handlers

import (
	"net/http"

	"github.com/nexcodes/softec-25-sub000/internal/apperr"
	"github.com/nexcodes/softec-25-sub000/internal/middleware"
	"github.com/nexcodes/softec-25-sub000/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// VoteHandler handles vote HTTP requests
type VoteHandler struct {
	voteService *services.VoteService
	hub         *services.FeedHub
}

// NewVoteHandler creates a new vote handler
func NewVoteHandler(voteService *services.VoteService, hub *services.FeedHub) *VoteHandler {
	return &VoteHandler{
		voteService: voteService,
		hub:         hub,
	}
}

// CastVoteRequest represents the request body for casting a vote.
// true is an upvote, false a downvote.
type CastVoteRequest struct {
	Value *bool `json:"value"`
}

// CastVote handles POST /api/v1/crimes/{crime_id}/votes
func (h *VoteHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	crimeID := chi.URLParam(r, "crime_id")

	var req CastVoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Value == nil {
		respondServiceError(w, r, apperr.Required("value"), "Invalid vote")
		return
	}

	result, err := h.voteService.CastVote(ctx, userID, crimeID, *req.Value)
	if err != nil {
		respondServiceError(w, r, err, "Failed to cast vote")
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("crime_id", crimeID).
		Str("status", string(result.Status)).
		Msg("Vote cast")

	h.hub.Publish(crimeID, services.EventVoteStats, result.VoteStats)

	respondJSON(w, http.StatusOK, result)
}
