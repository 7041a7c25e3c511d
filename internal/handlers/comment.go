package handlers

import (
	"net/http"

	"github.com/nexcodes/softec-25-sub000/internal/middleware"
	"github.com/nexcodes/softec-25-sub000/internal/models"
	"github.com/nexcodes/softec-25-sub000/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// CommentHandler handles comment HTTP requests
type CommentHandler struct {
	commentService *services.CommentService
	hub            *services.FeedHub
	push           *services.PushService
}

// NewCommentHandler creates a new comment handler
func NewCommentHandler(commentService *services.CommentService, hub *services.FeedHub, push *services.PushService) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
		hub:            hub,
		push:           push,
	}
}

// AddCommentRequest represents the request body for adding a comment
type AddCommentRequest struct {
	Content string `json:"content"`
}

// PartitionedComments is the grouped comment listing
type PartitionedComments struct {
	Pinned []models.Comment `json:"pinned"`
	Recent []models.Comment `json:"recent"`
}

// AddComment handles POST /api/v1/crimes/{crime_id}/comments
func (h *CommentHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	crimeID := chi.URLParam(r, "crime_id")

	var req AddCommentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	comment, err := h.commentService.AddComment(ctx, userID, crimeID, req.Content)
	if err != nil {
		respondServiceError(w, r, err, "Failed to add comment")
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("crime_id", crimeID).
		Str("comment_id", comment.ID).
		Msg("Comment added")

	h.hub.Publish(crimeID, services.EventCommentAdded, comment)
	notifyReporter(h.push, crimeID, userID, "New comment on your report", comment.Content)

	respondJSON(w, http.StatusCreated, comment)
}

// ListComments handles GET /api/v1/crimes/{crime_id}/comments.
// ?partition=true splits pinned from recent comments.
func (h *CommentHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	comments, err := h.commentService.ListComments(ctx, middleware.GetUserID(ctx), chi.URLParam(r, "crime_id"))
	if err != nil {
		respondServiceError(w, r, err, "Failed to list comments")
		return
	}

	if r.URL.Query().Get("partition") == "true" {
		pinned, recent := models.PartitionComments(comments)
		respondJSON(w, http.StatusOK, PartitionedComments{Pinned: pinned, Recent: recent})
		return
	}
	respondJSON(w, http.StatusOK, comments)
}

// PinCommentRequest represents the request body for pinning a comment
type PinCommentRequest struct {
	Pinned bool `json:"pinned"`
}

// PinComment handles PATCH /api/v1/comments/{comment_id}/pin
func (h *CommentHandler) PinComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	adminID := middleware.GetUserID(ctx)

	var req PinCommentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	comment, err := h.commentService.PinComment(ctx, adminID, chi.URLParam(r, "comment_id"), req.Pinned)
	if err != nil {
		respondServiceError(w, r, err, "Failed to pin comment")
		return
	}

	log.Info().
		Str("admin_id", adminID).
		Str("comment_id", comment.ID).
		Bool("pinned", comment.Pinned).
		Msg("Comment pin changed")

	respondJSON(w, http.StatusOK, comment)
}
