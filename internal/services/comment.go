package services

import (
	"context"
	"strings"
	"time"

	"github.com/nexcodes/softec-25-sub000/internal/apperr"
	"github.com/nexcodes/softec-25-sub000/internal/metrics"
	"github.com/nexcodes/softec-25-sub000/internal/models"
	"github.com/nexcodes/softec-25-sub000/internal/repository"
)

const maxCommentLength = 5000

// CommentService handles the append-only comment log of each crime
type CommentService struct {
	commentRepo *repository.CommentRepository
	crimeRepo   *repository.CrimeRepository
	userRepo    *repository.UserRepository
	now         func() time.Time
}

// NewCommentService creates a new comment service
func NewCommentService(
	commentRepo *repository.CommentRepository,
	crimeRepo *repository.CrimeRepository,
	userRepo *repository.UserRepository,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		crimeRepo:   crimeRepo,
		userRepo:    userRepo,
		now:         time.Now,
	}
}

// AddComment appends a comment by userID to crimeID, stamped with server time.
// The returned comment carries its author.
func (s *CommentService) AddComment(ctx context.Context, userID, crimeID, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.Required("content")
	}
	if len(content) > maxCommentLength {
		return nil, apperr.Validation("content", "content is too long")
	}
	if userID == "" {
		return nil, apperr.Unauthorized("authentication required to comment")
	}

	if _, err := visibleCrime(ctx, s.crimeRepo, s.userRepo, userID, crimeID); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		CrimeID:   crimeID,
		UserID:    &user.ID,
		Content:   content,
		CreatedAt: s.now().UTC(),
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	comment.User = user
	metrics.CommentsAdded.Inc()

	return comment, nil
}

// ListComments returns a crime's comments newest first. viewerID may be empty.
func (s *CommentService) ListComments(ctx context.Context, viewerID, crimeID string) ([]models.Comment, error) {
	if _, err := visibleCrime(ctx, s.crimeRepo, s.userRepo, viewerID, crimeID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByCrime(ctx, crimeID)
}

// PinComment sets the pinned flag. Only admins may pin.
func (s *CommentService) PinComment(ctx context.Context, actorID, commentID string, pinned bool) (*models.Comment, error) {
	if err := requireAdmin(ctx, s.userRepo, actorID); err != nil {
		return nil, err
	}
	if err := s.commentRepo.SetPinned(ctx, commentID, pinned); err != nil {
		return nil, err
	}
	return s.commentRepo.GetByID(ctx, commentID)
}
