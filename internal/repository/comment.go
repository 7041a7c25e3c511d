package repository

import (
	"context"
	"fmt"

	"github.com/nexcodes/softec-25-sub000/internal/apperr"
	"github.com/nexcodes/softec-25-sub000/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommentRepository handles database operations for comments
type CommentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// Create appends a comment
func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(comment).Error; err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

// GetByID retrieves a comment with its author
func (r *CommentRepository) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("User").Where("id = ?", id).First(&comment).Error; err != nil {
		return nil, fmt.Errorf("failed to get comment: %w", translate(err, "comment not found", ""))
	}
	return &comment, nil
}

// ListByCrime returns the comments of a crime, newest first
func (r *CommentRepository) ListByCrime(ctx context.Context, crimeID string) ([]models.Comment, error) {
	comments := make([]models.Comment, 0)
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("crime_id = ?", crimeID).
		Order("created_at DESC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

// SetPinned updates the pinned flag of a comment
func (r *CommentRepository) SetPinned(ctx context.Context, id string, pinned bool) error {
	result := r.db.WithContext(ctx).Model(&models.Comment{}).Where("id = ?", id).Update("pinned", pinned)
	if result.Error != nil {
		return fmt.Errorf("failed to pin comment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("comment not found")
	}
	return nil
}
