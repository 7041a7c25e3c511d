package repository

import (
	"context"
	"fmt"

	"github.com/nexcodes/softec-25-sub000/internal/models"

	"gorm.io/gorm"
)

// MediaRepository handles database operations for crime media
type MediaRepository struct {
	db *gorm.DB
}

// NewMediaRepository creates a new media repository
func NewMediaRepository(db *gorm.DB) *MediaRepository {
	return &MediaRepository{db: db}
}

// Create attaches a media record to a crime
func (r *MediaRepository) Create(ctx context.Context, media *models.Media) error {
	if err := r.db.WithContext(ctx).Create(media).Error; err != nil {
		return fmt.Errorf("failed to create media: %w", translate(err, "crime not found", "media already attached"))
	}
	return nil
}

// ListByCrime returns the media of a crime in upload order
func (r *MediaRepository) ListByCrime(ctx context.Context, crimeID string) ([]models.Media, error) {
	media := make([]models.Media, 0)
	err := r.db.WithContext(ctx).
		Where("crime_id = ?", crimeID).
		Order("created_at ASC").
		Find(&media).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list media: %w", err)
	}
	return media, nil
}
