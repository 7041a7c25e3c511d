package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nexcodes/softec-25-sub000/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CrimeFilter narrows crime listings
type CrimeFilter struct {
	Query         string
	CrimeType     models.CrimeType
	Verification  models.Verification
	IncludeHidden bool
	Page          Page
}

// CrimeRepository handles database operations for crime reports
type CrimeRepository struct {
	db *gorm.DB
}

// NewCrimeRepository creates a new crime repository
func NewCrimeRepository(db *gorm.DB) *CrimeRepository {
	return &CrimeRepository{db: db}
}

// Create creates a new crime report
func (r *CrimeRepository) Create(ctx context.Context, crime *models.Crime) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(crime).Error; err != nil {
		return fmt.Errorf("failed to create crime: %w", err)
	}
	return nil
}

// GetByID retrieves a crime without its children
func (r *CrimeRepository) GetByID(ctx context.Context, id string) (*models.Crime, error) {
	var crime models.Crime
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&crime).Error; err != nil {
		return nil, fmt.Errorf("failed to get crime: %w", translate(err, "crime not found", ""))
	}
	return &crime, nil
}

// GetDetail retrieves a crime with media, comments (newest first), votes and
// the reporting user, and projects its vote stats.
func (r *CrimeRepository) GetDetail(ctx context.Context, id string) (*models.Crime, error) {
	var crime models.Crime
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Media", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Comments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
		Preload("Comments.User").
		Preload("Votes").
		Where("id = ?", id).
		First(&crime).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get crime: %w", translate(err, "crime not found", ""))
	}
	crime.VoteStats = models.ComputeVoteStats(crime.Votes)
	return &crime, nil
}

// List retrieves crimes matching the filter, newest incident first, with votes
// and media loaded and vote stats projected.
func (r *CrimeRepository) List(ctx context.Context, filter CrimeFilter) ([]models.Crime, int64, error) {
	page := filter.Page.Normalized()

	var total int64
	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count crimes: %w", err)
	}

	crimes := make([]models.Crime, 0)
	err := r.filtered(ctx, filter).
		Preload("Votes").
		Preload("Media").
		Order("incident_at DESC").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&crimes).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list crimes: %w", err)
	}

	models.ApplyVoteStats(crimes)
	return crimes, total, nil
}

func (r *CrimeRepository) filtered(ctx context.Context, filter CrimeFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.Crime{})
	if !filter.IncludeHidden {
		query = query.Where("is_live = ?", true)
	}
	if filter.CrimeType != "" {
		query = query.Where("crime_type = ?", filter.CrimeType)
	}
	if filter.Verification != "" {
		query = query.Where("verification = ?", filter.Verification)
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("(LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(location) LIKE ?)", like, like, like)
	}
	return query
}

// Update applies a column map to one crime
func (r *CrimeRepository) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now()
	err := r.db.WithContext(ctx).Model(&models.Crime{}).Where("id = ?", id).Updates(updates).Error
	if err != nil {
		return fmt.Errorf("failed to update crime: %w", err)
	}
	return nil
}
