package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/nexcodes/softec-25-sub000/internal/apperr"
	"github.com/nexcodes/softec-25-sub000/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LawyerFilter narrows the lawyer directory
type LawyerFilter struct {
	Query          string
	Specialization string
	VerifiedOnly   bool
	Page           Page
}

// LawyerRepository handles database operations for lawyer profiles
type LawyerRepository struct {
	db *gorm.DB
}

// NewLawyerRepository creates a new lawyer repository
func NewLawyerRepository(db *gorm.DB) *LawyerRepository {
	return &LawyerRepository{db: db}
}

// WithTx returns a copy bound to a transaction
func (r *LawyerRepository) WithTx(tx *gorm.DB) *LawyerRepository {
	return &LawyerRepository{db: tx}
}

// Create inserts a lawyer profile
func (r *LawyerRepository) Create(ctx context.Context, lawyer *models.Lawyer) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(lawyer).Error
	if err != nil {
		return fmt.Errorf("failed to create lawyer: %w",
			translate(err, "lawyer not found", "lawyer profile or license number already registered"))
	}
	return nil
}

// FindByUserID returns the profile of a user, or nil when there is none
func (r *LawyerRepository) FindByUserID(ctx context.Context, userID string) (*models.Lawyer, error) {
	var lawyers []models.Lawyer
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Limit(1).Find(&lawyers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get lawyer by user id: %w", err)
	}
	if len(lawyers) == 0 {
		return nil, nil
	}
	return &lawyers[0], nil
}

// GetByID retrieves a lawyer with the owning user
func (r *LawyerRepository) GetByID(ctx context.Context, id string) (*models.Lawyer, error) {
	var lawyer models.Lawyer
	if err := r.db.WithContext(ctx).Preload("User").Where("id = ?", id).First(&lawyer).Error; err != nil {
		return nil, fmt.Errorf("failed to get lawyer: %w", translate(err, "lawyer not found", ""))
	}
	return &lawyer, nil
}

// Update applies a column map to a profile
func (r *LawyerRepository) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).Model(&models.Lawyer{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update lawyer: %w",
			translate(result.Error, "lawyer not found", "license number already registered"))
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("lawyer not found")
	}
	return nil
}

// Search lists lawyers by name, specialization or description
func (r *LawyerRepository) Search(ctx context.Context, filter LawyerFilter) ([]models.Lawyer, int64, error) {
	page := filter.Page.Normalized()

	var total int64
	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count lawyers: %w", err)
	}

	lawyers := make([]models.Lawyer, 0)
	err := r.filtered(ctx, filter).
		Preload("User").
		Order("is_verified DESC, experience DESC, legal_name ASC").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&lawyers).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search lawyers: %w", err)
	}
	return lawyers, total, nil
}

func (r *LawyerRepository) filtered(ctx context.Context, filter LawyerFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.Lawyer{})
	if filter.VerifiedOnly {
		query = query.Where("is_verified = ?", true)
	}
	if s := strings.TrimSpace(filter.Specialization); s != "" {
		query = query.Where("LOWER(specialization) = ?", strings.ToLower(s))
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("(LOWER(legal_name) LIKE ? OR LOWER(specialization) LIKE ? OR LOWER(description) LIKE ?)", like, like, like)
	}
	return query
}
