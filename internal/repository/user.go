package repository

import (
	"context"
	"fmt"

	"github.com/nexcodes/softec-25-sub000/internal/apperr"
	"github.com/nexcodes/softec-25-sub000/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository handles database operations for users
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// WithTx returns a copy bound to a transaction
func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{db: tx}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(user).Error
	if err != nil {
		return fmt.Errorf("failed to create user: %w", translate(err, "user not found", "email already registered"))
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", translate(err, "user not found", ""))
	}
	return &user, nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", translate(err, "user not found", ""))
	}
	return &user, nil
}

// UpdateRole sets the role of a user
func (r *UserRepository) UpdateRole(ctx context.Context, userID string, role models.Role) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("role", role)
	if result.Error != nil {
		return fmt.Errorf("failed to update role: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("user not found")
	}
	return nil
}

// UpdatePushToken updates the push token for a user
func (r *UserRepository) UpdatePushToken(ctx context.Context, userID string, pushToken *string) error {
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("push_token", pushToken).Error
	if err != nil {
		return fmt.Errorf("failed to update push token: %w", err)
	}
	return nil
}
