package repository

import (
	"context"
	"fmt"

	"github.com/nexcodes/softec-25-sub000/internal/apperr"
	"github.com/nexcodes/softec-25-sub000/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VoteRepository handles database operations for votes. The (user_id,
// crime_id) unique index is what keeps one vote per user per crime.
type VoteRepository struct {
	db *gorm.DB
}

// NewVoteRepository creates a new vote repository
func NewVoteRepository(db *gorm.DB) *VoteRepository {
	return &VoteRepository{db: db}
}

// Find returns the vote of userID on crimeID, or nil when there is none
func (r *VoteRepository) Find(ctx context.Context, userID, crimeID string) (*models.Vote, error) {
	var votes []models.Vote
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND crime_id = ?", userID, crimeID).
		Limit(1).
		Find(&votes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get vote: %w", err)
	}
	if len(votes) == 0 {
		return nil, nil
	}
	return &votes[0], nil
}

// Create inserts a vote. A concurrent insert for the same pair fails with a
// Conflict error instead of producing a second row.
func (r *VoteRepository) Create(ctx context.Context, vote *models.Vote) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(vote).Error
	if err != nil {
		return fmt.Errorf("failed to create vote: %w", translate(err, "vote not found", "vote already cast for this crime"))
	}
	return nil
}

// UpdateValue flips an existing vote in place
func (r *VoteRepository) UpdateValue(ctx context.Context, vote *models.Vote, value bool) error {
	result := r.db.WithContext(ctx).Model(vote).Update("value", value)
	if result.Error != nil {
		return fmt.Errorf("failed to update vote: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("vote not found")
	}
	return nil
}

// Delete removes a vote by ID
func (r *VoteRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Vote{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete vote: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("vote not found")
	}
	return nil
}

// ListByCrime returns every vote on a crime
func (r *VoteRepository) ListByCrime(ctx context.Context, crimeID string) ([]models.Vote, error) {
	var votes []models.Vote
	if err := r.db.WithContext(ctx).Where("crime_id = ?", crimeID).Find(&votes).Error; err != nil {
		return nil, fmt.Errorf("failed to list votes: %w", err)
	}
	return votes, nil
}
