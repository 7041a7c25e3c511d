package services

import (
	"context"

	"github.com/nexcodes/softec-25-sub000/internal/apperr"
	"github.com/nexcodes/softec-25-sub000/internal/metrics"
	"github.com/nexcodes/softec-25-sub000/internal/models"
	"github.com/nexcodes/softec-25-sub000/internal/repository"
)

// VoteStatus is the outcome of a cast
type VoteStatus string

const (
	VoteRecorded VoteStatus = "recorded"
	VoteRemoved  VoteStatus = "removed"
	VoteUpdated  VoteStatus = "updated"
)

// CastVoteResult carries the transition outcome and the crime's fresh stats
type CastVoteResult struct {
	Status    VoteStatus       `json:"status"`
	Vote      *models.Vote     `json:"vote,omitempty"`
	VoteStats models.VoteStats `json:"vote_stats"`
}

// VoteService applies the per-(user, crime) vote state machine:
// no vote -> cast(v) -> voted(v) -> cast(v) -> no vote, voted(v) -> cast(!v) -> voted(!v).
type VoteService struct {
	voteRepo  *repository.VoteRepository
	crimeRepo *repository.CrimeRepository
	userRepo  *repository.UserRepository
}

// NewVoteService creates a new vote service
func NewVoteService(
	voteRepo *repository.VoteRepository,
	crimeRepo *repository.CrimeRepository,
	userRepo *repository.UserRepository,
) *VoteService {
	return &VoteService{
		voteRepo:  voteRepo,
		crimeRepo: crimeRepo,
		userRepo:  userRepo,
	}
}

// CastVote records, flips or removes the vote of userID on crimeID
func (s *VoteService) CastVote(ctx context.Context, userID, crimeID string, value bool) (*CastVoteResult, error) {
	if userID == "" {
		return nil, apperr.Unauthorized("authentication required to vote")
	}
	if _, err := visibleCrime(ctx, s.crimeRepo, s.userRepo, userID, crimeID); err != nil {
		return nil, err
	}
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	existing, err := s.voteRepo.Find(ctx, userID, crimeID)
	if err != nil {
		return nil, err
	}

	result := &CastVoteResult{}
	switch {
	case existing == nil:
		vote := &models.Vote{UserID: userID, CrimeID: crimeID, Value: value}
		if err := s.voteRepo.Create(ctx, vote); err != nil {
			return nil, err
		}
		result.Status = VoteRecorded
		result.Vote = vote

	case existing.Value == value:
		if err := s.voteRepo.Delete(ctx, existing.ID); err != nil {
			return nil, err
		}
		result.Status = VoteRemoved

	default:
		if err := s.voteRepo.UpdateValue(ctx, existing, value); err != nil {
			return nil, err
		}
		existing.Value = value
		result.Status = VoteUpdated
		result.Vote = existing
	}
	metrics.VotesCast.WithLabelValues(string(result.Status)).Inc()

	stats, err := s.Stats(ctx, crimeID)
	if err != nil {
		return nil, err
	}
	result.VoteStats = stats
	return result, nil
}

// Stats projects the current vote stats of a crime
func (s *VoteService) Stats(ctx context.Context, crimeID string) (models.VoteStats, error) {
	votes, err := s.voteRepo.ListByCrime(ctx, crimeID)
	if err != nil {
		return models.VoteStats{}, err
	}
	return models.ComputeVoteStats(votes), nil
}
