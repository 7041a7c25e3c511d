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

// incidents may be stamped slightly ahead of the server clock
const incidentClockSkew = time.Minute

// ReportCrimeRequest represents a new crime report
type ReportCrimeRequest struct {
	Title       string           `json:"title" validate:"required,max=200"`
	Description string           `json:"description" validate:"required,max=10000"`
	Location    string           `json:"location" validate:"required,max=255"`
	Latitude    *float64         `json:"latitude" validate:"omitempty,min=-90,max=90"`
	Longitude   *float64         `json:"longitude" validate:"omitempty,min=-180,max=180"`
	CrimeType   models.CrimeType `json:"crime_type" validate:"required,crimetype"`
	IncidentAt  time.Time        `json:"incident_at"`
	Anonymous   bool             `json:"anonymous"`
}

// UpdateCrimeRequest is a reporter's partial edit. Nil fields are left alone.
type UpdateCrimeRequest struct {
	Title       *string           `json:"title" validate:"omitnil,min=1,max=200"`
	Description *string           `json:"description" validate:"omitnil,min=1,max=10000"`
	Location    *string           `json:"location" validate:"omitnil,min=1,max=255"`
	Latitude    *float64          `json:"latitude" validate:"omitempty,min=-90,max=90"`
	Longitude   *float64          `json:"longitude" validate:"omitempty,min=-180,max=180"`
	CrimeType   *models.CrimeType `json:"crime_type" validate:"omitnil,crimetype"`
	IncidentAt  *time.Time        `json:"incident_at"`
}

// ModerateCrimeRequest changes the verification state or visibility of a crime
type ModerateCrimeRequest struct {
	Verification *models.Verification `json:"verification" validate:"omitnil,verification"`
	IsLive       *bool                `json:"is_live"`
}

// CrimeService handles crime reports and their moderation
type CrimeService struct {
	crimeRepo *repository.CrimeRepository
	userRepo  *repository.UserRepository
	now       func() time.Time
}

// NewCrimeService creates a new crime service
func NewCrimeService(crimeRepo *repository.CrimeRepository, userRepo *repository.UserRepository) *CrimeService {
	return &CrimeService{
		crimeRepo: crimeRepo,
		userRepo:  userRepo,
		now:       time.Now,
	}
}

// Report stores a new crime. userID may be empty; Anonymous drops the owner
// even for signed-in reporters.
func (s *CrimeService) Report(ctx context.Context, userID string, req ReportCrimeRequest) (*models.Crime, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	req.Location = strings.TrimSpace(req.Location)
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if req.IncidentAt.IsZero() {
		return nil, apperr.Required("incident_at")
	}
	if err := s.checkIncidentAt(req.IncidentAt, now); err != nil {
		return nil, err
	}

	crime := &models.Crime{
		Title:        req.Title,
		Description:  req.Description,
		Location:     req.Location,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		CrimeType:    req.CrimeType,
		Verification: models.VerificationPending,
		IsLive:       true,
		IncidentAt:   req.IncidentAt.UTC(),
		ReportedAt:   now,
		UpdatedAt:    now,
	}
	if userID != "" && !req.Anonymous {
		user, err := s.userRepo.GetByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		crime.UserID = &user.ID
	}

	if err := s.crimeRepo.Create(ctx, crime); err != nil {
		return nil, err
	}
	metrics.CrimesReported.WithLabelValues(string(crime.CrimeType)).Inc()

	return crime, nil
}

func (s *CrimeService) checkIncidentAt(at, now time.Time) error {
	if at.After(now.Add(incidentClockSkew)) {
		return apperr.Validation("incident_at", "incident_at cannot be in the future")
	}
	return nil
}

// Get returns a crime with its media, comments, votes and vote stats.
// Hidden crimes are reported as not found to everyone but the reporter and admins.
func (s *CrimeService) Get(ctx context.Context, viewerID, id string) (*models.Crime, error) {
	crime, err := s.crimeRepo.GetDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkVisible(ctx, s.userRepo, crime, viewerID); err != nil {
		return nil, err
	}
	return crime, nil
}

// List returns a page of crimes. Only admins see hidden crimes.
func (s *CrimeService) List(ctx context.Context, viewerID string, filter repository.CrimeFilter) ([]models.Crime, int64, error) {
	if filter.CrimeType != "" && !filter.CrimeType.Valid() {
		return nil, 0, apperr.Validation("crime_type", "crime_type is invalid")
	}
	if filter.Verification != "" && !filter.Verification.Valid() {
		return nil, 0, apperr.Validation("verification", "verification is invalid")
	}

	admin, err := isAdmin(ctx, s.userRepo, viewerID)
	if err != nil {
		return nil, 0, err
	}
	filter.IncludeHidden = admin

	return s.crimeRepo.List(ctx, filter)
}

// Update applies a reporter's edit. Anonymous crimes have no reporter and
// cannot be edited.
func (s *CrimeService) Update(ctx context.Context, userID, id string, req UpdateCrimeRequest) (*models.Crime, error) {
	if userID == "" {
		return nil, apperr.Unauthorized("authentication required")
	}
	crime, err := s.crimeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !crime.OwnedBy(userID) {
		return nil, apperr.Forbidden("only the reporter can edit this crime")
	}

	trim := func(p *string) *string {
		if p == nil {
			return nil
		}
		v := strings.TrimSpace(*p)
		return &v
	}
	req.Title = trim(req.Title)
	req.Description = trim(req.Description)
	req.Location = trim(req.Location)
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.Latitude != nil {
		updates["latitude"] = *req.Latitude
	}
	if req.Longitude != nil {
		updates["longitude"] = *req.Longitude
	}
	if req.CrimeType != nil {
		updates["crime_type"] = *req.CrimeType
	}
	if req.IncidentAt != nil {
		if err := s.checkIncidentAt(*req.IncidentAt, s.now().UTC()); err != nil {
			return nil, err
		}
		updates["incident_at"] = req.IncidentAt.UTC()
	}

	if err := s.crimeRepo.Update(ctx, id, updates); err != nil {
		return nil, err
	}
	return s.crimeRepo.GetDetail(ctx, id)
}

// Moderate sets the verification state and/or visibility of a crime. Admins only.
func (s *CrimeService) Moderate(ctx context.Context, actorID, id string, req ModerateCrimeRequest) (*models.Crime, error) {
	if err := requireAdmin(ctx, s.userRepo, actorID); err != nil {
		return nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if req.Verification == nil && req.IsLive == nil {
		return nil, apperr.Validation("verification", "verification or is_live is required")
	}
	if _, err := s.crimeRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Verification != nil {
		updates["verification"] = *req.Verification
	}
	if req.IsLive != nil {
		updates["is_live"] = *req.IsLive
	}
	if err := s.crimeRepo.Update(ctx, id, updates); err != nil {
		return nil, err
	}
	return s.crimeRepo.GetDetail(ctx, id)
}
