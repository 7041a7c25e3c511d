package services

import (
	"context"
	"net/http"
	"strings"

	"github.com/nexcodes/softec-25-sub000/internal/apperr"
	"github.com/nexcodes/softec-25-sub000/internal/metrics"
	"github.com/nexcodes/softec-25-sub000/internal/models"
	"github.com/nexcodes/softec-25-sub000/internal/repository"

	"gorm.io/gorm"
)

const maxExperienceYears = 80

// LawyerProfileInput is a full submission or a partial update. Nil fields are
// "not supplied".
type LawyerProfileInput struct {
	LegalName      *string `json:"legal_name"`
	Specialization *string `json:"specialization"`
	Experience     *int    `json:"experience"`
	Description    *string `json:"description"`
	LicenseNo      *string `json:"license_no"`
	FatherName     *string `json:"father_name"`
	CNIC           *string `json:"cnic"`
}

// validateComplete fails on the first missing required field, checked in
// legal_name, experience, description, license_no, father_name, cnic order
func (in LawyerProfileInput) validateComplete() error {
	if trimmed(in.LegalName) == "" {
		return apperr.Required("legal_name")
	}
	if in.Experience == nil {
		return apperr.Required("experience")
	}
	if err := validateExperience(*in.Experience); err != nil {
		return err
	}

	rest := []struct {
		name  string
		value *string
	}{
		{"description", in.Description},
		{"license_no", in.LicenseNo},
		{"father_name", in.FatherName},
		{"cnic", in.CNIC},
	}
	for _, f := range rest {
		if trimmed(f.value) == "" {
			return apperr.Required(f.name)
		}
	}
	return nil
}

// updates builds the column map of a merge-update from supplied fields only
func (in LawyerProfileInput) updates() (map[string]interface{}, error) {
	updates := make(map[string]interface{})
	text := []struct {
		column string
		value  *string
	}{
		{"legal_name", in.LegalName},
		{"description", in.Description},
		{"license_no", in.LicenseNo},
		{"father_name", in.FatherName},
		{"cnic", in.CNIC},
	}
	for _, f := range text {
		if f.value == nil {
			continue
		}
		v := strings.TrimSpace(*f.value)
		if v == "" {
			return nil, apperr.Validation(f.column, f.column+" cannot be empty")
		}
		updates[f.column] = v
	}

	if in.Experience != nil {
		if err := validateExperience(*in.Experience); err != nil {
			return nil, err
		}
		updates["experience"] = *in.Experience
	}
	if in.Specialization != nil {
		if v := strings.TrimSpace(*in.Specialization); v == "" {
			updates["specialization"] = nil
		} else {
			updates["specialization"] = v
		}
	}
	return updates, nil
}

func validateExperience(years int) error {
	if years < 0 || years > maxExperienceYears {
		return apperr.Validation("experience", "experience must be between 0 and 80 years")
	}
	return nil
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

// LawyerService runs the USER -> LAWYER promotion and the lawyer directory
type LawyerService struct {
	db         *gorm.DB
	lawyerRepo *repository.LawyerRepository
	userRepo   *repository.UserRepository
}

// NewLawyerService creates a new lawyer service. db is used to open the
// transaction that couples profile creation with the role change.
func NewLawyerService(db *gorm.DB, lawyerRepo *repository.LawyerRepository, userRepo *repository.UserRepository) *LawyerService {
	return &LawyerService{
		db:         db,
		lawyerRepo: lawyerRepo,
		userRepo:   userRepo,
	}
}

// SubmitOrUpdateProfile promotes a USER to LAWYER by creating their profile,
// or merge-updates the profile of an existing LAWYER. created reports which
// path was taken.
func (s *LawyerService) SubmitOrUpdateProfile(ctx context.Context, userID string, in LawyerProfileInput) (lawyer *models.Lawyer, created bool, err error) {
	if userID == "" {
		return nil, false, apperr.Unauthorized("authentication required")
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, false, err
	}

	switch user.Role {
	case models.RoleLawyer:
		lawyer, err = s.updateProfile(ctx, user, in)
		return lawyer, false, err
	case models.RoleUser:
		lawyer, err = s.promote(ctx, user, in)
		return lawyer, err == nil, err
	default:
		return nil, false, apperr.Forbidden("role cannot register as a lawyer")
	}
}

func (s *LawyerService) updateProfile(ctx context.Context, user *models.User, in LawyerProfileInput) (*models.Lawyer, error) {
	profile, err := s.lawyerRepo.FindByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, apperr.InconsistentState("Lawyer profile missing")
	}

	updates, err := in.updates()
	if err != nil {
		return nil, err
	}
	if err := s.lawyerRepo.Update(ctx, profile.ID, updates); err != nil {
		return nil, err
	}
	return s.lawyerRepo.GetByID(ctx, profile.ID)
}

// promote creates the profile and flips the role in one transaction
func (s *LawyerService) promote(ctx context.Context, user *models.User, in LawyerProfileInput) (*models.Lawyer, error) {
	var lawyer *models.Lawyer
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lawyers := s.lawyerRepo.WithTx(tx)
		users := s.userRepo.WithTx(tx)

		existing, err := lawyers.FindByUserID(ctx, user.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			// the profile endpoint answers this with 400
			return apperr.Conflict("Already registered as a lawyer").WithStatus(http.StatusBadRequest)
		}
		if err := in.validateComplete(); err != nil {
			return err
		}

		lawyer = &models.Lawyer{
			UserID:      user.ID,
			LegalName:   trimmed(in.LegalName),
			Experience:  *in.Experience,
			Description: trimmed(in.Description),
			LicenseNo:   trimmed(in.LicenseNo),
			FatherName:  trimmed(in.FatherName),
			CNIC:        trimmed(in.CNIC),
			IsVerified:  false,
		}
		if spec := trimmed(in.Specialization); spec != "" {
			lawyer.Specialization = &spec
		}
		if err := lawyers.Create(ctx, lawyer); err != nil {
			return err
		}
		return users.UpdateRole(ctx, user.ID, models.RoleLawyer)
	})
	if err != nil {
		return nil, err
	}

	metrics.LawyerPromotions.Inc()
	user.Role = models.RoleLawyer
	lawyer.User = user
	return lawyer, nil
}

// GetProfile returns the profile of the calling lawyer
func (s *LawyerService) GetProfile(ctx context.Context, userID string) (*models.Lawyer, error) {
	if userID == "" {
		return nil, apperr.Unauthorized("authentication required")
	}
	profile, err := s.lawyerRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, apperr.NotFound("lawyer profile not found")
	}
	return profile, nil
}

// GetLawyer returns a lawyer by profile ID
func (s *LawyerService) GetLawyer(ctx context.Context, id string) (*models.Lawyer, error) {
	return s.lawyerRepo.GetByID(ctx, id)
}

// SearchLawyers lists the lawyer directory
func (s *LawyerService) SearchLawyers(ctx context.Context, filter repository.LawyerFilter) ([]models.Lawyer, int64, error) {
	return s.lawyerRepo.Search(ctx, filter)
}

// VerifyLawyer sets the verification flag of a profile. Admins only.
func (s *LawyerService) VerifyLawyer(ctx context.Context, actorID, lawyerID string, verified bool) (*models.Lawyer, error) {
	if err := requireAdmin(ctx, s.userRepo, actorID); err != nil {
		return nil, err
	}
	if err := s.lawyerRepo.Update(ctx, lawyerID, map[string]interface{}{"is_verified": verified}); err != nil {
		return nil, err
	}
	return s.lawyerRepo.GetByID(ctx, lawyerID)
}
