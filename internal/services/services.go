package services

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/nexcodes/softec-25-sub000/internal/apperr"
	"github.com/nexcodes/softec-25-sub000/internal/models"
	"github.com/nexcodes/softec-25-sub000/internal/repository"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// report json names so errors match the request body
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	v.RegisterValidation("crimetype", func(fl validator.FieldLevel) bool {
		return models.CrimeType(fl.Field().String()).Valid()
	})
	v.RegisterValidation("verification", func(fl validator.FieldLevel) bool {
		return models.Verification(fl.Field().String()).Valid()
	})
	v.RegisterValidation("mediatype", func(fl validator.FieldLevel) bool {
		return models.MediaType(fl.Field().String()).Valid()
	})
	return v
}

// validateStruct runs the validate tags of a request and reports the first
// failing field as a validation error
func validateStruct(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("failed to validate request: %w", err)
	}

	fe := verrs[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return apperr.Required(field)
	case "email":
		return apperr.Validation(field, field+" must be a valid email address")
	case "url":
		return apperr.Validation(field, field+" must be a valid URL")
	case "min":
		if fe.Kind() == reflect.String {
			return apperr.Validation(field, fmt.Sprintf("%s must be at least %s characters", field, fe.Param()))
		}
		return apperr.Validation(field, fmt.Sprintf("%s must be at least %s", field, fe.Param()))
	case "max":
		if fe.Kind() == reflect.String {
			return apperr.Validation(field, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
		}
		return apperr.Validation(field, fmt.Sprintf("%s must be at most %s", field, fe.Param()))
	}
	return apperr.Validation(field, field+" is invalid")
}

// requireAdmin checks the stored role, not the token claim, so demotions take
// effect before tokens expire.
func requireAdmin(ctx context.Context, userRepo *repository.UserRepository, userID string) error {
	if userID == "" {
		return apperr.Unauthorized("authentication required")
	}
	user, err := userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.Role != models.RoleAdmin {
		return apperr.Forbidden("admin access required")
	}
	return nil
}

// isAdmin is requireAdmin for optional viewers
func isAdmin(ctx context.Context, userRepo *repository.UserRepository, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	user, err := userRepo.GetByID(ctx, userID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return false, nil
		}
		return false, err
	}
	return user.Role == models.RoleAdmin, nil
}

// visibleCrime loads a crime the viewer may see
func visibleCrime(ctx context.Context, crimeRepo *repository.CrimeRepository, userRepo *repository.UserRepository, viewerID, crimeID string) (*models.Crime, error) {
	crime, err := crimeRepo.GetByID(ctx, crimeID)
	if err != nil {
		return nil, err
	}
	if err := checkVisible(ctx, userRepo, crime, viewerID); err != nil {
		return nil, err
	}
	return crime, nil
}

// checkVisible reports hidden crimes as not found to everyone but the
// reporter and admins
func checkVisible(ctx context.Context, userRepo *repository.UserRepository, crime *models.Crime, viewerID string) error {
	if crime.IsLive || crime.OwnedBy(viewerID) {
		return nil
	}
	admin, err := isAdmin(ctx, userRepo, viewerID)
	if err != nil {
		return err
	}
	if !admin {
		return apperr.NotFound("crime not found")
	}
	return nil
}
