package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nexcodes/softec-25-sub000/internal/apperr"
	"github.com/nexcodes/softec-25-sub000/internal/models"
	"github.com/nexcodes/softec-25-sub000/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Claims is the session payload carried by bearer tokens
type Claims struct {
	UserID string      `json:"user_id"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

// UserService handles accounts and session tokens
type UserService struct {
	userRepo  *repository.UserRepository
	jwtSecret string
	jwtTTL    time.Duration
}

// NewUserService creates a new user service
func NewUserService(userRepo *repository.UserRepository, jwtSecret string, jwtTTL time.Duration) *UserService {
	return &UserService{
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
		jwtTTL:    jwtTTL,
	}
}

// RegisterRequest represents a sign-up request
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"required,max=120"`
}

// LoginRequest represents a sign-in request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned after register and login
type AuthResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// Register creates a USER account and signs a token for it
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		Name:         req.Name,
		Role:         models.RoleUser,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.GenerateJWT(user)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{User: user, Token: token}, nil
}

// Login checks credentials and signs a fresh token
func (s *UserService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.Unauthorized("invalid email or password")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperr.Unauthorized("invalid email or password")
	}

	token, err := s.GenerateJWT(user)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{User: user, Token: token}, nil
}

// GenerateJWT generates a JWT token for a user
func (s *UserService) GenerateJWT(user *models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// ValidateJWT validates a JWT token and returns its claims
func (s *UserService) ValidateJWT(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.UserID == "" {
		return nil, errors.New("user_id not found in token")
	}
	return claims, nil
}

// GetUser returns a user by ID
func (s *UserService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	if userID == "" {
		return nil, apperr.Unauthorized("authentication required")
	}
	return s.userRepo.GetByID(ctx, userID)
}

// UpdatePushToken stores or clears the APNs device token of a user
func (s *UserService) UpdatePushToken(ctx context.Context, userID string, token *string) error {
	if userID == "" {
		return apperr.Unauthorized("authentication required")
	}
	if token != nil {
		trimmed := strings.TrimSpace(*token)
		if trimmed == "" {
			token = nil
		} else {
			token = &trimmed
		}
	}
	return s.userRepo.UpdatePushToken(ctx, userID, token)
}

// PromoteAdmin grants the ADMIN role. Lawyers keep their profile and role.
func (s *UserService) PromoteAdmin(ctx context.Context, email string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	if user.Role == models.RoleLawyer {
		return nil, apperr.Conflict("lawyers cannot be promoted to admin")
	}
	if err := s.userRepo.UpdateRole(ctx, user.ID, models.RoleAdmin); err != nil {
		return nil, err
	}
	user.Role = models.RoleAdmin
	return user, nil
}
