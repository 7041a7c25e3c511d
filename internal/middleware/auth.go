package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/nexcodes/softec-25-sub000/internal/apperr"
	"github.com/nexcodes/softec-25-sub000/internal/models"
	"github.com/nexcodes/softec-25-sub000/internal/services"
)

type contextKey string

const (
	userIDKey contextKey = "user_id"
	roleKey   contextKey = "role"
)

var errNoToken = errors.New("no bearer token")

// TokenValidator parses session tokens. *services.UserService satisfies it.
type TokenValidator interface {
	ValidateJWT(token string) (*services.Claims, error)
}

// AuthMiddleware creates a middleware for JWT authentication
func AuthMiddleware(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := authenticate(r, validator)
			if errors.Is(err, errNoToken) {
				respondError(w, "Authorization header required", http.StatusUnauthorized)
				return
			}
			if err != nil {
				respondError(w, err.Error(), http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
		})
	}
}

// OptionalAuth attaches the caller when a valid token is sent and lets
// anonymous requests through. A malformed or expired token is still rejected.
func OptionalAuth(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := authenticate(r, validator)
			if errors.Is(err, errNoToken) {
				next.ServeHTTP(w, r)
				return
			}
			if err != nil {
				respondError(w, err.Error(), http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
		})
	}
}

func authenticate(r *http.Request, validator TokenValidator) (*services.Claims, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, errNoToken
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, errors.New("Invalid authorization header format")
	}

	claims, err := validator.ValidateJWT(parts[1])
	if err != nil {
		return nil, errors.New("Invalid token")
	}
	return claims, nil
}

func withClaims(ctx context.Context, claims *services.Claims) context.Context {
	ctx = context.WithValue(ctx, userIDKey, claims.UserID)
	return context.WithValue(ctx, roleKey, claims.Role)
}

// GetUserID extracts user ID from context
func GetUserID(ctx context.Context) string {
	userID, ok := ctx.Value(userIDKey).(string)
	if !ok {
		return ""
	}
	return userID
}

// GetRole extracts the token role from context. Authorization decisions use
// the stored role; this is for logging.
func GetRole(ctx context.Context) models.Role {
	role, _ := ctx.Value(roleKey).(models.Role)
	return role
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
		"kind":  string(apperr.KindUnauthorized),
	})
}

// ValidateWebSocketToken validates JWT token from WebSocket query parameter
func ValidateWebSocketToken(token string, validator TokenValidator) (*services.Claims, error) {
	if token == "" {
		return nil, errors.New("token required")
	}
	return validator.ValidateJWT(token)
}
