package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nexcodes/softec-25-sub000/internal/models"
	"github.com/nexcodes/softec-25-sub000/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubValidator map[string]*services.Claims

func (v stubValidator) ValidateJWT(token string) (*services.Claims, error) {
	claims, ok := v[token]
	if !ok {
		return nil, errors.New("token is malformed")
	}
	return claims, nil
}

var validator = stubValidator{
	"good": {UserID: "user-1", Role: models.RoleLawyer},
}

// echo writes the authenticated user back so tests can see what the middleware attached
func echo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-User-ID", GetUserID(r.Context()))
	w.Header().Set("X-Role", string(GetRole(r.Context())))
	w.WriteHeader(http.StatusOK)
}

func serve(h http.Handler, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuthMiddleware(t *testing.T) {
	h := AuthMiddleware(validator)(http.HandlerFunc(echo))

	tests := []struct {
		name   string
		header string
		status int
		user   string
	}{
		{"valid token", "Bearer good", http.StatusOK, "user-1"},
		{"missing header", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic good", http.StatusUnauthorized, ""},
		{"extra parts", "Bearer good extra", http.StatusUnauthorized, ""},
		{"unknown token", "Bearer bad", http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(h, tt.header)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.user, rec.Header().Get("X-User-ID"))
			if tt.status == http.StatusUnauthorized {
				assert.Contains(t, rec.Body.String(), `"kind":"unauthorized"`)
			}
		})
	}
}

func TestAuthMiddleware_AttachesRole(t *testing.T) {
	h := AuthMiddleware(validator)(http.HandlerFunc(echo))
	rec := serve(h, "Bearer good")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, string(models.RoleLawyer), rec.Header().Get("X-Role"))
}

func TestOptionalAuth(t *testing.T) {
	h := OptionalAuth(validator)(http.HandlerFunc(echo))

	rec := serve(h, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-User-ID"))

	rec = serve(h, "Bearer good")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", rec.Header().Get("X-User-ID"))

	rec = serve(h, "Bearer bad")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestValidateWebSocketToken(t *testing.T) {
	_, err := ValidateWebSocketToken("", validator)
	assert.Error(t, err)

	claims, err := ValidateWebSocketToken("good", validator)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)

	_, err = ValidateWebSocketToken("bad", validator)
	assert.Error(t, err)
}
