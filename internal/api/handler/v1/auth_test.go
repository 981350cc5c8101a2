package v1

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portalevent/portal-api/internal/api/handler/v1/response"
	"github.com/portalevent/portal-api/internal/config"
	"github.com/portalevent/portal-api/internal/domain"
	"github.com/portalevent/portal-api/internal/pkg/jwthelper"
	"github.com/portalevent/portal-api/internal/service"
)

const signingKey = "handler-test-key"

func newAuthRouter(svc AuthService) *gin.Engine {
	h := NewAuthHandler(&config.APIConfig{JWTSigningKey: signingKey}, svc)

	r := gin.New()
	r.POST("/auth/signup", h.HandleSignup)
	r.POST("/auth/login", h.HandleLogin)

	return r
}

func TestAuthHandler_HandleSignup(t *testing.T) {
	var got domain.User
	svc := &mockAuthService{signup: func(user domain.User) (domain.User, error) {
		if user.Email == "taken@example.com" {
			return domain.User{}, service.ErrUserEmailExists
		}
		got = user
		user.ID = 9
		return user, nil
	}}
	r := newAuthRouter(svc)

	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{
			name:     "ok",
			body:     `{"email":"new@example.com","password":"secret123","confirm_password":"secret123","name":"New"}`,
			wantCode: http.StatusCreated,
		},
		{
			name:     "password without digit",
			body:     `{"email":"new@example.com","password":"secretsecret","confirm_password":"secretsecret","name":"New"}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "password too short",
			body:     `{"email":"new@example.com","password":"abc123","confirm_password":"abc123","name":"New"}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "confirmation mismatch",
			body:     `{"email":"new@example.com","password":"secret123","confirm_password":"secret124","name":"New"}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "email exists",
			body:     `{"email":"taken@example.com","password":"secret123","confirm_password":"secret123","name":"New"}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "malformed json",
			body:     `{"email":`,
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(r, http.MethodPost, "/auth/signup", strings.NewReader(tt.body), "application/json")
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
		})
	}

	assert.Equal(t, "new@example.com", got.Email)
	assert.False(t, got.IsAdmin)
}

func TestAuthHandler_HandleLogin(t *testing.T) {
	svc := &mockAuthService{login: func(email, password string) (domain.User, error) {
		if password != "secret123" {
			return domain.User{}, service.ErrWrongPassword
		}
		return attendee, nil
	}}
	r := newAuthRouter(svc)

	rec := serve(r, http.MethodPost, "/auth/login", strings.NewReader(`{"email":"jane@example.com","password":"wrong"}`), "application/json")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(r, http.MethodPost, "/auth/login", strings.NewReader(`{"email":"jane@example.com","password":"secret123"}`), "application/json")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp response.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, attendee.ID, resp.User.ID)

	claims, err := jwthelper.ParseToken([]byte(signingKey), resp.Token)
	require.NoError(t, err)
	assert.Equal(t, attendee.ID, claims.UserID)
}
