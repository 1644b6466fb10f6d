package handlers

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mjdocs/gateway/internal/models"
	"github.com/mjdocs/gateway/internal/services"
	pkghttp "github.com/mjdocs/gateway/pkg/http"
	"github.com/stretchr/testify/assert"
)

func newAuthHandler(service AuthServiceInterface) *AuthHandler {
	return NewAuthHandler(service, &pkghttp.IPConfig{})
}

func TestAdminLoginHandler_Success(t *testing.T) {
	mock := &MockAuthService{
		AdminLoginFunc: func(ctx context.Context, username, password, clientIP string) (*services.LoginResult, error) {
			assert.Equal(t, "Manoj", username)
			assert.Equal(t, "mj200710", password)
			return &services.LoginResult{
				Session: &models.Session{AccessToken: "token", TokenType: "bearer", ExpiresIn: 900},
				User:    &models.AdminUser{ID: "user-1", Username: "Manoj", Email: "manoj@mjdocs.local"},
			}, nil
		},
	}
	handler := newAuthHandler(mock)

	req := NewTestRequest(t, "POST", "/api/admin/login", LoginRequest{Username: "Manoj", Password: "mj200710"})
	w := httptest.NewRecorder()
	handler.AdminLogin(w, req)

	var resp services.LoginResult
	AssertJSONResponse(t, w, 200, &resp)
	assert.Equal(t, "token", resp.Session.AccessToken)
	assert.Equal(t, "Manoj", resp.User.Username)
}

func TestAdminLoginHandler_MissingFields(t *testing.T) {
	handler := newAuthHandler(&MockAuthService{
		AdminLoginFunc: func(ctx context.Context, username, password, clientIP string) (*services.LoginResult, error) {
			return nil, models.ErrMissingFields
		},
	})

	cases := []struct {
		name string
		body interface{}
	}{
		{"no username", LoginRequest{Password: "mj200710"}},
		{"no password", LoginRequest{Username: "Manoj"}},
		{"empty body", map[string]string{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := NewTestRequest(t, "POST", "/api/admin/login", tc.body)
			w := httptest.NewRecorder()
			handler.AdminLogin(w, req)

			AssertErrorResponse(t, w, 400, "Username and password are required")
		})
	}
}

func TestAdminLoginHandler_MalformedJSON(t *testing.T) {
	handler := newAuthHandler(&MockAuthService{
		AdminLoginFunc: func(ctx context.Context, username, password, clientIP string) (*services.LoginResult, error) {
			assert.Empty(t, username)
			assert.Empty(t, password)
			return nil, models.ErrMissingFields
		},
	})

	req := httptest.NewRequest("POST", "/api/admin/login", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	handler.AdminLogin(w, req)

	AssertErrorResponse(t, w, 400, "Username and password are required")
}

func TestAdminLoginHandler_BlockedClientGets429ForIncompleteBody(t *testing.T) {
	// Throttle check runs before field validation: a blocked client must
	// see 429, never 400, regardless of what it posts.
	serviceCalls := 0
	handler := newAuthHandler(&MockAuthService{
		AdminLoginFunc: func(ctx context.Context, username, password, clientIP string) (*services.LoginResult, error) {
			serviceCalls++
			return nil, &models.ThrottledError{RetryAfter: 600}
		},
	})

	req := NewTestRequest(t, "POST", "/api/admin/login", map[string]string{"username": "Manoj"})
	w := httptest.NewRecorder()
	handler.AdminLogin(w, req)

	assert.Equal(t, 1, serviceCalls)
	assert.Equal(t, "600", w.Header().Get("Retry-After"))

	var resp pkghttp.ErrorResponse
	AssertJSONResponse(t, w, 429, &resp)
	assert.Equal(t, "Too many login attempts. Please try again later.", resp.Error)
}

func TestAdminLoginHandler_InvalidCredentials(t *testing.T) {
	handler := newAuthHandler(&MockAuthService{
		AdminLoginFunc: func(ctx context.Context, username, password, clientIP string) (*services.LoginResult, error) {
			return nil, models.ErrUnauthorized
		},
	})

	req := NewTestRequest(t, "POST", "/api/admin/login", LoginRequest{Username: "Manoj", Password: "wrong"})
	w := httptest.NewRecorder()
	handler.AdminLogin(w, req)

	AssertErrorResponse(t, w, 401, "Invalid username or password")
}

func TestAdminLoginHandler_NonAdmin(t *testing.T) {
	handler := newAuthHandler(&MockAuthService{
		AdminLoginFunc: func(ctx context.Context, username, password, clientIP string) (*services.LoginResult, error) {
			return nil, models.ErrNotAdmin
		},
	})

	req := NewTestRequest(t, "POST", "/api/admin/login", LoginRequest{Username: "visitor", Password: "mj200710"})
	w := httptest.NewRecorder()
	handler.AdminLogin(w, req)

	AssertErrorResponse(t, w, 403, "Access denied. Admin privileges required.")
}

func TestAdminLoginHandler_Throttled(t *testing.T) {
	handler := newAuthHandler(&MockAuthService{
		AdminLoginFunc: func(ctx context.Context, username, password, clientIP string) (*services.LoginResult, error) {
			return nil, &models.ThrottledError{RetryAfter: 873}
		},
	})

	req := NewTestRequest(t, "POST", "/api/admin/login", LoginRequest{Username: "Manoj", Password: "mj200710"})
	w := httptest.NewRecorder()
	handler.AdminLogin(w, req)

	assert.Equal(t, "873", w.Header().Get("Retry-After"))

	var resp pkghttp.ErrorResponse
	AssertJSONResponse(t, w, 429, &resp)
	assert.Equal(t, "Too many login attempts. Please try again later.", resp.Error)
	assert.Equal(t, 873, resp.RetryAfter)
}

func TestAdminLoginHandler_InternalError(t *testing.T) {
	handler := newAuthHandler(&MockAuthService{
		AdminLoginFunc: func(ctx context.Context, username, password, clientIP string) (*services.LoginResult, error) {
			return nil, models.ErrInternalServer
		},
	})

	req := NewTestRequest(t, "POST", "/api/admin/login", LoginRequest{Username: "Manoj", Password: "mj200710"})
	w := httptest.NewRecorder()
	handler.AdminLogin(w, req)

	AssertErrorResponse(t, w, 500, "An unexpected error occurred")
}
