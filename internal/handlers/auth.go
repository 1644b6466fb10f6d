package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mjdocs/gateway/internal/models"
	"github.com/mjdocs/gateway/internal/services"
	pkghttp "github.com/mjdocs/gateway/pkg/http"
)

// AuthServiceInterface defines the interface for the admin login flow
type AuthServiceInterface interface {
	AdminLogin(ctx context.Context, username, password, clientIP string) (*services.LoginResult, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	service  AuthServiceInterface
	ipConfig *pkghttp.IPConfig
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service AuthServiceInterface, ipConfig *pkghttp.IPConfig) *AuthHandler {
	return &AuthHandler{
		service:  service,
		ipConfig: ipConfig,
	}
}

// LoginRequest represents the request body for admin login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AdminLogin handles POST /api/admin/login.
func (h *AuthHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	// Decode failures leave the fields empty rather than short-circuiting:
	// the service checks the throttle before input validation, so a blocked
	// client sees 429 even for a garbage body.
	_ = json.NewDecoder(r.Body).Decode(&req)

	clientIP := pkghttp.ExtractClientIP(r, h.ipConfig)

	result, err := h.service.AdminLogin(r.Context(), req.Username, req.Password, clientIP)
	if err != nil {
		var throttled *models.ThrottledError
		switch {
		case errors.As(err, &throttled):
			pkghttp.WriteThrottled(w, "Too many login attempts. Please try again later.", throttled.RetryAfter)
		case errors.Is(err, models.ErrMissingFields):
			pkghttp.WriteBadRequest(w, "Username and password are required")
		case errors.Is(err, models.ErrNotAdmin):
			pkghttp.WriteForbidden(w, "Access denied. Admin privileges required.")
		case errors.Is(err, models.ErrUnauthorized):
			pkghttp.WriteUnauthorized(w, "Invalid username or password")
		default:
			pkghttp.WriteInternalError(w, "An unexpected error occurred")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, result)
}
