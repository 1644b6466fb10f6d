package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mjdocs/gateway/internal/models"
	"github.com/mjdocs/gateway/internal/services"
	pkghttp "github.com/mjdocs/gateway/pkg/http"
	"github.com/stretchr/testify/assert"
)

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// AssertJSONResponse checks that response has correct status and decodes JSON body
func AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target interface{}) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	contentType := w.Header().Get("Content-Type")
	assert.Equal(t, "application/json", contentType, "Content-Type should be application/json")

	if target != nil {
		err := json.Unmarshal(w.Body.Bytes(), target)
		assert.NoError(t, err, "Failed to decode response JSON")
	}
}

// AssertErrorResponse checks that response is an error body with the exact text
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedError string) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	var resp pkghttp.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err, "Failed to decode error response")
	assert.Equal(t, expectedError, resp.Error, "Error text mismatch")
}

// MockAuthService implements AuthServiceInterface for testing
type MockAuthService struct {
	AdminLoginFunc func(ctx context.Context, username, password, clientIP string) (*services.LoginResult, error)
}

func (m *MockAuthService) AdminLogin(ctx context.Context, username, password, clientIP string) (*services.LoginResult, error) {
	if m.AdminLoginFunc == nil {
		return nil, models.ErrUnauthorized
	}
	return m.AdminLoginFunc(ctx, username, password, clientIP)
}

// MockDocumentService implements DocumentServiceInterface for testing
type MockDocumentService struct {
	SignedURLFunc         func(ctx context.Context, documentID, clientIP string) (*services.SignedURLResult, error)
	IncrementDownloadFunc func(ctx context.Context, documentID, clientIP string) (int64, error)
}

func (m *MockDocumentService) SignedURL(ctx context.Context, documentID, clientIP string) (*services.SignedURLResult, error) {
	if m.SignedURLFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.SignedURLFunc(ctx, documentID, clientIP)
}

func (m *MockDocumentService) IncrementDownload(ctx context.Context, documentID, clientIP string) (int64, error) {
	if m.IncrementDownloadFunc == nil {
		return 0, models.ErrNotFound
	}
	return m.IncrementDownloadFunc(ctx, documentID, clientIP)
}
