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

// DocumentServiceInterface defines the interface for document access flows
type DocumentServiceInterface interface {
	SignedURL(ctx context.Context, documentID, clientIP string) (*services.SignedURLResult, error)
	IncrementDownload(ctx context.Context, documentID, clientIP string) (int64, error)
}

// DocumentHandler handles document access HTTP requests
type DocumentHandler struct {
	service  DocumentServiceInterface
	ipConfig *pkghttp.IPConfig
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(service DocumentServiceInterface, ipConfig *pkghttp.IPConfig) *DocumentHandler {
	return &DocumentHandler{
		service:  service,
		ipConfig: ipConfig,
	}
}

// DocumentRequest represents the request body for both document endpoints
type DocumentRequest struct {
	DocumentID string `json:"documentId" validate:"required"`
}

// IncrementResponse is the payload returned after a counted download.
type IncrementResponse struct {
	Success  bool  `json:"success"`
	NewCount int64 `json:"newCount"`
}

// SignedURL handles POST /api/documents/signed-url.
func (h *DocumentHandler) SignedURL(w http.ResponseWriter, r *http.Request) {
	documentID, ok := h.decodeDocumentID(w, r)
	if !ok {
		return
	}

	clientIP := pkghttp.ExtractClientIP(r, h.ipConfig)

	result, err := h.service.SignedURL(r.Context(), documentID, clientIP)
	if err != nil {
		var throttled *models.ThrottledError
		switch {
		case errors.As(err, &throttled):
			pkghttp.WriteThrottled(w, "Too many requests. Please try again later.", throttled.RetryAfter)
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "Invalid document ID format")
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "Document not found")
		case errors.Is(err, models.ErrUnavailable):
			pkghttp.WriteForbidden(w, "Document is not available")
		default:
			pkghttp.WriteInternalError(w, "Failed to generate download link")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, result)
}

// IncrementDownload handles POST /api/documents/increment-download.
func (h *DocumentHandler) IncrementDownload(w http.ResponseWriter, r *http.Request) {
	documentID, ok := h.decodeDocumentID(w, r)
	if !ok {
		return
	}

	clientIP := pkghttp.ExtractClientIP(r, h.ipConfig)

	count, err := h.service.IncrementDownload(r.Context(), documentID, clientIP)
	if err != nil {
		var throttled *models.ThrottledError
		switch {
		case errors.As(err, &throttled):
			pkghttp.WriteThrottled(w, "Too many requests. Please slow down.", throttled.RetryAfter)
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "Invalid document ID format")
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "Document not found")
		case errors.Is(err, models.ErrUnavailable):
			pkghttp.WriteForbidden(w, "Document is not available")
		default:
			pkghttp.WriteInternalError(w, "An unexpected error occurred")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, IncrementResponse{
		Success:  true,
		NewCount: count,
	})
}

func (h *DocumentHandler) decodeDocumentID(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req DocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Document ID is required")
		return "", false
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, "Document ID is required")
		return "", false
	}
	return req.DocumentID, true
}
