package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mjdocs/gateway/internal/models"
	"github.com/mjdocs/gateway/internal/storage"
)

// DocumentRepository is the repository surface the document flows need.
type DocumentRepository interface {
	GetByID(ctx context.Context, id string) (*models.Document, error)
	IncrementDownloadCount(ctx context.Context, id string) (int64, error)
}

// RequestLimiter bounds request rate per key with a retry hint on rejection.
type RequestLimiter interface {
	Allow(key string) (allowed bool, retryAfter int)
}

// DocumentService serves signed download URLs and download-counter updates
// for active documents.
type DocumentService struct {
	repo        DocumentRepository
	presigner   storage.Presigner
	urlLimiter  RequestLimiter
	incrLimiter RequestLimiter
	urlTTL      time.Duration
	logger      *slog.Logger
}

// NewDocumentService creates a DocumentService.
func NewDocumentService(
	repo DocumentRepository,
	presigner storage.Presigner,
	urlLimiter RequestLimiter,
	incrLimiter RequestLimiter,
	urlTTL time.Duration,
	logger *slog.Logger,
) *DocumentService {
	return &DocumentService{
		repo:        repo,
		presigner:   presigner,
		urlLimiter:  urlLimiter,
		incrLimiter: incrLimiter,
		urlTTL:      urlTTL,
		logger:      logger,
	}
}

// SignedURLResult is the payload returned for a granted download.
type SignedURLResult struct {
	SignedURL string `json:"signedUrl"`
	FileName  string `json:"fileName"`
	ExpiresIn int    `json:"expiresIn"`
}

// SignedURL validates documentID, checks availability and mints a short-lived
// download URL. Malformed IDs are rejected before any store access.
func (s *DocumentService) SignedURL(ctx context.Context, documentID, clientIP string) (*SignedURLResult, error) {
	if _, err := uuid.Parse(documentID); err != nil {
		return nil, models.ErrBadRequest
	}

	if allowed, retryAfter := s.urlLimiter.Allow(clientIP); !allowed {
		return nil, &models.ThrottledError{RetryAfter: retryAfter}
	}

	doc, err := s.fetchAvailable(ctx, documentID)
	if err != nil {
		return nil, err
	}

	signedURL, err := s.presigner.PresignGet(ctx, doc.FilePath, s.urlTTL)
	if err != nil {
		s.logger.Error("failed to generate signed URL",
			slog.String("document_id", documentID),
			slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return &SignedURLResult{
		SignedURL: signedURL,
		FileName:  doc.FileName,
		ExpiresIn: int(s.urlTTL.Seconds()),
	}, nil
}

// IncrementDownload validates documentID, checks availability and bumps the
// download counter atomically at the store. The limiter key composes client
// and document, isolating counters per resource per client.
func (s *DocumentService) IncrementDownload(ctx context.Context, documentID, clientIP string) (int64, error) {
	if _, err := uuid.Parse(documentID); err != nil {
		return 0, models.ErrBadRequest
	}

	if allowed, retryAfter := s.incrLimiter.Allow(clientIP + ":" + documentID); !allowed {
		return 0, &models.ThrottledError{RetryAfter: retryAfter}
	}

	if _, err := s.fetchAvailable(ctx, documentID); err != nil {
		return 0, err
	}

	count, err := s.repo.IncrementDownloadCount(ctx, documentID)
	if err != nil {
		s.logger.Error("failed to increment download count",
			slog.String("document_id", documentID),
			slog.Any("error", err))
		return 0, models.ErrInternalServer
	}

	return count, nil
}

func (s *DocumentService) fetchAvailable(ctx context.Context, documentID string) (*models.Document, error) {
	doc, err := s.repo.GetByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("document lookup failed",
			slog.String("document_id", documentID),
			slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if !doc.Available() {
		return nil, models.ErrUnavailable
	}
	return doc, nil
}
