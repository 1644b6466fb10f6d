package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mjdocs/gateway/internal/models"
)

// AccountRepository is the repository surface the resolver needs.
type AccountRepository interface {
	GetProfileByUsername(ctx context.Context, username string) (*models.Profile, error)
	GetAccountByID(ctx context.Context, id string) (*models.Account, error)
	HasRole(ctx context.Context, userID, role string) (bool, error)
}

// AdminRef is a resolved admin identity: the canonical login identifier plus
// the externally presented username.
type AdminRef struct {
	UserID   string
	Username string
	Email    string
}

// CredentialResolver maps a human-chosen username to an admin account. The
// lookup is case-insensitive and covers profile, login email and admin role
// grant in one logical step. "Unknown user" and "known but not admin" are
// distinct internally (models.ErrNotFound vs models.ErrNotAdmin); the caller
// decides how much of that distinction reaches the wire.
type CredentialResolver struct {
	repo   AccountRepository
	logger *slog.Logger
}

// NewCredentialResolver creates a CredentialResolver over the given repo.
func NewCredentialResolver(repo AccountRepository, logger *slog.Logger) *CredentialResolver {
	return &CredentialResolver{repo: repo, logger: logger}
}

// ResolveAdmin resolves username to an admin account reference.
func (r *CredentialResolver) ResolveAdmin(ctx context.Context, username string) (*AdminRef, error) {
	profile, err := r.repo.GetProfileByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		r.logger.Error("profile lookup failed", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	account, err := r.repo.GetAccountByID(ctx, profile.UserID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			// Profile without a credential record; treat as unknown.
			return nil, models.ErrNotFound
		}
		r.logger.Error("account lookup failed", slog.String("user_id", profile.UserID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	if account.Email == "" {
		return nil, models.ErrNotFound
	}

	isAdmin, err := r.repo.HasRole(ctx, profile.UserID, models.RoleAdmin)
	if err != nil {
		r.logger.Error("role lookup failed", slog.String("user_id", profile.UserID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	if !isAdmin {
		return nil, models.ErrNotAdmin
	}

	return &AdminRef{
		UserID:   profile.UserID,
		Username: profile.Username,
		Email:    account.Email,
	}, nil
}
