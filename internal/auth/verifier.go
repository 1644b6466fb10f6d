package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mjdocs/gateway/internal/models"
	pkgauth "github.com/mjdocs/gateway/pkg/auth"
)

// CredentialStore is the slice of the account repository the verifier needs.
type CredentialStore interface {
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)
}

// PasswordVerifier verifies a password against the credential store, keyed by
// the canonical login identifier (email). It stands in front of whatever
// holds the hashes; the login handler never sees a password hash.
type PasswordVerifier struct {
	store  CredentialStore
	logger *slog.Logger
}

// NewPasswordVerifier creates a PasswordVerifier backed by the given store.
func NewPasswordVerifier(store CredentialStore, logger *slog.Logger) *PasswordVerifier {
	return &PasswordVerifier{store: store, logger: logger}
}

// Verify checks the password for the account with the given login email.
// Returns models.ErrUnauthorized for both unknown email and wrong password.
func (v *PasswordVerifier) Verify(ctx context.Context, email, password string) error {
	account, err := v.store.GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrUnauthorized
		}
		v.logger.Error("credential lookup failed", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := pkgauth.ComparePassword(account.PasswordHash, password); err != nil {
		return models.ErrUnauthorized
	}
	return nil
}
