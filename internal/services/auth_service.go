package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/mjdocs/gateway/internal/auth"
	"github.com/mjdocs/gateway/internal/models"
	pkglogger "github.com/mjdocs/gateway/pkg/logger"
)

// Input constraints enforced before any external call.
const (
	maxUsernameLen = 100
	minPasswordLen = 6
	maxPasswordLen = 200
)

// LoginLimiter is the lockout limiter surface the login flow needs.
type LoginLimiter interface {
	Check(key string) (allowed bool, retryAfter int)
	RecordFailure(key string) (blocked bool)
	Clear(key string)
}

// CredentialVerifier verifies a password for a login identifier. The gateway
// delegates credential verification; it never handles password hashes itself.
type CredentialVerifier interface {
	Verify(ctx context.Context, email, password string) error
}

// SessionIssuer mints the session returned on successful login.
type SessionIssuer interface {
	Issue(userID, email string) (*models.Session, error)
}

// AdminResolver resolves a username to an admin account reference.
type AdminResolver interface {
	ResolveAdmin(ctx context.Context, username string) (*AdminRef, error)
}

// LockoutNotifier is told when a client key escalates into a block. Optional.
type LockoutNotifier interface {
	NotifyLockout(ctx context.Context, clientIP string) error
}

// AuthService orchestrates admin login: rate-limit check, input validation,
// credential resolution, delegated password verification and session
// issuance, with lockout bookkeeping on every failure path.
type AuthService struct {
	resolver AdminResolver
	verifier CredentialVerifier
	sessions SessionIssuer
	limiter  LoginLimiter
	timing   *auth.TimingDelay
	notifier LockoutNotifier
	logger   *slog.Logger
	audit    *pkglogger.AuditLogger
}

// NewAuthService creates an AuthService. notifier may be nil.
func NewAuthService(
	resolver AdminResolver,
	verifier CredentialVerifier,
	sessions SessionIssuer,
	limiter LoginLimiter,
	timing *auth.TimingDelay,
	notifier LockoutNotifier,
	logger *slog.Logger,
	audit *pkglogger.AuditLogger,
) *AuthService {
	return &AuthService{
		resolver: resolver,
		verifier: verifier,
		sessions: sessions,
		limiter:  limiter,
		timing:   timing,
		notifier: notifier,
		logger:   logger,
		audit:    audit,
	}
}

// LoginResult is the payload returned to the client after successful login.
type LoginResult struct {
	Session *models.Session   `json:"session"`
	User    *models.AdminUser `json:"user"`
}

// AdminLogin runs the login state machine for one request: throttle check,
// then input validation, then resolution and verification. Every rejection
// records a failed attempt against clientIP except the throttled and
// missing-fields paths; throttling must not deepen an existing block.
func (s *AuthService) AdminLogin(ctx context.Context, username, password, clientIP string) (*LoginResult, error) {
	if allowed, retryAfter := s.limiter.Check(clientIP); !allowed {
		return nil, &models.ThrottledError{RetryAfter: retryAfter}
	}

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, models.ErrMissingFields
	}

	// Truncate on runes; a byte-offset cut could hand the store invalid
	// UTF-8.
	if runes := []rune(username); len(runes) > maxUsernameLen {
		username = string(runes[:maxUsernameLen])
	}
	if runes := []rune(password); len(runes) > maxPasswordLen {
		password = string(runes[:maxPasswordLen])
	}

	if len(password) < minPasswordLen {
		s.recordFailure(clientIP)
		s.audit.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     pkglogger.EventAdminLoginFailed,
			IPAddress:     clientIP,
			FailureReason: "invalid_input",
		})
		s.timing.Wait()
		return nil, models.ErrUnauthorized
	}

	ref, err := s.resolver.ResolveAdmin(ctx, username)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			s.recordFailure(clientIP)
			s.audit.LogAuthAttempt(pkglogger.AuditEvent{
				EventType:     pkglogger.EventAdminLoginFailed,
				Username:      username,
				IPAddress:     clientIP,
				FailureReason: "unknown_user",
			})
			s.timing.Wait()
			return nil, models.ErrUnauthorized
		case errors.Is(err, models.ErrNotAdmin):
			// Logged as its own event type: repeated non-admin logins
			// against this endpoint look like probing.
			s.recordFailure(clientIP)
			s.audit.LogAuthAttempt(pkglogger.AuditEvent{
				EventType:     pkglogger.EventNonAdminLogin,
				Username:      username,
				IPAddress:     clientIP,
				FailureReason: "missing_admin_role",
			})
			s.timing.Wait()
			return nil, models.ErrNotAdmin
		default:
			s.logger.Error("credential resolution failed", slog.Any("error", err))
			return nil, models.ErrInternalServer
		}
	}

	if err := s.verifier.Verify(ctx, ref.Email, password); err != nil {
		if errors.Is(err, models.ErrUnauthorized) {
			s.recordFailure(clientIP)
			s.audit.LogAuthAttempt(pkglogger.AuditEvent{
				EventType:     pkglogger.EventAdminLoginFailed,
				UserID:        ref.UserID,
				Username:      username,
				IPAddress:     clientIP,
				FailureReason: "invalid_credentials",
			})
			s.timing.Wait()
			return nil, models.ErrUnauthorized
		}
		s.logger.Error("credential verification failed", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.limiter.Clear(clientIP)

	session, err := s.sessions.Issue(ref.UserID, ref.Email)
	if err != nil {
		s.logger.Error("failed to issue session", slog.String("user_id", ref.UserID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.audit.LogAuthAttempt(pkglogger.AuditEvent{
		EventType: pkglogger.EventAdminLoginSuccess,
		UserID:    ref.UserID,
		Username:  ref.Username,
		IPAddress: clientIP,
		Success:   true,
	})

	return &LoginResult{
		Session: session,
		User: &models.AdminUser{
			ID:       ref.UserID,
			Username: ref.Username,
			Email:    ref.Email,
		},
	}, nil
}

func (s *AuthService) recordFailure(clientIP string) {
	if !s.limiter.RecordFailure(clientIP) {
		return
	}

	s.audit.LogClientBlocked(clientIP)

	if s.notifier == nil {
		return
	}
	// Best effort, off the request path.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.notifier.NotifyLockout(ctx, clientIP); err != nil {
			s.logger.Error("lockout notification failed", slog.Any("error", err))
		}
	}()
}
