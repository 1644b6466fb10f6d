package integration

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/mjdocs/gateway/internal/auth"
	"github.com/mjdocs/gateway/internal/models"
	"github.com/mjdocs/gateway/internal/ratelimit"
	"github.com/mjdocs/gateway/internal/repositories"
	"github.com/mjdocs/gateway/internal/services"
	pkglogger "github.com/mjdocs/gateway/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(db *TestDB) *services.AuthService {
	logger := testLogger()
	accountRepo := repositories.NewAccountRepository(db.DB)

	return services.NewAuthService(
		services.NewCredentialResolver(accountRepo, logger),
		auth.NewPasswordVerifier(accountRepo, logger),
		auth.NewSessionIssuer("integration-test-secret-key", 15*time.Minute, 7*24*time.Hour),
		ratelimit.NewLockoutLimiter(ratelimit.DefaultLockoutConfig(), logger),
		auth.NewTimingDelay(auth.TimingConfig{}),
		nil,
		logger,
		pkglogger.NewAuditLogger(logger),
	)
}

func uniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d@example.com", prefix, time.Now().UnixNano())
}

func TestAdminLoginFlow(t *testing.T) {
	db := suite(t)
	ctx := context.Background()

	username := fmt.Sprintf("admin-%d", time.Now().UnixNano())
	userID, err := db.SeedAdmin(ctx, username, uniqueEmail("admin"), "mj200710")
	require.NoError(t, err)

	svc := newAuthService(db)

	result, err := svc.AdminLogin(ctx, username, "mj200710", "10.1.0.1")
	require.NoError(t, err)
	assert.Equal(t, userID, result.User.ID)
	assert.Equal(t, username, result.User.Username)
	assert.NotEmpty(t, result.Session.AccessToken)
	assert.NotEmpty(t, result.Session.RefreshToken)
	assert.Equal(t, "bearer", result.Session.TokenType)
}

func TestAdminLoginFlow_CaseInsensitiveUsername(t *testing.T) {
	db := suite(t)
	ctx := context.Background()

	username := fmt.Sprintf("Admin-%d", time.Now().UnixNano())
	userID, err := db.SeedAdmin(ctx, username, uniqueEmail("case"), "mj200710")
	require.NoError(t, err)

	svc := newAuthService(db)

	// Log in with a case-flipped variant so the LOWER(username) lookup is
	// what actually matches.
	flipped := strings.ToUpper(username)
	require.NotEqual(t, username, flipped)

	result, err := svc.AdminLogin(ctx, flipped, "mj200710", "10.1.0.2")
	require.NoError(t, err)
	assert.Equal(t, userID, result.User.ID)
	assert.Equal(t, username, result.User.Username, "response carries the stored casing")
}

func TestAdminLoginFlow_NonAdmin(t *testing.T) {
	db := suite(t)
	ctx := context.Background()

	username := fmt.Sprintf("user-%d", time.Now().UnixNano())
	_, err := db.SeedUser(ctx, username, uniqueEmail("plain"), "mj200710")
	require.NoError(t, err)

	svc := newAuthService(db)

	_, err = svc.AdminLogin(ctx, username, "mj200710", "10.1.0.3")
	assert.ErrorIs(t, err, models.ErrNotAdmin)
}

func TestAdminLoginFlow_LockoutThenThrottled(t *testing.T) {
	db := suite(t)
	ctx := context.Background()

	username := fmt.Sprintf("locked-%d", time.Now().UnixNano())
	_, err := db.SeedAdmin(ctx, username, uniqueEmail("locked"), "mj200710")
	require.NoError(t, err)

	svc := newAuthService(db)
	clientIP := "10.1.0.4"

	for i := 0; i < 5; i++ {
		_, err := svc.AdminLogin(ctx, username, "wrong-password", clientIP)
		assert.ErrorIs(t, err, models.ErrUnauthorized, "attempt %d", i+1)
	}

	_, err = svc.AdminLogin(ctx, username, "mj200710", clientIP)
	assert.ErrorIs(t, err, models.ErrRateLimited, "correct password must not bypass the block")

	// A different client with the right credentials still gets in.
	result, err := svc.AdminLogin(ctx, username, "mj200710", "10.1.0.5")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Session.AccessToken)
}
