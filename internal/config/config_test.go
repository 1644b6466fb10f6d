package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "a-sufficiently-long-signing-secret")
	t.Setenv("DB_PASSWORD", "postgres")
	t.Setenv("DOCUMENTS_BUCKET", "mjdocs-documents")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	assert.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 5, cfg.Auth.MaxLoginAttempts)
	assert.Equal(t, 15*time.Minute, cfg.Auth.LoginBlockDuration)
	assert.Equal(t, 5*time.Minute, cfg.Auth.LoginAttemptWindow)
	assert.Equal(t, 30, cfg.RateLimit.SignedURLPerMinute)
	assert.Equal(t, 10, cfg.RateLimit.IncrementPerMinute)
	assert.Equal(t, 5*time.Minute, cfg.Storage.SignedURLTTL)
	assert.True(t, cfg.Database.RunMigrations)
	assert.False(t, cfg.Alerts.AlertsEnabled())
}

func TestLoad_RequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_PASSWORD", "postgres")
	t.Setenv("DOCUMENTS_BUCKET", "mjdocs-documents")

	_, err := Load()
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestLoad_RequiresBucket(t *testing.T) {
	t.Setenv("JWT_SECRET", "a-sufficiently-long-signing-secret")
	t.Setenv("DB_PASSWORD", "postgres")
	t.Setenv("DOCUMENTS_BUCKET", "")

	_, err := Load()
	assert.ErrorContains(t, err, "DOCUMENTS_BUCKET")
}

func TestLoad_RejectsWeakSecretInProduction(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ENV", "production")
	t.Setenv("JWT_SECRET", "short-secret")

	_, err := Load()
	assert.ErrorContains(t, err, "at least 32 characters")
}

func TestLoad_OverridesAndAlerts(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("MAX_LOGIN_ATTEMPTS", "3")
	t.Setenv("SIGNED_URL_TTL", "2m")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 172.16.0.0/12")
	t.Setenv("ALERT_FROM_ADDRESS", "gateway@mjdocs.example")
	t.Setenv("ALERT_TO_ADDRESS", "ops@mjdocs.example")

	cfg, err := Load()
	assert.NoError(t, err)

	assert.Equal(t, 3, cfg.Auth.MaxLoginAttempts)
	assert.Equal(t, 2*time.Minute, cfg.Storage.SignedURLTTL)
	assert.Equal(t, []string{"10.0.0.0/8", "172.16.0.0/12"}, cfg.Server.TrustedProxies)
	assert.True(t, cfg.Alerts.AlertsEnabled())
}
