package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Storage   StorageConfig
	Alerts    AlertsConfig
}

type ServerConfig struct {
	Port                 string
	Env                  string
	LogLevel             string
	TrustedProxies       []string
	AllowedOrigins       []string
	GlobalRequestsPerMin int
}

type DatabaseConfig struct {
	Host              string
	Port              int
	User              string
	Password          string
	Name              string
	SSLMode           string
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
	RunMigrations     bool
}

type AuthConfig struct {
	JWTSecret          string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
	MaxLoginAttempts   int
	LoginBlockDuration time.Duration
	LoginAttemptWindow time.Duration
	TimingDelayBaseMs  int
	TimingDelayJitterMs int
}

type RateLimitConfig struct {
	SignedURLPerMinute int
	IncrementPerMinute int
	SweepInterval      time.Duration
}

type StorageConfig struct {
	Region       string
	Bucket       string
	SignedURLTTL time.Duration
}

// AlertsConfig controls the optional lockout alert email. Alerts are disabled
// unless both addresses are set.
type AlertsConfig struct {
	FromAddress string
	ToAddress   string
	Region      string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	env := getEnv("ENV", "development")

	cfg := &Config{
		Server: ServerConfig{
			Port:                 getEnv("PORT", "8080"),
			Env:                  env,
			LogLevel:             getEnv("LOG_LEVEL", "info"),
			TrustedProxies:       splitAndTrim(getEnv("TRUSTED_PROXIES", "")),
			AllowedOrigins:       splitAndTrim(getEnv("CORS_ALLOWED_ORIGINS", "")),
			GlobalRequestsPerMin: getEnvAsInt("GLOBAL_REQUESTS_PER_MINUTE", 120),
		},
		Database: DatabaseConfig{
			Host:              getEnv("DB_HOST", "localhost"),
			Port:              getEnvAsInt("DB_PORT", 5432),
			User:              getEnv("DB_USER", "postgres"),
			Password:          getEnv("DB_PASSWORD", ""),
			Name:              getEnv("DB_NAME", "mjdocs"),
			SSLMode:           getEnv("DB_SSLMODE", "disable"),
			MaxConns:          int32(getEnvAsInt("DB_MAX_CONNS", 25)),
			MinConns:          int32(getEnvAsInt("DB_MIN_CONNS", 5)),
			MaxConnLifetime:   getEnvAsDuration("DB_MAX_CONN_LIFETIME", 5*time.Minute),
			MaxConnIdleTime:   getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 1*time.Minute),
			HealthCheckPeriod: getEnvAsDuration("DB_HEALTH_CHECK_PERIOD", 1*time.Minute),
			RunMigrations:     getEnvAsBool("DB_RUN_MIGRATIONS", true),
		},
		Auth: AuthConfig{
			JWTSecret:           jwtSecret,
			AccessTokenExpiry:   getEnvAsDuration("ACCESS_TOKEN_EXPIRY", 15*time.Minute),
			RefreshTokenExpiry:  getEnvAsDuration("REFRESH_TOKEN_EXPIRY", 7*24*time.Hour),
			MaxLoginAttempts:    getEnvAsInt("MAX_LOGIN_ATTEMPTS", 5),
			LoginBlockDuration:  getEnvAsDuration("LOGIN_BLOCK_DURATION", 15*time.Minute),
			LoginAttemptWindow:  getEnvAsDuration("LOGIN_ATTEMPT_WINDOW", 5*time.Minute),
			TimingDelayBaseMs:   getEnvAsInt("TIMING_DELAY_BASE_MS", 100),
			TimingDelayJitterMs: getEnvAsInt("TIMING_DELAY_JITTER_MS", 150),
		},
		RateLimit: RateLimitConfig{
			SignedURLPerMinute: getEnvAsInt("SIGNED_URL_PER_MINUTE", 30),
			IncrementPerMinute: getEnvAsInt("INCREMENT_PER_MINUTE", 10),
			SweepInterval:      getEnvAsDuration("RATE_LIMIT_SWEEP_INTERVAL", 10*time.Minute),
		},
		Storage: StorageConfig{
			Region:       getEnv("AWS_REGION", "eu-central-1"),
			Bucket:       getEnv("DOCUMENTS_BUCKET", ""),
			SignedURLTTL: getEnvAsDuration("SIGNED_URL_TTL", 5*time.Minute),
		},
		Alerts: AlertsConfig{
			FromAddress: getEnv("ALERT_FROM_ADDRESS", ""),
			ToAddress:   getEnv("ALERT_TO_ADDRESS", ""),
			Region:      getEnv("AWS_REGION", "eu-central-1"),
		},
	}

	if cfg.Database.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}
	if cfg.Storage.Bucket == "" {
		return nil, fmt.Errorf("DOCUMENTS_BUCKET is required")
	}

	if err := validateJWTSecret(jwtSecret, env); err != nil {
		return nil, err
	}

	return cfg, nil
}

// AlertsEnabled reports whether the lockout alert email is configured.
func (c *AlertsConfig) AlertsEnabled() bool {
	return c.FromAddress != "" && c.ToAddress != ""
}

// validateJWTSecret enforces minimum strength for the session signing secret.
func validateJWTSecret(secret, env string) error {
	minLength := 16
	if env == "production" {
		minLength = 32
	}

	if len(secret) < minLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters in %s environment (got %d)",
			minLength, env, len(secret))
	}

	weakSecrets := []string{
		"secret", "test", "password", "12345", "changeme",
		"admin", "root", "default", "example",
	}

	secretLower := strings.ToLower(secret)
	for _, weak := range weakSecrets {
		if secretLower == weak {
			return fmt.Errorf("JWT_SECRET cannot be a common weak value")
		}
	}

	return nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
