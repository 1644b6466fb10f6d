package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mjdocs/gateway/internal/auth"
	"github.com/mjdocs/gateway/internal/background"
	"github.com/mjdocs/gateway/internal/config"
	"github.com/mjdocs/gateway/internal/database"
	"github.com/mjdocs/gateway/internal/handlers"
	middlewareCustom "github.com/mjdocs/gateway/internal/middleware"
	"github.com/mjdocs/gateway/internal/models"
	"github.com/mjdocs/gateway/internal/ratelimit"
	"github.com/mjdocs/gateway/internal/repositories"
	"github.com/mjdocs/gateway/internal/routes"
	"github.com/mjdocs/gateway/internal/services"
	"github.com/mjdocs/gateway/internal/storage"
	pkgauth "github.com/mjdocs/gateway/pkg/auth"
	pkghttp "github.com/mjdocs/gateway/pkg/http"
	pkglogger "github.com/mjdocs/gateway/pkg/logger"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	// Run schema migrations before opening the pool
	if cfg.Database.RunMigrations {
		migrateCtx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		if err := database.Migrate(migrateCtx, cfg.Database.DSN(), logger); err != nil {
			cancel()
			logger.Error("failed to run migrations", slog.Any("error", err))
			os.Exit(1)
		}
		cancel()
	}

	// Initialize database
	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Initialize repositories
	accountRepo := repositories.NewAccountRepository(db)
	documentRepo := repositories.NewDocumentRepository(db)

	// Rate limiters: one table per policy, all injectable and sweepable
	lockoutLimiter := ratelimit.NewLockoutLimiter(ratelimit.LockoutConfig{
		MaxAttempts:   cfg.Auth.MaxLoginAttempts,
		BlockDuration: cfg.Auth.LoginBlockDuration,
		AttemptWindow: cfg.Auth.LoginAttemptWindow,
		MaxEntries:    500,
	}, logger)

	signedURLLimiter := ratelimit.NewWindowLimiter(ratelimit.WindowConfig{
		Window:       time.Minute,
		MaxPerWindow: cfg.RateLimit.SignedURLPerMinute,
		MaxEntries:   1000,
	})

	incrementLimiter := ratelimit.NewSpacingLimiter(ratelimit.SpacingConfig{
		Window:       time.Minute,
		MaxPerWindow: cfg.RateLimit.IncrementPerMinute,
		MaxEntries:   1000,
	})

	sweeper := background.NewSweeper(map[string]background.Table{
		"login":      lockoutLimiter,
		"signed_url": signedURLLimiter,
		"increment":  incrementLimiter,
	}, logger, cfg.RateLimit.SweepInterval)

	// Auth collaborators
	auditLogger := pkglogger.NewAuditLogger(logger)
	sessionIssuer := auth.NewSessionIssuer(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenExpiry, cfg.Auth.RefreshTokenExpiry)
	passwordVerifier := auth.NewPasswordVerifier(accountRepo, logger)
	credentialResolver := services.NewCredentialResolver(accountRepo, logger)
	timingDelay := auth.NewTimingDelay(auth.TimingConfig{
		BaseDelayMs:   cfg.Auth.TimingDelayBaseMs,
		JitterDelayMs: cfg.Auth.TimingDelayJitterMs,
	})

	// Optional lockout alert email
	var lockoutNotifier services.LockoutNotifier
	if cfg.Alerts.AlertsEnabled() {
		alertService, err := services.NewSESAlertService(cfg.Alerts.Region, cfg.Alerts.FromAddress, cfg.Alerts.ToAddress, logger)
		if err != nil {
			logger.Error("failed to initialize alert service", slog.Any("error", err))
			os.Exit(1)
		}
		lockoutNotifier = alertService
	}

	// Storage presigner
	presignCtx, presignCancel := context.WithTimeout(context.Background(), 10*time.Second)
	presigner, err := storage.NewS3Presigner(presignCtx, cfg.Storage.Region, cfg.Storage.Bucket, logger)
	presignCancel()
	if err != nil {
		logger.Error("failed to initialize storage presigner", slog.Any("error", err))
		os.Exit(1)
	}

	// Initialize services
	authService := services.NewAuthService(
		credentialResolver,
		passwordVerifier,
		sessionIssuer,
		lockoutLimiter,
		timingDelay,
		lockoutNotifier,
		logger,
		auditLogger,
	)
	documentService := services.NewDocumentService(
		documentRepo,
		presigner,
		signedURLLimiter,
		incrementLimiter,
		cfg.Storage.SignedURLTTL,
		logger,
	)

	// Initialize handlers
	ipConfig := &pkghttp.IPConfig{TrustedProxies: cfg.Server.TrustedProxies}
	authHandler := handlers.NewAuthHandler(authService, ipConfig)
	documentHandler := handlers.NewDocumentHandler(documentService, ipConfig)

	// Bootstrap first admin user if configured
	bootstrapCtx, bootstrapCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := ensureAdminUser(bootstrapCtx, accountRepo, logger); err != nil {
		logger.Error("failed to ensure admin user", slog.Any("error", err))
	}
	bootstrapCancel()

	// Setup CORS middleware
	corsConfig := middlewareCustom.DefaultCORSConfig(cfg.Server.Env)
	if len(cfg.Server.AllowedOrigins) > 0 {
		corsConfig.AllowedOrigins = cfg.Server.AllowedOrigins
	}

	// Setup router
	// No RealIP middleware: rewriting RemoteAddr from forwarding headers
	// would let direct clients forge their rate-limit identity. All header
	// trust decisions live in pkghttp.ExtractClientIP.
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(corsConfig))
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))
	router.Use(middlewareCustom.RateLimitByIP(middlewareCustom.RateLimitConfig{
		RequestsPerMinute: cfg.Server.GlobalRequestsPerMin,
	}, ipConfig))

	// Register routes
	routes.RegisterRoutes(router, authHandler, documentHandler)

	// Health check with database
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.HealthCheck(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy","database":"down"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy","database":"up"}`))
	})

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start the limiter sweep task
	sweepCtx, sweepCancel := context.WithCancel(context.Background())
	defer sweepCancel()

	go sweeper.Start(sweepCtx)

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	sweepCancel()
	sweeper.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}

// ensureAdminUser creates the first admin account if ADMIN_USERNAME,
// ADMIN_EMAIL and ADMIN_PASSWORD are set.
func ensureAdminUser(ctx context.Context, accountRepo *repositories.AccountRepository, logger *slog.Logger) error {
	adminUsername := os.Getenv("ADMIN_USERNAME")
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminUsername == "" || adminEmail == "" || adminPassword == "" {
		logger.Info("admin bootstrap env not set, skipping admin user creation")
		return nil
	}

	// Check if the admin already exists
	account, err := accountRepo.GetAccountByEmail(ctx, adminEmail)
	if err == nil {
		logger.Info("admin user already exists")
		// Profile and role grant are idempotent; repair them if missing.
		if err := accountRepo.UpsertProfile(ctx, account.ID, adminUsername); err != nil {
			return fmt.Errorf("failed to upsert admin profile: %w", err)
		}
		if err := accountRepo.GrantRole(ctx, account.ID, models.RoleAdmin); err != nil {
			return fmt.Errorf("failed to grant admin role: %w", err)
		}
		return nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("failed to check if admin exists: %w", err)
	}

	hashedPassword, err := pkgauth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	userID, err := accountRepo.CreateAccount(ctx, adminEmail, hashedPassword)
	if err != nil {
		return fmt.Errorf("failed to create admin account: %w", err)
	}
	if err := accountRepo.UpsertProfile(ctx, userID, adminUsername); err != nil {
		return fmt.Errorf("failed to create admin profile: %w", err)
	}
	if err := accountRepo.GrantRole(ctx, userID, models.RoleAdmin); err != nil {
		return fmt.Errorf("failed to grant admin role: %w", err)
	}

	logger.Info("admin user created successfully", slog.String("user_id", userID))
	return nil
}
