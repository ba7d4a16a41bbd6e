package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"mediguard/internal/config"
	"mediguard/internal/email/noop"
	"mediguard/internal/email/ses"
	"mediguard/internal/guest"
	"mediguard/internal/handler"
	"mediguard/internal/llm"
	_ "mediguard/internal/llm/claude"
	_ "mediguard/internal/llm/openai"
	"mediguard/internal/logging"
	"mediguard/internal/port"
	"mediguard/internal/repository/postgres"
	"mediguard/internal/router"
	"mediguard/internal/service"
	s3storage "mediguard/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.Setup(cfg.Log.Format, cfg.Log.Level)
	zerolog.DefaultContextLogger = &logger
	ctx := logger.WithContext(context.Background())

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	userRepo := postgres.NewUserRepo(db)
	profileRepo := postgres.NewProfileRepo(db)
	historyRepo := postgres.NewHistoryRepo(db)
	guestRepo := postgres.NewGuestUsageRepo(db)

	// Initialize storage
	var storage port.ObjectStorage
	if cfg.S3.Enabled {
		storage, err = s3storage.NewS3Client(&cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
		logger.Info().Str("bucket", cfg.S3.Bucket).Msg("bill uploads will be kept in S3")
	}

	emails, err := newEmailSender(&cfg.Email)
	if err != nil {
		return fmt.Errorf("failed to initialize email sender: %w", err)
	}

	// A missing credential is not fatal: analyze requests answer with a
	// configuration error until one is provided.
	var completion port.CompletionClient
	if cfg.Analyzer.Configured() {
		completion, err = llm.NewClient(&cfg.Analyzer)
		if err != nil {
			return fmt.Errorf("failed to initialize completion client: %w", err)
		}
		logger.Info().Str("provider", cfg.Analyzer.Provider).Str("model", cfg.Analyzer.Model).Msg("completion provider ready")
	} else {
		logger.Warn().Msg("no analyzer API key configured; bill analysis is disabled")
	}

	// Initialize services
	authSvc := service.NewAuthService(userRepo, profileRepo, cfg.JWT)
	guestSvc := service.NewGuestService(guestRepo, guest.NewPolicy(cfg.Guest.Limit, cfg.Guest.Window))
	profileSvc := service.NewProfileService(userRepo, profileRepo)
	historySvc := service.NewHistoryService(historyRepo, storage, &cfg.S3)
	analysisSvc := service.NewAnalysisService(completion, guestSvc, historyRepo, userRepo, profileRepo, storage, emails, &cfg.S3)

	// Initialize handlers
	handlers := router.Handlers{
		Auth:    handler.NewAuthHandler(authSvc),
		Analyze: handler.NewAnalyzeHandler(analysisSvc, cfg.Server.MaxUploadMB),
		History: handler.NewHistoryHandler(historySvc),
		Profile: handler.NewProfileHandler(profileSvc),
		Guest:   handler.NewGuestHandler(guestSvc),
		Health:  handler.NewHealthHandler(db),
	}

	// Setup router
	r := router.Setup(authSvc, handlers, router.Options{
		Logger:         logger,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		GuestCookie:    cfg.Server.GuestCookie,
		SecureCookies:  cfg.Server.Environment == "production",
	})

	srv := &http.Server{
		Addr:              cfg.Server.Port,
		Handler:           r,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Server.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

func newEmailSender(cfg *config.EmailConfig) (port.EmailSender, error) {
	switch cfg.Provider {
	case "ses":
		return ses.NewSESSender(cfg.Region, cfg.FromAddress, cfg.FromName, cfg.FrontendURL)
	case "", "noop":
		return noop.NewNoopSender(cfg.FrontendURL), nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.Provider)
	}
}
