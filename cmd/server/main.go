package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arbeit/talentportal/internal/ai"
	"github.com/arbeit/talentportal/internal/app"
	"github.com/arbeit/talentportal/internal/featureflags"
	"github.com/arbeit/talentportal/internal/handler"
	"github.com/arbeit/talentportal/internal/infrastructure/logger"
	infraredis "github.com/arbeit/talentportal/internal/infrastructure/redis"
	"github.com/arbeit/talentportal/internal/observability/tracing"
	"github.com/arbeit/talentportal/internal/reliability/retry"
	"github.com/arbeit/talentportal/internal/repository/memory"
	"github.com/arbeit/talentportal/internal/repository/postgres"
	redisrepo "github.com/arbeit/talentportal/internal/repository/redis"
	"github.com/arbeit/talentportal/internal/service"
	"github.com/arbeit/talentportal/internal/uploads"
	"github.com/arbeit/talentportal/internal/worker"
	"github.com/arbeit/talentportal/pkg/config"
	"github.com/arbeit/talentportal/pkg/database"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize structured logger and tracing
	log := logger.NewLogger(cfg.LogLevel, cfg.Environment)
	log.Info("starting talent portal server",
		slog.String("environment", cfg.Environment),
		slog.String("storage", cfg.StorageBackend),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := tracing.Init(ctx, log, tracing.Options{
		ServiceName:   "talentportal",
		Environment:   cfg.Environment,
		Endpoint:      cfg.OTLPEndpoint,
		SamplePercent: cfg.TraceSamplePercent,
	})
	if err != nil {
		log.Warn("tracing disabled", slog.String("error", err.Error()))
	}

	// 3. Initialize storage
	checks := map[string]handler.Pinger{}
	repos, closeStorage, err := openStorage(ctx, cfg, log, checks)
	if err != nil {
		log.Error("failed to initialize storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeStorage()

	var exports service.ExportCache
	checks["redis"] = nil
	if cfg.RedisURL != "" {
		redisClient, err := infraredis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Error("failed to connect to Redis", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer redisClient.Close()
		checks["redis"] = redisClient
		if featureflags.EnabledOr(featureflags.PDFCache, true) {
			exports = redisrepo.NewExportCache(redisClient, cfg.ExportCacheTTL, log)
		}
	} else if featureflags.EnabledOr(featureflags.PDFCache, true) {
		exports = service.NewMemoryExportCache(cfg.ExportCacheTTL)
	}

	files, err := uploads.NewStore(cfg.UploadsDir)
	if err != nil {
		log.Error("failed to initialize uploads dir", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Pick the AI provider
	var provider ai.Provider = ai.NewHeuristicProvider()
	if cfg.AnthropicAPIKey != "" && featureflags.EnabledOr(featureflags.AIStories, true) {
		claude := ai.NewClaudeProvider(cfg.AnthropicAPIKey, cfg.AIMaxTokens, log)
		provider = ai.NewResilientProvider(claude, ai.NewHeuristicProvider(), nil, retry.DefaultConfig(), cfg.AITimeout, log)
	}
	log.Info("ai provider selected", slog.String("provider", provider.Name()))

	if cfg.SeedDemoData {
		if err := service.Seed(ctx, repos.Users, repos.Clients, repos.Jobs, log); err != nil {
			log.Error("failed to seed demo data", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	// 5. Wire services, handlers and middleware
	portal := app.New(app.Options{
		Config:     cfg,
		Repos:      repos,
		Provider:   provider,
		Uploads:    files,
		Exports:    exports,
		Checks:     checks,
		ReviewFeed: featureflags.EnabledOr(featureflags.ReviewFeed, true),
		Logger:     log,
	})
	defer portal.Close()

	// 6. Start the upload sweeper in background
	sweeper := worker.NewUploadSweeper(files, repos.Candidates, log, cfg.SweepInterval, worker.DefaultGracePeriod)
	go func() {
		if err := sweeper.Start(ctx); err != nil {
			log.Error("upload sweeper failed", slog.String("error", err.Error()))
		}
	}()

	// 7. Start HTTP server
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           portal.Handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      cfg.AITimeout + 30*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Info("server starting",
		slog.Int("port", cfg.ServerPort),
		slog.String("auth", "jwt"),
		slog.Int("rate_limit", cfg.RateLimitPerMinute),
		slog.String("rate_limit_window", "1m"),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.String("error", err.Error()))
			sigChan <- syscall.SIGTERM
		}
	}()

	<-sigChan
	log.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.String("error", err.Error()))
	}
	cancel()
	if shutdownTracing != nil {
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Warn("tracing shutdown error", slog.String("error", err.Error()))
		}
	}
	log.Info("server stopped")
}

// openStorage returns the repositories for the configured backend and
// registers its readiness check
func openStorage(ctx context.Context, cfg *config.Config, log *slog.Logger, checks map[string]handler.Pinger) (app.Repositories, func(), error) {
	if cfg.StorageBackend == "memory" {
		log.Warn("using in-memory storage; data is lost on restart")
		store := memory.NewStore()
		checks["database"] = nil
		return app.Repositories{
			Users:             store.Users,
			Clients:           store.Clients,
			Jobs:              store.Jobs,
			Candidates:        store.Candidates,
			Reviews:           store.Reviews,
			CandidateAccounts: store.CandidateAccounts,
		}, func() {}, nil
	}

	dbCfg := database.DefaultConfig()
	dbCfg.DSN = cfg.DatabaseURL
	pool, err := database.NewConnectionPool(ctx, dbCfg, log)
	if err != nil {
		return app.Repositories{}, nil, err
	}
	if err := pool.Migrate(ctx); err != nil {
		pool.Close()
		return app.Repositories{}, nil, fmt.Errorf("migrate: %w", err)
	}
	checks["database"] = handler.PingFunc(pool.Health)

	db := pool.GetDB()
	return app.Repositories{
		Users:             postgres.NewUserRepository(db, log),
		Clients:           postgres.NewClientRepository(db, log),
		Jobs:              postgres.NewJobRepository(db, log),
		Candidates:        postgres.NewCandidateRepository(db, log),
		Reviews:           postgres.NewReviewRepository(db, log),
		CandidateAccounts: postgres.NewCandidateAccountRepository(db, log),
	}, func() { pool.Close() }, nil
}
