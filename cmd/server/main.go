package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DukeRupert/careerlift/internal"
	"github.com/DukeRupert/careerlift/internal/ai"
	"github.com/DukeRupert/careerlift/internal/ai/anthropic"
	"github.com/DukeRupert/careerlift/internal/ai/groq"
	"github.com/DukeRupert/careerlift/internal/ai/mock"
	"github.com/DukeRupert/careerlift/internal/billing"
	"github.com/DukeRupert/careerlift/internal/handler"
	"github.com/DukeRupert/careerlift/internal/jobs"
	"github.com/DukeRupert/careerlift/internal/metrics"
	"github.com/DukeRupert/careerlift/internal/middleware"
	"github.com/DukeRupert/careerlift/internal/repository"
	"github.com/DukeRupert/careerlift/internal/service"
	"github.com/DukeRupert/careerlift/internal/storage"
	"github.com/DukeRupert/careerlift/internal/worker"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize database connection
	db, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	if err := internal.RunMigrations(ctx, db, logger); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database ready")

	repo := repository.NewStore(db)

	// ==========================================================================
	// AI provider
	// ==========================================================================

	provider, err := newProvider(cfg, repo, logger)
	if err != nil {
		return fmt.Errorf("AI provider initialization failed: %w", err)
	}
	logger.Info("AI provider ready", "provider", provider.Name())

	// ==========================================================================
	// Background archive
	// ==========================================================================

	var archiver service.ArchiveEnqueuer
	var bgWorker *worker.Worker
	if cfg.ArchiveEnabled() {
		archive, err := newArchiveStorage(cfg, logger)
		if err != nil {
			return fmt.Errorf("archive storage initialization failed: %w", err)
		}
		archiver = worker.NewEnqueuer(repo)

		if cfg.WorkerEnabled {
			wcfg := worker.DefaultConfig()
			wcfg.Concurrency = cfg.WorkerConcurrency
			wcfg.PollInterval = cfg.WorkerPollInterval
			wcfg.JobTimeout = cfg.WorkerJobTimeout
			if wcfg.StaleJobThreshold <= wcfg.JobTimeout {
				wcfg.StaleJobThreshold = 2 * wcfg.JobTimeout
			}

			bgWorker, err = worker.New(db, repo.Queries, wcfg, logger.With("component", "worker"))
			if err != nil {
				return fmt.Errorf("worker initialization failed: %w", err)
			}
			bgWorker.Register(jobs.NewArchiveHistoryHandler(repo, archive, logger))
		}
	}

	// ==========================================================================
	// Services
	// ==========================================================================

	var billingService billing.Service
	if cfg.BillingEnabled() {
		billingService = billing.NewStripeService(cfg.StripeSecretKey, cfg.StripeWebhookSecret, billing.PriceConfig{
			PremiumPriceIDs: cfg.StripePremiumPriceIDs,
			ProPriceIDs:     cfg.StripeProPriceIDs,
		})
	} else {
		logger.Warn("Stripe is not configured, billing endpoints are disabled")
	}

	quotaService := service.NewQuotaService(repo, cfg.PlanLimits, logger)
	guidanceService := service.NewGuidanceService(quotaService, provider, repo, archiver, service.GuidanceServiceConfig{
		RefundOnGatewayFailure: cfg.QuotaRefundOnGatewayFailure,
	}, logger)
	profileService := service.NewProfileService(repo, logger)
	historyService := service.NewHistoryService(repo, logger)
	savedCareerService := service.NewSavedCareerService(repo, logger)
	skillService := service.NewSkillService(repo, logger)
	goalService := service.NewGoalService(repo, logger)
	dashboardService := service.NewDashboardService(repo, logger)
	subscriptionService := service.NewSubscriptionService(repo, billingService, logger)

	// ==========================================================================
	// Middleware
	// ==========================================================================

	limiter, closeLimiter, err := newLimiter(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("rate limiter initialization failed: %w", err)
	}
	defer closeLimiter()

	isSecure := cfg.Env != "development"
	authMw := middleware.NewAuthMiddleware(cfg.JWTSecret, cfg.JWTAudience, logger)
	rateLimitMw := middleware.NewRateLimitMiddleware(limiter, logger)
	requireUser := middleware.Stack(rateLimitMw.Limit, authMw.RequireUser)

	// ==========================================================================
	// Create router and register routes
	// ==========================================================================

	mux := http.NewServeMux()

	handler.NewHealthHandler(db, logger).RegisterRoutes(mux)
	handler.NewGuidanceHandler(guidanceService, quotaService, logger).RegisterRoutes(mux, requireUser)
	handler.NewProfileHandler(profileService, logger).RegisterRoutes(mux, requireUser)
	handler.NewHistoryHandler(historyService, savedCareerService, logger).RegisterRoutes(mux, requireUser)
	handler.NewProgressHandler(skillService, goalService, dashboardService, logger).RegisterRoutes(mux, requireUser)
	handler.NewBillingHandler(subscriptionService, cfg.AppURL, logger).RegisterRoutes(mux, requireUser)
	handler.NewWebhookHandler(billingService, subscriptionService, logger).RegisterRoutes(mux)

	metricsAuth := middleware.NewMetricsAuthMiddleware(cfg.MetricsUsername, cfg.MetricsPassword)
	mux.Handle("GET /metrics", metricsAuth.Handler(promhttp.Handler()))
	if cfg.MetricsUsername == "" && cfg.MetricsPassword == "" {
		logger.Warn("/metrics is not protected, set METRICS_USERNAME and METRICS_PASSWORD")
	}

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		handler.NotFoundResponse(w, r, logger)
	})

	// Outermost first: logging sees every response, CORS answers preflights
	// before anything else runs.
	root := middleware.Stack(
		middleware.NewRequestLoggingMiddleware(logger).Handler,
		metrics.Middleware,
		middleware.NewSecurityHeadersMiddleware(isSecure).Handler,
		middleware.CORS(cfg.CORSAllowedOrigins),
	)(mux)

	// ==========================================================================
	// Start server
	// ==========================================================================

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           root,
		ReadHeaderTimeout: 10 * time.Second,
		// Completions can take most of AI_REQUEST_TIMEOUT.
		WriteTimeout: cfg.AIRequestTimeout + 15*time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	if bgWorker != nil {
		bgWorker.Start(ctx)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Server started", "address", server.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}
	logger.Info("Shutdown signal received, initiating graceful shutdown...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}
	if bgWorker != nil {
		bgWorker.Stop()
	}

	logger.Info("Graceful shutdown complete")
	return nil
}

// newProvider selects the completion gateway named by AI_PROVIDER.
func newProvider(cfg *internal.Config, usage ai.UsageStore, logger *slog.Logger) (ai.CompletionProvider, error) {
	providerCfg := ai.ProviderConfig{
		MaxRetries:     cfg.AIMaxRetries,
		RetryBaseDelay: cfg.AIRetryBaseDelay,
		RequestTimeout: cfg.AIRequestTimeout,
	}

	switch cfg.AIProvider {
	case "groq":
		return groq.New(groq.Config{
			APIKey:         cfg.GroqAPIKey,
			Model:          cfg.GroqModel,
			ProviderConfig: providerCfg,
		}, usage, logger)
	case "anthropic":
		return anthropic.New(anthropic.Config{
			APIKey:         cfg.AnthropicAPIKey,
			Model:          cfg.AnthropicModel,
			ProviderConfig: providerCfg,
		}, usage, logger)
	default:
		logger.Warn("Using mock AI provider")
		return mock.New(logger), nil
	}
}

// newArchiveStorage builds the object store for history archives.
func newArchiveStorage(cfg *internal.Config, logger *slog.Logger) (storage.Storage, error) {
	switch cfg.ArchiveProvider {
	case storage.ProviderR2:
		return storage.NewR2Storage(storage.R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			Endpoint:        cfg.R2Endpoint,
		}, logger)
	default:
		return storage.NewLocalStorage(storage.LocalConfig{BasePath: cfg.LocalStoragePath}, logger)
	}
}

// newLimiter builds the per-IP limiter. The returned func releases the
// backend connection.
func newLimiter(ctx context.Context, cfg *internal.Config, logger *slog.Logger) (middleware.Limiter, func(), error) {
	if cfg.RateLimitBackend != "redis" {
		return middleware.NewMemoryLimiter(ctx, cfg.RateLimitRequests, cfg.RateLimitWindow), func() {}, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		// The limiter fails open, so a cold Redis only disables limiting.
		logger.Warn("Redis is unreachable, rate limiting will fail open", "error", err)
	}

	return middleware.NewRedisLimiter(client, cfg.RateLimitRequests, cfg.RateLimitWindow), func() {
		if err := client.Close(); err != nil {
			logger.Warn("Failed to close Redis client", "error", err)
		}
	}, nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
