package internal

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/DukeRupert/careerlift/internal/domain"
	"github.com/joho/godotenv"
)

type Config struct {
	Env         string
	Port        int
	LogLevel    string
	DatabaseUrl string

	// Bearer token verification (HS256 shared secret, Supabase-style)
	JWTSecret   string
	JWTAudience string // Optional; checked when set

	// Frontend origin, used for Stripe return URLs
	AppURL string

	// AI Provider Configuration
	AIProvider       string // "groq", "anthropic" or "mock"
	GroqAPIKey       string
	GroqModel        string
	AnthropicAPIKey  string
	AnthropicModel   string
	AIMaxRetries     int
	AIRetryBaseDelay time.Duration
	AIRequestTimeout time.Duration

	// Daily quota per plan
	PlanLimits                  domain.PlanLimits
	QuotaRefundOnGatewayFailure bool

	// HTTP edge
	CORSAllowedOrigins []string
	RateLimitBackend   string // "memory" or "redis"
	RateLimitRequests  int
	RateLimitWindow    time.Duration
	RedisURL           string

	// History archive
	ArchiveProvider   string // "none", "local" or "r2"
	LocalStoragePath  string
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2Endpoint        string // Optional override of the account endpoint

	// Worker Configuration
	WorkerEnabled      bool
	WorkerConcurrency  int
	WorkerPollInterval time.Duration
	WorkerJobTimeout   time.Duration

	// Stripe Billing Configuration
	// In development, billing endpoints answer 501 if these are empty.
	StripeSecretKey       string
	StripeWebhookSecret   string
	StripePremiumPriceIDs []string
	StripeProPriceIDs     []string

	// Metrics endpoint authentication
	// If both are empty, the /metrics endpoint will be unprotected (not recommended)
	MetricsUsername string
	MetricsPassword string
}

func NewConfig() (*Config, error) {
	// Load .env file if it exists (ignored in production)
	_ = godotenv.Load()

	cfg := &Config{
		Env:      getEnv("ENV", "development"),
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "debug"),

		JWTSecret:   os.Getenv("JWT_SECRET"),
		JWTAudience: getEnv("JWT_AUDIENCE", ""),
		AppURL:      getEnv("APP_URL", "http://localhost:5173"),

		AIProvider:       strings.ToLower(getEnv("AI_PROVIDER", "mock")),
		GroqAPIKey:       getEnv("GROQ_API_KEY", ""),
		GroqModel:        getEnv("GROQ_MODEL", "llama-3.3-70b-versatile"),
		AnthropicAPIKey:  getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel:   getEnv("ANTHROPIC_MODEL", "claude-3-5-sonnet-20241022"),
		AIMaxRetries:     getEnvInt("AI_MAX_RETRIES", 1),
		AIRetryBaseDelay: getEnvDuration("AI_RETRY_BASE_DELAY", 1*time.Second),
		AIRequestTimeout: getEnvDuration("AI_REQUEST_TIMEOUT", 60*time.Second),

		PlanLimits: domain.PlanLimits{
			domain.PlanFree:    getEnvInt("QUOTA_FREE_DAILY", domain.DefaultPlanLimits[domain.PlanFree]),
			domain.PlanPremium: getEnvInt("QUOTA_PREMIUM_DAILY", domain.DefaultPlanLimits[domain.PlanPremium]),
			domain.PlanPro:     getEnvInt("QUOTA_PRO_DAILY", domain.DefaultPlanLimits[domain.PlanPro]),
		},
		QuotaRefundOnGatewayFailure: getEnvBool("QUOTA_REFUND_ON_GATEWAY_FAILURE", false),

		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS"),
		RateLimitBackend:   strings.ToLower(getEnv("RATE_LIMIT_BACKEND", "memory")),
		RateLimitRequests:  getEnvInt("RATE_LIMIT_REQUESTS", 60),
		RateLimitWindow:    getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		RedisURL:           getEnv("REDIS_URL", ""),

		ArchiveProvider:   strings.ToLower(getEnv("ARCHIVE_PROVIDER", "none")),
		LocalStoragePath:  getEnv("LOCAL_STORAGE_PATH", "./archive"),
		R2AccountID:       getEnv("R2_ACCOUNT_ID", ""),
		R2AccessKeyID:     getEnv("R2_ACCESS_KEY_ID", ""),
		R2SecretAccessKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
		R2BucketName:      getEnv("R2_BUCKET_NAME", ""),
		R2Endpoint:        getEnv("R2_ENDPOINT", ""),

		WorkerEnabled:      getEnvBool("WORKER_ENABLED", true),
		WorkerConcurrency:  getEnvInt("WORKER_CONCURRENCY", 2),
		WorkerPollInterval: getEnvDuration("WORKER_POLL_INTERVAL", 5*time.Second),
		WorkerJobTimeout:   getEnvDuration("WORKER_JOB_TIMEOUT", 1*time.Minute),

		StripeSecretKey:       getEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret:   getEnv("STRIPE_WEBHOOK_SECRET", ""),
		StripePremiumPriceIDs: getEnvList("STRIPE_PREMIUM_PRICE_IDS"),
		StripeProPriceIDs:     getEnvList("STRIPE_PRO_PRICE_IDS"),

		MetricsUsername: getEnv("METRICS_USERNAME", ""),
		MetricsPassword: getEnv("METRICS_PASSWORD", ""),
	}

	// Required
	cfg.DatabaseUrl = os.Getenv("DATABASE_URL")
	if cfg.DatabaseUrl == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the cross-field rules NewConfig cannot express as defaults.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	switch c.AIProvider {
	case "groq":
		if c.GroqAPIKey == "" {
			return fmt.Errorf("GROQ_API_KEY is required when AI_PROVIDER is 'groq'")
		}
	case "anthropic":
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required when AI_PROVIDER is 'anthropic'")
		}
	case "mock":
		if c.Env == "production" {
			return fmt.Errorf("AI_PROVIDER 'mock' is not allowed in production")
		}
	default:
		return fmt.Errorf("AI_PROVIDER must be 'groq', 'anthropic' or 'mock', got: %s", c.AIProvider)
	}
	if c.AIMaxRetries < 1 {
		return fmt.Errorf("AI_MAX_RETRIES must be at least 1, got %d", c.AIMaxRetries)
	}

	if err := c.PlanLimits.Validate(); err != nil {
		return fmt.Errorf("invalid quota configuration: %w", err)
	}

	switch c.RateLimitBackend {
	case "memory":
	case "redis":
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when RATE_LIMIT_BACKEND is 'redis'")
		}
	default:
		return fmt.Errorf("RATE_LIMIT_BACKEND must be 'memory' or 'redis', got: %s", c.RateLimitBackend)
	}
	if c.RateLimitRequests < 1 || c.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive")
	}

	switch c.ArchiveProvider {
	case "none", "local":
	case "r2":
		if c.R2AccountID == "" && c.R2Endpoint == "" {
			return fmt.Errorf("R2_ACCOUNT_ID is required when ARCHIVE_PROVIDER is 'r2'")
		}
		if c.R2AccessKeyID == "" {
			return fmt.Errorf("R2_ACCESS_KEY_ID is required when ARCHIVE_PROVIDER is 'r2'")
		}
		if c.R2SecretAccessKey == "" {
			return fmt.Errorf("R2_SECRET_ACCESS_KEY is required when ARCHIVE_PROVIDER is 'r2'")
		}
		if c.R2BucketName == "" {
			return fmt.Errorf("R2_BUCKET_NAME is required when ARCHIVE_PROVIDER is 'r2'")
		}
	default:
		return fmt.Errorf("ARCHIVE_PROVIDER must be 'none', 'local' or 'r2', got: %s", c.ArchiveProvider)
	}

	if c.StripeSecretKey != "" && c.StripeWebhookSecret == "" {
		return fmt.Errorf("STRIPE_WEBHOOK_SECRET is required when STRIPE_SECRET_KEY is set")
	}

	if _, err := url.ParseRequestURI(c.AppURL); err != nil {
		return fmt.Errorf("APP_URL must be an absolute URL: %w", err)
	}

	return nil
}

// BillingEnabled reports whether Stripe is configured.
func (c *Config) BillingEnabled() bool {
	return c.StripeSecretKey != ""
}

// ArchiveEnabled reports whether history rows are copied to object storage.
func (c *Config) ArchiveEnabled() bool {
	return c.ArchiveProvider != "none"
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

// getEnvList splits a comma-separated variable, dropping blank entries.
func getEnvList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
