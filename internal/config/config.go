package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	RedisURL           string
	CORSAllowedOrigins []string

	UpstreamBaseURL  string
	UpstreamAPIToken string
	UpstreamOrgID    string
	UpstreamTimeout  time.Duration

	CurrencyCode    string
	CartTTL         time.Duration
	IdempotencyTTL  time.Duration
	CheckoutLockTTL time.Duration
	CatalogCacheTTL time.Duration
	ReceiptTTL      time.Duration

	RetryBase          time.Duration
	RetryMaxAttempts   int
	RetryJitterPercent float64
	CircuitMinReq      int
	CircuitFailureRate float64
	CircuitOpenFor     time.Duration

	RateLimitWindow time.Duration
	RateLimitMax    int64

	MaxBodyBytes       int64
	SecurityHeaders    bool
	SecurityHSTS       bool
	SecurityHSTSMaxAge int

	ObsLogLevel          string
	ObsLogFormat         string
	ObsMetricsEnabled    bool
	ObsTracingEnabled    bool
	ObsTracingEndpoint   string
	ObsTracingSampling   float64
	ObsMetricsNamespace  string
	ObsLatencyBucketsCSV string
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		RedisURL:           k.String("REDIS_URL"),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),

		UpstreamBaseURL:  strings.TrimSpace(k.String("UPSTREAM_BASE_URL")),
		UpstreamAPIToken: strings.TrimSpace(k.String("UPSTREAM_API_TOKEN")),
		UpstreamOrgID:    strings.TrimSpace(k.String("UPSTREAM_ORG_ID")),
		UpstreamTimeout:  parseDuration(k.String("UPSTREAM_TIMEOUT"), "10s"),

		CurrencyCode:    valueOrDefault(k.String("CURRENCY_CODE"), "IDR"),
		CartTTL:         parseDuration(k.String("CART_TTL"), "12h"),
		IdempotencyTTL:  parseDuration(k.String("IDEMPOTENCY_TTL"), "24h"),
		CheckoutLockTTL: parseDuration(k.String("CHECKOUT_LOCK_TTL"), "30s"),
		CatalogCacheTTL: parseDuration(k.String("CATALOG_CACHE_TTL"), "1m"),
		ReceiptTTL:      parseDuration(k.String("RECEIPT_TTL"), "72h"),

		RetryBase:          parseDuration(k.String("RETRY_BASE"), "100ms"),
		RetryMaxAttempts:   parseInt(k.String("RETRY_MAX_ATTEMPTS"), 3),
		RetryJitterPercent: parseFloat(k.String("RETRY_JITTER_PERCENT"), 0.2),
		CircuitMinReq:      parseInt(k.String("CIRCUIT_MIN_REQ"), 10),
		CircuitFailureRate: parseFloat(k.String("CIRCUIT_FAILURE_RATE"), 0.5),
		CircuitOpenFor:     parseDuration(k.String("CIRCUIT_OPEN_FOR"), "30s"),

		RateLimitWindow: parseDuration(k.String("RATE_LIMIT_WINDOW"), "1m"),
		RateLimitMax:    int64(parseInt(k.String("RATE_LIMIT_MAX"), 120)),

		MaxBodyBytes:       int64(parseInt(k.String("MAX_BODY_BYTES"), 1<<20)),
		SecurityHeaders:    parseBoolDefault(k.String("SECURITY_HEADERS"), true),
		SecurityHSTS:       parseBool(k.String("SECURITY_HSTS")),
		SecurityHSTSMaxAge: parseInt(k.String("SECURITY_HSTS_MAX_AGE"), 31536000),

		ObsLogLevel:          valueOrDefault(k.String("OBS_LOG_LEVEL"), "info"),
		ObsLogFormat:         valueOrDefault(k.String("OBS_LOG_FORMAT"), "json"),
		ObsMetricsEnabled:    parseBoolDefault(k.String("OBS_METRICS_ENABLED"), true),
		ObsTracingEnabled:    parseBool(k.String("OBS_TRACING_ENABLED")),
		ObsTracingEndpoint:   strings.TrimSpace(k.String("OBS_TRACING_ENDPOINT")),
		ObsTracingSampling:   parseFloat(k.String("OBS_TRACING_SAMPLING"), 1),
		ObsMetricsNamespace:  valueOrDefault(k.String("OBS_METRICS_NAMESPACE"), "pos"),
		ObsLatencyBucketsCSV: k.String("OBS_LATENCY_BUCKETS_MS"),
	}

	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}
	if cfg.UpstreamBaseURL == "" {
		return nil, errors.New("UPSTREAM_BASE_URL is required")
	}
	if cfg.UpstreamOrgID == "" {
		return nil, errors.New("UPSTREAM_ORG_ID is required")
	}

	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

// IsDevelopment reports whether the app runs in a development environment.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.AppEnv, "development")
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseInt(value string, fallback int) int {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return fallback
	}
	return n
}

func parseFloat(value string, fallback float64) float64 {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return fallback
	}
	return f
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func parseBoolDefault(value string, fallback bool) bool {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return parseBool(value)
}
