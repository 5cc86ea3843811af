package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"

	"github.com/noah-isme/theater-billing/internal/pricing"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	RedisURL           string
	CORSAllowedOrigins []string

	LogFormat        string
	LogLevel         string
	MetricsNamespace string
	MetricsEnabled   bool
	MetricsBuckets   string
	TracingEnabled   bool
	TracingExporter  string
	OTLPEndpoint     string
	TracingSampling  float64

	CatalogCacheTTL time.Duration
	CatalogSeedFile string

	CatalogReadRetries    int
	CatalogBreakerOpenFor time.Duration

	BodyLimitBytes  int64
	RateLimitMax    int
	RateLimitWindow time.Duration
	SecurityHeaders bool

	HealthRedisTimeout time.Duration
	ShutdownTimeout    time.Duration

	Pricing pricing.Rules
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}
	return fromKoanf(k)
}

func fromKoanf(k *koanf.Koanf) (*Config, error) {
	cfg := &Config{
		AppEnv:                valueOrDefault(k.String("APP_ENV"), "development"),
		Port:                  valueOrDefault(k.String("PORT"), "8080"),
		RedisURL:              strings.TrimSpace(k.String("REDIS_URL")),
		CORSAllowedOrigins:    splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),
		LogFormat:             valueOrDefault(k.String("OBS_LOG_FORMAT"), "json"),
		LogLevel:              valueOrDefault(k.String("OBS_LOG_LEVEL"), "info"),
		MetricsNamespace:      valueOrDefault(k.String("OBS_METRICS_NAMESPACE"), "theater"),
		MetricsEnabled:        parseBool(k.String("OBS_ENABLE_PROMETHEUS"), true),
		MetricsBuckets:        k.String("OBS_METRICS_BUCKETS_MS"),
		TracingEnabled:        parseBool(k.String("OBS_ENABLE_TRACING"), false),
		TracingExporter:       valueOrDefault(k.String("OBS_TRACING_EXPORTER"), "otlp"),
		OTLPEndpoint:          strings.TrimSpace(k.String("OBS_OTLP_ENDPOINT")),
		TracingSampling:       parseFloat(k.String("OBS_TRACING_SAMPLING_RATIO"), 1.0),
		CatalogCacheTTL:       parseDuration(k.String("CATALOG_CACHE_TTL"), "0s"),
		CatalogSeedFile:       strings.TrimSpace(k.String("CATALOG_SEED_FILE")),
		CatalogReadRetries:    int(parseInt64(k.String("CATALOG_READ_RETRIES"), 1)),
		CatalogBreakerOpenFor: parseDuration(k.String("CATALOG_BREAKER_OPEN_FOR"), "30s"),
		BodyLimitBytes:        parseInt64(k.String("HTTP_BODY_LIMIT_BYTES"), 1<<20),
		RateLimitMax:          int(parseInt64(k.String("RATE_LIMIT_MAX"), 60)),
		RateLimitWindow:       parseDuration(k.String("RATE_LIMIT_WINDOW"), "1m"),
		SecurityHeaders:       parseBool(k.String("SECURITY_HEADERS_ENABLED"), true),
		HealthRedisTimeout:    parseDuration(k.String("HEALTH_READY_REDIS_TIMEOUT"), "300ms"),
		ShutdownTimeout:       parseDuration(k.String("SHUTDOWN_TIMEOUT"), "10s"),
	}

	rules, err := loadRules(k)
	if err != nil {
		return nil, err
	}
	cfg.Pricing = rules
	return cfg, nil
}

// loadRules overlays PRICING_* variables on the reference rules.
func loadRules(k *koanf.Koanf) (pricing.Rules, error) {
	rules := pricing.DefaultRules()
	var firstErr error
	money := func(key string, dst *pricing.Money) {
		v, err := int64Var(k, key, *dst)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			return
		}
		*dst = v
	}
	count := func(key string, dst *int) {
		v, err := int64Var(k, key, int64(*dst))
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			return
		}
		*dst = int(v)
	}

	money("PRICING_TRAGEDY_BASE_AMOUNT", &rules.TragedyBaseAmount)
	count("PRICING_TRAGEDY_AUDIENCE_THRESHOLD", &rules.TragedyAudienceThreshold)
	money("PRICING_TRAGEDY_OVER_THRESHOLD_PER_PERSON", &rules.TragedyOverThresholdPerPerson)
	money("PRICING_COMEDY_BASE_AMOUNT", &rules.ComedyBaseAmount)
	count("PRICING_COMEDY_AUDIENCE_THRESHOLD", &rules.ComedyAudienceThreshold)
	money("PRICING_COMEDY_OVER_THRESHOLD_SURCHARGE", &rules.ComedyOverThresholdSurcharge)
	money("PRICING_COMEDY_OVER_THRESHOLD_PER_PERSON", &rules.ComedyOverThresholdPerPerson)
	money("PRICING_COMEDY_PER_AUDIENCE", &rules.ComedyPerAudience)
	count("PRICING_CREDIT_AUDIENCE_THRESHOLD", &rules.CreditAudienceThreshold)
	count("PRICING_COMEDY_CREDIT_DIVISOR", &rules.ComedyCreditDivisor)
	count("PRICING_CENTS_PER_UNIT", &rules.CentsPerUnit)

	if firstErr != nil {
		return pricing.Rules{}, firstErr
	}
	if err := rules.Validate(); err != nil {
		return pricing.Rules{}, fmt.Errorf("pricing rules: %w", err)
	}
	return rules, nil
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

func int64Var(k *koanf.Koanf, key string, fallback int64) (int64, error) {
	raw := strings.TrimSpace(k.String(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fallback, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
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
		return strings.TrimSpace(value)
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

func parseBool(value string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "t", "true", "yes", "on":
		return true
	case "0", "f", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func parseFloat(value string, fallback float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return v
}

func parseInt64(value string, fallback int64) int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return fallback
	}
	return v
}
