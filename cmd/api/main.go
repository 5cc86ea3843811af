package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/text/currency"

	"github.com/noah-isme/theater-billing/internal/catalog"
	"github.com/noah-isme/theater-billing/internal/config"
	"github.com/noah-isme/theater-billing/internal/health"
	"github.com/noah-isme/theater-billing/internal/obs"
	"github.com/noah-isme/theater-billing/internal/ratelimit"
	"github.com/noah-isme/theater-billing/internal/resilience"
	"github.com/noah-isme/theater-billing/internal/security"
	"github.com/noah-isme/theater-billing/internal/statement"
	"github.com/noah-isme/theater-billing/internal/theater"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel).With().Str("env", cfg.AppEnv).Logger()

	if cfg.MetricsEnabled {
		obs.MustRegisterDomainMetrics(cfg.MetricsNamespace, nil)
		resilience.MustRegisterMetrics(cfg.MetricsNamespace, nil)
	}

	tracingEnabled := cfg.TracingEnabled
	if tracingEnabled {
		shutdown, err := obs.InitTracer(context.Background(), obs.TracingConfig{
			ServiceName:   obs.DefaultServiceName,
			Endpoint:      cfg.OTLPEndpoint,
			Exporter:      cfg.TracingExporter,
			SamplingRatio: cfg.TracingSampling,
			Environment:   cfg.AppEnv,
			Version:       version,
		})
		if err != nil {
			logger.Error().Err(err).Msg("initialise tracing")
			tracingEnabled = false
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error().Err(err).Msg("shutdown tracer")
				}
			}()
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var (
		store   catalog.Store
		limiter ratelimit.Limiter
	)
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("parse redis url")
		}
		redisClient := redis.NewClient(redisOpts)
		if tracingEnabled {
			if err := redisotel.InstrumentTracing(redisClient); err != nil {
				logger.Error().Err(err).Msg("instrument redis tracing")
			}
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Error().Err(err).Msg("close redis")
			}
		}()
		redisStore := catalog.NewRedisStore(redisClient, cfg.CatalogCacheTTL)
		if err := redisStore.Ping(ctx); err != nil {
			logger.Fatal().Err(err).Msg("ping redis")
		}
		breaker := resilience.NewBreaker(resilience.BreakerConfig{
			Target:      "catalog",
			MinRequests: 5,
			OpenFor:     cfg.CatalogBreakerOpenFor,
			Logger:      &logger,
		})
		store = catalog.NewGuardedStore(redisStore, catalog.GuardConfig{
			Breaker:     breaker,
			ReadRetries: cfg.CatalogReadRetries,
		})
		limiter = ratelimit.RedisLimiter{Client: redisClient, Prefix: "ratelimit:"}
	} else {
		logger.Warn().Msg("REDIS_URL not set, using in-memory catalog and rate limiter")
		store = catalog.NewMemoryStore()
		limiter = ratelimit.NewMemoryLimiter()
	}

	if cfg.CatalogSeedFile != "" {
		if err := seedCatalog(ctx, store, cfg.CatalogSeedFile); err != nil {
			logger.Fatal().Err(err).Str("file", cfg.CatalogSeedFile).Msg("seed catalog")
		}
		logger.Info().Str("file", cfg.CatalogSeedFile).Msg("catalog seeded")
	}

	catalogHandler := catalog.NewHandler(catalog.HandlerConfig{Store: store})
	statementHandler := statement.NewHandler(statement.HandlerConfig{
		Renderer: statement.Renderer{Rules: cfg.Pricing, Format: statement.USD, Currency: currency.USD},
		Catalog:  store,
		Logger:   logger,
	})

	var httpMetrics *obs.HTTPMetrics
	if cfg.MetricsEnabled {
		httpMetrics = obs.NewHTTPMetrics(cfg.MetricsNamespace, obs.ParseBucketsCSV(cfg.MetricsBuckets), nil)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.RequestInfoMiddleware)
	if tracingEnabled {
		r.Use(obs.TracingMiddleware)
	}
	if httpMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(security.Headers{Enable: cfg.SecurityHeaders, EnableHSTS: true}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins(cfg),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{obs.StatementIDHeader},
		MaxAge:         300,
	}))

	if cfg.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	healthHandler := health.Handler{
		Checker:        catalog.ReadinessChecker{Store: store},
		CatalogTimeout: cfg.HealthRedisTimeout,
	}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	rateLimit := ratelimit.Handler{
		Limiter: limiter,
		Config:  ratelimit.Config{Key: ratelimit.ByClientIP, Window: cfg.RateLimitWindow, Max: cfg.RateLimitMax},
		OnError: func(err error) { logger.Error().Err(err).Msg("rate limiter") },
	}

	r.Route("/api/v1", func(v chi.Router) {
		v.Use(security.BodyLimit{Max: cfg.BodyLimitBytes}.Middleware)

		v.Get("/plays", catalogHandler.List)
		v.Get("/plays/{id}", catalogHandler.Get)
		v.Put("/plays/{id}", catalogHandler.Put)
		v.Delete("/plays/{id}", catalogHandler.Delete)

		v.With(rateLimit.Middleware).Post("/statements", statementHandler.Create)
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server exited unexpectedly")
		}
	}()

	waitForShutdown(srv, cfg.ShutdownTimeout, logger)
}

func waitForShutdown(srv *http.Server, timeout time.Duration, logger zerolog.Logger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	health.SetReady(false)
	logger.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown")
	}
}

func seedCatalog(ctx context.Context, store catalog.Store, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	plays, err := theater.DecodePlays(f)
	if err != nil {
		return err
	}
	return catalog.Seed(ctx, store, plays)
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}
