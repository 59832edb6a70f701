// Package main is the entry point for the API server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/onnwee/giftbooks/internal/api"
	"github.com/onnwee/giftbooks/internal/catalog"
	"github.com/onnwee/giftbooks/internal/config"
	"github.com/onnwee/giftbooks/internal/gift"
	"github.com/onnwee/giftbooks/internal/health"
	"github.com/onnwee/giftbooks/internal/jobs"
	"github.com/onnwee/giftbooks/internal/middleware"
	"github.com/onnwee/giftbooks/internal/ranking"
	"github.com/onnwee/giftbooks/internal/recommend"
	"github.com/onnwee/giftbooks/internal/tracing"
)

const (
	serviceName = "giftbooks-api"

	// cleanupInterval is how often in-memory cache and rate limit entries are swept.
	cleanupInterval = time.Minute
)

func main() {
	help := flag.Bool("help", false, "display help message")
	configPath := flag.String("config", "", "path to YAML config file (optional)")
	flag.Parse()

	if *help {
		fmt.Println("Giftbooks API Server")
		fmt.Println()
		fmt.Println("Usage: api [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	cfg, errs := config.Load(*configPath)
	env := config.DefaultEnv
	if cfg != nil {
		env = cfg.Env
	}
	logger := middleware.NewLogger(env)
	slog.SetDefault(logger)

	if len(errs) > 0 {
		for _, err := range errs {
			logger.Error("invalid configuration", "error", err)
		}
		os.Exit(1)
	}

	summary := make([]any, 0, 2*len(cfg.LogSummary()))
	for k, v := range cfg.LogSummary() {
		summary = append(summary, k, v)
	}
	logger.Info("configuration loaded", summary...)
	if cfg.IsProduction() && cfg.RedisURL == "" {
		logger.Warn("REDIS_URL not set, cache and rate limits are per instance")
	}

	tracerProvider, err := tracing.NewProvider(tracing.Config{
		ServiceName:  serviceName,
		Enabled:      cfg.TracingEnabled,
		Environment:  cfg.Env,
		ExporterType: cfg.TracingExporter,
		OTLPEndpoint: cfg.OTLPEndpoint,
		SamplingRate: cfg.TracingSamplingRate,
		InsecureMode: cfg.TracingInsecure,
	})
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error("invalid redis url", "error", err)
			os.Exit(1)
		}
		redisClient = redis.NewClient(opts)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	app, err := newApp(cfg, logger, reg, redisClient)
	if err != nil {
		logger.Error("failed to build application", "error", err)
		os.Exit(1)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      app.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: api.DefaultRecommendTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting server", "port", cfg.Port, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exitCode := 0
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		exitCode = 1
	}
	app.close()
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Warn("failed to close redis client", "error", err)
		}
	}
	if err := tracerProvider.Shutdown(ctx); err != nil {
		logger.Warn("failed to flush traces", "error", err)
	}

	logger.Info("server stopped")
	os.Exit(exitCode)
}

// app is the assembled HTTP handler and the background work that supports it.
type app struct {
	handler http.Handler
	stop    context.CancelFunc
}

// close stops background sweepers.
func (a *app) close() {
	a.stop()
}

// newApp wires the catalog, ranking, recommendation service and HTTP routes.
// redisClient may be nil, in which case in-memory cache and rate limit stores
// are used.
func newApp(cfg *config.Config, logger *slog.Logger, reg *prometheus.Registry, redisClient *redis.Client) (*app, error) {
	bgCtx, stop := context.WithCancel(context.Background())
	a := &app{stop: stop}

	mwMetrics := middleware.NewMetrics()
	if err := mwMetrics.Register(reg); err != nil {
		stop()
		return nil, fmt.Errorf("register middleware metrics: %w", err)
	}
	catalogMetrics := catalog.NewMetrics()
	if err := catalogMetrics.Register(reg); err != nil {
		stop()
		return nil, fmt.Errorf("register catalog metrics: %w", err)
	}
	jobMetrics := jobs.NewMetrics()
	if err := jobMetrics.Register(reg); err != nil {
		stop()
		return nil, fmt.Errorf("register job metrics: %w", err)
	}

	// Catalog: HTTP client -> circuit breaker -> result cache.
	client := catalog.NewClient(catalog.Config{
		BaseURL: cfg.CatalogBaseURL,
		Limit:   cfg.CatalogLimit,
		Timeout: cfg.CatalogTimeout(),
	}, catalogMetrics)
	breaker := catalog.NewBreakerClient("openlibrary", client, catalog.DefaultBreakerConfig(), catalogMetrics)

	var (
		cache          catalog.Cache
		rateLimitStore middleware.RateLimitStore
		redisChecker   api.HealthChecker
	)
	if redisClient != nil {
		cache = catalog.NewRedisCache(redisClient)
		rateLimitStore = middleware.NewRedisRateLimitStore(redisClient, mwMetrics)
		redisChecker = health.NewRedisChecker(redisClient)
	} else {
		memCache := catalog.NewMemoryCache()
		memStore := middleware.NewInMemoryRateLimitStore()
		cache = memCache
		rateLimitStore = memStore
		go jobs.Every(bgCtx, cleanupInterval, jobMetrics,
			jobs.Func(jobs.JobTypeCacheCleanup, memCache.Cleanup),
			jobs.Func(jobs.JobTypeRateLimitCleanup, memStore.Cleanup),
		)
	}
	searcher := catalog.NewCachedSearcher(breaker, cache, cfg.CacheTTL(), catalogMetrics)

	weights, err := ranking.LoadCalibration(cfg.RankingCalibrationPath)
	if err != nil {
		logger.Warn("ranking calibration not applied, using default weights", "error", err)
	}
	service := recommend.NewService(searcher,
		recommend.WithRanker(gift.NewRanker(weights)),
		recommend.WithMaxConcurrentFetches(cfg.CatalogMaxConcurrentFetches),
	)

	recommendHandlers := api.NewRecommendHandlers(service, api.RecommendHandlersConfig{})
	healthHandlers := api.NewHealthHandlers(api.HealthHandlersConfig{
		RedisChecker:   redisChecker,
		CatalogChecker: client,
		MetricsEnabled: true,
	})

	rateLimit := middleware.RateLimiter(rateLimitStore, middleware.PerMinute(cfg.RateLimitPerMinute), middleware.IPKeyFunc(), mwMetrics)

	mux := http.NewServeMux()
	mux.Handle("/api/recommend", rateLimit(http.HandlerFunc(recommendHandlers.Recommend)))
	mux.HandleFunc("/api/options", recommendHandlers.Options)
	mux.HandleFunc("/health", healthHandlers.Health)
	mux.HandleFunc("/ready", healthHandlers.Ready)
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	profiling := middleware.ProfilingConfig{Enabled: cfg.ProfilingEnabled, Environment: cfg.Env}
	mux.HandleFunc("/debug/profiling/status", middleware.ProfilingStatus(profiling))

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		// Only handle exact root path, everything else returns 404
		if r.URL.Path != "/" {
			api.WriteError(w, r.Context(), http.StatusNotFound, api.ErrCodeNotFound, "The requested resource was not found")
			return
		}
		api.WriteJSON(w, r.Context(), http.StatusOK, map[string]string{
			"service": serviceName,
			"version": tracing.DefaultServiceVersion,
		})
	})

	// Outermost first: RequestID -> Tracing -> Logging -> HTTPMetrics -> CORS -> Profiling -> mux
	var handler http.Handler = mux
	handler = middleware.Profiling(profiling)(handler)
	handler = middleware.CORS(middleware.DefaultCORSConfig(cfg.CORSAllowedOrigins))(handler)
	handler = middleware.HTTPMetrics(mwMetrics)(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.Tracing(serviceName)(handler)
	handler = middleware.RequestID(handler)

	a.handler = handler
	return a, nil
}
