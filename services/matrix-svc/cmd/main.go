// Package main is the entry point for the matrix-svc microservice.
//
// matrix-svc computes many-to-many cost matrices over a routing graph using
// Knopp's bidirectional algorithm (see internal/engine). Unlike the rest of
// the fleet it is deliberately NOT exposed over gRPC: the surface is a
// minimal net/http + encoding/json API (internal/transport), because a
// matrix response is one JSON array of arrays and there is no streaming or
// bidirectional RPC need that would justify generated stubs.
//
// # Service Overview
//
//   - POST /v1/matrix: source-to-target cost/time matrix for a travel mode
//   - /healthz, /readyz: liveness and readiness probes
//   - /metrics: Prometheus exposition
//
// # Architecture
//
//	┌─────────────────────────────────────────────────────────────┐
//	│                   HTTP Transport Layer                       │
//	│  (internal/transport/http.go - Server)                       │
//	│  - JSON request/response marshalling                         │
//	│  - Tracing middleware, health/ready probes                   │
//	├─────────────────────────────────────────────────────────────┤
//	│                      Service Layer                           │
//	│  (internal/service/matrix.go - MatrixService)                │
//	│  - Request validation, rate limiting                         │
//	│  - Cache lookups, bounded query concurrency                  │
//	│  - Graceful shutdown                                         │
//	├─────────────────────────────────────────────────────────────┤
//	│                      Engine Layer                            │
//	│  (internal/engine/*.go)                                      │
//	│  - Bidirectional many-to-many Dijkstra (Knopp's algorithm)    │
//	├─────────────────────────────────────────────────────────────┤
//	│               Costing / Graph Model Layer                    │
//	│  (internal/costing, internal/graphmodel)                     │
//	│  - Per-mode edge/transition costs                             │
//	│  - Graph reader abstraction (tile storage is out of scope)    │
//	└─────────────────────────────────────────────────────────────┘
//
// # Configuration
//
// Configuration is loaded with the following priority (highest to lowest):
//  1. Environment variables (prefix: MATRIX_)
//  2. Config files (config.yaml, config/config.yaml, /etc/matrixcore/config.yaml)
//  3. Default values
//
// Key configuration options (environment variable format):
//
//	# Application
//	MATRIX_APP_NAME                      - Service name (default: matrix-svc)
//	MATRIX_APP_VERSION                   - Service version (default: 1.0.0)
//	MATRIX_APP_ENVIRONMENT               - development, staging, production
//
//	# HTTP
//	MATRIX_HTTP_PORT                     - HTTP listen port (default: 50054)
//	MATRIX_HTTP_READ_TIMEOUT             - Read timeout
//	MATRIX_HTTP_WRITE_TIMEOUT            - Write timeout
//	MATRIX_HTTP_SHUTDOWN_TIMEOUT         - Graceful shutdown deadline
//
//	# Logging
//	MATRIX_LOG_LEVEL                     - debug, info, warn, error
//	MATRIX_LOG_FORMAT                    - json, text
//	MATRIX_LOG_OUTPUT                    - stdout, stderr, file
//
//	# Tracing
//	MATRIX_TRACING_ENABLED               - Enable OpenTelemetry export
//	MATRIX_TRACING_ENDPOINT              - OTLP collector endpoint
//
//	# Metrics
//	MATRIX_METRICS_NAMESPACE             - Prometheus metric namespace
//
//	# Cache
//	MATRIX_CACHE_ENABLED                 - Enable matrix result caching
//	MATRIX_CACHE_DRIVER                  - memory, redis
//	MATRIX_CACHE_DEFAULT_TTL             - Cache entry TTL
//
//	# Rate limiting
//	MATRIX_RATE_LIMIT_ENABLED            - Enable per-caller rate limiting
//	MATRIX_RATE_LIMIT_REQUESTS           - Requests allowed per window
//	MATRIX_RATE_LIMIT_WINDOW             - Rate limit window
//
//	# Engine tunables (spec §6/§9)
//	MATRIX_MATRIX_PAIR_MEETING_THRESHOLD - Post-meeting grace period (default: 16)
//	MATRIX_MATRIX_MAX_LABEL_COUNT        - Per-query label budget (ResourceExhaustion cap)
//
// Example overrides:
//
//	MATRIX_HTTP_PORT=8081
//	MATRIX_CACHE_ENABLED=true
//	MATRIX_RATE_LIMIT_ENABLED=true
//	MATRIX_LOG_LEVEL=info
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"matrixcore/pkg/cache"
	"matrixcore/pkg/config"
	"matrixcore/pkg/logger"
	"matrixcore/pkg/metrics"
	"matrixcore/pkg/ratelimit"
	"matrixcore/pkg/telemetry"
	matrixsvc "matrixcore/services/matrix-svc"
	"matrixcore/services/matrix-svc/internal/service"
	"matrixcore/services/matrix-svc/internal/transport"
)

func main() {
	// =========================================================================
	// Configuration Loading
	// =========================================================================
	//
	// LoadWithServiceDefaults loads configuration with the following priority:
	//   1. Environment variables (MATRIX_* prefix)
	//   2. Config files (config.yaml in standard locations)
	//   3. Default values from pkg/config/loader.go
	//
	// The service name and default port are applied if not explicitly configured.
	cfg, err := config.LoadWithServiceDefaults("matrix-svc", 50054)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// =========================================================================
	// Logger Initialization
	// =========================================================================
	logger.InitWithConfig(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		FilePath:   cfg.Log.FilePath,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// =========================================================================
	// Telemetry Initialization (OpenTelemetry)
	// =========================================================================
	//
	// When enabled, initializes the OpenTelemetry trace provider. Traces are
	// exported to the configured OTLP endpoint. Every HTTP request gets its
	// own span via telemetry.HTTPServerMiddleware in internal/transport.
	if cfg.Tracing.Enabled {
		tp, err := telemetry.Init(ctx, telemetry.Config{
			Enabled:     cfg.Tracing.Enabled,
			Endpoint:    cfg.Tracing.Endpoint,
			ServiceName: cfg.App.Name,
			Version:     cfg.App.Version,
			Environment: cfg.App.Environment,
			SampleRate:  cfg.Tracing.SampleRate,
		})
		if err != nil {
			logger.Warn("failed to init telemetry", "error", err)
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := tp.Shutdown(shutdownCtx); err != nil {
					logger.Warn("failed to shutdown telemetry", "error", err)
				}
			}()
			logger.Info("telemetry initialized", "endpoint", cfg.Tracing.Endpoint)
		}
	}

	// =========================================================================
	// Metrics Initialization (Prometheus)
	// =========================================================================
	metrics.InitMetrics(cfg.Metrics.Namespace, cfg.App.Name)
	metrics.Get().SetServiceInfo(cfg.App.Version, cfg.App.Environment)

	// =========================================================================
	// Cache Initialization
	// =========================================================================
	//
	// The matrix cache stores query results keyed on the normalized request
	// (sorted source/target candidate edges, mode, distance cutoff, time and
	// invariant flags). Cache is optional: the service runs uncached if
	// initialization fails or it is disabled.
	var matrixCache *cache.MatrixCache
	if cfg.Cache.Enabled {
		cacheOpts := cache.FromConfig(&cfg.Cache)
		baseCache, err := cache.New(cacheOpts)
		if err != nil {
			logger.Warn("failed to create cache, continuing without cache", "error", err)
		} else {
			matrixCache = cache.NewMatrixCache(baseCache, cfg.Cache.DefaultTTL)
			logger.Info("matrix cache initialized", "driver", cfg.Cache.Driver, "ttl", cfg.Cache.DefaultTTL)
		}
	}

	// =========================================================================
	// Rate Limiter Initialization
	// =========================================================================
	var limiter ratelimit.Limiter
	if cfg.RateLimit.Enabled {
		limiter, err = ratelimit.New(&ratelimit.Config{
			Requests:        cfg.RateLimit.Requests,
			Window:          cfg.RateLimit.Window,
			Strategy:        cfg.RateLimit.Strategy,
			KeyFunc:         "ip",
			Backend:         cfg.RateLimit.Backend,
			BurstSize:       cfg.RateLimit.BurstSize,
			CleanupInterval: cfg.RateLimit.CleanupInterval,
			RedisAddr:       cfg.RateLimit.RedisAddr,
		})
		if err != nil {
			logger.Warn("failed to create rate limiter, continuing without rate limiting", "error", err)
			limiter = nil
		} else {
			logger.Info("rate limiter initialized", "backend", cfg.RateLimit.Backend, "requests", cfg.RateLimit.Requests)
		}
	}

	// =========================================================================
	// Matrix Service Construction
	// =========================================================================
	//
	// A real deployment supplies a GraphReader backed by tile storage; graph
	// ingestion and tile lookup are external collaborators this module does
	// not implement (spec.md §1), so matrix-svc starts against an empty
	// in-memory graph until that backend is wired in by the caller. Engine
	// tunables (pair-meeting grace period, label budget, cost-threshold
	// divisors) come from cfg.Matrix rather than engine.DefaultConfig(), so
	// they are runtime-configurable per the design note in spec §9.
	svcConfig := service.DefaultServiceConfig()
	svcConfig.EngineConfig = matrixsvc.EngineConfigFromMatrixConfig(cfg.Matrix)
	svc := matrixsvc.NewDemoServiceWithConfig(cfg.App.Version, matrixCache, limiter, svcConfig)

	// =========================================================================
	// HTTP Server Startup
	// =========================================================================
	srv := transport.NewServer(svc)
	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      srv.Handler(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	logger.Info("starting matrix service",
		"port", cfg.HTTP.Port,
		"environment", cfg.App.Environment,
		"version", cfg.App.Version,
		"cache_enabled", matrixCache != nil,
		"rate_limit_enabled", limiter != nil,
	)

	serveErr := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			return
		}
		serveErr <- nil
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serveErr:
		if err != nil {
			logger.Fatal("http server failed", "error", err)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http server shutdown error", "error", err)
	}
	if err := svc.Shutdown(shutdownCtx); err != nil {
		logger.Warn("matrix service shutdown error", "error", err)
	}
	logger.Info("matrix service stopped")
}
