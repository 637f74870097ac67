// Package service wraps the matrix engine with the ambient concerns a
// production deployment needs: caching, rate limiting, metrics, tracing,
// concurrency limiting and graceful shutdown. None of this lives in
// internal/engine itself — the engine stays a pure, synchronous library.
//
// # Thread Safety
//
// MatrixService is safe for concurrent use. Each query builds its own
// engine.Matrix; the only shared state is the atomic stats counters, the
// bounded query-slot semaphore, and the shared cache/rate-limiter handles.
//
// # Graceful Shutdown
//
// Shutdown(ctx) stops admitting new queries and waits for in-flight ones to
// finish, or for ctx to expire, whichever comes first.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	pkgerrors "matrixcore/pkg/apperror"
	"matrixcore/pkg/cache"
	"matrixcore/pkg/logger"
	"matrixcore/pkg/metrics"
	"matrixcore/pkg/ratelimit"
	"matrixcore/pkg/telemetry"
	"matrixcore/services/matrix-svc/internal/engine"
	"matrixcore/services/matrix-svc/internal/graphmodel"
)

// =============================================================================
// Constants and limits
// =============================================================================

const (
	// MaxSources is the maximum number of source locations per query.
	MaxSources = 10_000

	// MaxTargets is the maximum number of target locations per query.
	MaxTargets = 10_000

	// MaxCandidatesPerLocation is the maximum number of candidate edges a
	// single location may project onto.
	MaxCandidatesPerLocation = 20

	// CacheOperationTimeout bounds cache reads/writes so a slow cache backend
	// never stalls a query.
	CacheOperationTimeout = 5 * time.Second

	// RateLimitKeyDefault is used when a caller supplies no identifying key.
	RateLimitKeyDefault = "default"
)

// =============================================================================
// Configuration
// =============================================================================

// ServiceConfig holds MatrixService's tunables.
type ServiceConfig struct {
	// MaxConcurrentQueries limits the number of simultaneous SourceToTarget
	// computations. Requests beyond this limit wait or time out.
	MaxConcurrentQueries int

	// DefaultTimeout is applied when the caller's context carries no deadline.
	DefaultTimeout time.Duration

	// MemStatsInterval controls how often runtime memory stats are refreshed.
	MemStatsInterval time.Duration

	// ShutdownTimeout bounds how long Shutdown waits for in-flight queries.
	ShutdownTimeout time.Duration

	// EngineConfig is forwarded to every engine.Matrix built by this service.
	EngineConfig engine.Config
}

// DefaultServiceConfig returns a ServiceConfig with sensible defaults.
func DefaultServiceConfig() *ServiceConfig {
	return &ServiceConfig{
		MaxConcurrentQueries: runtime.NumCPU() * 2,
		DefaultTimeout:       30 * time.Second,
		MemStatsInterval:     time.Second,
		ShutdownTimeout:      30 * time.Second,
		EngineConfig:         engine.DefaultConfig(),
	}
}

// =============================================================================
// Statistics
// =============================================================================

type serviceStats struct {
	queriesTotal   atomic.Int64
	queriesActive  atomic.Int64
	queriesSuccess atomic.Int64
	queriesFailed  atomic.Int64
	cacheHits      atomic.Int64
	cacheMisses    atomic.Int64
}

// Stats is a point-in-time snapshot of service statistics.
type Stats struct {
	QueriesTotal    int64
	QueriesActive   int64
	QueriesSuccess  int64
	QueriesFailed   int64
	CacheHits       int64
	CacheMisses     int64
	MemoryAllocByte uint64
}

// =============================================================================
// Memory stats cache
// =============================================================================

type memStatsCache struct {
	mu       sync.RWMutex
	stats    runtime.MemStats
	lastRead time.Time
	interval time.Duration
}

func newMemStatsCache(interval time.Duration) *memStatsCache {
	return &memStatsCache{interval: interval}
}

func (m *memStatsCache) refresh() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	if time.Since(m.lastRead) < m.interval {
		return m.stats.Alloc
	}

	runtime.ReadMemStats(&m.stats)
	m.lastRead = time.Now()
	return m.stats.Alloc
}

func (m *memStatsCache) get() uint64 {
	m.mu.RLock()
	if time.Since(m.lastRead) < m.interval {
		alloc := m.stats.Alloc
		m.mu.RUnlock()
		return alloc
	}
	m.mu.RUnlock()
	return m.refresh()
}

// =============================================================================
// MatrixService
// =============================================================================

// MatrixService is the library entry point the HTTP transport and any other
// in-process caller uses to run matrix queries against a live graph.
type MatrixService struct {
	version string
	reader  graphmodel.GraphReader
	costing engine.DynamicCost

	config      *ServiceConfig
	metrics     *metrics.Metrics
	matrixCache *cache.MatrixCache
	limiter     ratelimit.Limiter

	querySlots chan struct{}

	stats         serviceStats
	memStatsCache *memStatsCache

	shutdownCh   chan struct{}
	shutdownOnce sync.Once
	wg           sync.WaitGroup
}

// NewMatrixService creates a MatrixService with default configuration.
func NewMatrixService(version string, reader graphmodel.GraphReader, costing engine.DynamicCost, matrixCache *cache.MatrixCache, limiter ratelimit.Limiter) *MatrixService {
	return NewMatrixServiceWithConfig(version, reader, costing, matrixCache, limiter, DefaultServiceConfig())
}

// NewMatrixServiceWithConfig creates a MatrixService with custom configuration.
func NewMatrixServiceWithConfig(version string, reader graphmodel.GraphReader, costing engine.DynamicCost, matrixCache *cache.MatrixCache, limiter ratelimit.Limiter, config *ServiceConfig) *MatrixService {
	if config == nil {
		config = DefaultServiceConfig()
	}
	if config.MaxConcurrentQueries <= 0 {
		config.MaxConcurrentQueries = 1
	}

	return &MatrixService{
		version:       version,
		reader:        reader,
		costing:       costing,
		config:        config,
		metrics:       metrics.Get(),
		matrixCache:   matrixCache,
		limiter:       limiter,
		querySlots:    make(chan struct{}, config.MaxConcurrentQueries),
		memStatsCache: newMemStatsCache(config.MemStatsInterval),
		shutdownCh:    make(chan struct{}),
	}
}

// =============================================================================
// SourceToTarget
// =============================================================================

// SourceToTarget runs a single many-to-many matrix query. The request key
// (the rate-limit identity, e.g. caller IP or API key) may be empty, in
// which case RateLimitKeyDefault is used.
func (s *MatrixService) SourceToTarget(ctx context.Context, requestKey string, req *engine.Request) (*engine.Response, error) {
	if err := s.trackRequest(); err != nil {
		return nil, err
	}
	defer s.untrackRequest()

	ctx, span := telemetry.StartSpan(ctx, "MatrixService.SourceToTarget",
		trace.WithAttributes(telemetry.MatrixAttributes(len(req.Sources), len(req.Targets), req.Mode.String())...),
	)
	defer span.End()

	if err := s.checkRateLimit(ctx, requestKey); err != nil {
		s.stats.queriesFailed.Add(1)
		telemetry.SetError(ctx, err)
		return nil, err
	}

	if err := validateRequest(req); err != nil {
		s.stats.queriesFailed.Add(1)
		telemetry.SetError(ctx, err)
		return nil, err
	}

	cacheKey := matrixCacheKey(req)
	if cached, found := s.checkCache(ctx, cacheKey, span); found {
		return cached, nil
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.executeQuery(ctx, req, cacheKey, span)
}

// SolveBatch runs multiple matrix queries concurrently, fanning them out
// across the same bounded query-slot pool SourceToTarget uses. Each query is
// independent: an error in one does not cancel the others. The returned
// slice preserves request order with a nil entry for each failed query, and
// the returned error is the first failure in request order (nil if none).
func (s *MatrixService) SolveBatch(ctx context.Context, requestKey string, reqs []*engine.Request) ([]*engine.Response, error) {
	responses := make([]*engine.Response, len(reqs))
	errs := make([]error, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.MaxConcurrentQueries)

	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			resp, err := s.SourceToTarget(gctx, requestKey, req)
			responses[i] = resp
			errs[i] = err
			return nil // per-item errors never cancel sibling queries
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, err := range errs {
		if err != nil {
			return responses, err
		}
	}
	return responses, nil
}

func (s *MatrixService) trackRequest() error {
	select {
	case <-s.shutdownCh:
		return pkgerrors.New(pkgerrors.CodeGraphUnavailable, "service is shutting down")
	default:
	}

	s.wg.Add(1)
	s.stats.queriesTotal.Add(1)
	s.stats.queriesActive.Add(1)
	return nil
}

func (s *MatrixService) untrackRequest() {
	s.stats.queriesActive.Add(-1)
	s.wg.Done()
}

func (s *MatrixService) checkRateLimit(ctx context.Context, requestKey string) error {
	if s.limiter == nil {
		return nil
	}
	if requestKey == "" {
		requestKey = RateLimitKeyDefault
	}

	allowed, err := s.limiter.Allow(ctx, requestKey)
	if err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeInternal, "rate limiter unavailable")
	}
	if !allowed {
		return pkgerrors.New(pkgerrors.CodeRateLimited, "rate limit exceeded")
	}
	return nil
}

func (s *MatrixService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.config.DefaultTimeout)
}

func (s *MatrixService) checkCache(ctx context.Context, key cache.MatrixRequestKey, span trace.Span) (*engine.Response, bool) {
	if s.matrixCache == nil {
		return nil, false
	}

	cacheCtx, cancel := context.WithTimeout(ctx, CacheOperationTimeout)
	defer cancel()

	payload, found, err := s.matrixCache.Get(cacheCtx, key)
	if err != nil || !found {
		s.stats.cacheMisses.Add(1)
		s.metrics.RecordCacheMiss()
		span.SetAttributes(attribute.Bool("cache_hit", false))
		return nil, false
	}

	var resp engine.Response
	if jsonErr := json.Unmarshal(payload, &resp); jsonErr != nil {
		s.stats.cacheMisses.Add(1)
		s.metrics.RecordCacheMiss()
		return nil, false
	}

	s.stats.cacheHits.Add(1)
	s.metrics.RecordCacheHit()
	span.SetAttributes(attribute.Bool("cache_hit", true))
	telemetry.AddEvent(ctx, "cache_hit")

	return &resp, true
}

func (s *MatrixService) executeQuery(ctx context.Context, req *engine.Request, cacheKey cache.MatrixRequestKey, span trace.Span) (*engine.Response, error) {
	start := time.Now()

	select {
	case s.querySlots <- struct{}{}:
	case <-ctx.Done():
		s.stats.queriesFailed.Add(1)
		return nil, pkgerrors.Wrap(ctx.Err(), pkgerrors.CodeTimeout, "timeout waiting for a query slot")
	}
	defer func() { <-s.querySlots }()

	matrix := engine.NewMatrix(s.reader, s.costing, s.config.EngineConfig)
	resp, err := matrix.SourceToTarget(ctx, req)
	elapsed := time.Since(start)

	if err != nil {
		return s.handleQueryError(ctx, err, elapsed)
	}

	return s.buildSuccessResponse(ctx, resp, cacheKey, elapsed, span), nil
}

func (s *MatrixService) handleQueryError(ctx context.Context, err error, elapsed time.Duration) (*engine.Response, error) {
	s.stats.queriesFailed.Add(1)
	telemetry.SetError(ctx, err)
	s.metrics.RecordMatrixQuery("fatal", elapsed)
	return nil, err
}

func (s *MatrixService) buildSuccessResponse(ctx context.Context, resp *engine.Response, cacheKey cache.MatrixRequestKey, elapsed time.Duration, span trace.Span) *engine.Response {
	s.stats.queriesSuccess.Add(1)

	status := "ok"
	if resp.Cancelled {
		status = "cancelled"
	}
	s.metrics.RecordMatrixQuery(status, elapsed)

	pairsSettled, anyMissing := countSettledPairs(resp)
	s.metrics.RecordPairsSettled(pairsSettled)

	span.SetAttributes(telemetry.MatrixOutcomeAttributes(status, pairsSettled, 0)...)

	if !resp.Cancelled && !anyMissing {
		s.cacheResultAsync(cacheKey, resp)
	}

	return resp
}

func (s *MatrixService) cacheResultAsync(key cache.MatrixRequestKey, resp *engine.Response) {
	if s.matrixCache == nil {
		return
	}

	select {
	case <-s.shutdownCh:
		return
	default:
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), CacheOperationTimeout)
		defer cancel()

		select {
		case <-s.shutdownCh:
			return
		default:
		}

		payload, err := json.Marshal(resp)
		if err != nil {
			logger.Warn("failed to marshal matrix response for caching", "error", err)
			return
		}

		if err := s.matrixCache.Set(ctx, key, payload, 0); err != nil {
			logger.Warn("failed to cache matrix response", "error", err)
		}
	}()
}

func countSettledPairs(resp *engine.Response) (settled int, anyMissing bool) {
	for _, row := range resp.Matrix {
		for _, cell := range row {
			if cell.Found {
				settled++
			} else {
				anyMissing = true
			}
		}
	}
	return settled, anyMissing
}

func matrixCacheKey(req *engine.Request) cache.MatrixRequestKey {
	sourceEdges := flattenCandidates(req.Sources)
	targetEdges := flattenCandidates(req.Targets)

	return cache.MatrixRequestKey{
		SourceEdges:       sourceEdges,
		TargetEdges:       targetEdges,
		Mode:              req.Mode.String(),
		MaxMatrixDistance: req.MaxMatrixDistance,
		HasTime:           req.HasTime,
		Invariant:         req.Invariant,
	}
}

func flattenCandidates(locations []engine.Location) []uint64 {
	ids := make([]uint64, 0, len(locations))
	for _, loc := range locations {
		for _, c := range loc.Candidates {
			ids = append(ids, uint64(c.EdgeID))
		}
	}
	return ids
}

func validateRequest(req *engine.Request) error {
	if len(req.Sources) == 0 || len(req.Targets) == 0 {
		return pkgerrors.ErrEmptyRequest
	}
	if len(req.Sources) > MaxSources {
		return pkgerrors.NewWithField(pkgerrors.CodeInvalidLocation,
			fmt.Sprintf("too many sources: %d (max %d)", len(req.Sources), MaxSources), "sources")
	}
	if len(req.Targets) > MaxTargets {
		return pkgerrors.NewWithField(pkgerrors.CodeInvalidLocation,
			fmt.Sprintf("too many targets: %d (max %d)", len(req.Targets), MaxTargets), "targets")
	}
	for i, loc := range req.Sources {
		if err := validateLocation(loc, "source", i); err != nil {
			return err
		}
	}
	for i, loc := range req.Targets {
		if err := validateLocation(loc, "target", i); err != nil {
			return err
		}
	}
	return nil
}

func validateLocation(loc engine.Location, kind string, idx int) error {
	if len(loc.Candidates) == 0 {
		return pkgerrors.NewWithField(pkgerrors.CodeInvalidLocation,
			fmt.Sprintf("%s %d has no candidate edges", kind, idx), kind)
	}
	if len(loc.Candidates) > MaxCandidatesPerLocation {
		return pkgerrors.NewWithField(pkgerrors.CodeInvalidLocation,
			fmt.Sprintf("%s %d has too many candidates: %d (max %d)", kind, idx, len(loc.Candidates), MaxCandidatesPerLocation), kind)
	}
	return nil
}

// =============================================================================
// Observability and lifecycle
// =============================================================================

// Stats returns a snapshot of the service's running counters.
func (s *MatrixService) Stats() Stats {
	return Stats{
		QueriesTotal:    s.stats.queriesTotal.Load(),
		QueriesActive:   s.stats.queriesActive.Load(),
		QueriesSuccess:  s.stats.queriesSuccess.Load(),
		QueriesFailed:   s.stats.queriesFailed.Load(),
		CacheHits:       s.stats.cacheHits.Load(),
		CacheMisses:     s.stats.cacheMisses.Load(),
		MemoryAllocByte: s.memStatsCache.get(),
	}
}

// IsHealthy reports whether the service is still accepting work.
func (s *MatrixService) IsHealthy() bool {
	select {
	case <-s.shutdownCh:
		return false
	default:
		return true
	}
}

// IsReady reports whether the service can accept new queries without
// immediately queuing behind a full query-slot pool.
func (s *MatrixService) IsReady() bool {
	if !s.IsHealthy() {
		return false
	}
	active := s.stats.queriesActive.Load()
	maxConcurrent := int64(s.config.MaxConcurrentQueries)
	return active < (maxConcurrent * 9 / 10)
}

// Shutdown stops admitting new queries and waits for in-flight ones to
// finish, or for ctx to expire, whichever comes first. Only the first call
// has effect.
func (s *MatrixService) Shutdown(ctx context.Context) error {
	var err error

	s.shutdownOnce.Do(func() {
		close(s.shutdownCh)

		done := make(chan struct{})
		go func() {
			s.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
			logger.Info("all matrix queries completed gracefully")
		case <-ctx.Done():
			err = ctx.Err()
			logger.Warn("shutdown timeout, some queries may be interrupted",
				"active_queries", s.stats.queriesActive.Load())
		}
	})

	return err
}
