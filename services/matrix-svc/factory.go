// Package matrixsvc wires the matrix engine into a runnable service.
package matrixsvc

import (
	"matrixcore/pkg/cache"
	"matrixcore/pkg/config"
	"matrixcore/pkg/ratelimit"
	"matrixcore/services/matrix-svc/internal/costing"
	"matrixcore/services/matrix-svc/internal/engine"
	"matrixcore/services/matrix-svc/internal/graphmodel"
	"matrixcore/services/matrix-svc/internal/service"
)

// EngineConfigFromMatrixConfig copies pkg/config.MatrixConfig's loaded
// tunables into an engine.Config. It exists because pkg/config cannot import
// services/matrix-svc/internal/engine (the reverse would create an import
// cycle through this package), so the two Config types stay in lockstep by
// field name instead of by shared type.
func EngineConfigFromMatrixConfig(mc config.MatrixConfig) engine.Config {
	return engine.Config{
		MaxReservedLabelsCount:         mc.MaxReservedLabelsCount,
		CostThresholdAutoDivisor:       mc.CostThresholdAutoDivisor,
		CostThresholdBicycleDivisor:    mc.CostThresholdBicycleDivisor,
		CostThresholdPedestrianDivisor: mc.CostThresholdPedestrianDivisor,
		PairMeetingThreshold:           mc.PairMeetingThreshold,
		MaxLabelCount:                  mc.MaxLabelCount,
	}
}

// NewDemoService builds a MatrixService around an empty in-memory graph,
// for smoke-testing and benchmarking without a real tile-storage backend
// (graph-tile storage and lookup is an external collaborator concern this
// module does not implement — spec.md §1).
func NewDemoService(version string) *service.MatrixService {
	reader := graphmodel.NewMemoryGraphReader()
	cost := costing.NewStaticCost(costing.AccessAuto, nil)
	matrixCache := cache.NewMatrixCache(cache.NewMemoryCache(nil), 0)
	limiter, _ := ratelimit.New(ratelimit.DefaultConfig())
	return service.NewMatrixService(version, reader, cost, matrixCache, limiter)
}

// NewDemoServiceWithDeps is NewDemoService with caller-supplied cache and
// rate limiter, so cmd/main.go can wire in the instances it built from
// config while the graph reader and costing model remain the in-memory demo
// ones until a real tile-storage backend exists.
func NewDemoServiceWithDeps(version string, matrixCache *cache.MatrixCache, limiter ratelimit.Limiter) *service.MatrixService {
	reader := graphmodel.NewMemoryGraphReader()
	cost := costing.NewStaticCost(costing.AccessAuto, nil)
	return service.NewMatrixService(version, reader, cost, matrixCache, limiter)
}

// NewDemoServiceWithConfig is NewDemoServiceWithDeps plus a caller-supplied
// ServiceConfig, so cmd/main.go can forward the engine tunables loaded from
// pkg/config.MatrixConfig instead of running the engine on its hardcoded
// defaults.
func NewDemoServiceWithConfig(version string, matrixCache *cache.MatrixCache, limiter ratelimit.Limiter, svcConfig *service.ServiceConfig) *service.MatrixService {
	reader := graphmodel.NewMemoryGraphReader()
	cost := costing.NewStaticCost(costing.AccessAuto, nil)
	return service.NewMatrixServiceWithConfig(version, reader, cost, matrixCache, limiter, svcConfig)
}

// NewService builds a MatrixService around the given graph reader and
// costing model — the production entry point once a real GraphReader (tile
// storage) and DynamicCost (per-mode costing) are wired in by the caller.
func NewService(version string, reader graphmodel.GraphReader, costingModel engine.DynamicCost, matrixCache *cache.MatrixCache, limiter ratelimit.Limiter) *service.MatrixService {
	return service.NewMatrixService(version, reader, costingModel, matrixCache, limiter)
}
