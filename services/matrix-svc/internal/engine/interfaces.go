package engine

import "matrixcore/services/matrix-svc/internal/graphmodel"

// GraphReader is re-exported from graphmodel so callers only need to import
// this package when wiring an engine; the type itself is defined alongside
// the tiled graph model it describes.
type GraphReader = graphmodel.GraphReader

// DynamicCost is the external, consumed per-mode costing collaborator (spec
// §6). Every method may be called many times per query and must be cheap;
// the engine never caches costing results across queries.
type DynamicCost interface {
	// Allowed reports whether edge may be traversed from predecessor pred at
	// the given timestamp (epoch seconds). pred is nil for seed edges.
	Allowed(edge *graphmodel.DirectedEdge, pred *EdgeLabel, tile *graphmodel.Tile, timestamp int64) bool
	// EdgeCost is the cost of traversing edge at the given timestamp.
	EdgeCost(edge *graphmodel.DirectedEdge, tile *graphmodel.Tile, timestamp int64) Cost
	// TransitionCost is the cost of transitioning onto edge at node, coming
	// from predecessor pred (turn cost, signal delay, etc).
	TransitionCost(node *graphmodel.NodeInfo, edge *graphmodel.DirectedEdge, pred *EdgeLabel) Cost

	// AllowedReverse, EdgeCostReverse and TransitionCostReverse are the
	// backward-search analogs, evaluated against the opposing edge.
	AllowedReverse(edge *graphmodel.DirectedEdge, pred *EdgeLabel, tile *graphmodel.Tile, timestamp int64) bool
	EdgeCostReverse(edge *graphmodel.DirectedEdge, tile *graphmodel.Tile, timestamp int64) Cost
	TransitionCostReverse(node *graphmodel.NodeInfo, edge *graphmodel.DirectedEdge, pred *EdgeLabel) Cost

	// AccessMode is the bitmask of travel modes this costing instance grants
	// access to; edges whose AccessMask doesn't intersect are skipped.
	AccessMode() uint32
	// HierarchyLimits returns the per-level expansion caps for this mode.
	HierarchyLimits() []HierarchyLimits
	// UnitSize is the double-bucket queue's bucket granularity for this mode.
	UnitSize() float64
}
