// Package costing provides DynamicCost implementations for the matrix
// engine: a StaticCost for time-invariant queries and a TimeVaryingCost for
// `has_time = true` queries whose edges carry time-of-day cost factors.
// Real deployments plug in their own per-mode costing; these exist for
// tests and as documentation of the DynamicCost contract.
package costing

import (
	"matrixcore/services/matrix-svc/internal/engine"
	"matrixcore/services/matrix-svc/internal/graphmodel"
)

// AccessAuto, AccessBicycle and AccessPedestrian are the access bitmask
// values a DirectedEdge.AccessMask can carry; StaticCost's AccessMode
// reports which of these it grants.
const (
	AccessAuto       uint32 = 1 << 0
	AccessBicycle    uint32 = 1 << 1
	AccessPedestrian uint32 = 1 << 2
)

// StaticCost is a time-invariant costing: cost is simply edge length scaled
// by a per-road-class speed factor, with no turn penalty.
type StaticCost struct {
	access uint32
	limits []engine.HierarchyLimits
	// SpeedFactor maps a road class to relative speed; higher is faster, so
	// cost = length / speed.
	SpeedFactor map[graphmodel.RoadClass]float64
}

// NewStaticCost returns a StaticCost for the given access mode, with the
// reference monorepo's road classes defaulted to plausible relative
// speeds (highway fastest, local slowest).
func NewStaticCost(access uint32, limits []engine.HierarchyLimits) *StaticCost {
	return &StaticCost{
		access: access,
		limits: limits,
		SpeedFactor: map[graphmodel.RoadClass]float64{
			graphmodel.RoadClassHighway:  2.0,
			graphmodel.RoadClassArterial: 1.5,
			graphmodel.RoadClassLocal:    1.0,
		},
	}
}

func (c *StaticCost) speed(class graphmodel.RoadClass) float64 {
	if f, ok := c.SpeedFactor[class]; ok && f > 0 {
		return f
	}
	return 1.0
}

func (c *StaticCost) edgeCost(edge *graphmodel.DirectedEdge) engine.Cost {
	speed := c.speed(edge.RoadClass)
	secs := edge.Length / speed
	return engine.Cost{Cost: edge.Length / speed, Secs: secs}
}

func (c *StaticCost) Allowed(edge *graphmodel.DirectedEdge, pred *engine.EdgeLabel, tile *graphmodel.Tile, timestamp int64) bool {
	return edge.AccessMask == 0 || edge.AccessMask&c.access != 0
}

func (c *StaticCost) EdgeCost(edge *graphmodel.DirectedEdge, tile *graphmodel.Tile, timestamp int64) engine.Cost {
	return c.edgeCost(edge)
}

func (c *StaticCost) TransitionCost(node *graphmodel.NodeInfo, edge *graphmodel.DirectedEdge, pred *engine.EdgeLabel) engine.Cost {
	return engine.ZeroCost
}

func (c *StaticCost) AllowedReverse(edge *graphmodel.DirectedEdge, pred *engine.EdgeLabel, tile *graphmodel.Tile, timestamp int64) bool {
	return c.Allowed(edge, pred, tile, timestamp)
}

func (c *StaticCost) EdgeCostReverse(edge *graphmodel.DirectedEdge, tile *graphmodel.Tile, timestamp int64) engine.Cost {
	return c.edgeCost(edge)
}

func (c *StaticCost) TransitionCostReverse(node *graphmodel.NodeInfo, edge *graphmodel.DirectedEdge, pred *engine.EdgeLabel) engine.Cost {
	return engine.ZeroCost
}

func (c *StaticCost) AccessMode() uint32 {
	return c.access
}

func (c *StaticCost) HierarchyLimits() []engine.HierarchyLimits {
	return c.limits
}

func (c *StaticCost) UnitSize() float64 {
	return 1.0
}
