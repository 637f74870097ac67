package costing

import (
	"matrixcore/services/matrix-svc/internal/engine"
	"matrixcore/services/matrix-svc/internal/graphmodel"
)

// TimeFactor scales an edge's cost based on the timestamp (epoch seconds)
// at which it is traversed. It models time-of-day effects like live
// traffic without requiring a full schedule model.
type TimeFactor func(edgeID graphmodel.GraphId, timestamp int64) float64

// TimeVaryingCost wraps a StaticCost and applies a TimeFactor to every
// EdgeCost/EdgeCostReverse call, so that initial (departure-time) expansion
// uses one snapshot while RecostPaths (spec §4.7), called with the true
// arrival timestamp at each edge, can recover a cheaper or more expensive
// true cost.
type TimeVaryingCost struct {
	*StaticCost
	Factor TimeFactor
}

// NewTimeVaryingCost wraps base with factor.
func NewTimeVaryingCost(base *StaticCost, factor TimeFactor) *TimeVaryingCost {
	return &TimeVaryingCost{StaticCost: base, Factor: factor}
}

func (c *TimeVaryingCost) EdgeCost(edge *graphmodel.DirectedEdge, tile *graphmodel.Tile, timestamp int64) engine.Cost {
	base := c.StaticCost.EdgeCost(edge, tile, timestamp)
	f := c.Factor(edge.ID, timestamp)
	return engine.Cost{Cost: base.Cost * f, Secs: base.Secs * f}
}

func (c *TimeVaryingCost) EdgeCostReverse(edge *graphmodel.DirectedEdge, tile *graphmodel.Tile, timestamp int64) engine.Cost {
	base := c.StaticCost.EdgeCostReverse(edge, tile, timestamp)
	f := c.Factor(edge.ID, timestamp)
	return engine.Cost{Cost: base.Cost * f, Secs: base.Secs * f}
}

// DoublingAfter returns a TimeFactor that doubles cost once timestamp
// reaches thresholdSecs, the shape used by the time-variant test scenario
// (spec §8 scenario 5).
func DoublingAfter(thresholdSecs int64) TimeFactor {
	return func(_ graphmodel.GraphId, timestamp int64) float64 {
		if timestamp >= thresholdSecs {
			return 2.0
		}
		return 1.0
	}
}
