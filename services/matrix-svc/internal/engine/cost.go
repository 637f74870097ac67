// Package engine implements the many-to-many bidirectional cost-matrix
// search: per-location expansion state, connection detection, termination,
// and time-aware recosting. It is pure computation — no I/O beyond the
// GraphReader and DynamicCost collaborators it is handed per query.
package engine

import "math"

// Cost is the pair (cost, seconds) that composes by addition along a path.
// Cost is the optimization objective; Secs is elapsed travel time and is
// tracked independently so time-aware recosting can replace it without
// touching the objective function's other inputs.
type Cost struct {
	Cost float64
	Secs float64
}

// Add returns the sum of two costs.
func (c Cost) Add(o Cost) Cost {
	return Cost{Cost: c.Cost + o.Cost, Secs: c.Secs + o.Secs}
}

// Less orders costs by Cost, matching the queue's ordering key.
func (c Cost) Less(o Cost) bool {
	return c.Cost < o.Cost
}

// ZeroCost is the identity for Add.
var ZeroCost = Cost{}

// InfiniteCost denotes an unreached state.
var InfiniteCost = Cost{Cost: math.MaxFloat64, Secs: math.MaxFloat64}
