package engine

import "matrixcore/services/matrix-svc/internal/graphmodel"

// LabelIndex is the stable position of an EdgeLabel within one per-location
// buffer. It doubles as the predecessor pointer: labels are append-only
// within a single search, so an index, once handed out, never moves.
type LabelIndex int32

// NoPredecessor marks a seed label with no predecessor.
const NoPredecessor LabelIndex = -1

// EdgeLabel is a settled or frontier record produced by one direction of one
// per-location search. Fields mirror spec §3 exactly.
type EdgeLabel struct {
	Predecessor    LabelIndex
	EdgeID         graphmodel.GraphId
	OppEdgeID      graphmodel.GraphId
	Cost           Cost
	Distance       float64
	HierarchyLevel uint8
	NotThru        bool
	Deadend        bool
	TransitionCost Cost
}
