package engine

import "matrixcore/services/matrix-svc/internal/graphmodel"

// direction distinguishes a forward (source-rooted) search from a backward
// (target-rooted) one; the two share almost all mechanics (spec §4.3: "Same
// as ForwardSearch but...").
type direction uint8

const (
	directionForward direction = iota
	directionBackward
)

// SearchState owns everything one source's forward search (or one target's
// backward search) needs: its label buffer, edge status map, priority
// queue, hierarchy budget, and location bookkeeping. All of it is allocated
// at Initialize, grows during expansion, and is released by Reset before
// the next query (spec §3 Lifecycles).
type SearchState struct {
	dir    direction
	Labels []EdgeLabel
	Status *EdgeStatus
	Queue  *DoubleBucketQueue
	Hier   *hierarchyTracker
	Loc    *LocationStatus

	// Timestamp is the departure (forward) or arrival (backward) epoch
	// seconds used for initial, non-recosted expansion.
	Timestamp   int64
	Terminated  bool
	maxReserved int
}

func newSearchState(dir direction, opposingCount, initialThreshold, maxReservedLabels int, unitSize float64, hier []HierarchyLimits, timestamp int64) *SearchState {
	s := &SearchState{
		dir:         dir,
		Labels:      make([]EdgeLabel, 0, maxReservedLabels),
		Status:      NewEdgeStatus(),
		Hier:        newHierarchyTracker(hier),
		Loc:         NewLocationStatus(opposingCount, initialThreshold),
		Timestamp:   timestamp,
		maxReserved: maxReservedLabels,
	}
	s.Queue = NewDoubleBucketQueue(unitSize,
		func(l LabelIndex) Cost { return s.Labels[l].Cost },
		func(l LabelIndex) float64 { return s.Labels[l].Distance },
		func(l LabelIndex) graphmodel.GraphId { return s.Labels[l].EdgeID })
	return s
}

// AddLabel appends a new label and returns its stable index.
func (s *SearchState) AddLabel(l EdgeLabel) LabelIndex {
	idx := LabelIndex(len(s.Labels))
	s.Labels = append(s.Labels, l)
	return idx
}

// Label returns the label at idx.
func (s *SearchState) Label(idx LabelIndex) *EdgeLabel {
	return &s.Labels[idx]
}
