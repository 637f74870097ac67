package engine

import (
	"context"
)

// Matrix is the expansion driver (spec §4.1): it owns one SearchState per
// source and per target, the shared TargetMap join structure, and the
// S×T grid of BestCandidate meeting points. One Matrix is built per query
// and discarded afterwards — nothing here is a process-wide singleton
// (spec §5).
type Matrix struct {
	Reader  GraphReader
	Costing DynamicCost
	Config  Config

	sources []*SearchState
	targets []*SearchState
	tmap    *TargetMap // edges settled by targets' reverse searches
	smap    *TargetMap // edges settled by sources' forward searches
	best    [][]BestCandidate

	costThreshold    float64
	remainingSources int
	remainingTargets int
}

// NewMatrix builds a driver around the given external collaborators.
func NewMatrix(reader GraphReader, costing DynamicCost, cfg Config) *Matrix {
	return &Matrix{Reader: reader, Costing: costing, Config: cfg}
}

// SourceToTarget populates and returns the S×T matrix for req (spec §4.1).
// It never panics on recoverable conditions (no candidates, no path,
// cancellation) — those are reflected in the returned matrix. Fatal
// conditions (graph reader failure, costing contract violation, resource
// exhaustion) return a non-nil error and no matrix.
func (m *Matrix) SourceToTarget(ctx context.Context, req *Request) (*Response, error) {
	if err := m.initialize(req); err != nil {
		return nil, err
	}

	cancelled := false
outer:
	for n := 0; ; n++ {
		select {
		case <-ctx.Done():
			cancelled = true
			break outer
		default:
		}

		for sIdx, s := range m.sources {
			if s.Terminated || s.Loc.Done(m.best[sIdx]) {
				continue
			}
			if err := m.stepForward(sIdx, s, n); err != nil {
				return nil, err
			}
		}
		for tIdx, t := range m.targets {
			if t.Terminated || t.Loc.Done(m.targetColumn(tIdx)) {
				continue
			}
			if err := m.stepBackward(tIdx, t); err != nil {
				return nil, err
			}
		}

		if m.remainingSources == 0 && m.remainingTargets == 0 {
			break
		}
		if m.allThresholdsDecayed() {
			break
		}
	}

	if !cancelled && req.HasTime && !req.Invariant {
		if err := m.recostPaths(req); err != nil {
			return nil, err
		}
	}

	return m.buildResponse(cancelled), nil
}

func (m *Matrix) allThresholdsDecayed() bool {
	for sIdx, s := range m.sources {
		if !s.Terminated && !s.Loc.Done(m.best[sIdx]) {
			return false
		}
	}
	for tIdx, t := range m.targets {
		if !t.Terminated && !t.Loc.Done(m.targetColumn(tIdx)) {
			return false
		}
	}
	return true
}

// targetColumn collects the BestCandidate column for tIdx across every
// source row. m.best is stored source-major, so a target's pairs aren't
// contiguous; this copies them out for LocationStatus.Done's read-only scan.
func (m *Matrix) targetColumn(tIdx int) []BestCandidate {
	col := make([]BestCandidate, len(m.best))
	for i := range m.best {
		col[i] = m.best[i][tIdx]
	}
	return col
}

func (m *Matrix) initialize(req *Request) error {
	m.costThreshold = m.Config.costThreshold(req.MaxMatrixDistance, req.Mode)
	m.tmap = NewTargetMap()
	m.smap = NewTargetMap()

	m.sources = make([]*SearchState, len(req.Sources))
	m.targets = make([]*SearchState, len(req.Targets))
	m.best = make([][]BestCandidate, len(req.Sources))
	for i := range m.best {
		m.best[i] = make([]BestCandidate, len(req.Targets))
	}

	hierLimits := m.Costing.HierarchyLimits()
	unitSize := m.Costing.UnitSize()

	for i, loc := range req.Sources {
		s := newSearchState(directionForward, len(req.Targets), initialThreshold(len(req.Targets)), m.Config.MaxReservedLabelsCount, unitSize, hierLimits, loc.DateTime)
		m.sources[i] = s
		if len(loc.Candidates) == 0 {
			s.Terminated = true
			continue
		}
		if err := seedLocation(s, loc, m.Reader, m.Costing); err != nil {
			return err
		}
		m.remainingSources++
	}
	for j, loc := range req.Targets {
		t := newSearchState(directionBackward, len(req.Sources), initialThreshold(len(req.Sources)), m.Config.MaxReservedLabelsCount, unitSize, hierLimits, loc.DateTime)
		m.targets[j] = t
		if len(loc.Candidates) == 0 {
			t.Terminated = true
			continue
		}
		if err := seedLocation(t, loc, m.Reader, m.Costing); err != nil {
			return err
		}
		m.remainingTargets++
	}
	return nil
}

// initialThreshold arms a location's iteration budget proportional to the
// number of opposing locations it must find a connection to, so a larger
// many-to-many query gets proportionally more patience before giving up on
// an unreachable pair (spec §4.5's per-location thresholds).
func initialThreshold(opposingCount int) int {
	t := opposingCount * 4
	if t < 32 {
		t = 32
	}
	return t
}

func (m *Matrix) stepForward(sIdx int, s *SearchState, n int) error {
	idx, ok := s.Queue.Pop()
	if !ok {
		s.Terminated = true
		m.remainingSources--
		for j := range m.best[sIdx] {
			m.best[sIdx][j].ForceFinalize()
		}
		return nil
	}
	label := s.Label(idx)

	if label.Cost.Cost > m.costThreshold {
		s.Status.SetPermanent(label.EdgeID, idx)
		m.decayIfNoProgress(s, false)
		return nil
	}

	s.Status.SetPermanent(label.EdgeID, idx)
	m.smap.Record(label.EdgeID, LabelOwner(sIdx), idx)

	progressed := m.checkForwardConnections(sIdx, s, idx, label)

	if err := m.expand(s, idx, directionForward); err != nil {
		return err
	}
	if len(s.Labels) > m.Config.MaxLabelCount {
		return ErrResourceExhaustion
	}

	m.decayIfNoProgress(s, progressed)
	return nil
}

func (m *Matrix) stepBackward(tIdx int, t *SearchState) error {
	idx, ok := t.Queue.Pop()
	if !ok {
		t.Terminated = true
		m.remainingTargets--
		for i := range m.best {
			m.best[i][tIdx].ForceFinalize()
		}
		return nil
	}
	label := t.Label(idx)

	if label.Cost.Cost > m.costThreshold {
		t.Status.SetPermanent(label.EdgeID, idx)
		m.decayIfNoProgress(t, false)
		return nil
	}

	t.Status.SetPermanent(label.EdgeID, idx)
	m.tmap.Record(label.EdgeID, LabelOwner(tIdx), idx)

	progressed := m.checkBackwardConnections(tIdx, t, idx, label)

	if err := m.expand(t, idx, directionBackward); err != nil {
		return err
	}
	if len(t.Labels) > m.Config.MaxLabelCount {
		return ErrResourceExhaustion
	}

	m.decayIfNoProgress(t, progressed)
	return nil
}

// decayIfNoProgress implements spec §4.2 step 3: if this iteration produced
// no new best-connection update for the location and it has no remaining
// opposing pairs to find, its threshold decays by one.
func (m *Matrix) decayIfNoProgress(s *SearchState, progressed bool) {
	if progressed {
		return
	}
	if len(s.Loc.Remaining) != 0 {
		return
	}
	if s.Loc.Threshold > 0 {
		s.Loc.Threshold--
	}
}

// checkForwardConnections implements spec §4.2 step 1: for every target
// whose reverse search has reached label's opposing edge, offer a combined
// cost to that pair's BestCandidate. Returns whether any pair made progress
// this iteration (a first meeting or a strictly cheaper one).
func (m *Matrix) checkForwardConnections(sIdx int, s *SearchState, labelIdx LabelIndex, label *EdgeLabel) bool {
	entries := m.tmap.Lookup(label.OppEdgeID)
	justMet := make(map[int]struct{}, len(entries))
	progressed := false
	for _, e := range entries {
		tIdx := int(e.target)
		target := m.targets[tIdx]
		revLabel := target.Label(e.label)

		combinedCost := label.Cost.Add(revLabel.Cost)
		combinedDistance := label.Distance + revLabel.Distance

		best := &m.best[sIdx][tIdx]
		first, updated := best.Offer(label.EdgeID, label.OppEdgeID, combinedCost, combinedDistance, labelIdx, e.label, m.Config.PairMeetingThreshold)
		if first {
			s.Loc.Settle(tIdx)
			target.Loc.Settle(sIdx)
			justMet[tIdx] = struct{}{}
		}
		if updated {
			progressed = true
		}
	}

	// Spec §4.4: after the first meeting, a pair's threshold decrements on
	// every subsequent forward iteration of s, not just the next time s
	// connects to that particular target — so a pair s was not just met
	// with this iteration still counts down its grace period.
	for tIdx := range m.best[sIdx] {
		if _, skip := justMet[tIdx]; skip {
			continue
		}
		m.best[sIdx][tIdx].Decay()
	}

	return progressed
}

// checkBackwardConnections is checkForwardConnections's mirror image: a
// target's reverse search, on settling label, looks up every source whose
// forward search has already settled label's opposing edge. Recording and
// checking from both directions (rather than forward-only) means a pair
// meets as soon as either side discovers it, regardless of which of the two
// searches happens to settle its half of the meeting edge first.
func (m *Matrix) checkBackwardConnections(tIdx int, t *SearchState, labelIdx LabelIndex, label *EdgeLabel) bool {
	entries := m.smap.Lookup(label.OppEdgeID)
	justMet := make(map[int]struct{}, len(entries))
	progressed := false
	for _, e := range entries {
		sIdx := int(e.target)
		source := m.sources[sIdx]
		fwdLabel := source.Label(e.label)

		combinedCost := fwdLabel.Cost.Add(label.Cost)
		combinedDistance := fwdLabel.Distance + label.Distance

		best := &m.best[sIdx][tIdx]
		first, updated := best.Offer(fwdLabel.EdgeID, fwdLabel.OppEdgeID, combinedCost, combinedDistance, e.label, labelIdx, m.Config.PairMeetingThreshold)
		if first {
			source.Loc.Settle(tIdx)
			t.Loc.Settle(sIdx)
			justMet[sIdx] = struct{}{}
		}
		if updated {
			progressed = true
		}
	}

	// Mirror of checkForwardConnections's decay step, for the column this
	// target owns (spec §4.4 applies symmetrically to backward iterations).
	for sIdx := range m.sources {
		if _, skip := justMet[sIdx]; skip {
			continue
		}
		m.best[sIdx][tIdx].Decay()
	}

	return progressed
}

// expand relaxes every outgoing edge from the end node of the just-settled
// label (spec §4.2 step 2 / §4.3).
func (m *Matrix) expand(s *SearchState, predIdx LabelIndex, dir direction) error {
	pred := s.Label(predIdx)

	predEdge, err := m.Reader.DirectedEdge(pred.EdgeID)
	if err != nil {
		return ErrGraphUnavailable
	}
	node, err := m.Reader.NodeInfo(predEdge.EndNode)
	if err != nil {
		return ErrGraphUnavailable
	}

	for _, edgeID := range node.Edges {
		if edgeID == pred.OppEdgeID {
			continue // never immediately backtrack onto the edge we arrived on
		}
		state, labelIdx := s.Status.Get(edgeID)
		if state == StatusPermanent {
			continue
		}

		edge, err := m.Reader.DirectedEdge(edgeID)
		if err != nil {
			return ErrGraphUnavailable
		}
		if edge.AccessMask != 0 && m.Costing.AccessMode()&edge.AccessMask == 0 {
			continue
		}

		distance := pred.Distance + edge.Length
		level := uint8(edge.RoadClass)
		if !s.Hier.Allowed(level, distance) {
			continue
		}

		tileID := edgeID.TileId()
		tile, err := m.Reader.GetTile(tileID)
		if err != nil {
			return ErrGraphUnavailable
		}

		var allowed bool
		var edgeCost, transitionCost Cost
		if dir == directionForward {
			allowed = m.Costing.Allowed(edge, pred, tile, s.Timestamp)
			edgeCost = m.Costing.EdgeCost(edge, tile, s.Timestamp)
			transitionCost = m.Costing.TransitionCost(node, edge, pred)
		} else {
			allowed = m.Costing.AllowedReverse(edge, pred, tile, s.Timestamp)
			edgeCost = m.Costing.EdgeCostReverse(edge, tile, s.Timestamp)
			transitionCost = m.Costing.TransitionCostReverse(node, edge, pred)
		}
		if !allowed {
			continue
		}
		if isInvalidCost(edgeCost) || isInvalidCost(transitionCost) {
			return ErrCostingError
		}

		total := pred.Cost.Add(edgeCost).Add(transitionCost)

		if state == StatusTemporary {
			existing := s.Label(labelIdx)
			if total.Cost < existing.Cost.Cost {
				existing.Cost = total
				existing.Distance = distance
				existing.Predecessor = predIdx
				existing.TransitionCost = transitionCost
				s.Queue.DecreaseKey(labelIdx, total)
			}
			continue
		}

		opp, err := m.Reader.OpposingEdgeID(edgeID)
		if err != nil {
			return ErrGraphUnavailable
		}
		newLabel := EdgeLabel{
			Predecessor:    predIdx,
			EdgeID:         edgeID,
			OppEdgeID:      opp,
			Cost:           total,
			Distance:       distance,
			HierarchyLevel: level,
			TransitionCost: transitionCost,
		}
		newIdx := s.AddLabel(newLabel)
		s.Status.SetTemporary(edgeID, newIdx)
		s.Queue.Push(newIdx, total)
		s.Hier.Record(level, distance)
	}
	return nil
}

func (m *Matrix) buildResponse(cancelled bool) *Response {
	resp := &Response{Matrix: make([][]Cell, len(m.sources)), Cancelled: cancelled}
	for i := range resp.Matrix {
		resp.Matrix[i] = make([]Cell, len(m.targets))
		for j := range resp.Matrix[i] {
			bc := m.best[i][j]
			if !bc.Found {
				resp.Matrix[i][j] = Cell{Found: false}
				continue
			}
			resp.Matrix[i][j] = Cell{
				Found:          true,
				CostSeconds:    bc.Cost.Secs,
				CostValue:      bc.Cost.Cost,
				DistanceMeters: bc.Distance,
			}
		}
	}
	return resp
}
