package engine

import "matrixcore/services/matrix-svc/internal/graphmodel"

// BestCandidate is the best known meeting point for one (source, target)
// pair (spec §3 / §4.4). The first meeting is never committed immediately:
// threshold counts down afterwards so a strictly cheaper meeting found in
// the next few iterations can still replace it.
type BestCandidate struct {
	Found     bool
	EdgeID    graphmodel.GraphId
	OppEdgeID graphmodel.GraphId
	Cost      Cost
	Distance  float64
	Threshold int

	// SourceLabel and TargetLabel are the forward and reverse label indices
	// that met at EdgeID/OppEdgeID. They are only meaningful while the
	// owning per-location SearchStates are still live, i.e. before the
	// next query's Reset — the recoster (§4.7) uses them to walk the
	// predecessor chain back to each root.
	SourceLabel LabelIndex
	TargetLabel LabelIndex
}

// Offer considers a newly discovered meeting for this pair. It updates the
// candidate if this is the first meeting, or if cost is strictly cheaper
// than the current best. Returns (first, updated): first is true only on
// the pair's very first meeting (the caller uses that to arm thresholds and
// update LocationStatus exactly once per pair, per spec §4.2 step 1);
// updated is true whenever the candidate's cost actually changed, which the
// caller needs to decide whether this iteration counts as "new progress"
// for threshold decay (spec §4.2 step 3).
func (b *BestCandidate) Offer(edgeID, oppEdgeID graphmodel.GraphId, cost Cost, distance float64, sourceLabel, targetLabel LabelIndex, pairMeetingThreshold int) (first, updated bool) {
	first = !b.Found
	if first || cost.Cost < b.Cost.Cost {
		b.Found = true
		b.EdgeID = edgeID
		b.OppEdgeID = oppEdgeID
		b.Cost = cost
		b.Distance = distance
		b.SourceLabel = sourceLabel
		b.TargetLabel = targetLabel
		updated = true
	}
	if first {
		b.Threshold = pairMeetingThreshold
	}
	return first, updated
}

// Finalized reports whether this pair's post-meeting grace period has
// elapsed (spec §4.4: "finalized when threshold reaches 0").
func (b *BestCandidate) Finalized() bool {
	return b.Found && b.Threshold <= 0
}

// Decay consumes one iteration of the post-meeting grace period.
func (b *BestCandidate) Decay() {
	if b.Found && b.Threshold > 0 {
		b.Threshold--
	}
}

// ForceFinalize ends the post-meeting grace period immediately. Spec §4.4:
// a pair is also finalized "when source s terminates" (symmetrically, when
// the target terminates) — once one side's search stops producing labels,
// it can never offer a cheaper meeting, so there is no reason to keep the
// opposing location waiting on this pair's threshold.
func (b *BestCandidate) ForceFinalize() {
	b.Threshold = 0
}
