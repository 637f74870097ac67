package engine

// recostPaths implements spec §4.7: for every finalized (source, target)
// pair, reconstruct the meeting path (forward predecessor chain from the
// meeting edge back to the source, plus the reverse predecessor chain from
// the opposing edge back to the target) and re-evaluate each edge with its
// true traversal timestamp, replacing BestCandidate.Cost with the result.
func (m *Matrix) recostPaths(req *Request) error {
	for i := range m.best {
		for j := range m.best[i] {
			bc := &m.best[i][j]
			if !bc.Found {
				continue
			}
			cost, err := m.recostPair(m.sources[i], m.targets[j], bc, req.Sources[i].DateTime)
			if err != nil {
				return err
			}
			bc.Cost = cost
		}
	}
	return nil
}

// recostPair walks the combined path chronologically from the source's
// departure time, recomputing EdgeCost at the true arrival time of each
// edge rather than the departure-time snapshot used during expansion.
func (m *Matrix) recostPair(source, target *SearchState, bc *BestCandidate, departure int64) (Cost, error) {
	forwardChain := chainToRoot(source, bc.SourceLabel)
	reverseChain := chainToRoot(target, bc.TargetLabel)

	var total Cost
	timestamp := departure

	for i := len(forwardChain) - 1; i >= 0; i-- {
		label := source.Label(forwardChain[i])
		edge, err := m.Reader.DirectedEdge(label.EdgeID)
		if err != nil {
			return Cost{}, ErrGraphUnavailable
		}
		tile, err := m.Reader.GetTile(label.EdgeID.TileId())
		if err != nil {
			return Cost{}, ErrGraphUnavailable
		}
		c := m.Costing.EdgeCost(edge, tile, timestamp)
		if isInvalidCost(c) {
			return Cost{}, ErrCostingError
		}
		total = total.Add(c).Add(label.TransitionCost)
		timestamp += int64(c.Secs)
	}

	// chainToRoot(target, ...) returns chain[0] == the meeting edge and
	// chain[len-1] == the target root, so walking it forward (index 0
	// upward) continues the timeline forward from the meeting point out
	// to the target.
	for i := 0; i < len(reverseChain); i++ {
		label := target.Label(reverseChain[i])
		edge, err := m.Reader.DirectedEdge(label.EdgeID)
		if err != nil {
			return Cost{}, ErrGraphUnavailable
		}
		tile, err := m.Reader.GetTile(label.EdgeID.TileId())
		if err != nil {
			return Cost{}, ErrGraphUnavailable
		}
		c := m.Costing.EdgeCost(edge, tile, timestamp)
		if isInvalidCost(c) {
			return Cost{}, ErrCostingError
		}
		total = total.Add(c).Add(label.TransitionCost)
		timestamp += int64(c.Secs)
	}

	return total, nil
}

// chainToRoot returns the label indices from leaf to root, i.e.
// chain[0] == leaf and chain[len-1] is the seed label.
func chainToRoot(s *SearchState, leaf LabelIndex) []LabelIndex {
	var chain []LabelIndex
	idx := leaf
	for idx != NoPredecessor {
		chain = append(chain, idx)
		idx = s.Label(idx).Predecessor
	}
	return chain
}
