package engine

// seed pushes one initial label per candidate edge of a location, scaling
// initial cost by (1 - percent_along) for forward searches and
// percent_along for reverse searches (spec §4.8). Partial-edge discounts
// are applied to both Cost and Secs in proportion, and to Distance.
func seedLocation(s *SearchState, loc Location, reader GraphReader, costing DynamicCost) error {
	for _, cand := range loc.Candidates {
		edge, err := reader.DirectedEdge(cand.EdgeID)
		if err != nil {
			return ErrGraphUnavailable
		}
		tileID := cand.EdgeID.TileId()
		tile, err := reader.GetTile(tileID)
		if err != nil {
			return ErrGraphUnavailable
		}

		var full Cost
		if s.dir == directionForward {
			full = costing.EdgeCost(edge, tile, s.Timestamp)
		} else {
			full = costing.EdgeCostReverse(edge, tile, s.Timestamp)
		}
		if isInvalidCost(full) {
			return ErrCostingError
		}

		var fraction float64
		if s.dir == directionForward {
			fraction = 1 - cand.PercentAlong
		} else {
			fraction = cand.PercentAlong
		}
		scaled := Cost{Cost: full.Cost * fraction, Secs: full.Secs * fraction}
		distance := edge.Length * fraction

		oppEdge := edge.OpposingEdge

		label := EdgeLabel{
			Predecessor: NoPredecessor,
			EdgeID:      cand.EdgeID,
			OppEdgeID:   oppEdge,
			Cost:        scaled,
			Distance:    distance,
			HierarchyLevel: uint8(edge.RoadClass),
		}
		idx := s.AddLabel(label)
		s.Status.SetTemporary(cand.EdgeID, idx)
		s.Queue.Push(idx, scaled)
	}
	return nil
}

func isInvalidCost(c Cost) bool {
	return c.Cost < 0 || c.Secs < 0 || c.Cost != c.Cost || c.Secs != c.Secs // NaN check via self-inequality
}
