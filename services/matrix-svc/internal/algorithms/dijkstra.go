// Package algorithms holds reference shortest-path implementations used to
// cross-check the matrix engine's optimality invariant (spec §8): for a
// single (source edge, target edge) pair with static costs, the engine's
// best connection must equal an independent one-to-one Dijkstra run over
// the same GraphReader/DynamicCost.
package algorithms

import (
	"container/heap"

	"matrixcore/services/matrix-svc/internal/engine"
	"matrixcore/services/matrix-svc/internal/graphmodel"
)

// =============================================================================
// Dijkstra's Algorithm
// =============================================================================
//
// Time Complexity: O((V + E) log V) with a binary heap.
//
// References:
//   - Dijkstra, E. W. (1959). "A note on two problems in connexion with graphs"
// =============================================================================

// DijkstraResult is the outcome of a one-to-one shortest-path search.
type DijkstraResult struct {
	Found    bool
	Cost     engine.Cost
	Distance float64
}

// pqItem is one entry in the priority queue: the edge id reached, the
// accumulated cost/distance to reach it, and distance for tie-breaking.
type pqItem struct {
	edge     graphmodel.GraphId
	cost     engine.Cost
	distance float64
	index    int
}

// priorityQueue implements heap.Interface, min-heap on cost with ties
// broken by shorter distance then lower edge id for determinism — the same
// tie-break rule the engine's DoubleBucketQueue uses (spec §4.2).
type priorityQueue []*pqItem

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].cost.Cost != pq[j].cost.Cost {
		return pq[i].cost.Cost < pq[j].cost.Cost
	}
	if pq[i].distance != pq[j].distance {
		return pq[i].distance < pq[j].distance
	}
	return pq[i].edge < pq[j].edge
}

func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *priorityQueue) Push(x any) {
	item := x.(*pqItem)
	item.index = len(*pq)
	*pq = append(*pq, item)
}

func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*pq = old[:n-1]
	return item
}

// ShortestPath runs one-to-one Dijkstra from sourceEdge to targetEdge using
// reader/costing's forward EdgeCost. It has no concept of hierarchy limits
// or thresholds — it exists purely as a ground-truth cross-check for the
// engine's bidirectional many-to-many search, not as a production path
// finder.
func ShortestPath(reader graphmodel.GraphReader, costing engine.DynamicCost, sourceEdge, targetEdge graphmodel.GraphId) (*DijkstraResult, error) {
	dist := make(map[graphmodel.GraphId]float64)
	distFull := make(map[graphmodel.GraphId]engine.Cost)
	visited := make(map[graphmodel.GraphId]bool)

	pq := &priorityQueue{}
	heap.Init(pq)

	seedEdge, err := reader.DirectedEdge(sourceEdge)
	if err != nil {
		return nil, err
	}
	seedTile, err := reader.GetTile(sourceEdge.TileId())
	if err != nil {
		return nil, err
	}
	seedCost := costing.EdgeCost(seedEdge, seedTile, 0)
	dist[sourceEdge] = seedEdge.Length
	distFull[sourceEdge] = seedCost
	heap.Push(pq, &pqItem{edge: sourceEdge, cost: seedCost, distance: seedEdge.Length})

	for pq.Len() > 0 {
		item := heap.Pop(pq).(*pqItem)
		if visited[item.edge] {
			continue
		}
		visited[item.edge] = true

		if item.edge == targetEdge {
			return &DijkstraResult{Found: true, Cost: item.cost, Distance: item.distance}, nil
		}

		edge, err := reader.DirectedEdge(item.edge)
		if err != nil {
			return nil, err
		}
		node, err := reader.NodeInfo(edge.EndNode)
		if err != nil {
			return nil, err
		}

		for _, nextID := range node.Edges {
			if visited[nextID] {
				continue
			}
			nextEdge, err := reader.DirectedEdge(nextID)
			if err != nil {
				return nil, err
			}
			tile, err := reader.GetTile(nextID.TileId())
			if err != nil {
				return nil, err
			}
			ec := costing.EdgeCost(nextEdge, tile, 0)
			candidateCost := item.cost.Add(ec)
			candidateDist := item.distance + nextEdge.Length

			if prev, ok := distFull[nextID]; ok && prev.Cost <= candidateCost.Cost {
				continue
			}
			dist[nextID] = candidateDist
			distFull[nextID] = candidateCost
			heap.Push(pq, &pqItem{edge: nextID, cost: candidateCost, distance: candidateDist})
		}
	}

	return &DijkstraResult{Found: false}, nil
}
