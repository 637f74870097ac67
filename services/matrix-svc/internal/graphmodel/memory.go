package graphmodel

import (
	"fmt"
	"sync"
)

// MemoryGraphReader is an in-memory GraphReader: one tile holding every node
// and edge. It exists for tests, small deployments, and documentation
// examples — a real deployment backs GraphReader with tile storage on disk
// or object storage, outside this engine's scope (spec §1).
//
// Safe for concurrent reads once built; Build-time mutation (AddNode/AddEdge)
// is not safe to interleave with reads from a running query.
type MemoryGraphReader struct {
	mu   sync.RWMutex
	tile *Tile
	next uint32
}

// NewMemoryGraphReader returns an empty single-tile reader.
func NewMemoryGraphReader() *MemoryGraphReader {
	return &MemoryGraphReader{
		tile: &Tile{
			ID:    NewGraphId(0, 0, 0),
			Edges: make(map[GraphId]*DirectedEdge),
			Nodes: make(map[GraphId]*NodeInfo),
		},
	}
}

// AddNode registers a node and returns its GraphId.
func (r *MemoryGraphReader) AddNode() GraphId {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := NewGraphId(0, 0, r.next)
	r.next++
	r.tile.Nodes[id] = &NodeInfo{ID: id}
	return id
}

// AddEdge adds a directed edge from -> to with the given length and road
// class, and its opposing twin to <- from, wiring OpposingEdge on both.
// Returns the forward edge's id.
func (r *MemoryGraphReader) AddEdge(from, to GraphId, length float64, class RoadClass) (GraphId, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fromNode, ok := r.tile.Nodes[from]
	if !ok {
		return InvalidGraphId, fmt.Errorf("graphmodel: unknown node %s", from)
	}
	toNode, ok := r.tile.Nodes[to]
	if !ok {
		return InvalidGraphId, fmt.Errorf("graphmodel: unknown node %s", to)
	}

	fwdID := NewGraphId(0, 0, r.next)
	r.next++
	revID := NewGraphId(0, 0, r.next)
	r.next++

	fwd := &DirectedEdge{ID: fwdID, EndNode: to, OpposingEdge: revID, Length: length, RoadClass: class}
	rev := &DirectedEdge{ID: revID, EndNode: from, OpposingEdge: fwdID, Length: length, RoadClass: class}

	r.tile.Edges[fwdID] = fwd
	r.tile.Edges[revID] = rev
	fromNode.Edges = append(fromNode.Edges, fwdID)
	toNode.Edges = append(toNode.Edges, revID)

	return fwdID, nil
}

func (r *MemoryGraphReader) GetTile(tileID GraphId) (*Tile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if tileID.TileID() != r.tile.ID.TileID() || tileID.Level() != r.tile.ID.Level() {
		return nil, fmt.Errorf("graphmodel: unknown tile %s", tileID)
	}
	return r.tile, nil
}

func (r *MemoryGraphReader) DirectedEdge(edgeID GraphId) (*DirectedEdge, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.tile.Edges[edgeID]
	if !ok {
		return nil, fmt.Errorf("graphmodel: unknown edge %s", edgeID)
	}
	return e, nil
}

func (r *MemoryGraphReader) OpposingEdgeID(edgeID GraphId) (GraphId, error) {
	e, err := r.DirectedEdge(edgeID)
	if err != nil {
		return InvalidGraphId, err
	}
	return e.OpposingEdge, nil
}

func (r *MemoryGraphReader) NodeInfo(nodeID GraphId) (*NodeInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.tile.Nodes[nodeID]
	if !ok {
		return nil, fmt.Errorf("graphmodel: unknown node %s", nodeID)
	}
	return n, nil
}
