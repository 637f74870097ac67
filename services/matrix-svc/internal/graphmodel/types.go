package graphmodel

// DirectedEdge is one directed arc of the tiled graph: the minimal set of
// attributes the matrix engine needs to cost and traverse it. Turn/transition
// cost tables and time-zone resolution live with the costing implementation,
// not here — this struct only carries what a GraphReader is contractually
// obliged to hand back (spec external-interfaces, §6).
type DirectedEdge struct {
	ID            GraphId
	EndNode       GraphId // node at the far end of this edge
	OpposingEdge  GraphId // reverse-direction twin, resolved by the reader
	Length        float64 // meters
	RoadClass     RoadClass
	NotThru       bool // edge only reachable from a dead-end region
	AccessMask    uint32
	PercentAlong  float64 // set only on partial seed edges, otherwise 0
}

// RoadClass mirrors a hierarchy level classification used both for costing
// and for HierarchyLimits pruning.
type RoadClass uint8

const (
	RoadClassHighway RoadClass = iota
	RoadClassArterial
	RoadClassLocal
)

// NodeInfo is the minimal node record the engine needs: the set of outgoing
// edges for expansion.
type NodeInfo struct {
	ID    GraphId
	Edges []GraphId
}

// Tile is an immutable snapshot of one tile's edges and nodes. The engine
// never mutates a Tile; GraphReader.GetTile may return the same pointer on
// repeated calls.
type Tile struct {
	ID    GraphId
	Edges map[GraphId]*DirectedEdge
	Nodes map[GraphId]*NodeInfo
}

// CandidateEdge is one candidate projection of a location onto the graph: a
// directed edge and how far along it (in [0,1]) the location actually sits.
type CandidateEdge struct {
	EdgeID       GraphId
	PercentAlong float64
}

// GraphReader is the external, consumed collaborator (spec §6): tile storage
// and lookup. The engine treats every call as a potentially blocking,
// synchronous operation and never mutates what it returns.
type GraphReader interface {
	GetTile(tileID GraphId) (*Tile, error)
	DirectedEdge(edgeID GraphId) (*DirectedEdge, error)
	OpposingEdgeID(edgeID GraphId) (GraphId, error)
	NodeInfo(nodeID GraphId) (*NodeInfo, error)
}
