package engine

import "matrixcore/services/matrix-svc/internal/graphmodel"

// targetEntry is one (target index, label index) pair recorded against an
// edge settled by a target's reverse search.
type targetEntry struct {
	target LabelOwner
	label  LabelIndex
}

// LabelOwner identifies which location's per-location buffer a label index
// refers to: a target index in the driver's tmap, a source index in its smap.
type LabelOwner int

// TargetMap is the join structure between forward and reverse trees (spec
// §3 / §4.6): an append-only, single-writer reverse index from edge id to
// the list of targets whose reverse expansion has settled that edge. Reads
// from the forward connection check are O(1) expected via direct map
// lookup — the same "map keyed by id, slice of hits" shape the engine uses
// elsewhere for reverse indices.
type TargetMap struct {
	entries map[graphmodel.GraphId][]targetEntry
}

// NewTargetMap returns an empty map sized for reuse across queries.
func NewTargetMap() *TargetMap {
	return &TargetMap{entries: make(map[graphmodel.GraphId][]targetEntry, 256)}
}

// Record appends one settled-edge observation from a target's backward
// search. Safe to call only from the single query goroutine (spec §5).
func (m *TargetMap) Record(edge graphmodel.GraphId, target LabelOwner, label LabelIndex) {
	m.entries[edge] = append(m.entries[edge], targetEntry{target: target, label: label})
}

// Lookup returns every (target, label) pair recorded against edge so far.
// The returned slice must not be retained past the current iteration; the
// map may reallocate the backing array on a later Record to the same key.
func (m *TargetMap) Lookup(edge graphmodel.GraphId) []targetEntry {
	return m.entries[edge]
}

// Reset clears the map for reuse by the next query.
func (m *TargetMap) Reset() {
	clear(m.entries)
}
