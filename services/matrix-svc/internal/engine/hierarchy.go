package engine

// HierarchyLimits bounds expansion at one hierarchy level: once either cap
// is hit, further expansion onto edges of that level is pruned so local
// roads far from the source/target don't blow up the search (spec §3).
type HierarchyLimits struct {
	Level       uint8
	MaxCount    int
	MaxDistance float64
}

// hierarchyUsage tracks how much of a level's budget one per-location
// search has spent so far.
type hierarchyUsage struct {
	count    int
	distance float64
}

// hierarchyTracker enforces HierarchyLimits per level for one search.
type hierarchyTracker struct {
	limits map[uint8]HierarchyLimits
	usage  map[uint8]*hierarchyUsage
}

func newHierarchyTracker(limits []HierarchyLimits) *hierarchyTracker {
	t := &hierarchyTracker{
		limits: make(map[uint8]HierarchyLimits, len(limits)),
		usage:  make(map[uint8]*hierarchyUsage, len(limits)),
	}
	for _, l := range limits {
		t.limits[l.Level] = l
	}
	return t
}

// Allowed reports whether expanding onto a level-`level` edge, reaching
// cumulative distance `distance` from the root, is still within budget.
func (t *hierarchyTracker) Allowed(level uint8, distance float64) bool {
	limit, ok := t.limits[level]
	if !ok {
		return true
	}
	u := t.usageFor(level)
	if u.count >= limit.MaxCount {
		return false
	}
	if limit.MaxDistance > 0 && distance > limit.MaxDistance {
		return false
	}
	return true
}

// Record accounts for one more expansion at the given level/distance.
func (t *hierarchyTracker) Record(level uint8, distance float64) {
	u := t.usageFor(level)
	u.count++
	u.distance = distance
}

func (t *hierarchyTracker) usageFor(level uint8) *hierarchyUsage {
	u, ok := t.usage[level]
	if !ok {
		u = &hierarchyUsage{}
		t.usage[level] = u
	}
	return u
}

func (t *hierarchyTracker) reset() {
	clear(t.usage)
}
