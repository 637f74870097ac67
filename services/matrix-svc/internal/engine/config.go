package engine

// Config holds the engine's tunables (spec §6 and the design-note
// recommendations in §9). All of them are per-query configuration rather
// than compile-time constants, per §9's design note that they "should be
// tunables on a per-query configuration to enable future per-request
// tuning without recompilation."
type Config struct {
	// MaxReservedLabelsCount is the initial capacity reserved for each
	// per-location label buffer.
	MaxReservedLabelsCount int
	// CostThresholdAutoDivisor, CostThresholdBicycleDivisor and
	// CostThresholdPedestrianDivisor derive the per-mode cost ceiling from
	// Request.MaxMatrixDistance (spec §4.5).
	CostThresholdAutoDivisor       float64
	CostThresholdBicycleDivisor    float64
	CostThresholdPedestrianDivisor float64
	// PairMeetingThreshold is the number of iterations after a pair's first
	// meeting during which a cheaper meeting can still supersede it. Spec
	// §9 leaves the exact default an open question and recommends 16.
	PairMeetingThreshold int
	// MaxLabelCount is the hard cap backing ResourceExhaustion (spec §7):
	// a single per-location search exceeding this aborts the query.
	MaxLabelCount int
}

// DefaultConfig returns the engine's defaults, matching spec §9's
// recommendation for PairMeetingThreshold and the mode divisors given in
// §4.5.
func DefaultConfig() Config {
	return Config{
		MaxReservedLabelsCount:         1 << 16,
		CostThresholdAutoDivisor:       56,
		CostThresholdBicycleDivisor:    56,
		CostThresholdPedestrianDivisor: 28,
		PairMeetingThreshold:           16,
		MaxLabelCount:                  1 << 20,
	}
}

// costThreshold derives the cost ceiling used to prune queue pops (spec
// §4.5): a label with cost greater than this is discarded on pop.
func (c Config) costThreshold(maxMatrixDistance float64, mode TravelMode) float64 {
	switch mode {
	case ModeBicycle:
		return maxMatrixDistance / c.CostThresholdBicycleDivisor
	case ModePedestrian:
		return maxMatrixDistance / c.CostThresholdPedestrianDivisor
	default:
		return maxMatrixDistance / c.CostThresholdAutoDivisor
	}
}
