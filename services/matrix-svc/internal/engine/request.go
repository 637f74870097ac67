package engine

import "matrixcore/services/matrix-svc/internal/graphmodel"

// TravelMode selects which cost-threshold divisor (spec §4.5) and,
// typically, which DynamicCost instance applies.
type TravelMode uint8

const (
	ModeAuto TravelMode = iota
	ModeBicycle
	ModePedestrian
)

// String returns the mode's lowercase name, used in metrics labels, cache
// keys, and log fields.
func (m TravelMode) String() string {
	switch m {
	case ModeBicycle:
		return "bicycle"
	case ModePedestrian:
		return "pedestrian"
	default:
		return "auto"
	}
}

// ParseTravelMode parses a mode name as accepted over the wire. Unknown
// values fall back to ModeAuto.
func ParseTravelMode(s string) TravelMode {
	switch s {
	case "bicycle":
		return ModeBicycle
	case "pedestrian":
		return ModePedestrian
	default:
		return ModeAuto
	}
}

// Location is one source or target: a set of candidate edge projections
// plus an optional departure/arrival time.
type Location struct {
	Candidates []graphmodel.CandidateEdge
	DateTime   int64 // epoch seconds; 0 means "not specified"
}

// Request is the engine's consumed request shape (spec §6).
type Request struct {
	Sources          []Location
	Targets          []Location
	Mode             TravelMode
	MaxMatrixDistance float64
	HasTime          bool
	Invariant        bool
}

// Cell is one (source, target) entry of the produced matrix (spec §6).
type Cell struct {
	Found          bool
	CostSeconds    float64
	CostValue      float64
	DistanceMeters float64
	BeginTime      int64
	EndTime        int64
	DateTimeEpoch  int64
}

// Response is the engine's produced response shape: an S×T matrix plus
// cooperative-cancellation status.
type Response struct {
	Matrix    [][]Cell
	Cancelled bool
}
