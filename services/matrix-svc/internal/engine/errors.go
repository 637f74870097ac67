package engine

import "errors"

// Fatal errors (spec §7): programmer-contract violations that abort the
// query and surface a single typed failure. No partial matrix is returned
// alongside these.
var (
	// ErrGraphUnavailable is returned when the GraphReader fails to return a
	// requested tile, edge, or node.
	ErrGraphUnavailable = errors.New("engine: graph reader unavailable")
	// ErrCostingError is returned when costing produces a NaN or negative
	// cost, or otherwise violates its contract.
	ErrCostingError = errors.New("engine: costing contract violation")
	// ErrResourceExhaustion is returned when a search's label count exceeds
	// the configured hard cap.
	ErrResourceExhaustion = errors.New("engine: label count exceeds configured maximum")
)

// Cancelled is a recoverable, per-query condition: cooperative cancellation
// tripped before the matrix finished. It is not an error in the Go sense —
// SourceToTarget returns (partial *Response, nil) with Response.Cancelled
// set — callers that want to treat it as failure should check that flag.
