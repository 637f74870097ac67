package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Standard attribute keys attached to matrix query spans.
const (
	// Query shape
	AttrMatrixSources = "matrix.sources"
	AttrMatrixTargets = "matrix.targets"
	AttrMatrixMode    = "matrix.mode"

	// Outcome
	AttrMatrixTerminationReason = "matrix.termination_reason"
	AttrMatrixPairsSettled      = "matrix.pairs_settled"
	AttrMatrixEdgesExpanded     = "matrix.edges_expanded"

	// Validation
	AttrValidationLevel  = "validation.level"
	AttrValidationErrors = "validation.errors"
	AttrValidationPassed = "validation.passed"
)

// MatrixAttributes returns the attributes describing a SourceToTarget call's
// shape, attached to the call's root span.
func MatrixAttributes(sources, targets int, mode string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrMatrixSources, sources),
		attribute.Int(AttrMatrixTargets, targets),
		attribute.String(AttrMatrixMode, mode),
	}
}

// MatrixOutcomeAttributes returns the attributes describing how a
// SourceToTarget call terminated (completed, cancelled, threshold reached).
func MatrixOutcomeAttributes(reason string, pairsSettled, edgesExpanded int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrMatrixTerminationReason, reason),
		attribute.Int(AttrMatrixPairsSettled, pairsSettled),
		attribute.Int(AttrMatrixEdgesExpanded, edgesExpanded),
	}
}

// ValidationAttributes returns attributes describing a request validation pass.
func ValidationAttributes(level string, errorsCount int, passed bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrValidationLevel, level),
		attribute.Int(AttrValidationErrors, errorsCount),
		attribute.Bool(AttrValidationPassed, passed),
	}
}
