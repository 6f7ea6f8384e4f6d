package interfaces

// -----------------------------------------------------------------------------
// IMetricsSink is the diagnostics collaborator. Implementations must never
// fail the caller: errors while recording are handled internally.
// -----------------------------------------------------------------------------

type IMetricsSink interface {

	// -----------------------------------------------------------------------------

	// RecordTimed stores a named measurement (seconds, bytes per second, ...).
	RecordTimed(name string, value float64)

	// -----------------------------------------------------------------------------

	// RecordError stores an error raised by the named source.
	RecordError(source string, err error)
}
