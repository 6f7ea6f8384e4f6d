package interfaces

import "waveform-streamer/src/models"

// -----------------------------------------------------------------------------
// IDataExchanger defines the interface for sharing cycle results with viewers.
// -----------------------------------------------------------------------------

type IDataExchanger interface {
	// -----------------------------------------------------------------------------
	// Broadcast pushes a completed cycle to every connected viewer.
	Broadcast(summary *models.MCycleSummary)

	// -----------------------------------------------------------------------------
	// Start the server
	Start() error

	// -----------------------------------------------------------------------------
	// Stop the server gracefully
	Stop() error
}
