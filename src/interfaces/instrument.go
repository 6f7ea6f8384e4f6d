package interfaces

import "context"

// -----------------------------------------------------------------------------
// IInstrument is the data producer behind the waveform service.
// -----------------------------------------------------------------------------

type IInstrument interface {

	// WaitForAccess blocks until the instrument grants the session a read
	// window on an acquisition the session has not read yet.
	WaitForAccess(ctx context.Context, session string) error

	// -----------------------------------------------------------------------------

	// FinishedWithAccess releases the session's read window. It reports
	// whether the session was holding one.
	FinishedWithAccess(session string) bool

	// -----------------------------------------------------------------------------

	// AvailableNames lists the symbols the instrument has a slot for.
	AvailableNames() []string

	// -----------------------------------------------------------------------------

	// Resolve returns the object currently published under name.
	Resolve(name string) (interface{}, bool)

	// -----------------------------------------------------------------------------

	// RequestNewSequence asks the instrument to start a fresh acquisition
	// as soon as the current window closes.
	RequestNewSequence()
}
