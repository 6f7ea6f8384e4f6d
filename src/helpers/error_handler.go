package helpers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"waveform-streamer/src/interfaces"
	"waveform-streamer/src/logger"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type StreamerError struct {
	Message string
	Cause   error
}

func (e *StreamerError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *StreamerError) Unwrap() error {
	return e.Cause
}

// Helper to define distinct error types for type assertions if needed
type ConfigurationError struct{ StreamerError }
type TransportError struct{ StreamerError }
type ProtocolError struct{ StreamerError }

// NewConfigurationError wraps a rejected configuration.
func NewConfigurationError(cause error) error {
	return &ConfigurationError{StreamerError{Message: "config validation failed", Cause: cause}}
}

// NewTransportError wraps a failed RPC.
func NewTransportError(operation string, cause error) error {
	return &TransportError{StreamerError{Message: fmt.Sprintf("%s failed", operation), Cause: cause}}
}

// NewProtocolError reports a peer that broke the chunk or session protocol.
func NewProtocolError(format string, args ...interface{}) error {
	return &ProtocolError{StreamerError{Message: fmt.Sprintf(format, args...)}}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

var (
	ErrOutOfRange     = errors.New("index out of range")
	ErrClosed         = errors.New("store is closed")
	ErrAlreadyRunning = errors.New("acquisition pump already running")
	ErrNotConnected   = errors.New("session is not connected")
)

// -----------------------------------------------------------------------------
// Retry Logic
// -----------------------------------------------------------------------------

// RetryWithBackoff attempts to execute the operation up to maxRetries times with
// exponential backoff. It gives up early when ctx is done or when retryable
// reports the error as permanent.
func RetryWithBackoff[T any](
	ctx context.Context,
	maxRetries int,
	baseDelay time.Duration,
	retryable func(error) bool,
	fn func() (T, error),
) (T, error) {
	var zero T
	var lastErr error

	if maxRetries < 1 {
		maxRetries = 1
	}

	for attempt := 0; attempt < maxRetries; attempt++ {
		res, err := fn()
		if err == nil {
			return res, nil
		}

		lastErr = err
		if attempt == maxRetries-1 || (retryable != nil && !retryable(err)) {
			break
		}

		delay := baseDelay * (1 << attempt)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}

	return zero, lastErr
}

// -----------------------------------------------------------------------------
// Error Handler
// -----------------------------------------------------------------------------

// ErrorHandler logs errors and forwards them to the diagnostics sink.
type ErrorHandler struct {
	Logger *logger.Logger
	Sink   interfaces.IMetricsSink
}

func NewErrorHandler(log *logger.Logger, sink interfaces.IMetricsSink) *ErrorHandler {
	return &ErrorHandler{
		Logger: log,
		Sink:   sink,
	}
}

// -----------------------------------------------------------------------------

// Handle logs err (if any) in the given context and records it.
func (e *ErrorHandler) Handle(err error, context string) {
	if err == nil {
		return
	}
	e.Logger.Error("Error in %s: %v", context, err)
	if e.Sink != nil {
		e.Sink.RecordError(context, err)
	}
}

// -----------------------------------------------------------------------------

// Recover is deferred by goroutines that must never take the process down.
func (e *ErrorHandler) Recover(context string) {
	if r := recover(); r != nil {
		e.Handle(fmt.Errorf("panic: %v", r), context)
	}
}
