package helpers

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestStreamerErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := NewTransportError("Connect", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("expected %v to wrap %v", err, cause)
	}
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected a TransportError, got %T", err)
	}
	if err.Error() != "Connect failed: boom" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestRetryWithBackoffSucceeds(t *testing.T) {
	calls := 0
	res, err := RetryWithBackoff(context.Background(), 3, time.Millisecond, nil, func() (int, error) {
		calls++
		if calls < 3 {
			return 0, fmt.Errorf("attempt %d", calls)
		}
		return 42, nil
	})
	if err != nil || res != 42 {
		t.Fatalf("got %d, %v", res, err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestRetryWithBackoffPermanent(t *testing.T) {
	permanent := errors.New("permanent")
	calls := 0
	_, err := RetryWithBackoff(context.Background(), 5, time.Millisecond,
		func(err error) bool { return !errors.Is(err, permanent) },
		func() (struct{}, error) {
			calls++
			return struct{}{}, permanent
		})
	if !errors.Is(err, permanent) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("permanent errors must not be retried, got %d calls", calls)
	}
}

func TestRetryWithBackoffCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := RetryWithBackoff(ctx, 5, time.Hour, nil, func() (int, error) {
		return 0, errors.New("unavailable")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
