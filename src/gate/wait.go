package gate

import (
	"context"
	"fmt"
	"time"
)

// pollInterval is how long a waiter sleeps between looks at the cycle count.
const pollInterval = 5 * time.Millisecond

// Condition selects what WaitForData waits for.
type Condition int

const (
	// AnyAcquisition waits for a cycle completed since the waiter's
	// previous wait.
	AnyAcquisition Condition = iota
	// Nonblocking returns at once.
	Nonblocking
	// Next waits for a cycle that completes after the call.
	Next
	// AfterTime waits for a completed cycle that started after a given time.
	AfterTime
)

func (c Condition) String() string {
	switch c {
	case AnyAcquisition:
		return "AnyAcquisition"
	case Nonblocking:
		return "Nonblocking"
	case Next:
		return "Next"
	case AfterTime:
		return "AfterTime"
	}
	return fmt.Sprintf("Condition(%d)", int(c))
}

// Waiter remembers which cycles its owner has already seen. A Waiter must
// not be shared between goroutines that expect separate AnyAcquisition
// bookkeeping.
type Waiter struct {
	g    *Gate
	seen uint64
}

// NewWaiter returns a waiter that has seen every cycle completed so far.
func (g *Gate) NewWaiter() *Waiter {
	g.section.Lock()
	defer g.section.Unlock()
	return &Waiter{g: g, seen: g.completed}
}

// WaitForData waits on the gate's shared waiter.
func (g *Gate) WaitForData(ctx context.Context, cond Condition, after time.Time) (uint64, error) {
	return g.waiter.WaitForData(ctx, cond, after)
}

// WaitForData blocks until cond holds and returns the number of completed
// cycles it observed. after is only used by AfterTime. The wait polls the
// cycle section, so it never observes a cycle half done; it ends early only
// when ctx is done.
func (w *Waiter) WaitForData(ctx context.Context, cond Condition, after time.Time) (uint64, error) {
	g := w.g

	g.section.Lock()
	start := g.completed
	g.section.Unlock()

	for {
		g.section.Lock()
		n := g.completed
		var ok bool
		switch cond {
		case Nonblocking:
			ok = true
		case Next:
			ok = n > start
		case AfterTime:
			ok = n > 0 && g.lastStarted.After(after)
		default:
			ok = n > w.seen
		}
		if ok {
			w.seen = n
		}
		g.section.Unlock()

		if ok {
			return n, nil
		}
		select {
		case <-ctx.Done():
			return n, ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}
