package gate

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"waveform-streamer/src/grpc_waveform"
	"waveform-streamer/src/helpers"
	"waveform-streamer/src/store"

	"golang.org/x/sync/errgroup"
)

var errNoHeader = errors.New("no header this cycle")

// pump waits for acquisition windows and runs one cycle per window until ctx
// is cancelled or the service refuses a wait.
func (g *Gate) pump(ctx context.Context, client *grpc_waveform.Client, done chan struct{}) {
	defer close(done)
	defer g.running.Store(false)
	defer g.closeOpen()

	for {
		if err := client.WaitForDataAccess(ctx); err != nil {
			if ctx.Err() == nil {
				g.errors.Handle(err, "gate.wait")
				g.setState(Connected)
			}
			return
		}
		g.accessHeld.Store(true)

		if !g.cycle(ctx, client) {
			return
		}
	}
}

// closeOpen waits for the last non-blocking delivery and closes the vectors
// of the latest cycle. Only the pump adds to inflight, so waiting here never
// races a new delivery.
func (g *Gate) closeOpen() {
	g.inflight.Wait()

	g.section.Lock()
	defer g.section.Unlock()
	for name, v := range g.open {
		v.Close()
		delete(g.open, name)
	}
}

// -----------------------------------------------------------------------------

// cycle handles one granted window and reports whether the pump should go on.
// The window is released exactly once whatever happens inside.
func (g *Gate) cycle(ctx context.Context, client *grpc_waveform.Client) (keepGoing bool) {
	keepGoing = true
	defer g.errors.Recover("gate.cycle")

	// The previous callback may still be reading the vectors this cycle
	// replaces.
	g.inflight.Wait()

	g.section.Lock()
	g.setState(Reading)
	defer func() {
		g.release(client)
		g.section.Unlock()
		g.state.CompareAndSwap(int32(Reading), int32(Waiting))
	}()

	if ctx.Err() != nil {
		return false
	}

	started := time.Now()
	symbols := g.Symbols()

	if g.fetchHeaders(ctx, client, symbols) == 0 {
		if ctx.Err() != nil {
			return false
		}
		g.Logger.Warning("No header could be read, skipping cycle")
		return true
	}

	if !g.headers.CriterionMet(g.criterion, symbols) {
		g.headers.Swap()
		g.Logger.Debug("Update criterion %v not met, skipping payload", g.criterion)
		return true
	}

	readStart := time.Now()
	vectors, failed := g.readPayloads(ctx, client, symbols)
	readTime := time.Since(readStart)

	if ctx.Err() != nil {
		for _, v := range vectors {
			v.Close()
		}
		return false
	}

	for _, v := range g.open {
		v.Close()
	}
	g.open = vectors

	g.headers.Swap()
	g.completed++
	g.lastStarted = started

	acq := Acquisition{
		Sequence:     g.completed,
		Started:      started,
		ReadDuration: readTime,
		Vectors:      make(map[string]store.Vector, len(vectors)),
		Failed:       failed,
	}
	for name, v := range vectors {
		acq.Vectors[name] = v
	}

	g.Sink.RecordTimed("gate_cycle_seconds", time.Since(started).Seconds())
	g.Sink.RecordTimed("gate_read_seconds", readTime.Seconds())
	g.Logger.Debug("Cycle %d: %d/%d symbols in %v", acq.Sequence, len(vectors), len(symbols), readTime)

	g.notify(acq)
	return true
}

// -----------------------------------------------------------------------------

// release ends the held acquisition window. Only the first caller after a
// grant talks to the service.
func (g *Gate) release(client *grpc_waveform.Client) {
	if !g.accessHeld.CompareAndSwap(true, false) {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
	defer cancel()
	g.errors.Handle(client.FinishedWithDataAccess(ctx), "gate.finished")
}

func (g *Gate) symbolGroup() *errgroup.Group {
	eg := &errgroup.Group{}
	if !g.cfg.ParallelReads {
		eg.SetLimit(1)
	}
	return eg
}

func (g *Gate) symbolFailed(stage, name string, err error) {
	g.Logger.Warning("%s of %s failed: %v", stage, name, err)
	g.Sink.RecordError("gate."+stage, err)
}

// fetchHeaders fills the current header generation and returns how many
// symbols it could read.
func (g *Gate) fetchHeaders(ctx context.Context, client *grpc_waveform.Client, symbols []string) int {
	var fetched atomic.Int32
	eg := g.symbolGroup()
	for _, name := range symbols {
		eg.Go(func() error {
			hdr, err := client.GetHeader(ctx, name)
			if err != nil {
				if ctx.Err() == nil {
					g.symbolFailed("header", name, err)
				}
				return nil
			}
			g.headers.SetCurrent(name, &hdr)
			fetched.Add(1)
			return nil
		})
	}
	eg.Wait()
	return int(fetched.Load())
}

// readPayloads reads every symbol with a current header into a fresh store.
// Symbols that fail are reported in failed and left out of vectors.
func (g *Gate) readPayloads(
	ctx context.Context,
	client *grpc_waveform.Client,
	symbols []string,
) (vectors map[string]store.Vector, failed map[string]error) {
	vectors = make(map[string]store.Vector, len(symbols))
	failed = make(map[string]error)
	var mu sync.Mutex

	eg := g.symbolGroup()
	for _, name := range symbols {
		eg.Go(func() error {
			vec, err := g.readSymbol(ctx, client, name)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed[name] = err
				if ctx.Err() == nil {
					g.symbolFailed("read", name, err)
				}
				return nil
			}
			vectors[name] = vec
			return nil
		})
	}
	eg.Wait()
	return vectors, failed
}

func (g *Gate) readSymbol(ctx context.Context, client *grpc_waveform.Client, name string) (store.Vector, error) {
	hdr, ok := g.headers.Current(name)
	if !ok {
		return nil, errNoHeader
	}

	vec, err := store.NewVector(*hdr, g.Sink)
	if err != nil {
		return nil, err
	}
	err = client.ReadWaveform(ctx, name, g.cfg.ChunkSize, vec.Append)
	if err == nil && uint64(vec.Len()) != hdr.SampleCount {
		err = helpers.NewProtocolError("%s: received %d of %d samples", name, vec.Len(), hdr.SampleCount)
	}
	if err != nil {
		vec.Close()
		return nil, err
	}
	return vec, nil
}

// -----------------------------------------------------------------------------

// notify runs the callbacks for acq, on the pump or, in non-blocking mode,
// on one background goroutine. The next cycle waits for that goroutine
// before it takes the section, so at most one delivery is in flight.
func (g *Gate) notify(acq Acquisition) {
	g.mu.Lock()
	callbacks := append([]Callback(nil), g.callbacks...)
	g.mu.Unlock()
	if len(callbacks) == 0 {
		return
	}

	if !g.cfg.NonBlocking {
		g.invoke(callbacks, acq)
		return
	}
	g.inflight.Add(1)
	go func() {
		defer g.inflight.Done()
		g.invoke(callbacks, acq)
	}()
}

func (g *Gate) invoke(callbacks []Callback, acq Acquisition) {
	for _, cb := range callbacks {
		func() {
			defer g.errors.Recover("gate.callback")
			cb(acq)
		}()
	}
}
