// Package gate is the client side of a waveform session: it connects to the
// streaming service, waits for acquisition windows, reads the subscribed
// symbols and hands every completed acquisition to registered callbacks.
package gate

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"waveform-streamer/src/grpc_waveform"
	"waveform-streamer/src/headercache"
	"waveform-streamer/src/helpers"
	"waveform-streamer/src/interfaces"
	"waveform-streamer/src/logger"
	"waveform-streamer/src/models"
	"waveform-streamer/src/store"

	"github.com/google/uuid"
	"google.golang.org/grpc"
)

const (
	connectBackoff = 200 * time.Millisecond
	releaseTimeout = 5 * time.Second
)

// Acquisition is one completed cycle. Vectors stay readable until the next
// completed cycle replaces them.
type Acquisition struct {
	Sequence     uint64
	Started      time.Time
	ReadDuration time.Duration
	Vectors      map[string]store.Vector
	Failed       map[string]error
}

// Callback receives every completed acquisition. In blocking mode it runs on
// the pump inside the cycle section, so it must not call WaitForData.
type Callback func(Acquisition)

// Gate drives one client session through
// Disconnected -> Connected -> Waiting <-> Reading -> Disconnected.
type Gate struct {
	cfg       models.MClientConfig
	name      string
	criterion headercache.Criterion
	Logger    *logger.Logger
	Sink      interfaces.IMetricsSink
	errors    *helpers.ErrorHandler

	// DialOptions are appended to the defaults when Connect dials.
	DialOptions []grpc.DialOption

	state      atomic.Int32
	running    atomic.Bool
	accessHeld atomic.Bool

	mu        sync.Mutex
	client    *grpc_waveform.Client
	symbols   []string
	cancel    context.CancelFunc
	done      chan struct{}
	callbacks []Callback

	// section is held by the pump for a whole cycle and briefly by waiters.
	section     sync.Mutex
	headers     *headercache.Cache
	open        map[string]store.Vector
	completed   uint64
	lastStarted time.Time
	waiter      Waiter

	inflight sync.WaitGroup
}

// NewGate creates a disconnected gate for the client section of cfg.
func NewGate(cfg *models.MConfig, sink interfaces.IMetricsSink, log *logger.Logger) (*Gate, error) {
	criterion, err := headercache.ParseCriterion(cfg.Client.UpdateCriterion)
	if err != nil {
		return nil, err
	}
	if criterion == 0 {
		criterion = headercache.AnyAcquisition
	}
	g := &Gate{
		cfg:       cfg.Client,
		name:      cfg.Name,
		criterion: criterion,
		Logger:    log,
		Sink:      sink,
		errors:    helpers.NewErrorHandler(log, sink),
		headers:   headercache.New(),
		open:      make(map[string]store.Vector),
	}
	g.waiter.g = g
	return g, nil
}

// -----------------------------------------------------------------------------

func (g *Gate) State() State {
	return State(g.state.Load())
}

func (g *Gate) setState(s State) {
	old := State(g.state.Swap(int32(s)))
	if old != s {
		g.Logger.Debug("state %v -> %v", old, s)
	}
}

// Symbols returns the subscribed symbol names.
func (g *Gate) Symbols() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.symbols...)
}

// Criterion returns the update criterion cycles are filtered with.
func (g *Gate) Criterion() headercache.Criterion {
	return g.criterion
}

// ClientName returns the identity sent to the service, empty before Connect.
func (g *Gate) ClientName() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.client == nil {
		return ""
	}
	return g.client.Name()
}

// OnAcquisition registers cb. Every callback runs once per completed cycle.
func (g *Gate) OnAcquisition(cb Callback) {
	g.mu.Lock()
	g.callbacks = append(g.callbacks, cb)
	g.mu.Unlock()
}

// -----------------------------------------------------------------------------

// Connect opens a session on address under a generated identity and
// subscribes to symbols, or to every available name when symbols is empty.
func (g *Gate) Connect(ctx context.Context, address string, symbols []string) error {
	if st := g.State(); st != Disconnected {
		return fmt.Errorf("connect: gate is %v", st)
	}

	client, err := grpc_waveform.Dial(address, g.DialOptions...)
	if err != nil {
		return err
	}

	identity := fmt.Sprintf("%s-%s", g.name, uuid.NewString())
	_, err = helpers.RetryWithBackoff(ctx, g.cfg.ConnectRetries, connectBackoff, grpc_waveform.Retryable,
		func() (struct{}, error) {
			return struct{}{}, client.Connect(ctx, identity)
		})
	if err != nil {
		client.Close()
		return err
	}

	if len(symbols) == 0 {
		symbols, err = client.AvailableNames(ctx)
		if err != nil {
			g.errors.Handle(client.Disconnect(ctx), "gate.connect")
			client.Close()
			return err
		}
	}

	g.mu.Lock()
	g.client = client
	g.symbols = append([]string(nil), symbols...)
	g.mu.Unlock()

	g.section.Lock()
	g.headers = headercache.New()
	g.section.Unlock()

	g.setState(Connected)
	g.Logger.Info("Connected to %s as %s, %d symbols: %v", address, identity, len(symbols), symbols)
	return nil
}

// -----------------------------------------------------------------------------

// Start launches the acquisition pump and returns immediately.
func (g *Gate) Start() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.client == nil {
		return helpers.ErrNotConnected
	}
	if !g.running.CompareAndSwap(false, true) {
		return helpers.ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(context.Background())
	g.cancel = cancel
	g.done = make(chan struct{})
	g.setState(Waiting)

	go g.pump(ctx, g.client, g.done)
	g.Logger.Info("Acquisition pump started (criterion %v, non-blocking %v)", g.criterion, g.cfg.NonBlocking)
	return nil
}

// -----------------------------------------------------------------------------

// Stop cancels the pump, waits up to the grace period for it, ends the
// session and leaves the gate Disconnected. Teardown errors are logged.
func (g *Gate) Stop() {
	grace := time.Duration(g.cfg.StopGraceMs) * time.Millisecond

	g.mu.Lock()
	cancel, done, client := g.cancel, g.done, g.client
	g.cancel, g.done = nil, nil
	g.mu.Unlock()

	// The pump closes the open vectors on its way out, after the last
	// callback returned. A pump stuck in a callback is left behind.
	if cancel != nil {
		cancel()
		select {
		case <-done:
		case <-time.After(grace):
			g.Logger.Warning("pump did not stop within %v, leaving it to finish its callback", grace)
		}
	}

	if client != nil {
		ctx, cancelTeardown := context.WithTimeout(context.Background(), grace)
		defer cancelTeardown()

		switch g.State() {
		case Connected, Waiting, Reading:
			// A window can be held outside Reading when the pump waits on a
			// non-blocking callback before its next cycle.
			g.release(client)
			g.errors.Handle(client.Disconnect(ctx), "gate.disconnect")
		}
		g.errors.Handle(client.Close(), "gate.close")
	}

	g.mu.Lock()
	g.client = nil
	g.mu.Unlock()
	g.setState(Disconnected)
	g.Logger.Info("Gate stopped")
}

// -----------------------------------------------------------------------------

// Completed returns the number of cycles delivered so far.
func (g *Gate) Completed() uint64 {
	g.section.Lock()
	defer g.section.Unlock()
	return g.completed
}

// Vector returns the vector read for name by the latest completed cycle.
func (g *Gate) Vector(name string) (store.Vector, bool) {
	g.section.Lock()
	defer g.section.Unlock()
	v, ok := g.open[name]
	return v, ok
}

// HeaderSnapshot copies both header generations between cycles.
func (g *Gate) HeaderSnapshot() (current, previous map[string]models.WaveformHeader) {
	g.section.Lock()
	defer g.section.Unlock()
	return g.headers.Snapshot()
}
