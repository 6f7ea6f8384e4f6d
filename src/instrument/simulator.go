// Package instrument simulates the acquisition side of a test instrument:
// it publishes acquisitions and grants sessions read windows on them.
package instrument

import (
	"context"
	"sync"
	"time"

	"waveform-streamer/src/logger"
	"waveform-streamer/src/models"
)

// Simulator publishes one acquisition at a time. A published acquisition is
// readable through a window that each session may enter once; the window
// closes when its last reader finishes, and only then does the next
// acquisition start.
type Simulator struct {
	cfg    models.MInstrumentConfig
	Logger *logger.Logger

	mu       sync.Mutex
	sequence uint64
	objects  map[string]interface{}
	open     bool
	readers  map[string]struct{}
	served   map[string]uint64
	changed  chan struct{}

	windowClosed chan struct{}
	force        chan struct{}
}

func NewSimulator(cfg models.MInstrumentConfig, log *logger.Logger) *Simulator {
	return &Simulator{
		cfg:          cfg,
		Logger:       log,
		objects:      make(map[string]interface{}),
		readers:      make(map[string]struct{}),
		served:       make(map[string]uint64),
		changed:      make(chan struct{}),
		windowClosed: make(chan struct{}, 1),
		force:        make(chan struct{}, 1),
	}
}

// -----------------------------------------------------------------------------

// Run produces acquisitions until ctx is done.
func (s *Simulator) Run(ctx context.Context) error {
	interval := time.Duration(s.cfg.AcquisitionIntervalMs) * time.Millisecond
	s.Logger.Info("Acquiring %d channels every %v", len(s.cfg.Channels), interval)

	for {
		s.Acquire()

		select {
		case <-s.windowClosed:
		case <-ctx.Done():
			return ctx.Err()
		}

		timer := time.NewTimer(interval)
		select {
		case <-timer.C:
		case <-s.force:
			timer.Stop()
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
}

// Acquire publishes the next acquisition and opens its read window.
func (s *Simulator) Acquire() uint64 {
	s.mu.Lock()
	seq := s.sequence + 1
	s.mu.Unlock()

	objects := make(map[string]interface{}, len(s.cfg.Channels))
	for i, ch := range s.cfg.Channels {
		if obj := synthesize(ch, uint64(i+1), seq); obj != nil {
			objects[ch.Name] = obj
		}
	}

	s.mu.Lock()
	s.sequence = seq
	s.objects = objects
	s.open = true
	s.readers = make(map[string]struct{})
	s.notifyLocked()
	s.mu.Unlock()

	s.Logger.Debug("Acquisition %d published", seq)
	return seq
}

func (s *Simulator) notifyLocked() {
	close(s.changed)
	s.changed = make(chan struct{})
}

// -----------------------------------------------------------------------------

func (s *Simulator) WaitForAccess(ctx context.Context, session string) error {
	for {
		s.mu.Lock()
		if s.open && s.served[session] < s.sequence {
			s.served[session] = s.sequence
			s.readers[session] = struct{}{}
			s.mu.Unlock()
			return nil
		}
		ch := s.changed
		s.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *Simulator) FinishedWithAccess(session string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.readers[session]; !ok {
		return false
	}
	delete(s.readers, session)
	if len(s.readers) == 0 && s.open {
		s.open = false
		s.notifyLocked()
		select {
		case s.windowClosed <- struct{}{}:
		default:
		}
	}
	return true
}

// Forget drops everything the simulator knows about a session.
func (s *Simulator) Forget(session string) {
	s.FinishedWithAccess(session)
	s.mu.Lock()
	delete(s.served, session)
	s.mu.Unlock()
}

// -----------------------------------------------------------------------------

func (s *Simulator) AvailableNames() []string {
	names := make([]string, 0, len(s.cfg.Channels))
	for _, ch := range s.cfg.Channels {
		names = append(names, ch.Name)
	}
	return names
}

func (s *Simulator) Resolve(name string) (interface{}, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[name]
	return obj, ok
}

func (s *Simulator) RequestNewSequence() {
	select {
	case s.force <- struct{}{}:
	default:
	}
}

// Sequence returns the number of the latest published acquisition.
func (s *Simulator) Sequence() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sequence
}

// WindowOpen reports whether the latest acquisition can still be entered.
func (s *Simulator) WindowOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}
