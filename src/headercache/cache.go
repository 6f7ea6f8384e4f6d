// Package headercache keeps the current and previous header generation of
// every subscribed symbol and decides whether a new acquisition is worth
// reading.
package headercache

import (
	"sync"

	"waveform-streamer/src/models"
)

// Cache holds two header generations. The lock only guards map access and
// is never held across network calls.
type Cache struct {
	mu       sync.RWMutex
	current  map[string]*models.WaveformHeader
	previous map[string]*models.WaveformHeader
}

func New() *Cache {
	return &Cache{
		current:  make(map[string]*models.WaveformHeader),
		previous: make(map[string]*models.WaveformHeader),
	}
}

// SetCurrent stores the header fetched for name during this cycle.
func (c *Cache) SetCurrent(name string, h *models.WaveformHeader) {
	c.mu.Lock()
	c.current[name] = h
	c.mu.Unlock()
}

func (c *Cache) Current(name string) (*models.WaveformHeader, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	h, ok := c.current[name]
	return h, ok
}

func (c *Cache) Previous(name string) (*models.WaveformHeader, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	h, ok := c.previous[name]
	return h, ok
}

// Swap makes the current generation the previous one and starts an empty
// current generation.
func (c *Cache) Swap() {
	c.mu.Lock()
	c.previous = c.current
	c.current = make(map[string]*models.WaveformHeader, len(c.previous))
	c.mu.Unlock()
}

// Snapshot copies both generations.
func (c *Cache) Snapshot() (current, previous map[string]models.WaveformHeader) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	current = make(map[string]models.WaveformHeader, len(c.current))
	for k, h := range c.current {
		current[k] = *h
	}
	previous = make(map[string]models.WaveformHeader, len(c.previous))
	for k, h := range c.previous {
		previous[k] = *h
	}
	return current, previous
}

// -----------------------------------------------------------------------------

// Diff lists which fields changed between the two generations of a symbol.
// Present is false unless both generations hold a header.
type Diff struct {
	Present           bool
	RecordLength      bool
	VerticalSpacing   bool
	HorizontalSpacing bool
	Transaction       bool
}

func (c *Cache) Diff(name string) Diff {
	c.mu.RLock()
	prev, okPrev := c.previous[name]
	cur, okCur := c.current[name]
	c.mu.RUnlock()

	if !okPrev || !okCur {
		return Diff{}
	}
	return Diff{
		Present:           true,
		RecordLength:      prev.SampleCount != cur.SampleCount,
		VerticalSpacing:   prev.VerticalSpacing != cur.VerticalSpacing,
		HorizontalSpacing: prev.HorizontalSpacing != cur.HorizontalSpacing,
		Transaction:       prev.TransactionID != cur.TransactionID,
	}
}
