// Package store reassembles the chunks of one symbol read into a randomly
// addressable typed vector.
package store

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync"

	"waveform-streamer/src/analysis/core"
	"waveform-streamer/src/codec"
	"waveform-streamer/src/helpers"
	"waveform-streamer/src/interfaces"
	"waveform-streamer/src/models"

	"golang.org/x/sync/errgroup"
)

// minSpan is the smallest index range handed to one ToDoubleArray worker.
const minSpan = 4096

// Store holds the chunks of one symbol read. Every chunk but the last has the
// length of the first one, so element i lives in chunk i/perChunk.
//
// Store is safe for concurrent readers; Append is expected to complete
// before the store is handed to readers.
type Store[T any] struct {
	header  models.WaveformHeader
	decoder codec.Decoder[T]
	sink    interfaces.IMetricsSink

	mu       sync.RWMutex
	chunks   [][]byte
	nominal  int
	perChunk int
	length   int
	short    bool
	closed   bool

	statsOnce sync.Once
	stats     core.Summary
}

// New creates an empty store for a read described by header. sink may be nil.
func New[T any](header models.WaveformHeader, decoder codec.Decoder[T], sink interfaces.IMetricsSink) *Store[T] {
	return &Store[T]{header: header, decoder: decoder, sink: sink}
}

// Header returns the header the store was opened with.
func (s *Store[T]) Header() models.WaveformHeader {
	return s.header
}

// Len returns the number of elements received so far.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.length
}

// Append takes ownership of the chunk's payload.
func (s *Store[T]) Append(c models.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return helpers.ErrClosed
	}
	if c.Index != len(s.chunks) {
		return helpers.NewProtocolError("%s: chunk %d received, expected %d", s.header.SourceName, c.Index, len(s.chunks))
	}
	n := len(c.Payload)
	if n == 0 || n%s.decoder.Width != 0 {
		return helpers.NewProtocolError("%s: chunk %d has %d bytes, not a multiple of %d", s.header.SourceName, c.Index, n, s.decoder.Width)
	}

	if len(s.chunks) == 0 {
		s.nominal = n
		s.perChunk = n / s.decoder.Width
	} else {
		if s.short {
			return helpers.NewProtocolError("%s: chunk %d follows a short chunk", s.header.SourceName, c.Index)
		}
		if n > s.nominal {
			return helpers.NewProtocolError("%s: chunk %d has %d bytes, nominal is %d", s.header.SourceName, c.Index, n, s.nominal)
		}
	}
	if n < s.nominal {
		s.short = true
	}

	s.chunks = append(s.chunks, c.Payload)
	s.length += n / s.decoder.Width
	return nil
}

// -----------------------------------------------------------------------------

// view is an immutable snapshot of the chunk table; appended payloads are
// never modified, so it can be read without holding the lock.
type view struct {
	chunks   [][]byte
	perChunk int
	length   int
}

func (s *Store[T]) view() (view, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return view{}, helpers.ErrClosed
	}
	return view{chunks: s.chunks, perChunk: s.perChunk, length: s.length}, nil
}

func (s *Store[T]) at(v view, i int) (T, error) {
	var zero T
	if i < 0 || v.perChunk == 0 {
		return zero, fmt.Errorf("%w: %s[%d]", helpers.ErrOutOfRange, s.header.SourceName, i)
	}
	ci, off := i/v.perChunk, i%v.perChunk
	if ci >= len(v.chunks) {
		return zero, fmt.Errorf("%w: %s[%d] is past chunk %d", helpers.ErrOutOfRange, s.header.SourceName, i, len(v.chunks)-1)
	}
	b := v.chunks[ci]
	pos := off * s.decoder.Width
	if pos+s.decoder.Width > len(b) {
		return zero, fmt.Errorf("%w: %s[%d] is past the end of chunk %d", helpers.ErrOutOfRange, s.header.SourceName, i, ci)
	}
	return s.decoder.Decode(b[pos:]), nil
}

func (s *Store[T]) calibrate(v T) float64 {
	return s.decoder.Scalar(v)*s.header.VerticalSpacing + s.header.VerticalOffset
}

// ElementAt returns the raw element at logical index i.
func (s *Store[T]) ElementAt(i int) (T, error) {
	v, err := s.view()
	if err != nil {
		var zero T
		return zero, err
	}
	return s.at(v, i)
}

// Float64At returns the calibrated value at logical index i.
func (s *Store[T]) Float64At(i int) (float64, error) {
	raw, err := s.ElementAt(i)
	if err != nil {
		return math.NaN(), err
	}
	return s.calibrate(raw), nil
}

// -----------------------------------------------------------------------------

// ToDoubleArray materializes every element as a calibrated float64. Index
// ranges are decoded in parallel; an element that fails to decode is
// recorded, left as NaN and skipped.
func (s *Store[T]) ToDoubleArray(ctx context.Context) ([]float64, error) {
	v, err := s.view()
	if err != nil {
		return nil, err
	}

	out := make([]float64, v.length)
	workers := runtime.GOMAXPROCS(0)
	span := (v.length + workers - 1) / workers
	if span < minSpan {
		span = minSpan
	}

	g, gctx := errgroup.WithContext(ctx)
	for lo := 0; lo < v.length; lo += span {
		hi := min(lo+span, v.length)
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				if (i-lo)%minSpan == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				raw, err := s.at(v, i)
				if err != nil {
					s.recordError(err)
					out[i] = math.NaN()
					continue
				}
				out[i] = s.calibrate(raw)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// -----------------------------------------------------------------------------

// Statistics returns the summary of the calibrated samples, computing it on
// first use.
func (s *Store[T]) Statistics() core.Summary {
	s.statsOnce.Do(func() {
		var acc core.Accumulator
		v, err := s.view()
		if err == nil {
			idx := 0
			for _, b := range v.chunks {
				for pos := 0; pos+s.decoder.Width <= len(b); pos += s.decoder.Width {
					acc.Add(idx, s.calibrate(s.decoder.Decode(b[pos:])))
					idx++
				}
			}
		}
		s.stats = acc.Summary()
	})
	return s.stats
}

// -----------------------------------------------------------------------------

// Close drops the chunk buffers, oldest first. It is safe to call more than once.
func (s *Store[T]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	for i := range s.chunks {
		s.chunks[i] = nil
	}
	s.chunks = nil
	s.closed = true
}

func (s *Store[T]) recordError(err error) {
	if s.sink != nil {
		s.sink.RecordError("store."+s.header.SourceName, err)
	}
}
