package store

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"waveform-streamer/src/codec"
	"waveform-streamer/src/helpers"
	"waveform-streamer/src/models"
)

type recordingSink struct {
	mu     sync.Mutex
	errors []error
}

func (r *recordingSink) RecordTimed(string, float64) {}

func (r *recordingSink) RecordError(_ string, err error) {
	r.mu.Lock()
	r.errors = append(r.errors, err)
	r.mu.Unlock()
}

func headerFor(name string, s codec.Samples) models.WaveformHeader {
	return models.WaveformHeader{
		SourceName:      name,
		SampleCount:     uint64(s.Len()),
		SourceWidth:     uint32(s.ItemWidth()),
		WireType:        s.WireType(),
		VerticalSpacing: 1,
		HasData:         true,
	}
}

// fill streams s into v the way the waveform service slices it.
func fill(t *testing.T, v Vector, s codec.Samples, requested int) {
	t.Helper()
	plan, err := codec.NewPlan(uint64(s.Len()), s.ItemWidth(), requested)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < plan.Chunks; i++ {
		if err := v.Append(models.Chunk{Index: i, Payload: codec.EncodeSlice(s, plan, i)}); err != nil {
			t.Fatalf("append chunk %d: %v", i, err)
		}
	}
}

func TestFloat32RoundTrip(t *testing.T) {
	src := make(codec.Float32Samples, 1000)
	for i := range src {
		src[i] = float32(math.Sin(float64(i) / 10))
	}
	v, err := NewVector(headerFor("ch1", src), nil)
	if err != nil {
		t.Fatal(err)
	}
	fill(t, v, src, 256)

	st := v.(*Store[float32])
	if st.Len() != 1000 {
		t.Fatalf("len %d", st.Len())
	}
	for i, want := range src {
		got, err := st.ElementAt(i)
		if err != nil {
			t.Fatalf("ElementAt(%d): %v", i, err)
		}
		if got != want {
			t.Fatalf("ElementAt(%d) = %v, want %v", i, got, want)
		}
	}
	if _, err := st.ElementAt(999); err != nil {
		t.Fatalf("ElementAt(999): %v", err)
	}
	if _, err := st.ElementAt(1000); !errors.Is(err, helpers.ErrOutOfRange) {
		t.Fatalf("ElementAt(1000) returned %v, want out of range", err)
	}
	if _, err := st.ElementAt(-1); !errors.Is(err, helpers.ErrOutOfRange) {
		t.Fatalf("ElementAt(-1) returned %v, want out of range", err)
	}
}

func TestIntegerRoundTrips(t *testing.T) {
	i8 := codec.Int8Samples{-128, -1, 0, 1, 127, 5, 6}
	i16 := codec.Int16Samples{-32768, -2, 0, 3, 32767}
	d16 := codec.Digital16Samples{0, 1, 0xfffe, 0xffff}
	iq := codec.IQ32Samples{{1, 2}, {-3, 4}, {5, -6}}

	v8, _ := NewVector(headerFor("a", i8), nil)
	fill(t, v8, i8, 13) // 3 bytes per chunk
	for i, want := range i8 {
		if got, err := v8.(*Store[int8]).ElementAt(i); err != nil || got != want {
			t.Fatalf("int8[%d] = %v, %v", i, got, err)
		}
	}

	v16, _ := NewVector(headerFor("b", i16), nil)
	fill(t, v16, i16, 14)
	for i, want := range i16 {
		if got, err := v16.(*Store[int16]).ElementAt(i); err != nil || got != want {
			t.Fatalf("int16[%d] = %v, %v", i, got, err)
		}
	}

	vd, _ := NewVector(headerFor("c", d16), nil)
	fill(t, vd, d16, 1024)
	for i, want := range d16 {
		if got, err := vd.(*Store[uint16]).ElementAt(i); err != nil || got != want {
			t.Fatalf("digital16[%d] = %v, %v", i, got, err)
		}
	}

	viq, _ := NewVector(headerFor("d", iq), nil)
	fill(t, viq, iq, 26) // two pairs per chunk
	for i, want := range iq {
		if got, err := viq.(*Store[codec.IQ32]).ElementAt(i); err != nil || got != want {
			t.Fatalf("iq32[%d] = %v, %v", i, got, err)
		}
	}
}

func TestShortLastChunkBounds(t *testing.T) {
	src := make(codec.Int16Samples, 10)
	v, _ := NewVector(headerFor("ch", src), nil)
	fill(t, v, src, 18) // 8 bytes per chunk: 4 + 4 + 2 elements
	st := v.(*Store[int16])
	if _, err := st.ElementAt(9); err != nil {
		t.Fatalf("ElementAt(9): %v", err)
	}
	if _, err := st.ElementAt(10); !errors.Is(err, helpers.ErrOutOfRange) {
		t.Fatalf("ElementAt(10) past the short chunk returned %v", err)
	}
}

func TestAppendRejectsBrokenSequences(t *testing.T) {
	h := models.WaveformHeader{SourceName: "x", WireType: models.WireAnalog16, VerticalSpacing: 1}
	tests := []struct {
		name   string
		chunks []models.Chunk
	}{
		{"out of order", []models.Chunk{{Index: 1, Payload: make([]byte, 4)}}},
		{"misaligned", []models.Chunk{{Index: 0, Payload: make([]byte, 3)}}},
		{"empty", []models.Chunk{{Index: 0}}},
		{"oversized", []models.Chunk{{Index: 0, Payload: make([]byte, 4)}, {Index: 1, Payload: make([]byte, 6)}}},
		{"after short", []models.Chunk{
			{Index: 0, Payload: make([]byte, 4)},
			{Index: 1, Payload: make([]byte, 2)},
			{Index: 2, Payload: make([]byte, 2)},
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			st := New(h, codec.Int16Decoder, nil)
			var err error
			for _, c := range tc.chunks {
				if err = st.Append(c); err != nil {
					break
				}
			}
			var pe *helpers.ProtocolError
			if !errors.As(err, &pe) {
				t.Fatalf("expected a protocol error, got %v", err)
			}
		})
	}
}

func TestStatisticsExample(t *testing.T) {
	src := codec.Int16Samples{1, 2, 3, 4}
	v, _ := NewVector(headerFor("ch", src), nil)
	fill(t, v, src, 1024)

	s := v.Statistics()
	if s.Mean != 2.5 || s.Minimum != 1 || s.Maximum != 4 || s.PeakToPeak != 3 {
		t.Fatalf("unexpected statistics %+v", s)
	}
	if math.Abs(s.StdDev-1.2910) > 1e-4 {
		t.Fatalf("std dev %v", s.StdDev)
	}
	// Cached: the same value comes back after Close.
	v.Close()
	if again := v.Statistics(); again != s {
		t.Fatalf("statistics changed after first computation: %+v", again)
	}
}

func TestCalibrationAndNaN(t *testing.T) {
	src := codec.Float32Samples{2, float32(math.NaN()), 4}
	h := headerFor("ch", src)
	h.VerticalSpacing = 0.5
	h.VerticalOffset = 1
	v, _ := NewVector(h, nil)
	fill(t, v, src, 1024)

	got, err := v.Float64At(2)
	if err != nil || got != 3 {
		t.Fatalf("Float64At(2) = %v, %v", got, err)
	}
	s := v.Statistics()
	if s.Count != 2 || s.Mean != 2.5 || s.Sum != 5 {
		t.Fatalf("NaN must be skipped: %+v", s)
	}
}

func TestToDoubleArrayParallel(t *testing.T) {
	src := make(codec.Int16Samples, 50000)
	for i := range src {
		src[i] = int16(i % 1000)
	}
	h := headerFor("ch", src)
	h.VerticalSpacing = 2
	h.VerticalOffset = -1
	v, _ := NewVector(h, nil)
	fill(t, v, src, 1000)

	out, err := v.ToDoubleArray(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != len(src) {
		t.Fatalf("got %d values", len(out))
	}
	for i, raw := range src {
		if want := float64(raw)*2 - 1; out[i] != want {
			t.Fatalf("out[%d] = %v, want %v", i, out[i], want)
		}
	}
}

func TestToDoubleArrayCancelled(t *testing.T) {
	src := make(codec.Int8Samples, 10000)
	v, _ := NewVector(headerFor("ch", src), nil)
	fill(t, v, src, 1024)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := v.ToDoubleArray(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestEmptyStore(t *testing.T) {
	h := models.WaveformHeader{SourceName: "empty", WireType: models.WireAnalogFloat, VerticalSpacing: 1}
	v, err := NewVector(h, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := v.Float64At(0); !errors.Is(err, helpers.ErrOutOfRange) {
		t.Fatalf("expected out of range, got %v", err)
	}
	out, err := v.ToDoubleArray(context.Background())
	if err != nil || len(out) != 0 {
		t.Fatalf("got %v, %v", out, err)
	}
	if s := v.Statistics(); s.Count != 0 || !math.IsNaN(s.Mean) {
		t.Fatalf("unexpected statistics %+v", s)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	src := codec.Int16Samples{1, 2, 3}
	v, _ := NewVector(headerFor("ch", src), nil)
	fill(t, v, src, 1024)
	v.Close()
	v.Close()
	if _, err := v.Float64At(0); !errors.Is(err, helpers.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if err := v.Append(models.Chunk{Index: 1, Payload: []byte{0, 0}}); !errors.Is(err, helpers.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestNewVectorRejectsUnknownTypes(t *testing.T) {
	if _, err := NewVector(models.WaveformHeader{WireType: models.WireUnspecified}, nil); err == nil {
		t.Fatal("expected an error for an unspecified wire type")
	}
	if _, err := NewVector(models.WaveformHeader{WireType: models.WireAnalog16, SourceWidth: 4}, nil); err == nil {
		t.Fatal("expected an error for a mismatched source width")
	}
}

func TestRecordsElementFailures(t *testing.T) {
	sink := &recordingSink{}
	st := New(models.WaveformHeader{SourceName: "x", VerticalSpacing: 1}, codec.Int16Decoder, sink)
	st.recordError(errors.New("bad element"))
	if len(sink.errors) != 1 {
		t.Fatalf("sink saw %d errors", len(sink.errors))
	}
}
