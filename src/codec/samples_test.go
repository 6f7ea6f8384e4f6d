package codec

import (
	"bytes"
	"math"
	"testing"

	"waveform-streamer/src/models"
)

func encodeAll(t *testing.T, s Samples, requested int) []byte {
	t.Helper()
	plan, err := NewPlan(uint64(s.Len()), s.ItemWidth(), requested)
	if err != nil {
		t.Fatal(err)
	}
	var out []byte
	for i := 0; i < plan.Chunks; i++ {
		chunk := EncodeSlice(s, plan, i)
		if len(chunk) != plan.SliceBytes(i) {
			t.Fatalf("slice %d encoded to %d bytes, want %d", i, len(chunk), plan.SliceBytes(i))
		}
		out = append(out, chunk...)
	}
	return out
}

func TestItemWidthMatchesSamples(t *testing.T) {
	all := []Samples{
		Int8Samples{1}, Int16Samples{1}, Float32Samples{1}, NormalizedSamples{1},
		IQ16Samples{{1, 2}}, IQ32Samples{{1, 2}}, Digital8Samples{1}, Digital16Samples{1},
	}
	for _, s := range all {
		if ItemWidth(s.WireType()) != s.ItemWidth() {
			t.Errorf("%T: ItemWidth(%v)=%d, samples say %d", s, s.WireType(), ItemWidth(s.WireType()), s.ItemWidth())
		}
	}
	if ItemWidth(models.WireUnspecified) != 0 {
		t.Error("unspecified wire type must have no width")
	}
}

func TestInt16RoundTrip(t *testing.T) {
	src := make(Int16Samples, 1001)
	for i := range src {
		src[i] = int16(i*37 - 16000)
	}
	raw := encodeAll(t, src, 64)
	for i, want := range src {
		if got := Int16Decoder.Decode(raw[i*2:]); got != want {
			t.Fatalf("sample %d: got %d want %d", i, got, want)
		}
	}
}

func TestNormalizedRequantizes(t *testing.T) {
	src := NormalizedSamples{0.1, -2.5, math.Pi}
	raw := encodeAll(t, src, 1024)
	for i, v := range src {
		if got := Float32Decoder.Decode(raw[i*4:]); got != float32(v) {
			t.Fatalf("sample %d: got %v want %v", i, got, float32(v))
		}
	}
}

func TestIQRoundTrip(t *testing.T) {
	src := IQ16Samples{{3, 4}, {-1, 7}, {32767, -32768}}
	raw := encodeAll(t, src, 18) // 8 bytes per chunk, two pairs
	for i, want := range src {
		got := IQ16Decoder.Decode(raw[i*4:])
		if got != want {
			t.Fatalf("pair %d: got %+v want %+v", i, got, want)
		}
	}
	if m := IQ16Decoder.Scalar(src[0]); m != 5 {
		t.Fatalf("magnitude of 3+4j is %v", m)
	}

	src32 := IQ32Samples{{-100000, 5}, {7, 1 << 30}}
	raw = encodeAll(t, src32, 1024)
	for i, want := range src32 {
		if got := IQ32Decoder.Decode(raw[i*8:]); got != want {
			t.Fatalf("pair %d: got %+v want %+v", i, got, want)
		}
	}
}

func TestDigitalAndInt8Bytes(t *testing.T) {
	if raw := encodeAll(t, Digital8Samples{0x00, 0xff, 0x5a}, 1024); !bytes.Equal(raw, []byte{0x00, 0xff, 0x5a}) {
		t.Fatalf("digital8 encoded to %x", raw)
	}
	if raw := encodeAll(t, Int8Samples{-1, 2}, 1024); !bytes.Equal(raw, []byte{0xff, 0x02}) {
		t.Fatalf("int8 encoded to %x", raw)
	}
	if raw := encodeAll(t, Digital16Samples{0x1234}, 1024); !bytes.Equal(raw, []byte{0x34, 0x12}) {
		t.Fatalf("digital16 encoded to %x", raw)
	}
}
