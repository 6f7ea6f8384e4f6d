package codec

import (
	"encoding/binary"
	"math"

	"waveform-streamer/src/models"
)

// Samples is the closed set of sample arrays the instrument can publish.
// Every implementation lives in this file.
type Samples interface {
	WireType() models.WireType
	ItemWidth() int
	Len() int
	// AppendRange appends the little-endian encoding of count samples
	// starting at start.
	AppendRange(dst []byte, start, count int) []byte

	isSamples()
}

// IQ16 is one interleaved in-phase/quadrature pair of 16-bit samples.
type IQ16 struct{ I, Q int16 }

// IQ32 is one interleaved in-phase/quadrature pair of 32-bit samples.
type IQ32 struct{ I, Q int32 }

type (
	Int8Samples       []int8
	Int16Samples      []int16
	Float32Samples    []float32
	NormalizedSamples []float64 // re-quantized to float32 on the wire
	IQ16Samples       []IQ16
	IQ32Samples       []IQ32
	Digital8Samples   []uint8
	Digital16Samples  []uint16
)

// ItemWidth returns the encoded size of one sample of the given wire type,
// or 0 for types that carry no samples.
func ItemWidth(w models.WireType) int {
	switch w {
	case models.WireAnalog8, models.WireDigital8:
		return 1
	case models.WireAnalog16, models.WireDigital16:
		return 2
	case models.WireAnalogFloat, models.WireAnalog16IQ:
		return 4
	case models.WireAnalog32IQ:
		return 8
	default:
		return 0
	}
}

// -----------------------------------------------------------------------------

func (s Int8Samples) WireType() models.WireType { return models.WireAnalog8 }
func (s Int8Samples) ItemWidth() int            { return 1 }
func (s Int8Samples) Len() int                  { return len(s) }
func (s Int8Samples) isSamples()                {}

func (s Int8Samples) AppendRange(dst []byte, start, count int) []byte {
	for _, v := range s[start : start+count] {
		dst = append(dst, byte(v))
	}
	return dst
}

// -----------------------------------------------------------------------------

func (s Int16Samples) WireType() models.WireType { return models.WireAnalog16 }
func (s Int16Samples) ItemWidth() int            { return 2 }
func (s Int16Samples) Len() int                  { return len(s) }
func (s Int16Samples) isSamples()                {}

func (s Int16Samples) AppendRange(dst []byte, start, count int) []byte {
	for _, v := range s[start : start+count] {
		dst = binary.LittleEndian.AppendUint16(dst, uint16(v))
	}
	return dst
}

// -----------------------------------------------------------------------------

func (s Float32Samples) WireType() models.WireType { return models.WireAnalogFloat }
func (s Float32Samples) ItemWidth() int            { return 4 }
func (s Float32Samples) Len() int                  { return len(s) }
func (s Float32Samples) isSamples()                {}

func (s Float32Samples) AppendRange(dst []byte, start, count int) []byte {
	for _, v := range s[start : start+count] {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v))
	}
	return dst
}

// -----------------------------------------------------------------------------

func (s NormalizedSamples) WireType() models.WireType { return models.WireAnalogFloat }
func (s NormalizedSamples) ItemWidth() int            { return 4 }
func (s NormalizedSamples) Len() int                  { return len(s) }
func (s NormalizedSamples) isSamples()                {}

func (s NormalizedSamples) AppendRange(dst []byte, start, count int) []byte {
	for _, v := range s[start : start+count] {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(float32(v)))
	}
	return dst
}

// -----------------------------------------------------------------------------

func (s IQ16Samples) WireType() models.WireType { return models.WireAnalog16IQ }
func (s IQ16Samples) ItemWidth() int            { return 4 }
func (s IQ16Samples) Len() int                  { return len(s) }
func (s IQ16Samples) isSamples()                {}

func (s IQ16Samples) AppendRange(dst []byte, start, count int) []byte {
	for _, v := range s[start : start+count] {
		dst = binary.LittleEndian.AppendUint16(dst, uint16(v.I))
		dst = binary.LittleEndian.AppendUint16(dst, uint16(v.Q))
	}
	return dst
}

// -----------------------------------------------------------------------------

func (s IQ32Samples) WireType() models.WireType { return models.WireAnalog32IQ }
func (s IQ32Samples) ItemWidth() int            { return 8 }
func (s IQ32Samples) Len() int                  { return len(s) }
func (s IQ32Samples) isSamples()                {}

func (s IQ32Samples) AppendRange(dst []byte, start, count int) []byte {
	for _, v := range s[start : start+count] {
		dst = binary.LittleEndian.AppendUint32(dst, uint32(v.I))
		dst = binary.LittleEndian.AppendUint32(dst, uint32(v.Q))
	}
	return dst
}

// -----------------------------------------------------------------------------

func (s Digital8Samples) WireType() models.WireType { return models.WireDigital8 }
func (s Digital8Samples) ItemWidth() int            { return 1 }
func (s Digital8Samples) Len() int                  { return len(s) }
func (s Digital8Samples) isSamples()                {}

func (s Digital8Samples) AppendRange(dst []byte, start, count int) []byte {
	return append(dst, s[start:start+count]...)
}

// -----------------------------------------------------------------------------

func (s Digital16Samples) WireType() models.WireType { return models.WireDigital16 }
func (s Digital16Samples) ItemWidth() int            { return 2 }
func (s Digital16Samples) Len() int                  { return len(s) }
func (s Digital16Samples) isSamples()                {}

func (s Digital16Samples) AppendRange(dst []byte, start, count int) []byte {
	for _, v := range s[start : start+count] {
		dst = binary.LittleEndian.AppendUint16(dst, v)
	}
	return dst
}

// -----------------------------------------------------------------------------

// EncodeSlice encodes slice i of plan from s into a fresh buffer.
func EncodeSlice(s Samples, plan Plan, i int) []byte {
	start, count := plan.SliceSamples(i)
	return s.AppendRange(make([]byte, 0, count*plan.ItemWidth), start, count)
}
