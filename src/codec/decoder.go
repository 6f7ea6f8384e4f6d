package codec

import (
	"encoding/binary"
	"math"
)

// Decoder reads one element of type T from its wire encoding and projects
// it onto a scalar for calibration and statistics.
type Decoder[T any] struct {
	Width  int
	Decode func(b []byte) T
	Scalar func(v T) float64
}

var (
	Int8Decoder = Decoder[int8]{
		Width:  1,
		Decode: func(b []byte) int8 { return int8(b[0]) },
		Scalar: func(v int8) float64 { return float64(v) },
	}
	Int16Decoder = Decoder[int16]{
		Width:  2,
		Decode: func(b []byte) int16 { return int16(binary.LittleEndian.Uint16(b)) },
		Scalar: func(v int16) float64 { return float64(v) },
	}
	Float32Decoder = Decoder[float32]{
		Width:  4,
		Decode: func(b []byte) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(b)) },
		Scalar: func(v float32) float64 { return float64(v) },
	}
	Uint8Decoder = Decoder[uint8]{
		Width:  1,
		Decode: func(b []byte) uint8 { return b[0] },
		Scalar: func(v uint8) float64 { return float64(v) },
	}
	Uint16Decoder = Decoder[uint16]{
		Width:  2,
		Decode: func(b []byte) uint16 { return binary.LittleEndian.Uint16(b) },
		Scalar: func(v uint16) float64 { return float64(v) },
	}
	// IQ pairs project onto their magnitude.
	IQ16Decoder = Decoder[IQ16]{
		Width: 4,
		Decode: func(b []byte) IQ16 {
			return IQ16{
				I: int16(binary.LittleEndian.Uint16(b)),
				Q: int16(binary.LittleEndian.Uint16(b[2:])),
			}
		},
		Scalar: func(v IQ16) float64 { return math.Hypot(float64(v.I), float64(v.Q)) },
	}
	IQ32Decoder = Decoder[IQ32]{
		Width: 8,
		Decode: func(b []byte) IQ32 {
			return IQ32{
				I: int32(binary.LittleEndian.Uint32(b)),
				Q: int32(binary.LittleEndian.Uint32(b[4:])),
			}
		},
		Scalar: func(v IQ32) float64 { return math.Hypot(float64(v.I), float64(v.Q)) },
	}
)
