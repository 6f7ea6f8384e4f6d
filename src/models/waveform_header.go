package models

import "fmt"

// WireType identifies how the sample bytes of a waveform are encoded.
type WireType int32

const (
	WireUnspecified WireType = iota
	WireAnalogFloat
	WireAnalog16
	WireAnalog8
	WireAnalog16IQ
	WireAnalog32IQ
	WireDigital8
	WireDigital16
)

var wireTypeNames = map[WireType]string{
	WireUnspecified: "Unspecified",
	WireAnalogFloat: "AnalogFloat",
	WireAnalog16:    "Analog16",
	WireAnalog8:     "Analog8",
	WireAnalog16IQ:  "Analog16IQ",
	WireAnalog32IQ:  "Analog32IQ",
	WireDigital8:    "Digital8",
	WireDigital16:   "Digital16",
}

func (w WireType) String() string {
	if name, ok := wireTypeNames[w]; ok {
		return name
	}
	return fmt.Sprintf("WireType(%d)", int32(w))
}

// -----------------------------------------------------------------------------

// WaveformHeader describes one symbol's acquisition. A header is never
// mutated once published; a new acquisition produces a new header.
type WaveformHeader struct {
	SourceName                    string   `json:"source_name"`
	SampleCount                   uint64   `json:"sample_count"`
	SourceWidth                   uint32   `json:"source_width"`
	WireType                      WireType `json:"wire_type"`
	HorizontalSpacing             float64  `json:"horizontal_spacing"`
	HorizontalZeroIndex           int64    `json:"horizontal_zero_index"`
	HorizontalFractionalZeroIndex float64  `json:"horizontal_fractional_zero_index"`
	VerticalSpacing               float64  `json:"vertical_spacing"`
	VerticalOffset                float64  `json:"vertical_offset"`
	VerticalUnits                 string   `json:"vertical_units"`
	HorizontalUnits               string   `json:"horizontal_units"`
	DataID                        uint64   `json:"data_id"`
	TransactionID                 uint64   `json:"transaction_id"`
	HasData                       bool     `json:"has_data"`
}

// -----------------------------------------------------------------------------

// Chunk is one bounded byte segment of a symbol's serialized samples.
type Chunk struct {
	Index   int
	Payload []byte
}
