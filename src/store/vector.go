package store

import (
	"context"
	"fmt"

	"waveform-streamer/src/analysis/core"
	"waveform-streamer/src/codec"
	"waveform-streamer/src/interfaces"
	"waveform-streamer/src/models"
)

// Vector is the element-type independent view of a Store.
type Vector interface {
	Header() models.WaveformHeader
	Len() int
	Append(c models.Chunk) error
	Float64At(i int) (float64, error)
	ToDoubleArray(ctx context.Context) ([]float64, error)
	Statistics() core.Summary
	Close()
}

var (
	_ Vector = (*Store[float32])(nil)
	_ Vector = (*Store[codec.IQ16])(nil)
)

// NewVector opens an empty store matching the header's wire type.
func NewVector(header models.WaveformHeader, sink interfaces.IMetricsSink) (Vector, error) {
	width := codec.ItemWidth(header.WireType)
	if width == 0 {
		return nil, fmt.Errorf("%s: wire type %v carries no samples", header.SourceName, header.WireType)
	}
	if header.SourceWidth != 0 && int(header.SourceWidth) != width {
		return nil, fmt.Errorf("%s: source width %d does not match %v", header.SourceName, header.SourceWidth, header.WireType)
	}

	switch header.WireType {
	case models.WireAnalogFloat:
		return New(header, codec.Float32Decoder, sink), nil
	case models.WireAnalog16:
		return New(header, codec.Int16Decoder, sink), nil
	case models.WireAnalog8:
		return New(header, codec.Int8Decoder, sink), nil
	case models.WireAnalog16IQ:
		return New(header, codec.IQ16Decoder, sink), nil
	case models.WireAnalog32IQ:
		return New(header, codec.IQ32Decoder, sink), nil
	case models.WireDigital8:
		return New(header, codec.Uint8Decoder, sink), nil
	case models.WireDigital16:
		return New(header, codec.Uint16Decoder, sink), nil
	default:
		return nil, fmt.Errorf("%s: unsupported wire type %v", header.SourceName, header.WireType)
	}
}
