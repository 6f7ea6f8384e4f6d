package grpc_waveform

import (
	"bytes"
	"math"

	"waveform-streamer/src/models"

	"google.golang.org/protobuf/encoding/protowire"
)

// Messages of waveform.proto. Zero values are omitted on the wire, as proto3
// does for scalar fields.

type Empty struct{}

type ConnectRequest struct {
	ClientName string
}

type StatusReply struct {
	Status models.Status
}

type NamesReply struct {
	Status models.Status
	Names  []string
}

type HeaderRequest struct {
	SourceName string
	ChunkSize  uint32
}

type HeaderReply struct {
	Status models.Status
	Header *models.WaveformHeader
}

type WaveformChunk struct {
	Status models.Status
	Header *models.WaveformHeader
	Index  uint32
	Data   []byte
}

// -----------------------------------------------------------------------------
// Field encoders
// -----------------------------------------------------------------------------

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendDouble(b []byte, num protowire.Number, v float64) []byte {
	bits := math.Float64bits(v)
	if bits == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.Fixed64Type)
	return protowire.AppendFixed64(b, bits)
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendBytes(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendHeader(b []byte, num protowire.Number, h *models.WaveformHeader) []byte {
	if h == nil {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, marshalHeader(nil, h))
}

func marshalHeader(b []byte, h *models.WaveformHeader) []byte {
	b = appendString(b, 1, h.SourceName)
	b = appendVarint(b, 2, h.SampleCount)
	b = appendVarint(b, 3, uint64(h.SourceWidth))
	b = appendVarint(b, 4, uint64(h.WireType))
	b = appendDouble(b, 5, h.HorizontalSpacing)
	b = appendVarint(b, 6, uint64(h.HorizontalZeroIndex))
	b = appendDouble(b, 7, h.HorizontalFractionalZeroIndex)
	b = appendDouble(b, 8, h.VerticalSpacing)
	b = appendDouble(b, 9, h.VerticalOffset)
	b = appendString(b, 10, h.VerticalUnits)
	b = appendString(b, 11, h.HorizontalUnits)
	b = appendVarint(b, 12, h.DataID)
	b = appendVarint(b, 13, h.TransactionID)
	b = appendVarint(b, 14, protowire.EncodeBool(h.HasData))
	return b
}

// -----------------------------------------------------------------------------
// Field decoders
// -----------------------------------------------------------------------------

// walk calls field for every field of b. field returns the number of bytes
// it consumed (negative on a parse error); unknown fields are skipped.
func walk(b []byte, field func(num protowire.Number, typ protowire.Type, b []byte) int) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		m := field(num, typ, b)
		if m < 0 {
			return protowire.ParseError(m)
		}
		b = b[m:]
	}
	return nil
}

func skip(num protowire.Number, typ protowire.Type, b []byte) int {
	return protowire.ConsumeFieldValue(num, typ, b)
}

func consumeDouble(b []byte, dst *float64) int {
	v, n := protowire.ConsumeFixed64(b)
	*dst = math.Float64frombits(v)
	return n
}

func unmarshalHeader(b []byte) (*models.WaveformHeader, error) {
	h := &models.WaveformHeader{}
	err := walk(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		var v uint64
		var n int
		switch typ {
		case protowire.VarintType:
			v, n = protowire.ConsumeVarint(b)
			switch num {
			case 2:
				h.SampleCount = v
			case 3:
				h.SourceWidth = uint32(v)
			case 4:
				h.WireType = models.WireType(v)
			case 6:
				h.HorizontalZeroIndex = int64(v)
			case 12:
				h.DataID = v
			case 13:
				h.TransactionID = v
			case 14:
				h.HasData = protowire.DecodeBool(v)
			}
			return n
		case protowire.Fixed64Type:
			switch num {
			case 5:
				return consumeDouble(b, &h.HorizontalSpacing)
			case 7:
				return consumeDouble(b, &h.HorizontalFractionalZeroIndex)
			case 8:
				return consumeDouble(b, &h.VerticalSpacing)
			case 9:
				return consumeDouble(b, &h.VerticalOffset)
			}
		case protowire.BytesType:
			switch num {
			case 1:
				s, n := protowire.ConsumeString(b)
				h.SourceName = s
				return n
			case 10:
				s, n := protowire.ConsumeString(b)
				h.VerticalUnits = s
				return n
			case 11:
				s, n := protowire.ConsumeString(b)
				h.HorizontalUnits = s
				return n
			}
		}
		return skip(num, typ, b)
	})
	if err != nil {
		return nil, err
	}
	return h, nil
}

// consumeHeader decodes an embedded header field.
func consumeHeader(b []byte, dst **models.WaveformHeader) int {
	raw, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return n
	}
	h, err := unmarshalHeader(raw)
	if err != nil {
		return -1
	}
	*dst = h
	return n
}

func consumeStatus(typ protowire.Type, b []byte, dst *models.Status) (int, bool) {
	if typ != protowire.VarintType {
		return 0, false
	}
	v, n := protowire.ConsumeVarint(b)
	*dst = models.Status(v)
	return n, true
}

// -----------------------------------------------------------------------------
// Messages
// -----------------------------------------------------------------------------

func (m *Empty) MarshalWire() ([]byte, error) { return nil, nil }

func (m *Empty) UnmarshalWire(b []byte) error {
	return walk(b, skip)
}

// -----------------------------------------------------------------------------

func (m *ConnectRequest) MarshalWire() ([]byte, error) {
	return appendString(nil, 1, m.ClientName), nil
}

func (m *ConnectRequest) UnmarshalWire(b []byte) error {
	*m = ConnectRequest{}
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		if num == 1 && typ == protowire.BytesType {
			s, n := protowire.ConsumeString(b)
			m.ClientName = s
			return n
		}
		return skip(num, typ, b)
	})
}

// -----------------------------------------------------------------------------

func (m *StatusReply) MarshalWire() ([]byte, error) {
	return appendVarint(nil, 1, uint64(m.Status)), nil
}

func (m *StatusReply) UnmarshalWire(b []byte) error {
	*m = StatusReply{}
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		if num == 1 {
			if n, ok := consumeStatus(typ, b, &m.Status); ok {
				return n
			}
		}
		return skip(num, typ, b)
	})
}

// -----------------------------------------------------------------------------

func (m *NamesReply) MarshalWire() ([]byte, error) {
	b := appendVarint(nil, 1, uint64(m.Status))
	for _, name := range m.Names {
		// Repeated fields keep empty elements.
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendString(b, name)
	}
	return b, nil
}

func (m *NamesReply) UnmarshalWire(b []byte) error {
	*m = NamesReply{}
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch {
		case num == 1:
			if n, ok := consumeStatus(typ, b, &m.Status); ok {
				return n
			}
		case num == 2 && typ == protowire.BytesType:
			s, n := protowire.ConsumeString(b)
			m.Names = append(m.Names, s)
			return n
		}
		return skip(num, typ, b)
	})
}

// -----------------------------------------------------------------------------

func (m *HeaderRequest) MarshalWire() ([]byte, error) {
	b := appendString(nil, 1, m.SourceName)
	return appendVarint(b, 2, uint64(m.ChunkSize)), nil
}

func (m *HeaderRequest) UnmarshalWire(b []byte) error {
	*m = HeaderRequest{}
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch {
		case num == 1 && typ == protowire.BytesType:
			s, n := protowire.ConsumeString(b)
			m.SourceName = s
			return n
		case num == 2 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			m.ChunkSize = uint32(v)
			return n
		}
		return skip(num, typ, b)
	})
}

// -----------------------------------------------------------------------------

func (m *HeaderReply) MarshalWire() ([]byte, error) {
	b := appendVarint(nil, 1, uint64(m.Status))
	return appendHeader(b, 2, m.Header), nil
}

func (m *HeaderReply) UnmarshalWire(b []byte) error {
	*m = HeaderReply{}
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch {
		case num == 1:
			if n, ok := consumeStatus(typ, b, &m.Status); ok {
				return n
			}
		case num == 2 && typ == protowire.BytesType:
			return consumeHeader(b, &m.Header)
		}
		return skip(num, typ, b)
	})
}

// -----------------------------------------------------------------------------

func (m *WaveformChunk) MarshalWire() ([]byte, error) {
	b := make([]byte, 0, len(m.Data)+256)
	b = appendVarint(b, 1, uint64(m.Status))
	b = appendHeader(b, 2, m.Header)
	b = appendVarint(b, 3, uint64(m.Index))
	return appendBytes(b, 4, m.Data), nil
}

// UnmarshalWire copies the payload: the transport reuses its receive buffers.
func (m *WaveformChunk) UnmarshalWire(b []byte) error {
	*m = WaveformChunk{}
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch {
		case num == 1:
			if n, ok := consumeStatus(typ, b, &m.Status); ok {
				return n
			}
		case num == 2 && typ == protowire.BytesType:
			return consumeHeader(b, &m.Header)
		case num == 3 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			m.Index = uint32(v)
			return n
		case num == 4 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			m.Data = bytes.Clone(v)
			return n
		}
		return skip(num, typ, b)
	})
}
