package grpc_waveform

import (
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/mem"
	"google.golang.org/protobuf/proto"
)

// codecName is deliberately not "proto": the codec is selected per server
// and per connection, and grpc's registered proto codec stays untouched.
const codecName = "waveform-proto"

// wireMessage is implemented by the hand-encoded messages of this package.
type wireMessage interface {
	MarshalWire() ([]byte, error)
	UnmarshalWire([]byte) error
}

// wireCodec encodes this package's messages with protowire and hands every
// other proto.Message to the protobuf runtime, so generated services
// registered on the same server keep working.
type wireCodec struct{}

// ServerCodec makes a grpc.Server speak the waveform wire format. Servers
// that register the waveform service must be built with it.
func ServerCodec() grpc.ServerOption {
	return grpc.ForceServerCodecV2(wireCodec{})
}

func marshalValue(v interface{}) ([]byte, error) {
	switch m := v.(type) {
	case wireMessage:
		return m.MarshalWire()
	case proto.Message:
		return proto.Marshal(m)
	}
	return nil, fmt.Errorf("grpc_waveform: cannot marshal %T", v)
}

func unmarshalValue(data []byte, v interface{}) error {
	switch m := v.(type) {
	case wireMessage:
		return m.UnmarshalWire(data)
	case proto.Message:
		return proto.Unmarshal(data, m)
	}
	return fmt.Errorf("grpc_waveform: cannot unmarshal into %T", v)
}

func (wireCodec) Marshal(v interface{}) (mem.BufferSlice, error) {
	b, err := marshalValue(v)
	if err != nil {
		return nil, err
	}
	return mem.BufferSlice{mem.SliceBuffer(b)}, nil
}

// Unmarshal decodes from a pooled buffer; messages copy what they keep.
func (wireCodec) Unmarshal(data mem.BufferSlice, v interface{}) error {
	buf := data.MaterializeToBuffer(mem.DefaultBufferPool())
	defer buf.Free()
	return unmarshalValue(buf.ReadOnlyData(), v)
}

func (wireCodec) Name() string { return codecName }
