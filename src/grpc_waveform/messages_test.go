package grpc_waveform

import (
	"bytes"
	"testing"

	"waveform-streamer/src/models"

	"google.golang.org/grpc/encoding"
	"google.golang.org/protobuf/encoding/protowire"
)

func TestHeaderSurvivesTheWire(t *testing.T) {
	in := &HeaderReply{
		Status: models.Success,
		Header: &models.WaveformHeader{
			SourceName:                    "ch1",
			SampleCount:                   1000,
			SourceWidth:                   4,
			WireType:                      models.WireAnalogFloat,
			HorizontalSpacing:             1e-9,
			HorizontalZeroIndex:           -250,
			HorizontalFractionalZeroIndex: 0.25,
			VerticalSpacing:               0.5,
			VerticalOffset:                -1.5,
			VerticalUnits:                 "V",
			HorizontalUnits:               "s",
			DataID:                        7,
			TransactionID:                 42,
			HasData:                       true,
		},
	}
	raw, err := in.MarshalWire()
	if err != nil {
		t.Fatal(err)
	}
	var out HeaderReply
	if err := out.UnmarshalWire(raw); err != nil {
		t.Fatal(err)
	}
	if out.Status != models.Success || out.Header == nil || *out.Header != *in.Header {
		t.Fatalf("got %+v, want %+v", out.Header, in.Header)
	}
}

func TestFailureReplyHasNoHeader(t *testing.T) {
	raw, _ := (&HeaderReply{Status: models.OutsideSequenceFailure}).MarshalWire()
	var out HeaderReply
	if err := out.UnmarshalWire(raw); err != nil {
		t.Fatal(err)
	}
	if out.Status != models.OutsideSequenceFailure || out.Header != nil {
		t.Fatalf("unexpected reply %+v", out)
	}
}

func TestUnknownFieldsAreSkipped(t *testing.T) {
	raw, _ := (&StatusReply{Status: models.InUseFailure}).MarshalWire()
	raw = protowire.AppendTag(raw, 99, protowire.BytesType)
	raw = protowire.AppendString(raw, "from a newer peer")
	raw = protowire.AppendTag(raw, 100, protowire.Fixed32Type)
	raw = protowire.AppendFixed32(raw, 1)

	var out StatusReply
	if err := out.UnmarshalWire(raw); err != nil {
		t.Fatal(err)
	}
	if out.Status != models.InUseFailure {
		t.Fatalf("status %v", out.Status)
	}
}

func TestTruncatedMessageFails(t *testing.T) {
	raw, _ := (&ConnectRequest{ClientName: "scope-client"}).MarshalWire()
	var out ConnectRequest
	if err := out.UnmarshalWire(raw[:len(raw)-3]); err == nil {
		t.Fatal("truncated message decoded")
	}
}

func TestChunkPayloadIsCopied(t *testing.T) {
	raw, _ := (&WaveformChunk{Status: models.Success, Index: 3, Data: []byte{1, 2, 3, 4}}).MarshalWire()
	var out WaveformChunk
	if err := out.UnmarshalWire(raw); err != nil {
		t.Fatal(err)
	}
	for i := range raw {
		raw[i] = 0
	}
	if out.Index != 3 || !bytes.Equal(out.Data, []byte{1, 2, 3, 4}) {
		t.Fatalf("chunk %+v aliases the receive buffer", out)
	}
}

func TestNamesKeepOrder(t *testing.T) {
	raw, _ := (&NamesReply{Status: models.Success, Names: []string{"ch1", "", "ch2"}}).MarshalWire()
	var out NamesReply
	if err := out.UnmarshalWire(raw); err != nil {
		t.Fatal(err)
	}
	if len(out.Names) != 3 || out.Names[0] != "ch1" || out.Names[1] != "" || out.Names[2] != "ch2" {
		t.Fatalf("names %q", out.Names)
	}
}

func TestCodecRejectsForeignValues(t *testing.T) {
	if _, err := (wireCodec{}).Marshal(struct{}{}); err == nil {
		t.Fatal("marshalled a non-message")
	}
	if err := (wireCodec{}).Unmarshal(nil, new(int)); err == nil {
		t.Fatal("unmarshalled into a non-message")
	}
}

func TestCodecLeavesProtoRegistered(t *testing.T) {
	registered := encoding.GetCodecV2("proto")
	if registered == nil {
		t.Fatal("grpc proto codec missing")
	}
	if _, ours := registered.(wireCodec); ours {
		t.Fatal("importing the package replaced the process-wide proto codec")
	}
	if (wireCodec{}).Name() == "proto" {
		t.Fatal("codec name collides with grpc's proto codec")
	}
}

func TestCodecRoundTripThroughBuffers(t *testing.T) {
	in := &HeaderRequest{SourceName: "ch1", ChunkSize: 4096}
	data, err := (wireCodec{}).Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	var out HeaderRequest
	if err := (wireCodec{}).Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if out != *in {
		t.Fatalf("got %+v", out)
	}
}
