package grpc_waveform

import (
	"context"
	"errors"
	"fmt"
	"io"

	"waveform-streamer/src/helpers"
	"waveform-streamer/src/models"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// defaultMaxRecv covers the largest chunk a client asks for plus envelope.
const defaultMaxRecv = 16 << 20

// StatusError is a reply whose status was not Success.
type StatusError struct {
	Op     string
	Status models.Status
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Status)
}

func checkStatus(op string, st models.Status) error {
	if st == models.Success {
		return nil
	}
	return &StatusError{Op: op, Status: st}
}

// IsStatus reports whether err carries the given reply status.
func IsStatus(err error, st models.Status) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == st
}

// Retryable reports whether a failed call is worth repeating: only transport
// failures are, replies with an explicit status never are.
func Retryable(err error) bool {
	var te *helpers.TransportError
	if !errors.As(err, &te) {
		return false
	}
	switch status.Code(te.Cause) {
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted:
		return true
	}
	return false
}

// -----------------------------------------------------------------------------

// Client is one named session against a waveform service.
type Client struct {
	conn *grpc.ClientConn
	rpc  WaveformServiceClient
	name string
}

// Dial creates a client for address. The connection is established lazily
// by the first call.
func Dial(address string, opts ...grpc.DialOption) (*Client, error) {
	base := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(
			grpc.ForceCodecV2(wireCodec{}),
			grpc.MaxCallRecvMsgSize(defaultMaxRecv),
		),
	}
	conn, err := grpc.NewClient(address, append(base, opts...)...)
	if err != nil {
		return nil, helpers.NewTransportError("dial "+address, err)
	}
	return &Client{conn: conn, rpc: NewWaveformServiceClient(conn)}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

// Name returns the session name given to Connect.
func (c *Client) Name() string {
	return c.name
}

func (c *Client) outgoing(ctx context.Context) context.Context {
	return metadata.AppendToOutgoingContext(ctx, ClientNameKey, c.name)
}

// -----------------------------------------------------------------------------

func (c *Client) Connect(ctx context.Context, name string) error {
	c.name = name
	reply, err := c.rpc.Connect(ctx, &ConnectRequest{ClientName: name})
	if err != nil {
		return helpers.NewTransportError("Connect", err)
	}
	return checkStatus("Connect", reply.Status)
}

func (c *Client) WaitForDataAccess(ctx context.Context) error {
	reply, err := c.rpc.WaitForDataAccess(c.outgoing(ctx), &Empty{})
	if err != nil {
		return helpers.NewTransportError("WaitForDataAccess", err)
	}
	return checkStatus("WaitForDataAccess", reply.Status)
}

func (c *Client) FinishedWithDataAccess(ctx context.Context) error {
	reply, err := c.rpc.FinishedWithDataAccess(c.outgoing(ctx), &Empty{})
	if err != nil {
		return helpers.NewTransportError("FinishedWithDataAccess", err)
	}
	return checkStatus("FinishedWithDataAccess", reply.Status)
}

func (c *Client) AvailableNames(ctx context.Context) ([]string, error) {
	reply, err := c.rpc.RequestAvailableNames(c.outgoing(ctx), &Empty{})
	if err != nil {
		return nil, helpers.NewTransportError("RequestAvailableNames", err)
	}
	if err := checkStatus("RequestAvailableNames", reply.Status); err != nil {
		return nil, err
	}
	return reply.Names, nil
}

func (c *Client) RequestNewSequence(ctx context.Context) error {
	reply, err := c.rpc.RequestNewSequence(c.outgoing(ctx), &Empty{})
	if err != nil {
		return helpers.NewTransportError("RequestNewSequence", err)
	}
	return checkStatus("RequestNewSequence", reply.Status)
}

func (c *Client) Disconnect(ctx context.Context) error {
	reply, err := c.rpc.Disconnect(c.outgoing(ctx), &Empty{})
	if err != nil {
		return helpers.NewTransportError("Disconnect", err)
	}
	return checkStatus("Disconnect", reply.Status)
}

// -----------------------------------------------------------------------------

func (c *Client) GetHeader(ctx context.Context, source string) (models.WaveformHeader, error) {
	reply, err := c.rpc.GetHeader(c.outgoing(ctx), &HeaderRequest{SourceName: source})
	if err != nil {
		return models.WaveformHeader{}, helpers.NewTransportError("GetHeader "+source, err)
	}
	if err := checkStatus("GetHeader "+source, reply.Status); err != nil {
		return models.WaveformHeader{}, err
	}
	if reply.Header == nil {
		return models.WaveformHeader{}, helpers.NewProtocolError("GetHeader %s: reply carries no header", source)
	}
	return *reply.Header, nil
}

// ReadWaveform streams source and hands every chunk to onChunk in arrival
// order. onChunk errors end the stream.
func (c *Client) ReadWaveform(
	ctx context.Context,
	source string,
	chunkSize int,
	onChunk func(models.Chunk) error,
) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	op := "GetWaveform " + source
	stream, err := c.rpc.GetWaveform(c.outgoing(ctx), &HeaderRequest{SourceName: source, ChunkSize: uint32(chunkSize)})
	if err != nil {
		return helpers.NewTransportError(op, err)
	}

	for {
		msg, err := stream.Recv()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return helpers.NewTransportError(op, err)
		}
		if err := checkStatus(op, msg.Status); err != nil {
			return err
		}
		if err := onChunk(models.Chunk{Index: int(msg.Index), Payload: msg.Data}); err != nil {
			return err
		}
	}
}
