package grpc_waveform

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Service plumbing for waveform.proto, laid out the way protoc-gen-go-grpc
// lays out generated code.

const (
	WaveformService_Connect_FullMethodName                = "/waveform.WaveformService/Connect"
	WaveformService_WaitForDataAccess_FullMethodName      = "/waveform.WaveformService/WaitForDataAccess"
	WaveformService_FinishedWithDataAccess_FullMethodName = "/waveform.WaveformService/FinishedWithDataAccess"
	WaveformService_RequestAvailableNames_FullMethodName  = "/waveform.WaveformService/RequestAvailableNames"
	WaveformService_RequestNewSequence_FullMethodName     = "/waveform.WaveformService/RequestNewSequence"
	WaveformService_Disconnect_FullMethodName             = "/waveform.WaveformService/Disconnect"
	WaveformService_GetHeader_FullMethodName              = "/waveform.WaveformService/GetHeader"
	WaveformService_GetWaveform_FullMethodName            = "/waveform.WaveformService/GetWaveform"
)

// -----------------------------------------------------------------------------
// Client
// -----------------------------------------------------------------------------

type WaveformServiceClient interface {
	Connect(ctx context.Context, in *ConnectRequest, opts ...grpc.CallOption) (*StatusReply, error)
	WaitForDataAccess(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*StatusReply, error)
	FinishedWithDataAccess(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*StatusReply, error)
	RequestAvailableNames(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*NamesReply, error)
	RequestNewSequence(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*StatusReply, error)
	Disconnect(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*StatusReply, error)
	GetHeader(ctx context.Context, in *HeaderRequest, opts ...grpc.CallOption) (*HeaderReply, error)
	GetWaveform(ctx context.Context, in *HeaderRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[WaveformChunk], error)
}

type waveformServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewWaveformServiceClient(cc grpc.ClientConnInterface) WaveformServiceClient {
	return &waveformServiceClient{cc}
}

func (c *waveformServiceClient) unary(ctx context.Context, method string, in, out interface{}, opts []grpc.CallOption) error {
	cOpts := append([]grpc.CallOption{grpc.StaticMethod()}, opts...)
	return c.cc.Invoke(ctx, method, in, out, cOpts...)
}

func (c *waveformServiceClient) Connect(ctx context.Context, in *ConnectRequest, opts ...grpc.CallOption) (*StatusReply, error) {
	out := new(StatusReply)
	if err := c.unary(ctx, WaveformService_Connect_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *waveformServiceClient) WaitForDataAccess(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*StatusReply, error) {
	out := new(StatusReply)
	if err := c.unary(ctx, WaveformService_WaitForDataAccess_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *waveformServiceClient) FinishedWithDataAccess(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*StatusReply, error) {
	out := new(StatusReply)
	if err := c.unary(ctx, WaveformService_FinishedWithDataAccess_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *waveformServiceClient) RequestAvailableNames(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*NamesReply, error) {
	out := new(NamesReply)
	if err := c.unary(ctx, WaveformService_RequestAvailableNames_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *waveformServiceClient) RequestNewSequence(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*StatusReply, error) {
	out := new(StatusReply)
	if err := c.unary(ctx, WaveformService_RequestNewSequence_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *waveformServiceClient) Disconnect(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*StatusReply, error) {
	out := new(StatusReply)
	if err := c.unary(ctx, WaveformService_Disconnect_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *waveformServiceClient) GetHeader(ctx context.Context, in *HeaderRequest, opts ...grpc.CallOption) (*HeaderReply, error) {
	out := new(HeaderReply)
	if err := c.unary(ctx, WaveformService_GetHeader_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *waveformServiceClient) GetWaveform(ctx context.Context, in *HeaderRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[WaveformChunk], error) {
	cOpts := append([]grpc.CallOption{grpc.StaticMethod()}, opts...)
	stream, err := c.cc.NewStream(ctx, &WaveformService_ServiceDesc.Streams[0], WaveformService_GetWaveform_FullMethodName, cOpts...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[HeaderRequest, WaveformChunk]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

// -----------------------------------------------------------------------------
// Server
// -----------------------------------------------------------------------------

type WaveformServiceServer interface {
	Connect(context.Context, *ConnectRequest) (*StatusReply, error)
	WaitForDataAccess(context.Context, *Empty) (*StatusReply, error)
	FinishedWithDataAccess(context.Context, *Empty) (*StatusReply, error)
	RequestAvailableNames(context.Context, *Empty) (*NamesReply, error)
	RequestNewSequence(context.Context, *Empty) (*StatusReply, error)
	Disconnect(context.Context, *Empty) (*StatusReply, error)
	GetHeader(context.Context, *HeaderRequest) (*HeaderReply, error)
	GetWaveform(*HeaderRequest, grpc.ServerStreamingServer[WaveformChunk]) error
	mustEmbedUnimplementedWaveformServiceServer()
}

// UnimplementedWaveformServiceServer must be embedded by implementations.
type UnimplementedWaveformServiceServer struct{}

func (UnimplementedWaveformServiceServer) Connect(context.Context, *ConnectRequest) (*StatusReply, error) {
	return nil, status.Error(codes.Unimplemented, "method Connect not implemented")
}
func (UnimplementedWaveformServiceServer) WaitForDataAccess(context.Context, *Empty) (*StatusReply, error) {
	return nil, status.Error(codes.Unimplemented, "method WaitForDataAccess not implemented")
}
func (UnimplementedWaveformServiceServer) FinishedWithDataAccess(context.Context, *Empty) (*StatusReply, error) {
	return nil, status.Error(codes.Unimplemented, "method FinishedWithDataAccess not implemented")
}
func (UnimplementedWaveformServiceServer) RequestAvailableNames(context.Context, *Empty) (*NamesReply, error) {
	return nil, status.Error(codes.Unimplemented, "method RequestAvailableNames not implemented")
}
func (UnimplementedWaveformServiceServer) RequestNewSequence(context.Context, *Empty) (*StatusReply, error) {
	return nil, status.Error(codes.Unimplemented, "method RequestNewSequence not implemented")
}
func (UnimplementedWaveformServiceServer) Disconnect(context.Context, *Empty) (*StatusReply, error) {
	return nil, status.Error(codes.Unimplemented, "method Disconnect not implemented")
}
func (UnimplementedWaveformServiceServer) GetHeader(context.Context, *HeaderRequest) (*HeaderReply, error) {
	return nil, status.Error(codes.Unimplemented, "method GetHeader not implemented")
}
func (UnimplementedWaveformServiceServer) GetWaveform(*HeaderRequest, grpc.ServerStreamingServer[WaveformChunk]) error {
	return status.Error(codes.Unimplemented, "method GetWaveform not implemented")
}
func (UnimplementedWaveformServiceServer) mustEmbedUnimplementedWaveformServiceServer() {}

func RegisterWaveformServiceServer(s grpc.ServiceRegistrar, srv WaveformServiceServer) {
	s.RegisterService(&WaveformService_ServiceDesc, srv)
}

// unaryHandler builds the method handler shared by all unary calls.
func unaryHandler[Req any, Res any](
	method string,
	call func(WaveformServiceServer, context.Context, *Req) (*Res, error),
) func(interface{}, context.Context, func(interface{}) error, grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(WaveformServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(WaveformServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func _WaveformService_GetWaveform_Handler(srv interface{}, stream grpc.ServerStream) error {
	m := new(HeaderRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(WaveformServiceServer).GetWaveform(m, &grpc.GenericServerStream[HeaderRequest, WaveformChunk]{ServerStream: stream})
}

var WaveformService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "waveform.WaveformService",
	HandlerType: (*WaveformServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Connect",
			Handler:    unaryHandler(WaveformService_Connect_FullMethodName, WaveformServiceServer.Connect),
		},
		{
			MethodName: "WaitForDataAccess",
			Handler:    unaryHandler(WaveformService_WaitForDataAccess_FullMethodName, WaveformServiceServer.WaitForDataAccess),
		},
		{
			MethodName: "FinishedWithDataAccess",
			Handler:    unaryHandler(WaveformService_FinishedWithDataAccess_FullMethodName, WaveformServiceServer.FinishedWithDataAccess),
		},
		{
			MethodName: "RequestAvailableNames",
			Handler:    unaryHandler(WaveformService_RequestAvailableNames_FullMethodName, WaveformServiceServer.RequestAvailableNames),
		},
		{
			MethodName: "RequestNewSequence",
			Handler:    unaryHandler(WaveformService_RequestNewSequence_FullMethodName, WaveformServiceServer.RequestNewSequence),
		},
		{
			MethodName: "Disconnect",
			Handler:    unaryHandler(WaveformService_Disconnect_FullMethodName, WaveformServiceServer.Disconnect),
		},
		{
			MethodName: "GetHeader",
			Handler:    unaryHandler(WaveformService_GetHeader_FullMethodName, WaveformServiceServer.GetHeader),
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "GetWaveform",
			Handler:       _WaveformService_GetWaveform_Handler,
			ServerStreams: true,
		},
	},
	Metadata: "waveform.proto",
}
