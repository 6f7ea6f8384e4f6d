package grpc_waveform

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"waveform-streamer/src/codec"
	"waveform-streamer/src/instrument"
	"waveform-streamer/src/interfaces"
	"waveform-streamer/src/logger"
	"waveform-streamer/src/models"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// ClientNameKey is the metadata entry naming the calling session.
const ClientNameKey = "x-client-name"

type session struct {
	name         string
	holding      bool
	grantedAt    time.Time
	lastFinished time.Time
}

// WaveformService implements WaveformServiceServer on top of an instrument.
type WaveformService struct {
	UnimplementedWaveformServiceServer
	Config     *models.MInstrumentConfig
	Instrument interfaces.IInstrument
	Sink       interfaces.IMetricsSink
	Logger     *logger.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

// NewWaveformService creates a new instance of WaveformService
func NewWaveformService(
	cfg *models.MInstrumentConfig,
	inst interfaces.IInstrument,
	sink interfaces.IMetricsSink,
	log *logger.Logger,
) *WaveformService {
	return &WaveformService{
		Config:     cfg,
		Instrument: inst,
		Sink:       sink,
		Logger:     log,
		sessions:   make(map[string]*session),
	}
}

// -----------------------------------------------------------------------------

func sessionName(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if v := md.Get(ClientNameKey); len(v) > 0 {
		return v[0]
	}
	return ""
}

func (s *WaveformService) lookup(ctx context.Context) (*session, bool) {
	name := sessionName(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[name]
	return sess, ok
}

// Sessions returns the number of connected clients.
func (s *WaveformService) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// -----------------------------------------------------------------------------

func (s *WaveformService) Connect(ctx context.Context, req *ConnectRequest) (*StatusReply, error) {
	if req.ClientName == "" {
		return nil, status.Error(codes.InvalidArgument, "client_name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[req.ClientName]; ok {
		return &StatusReply{Status: models.Success}, nil
	}
	if s.Config.SingleConnection && len(s.sessions) > 0 {
		s.Logger.Warning("gRPC: rejecting %s, instrument is in use", req.ClientName)
		return &StatusReply{Status: models.InUseFailure}, nil
	}

	s.sessions[req.ClientName] = &session{name: req.ClientName}
	s.Logger.Info("gRPC: client %s connected (%d sessions)", req.ClientName, len(s.sessions))
	return &StatusReply{Status: models.Success}, nil
}

// -----------------------------------------------------------------------------

// WaitForDataAccess blocks until the instrument opens a read window for the
// session. A session already holding a window gets it back immediately.
func (s *WaveformService) WaitForDataAccess(ctx context.Context, _ *Empty) (*StatusReply, error) {
	sess, ok := s.lookup(ctx)
	if !ok {
		return &StatusReply{Status: models.UnknownFailure}, nil
	}

	s.mu.Lock()
	holding := sess.holding
	s.mu.Unlock()
	if holding {
		return &StatusReply{Status: models.Success}, nil
	}

	if err := s.Instrument.WaitForAccess(ctx, sess.name); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, status.FromContextError(err).Err()
		}
		s.Logger.Error("gRPC: WaitForDataAccess for %s failed: %v", sess.name, err)
		return &StatusReply{Status: models.UnknownFailure}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, still := s.sessions[sess.name]; !still {
		// Disconnected while waiting.
		s.Instrument.FinishedWithAccess(sess.name)
		return &StatusReply{Status: models.UnknownFailure}, nil
	}
	sess.holding = true
	sess.grantedAt = time.Now()
	return &StatusReply{Status: models.Success}, nil
}

// -----------------------------------------------------------------------------

func (s *WaveformService) FinishedWithDataAccess(ctx context.Context, _ *Empty) (*StatusReply, error) {
	sess, ok := s.lookup(ctx)
	if !ok {
		return &StatusReply{Status: models.NoConnectionFailure}, nil
	}

	now := time.Now()
	s.mu.Lock()
	wasHolding := sess.holding
	granted := sess.grantedAt
	previous := sess.lastFinished
	sess.holding = false
	sess.lastFinished = now
	s.mu.Unlock()

	if wasHolding {
		s.Instrument.FinishedWithAccess(sess.name)
		s.Sink.RecordTimed("data_access_hold_seconds", now.Sub(granted).Seconds())
	}
	if !previous.IsZero() {
		s.Sink.RecordTimed("finished_with_data_access", now.Sub(previous).Seconds())
	}
	return &StatusReply{Status: models.Success}, nil
}

// -----------------------------------------------------------------------------

func (s *WaveformService) RequestAvailableNames(ctx context.Context, _ *Empty) (*NamesReply, error) {
	if _, ok := s.lookup(ctx); !ok {
		return &NamesReply{Status: models.NoConnectionFailure}, nil
	}
	return &NamesReply{Status: models.Success, Names: s.Instrument.AvailableNames()}, nil
}

// -----------------------------------------------------------------------------

func (s *WaveformService) RequestNewSequence(ctx context.Context, _ *Empty) (*StatusReply, error) {
	sess, ok := s.lookup(ctx)
	if !ok {
		return &StatusReply{Status: models.NoConnectionFailure}, nil
	}
	s.Logger.Debug("gRPC: %s requested a new sequence", sess.name)
	s.Instrument.RequestNewSequence()
	return &StatusReply{Status: models.Success}, nil
}

// -----------------------------------------------------------------------------

func (s *WaveformService) Disconnect(ctx context.Context, _ *Empty) (*StatusReply, error) {
	name := sessionName(ctx)

	s.mu.Lock()
	sess, ok := s.sessions[name]
	if ok {
		delete(s.sessions, name)
	}
	s.mu.Unlock()

	if !ok {
		return &StatusReply{Status: models.NoConnectionFailure}, nil
	}

	if forgetter, ok := s.Instrument.(interface{ Forget(string) }); ok {
		forgetter.Forget(name)
	} else if sess.holding {
		s.Instrument.FinishedWithAccess(name)
	}
	s.Logger.Info("gRPC: client %s disconnected", name)
	return &StatusReply{Status: models.Success}, nil
}

// -----------------------------------------------------------------------------

// resolve runs the read preconditions shared by GetHeader and GetWaveform:
// session, read window, non-empty name, then an encodable waveform.
func (s *WaveformService) resolve(ctx context.Context, name string) (*instrument.Waveform, models.Status) {
	sess, ok := s.lookup(ctx)
	if !ok {
		return nil, models.NoConnectionFailure
	}

	s.mu.Lock()
	holding := sess.holding
	s.mu.Unlock()
	if !holding {
		return nil, models.OutsideSequenceFailure
	}

	if name == "" {
		return nil, models.SourcenameMissingFailure
	}
	// A name with nothing published under it resolves to no object, which
	// is not an encodable waveform either.
	obj, _ := s.Instrument.Resolve(name)
	wf, isWaveform := obj.(*instrument.Waveform)
	if !isWaveform || wf == nil || wf.Samples == nil {
		return nil, models.TypeMismatchFailure
	}
	return wf, models.Success
}

// headerOf describes a published waveform. The zero index is split into its
// integral and fractional parts.
func headerOf(wf *instrument.Waveform) *models.WaveformHeader {
	zero := math.Floor(wf.HorizontalZeroIndex)
	n := wf.Samples.Len()
	return &models.WaveformHeader{
		SourceName:                    wf.Name,
		SampleCount:                   uint64(n),
		SourceWidth:                   uint32(wf.Samples.ItemWidth()),
		WireType:                      wf.Samples.WireType(),
		HorizontalSpacing:             wf.HorizontalSpacing,
		HorizontalZeroIndex:           int64(zero),
		HorizontalFractionalZeroIndex: wf.HorizontalZeroIndex - zero,
		VerticalSpacing:               wf.VerticalSpacing,
		VerticalOffset:                wf.VerticalOffset,
		VerticalUnits:                 wf.VerticalUnits,
		HorizontalUnits:               wf.HorizontalUnits,
		DataID:                        wf.DataID,
		TransactionID:                 wf.TransactionID,
		HasData:                       n > 0,
	}
}

// -----------------------------------------------------------------------------

func (s *WaveformService) GetHeader(ctx context.Context, req *HeaderRequest) (*HeaderReply, error) {
	wf, st := s.resolve(ctx, req.SourceName)
	if st != models.Success {
		return &HeaderReply{Status: st}, nil
	}
	return &HeaderReply{Status: models.Success, Header: headerOf(wf)}, nil
}

// -----------------------------------------------------------------------------

// GetWaveform streams a waveform's samples in chunks of at most ChunkSize
// bytes (the configured default when zero). Every chunk repeats the header.
// A client that goes away ends the stream early without an error.
func (s *WaveformService) GetWaveform(req *HeaderRequest, stream grpc.ServerStreamingServer[WaveformChunk]) error {
	ctx := stream.Context()

	wf, st := s.resolve(ctx, req.SourceName)
	if st != models.Success {
		return stream.Send(&WaveformChunk{Status: st})
	}

	hdr := headerOf(wf)
	requested := int(req.ChunkSize)
	if requested == 0 {
		requested = s.Config.DefaultChunkSize
	}
	plan, err := codec.NewPlan(hdr.SampleCount, int(hdr.SourceWidth), requested)
	if err != nil {
		return status.Error(codes.InvalidArgument, err.Error())
	}

	start := time.Now()
	sent := 0
	for i := 0; i < plan.Chunks; i++ {
		if ctx.Err() != nil {
			s.Logger.Debug("gRPC: %s stream cancelled after %d/%d chunks", req.SourceName, i, plan.Chunks)
			break
		}
		payload := codec.EncodeSlice(wf.Samples, plan, i)
		msg := &WaveformChunk{Status: models.Success, Header: hdr, Index: uint32(i), Data: payload}
		if err := stream.Send(msg); err != nil {
			if ctx.Err() != nil {
				break
			}
			return err
		}
		sent += len(payload)
	}

	s.recordThroughput(sent, time.Since(start))
	return nil
}

func (s *WaveformService) recordThroughput(bytes int, elapsed time.Duration) {
	defer func() {
		if r := recover(); r != nil {
			s.Logger.Error("gRPC: recording throughput: %v", r)
		}
	}()
	if bytes == 0 || elapsed <= 0 {
		return
	}
	s.Sink.RecordTimed("get_waveform_throughput", float64(bytes)/elapsed.Seconds())
}

