package client

import (
	"blockfall/pb"
	"blockfall/tetris"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// remoteGame plays a game hosted by the server. It has the same surface as a local
// tetris.Game: actions go up the stream and snapshots come back down.
type remoteGame struct {
	hello    *pb.Hello
	logger   *slog.Logger
	conn     *grpc.ClientConn
	stream   grpc.BidiStreamingClient[structpb.Struct, structpb.Struct]
	cancel   context.CancelFunc
	updateCh chan *tetris.Snapshot
	sendMu   sync.Mutex
	stopOnce sync.Once
}

func dialRemote(ctx context.Context, o *Options, l *slog.Logger) (*remoteGame, error) {
	conn, err := grpc.NewClient(o.Address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("unable to create gRPC client: %w", err)
	}
	r, err := newRemoteGame(ctx, pb.NewSessionServiceClient(conn), &pb.Hello{
		Name:   o.Name,
		Width:  o.Width,
		Height: o.Height,
		Bag:    o.Bag,
	}, l)
	if err != nil {
		conn.Close() //nolint: errcheck
		return nil, err
	}
	r.conn = conn
	return r, nil
}

// newRemoteGame opens the Play stream. ctx only bounds the dial, the stream
// lives until Stop or game over.
func newRemoteGame(ctx context.Context, client pb.SessionServiceClient, h *pb.Hello, l *slog.Logger) (*remoteGame, error) {
	streamCtx, cancel := context.WithCancel(context.Background())
	stop := context.AfterFunc(ctx, cancel)
	stream, err := client.Play(streamCtx, grpc.WaitForReady(true))
	stop()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("unable to create gRPC Play stream: %w", err)
	}
	return &remoteGame{
		hello:    h,
		logger:   l,
		stream:   stream,
		cancel:   cancel,
		updateCh: make(chan *tetris.Snapshot),
	}, nil
}

func (r *remoteGame) GetUpdate() <-chan *tetris.Snapshot { return r.updateCh }

func (r *remoteGame) Start() {
	msg, err := pb.HelloMessage(r.hello)
	if err == nil {
		err = r.send(msg)
	}
	if err != nil {
		r.logger.Error("unable to send hello message", slog.String("error", err.Error()))
		close(r.updateCh)
		return
	}
	go r.listen()
}

func (r *remoteGame) Action(a tetris.Action) {
	if err := r.send(pb.ActionMessage(a)); err != nil {
		r.logger.Debug("unable to send action", slog.String("action", string(a)), slog.String("error", err.Error()))
	}
}

func (r *remoteGame) Stop() {
	r.stopOnce.Do(func() {
		r.sendMu.Lock()
		r.stream.CloseSend() //nolint: errcheck
		r.sendMu.Unlock()
		r.cancel()
		if r.conn != nil {
			if err := r.conn.Close(); err != nil {
				r.logger.Error("unable to close gRPC client", slog.String("error", err.Error()))
			}
		}
	})
}

func (r *remoteGame) send(m *structpb.Struct) error {
	r.sendMu.Lock()
	defer r.sendMu.Unlock()
	return r.stream.Send(m)
}

func (r *remoteGame) listen() {
	defer close(r.updateCh)
	for {
		rcv, err := r.stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				r.logger.Debug("stream.Recv() closed with EOF")
				return
			}
			st, ok := status.FromError(err)
			if ok && st.Code() == codes.Canceled {
				r.logger.Debug("stream.Recv() closed with Cancel", slog.String("msg", st.Message()))
			} else {
				r.logger.Error("stream.Recv() unable to receive message", slog.String("error", err.Error()))
			}
			return
		}
		_, s, err := pb.DecodeSnapshot(rcv)
		if err != nil {
			r.logger.Error("unable to decode snapshot", slog.String("error", err.Error()))
			return
		}
		r.updateCh <- s
		if s.GameOver {
			return
		}
	}
}
