package server

import (
	"blockfall/pb"
	"blockfall/tetris"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

type Options struct {
	Logger *slog.Logger
	// NewTicker returns the ticker each session falls on. Nil means a real ticker.
	NewTicker func() tetris.Ticker
}

// Server runs one game per Play stream. The game state lives here, clients only
// send actions and draw the snapshots they get back.
type Server struct {
	pb.UnimplementedSessionServiceServer
	logger    *slog.Logger
	newTicker func() tetris.Ticker
	sessions  map[string]*tetris.Game
	mu        sync.Mutex
}

func New(o *Options) *Server {
	if o == nil {
		o = &Options{}
	}
	s := &Server{
		logger:    o.Logger,
		newTicker: o.NewTicker,
		sessions:  make(map[string]*tetris.Game),
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	if s.newTicker == nil {
		s.newTicker = tetris.NewTicker
	}
	return s
}

// Sessions returns the number of games being played.
func (s *Server) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Server) Play(stream grpc.BidiStreamingServer[structpb.Struct, structpb.Struct]) error {
	rcv, err := stream.Recv()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("failed to receive hello message: %w", err)
	}
	hello := pb.ParseHello(rcv)
	opts := &tetris.Options{Width: hello.Width, Height: hello.Height}
	if hello.Bag {
		opts.Randomizer = tetris.NewBag(nil)
	}
	tts, err := tetris.New(opts)
	if err != nil {
		return status.Errorf(codes.InvalidArgument, "unable to create game: %v", err)
	}

	id := uuid.New().String()
	logger := s.logger.With(slog.String("session_id", id), slog.String("name", hello.Name))
	game := tetris.NewConfigurableGame(tts, s.newTicker(), logger)
	s.add(id, game)
	defer s.remove(id)
	game.Start()
	defer game.Stop()
	logger.Info("session started", slog.Int("sessions", s.Sessions()))

	// receive actions from the client
	errCh := make(chan error, 1)
	go func() {
		for {
			msg, err := stream.Recv()
			if err != nil {
				errCh <- err
				return
			}
			a, ok := pb.ParseAction(msg)
			if !ok {
				continue
			}
			if !a.Valid() {
				errCh <- status.Errorf(codes.InvalidArgument, "unknown action %q", a)
				return
			}
			game.Action(a)
		}
	}()

	ctx := stream.Context()
	for {
		select {
		case u := <-game.GetUpdate():
			msg, err := pb.EncodeSnapshot(id, u)
			if err != nil {
				return status.Errorf(codes.Internal, "unable to encode snapshot: %v", err)
			}
			if err := stream.Send(msg); err != nil {
				return fmt.Errorf("failed to send snapshot: %w", err)
			}
			if u.GameOver {
				logger.Info("session finished",
					slog.Int("score", u.Score),
					slog.Int("lines", u.LinesClear),
					slog.Int("level", u.Level))
				return nil
			}
		case err := <-errCh:
			if errors.Is(err, io.EOF) || status.Code(err) == codes.Canceled {
				logger.Info("client left")
				return nil
			}
			return err
		case <-ctx.Done():
			logger.Debug("stream context done", slog.String("error", ctx.Err().Error()))
			return ctx.Err()
		}
	}
}

func (s *Server) add(id string, g *tetris.Game) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = g
}

func (s *Server) remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}
