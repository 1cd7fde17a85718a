package grpc

import (
	"context"

	"dopamine-deck/internal/core/ports"
	"dopamine-deck/internal/mapper"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

type DeckServer struct {
	service ports.DeckUseCases
	log     *zap.Logger
}

func NewDeckServer(service ports.DeckUseCases, log *zap.Logger) *DeckServer {
	if log == nil {
		panic("logger is nil")
	}
	if service == nil {
		log.Fatal("deck service is nil")
	}
	return &DeckServer{
		service: service,
		log:     log,
	}
}

func (s *DeckServer) StartSession(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	s.log.Info("grpc: start session")

	snap, err := s.service.StartSession(ctx)
	if err != nil {
		s.log.Error("grpc: start session failed", zap.Error(err))
		return nil, mapper.Error(err)
	}

	s.log.Info("grpc: start session done", zap.String("session_id", snap.SessionID), zap.Int("tasks", len(snap.Pending)))
	return mapper.Snapshot(snap), nil
}

func (s *DeckServer) EndSession(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	sessionID, err := mapper.SessionID(req)
	if err != nil {
		s.log.Warn("grpc: end session validation failed", zap.Error(err))
		return nil, mapper.Error(err)
	}
	s.log.Info("grpc: end session", zap.String("session_id", sessionID))

	snap, err := s.service.EndSession(ctx, sessionID)
	if err != nil {
		s.log.Error("grpc: end session failed", zap.String("session_id", sessionID), zap.Error(err))
		return nil, mapper.Error(err)
	}

	s.log.Info("grpc: end session done", zap.String("session_id", sessionID), zap.Int("xp", snap.State.XP))
	return mapper.Snapshot(snap), nil
}

func (s *DeckServer) GetState(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	sessionID, err := mapper.SessionID(req)
	if err != nil {
		s.log.Warn("grpc: get state validation failed", zap.Error(err))
		return nil, mapper.Error(err)
	}

	snap, err := s.service.Snapshot(ctx, sessionID)
	if err != nil {
		s.log.Warn("grpc: get state failed", zap.String("session_id", sessionID), zap.Error(err))
		return nil, mapper.Error(err)
	}
	return mapper.Snapshot(snap), nil
}

func (s *DeckServer) DragStart(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	sessionID, taskID, err := cardArgs(req)
	if err != nil {
		s.log.Warn("grpc: drag start validation failed", zap.Error(err))
		return nil, mapper.Error(err)
	}

	view, err := s.service.DragStart(ctx, sessionID, taskID)
	if err != nil {
		s.log.Warn("grpc: drag start failed", zap.String("session_id", sessionID), zap.String("task_id", taskID), zap.Error(err))
		return nil, mapper.Error(err)
	}
	return mapper.CardView(view), nil
}

func (s *DeckServer) DragMove(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	sessionID, taskID, err := cardArgs(req)
	if err != nil {
		s.log.Warn("grpc: drag move validation failed", zap.Error(err))
		return nil, mapper.Error(err)
	}
	deltaX, err := mapper.DeltaX(req)
	if err != nil {
		s.log.Warn("grpc: drag move validation failed", zap.String("task_id", taskID), zap.Error(err))
		return nil, mapper.Error(err)
	}

	view, err := s.service.DragMove(ctx, sessionID, taskID, deltaX)
	if err != nil {
		s.log.Warn("grpc: drag move failed", zap.String("session_id", sessionID), zap.String("task_id", taskID), zap.Error(err))
		return nil, mapper.Error(err)
	}
	return mapper.CardView(view), nil
}

func (s *DeckServer) DragEnd(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	sessionID, taskID, err := cardArgs(req)
	if err != nil {
		s.log.Warn("grpc: drag end validation failed", zap.Error(err))
		return nil, mapper.Error(err)
	}

	view, err := s.service.DragEnd(ctx, sessionID, taskID)
	if err != nil {
		s.log.Warn("grpc: drag end failed", zap.String("session_id", sessionID), zap.String("task_id", taskID), zap.Error(err))
		return nil, mapper.Error(err)
	}
	if view.Accepted {
		s.log.Info("grpc: drag end done",
			zap.String("session_id", sessionID),
			zap.String("task_id", taskID),
			zap.String("direction", string(view.State.Direction)),
		)
	}
	return mapper.CardView(view), nil
}

func (s *DeckServer) StartFocus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	sessionID, taskID, err := cardArgs(req)
	if err != nil {
		s.log.Warn("grpc: start focus validation failed", zap.Error(err))
		return nil, mapper.Error(err)
	}

	view, err := s.service.StartFocus(ctx, sessionID, taskID)
	if err != nil {
		s.log.Warn("grpc: start focus failed", zap.String("session_id", sessionID), zap.String("task_id", taskID), zap.Error(err))
		return nil, mapper.Error(err)
	}
	return mapper.FocusView(view), nil
}

func (s *DeckServer) PauseFocus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	sessionID, taskID, err := cardArgs(req)
	if err != nil {
		s.log.Warn("grpc: pause focus validation failed", zap.Error(err))
		return nil, mapper.Error(err)
	}

	view, err := s.service.PauseFocus(ctx, sessionID, taskID)
	if err != nil {
		s.log.Warn("grpc: pause focus failed", zap.String("session_id", sessionID), zap.String("task_id", taskID), zap.Error(err))
		return nil, mapper.Error(err)
	}
	return mapper.FocusView(view), nil
}

func (s *DeckServer) Watch(req *structpb.Struct, stream grpc.ServerStreamingServer[structpb.Struct]) error {
	sessionID, err := mapper.SessionID(req)
	if err != nil {
		s.log.Warn("grpc: watch validation failed", zap.Error(err))
		return mapper.Error(err)
	}

	ctx := stream.Context()
	notes, cancel, err := s.service.Subscribe(ctx, sessionID)
	if err != nil {
		s.log.Warn("grpc: watch failed", zap.String("session_id", sessionID), zap.Error(err))
		return mapper.Error(err)
	}
	defer cancel()

	snap, err := s.service.Snapshot(ctx, sessionID)
	if err != nil {
		s.log.Warn("grpc: watch failed", zap.String("session_id", sessionID), zap.Error(err))
		return mapper.Error(err)
	}

	w := newWatchStats(ctx, sessionID)
	s.log.Info("grpc: watch started", w.fields()...)
	if err := stream.Send(mapper.SnapshotEvent(snap)); err != nil {
		return s.finishWatch(err, w)
	}

	for {
		select {
		case <-ctx.Done():
			return s.finishWatch(ctx.Err(), w)
		case n, ok := <-notes:
			if !ok {
				return s.finishWatch(nil, w)
			}
			if err := stream.Send(mapper.Notification(n)); err != nil {
				return s.finishWatch(err, w)
			}
			w.sent++
		}
	}
}

func cardArgs(req *structpb.Struct) (string, string, error) {
	sessionID, err := mapper.SessionID(req)
	if err != nil {
		return "", "", err
	}
	taskID, err := mapper.TaskID(req)
	if err != nil {
		return "", "", err
	}
	return sessionID, taskID, nil
}

func (s *DeckServer) finishWatch(err error, w *watchStats) error {
	fields := w.fields()
	switch {
	case err == nil:
		s.log.Info("grpc: watch done", fields...)
		return nil
	case status.Code(err) == codes.Canceled, isContextErr(err):
		s.log.Info("grpc: watch cancelled", fields...)
		return nil
	default:
		fields = append(fields, zap.Error(err))
		s.log.Warn("grpc: watch send failed", fields...)
		return err
	}
}
