package grpc

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/peer"
)

var streamSeq uint64

func nextStreamID() uint64 {
	return atomic.AddUint64(&streamSeq, 1)
}

type watchStats struct {
	streamID  uint64
	sessionID string
	remote    string
	startedAt time.Time
	sent      int
}

func newWatchStats(ctx context.Context, sessionID string) *watchStats {
	remote := "unknown"
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		remote = p.Addr.String()
	}
	return &watchStats{
		streamID:  nextStreamID(),
		sessionID: sessionID,
		remote:    remote,
		startedAt: time.Now(),
	}
}

func (w *watchStats) fields() []zap.Field {
	return []zap.Field{
		zap.Uint64("stream_id", w.streamID),
		zap.String("session_id", w.sessionID),
		zap.String("remote", w.remote),
		zap.Int("sent", w.sent),
		zap.Duration("elapsed", time.Since(w.startedAt)),
	}
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
