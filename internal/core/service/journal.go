package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"dopamine-deck/internal/core/domain/entities"
	"dopamine-deck/internal/core/ports"

	"go.uber.org/zap"
)

const (
	journalTimeout = 2 * time.Second
	journalBacklog = 256
)

var (
	ErrJournalBacklog = errors.New("journal backlog is full")
	ErrJournalClosed  = errors.New("journal is closed")
)

type journalJob struct {
	op        string
	sessionID string
	run       func(ctx context.Context) error
	// done is nil for fire-and-forget writes.
	done chan error
}

// queuedJournal hands resolution records to a single writer goroutine so
// that a slow store never holds up the event loop. Record never blocks.
// Writes reach the wrapped journal in the order they were queued, and
// CloseSession waits until the session's earlier records are written.
type queuedJournal struct {
	next ports.ResolutionJournal
	jobs chan journalJob
	done chan struct{}
	log  *zap.Logger

	mu     sync.RWMutex
	closed bool
}

func newQueuedJournal(next ports.ResolutionJournal, backlog int, log *zap.Logger) *queuedJournal {
	if backlog <= 0 {
		backlog = journalBacklog
	}
	j := &queuedJournal{
		next: next,
		jobs: make(chan journalJob, backlog),
		done: make(chan struct{}),
		log:  log,
	}
	go j.drain()
	return j
}

// OpenSession runs on the caller's goroutine; no record for the session
// can be queued before it returns.
func (j *queuedJournal) OpenSession(ctx context.Context, session *entities.Session) error {
	return j.next.OpenSession(ctx, session)
}

func (j *queuedJournal) Record(_ context.Context, record *entities.ResolutionRecord) error {
	rec := *record
	job := journalJob{
		op:        "record",
		sessionID: rec.SessionID,
		run: func(ctx context.Context) error {
			return j.next.Record(ctx, &rec)
		},
	}

	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.closed {
		return ErrJournalClosed
	}
	select {
	case j.jobs <- job:
		return nil
	default:
		return ErrJournalBacklog
	}
}

func (j *queuedJournal) CloseSession(ctx context.Context, sessionID string, state entities.ProgressionState) error {
	job := journalJob{
		op:        "close session",
		sessionID: sessionID,
		run: func(ctx context.Context) error {
			return j.next.CloseSession(ctx, sessionID, state)
		},
		done: make(chan error, 1),
	}

	if err := j.enqueue(ctx, job); err != nil {
		return err
	}
	select {
	case err := <-job.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting writes and waits for queued ones to finish.
func (j *queuedJournal) Close(ctx context.Context) error {
	j.mu.Lock()
	if !j.closed {
		j.closed = true
		close(j.jobs)
	}
	j.mu.Unlock()

	select {
	case <-j.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (j *queuedJournal) enqueue(ctx context.Context, job journalJob) error {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.closed {
		return ErrJournalClosed
	}
	select {
	case j.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (j *queuedJournal) drain() {
	defer close(j.done)
	for job := range j.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), journalTimeout)
		err := job.run(ctx)
		cancel()
		if err != nil && job.done == nil {
			j.log.Warn("usecase: journal write failed",
				zap.String("op", job.op),
				zap.String("session_id", job.sessionID),
				zap.Error(err),
			)
		}
		if job.done != nil {
			job.done <- err
		}
	}
}
