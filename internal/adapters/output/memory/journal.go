// Package memory keeps the resolution journal in process memory.
package memory

import (
	"context"
	"sync"
	"time"

	"dopamine-deck/internal/core/domain/entities"
	"dopamine-deck/internal/core/domain/exceptions"

	"go.uber.org/zap"
)

type journalSession struct {
	session entities.Session
	final   entities.ProgressionState
	records []entities.ResolutionRecord
	seen    map[string]struct{}
}

type Journal struct {
	mu       sync.Mutex
	sessions map[string]*journalSession
	log      *zap.Logger
}

func NewJournal(log *zap.Logger) *Journal {
	if log == nil {
		panic("logger is nil")
	}
	return &Journal{
		sessions: make(map[string]*journalSession),
		log:      log,
	}
}

func (j *Journal) OpenSession(ctx context.Context, session *entities.Session) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if _, ok := j.sessions[session.ID]; ok {
		return nil
	}
	j.sessions[session.ID] = &journalSession{
		session: *session,
		seen:    make(map[string]struct{}),
	}
	return nil
}

// Record keeps the first record per (session, task) and drops repeats.
func (j *Journal) Record(ctx context.Context, record *entities.ResolutionRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	s, ok := j.sessions[record.SessionID]
	if !ok {
		return exceptions.ErrSessionNotFound
	}
	if _, dup := s.seen[record.TaskID]; dup {
		j.log.Debug("memory: resolution already recorded", zap.String("session_id", record.SessionID), zap.String("task_id", record.TaskID))
		return nil
	}
	s.seen[record.TaskID] = struct{}{}
	s.records = append(s.records, *record)
	return nil
}

func (j *Journal) CloseSession(ctx context.Context, sessionID string, state entities.ProgressionState) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	s, ok := j.sessions[sessionID]
	if !ok {
		return exceptions.ErrSessionNotFound
	}
	if s.session.EndedAt.IsZero() {
		s.session.EndedAt = time.Now()
	}
	s.final = state
	return nil
}

func (j *Journal) Records(sessionID string) []entities.ResolutionRecord {
	j.mu.Lock()
	defer j.mu.Unlock()
	s, ok := j.sessions[sessionID]
	if !ok {
		return nil
	}
	return append([]entities.ResolutionRecord(nil), s.records...)
}

// Session returns the journaled session and its final state, if closed.
func (j *Journal) Session(sessionID string) (entities.Session, entities.ProgressionState, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	s, ok := j.sessions[sessionID]
	if !ok {
		return entities.Session{}, entities.ProgressionState{}, false
	}
	return s.session, s.final, true
}
