package service

import (
	"context"
	"errors"
	"math"
	"time"

	"dopamine-deck/internal/core/domain/entities"
	"dopamine-deck/internal/core/domain/exceptions"
	"dopamine-deck/internal/core/ports"
	"dopamine-deck/internal/core/progression"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type session struct {
	deck      *Deck
	hub       *hub
	startedAt time.Time
}

type SessionManagerParams struct {
	Executor       ports.Executor
	Scheduler      ports.Scheduler
	Source         ports.TaskSource
	// Journal and Notifier are optional. Notifier sees every session's
	// notifications in addition to the per-session watchers.
	Journal        ports.ResolutionJournal
	Notifier       ports.Notifier
	// JournalBacklog caps journal writes waiting behind a slow store.
	JournalBacklog int
	GoalRule       progression.GoalRule
	FeedLimit      int
	Log            *zap.Logger
}

// SessionManager owns one Deck per session. All deck access goes through
// the executor so that gesture events, timer callbacks and progression
// updates are serialized on one thread.
type SessionManager struct {
	exec      ports.Executor
	scheduler ports.Scheduler
	source    ports.TaskSource
	journal   ports.ResolutionJournal
	queue     *queuedJournal
	notifier  ports.Notifier
	goalRule  progression.GoalRule
	feedLimit int
	newID     func() string
	now       func() time.Time
	log       *zap.Logger

	// sessions is only touched on the executor thread.
	sessions map[string]*session
}

func NewSessionManager(p SessionManagerParams) (*SessionManager, error) {
	if p.Executor == nil {
		return nil, errors.New("executor is nil")
	}
	if p.Scheduler == nil {
		return nil, errors.New("scheduler is nil")
	}
	if p.Source == nil {
		return nil, errors.New("task source is nil")
	}
	if p.Log == nil {
		return nil, errors.New("logger is nil")
	}
	m := &SessionManager{
		exec:      p.Executor,
		scheduler: p.Scheduler,
		source:    p.Source,
		notifier:  p.Notifier,
		goalRule:  p.GoalRule,
		feedLimit: p.FeedLimit,
		newID:     uuid.NewString,
		now:       time.Now,
		log:       p.Log,
		sessions:  make(map[string]*session),
	}
	if p.Journal != nil {
		m.queue = newQueuedJournal(p.Journal, p.JournalBacklog, p.Log)
		m.journal = m.queue
	}
	return m, nil
}

func (m *SessionManager) StartSession(ctx context.Context) (*ports.DeckSnapshot, error) {
	m.log.Info("usecase: start session")
	tasks, err := m.source.ListDeck(ctx)
	if err != nil {
		m.log.Warn("usecase: start session failed", zap.Error(err))
		return nil, err
	}

	sess := &entities.Session{ID: m.newID(), StartedAt: m.now()}
	if m.journal != nil {
		if err := m.journal.OpenSession(ctx, sess); err != nil {
			m.log.Warn("usecase: journal open session failed", zap.String("session_id", sess.ID), zap.Error(err))
		}
	}

	h := newHub()
	notifier := ports.Notifier(h)
	if m.notifier != nil {
		notifier = ports.Notifiers{h, m.notifier}
	}

	deck, err := NewDeck(DeckParams{
		SessionID: sess.ID,
		Tasks:     tasks,
		Scheduler: m.scheduler,
		Notifier:  notifier,
		Journal:   m.journal,
		GoalRule:  m.goalRule,
		FeedLimit: m.feedLimit,
		Log:       m.log,
	})
	if err != nil {
		return nil, err
	}

	snap, err := call(ctx, m.exec, func() *ports.DeckSnapshot {
		m.sessions[sess.ID] = &session{deck: deck, hub: h, startedAt: sess.StartedAt}
		return deck.Snapshot()
	})
	if err != nil {
		m.log.Warn("usecase: start session failed", zap.Error(err))
		return nil, err
	}

	m.log.Info("usecase: start session done", zap.String("session_id", sess.ID), zap.Int("tasks", len(snap.Pending)))
	return snap, nil
}

type endedSession struct {
	sess *session
	snap *ports.DeckSnapshot
}

func (m *SessionManager) EndSession(ctx context.Context, sessionID string) (*ports.DeckSnapshot, error) {
	if sessionID == "" {
		return nil, exceptions.ErrSessionIDRequired
	}
	m.log.Info("usecase: end session", zap.String("session_id", sessionID))

	ended, err := call(ctx, m.exec, func() endedSession {
		sess, ok := m.sessions[sessionID]
		if !ok {
			return endedSession{}
		}
		delete(m.sessions, sessionID)
		sess.deck.Close()
		return endedSession{sess: sess, snap: sess.deck.Snapshot()}
	})
	if err != nil {
		return nil, err
	}
	if ended.sess == nil {
		return nil, exceptions.ErrSessionNotFound
	}
	sess, snap := ended.sess, ended.snap
	sess.hub.close()

	if m.journal != nil {
		if err := m.journal.CloseSession(ctx, sessionID, snap.State); err != nil {
			m.log.Warn("usecase: journal close session failed", zap.String("session_id", sessionID), zap.Error(err))
		}
	}

	m.log.Info("usecase: end session done",
		zap.String("session_id", sessionID),
		zap.Duration("elapsed", m.now().Sub(sess.startedAt)),
		zap.Int("xp", snap.State.XP),
		zap.Int("level", snap.State.Level),
	)
	return snap, nil
}

func (m *SessionManager) Snapshot(ctx context.Context, sessionID string) (*ports.DeckSnapshot, error) {
	return onDeck(ctx, m, sessionID, (*Deck).Snapshot)
}

func (m *SessionManager) DragStart(ctx context.Context, sessionID, taskID string) (entities.CardView, error) {
	return m.card(ctx, sessionID, taskID, func(d *Deck) entities.CardView { return d.DragStart(taskID) })
}

func (m *SessionManager) DragMove(ctx context.Context, sessionID, taskID string, deltaX float64) (entities.CardView, error) {
	if math.IsNaN(deltaX) || math.IsInf(deltaX, 0) {
		return entities.CardView{}, exceptions.ErrDeltaInvalid
	}
	return m.card(ctx, sessionID, taskID, func(d *Deck) entities.CardView { return d.DragMove(taskID, deltaX) })
}

func (m *SessionManager) DragEnd(ctx context.Context, sessionID, taskID string) (entities.CardView, error) {
	return m.card(ctx, sessionID, taskID, func(d *Deck) entities.CardView { return d.DragEnd(taskID) })
}

func (m *SessionManager) StartFocus(ctx context.Context, sessionID, taskID string) (entities.FocusView, error) {
	return m.focus(ctx, sessionID, taskID, (*Deck).StartFocus)
}

func (m *SessionManager) PauseFocus(ctx context.Context, sessionID, taskID string) (entities.FocusView, error) {
	return m.focus(ctx, sessionID, taskID, (*Deck).PauseFocus)
}

func (m *SessionManager) Subscribe(ctx context.Context, sessionID string) (<-chan entities.Notification, func(), error) {
	h, err := onDeck(ctx, m, sessionID, func(*Deck) *hub {
		return m.sessions[sessionID].hub
	})
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := h.subscribe()
	m.log.Debug("usecase: subscribed", zap.String("session_id", sessionID))
	return ch, cancel, nil
}

// Close ends every open session, then waits for queued journal writes.
func (m *SessionManager) Close(ctx context.Context) {
	ids, err := call(ctx, m.exec, func() []string {
		ids := make([]string, 0, len(m.sessions))
		for id := range m.sessions {
			ids = append(ids, id)
		}
		return ids
	})
	if err != nil {
		m.log.Warn("usecase: close sessions failed", zap.Error(err))
	}
	for _, id := range ids {
		if _, err := m.EndSession(ctx, id); err != nil {
			m.log.Warn("usecase: end session failed", zap.String("session_id", id), zap.Error(err))
		}
	}
	if m.queue != nil {
		if err := m.queue.Close(ctx); err != nil {
			m.log.Warn("usecase: journal flush failed", zap.Error(err))
		}
	}
}

func (m *SessionManager) card(ctx context.Context, sessionID, taskID string, fn func(d *Deck) entities.CardView) (entities.CardView, error) {
	if taskID == "" {
		return entities.CardView{}, exceptions.ErrTaskIDRequired
	}
	return onDeck(ctx, m, sessionID, fn)
}

type focusResult struct {
	view  entities.FocusView
	known bool
}

func (m *SessionManager) focus(ctx context.Context, sessionID, taskID string, fn func(d *Deck, taskID string) (entities.FocusView, bool)) (entities.FocusView, error) {
	if taskID == "" {
		return entities.FocusView{}, exceptions.ErrTaskIDRequired
	}
	res, err := onDeck(ctx, m, sessionID, func(d *Deck) focusResult {
		_, known := d.Focus(taskID)
		view, _ := fn(d, taskID)
		return focusResult{view: view, known: known}
	})
	if err != nil {
		return entities.FocusView{}, err
	}
	if !res.known {
		return res.view, exceptions.ErrTaskNotFound
	}
	return res.view, nil
}

var errCallAborted = errors.New("executor call returned without a result")

// call runs fn through exec and returns its result. The result travels over
// a channel owned by this call, so a caller that gives up on ctx never
// shares memory with a closure that runs later.
func call[T any](ctx context.Context, exec ports.Executor, fn func() T) (T, error) {
	var zero T
	out := make(chan T, 1)
	if err := exec.Call(ctx, func() { out <- fn() }); err != nil {
		return zero, err
	}
	select {
	case v := <-out:
		return v, nil
	default:
		// fn panicked and the executor recovered.
		return zero, errCallAborted
	}
}

type deckResult[T any] struct {
	value T
	found bool
}

func onDeck[T any](ctx context.Context, m *SessionManager, sessionID string, fn func(d *Deck) T) (T, error) {
	var zero T
	if sessionID == "" {
		return zero, exceptions.ErrSessionIDRequired
	}
	res, err := call(ctx, m.exec, func() deckResult[T] {
		sess, ok := m.sessions[sessionID]
		if !ok {
			return deckResult[T]{}
		}
		return deckResult[T]{value: fn(sess.deck), found: true}
	})
	if err != nil {
		return zero, err
	}
	if !res.found {
		return zero, exceptions.ErrSessionNotFound
	}
	return res.value, nil
}
