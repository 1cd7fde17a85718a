package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dopamine-deck/internal/core/domain/entities"
	"dopamine-deck/internal/core/focus"
	"dopamine-deck/internal/core/gesture"
	"dopamine-deck/internal/core/ports"
	"dopamine-deck/internal/core/progression"

	"go.uber.org/zap"
)

const DefaultFeedLimit = 20

type DeckParams struct {
	SessionID string
	Tasks     []*entities.Task
	Scheduler ports.Scheduler
	Notifier  ports.Notifier
	// Journal is optional. It is called on the deck's thread and must not
	// block; SessionManager hands decks a queued journal.
	Journal   ports.ResolutionJournal
	GoalRule  progression.GoalRule
	FeedLimit int
	Log       *zap.Logger
}

// Deck holds one session's pending cards, one gesture resolver per card,
// and the progression engine the resolvers feed. A Deck is not safe for
// concurrent use: gesture events and scheduler callbacks must arrive on the
// same thread.
type Deck struct {
	sessionID string
	scheduler ports.Scheduler
	notifier  ports.Notifier
	journal   ports.ResolutionJournal
	engine    *progression.Engine
	feedLimit int
	now       func() time.Time
	log       *zap.Logger

	pending   []*entities.Task
	resolvers map[string]*gesture.Resolver
	timers    map[string]*focus.Timer
	feed      []entities.FeedItem
	closed    bool
}

func NewDeck(p DeckParams) (*Deck, error) {
	if p.Scheduler == nil {
		return nil, errors.New("scheduler is nil")
	}
	if p.Log == nil {
		return nil, errors.New("logger is nil")
	}
	if p.FeedLimit <= 0 {
		p.FeedLimit = DefaultFeedLimit
	}

	d := &Deck{
		sessionID: p.SessionID,
		scheduler: p.Scheduler,
		notifier:  p.Notifier,
		journal:   p.Journal,
		feedLimit: p.FeedLimit,
		now:       time.Now,
		log:       p.Log.With(zap.String("session_id", p.SessionID)),
		resolvers: make(map[string]*gesture.Resolver, len(p.Tasks)),
		timers:    make(map[string]*focus.Timer, len(p.Tasks)),
	}

	for _, task := range p.Tasks {
		if task == nil || task.ID() == "" {
			d.log.Warn("usecase: deck skipped task without id")
			continue
		}
		if _, dup := d.resolvers[task.ID()]; dup {
			d.log.Warn("usecase: deck skipped duplicate task", zap.String("task_id", task.ID()))
			continue
		}
		d.pending = append(d.pending, task)
		d.resolvers[task.ID()] = gesture.NewResolver(task.ID(), d.scheduler, d.commit)
		d.timers[task.ID()] = focus.NewTimer(task.ID(), task.DurationSeconds(), d.scheduler, d.focusFinished)
	}
	d.engine = progression.NewEngine(len(d.pending), p.GoalRule)

	d.log.Info("usecase: deck created", zap.Int("tasks", len(d.pending)), zap.String("goal_rule", string(d.engine.Rule())))
	return d, nil
}

func (d *Deck) SessionID() string {
	return d.sessionID
}

func (d *Deck) DragStart(taskID string) entities.CardView {
	r, ok := d.resolvers[taskID]
	if !ok || d.closed {
		return entities.CardView{TaskID: taskID}
	}
	accepted := r.DragStart()
	if !accepted {
		d.log.Debug("usecase: drag start ignored", zap.String("task_id", taskID), zap.String("phase", string(r.State().Phase)))
	}
	return d.view(r, accepted)
}

func (d *Deck) DragMove(taskID string, deltaX float64) entities.CardView {
	r, ok := d.resolvers[taskID]
	if !ok || d.closed {
		return entities.CardView{TaskID: taskID}
	}
	return d.view(r, r.DragMove(deltaX))
}

func (d *Deck) DragEnd(taskID string) entities.CardView {
	r, ok := d.resolvers[taskID]
	if !ok || d.closed {
		return entities.CardView{TaskID: taskID}
	}
	dir, accepted := r.DragEnd()
	if accepted {
		d.log.Debug("usecase: drag end", zap.String("task_id", taskID), zap.String("direction", string(dir)), zap.Float64("offset", r.State().Offset))
	}
	return d.view(r, accepted)
}

// commit is the resolvers' callback for a finished swipe animation.
func (d *Deck) commit(taskID string, outcome entities.SwipeOutcome) {
	d.Resolve(taskID, outcome)
}

// Resolve applies a committed outcome for taskID and reports whether it was
// applied. A task that is no longer pending is ignored.
func (d *Deck) Resolve(taskID string, outcome entities.SwipeOutcome) bool {
	event := &entities.TaskResolved{TaskID: taskID, Outcome: outcome, ResolvedAt: d.now()}
	if err := event.Validate(); err != nil {
		d.log.Warn("usecase: resolve validation failed", zap.String("task_id", taskID), zap.Error(err))
		return false
	}
	if d.closed {
		return false
	}

	idx := d.indexOf(taskID)
	if idx < 0 {
		d.log.Debug("usecase: stale resolution ignored", zap.String("task_id", taskID), zap.String("outcome", string(outcome)))
		return false
	}
	task := d.pending[idx]

	res := d.engine.Resolve(outcome)
	d.remove(idx)

	if outcome == entities.OutcomeComplete {
		d.pushFeed(entities.FeedItem{TaskID: task.ID(), Title: task.Title(), Emoji: task.Emoji(), At: event.ResolvedAt})
	}

	d.log.Info("usecase: task resolved",
		zap.String("task_id", taskID),
		zap.String("outcome", string(outcome)),
		zap.Int("xp_awarded", res.XPAwarded),
		zap.Int("xp", res.After.XP),
		zap.Int("coins", res.After.Coins),
		zap.Int("level", res.After.Level),
		zap.Int("pending", len(d.pending)),
	)

	d.record(event, res)

	d.dispatch(entities.Notification{
		Kind:    entities.NotificationTaskResolved,
		TaskID:  taskID,
		Title:   task.Title(),
		Outcome: outcome,
	}, event.ResolvedAt)
	for _, n := range res.Notifications {
		n.TaskID = taskID
		d.dispatch(n, event.ResolvedAt)
	}
	return true
}

func (d *Deck) StartFocus(taskID string) (entities.FocusView, bool) {
	t, ok := d.timers[taskID]
	if !ok || d.closed {
		return entities.FocusView{TaskID: taskID}, false
	}
	started := t.Start()
	return t.View(), started
}

func (d *Deck) PauseFocus(taskID string) (entities.FocusView, bool) {
	t, ok := d.timers[taskID]
	if !ok || d.closed {
		return entities.FocusView{TaskID: taskID}, false
	}
	paused := t.Pause()
	return t.View(), paused
}

func (d *Deck) Focus(taskID string) (entities.FocusView, bool) {
	t, ok := d.timers[taskID]
	if !ok {
		return entities.FocusView{TaskID: taskID}, false
	}
	return t.View(), true
}

func (d *Deck) Card(taskID string) (entities.CardView, bool) {
	r, ok := d.resolvers[taskID]
	if !ok {
		return entities.CardView{TaskID: taskID}, false
	}
	return d.view(r, true), true
}

func (d *Deck) Pending() []*entities.Task {
	return append([]*entities.Task(nil), d.pending...)
}

func (d *Deck) State() entities.ProgressionState {
	return d.engine.State()
}

// Feed returns completed tasks, newest first.
func (d *Deck) Feed() []entities.FeedItem {
	return append([]entities.FeedItem(nil), d.feed...)
}

func (d *Deck) Snapshot() *ports.DeckSnapshot {
	snap := &ports.DeckSnapshot{
		SessionID: d.sessionID,
		Pending:   d.Pending(),
		Cards:     make(map[string]entities.SwipeState, len(d.pending)),
		Focus:     make(map[string]entities.FocusView, len(d.pending)),
		State:     d.State(),
		Feed:      d.Feed(),
	}
	for _, task := range d.pending {
		snap.Cards[task.ID()] = d.resolvers[task.ID()].State()
		snap.Focus[task.ID()] = d.timers[task.ID()].View()
	}
	return snap
}

// Close stops every pending animation and timer. Later events are ignored.
func (d *Deck) Close() {
	if d.closed {
		return
	}
	d.closed = true
	for _, r := range d.resolvers {
		r.Stop()
	}
	for _, t := range d.timers {
		t.Stop()
	}
	d.log.Info("usecase: deck closed", zap.Int("pending", len(d.pending)))
}

func (d *Deck) view(r *gesture.Resolver, accepted bool) entities.CardView {
	return entities.CardView{
		TaskID:    r.TaskID(),
		Accepted:  accepted,
		State:     r.State(),
		Transform: r.Transform(),
	}
}

func (d *Deck) indexOf(taskID string) int {
	for i, task := range d.pending {
		if task.ID() == taskID {
			return i
		}
	}
	return -1
}

func (d *Deck) remove(idx int) {
	id := d.pending[idx].ID()
	d.pending = append(d.pending[:idx], d.pending[idx+1:]...)
	if t, ok := d.timers[id]; ok {
		t.Stop()
		delete(d.timers, id)
	}
	delete(d.resolvers, id)
}

func (d *Deck) pushFeed(item entities.FeedItem) {
	d.feed = append([]entities.FeedItem{item}, d.feed...)
	if len(d.feed) > d.feedLimit {
		d.feed = d.feed[:d.feedLimit]
	}
}

func (d *Deck) focusFinished(taskID string) {
	title := ""
	if idx := d.indexOf(taskID); idx >= 0 {
		title = d.pending[idx].Title()
	}
	d.log.Info("usecase: focus timer finished", zap.String("task_id", taskID))
	d.dispatch(entities.Notification{
		Kind:   entities.NotificationTimerFinished,
		TaskID: taskID,
		Title:  title,
	}, d.now())
}

func (d *Deck) record(event *entities.TaskResolved, res progression.Result) {
	if d.journal == nil {
		return
	}
	rec := &entities.ResolutionRecord{
		SessionID:    d.sessionID,
		TaskID:       event.TaskID,
		Outcome:      event.Outcome,
		XPAwarded:    res.XPAwarded,
		CoinsAwarded: res.CoinsAwarded,
		XPTotal:      res.After.XP,
		CoinsTotal:   res.After.Coins,
		LevelAfter:   res.After.Level,
		Completed:    res.After.TasksCompletedToday,
		ResolvedAt:   event.ResolvedAt,
	}
	if err := d.journal.Record(context.Background(), rec); err != nil {
		d.log.Warn("usecase: journal record failed", zap.String("task_id", event.TaskID), zap.Error(err))
	}
}

// dispatch delivers n to the notifier. A failing notifier never affects
// deck state.
func (d *Deck) dispatch(n entities.Notification, at time.Time) {
	if d.notifier == nil {
		return
	}
	n.At = at
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("usecase: notifier panicked", zap.String("kind", string(n.Kind)), zap.String("panic", fmt.Sprint(r)))
		}
	}()
	d.notifier.Notify(n)
}
