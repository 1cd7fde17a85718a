package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dopamine-deck/internal/core/domain/entities"
	"dopamine-deck/internal/core/gesture"
	"dopamine-deck/internal/core/ports"
	"dopamine-deck/internal/core/progression"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	dragStep     = 40
	quickSwipe   = 150
	refreshEvery = 100 * time.Millisecond
	maxNotes     = 5
)

type deckModel struct {
	ctx context.Context
	svc ports.DeckUseCases

	width int

	sessionID string
	snap      *ports.DeckSnapshot
	notes     <-chan entities.Notification
	cancel    func()

	selected int
	dragging string
	drag     float64

	recent  []entities.Notification
	lastLog string
	err     error
	ended   bool
}

type startedMsg struct {
	snap   *ports.DeckSnapshot
	notes  <-chan entities.Notification
	cancel func()
	err    error
}

type notificationMsg struct {
	n  entities.Notification
	ok bool
}

type tickMsg time.Time

func newDeckModel(ctx context.Context, svc ports.DeckUseCases) deckModel {
	return deckModel{
		ctx:     ctx,
		svc:     svc,
		lastLog: "Starting session…",
	}
}

func (m deckModel) Init() tea.Cmd {
	return m.startCmd()
}

func (m deckModel) startCmd() tea.Cmd {
	return func() tea.Msg {
		snap, err := m.svc.StartSession(m.ctx)
		if err != nil {
			return startedMsg{err: err}
		}
		notes, cancel, err := m.svc.Subscribe(m.ctx, snap.SessionID)
		if err != nil {
			return startedMsg{err: err}
		}
		return startedMsg{snap: snap, notes: notes, cancel: cancel}
	}
}

func waitNotification(ch <-chan entities.Notification) tea.Cmd {
	return func() tea.Msg {
		n, ok := <-ch
		return notificationMsg{n: n, ok: ok}
	}
}

func tick() tea.Cmd {
	return tea.Tick(refreshEvery, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m deckModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case startedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.sessionID = msg.snap.SessionID
		m.snap = msg.snap
		m.notes = msg.notes
		m.cancel = msg.cancel
		m.lastLog = fmt.Sprintf("Session started with %d cards.", len(msg.snap.Pending))
		return m, tea.Batch(waitNotification(m.notes), tick())
	case notificationMsg:
		if !msg.ok {
			return m, nil
		}
		m.recent = append([]entities.Notification{msg.n}, m.recent...)
		if len(m.recent) > maxNotes {
			m.recent = m.recent[:maxNotes]
		}
		m.lastLog = describe(msg.n)
		m = m.refresh()
		return m, waitNotification(m.notes)
	case tickMsg:
		if m.ended {
			return m, nil
		}
		return m.refresh(), tick()
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m deckModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m.end(), tea.Quit
	}
	if m.snap == nil || m.ended {
		return m, nil
	}

	switch msg.String() {
	case "up", "k":
		if m.dragging == "" && m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.dragging == "" && m.selected < len(m.snap.Pending)-1 {
			m.selected++
		}
	case "left", "h":
		m = m.nudge(-dragStep)
	case "right", "l":
		m = m.nudge(dragStep)
	case " ", "enter":
		m = m.release()
	case "c":
		m = m.quick(quickSwipe)
	case "x":
		m = m.quick(-quickSwipe)
	case "f":
		m = m.toggleFocus()
	}
	return m.refresh(), nil
}

func (m deckModel) current() (*entities.Task, bool) {
	if m.snap == nil || len(m.snap.Pending) == 0 {
		return nil, false
	}
	i := m.selected
	if i >= len(m.snap.Pending) {
		i = len(m.snap.Pending) - 1
	}
	return m.snap.Pending[i], true
}

func (m deckModel) nudge(step float64) deckModel {
	task, ok := m.current()
	if !ok {
		return m
	}
	if m.dragging != task.ID() {
		view, err := m.svc.DragStart(m.ctx, m.sessionID, task.ID())
		if err != nil {
			m.err = err
			return m
		}
		if !view.Accepted {
			m.lastLog = "Card is still moving."
			return m
		}
		m.dragging = task.ID()
		m.drag = 0
	}
	m.drag += step
	if _, err := m.svc.DragMove(m.ctx, m.sessionID, task.ID(), m.drag); err != nil {
		m.err = err
	}
	return m
}

func (m deckModel) release() deckModel {
	if m.dragging == "" {
		return m
	}
	view, err := m.svc.DragEnd(m.ctx, m.sessionID, m.dragging)
	m.dragging, m.drag = "", 0
	if err != nil {
		m.err = err
		return m
	}
	switch view.State.Direction {
	case entities.DirectionRight:
		m.lastLog = "Swiped right."
	case entities.DirectionLeft:
		m.lastLog = "Swiped left."
	default:
		m.lastLog = "Not far enough, card snaps back."
	}
	return m
}

func (m deckModel) quick(distance float64) deckModel {
	if m.dragging != "" {
		return m
	}
	m = m.nudge(distance)
	return m.release()
}

func (m deckModel) toggleFocus() deckModel {
	task, ok := m.current()
	if !ok {
		return m
	}
	var (
		view entities.FocusView
		err  error
	)
	if m.snap.Focus[task.ID()].Status == entities.FocusRunning {
		view, err = m.svc.PauseFocus(m.ctx, m.sessionID, task.ID())
	} else {
		view, err = m.svc.StartFocus(m.ctx, m.sessionID, task.ID())
	}
	if err != nil {
		m.err = err
		return m
	}
	m.lastLog = fmt.Sprintf("Focus %s: %s", view.Status, view.Clock())
	return m
}

func (m deckModel) refresh() deckModel {
	if m.sessionID == "" || m.ended {
		return m
	}
	snap, err := m.svc.Snapshot(m.ctx, m.sessionID)
	if err != nil {
		m.err = err
		return m
	}
	m.snap = snap
	if m.selected >= len(snap.Pending) {
		m.selected = len(snap.Pending) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
	return m
}

func (m deckModel) end() deckModel {
	if m.sessionID == "" || m.ended {
		return m
	}
	if snap, err := m.svc.EndSession(m.ctx, m.sessionID); err == nil {
		m.snap = snap
	}
	if m.cancel != nil {
		m.cancel()
	}
	m.ended = true
	return m
}

func (m deckModel) View() string {
	if m.err != nil {
		return errorStyle.Render("Error: "+m.err.Error()) + "\n\nPress q to quit.\n"
	}
	if m.snap == nil {
		return m.lastLog + "\n"
	}

	th := themeFor(m.snap.State)
	sections := []string{
		m.renderHeader(th),
		m.renderCards(th),
		m.renderFeed(),
		m.renderNotes(),
		mutedStyle.Render("←/→ drag  space release  c/x quick swipe  ↑/↓ select  f focus  q quit"),
		m.lastLog,
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...) + "\n"
}

func (m deckModel) renderHeader(th theme) string {
	s := m.snap.State
	xpLine := fmt.Sprintf("XP %d/%d %s", s.XP, s.NextLevelXP, progressBar(s.XP, s.NextLevelXP, 20))
	if s.MaxLevel {
		xpLine = fmt.Sprintf("XP %d %s", s.XP, progression.MaxLevelName)
	}
	quest := fmt.Sprintf("Quest %d/%d", s.QuestTasksCompleted, progression.QuestGoal)
	if s.QuestAchieved {
		quest = "Quest done"
	}
	return th.title().Render(fmt.Sprintf("DopamineDeck  Lv %d %s", s.Level, s.LevelName)) + "\n" +
		headerStyle.Render(fmt.Sprintf("%s  Coins %d  Done %d/%d  %s  Theme %s",
			xpLine, s.Coins, s.TasksCompletedToday, s.TotalTasksInDeck, quest, s.Theme()))
}

func (m deckModel) renderCards(th theme) string {
	if len(m.snap.Pending) == 0 {
		return mutedStyle.Render("Deck cleared.")
	}
	cards := make([]string, 0, len(m.snap.Pending))
	for i, task := range m.snap.Pending {
		swipe := m.snap.Cards[task.ID()]
		focus := m.snap.Focus[task.ID()]
		transform := gesture.Transform(swipe.Offset)

		title := task.Title()
		if task.Emoji() != "" {
			title = task.Emoji() + " " + title
		}
		body := strings.Join([]string{
			th.title().Render(title),
			mutedStyle.Render(fmt.Sprintf("%s · %s · focus %s (%s)", task.Category(), entities.FormatClock(task.DurationSeconds()), focus.Clock(), focus.Status)),
			track(swipe.Offset),
			mutedStyle.Render(fmt.Sprintf("%s  x=%.0f  rot=%.1f°  α=%.2f", swipe.Phase, transform.TranslateX, transform.RotateDeg, transform.Opacity)),
		}, "\n")
		cards = append(cards, th.card(i == m.selected, transform.Opacity).Render(body))
	}
	return lipgloss.JoinVertical(lipgloss.Left, cards...)
}

func (m deckModel) renderFeed() string {
	lines := []string{headerStyle.Render("Feed")}
	if len(m.snap.Feed) == 0 {
		lines = append(lines, mutedStyle.Render("(nothing done yet)"))
	}
	for _, item := range m.snap.Feed {
		lines = append(lines, fmt.Sprintf("%s %s %s", item.At.Format("15:04:05"), item.Emoji, item.Title))
	}
	return strings.Join(lines, "\n")
}

func (m deckModel) renderNotes() string {
	if len(m.recent) == 0 {
		return ""
	}
	lines := make([]string, 0, len(m.recent))
	for _, n := range m.recent {
		lines = append(lines, noteStyle.Render("• "+describe(n)))
	}
	return strings.Join(lines, "\n")
}

func describe(n entities.Notification) string {
	switch n.Kind {
	case entities.NotificationTaskResolved:
		if n.Outcome == entities.OutcomeComplete {
			return fmt.Sprintf("Completed %s: +%d XP, +%d coins", n.Title, progression.XPPerTask, progression.CoinsPerTask)
		}
		return "Skipped " + n.Title
	case entities.NotificationQuestComplete:
		return fmt.Sprintf("Quest complete! +%d bonus XP", n.BonusXP)
	case entities.NotificationLevelUp:
		if n.Milestone {
			return fmt.Sprintf("Milestone! Level %d %s", n.Level, n.LevelName)
		}
		return fmt.Sprintf("Level %d %s", n.Level, n.LevelName)
	case entities.NotificationDailyGoalAchieved:
		return "Daily goal achieved, new theme unlocked"
	case entities.NotificationTimerFinished:
		return "Focus finished: " + n.Title
	default:
		return string(n.Kind)
	}
}
