package tui

import (
	"context"
	"io"

	"dopamine-deck/internal/core/ports"

	tea "github.com/charmbracelet/bubbletea"
)

// RunDeck plays one session in the terminal and ends it on quit.
func RunDeck(ctx context.Context, svc ports.DeckUseCases, out io.Writer) error {
	m := newDeckModel(ctx, svc)
	p := tea.NewProgram(m, tea.WithOutput(out), tea.WithContext(ctx), tea.WithAltScreen())
	final, err := p.Run()
	if fm, ok := final.(deckModel); ok {
		fm.end()
	}
	return err
}
