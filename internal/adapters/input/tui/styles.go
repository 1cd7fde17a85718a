package tui

import (
	"math"
	"strings"

	"dopamine-deck/internal/core/domain/entities"
	"dopamine-deck/internal/core/gesture"

	"github.com/charmbracelet/lipgloss"
)

const trackWidth = 25

type theme struct {
	accent lipgloss.Color
	border lipgloss.Color
}

var (
	defaultTheme  = theme{accent: lipgloss.Color("205"), border: lipgloss.Color("63")}
	unlockedTheme = theme{accent: lipgloss.Color("220"), border: lipgloss.Color("214")}

	headerStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	noteStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

func themeFor(state entities.ProgressionState) theme {
	if state.ThemeUnlocked {
		return unlockedTheme
	}
	return defaultTheme
}

func (t theme) card(selected bool, opacity float64) lipgloss.Style {
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1).
		Width(44)
	if selected {
		style = style.BorderForeground(t.border)
	}
	if opacity < 1 {
		style = style.Faint(true)
	}
	return style
}

func (t theme) title() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(t.accent)
}

// track draws the card's horizontal position between the two off-screen
// edges, with the commit thresholds marked.
func track(offset float64) string {
	pos := func(x float64) int {
		if x < -gesture.MaxTravel {
			x = -gesture.MaxTravel
		}
		if x > gesture.MaxTravel {
			x = gesture.MaxTravel
		}
		return int(math.Round((x + gesture.MaxTravel) / (2 * gesture.MaxTravel) * float64(trackWidth-1)))
	}
	cells := []rune(strings.Repeat("─", trackWidth))
	cells[pos(-gesture.SwipeThreshold)] = '┊'
	cells[pos(gesture.SwipeThreshold)] = '┊'
	cells[pos(offset)] = '●'
	return "skip " + string(cells) + " done"
}

func progressBar(value, max, width int) string {
	if max <= 0 {
		return "[" + strings.Repeat("█", width) + "]"
	}
	filled := value * width / max
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}
