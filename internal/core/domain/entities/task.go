package entities

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

type Task struct {
	id              string
	title           string
	emoji           string
	category        string
	durationSeconds int
}

func NewTask(id, title, emoji, category string, durationSeconds int) *Task {
	if durationSeconds < 0 {
		durationSeconds = 0
	}
	return &Task{
		id:              id,
		title:           title,
		emoji:           emoji,
		category:        category,
		durationSeconds: durationSeconds,
	}
}

// NewTaskFromDuration builds a task from a human duration such as "30 Min".
func NewTaskFromDuration(id, title, emoji, category, duration string) *Task {
	return NewTask(id, title, emoji, category, ParseDuration(duration))
}

func (t *Task) ID() string {
	return t.id
}

func (t *Task) Title() string {
	return t.title
}

func (t *Task) Emoji() string {
	return t.emoji
}

func (t *Task) Category() string {
	return t.category
}

func (t *Task) DurationSeconds() int {
	return t.durationSeconds
}

// ParseDuration reads the leading minute count of strings like "45 Min" and
// returns it in seconds. Anything that is not a positive integer, or whose
// seconds would overflow an int, yields 0.
func ParseDuration(s string) int {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0
	}
	minutes, err := strconv.Atoi(fields[0])
	if err != nil || minutes <= 0 || minutes > math.MaxInt/60 {
		return 0
	}
	return minutes * 60
}

// FormatClock renders seconds as mm:ss.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
