package entities

type FocusStatus string

const (
	FocusIdle    FocusStatus = "idle"
	FocusRunning FocusStatus = "running"
	FocusPaused  FocusStatus = "paused"
)

// FocusView is the countdown shown on a card.
type FocusView struct {
	TaskID    string      `json:"task_id"`
	Status    FocusStatus `json:"status"`
	Remaining int         `json:"remaining"`
	Total     int         `json:"total"`
}

func (v FocusView) Clock() string {
	return FormatClock(v.Remaining)
}
