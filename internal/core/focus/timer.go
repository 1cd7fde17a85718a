// Package focus implements the per-card countdown a user can run while
// working on a task.
package focus

import (
	"time"

	"dopamine-deck/internal/core/domain/entities"
	"dopamine-deck/internal/core/ports"
)

const TickInterval = time.Second

// Timer counts a task's duration down one tick at a time. Like the gesture
// resolver it must be driven from a single thread.
type Timer struct {
	taskID    string
	total     int
	remaining int
	status    entities.FocusStatus
	scheduler ports.Scheduler
	handle    ports.TimerHandle
	onFinish  func(taskID string)
}

func NewTimer(taskID string, totalSeconds int, scheduler ports.Scheduler, onFinish func(taskID string)) *Timer {
	if totalSeconds < 0 {
		totalSeconds = 0
	}
	return &Timer{
		taskID:    taskID,
		total:     totalSeconds,
		remaining: totalSeconds,
		status:    entities.FocusIdle,
		scheduler: scheduler,
		onFinish:  onFinish,
	}
}

// Start starts from the full duration when idle, or resumes when paused.
func (t *Timer) Start() bool {
	switch t.status {
	case entities.FocusRunning:
		return false
	case entities.FocusIdle:
		t.remaining = t.total
	}

	if t.remaining <= 0 {
		t.finish()
		return true
	}
	t.status = entities.FocusRunning
	t.handle = t.scheduler.After(TickInterval, t.tick)
	return true
}

func (t *Timer) Pause() bool {
	if t.status != entities.FocusRunning {
		return false
	}
	t.cancel()
	t.status = entities.FocusPaused
	return true
}

// Stop cancels any pending tick and resets the countdown.
func (t *Timer) Stop() {
	t.cancel()
	t.status = entities.FocusIdle
	t.remaining = t.total
}

func (t *Timer) View() entities.FocusView {
	return entities.FocusView{
		TaskID:    t.taskID,
		Status:    t.status,
		Remaining: t.remaining,
		Total:     t.total,
	}
}

func (t *Timer) tick() {
	t.handle = 0
	if t.status != entities.FocusRunning {
		return
	}
	t.remaining--
	if t.remaining <= 0 {
		t.finish()
		return
	}
	t.handle = t.scheduler.After(TickInterval, t.tick)
}

func (t *Timer) finish() {
	t.status = entities.FocusIdle
	t.remaining = t.total
	if t.onFinish != nil {
		t.onFinish(t.taskID)
	}
}

func (t *Timer) cancel() {
	if t.handle != 0 {
		t.scheduler.Cancel(t.handle)
		t.handle = 0
	}
}
