// Package gesture turns a continuous horizontal drag on one card into a
// committed swipe or a cancel.
package gesture

import (
	"time"

	"dopamine-deck/internal/core/domain/entities"
	"dopamine-deck/internal/core/ports"
)

const (
	SwipeThreshold = 100.0
	MaxTravel      = 300.0

	CommitDuration = 250 * time.Millisecond
	CancelDuration = CommitDuration / 2
)

// CommitFunc receives the outcome of a committed swipe.
type CommitFunc func(taskID string, outcome entities.SwipeOutcome)

// Resolver owns the in-flight gesture of a single card. It is not safe for
// concurrent use; every call, including scheduler callbacks, must come from
// the same thread.
type Resolver struct {
	taskID    string
	scheduler ports.Scheduler
	onCommit  CommitFunc

	phase     entities.SwipePhase
	offset    float64
	base      float64
	direction entities.SwipeDirection
	pending   ports.TimerHandle
	stopped   bool
}

func NewResolver(taskID string, scheduler ports.Scheduler, onCommit CommitFunc) *Resolver {
	if scheduler == nil {
		panic("gesture: scheduler is nil")
	}
	return &Resolver{
		taskID:    taskID,
		scheduler: scheduler,
		onCommit:  onCommit,
		phase:     entities.PhaseIdle,
	}
}

func (r *Resolver) TaskID() string {
	return r.taskID
}

func (r *Resolver) State() entities.SwipeState {
	return entities.SwipeState{
		Offset:    r.offset,
		Phase:     r.phase,
		Direction: r.direction,
	}
}

func (r *Resolver) Transform() entities.RenderTransform {
	return Transform(r.offset)
}

// DragStart begins a drag. It is ignored unless the card is idle.
func (r *Resolver) DragStart() bool {
	if r.stopped || r.phase != entities.PhaseIdle {
		return false
	}
	r.phase = entities.PhaseDragging
	r.base = r.offset
	r.direction = entities.DirectionNone
	return true
}

// DragMove sets the offset to base+deltaX, deltaX being the total
// displacement since DragStart. Ignored outside a drag.
func (r *Resolver) DragMove(deltaX float64) bool {
	if r.phase != entities.PhaseDragging {
		return false
	}
	r.offset = r.base + deltaX
	return true
}

// DragEnd decides the direction and starts the settle animation. The
// threshold is strict: an offset of exactly SwipeThreshold cancels.
func (r *Resolver) DragEnd() (entities.SwipeDirection, bool) {
	if r.phase != entities.PhaseDragging {
		return entities.DirectionNone, false
	}

	r.phase = entities.PhaseCommitting
	switch {
	case r.offset > SwipeThreshold:
		r.direction = entities.DirectionRight
		r.pending = r.scheduler.After(CommitDuration, func() { r.settle(MaxTravel) })
	case r.offset < -SwipeThreshold:
		r.direction = entities.DirectionLeft
		r.pending = r.scheduler.After(CommitDuration, func() { r.settle(-MaxTravel) })
	default:
		r.direction = entities.DirectionCancel
		r.pending = r.scheduler.After(CancelDuration, func() { r.settle(0) })
	}
	return r.direction, true
}

// Stop cancels a pending animation. A stopped resolver never emits.
func (r *Resolver) Stop() {
	r.stopped = true
	if r.pending != 0 {
		r.scheduler.Cancel(r.pending)
		r.pending = 0
	}
}

func (r *Resolver) settle(target float64) {
	r.pending = 0
	if r.stopped || r.phase != entities.PhaseCommitting {
		return
	}

	r.offset = target
	r.phase = entities.PhaseSettled

	outcome, ok := r.direction.Outcome()
	if !ok {
		// Cancel: the card is ready for another drag.
		r.phase = entities.PhaseIdle
		r.offset = 0
		r.base = 0
		return
	}
	if r.onCommit != nil {
		r.onCommit(r.taskID, outcome)
	}
}
