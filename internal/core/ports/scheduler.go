package ports

import "time"

// TimerHandle identifies a scheduled callback. The zero handle is never
// issued.
type TimerHandle uint64

// Scheduler runs callbacks after a delay on the thread that owns the
// caller's state.
type Scheduler interface {
	After(d time.Duration, fn func()) TimerHandle
	Cancel(h TimerHandle) bool
}
