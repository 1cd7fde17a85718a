package eventloop

import (
	"sync"
	"time"

	"dopamine-deck/internal/core/ports"
)

// PostFunc hands a callback to the thread that owns the scheduled state.
type PostFunc func(fn func()) bool

// TimerScheduler implements ports.Scheduler with wall-clock timers whose
// callbacks are posted through post. A cancelled handle never runs, even if
// its timer already fired and the callback is queued.
type TimerScheduler struct {
	post PostFunc

	mu     sync.Mutex
	next   ports.TimerHandle
	timers map[ports.TimerHandle]*time.Timer
}

func NewTimerScheduler(post PostFunc) *TimerScheduler {
	if post == nil {
		panic("eventloop: post func is nil")
	}
	return &TimerScheduler{
		post:   post,
		timers: make(map[ports.TimerHandle]*time.Timer),
	}
}

// ForLoop schedules onto l.
func ForLoop(l *Loop) *TimerScheduler {
	return NewTimerScheduler(l.Post)
}

func (s *TimerScheduler) After(d time.Duration, fn func()) ports.TimerHandle {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.next++
	h := s.next
	s.timers[h] = time.AfterFunc(d, func() {
		s.post(func() {
			if s.take(h) {
				fn()
			}
		})
	})
	return h
}

func (s *TimerScheduler) Cancel(h ports.TimerHandle) bool {
	s.mu.Lock()
	t, ok := s.timers[h]
	delete(s.timers, h)
	s.mu.Unlock()

	if ok {
		t.Stop()
	}
	return ok
}

// Pending is the number of callbacks that have neither run nor been
// cancelled.
func (s *TimerScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

func (s *TimerScheduler) take(h ports.TimerHandle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.timers[h]; !ok {
		return false
	}
	delete(s.timers, h)
	return true
}
