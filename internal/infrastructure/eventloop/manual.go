package eventloop

import (
	"sort"
	"sync"
	"time"

	"dopamine-deck/internal/core/ports"
)

type manualTimer struct {
	handle ports.TimerHandle
	at     time.Duration
	fn     func()
}

// ManualScheduler is a deterministic ports.Scheduler driven by Advance.
// Callbacks run on the goroutine calling Advance.
type ManualScheduler struct {
	mu     sync.Mutex
	now    time.Duration
	next   ports.TimerHandle
	timers map[ports.TimerHandle]*manualTimer
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{
		timers: make(map[ports.TimerHandle]*manualTimer),
	}
}

func (s *ManualScheduler) After(d time.Duration, fn func()) ports.TimerHandle {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d < 0 {
		d = 0
	}
	s.next++
	s.timers[s.next] = &manualTimer{handle: s.next, at: s.now + d, fn: fn}
	return s.next
}

func (s *ManualScheduler) Cancel(h ports.TimerHandle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.timers[h]; !ok {
		return false
	}
	delete(s.timers, h)
	return true
}

// Advance moves the clock forward by d, running every callback that falls
// due in scheduling order. Callbacks scheduled while advancing run too if
// they are due before the new time.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()

	for {
		s.mu.Lock()
		t := s.nextDue(target)
		if t == nil {
			s.now = target
			s.mu.Unlock()
			return
		}
		delete(s.timers, t.handle)
		s.now = t.at
		s.mu.Unlock()

		t.fn()
	}
}

func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

func (s *ManualScheduler) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

func (s *ManualScheduler) nextDue(target time.Duration) *manualTimer {
	due := make([]*manualTimer, 0, len(s.timers))
	for _, t := range s.timers {
		if t.at <= target {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].at != due[j].at {
			return due[i].at < due[j].at
		}
		return due[i].handle < due[j].handle
	})
	return due[0]
}
