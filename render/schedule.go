package render

import (
	"sync"
	"time"
)

// DefaultDebounce is the window within which repeated render requests are
// coalesced into a single pass.
const DefaultDebounce = 100 * time.Millisecond

// Scheduler coalesces render requests: repeated requests within the debounce
// window collapse into one, and a scheduled but not yet started pass is
// discarded in favor of a newer request. There is no cancellation mid-pass -
// once started, a pass runs to completion. The scheduler owns its timer
// explicitly; there is no package level state.
type Scheduler struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
	run   func()
}

// NewScheduler creates a scheduler invoking run after the debounce delay.
func NewScheduler(delay time.Duration, run func()) *Scheduler {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Scheduler{delay: delay, run: run}
}

// Request schedules a render pass, replacing any pass scheduled earlier that
// has not started yet.
func (s *Scheduler) Request() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, func() {
		s.mu.Lock()
		s.timer = nil
		s.mu.Unlock()
		s.run()
	})
}

// Cancel discards a scheduled pass, if any. A pass already running is not
// interrupted.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// Flush runs a scheduled pass immediately instead of waiting out the
// debounce window. No-op when nothing is scheduled.
func (s *Scheduler) Flush() {
	s.mu.Lock()
	pending := s.timer != nil
	if pending {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
	if pending {
		s.run()
	}
}
