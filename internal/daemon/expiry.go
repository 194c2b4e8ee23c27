package daemon

import (
	"log/slog"
	"sync"
	"time"
)

// ExpireFunc is called when a notification's timer fires. rev is the
// registry revision the timer was armed for.
type ExpireFunc func(id uint32, rev uint64)

// Scheduler keeps one cancellable expiry timer per notification id.
// Re-scheduling an id replaces its timer; a timer that fires after it was
// replaced or canceled does nothing.
type Scheduler struct {
	mu     sync.Mutex
	logger *slog.Logger

	timers map[uint32]pendingExpiry
	gen    uint64

	onExpire ExpireFunc
	stopped  bool
}

type pendingExpiry struct {
	timer *time.Timer
	gen   uint64
	rev   uint64
}

// NewScheduler creates a Scheduler that calls onExpire from the timer goroutine.
func NewScheduler(onExpire ExpireFunc, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		logger:   logger,
		timers:   make(map[uint32]pendingExpiry),
		onExpire: onExpire,
	}
}

// Schedule arms (or re-arms) the timer for revision rev of id.
func (s *Scheduler) Schedule(id uint32, rev uint64, after time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	if old, ok := s.timers[id]; ok {
		old.timer.Stop()
	}

	s.gen++
	gen := s.gen
	s.timers[id] = pendingExpiry{
		timer: time.AfterFunc(after, func() { s.fire(id, gen) }),
		gen:   gen,
		rev:   rev,
	}
	s.logger.Debug("expiry scheduled", "id", id, "rev", rev, "after", after)
}

// Cancel stops the timer for id. It reports whether one was pending.
func (s *Scheduler) Cancel(id uint32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.timers[id]
	if !ok {
		return false
	}
	p.timer.Stop()
	delete(s.timers, id)
	s.logger.Debug("expiry canceled", "id", id)
	return true
}

// Pending returns the number of armed timers.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop cancels every timer. Later Schedule calls are ignored.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, p := range s.timers {
		p.timer.Stop()
		delete(s.timers, id)
	}
	s.stopped = true
}

func (s *Scheduler) fire(id uint32, gen uint64) {
	s.mu.Lock()
	p, ok := s.timers[id]
	if !ok || p.gen != gen {
		s.mu.Unlock()
		return
	}
	delete(s.timers, id)
	s.mu.Unlock()

	s.logger.Debug("expiry fired", "id", id, "rev", p.rev)
	if s.onExpire != nil {
		s.onExpire(id, p.rev)
	}
}
