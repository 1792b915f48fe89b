// internal/session/scheduler.go
//
// Round scheduler: at most one pending timer per session. Every arm
// carries the session turn it was decided for; an arm is accepted only if
// it is newer than the timer already pending, so a goroutine that was
// preempted between deciding an arm and applying it can never clobber the
// timer of a later transition. Callbacks still re-validate session state
// under the session lock — a timer that fires just as a client intent
// supersedes it must no-op.

package session

import (
	"sync"
	"time"
)

type pendingTimer struct {
	t    *time.Timer
	turn int
}

// Scheduler owns the per-session phase timers.
type Scheduler struct {
	mu     sync.Mutex
	timers map[string]*pendingTimer
}

// NewScheduler constructs an empty scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{timers: make(map[string]*pendingTimer)}
}

// Arm schedules fn to run after d on behalf of sessionID and the given
// session turn. A pending timer for an older turn is replaced; an arm
// that is not newer than the pending one is discarded as stale. fn runs
// on the timer goroutine.
func (s *Scheduler) Arm(sessionID string, turn int, d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.timers[sessionID]; ok {
		if turn <= p.turn {
			return
		}
		p.t.Stop()
	}
	p := &pendingTimer{turn: turn}
	p.t = time.AfterFunc(d, func() {
		s.mu.Lock()
		if s.timers[sessionID] == p {
			delete(s.timers, sessionID)
		}
		s.mu.Unlock()
		fn()
	})
	s.timers[sessionID] = p
}

// Cancel drops the pending timer for sessionID, if any. A callback that is
// already running is not interrupted; staleness checks cover that window.
func (s *Scheduler) Cancel(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.timers[sessionID]; ok {
		p.t.Stop()
		delete(s.timers, sessionID)
	}
}

// Pending reports whether a timer is armed for sessionID.
func (s *Scheduler) Pending(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[sessionID]
	return ok
}

// Shutdown cancels every pending timer.
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, p := range s.timers {
		p.t.Stop()
		delete(s.timers, id)
	}
}
