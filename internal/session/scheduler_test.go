package session

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerFiresOnce(t *testing.T) {
	s := NewScheduler()
	defer s.Shutdown()

	fired := make(chan struct{})
	s.Arm("g1", 1, 10*time.Millisecond, func() { close(fired) })
	require.True(t, s.Pending("g1"))

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timer never fired")
	}
	// The timer removes itself once it has run.
	assert.Eventually(t, func() bool { return !s.Pending("g1") }, time.Second, 5*time.Millisecond)
}

func TestArmForNewerTurnReplacesPendingTimer(t *testing.T) {
	s := NewScheduler()
	defer s.Shutdown()

	var firstFired, secondFired atomic.Bool
	s.Arm("g1", 1, 30*time.Millisecond, func() { firstFired.Store(true) })
	s.Arm("g1", 2, 10*time.Millisecond, func() { secondFired.Store(true) })

	assert.Eventually(t, func() bool { return secondFired.Load() }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.False(t, firstFired.Load(), "the replaced timer must never fire")
}

// An arm decided before a later transition but applied after it must not
// clobber the newer timer: the delayed goroutine lost the race and its
// timer belongs to a phase that no longer exists.
func TestStaleArmIsDiscarded(t *testing.T) {
	s := NewScheduler()
	defer s.Shutdown()

	var newerFired, stalerFired atomic.Bool
	s.Arm("g1", 5, 20*time.Millisecond, func() { newerFired.Store(true) })
	s.Arm("g1", 4, time.Millisecond, func() { stalerFired.Store(true) })
	s.Arm("g1", 5, time.Millisecond, func() { stalerFired.Store(true) }) // same turn is stale too

	assert.Eventually(t, func() bool { return newerFired.Load() }, time.Second, 5*time.Millisecond)
	assert.False(t, stalerFired.Load(), "a stale arm must never replace a newer timer")
}

func TestStaleArmAfterFireIsStillSuperseded(t *testing.T) {
	s := NewScheduler()
	defer s.Shutdown()

	fired := make(chan struct{})
	s.Arm("g1", 5, time.Millisecond, func() { close(fired) })
	<-fired
	require.Eventually(t, func() bool { return !s.Pending("g1") }, time.Second, time.Millisecond)

	// With nothing pending a stale arm is accepted (its callback no-ops on
	// the session state), and the next real transition replaces it.
	var stalerFired, newerFired atomic.Bool
	s.Arm("g1", 4, time.Hour, func() { stalerFired.Store(true) })
	s.Arm("g1", 6, 10*time.Millisecond, func() { newerFired.Store(true) })

	assert.Eventually(t, func() bool { return newerFired.Load() }, time.Second, 5*time.Millisecond)
	assert.False(t, stalerFired.Load())
}

func TestCancelStopsPendingTimer(t *testing.T) {
	s := NewScheduler()
	defer s.Shutdown()

	var fired atomic.Bool
	s.Arm("g1", 1, 20*time.Millisecond, func() { fired.Store(true) })
	s.Cancel("g1")
	assert.False(t, s.Pending("g1"))

	time.Sleep(40 * time.Millisecond)
	assert.False(t, fired.Load())

	s.Cancel("g1") // cancelling again is a no-op
}

func TestTimersArePerSession(t *testing.T) {
	s := NewScheduler()
	defer s.Shutdown()

	var g2Fired atomic.Bool
	s.Arm("g1", 1, time.Hour, func() {})
	s.Arm("g2", 1, 10*time.Millisecond, func() { g2Fired.Store(true) })
	s.Cancel("g1")

	assert.Eventually(t, func() bool { return g2Fired.Load() }, time.Second, 5*time.Millisecond)
}

func TestShutdownCancelsEverything(t *testing.T) {
	s := NewScheduler()
	var fired atomic.Int32
	for _, id := range []string{"g1", "g2", "g3"} {
		s.Arm(id, 1, 20*time.Millisecond, func() { fired.Add(1) })
	}
	s.Shutdown()

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, fired.Load())
	assert.False(t, s.Pending("g1"))
}
