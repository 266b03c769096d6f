// Package scheduler provides tagged one-shot timers whose callbacks are handed
// to a dispatcher instead of running on the timer goroutine.
package scheduler

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Clock is the interface we use for time operations.
// In production, use clockwork.NewRealClock(). In tests, a FakeClock.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) clockwork.Timer
}

// Dispatch receives a fired callback. The session loop uses it to queue the
// callback behind any command already waiting.
type Dispatch func(fn func())

// Scheduler owns every pending timer, grouped by tag.
type Scheduler struct {
	clock    Clock
	dispatch Dispatch

	mu     sync.Mutex
	nextID uint64
	timers map[string]map[uint64]clockwork.Timer
}

// Handle identifies a single scheduled callback.
type Handle struct {
	s   *Scheduler
	tag string
	id  uint64
}

// New creates a scheduler. A nil dispatch runs callbacks on the timer goroutine.
func New(clock Clock, dispatch Dispatch) *Scheduler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if dispatch == nil {
		dispatch = func(fn func()) { fn() }
	}
	return &Scheduler{
		clock:    clock,
		dispatch: dispatch,
		timers:   make(map[string]map[uint64]clockwork.Timer),
	}
}

// Now reports the scheduler's clock time.
func (s *Scheduler) Now() time.Time {
	return s.clock.Now()
}

// Schedule arranges for fn to be dispatched once delay has elapsed, unless the
// handle or its tag is cancelled first.
func (s *Scheduler) Schedule(delay time.Duration, tag string, fn func()) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID

	timer := s.clock.AfterFunc(delay, func() {
		// Only the goroutine that removes the entry may dispatch; a concurrent
		// cancel that got there first wins.
		if !s.remove(tag, id) {
			return
		}
		s.dispatch(fn)
	})

	if s.timers[tag] == nil {
		s.timers[tag] = make(map[uint64]clockwork.Timer)
	}
	s.timers[tag][id] = timer

	log.Debug().
		Str("tag", tag).
		Uint64("timer_id", id).
		Dur("delay", delay).
		Msg("scheduled timer")

	return Handle{s: s, tag: tag, id: id}
}

// Cancel stops the timer. It reports false if it already fired or was cancelled.
func (h Handle) Cancel() bool {
	if h.s == nil {
		return false
	}
	h.s.mu.Lock()
	defer h.s.mu.Unlock()

	timer, ok := h.s.timers[h.tag][h.id]
	if !ok {
		return false
	}
	timer.Stop()
	h.s.deleteLocked(h.tag, h.id)
	return true
}

// CancelTag stops every pending timer under tag and returns how many it stopped.
func (s *Scheduler) CancelTag(tag string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, timer := range s.timers[tag] {
		timer.Stop()
		delete(s.timers[tag], id)
		n++
	}
	delete(s.timers, tag)

	if n > 0 {
		log.Debug().Str("tag", tag).Int("cancelled", n).Msg("cancelled timers")
	}
	return n
}

// CancelAll stops every pending timer.
func (s *Scheduler) CancelAll() int {
	s.mu.Lock()
	tags := make([]string, 0, len(s.timers))
	for tag := range s.timers {
		tags = append(tags, tag)
	}
	s.mu.Unlock()

	n := 0
	for _, tag := range tags {
		n += s.CancelTag(tag)
	}
	return n
}

// Pending returns the number of timers still waiting under tag.
func (s *Scheduler) Pending(tag string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers[tag])
}

func (s *Scheduler) remove(tag string, id uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.timers[tag][id]; !ok {
		return false
	}
	s.deleteLocked(tag, id)
	return true
}

func (s *Scheduler) deleteLocked(tag string, id uint64) {
	delete(s.timers[tag], id)
	if len(s.timers[tag]) == 0 {
		delete(s.timers, tag)
	}
}
