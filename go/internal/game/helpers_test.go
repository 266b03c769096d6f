package game

import (
	"testing"
	"time"

	"github.com/mcdev12/flipmatch/go/internal/scheduler"
	"github.com/stretchr/testify/require"
)

// identityRand leaves the deck in build order: 1-a, 1-b, 2-a, 2-b, ...
type identityRand struct{}

func (identityRand) IntN(n int) int { return n - 1 }

type manualTimer struct {
	due time.Time
	seq int
	tag string
	fn  func()
}

// manualScheduler runs callbacks synchronously as the test advances time.
type manualScheduler struct {
	now    time.Time
	seq    int
	timers []*manualTimer

	// keepOnCancel simulates callbacks that were already queued when their
	// tag was cancelled.
	keepOnCancel bool
}

func newManualScheduler() *manualScheduler {
	return &manualScheduler{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (m *manualScheduler) Now() time.Time { return m.now }

func (m *manualScheduler) Schedule(delay time.Duration, tag string, fn func()) scheduler.Handle {
	m.seq++
	m.timers = append(m.timers, &manualTimer{due: m.now.Add(delay), seq: m.seq, tag: tag, fn: fn})
	return scheduler.Handle{}
}

func (m *manualScheduler) CancelTag(tag string) int {
	if m.keepOnCancel {
		return 0
	}
	n := 0
	kept := m.timers[:0]
	for _, t := range m.timers {
		if t.tag == tag {
			n++
			continue
		}
		kept = append(kept, t)
	}
	m.timers = kept
	return n
}

func (m *manualScheduler) pending(tag string) int {
	n := 0
	for _, t := range m.timers {
		if t.tag == tag {
			n++
		}
	}
	return n
}

// advance moves time forward, firing due callbacks in deadline order.
func (m *manualScheduler) advance(d time.Duration) {
	target := m.now.Add(d)
	for {
		idx := -1
		for i, t := range m.timers {
			if t.due.After(target) {
				continue
			}
			if idx < 0 || t.due.Before(m.timers[idx].due) ||
				(t.due.Equal(m.timers[idx].due) && t.seq < m.timers[idx].seq) {
				idx = i
			}
		}
		if idx < 0 {
			break
		}
		t := m.timers[idx]
		m.timers = append(m.timers[:idx], m.timers[idx+1:]...)
		if t.due.After(m.now) {
			m.now = t.due
		}
		t.fn()
	}
	m.now = target
}

type eventLog struct {
	events []Event
}

func (l *eventLog) record(ev Event) { l.events = append(l.events, ev) }

func (l *eventLog) types() []EventType {
	out := make([]EventType, len(l.events))
	for i, ev := range l.events {
		out[i] = ev.Type
	}
	return out
}

func testConfig() Config {
	return Config{
		PairCount:        2,
		TimeLimitSeconds: 100,
		MatchSettle:      400 * time.Millisecond,
		MismatchSettle:   800 * time.Millisecond,
		StartGate:        true,
	}
}

func newTestGame(t *testing.T, mutate func(*Config)) (*Game, *manualScheduler, *eventLog) {
	t.Helper()
	cfg := testConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	sched := newManualScheduler()
	events := &eventLog{}
	g, err := New(cfg, sched, WithRand(identityRand{}), WithListener(events.record))
	require.NoError(t, err)
	return g, sched, events
}

// startPlaying starts a game with no countdown or preview configured.
func startPlaying(t *testing.T, g *Game) {
	t.Helper()
	require.NoError(t, g.StartGame())
	require.Equal(t, Playing, g.Phase())
}

func cardOf(t *testing.T, g *Game, id string) CardView {
	t.Helper()
	c, ok := g.Snapshot().Card(id)
	require.True(t, ok, "card %s", id)
	return c
}
