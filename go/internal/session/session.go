// Package session runs one game on its own goroutine and fans its updates out
// to subscribers.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/flipmatch/go/internal/deck"
	"github.com/mcdev12/flipmatch/go/internal/events"
	"github.com/mcdev12/flipmatch/go/internal/game"
	"github.com/mcdev12/flipmatch/go/internal/scheduler"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const inboxSize = 64

// ErrSessionClosed is returned by every method once Run has returned.
var ErrSessionClosed = errors.New("session closed")

// Update is everything one command or timer firing changed.
type Update struct {
	Events []game.Event   `json:"events"`
	State  game.Snapshot `json:"state"`
}

// Session serializes renderer commands and timer firings onto a single
// goroutine, which is the only one that touches the game.
type Session struct {
	ID uuid.UUID

	game      *game.Game
	sched     *scheduler.Scheduler
	clock     clockwork.Clock
	rng       deck.Rand
	publisher events.Publisher
	logger    zerolog.Logger

	inbox chan func()
	done  chan struct{}

	// pending is only touched on the loop goroutine.
	pending []game.Event

	mu      sync.Mutex
	nextSub uint64
	subs    map[uint64]chan Update
	closed  bool
}

// Option customises a Session.
type Option func(*Session)

// WithClock sets the clock timers run on.
func WithClock(clock clockwork.Clock) Option {
	return func(s *Session) { s.clock = clock }
}

// WithRand sets the shuffle source.
func WithRand(rng deck.Rand) Option {
	return func(s *Session) { s.rng = rng }
}

// WithPublisher sets where outcome events are sent.
func WithPublisher(p events.Publisher) Option {
	return func(s *Session) { s.publisher = p }
}

// New creates a session. Nothing happens until Run is called.
func New(cfg game.Config, opts ...Option) (*Session, error) {
	s := &Session{
		ID:    uuid.New(),
		clock: clockwork.NewRealClock(),
		inbox: make(chan func(), inboxSize),
		done:  make(chan struct{}),
		subs:  make(map[uint64]chan Update),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = log.With().Str("session_id", s.ID.String()).Logger()
	s.sched = scheduler.New(s.clock, s.enqueue)

	g, err := game.New(cfg, s.sched,
		game.WithRand(s.rng),
		game.WithListener(s.record),
		game.WithLogger(s.logger),
	)
	if err != nil {
		return nil, err
	}
	s.game = g
	return s, nil
}

// Run processes commands until ctx is cancelled. Without a start gate the
// first game is started straight away. Pending timers are cancelled and
// subscriber channels closed on return.
func (s *Session) Run(ctx context.Context) error {
	defer s.shutdown()

	s.logger.Info().Msg("session started")
	if !s.game.Config().StartGate {
		if err := s.game.StartGame(); err != nil {
			return err
		}
		s.flush(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("session stopping")
			return nil
		case fn := <-s.inbox:
			fn()
			s.flush(ctx)
		}
	}
}

func (s *Session) shutdown() {
	n := s.sched.CancelAll()
	close(s.done)

	s.mu.Lock()
	s.closed = true
	for id, ch := range s.subs {
		close(ch)
		delete(s.subs, id)
	}
	s.mu.Unlock()

	s.logger.Debug().Int("cancelled_timers", n).Msg("session stopped")
}

// Done is closed once Run has returned.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// enqueue is the scheduler's dispatch: fired timers wait their turn behind
// commands already queued.
func (s *Session) enqueue(fn func()) {
	select {
	case s.inbox <- fn:
	case <-s.done:
	}
}

// call runs fn on the loop goroutine and waits for it.
func (s *Session) call(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	select {
	case s.inbox <- func() { fn(); close(finished) }:
	case <-s.done:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-finished:
		return nil
	case <-s.done:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Start begins a new game.
func (s *Session) Start(ctx context.Context) error {
	var gameErr error
	if err := s.call(ctx, func() { gameErr = s.game.StartGame() }); err != nil {
		return err
	}
	return gameErr
}

// Reset abandons the current game.
func (s *Session) Reset(ctx context.Context) error {
	var gameErr error
	if err := s.call(ctx, func() { gameErr = s.game.ResetGame() }); err != nil {
		return err
	}
	return gameErr
}

// Select reveals a card.
func (s *Session) Select(ctx context.Context, cardID string) (game.Outcome, error) {
	var outcome game.Outcome
	if err := s.call(ctx, func() { outcome = s.game.HandleSelect(cardID) }); err != nil {
		return game.OutcomeIgnored, err
	}
	return outcome, nil
}

// Snapshot returns the current state.
func (s *Session) Snapshot(ctx context.Context) (game.Snapshot, error) {
	var snap game.Snapshot
	if err := s.call(ctx, func() { snap = s.game.Snapshot() }); err != nil {
		return game.Snapshot{}, err
	}
	return snap, nil
}

// Subscribe returns a channel receiving every update. Updates are dropped for
// a subscriber whose buffer is full. The returned func unsubscribes.
func (s *Session) Subscribe(buffer int) (<-chan Update, func()) {
	ch := make(chan Update, buffer)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	s.nextSub++
	id := s.nextSub
	s.subs[id] = ch

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
}

// Attach subscribes and returns the state at the moment of subscription.
// Both happen on the loop goroutine, so every update on the channel is newer
// than the returned snapshot.
func (s *Session) Attach(ctx context.Context, buffer int) (game.Snapshot, <-chan Update, func(), error) {
	var (
		snap        game.Snapshot
		updates     <-chan Update
		unsubscribe func()
	)
	err := s.call(ctx, func() {
		snap = s.game.Snapshot()
		updates, unsubscribe = s.Subscribe(buffer)
	})
	if err != nil {
		return game.Snapshot{}, nil, nil, err
	}
	return snap, updates, unsubscribe, nil
}

func (s *Session) record(ev game.Event) {
	s.pending = append(s.pending, ev)
}

// flush delivers the events collected while applying one inbox item.
func (s *Session) flush(ctx context.Context) {
	if len(s.pending) == 0 {
		return
	}
	update := Update{Events: s.pending, State: s.game.Snapshot()}
	s.pending = nil

	s.broadcast(update)
	s.publish(ctx, update)
}

func (s *Session) broadcast(update Update) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, ch := range s.subs {
		select {
		case ch <- update:
		default:
			s.logger.Warn().Uint64("subscriber", id).Msg("subscriber buffer full, dropping update")
		}
	}
}
