// Package game implements the memory game state machine: phase lifecycle,
// two-card turn resolution, and the timers that drive both.
//
// A Game is not safe for concurrent use. Every method, and every callback it
// hands to its Scheduler, must run on a single goroutine.
package game

import (
	"fmt"
	"time"

	"github.com/mcdev12/flipmatch/go/internal/deck"
	"github.com/mcdev12/flipmatch/go/internal/scheduler"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Scheduler is what the game needs from scheduler.Scheduler.
type Scheduler interface {
	Now() time.Time
	Schedule(delay time.Duration, tag string, fn func()) scheduler.Handle
	CancelTag(tag string) int
}

// Game owns the deck and all per-game counters.
type Game struct {
	cfg      Config
	sched    Scheduler
	rng      deck.Rand
	listener Listener
	logger   zerolog.Logger

	phase  Phase
	deck   deck.Deck
	sel    Selection
	locked bool

	matchCount int
	moves      int
	elapsed    int
	countdown  int

	phaseEpoch   uint64
	phaseStarted time.Time
	turnID       uint64
}

// Option customises a Game.
type Option func(*Game)

// WithRand sets the shuffle source.
func WithRand(rng deck.Rand) Option {
	return func(g *Game) { g.rng = rng }
}

// WithListener registers the event observer.
func WithListener(l Listener) Option {
	return func(g *Game) { g.listener = l }
}

// WithLogger sets the logger used for game lifecycle messages.
func WithLogger(logger zerolog.Logger) Option {
	return func(g *Game) { g.logger = logger }
}

// New validates cfg, deals the first deck and leaves the game in Idle.
func New(cfg Config, sched Scheduler, opts ...Option) (*Game, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	g := &Game{
		cfg:    cfg,
		sched:  sched,
		logger: log.Logger,
		phase:  Idle,
	}
	for _, opt := range opts {
		opt(g)
	}

	d, err := deck.Generate(cfg.PairCount, cfg.Values, g.rng)
	if err != nil {
		return nil, fmt.Errorf("failed to build deck: %w", err)
	}
	g.deck = d
	g.countdown = cfg.CountdownSeconds
	return g, nil
}

// StartGame deals a fresh deck and begins the countdown.
func (g *Game) StartGame() error {
	if err := g.restart(Countdown, EventGameStarted); err != nil {
		return err
	}
	g.logger.Info().Int("pair_count", g.cfg.PairCount).Msg("game started")
	return nil
}

// ResetGame abandons the current game, deals a fresh deck and returns to the
// initial phase. Pending timers and settle delays are cancelled.
func (g *Game) ResetGame() error {
	if err := g.restart(g.cfg.initialPhase(), EventGameReset); err != nil {
		return err
	}
	g.logger.Info().Str("phase", g.phase.String()).Msg("game reset")
	return nil
}

func (g *Game) restart(next Phase, reason EventType) error {
	d, err := deck.Generate(g.cfg.PairCount, g.cfg.Values, g.rng)
	if err != nil {
		return fmt.Errorf("failed to build deck: %w", err)
	}

	g.clearTurn()
	g.deck = d
	g.matchCount = 0
	g.moves = 0
	g.elapsed = 0
	g.countdown = g.cfg.CountdownSeconds

	g.emit(Event{Type: reason})
	g.enter(next)
	return nil
}

// enter switches phase, cancelling everything scheduled for the old one.
func (g *Game) enter(next Phase) {
	prev := g.phase
	g.sched.CancelTag(tagPhase)
	g.phaseEpoch++
	g.phaseStarted = g.sched.Now()
	g.phase = next

	g.logger.Debug().
		Str("from", prev.String()).
		Str("to", next.String()).
		Msg("phase changed")
	g.emit(Event{Type: EventPhaseChanged, From: &prev})

	switch next {
	case Countdown:
		g.startCountdown()
	case Preview:
		g.startPreview()
	case Playing:
		g.startPlaying()
	case Won, Lost:
		g.clearTurn()
		g.logger.Info().
			Str("result", next.String()).
			Int("match_count", g.matchCount).
			Int("moves", g.moves).
			Int("elapsed_seconds", g.elapsed).
			Msg("game finished")
	}
}

// evaluate applies the end-of-game rules. Win is checked first, so a final
// match in the same instant as time expiry is a win.
func (g *Game) evaluate() bool {
	if g.phase != Playing {
		return false
	}
	if g.matchCount == g.cfg.PairCount {
		g.enter(Won)
		return true
	}
	if g.elapsed > g.cfg.TimeLimitSeconds {
		g.enter(Lost)
		return true
	}
	return false
}

func (g *Game) emit(ev Event) {
	if g.listener == nil {
		return
	}
	ev.Phase = g.phase
	ev.At = g.sched.Now()
	g.listener(ev)
}

// Phase returns the current phase.
func (g *Game) Phase() Phase {
	return g.phase
}

// Config returns the game's configuration.
func (g *Game) Config() Config {
	return g.cfg
}

// Snapshot copies the current state for rendering.
func (g *Game) Snapshot() Snapshot {
	return Snapshot{
		Phase:              g.phase,
		Cards:              BuildCardViews(g.deck),
		MatchCount:         g.matchCount,
		PairCount:          g.cfg.PairCount,
		Moves:              g.moves,
		ElapsedSeconds:     g.elapsed,
		CountdownRemaining: g.countdown,
		TimeLimitSeconds:   g.cfg.TimeLimitSeconds,
		Locked:             g.locked,
		FirstSelected:      g.sel.First,
		SecondSelected:     g.sel.Second,
	}
}
