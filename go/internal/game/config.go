package game

import (
	"fmt"
	"time"

	"github.com/mcdev12/flipmatch/go/internal/deck"
)

// ErrInvalidConfig is the sentinel for every configuration failure.
var ErrInvalidConfig = deck.ErrInvalidConfig

// Config holds the tunables of a single game.
type Config struct {
	PairCount        int
	TimeLimitSeconds int
	CountdownSeconds int
	PreviewSeconds   int
	MatchSettle      time.Duration
	MismatchSettle   time.Duration

	// StartGate keeps a reset game in Idle until StartGame is called.
	StartGate bool

	// Values supplies the card faces. Nil means plain integers.
	Values deck.ValueSource
}

// DefaultConfig returns the standard 10-pair, 100-second game.
func DefaultConfig() Config {
	return Config{
		PairCount:        10,
		TimeLimitSeconds: 100,
		CountdownSeconds: 3,
		PreviewSeconds:   5,
		MatchSettle:      400 * time.Millisecond,
		MismatchSettle:   800 * time.Millisecond,
		StartGate:        true,
	}
}

// Validate checks the numeric settings. Value source sufficiency is checked
// when the deck is built.
func (c Config) Validate() error {
	switch {
	case c.PairCount < 1:
		return fmt.Errorf("%w: pair count must be at least 1, got %d", ErrInvalidConfig, c.PairCount)
	case c.TimeLimitSeconds <= 0:
		return fmt.Errorf("%w: time limit must be positive, got %d", ErrInvalidConfig, c.TimeLimitSeconds)
	case c.CountdownSeconds < 0:
		return fmt.Errorf("%w: countdown must not be negative, got %d", ErrInvalidConfig, c.CountdownSeconds)
	case c.PreviewSeconds < 0:
		return fmt.Errorf("%w: preview must not be negative, got %d", ErrInvalidConfig, c.PreviewSeconds)
	case c.MatchSettle < 0 || c.MismatchSettle < 0:
		return fmt.Errorf("%w: settle delays must not be negative", ErrInvalidConfig)
	}
	return nil
}

func (c Config) initialPhase() Phase {
	if c.StartGate {
		return Idle
	}
	return Countdown
}
