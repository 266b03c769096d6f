// Package deck builds the paired, shuffled card sets a game is played with.
package deck

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

// ErrInvalidConfig is returned when a deck cannot be built from the requested
// pair count and value source.
var ErrInvalidConfig = errors.New("invalid game configuration")

// Card is a single tile on the board.
type Card struct {
	ID      string
	PairKey string
	Display Value
	Flipped bool
	Matched bool
}

// Deck is the ordered board. Position i is the i-th tile the renderer draws.
type Deck []Card

// Index returns the position of the card with the given id, or -1.
func (d Deck) Index(id string) int {
	for i := range d {
		if d[i].ID == id {
			return i
		}
	}
	return -1
}


// Rand is the randomness the shuffle draws from. *rand.Rand from math/rand/v2
// satisfies it.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// Generate builds a deck of 2*pairCount cards from the first pairCount distinct
// keys of source and shuffles it. A nil source means plain integers, a nil rng
// means the process-wide generator.
func Generate(pairCount int, source ValueSource, rng Rand) (Deck, error) {
	if pairCount <= 0 {
		return nil, fmt.Errorf("%w: pair count must be positive, got %d", ErrInvalidConfig, pairCount)
	}
	if source == nil {
		source = IntValues(pairCount)
	}
	if rng == nil {
		rng = globalRand{}
	}

	values := distinct(source.Values(), pairCount)
	if len(values) < pairCount {
		return nil, fmt.Errorf("%w: need %d distinct values, source has %d", ErrInvalidConfig, pairCount, len(values))
	}

	d := make(Deck, 0, pairCount*2)
	for _, v := range values {
		d = append(d,
			Card{ID: v.Key + "-a", PairKey: v.Key, Display: v},
			Card{ID: v.Key + "-b", PairKey: v.Key, Display: v},
		)
	}

	Shuffle(d, rng)
	return d, nil
}

// Shuffle permutes d in place with Fisher-Yates.
func Shuffle(d Deck, rng Rand) {
	for i := len(d) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		d[i], d[j] = d[j], d[i]
	}
}

// distinct keeps the first n values with unseen keys, in source order.
func distinct(values []Value, n int) []Value {
	seen := make(map[string]bool, n)
	out := make([]Value, 0, n)
	for _, v := range values {
		if len(out) == n {
			break
		}
		if v.Key == "" || seen[v.Key] {
			continue
		}
		seen[v.Key] = true
		out = append(out, v)
	}
	return out
}
