package game

import (
	"fmt"

	"github.com/mcdev12/flipmatch/go/internal/deck"
)

// Outcome is the result of a single selection.
type Outcome int

const (
	// OutcomeIgnored means the selection was rejected and nothing changed.
	OutcomeIgnored Outcome = iota
	// OutcomePending means the first card of a turn was revealed.
	OutcomePending
	OutcomeMatched
	OutcomeMismatched
)

var outcomeNames = [...]string{
	OutcomeIgnored:    "ignored",
	OutcomePending:    "pending",
	OutcomeMatched:    "matched",
	OutcomeMismatched: "mismatched",
}

func (o Outcome) String() string {
	if o < OutcomeIgnored || o > OutcomeMismatched {
		return fmt.Sprintf("outcome(%d)", int(o))
	}
	return outcomeNames[o]
}

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *Outcome) UnmarshalText(text []byte) error {
	for i, name := range outcomeNames {
		if name == string(text) {
			*o = Outcome(i)
			return nil
		}
	}
	return fmt.Errorf("unknown outcome %q", text)
}

// Selection is the two-slot turn buffer. Empty strings are unset slots.
type Selection struct {
	First  string
	Second string
}

// Adjudicate decides a completed turn without touching any state.
func Adjudicate(first, second deck.Card) Outcome {
	if first.PairKey == second.PairKey {
		return OutcomeMatched
	}
	return OutcomeMismatched
}

// HandleSelect applies a cardSelected input. Anything ineligible (wrong phase,
// locked, unknown, face up, matched, or the card already held) is ignored.
func (g *Game) HandleSelect(cardID string) Outcome {
	if g.phase != Playing || g.locked {
		return OutcomeIgnored
	}
	idx := g.deck.Index(cardID)
	if idx < 0 || cardID == g.sel.First {
		return OutcomeIgnored
	}
	card := &g.deck[idx]
	if card.Flipped || card.Matched {
		return OutcomeIgnored
	}

	card.Flipped = true
	g.emit(Event{Type: EventCardFlipped, CardIDs: []string{cardID}})

	if g.sel.First == "" {
		g.sel.First = cardID
		return OutcomePending
	}

	g.sel.Second = cardID
	g.locked = true
	g.moves++

	first := &g.deck[g.deck.Index(g.sel.First)]
	outcome := Adjudicate(*first, *card)
	ids := []string{g.sel.First, g.sel.Second}

	switch outcome {
	case OutcomeMatched:
		first.Matched = true
		card.Matched = true
		g.matchCount++
		g.emit(Event{Type: EventTurnResolved, Outcome: outcome, CardIDs: ids})
		if g.evaluate() {
			return outcome
		}
		g.afterTurn(g.cfg.MatchSettle, g.settleTurn)

	case OutcomeMismatched:
		g.emit(Event{Type: EventTurnResolved, Outcome: outcome, CardIDs: ids})
		if g.evaluate() {
			return outcome
		}
		g.afterTurn(g.cfg.MismatchSettle, func() {
			for _, id := range ids {
				if i := g.deck.Index(id); i >= 0 {
					g.deck[i].Flipped = false
				}
			}
			g.settleTurn()
		})
	}

	g.logger.Debug().
		Str("outcome", outcome.String()).
		Strs("cards", ids).
		Int("match_count", g.matchCount).
		Int("moves", g.moves).
		Msg("turn resolved")

	return outcome
}

// settleTurn ends the resolution window.
func (g *Game) settleTurn() {
	ids := []string{g.sel.First, g.sel.Second}
	g.clearTurn()
	g.emit(Event{Type: EventTurnSettled, CardIDs: ids})
}

// clearTurn drops the buffer and lock and invalidates any queued settle callback.
func (g *Game) clearTurn() {
	g.sched.CancelTag(tagTurn)
	g.turnID++
	g.sel = Selection{}
	g.locked = false
}
