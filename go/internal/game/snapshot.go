package game

import "github.com/mcdev12/flipmatch/go/internal/deck"

// CardView is the renderer-facing form of a card.
// PairKey and Display are left empty while the card is face down. Hidden
// cards carry only their id and flags.
type CardView struct {
	ID      string      `json:"id"`
	PairKey string      `json:"pair_key,omitempty"`
	Display *deck.Value `json:"display,omitempty"`
	Flipped bool        `json:"flipped"`
	Matched bool        `json:"matched"`
}

// Snapshot is a read-only copy of the game state. Cards hide the faces of
// face-down cards; see CardView.
type Snapshot struct {
	Phase              Phase      `json:"phase"`
	Cards              []CardView `json:"cards"`
	MatchCount         int        `json:"match_count"`
	PairCount          int        `json:"pair_count"`
	Moves              int        `json:"moves"`
	ElapsedSeconds     int        `json:"elapsed_seconds"`
	CountdownRemaining int        `json:"countdown_remaining"`
	TimeLimitSeconds   int        `json:"time_limit_seconds"`
	Locked             bool       `json:"locked"`
	FirstSelected      string     `json:"first_selected,omitempty"`
	SecondSelected     string     `json:"second_selected,omitempty"`
}

// BuildCardViews constructs the renderer card list from a deck.
func BuildCardViews(d deck.Deck) []CardView {
	views := make([]CardView, len(d))
	for i, c := range d {
		cv := CardView{
			ID:      c.ID,
			Flipped: c.Flipped,
			Matched: c.Matched,
		}
		if c.Flipped || c.Matched {
			display := c.Display
			cv.PairKey = c.PairKey
			cv.Display = &display
		}
		views[i] = cv
	}
	return views
}

// Card returns the view with the given id.
func (s Snapshot) Card(id string) (CardView, bool) {
	for _, c := range s.Cards {
		if c.ID == id {
			return c, true
		}
	}
	return CardView{}, false
}
