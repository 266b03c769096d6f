package game

import "fmt"

// Phase is the coarse game lifecycle state.
type Phase int

const (
	Idle Phase = iota
	Countdown
	Preview
	Playing
	Won
	Lost
)

var phaseNames = [...]string{
	Idle:      "idle",
	Countdown: "countdown",
	Preview:   "preview",
	Playing:   "playing",
	Won:       "won",
	Lost:      "lost",
}

func (p Phase) String() string {
	if p < Idle || p > Lost {
		return fmt.Sprintf("phase(%d)", int(p))
	}
	return phaseNames[p]
}

// Terminal reports whether the phase only ends by start or reset.
func (p Phase) Terminal() bool {
	return p == Won || p == Lost
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(text []byte) error {
	for i, name := range phaseNames {
		if name == string(text) {
			*p = Phase(i)
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", text)
}
