package game

import "time"

// EventType names something that changed in a game.
type EventType string

const (
	EventGameStarted   EventType = "GameStarted"
	EventGameReset     EventType = "GameReset"
	EventPhaseChanged  EventType = "PhaseChanged"
	EventCardFlipped   EventType = "CardFlipped"
	EventTurnResolved  EventType = "TurnResolved"
	EventTurnSettled   EventType = "TurnSettled"
	EventCountdownTick EventType = "CountdownTick"
	EventElapsedTick   EventType = "ElapsedTick"
)

// Event is emitted to the listener after the change it describes is applied.
// Rejected input never produces one.
type Event struct {
	Type    EventType `json:"type"`
	Phase   Phase     `json:"phase"`
	From    *Phase    `json:"from,omitempty"`
	Outcome Outcome   `json:"outcome,omitempty"`
	CardIDs []string  `json:"card_ids,omitempty"`
	Seconds int       `json:"seconds,omitempty"` // countdown remaining or elapsed, for ticks
	At      time.Time `json:"at"`
}

// Listener observes game events. It runs synchronously inside the mutation
// that produced the event and must not call back into the game.
type Listener func(Event)
