package session

import (
	"context"

	"github.com/mcdev12/flipmatch/go/internal/events"
	"github.com/mcdev12/flipmatch/go/internal/game"
)

// outcomeType maps a game event onto the outcome event published for it, if any.
func outcomeType(ev game.Event) (string, bool) {
	switch ev.Type {
	case game.EventGameStarted:
		return events.TypeGameStarted, true
	case game.EventGameReset:
		return events.TypeGameReset, true
	case game.EventPhaseChanged:
		switch ev.Phase {
		case game.Won:
			return events.TypeGameWon, true
		case game.Lost:
			return events.TypeGameLost, true
		}
	}
	return "", false
}

func (s *Session) publish(ctx context.Context, update Update) {
	if s.publisher == nil {
		return
	}
	payload := events.OutcomePayload{
		Phase:          update.State.Phase.String(),
		PairCount:      update.State.PairCount,
		MatchCount:     update.State.MatchCount,
		Moves:          update.State.Moves,
		ElapsedSeconds: update.State.ElapsedSeconds,
		TimeLimit:      update.State.TimeLimitSeconds,
	}

	for _, ev := range update.Events {
		eventType, ok := outcomeType(ev)
		if !ok {
			continue
		}
		env, err := events.NewEnvelope(eventType, s.ID, ev.At, payload)
		if err != nil {
			s.logger.Error().Err(err).Str("event_type", eventType).Msg("failed to build event")
			continue
		}
		if err := s.publisher.Publish(ctx, env); err != nil {
			s.logger.Error().Err(err).Str("event_type", eventType).Msg("failed to publish event")
		}
	}
}
