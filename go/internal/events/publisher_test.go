package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEnvelope(t *testing.T) {
	sessionID := uuid.New()
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	env, err := NewEnvelope(TypeGameWon, sessionID, at, OutcomePayload{
		Phase:      "won",
		PairCount:  10,
		MatchCount: 10,
		Moves:      14,
	})
	require.NoError(t, err)

	_, err = uuid.Parse(env.EventID)
	assert.NoError(t, err)
	assert.Equal(t, sessionID.String(), env.SessionID)
	assert.Equal(t, at, env.Timestamp)

	var wire map[string]any
	data, err := json.Marshal(env)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &wire))
	assert.Equal(t, "GameWon", wire["eventType"])
	payload := wire["payload"].(map[string]any)
	assert.Equal(t, float64(14), payload["moves"])
}

func TestNewEnvelope_BadPayload(t *testing.T) {
	_, err := NewEnvelope(TypeGameLost, uuid.New(), time.Now(), make(chan int))
	assert.Error(t, err)
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "flipmatch.events.GameLost", Subject("flipmatch.events", TypeGameLost))
	assert.Equal(t, "GameReset", Subject("", TypeGameReset))
	assert.Equal(t, "flipmatch.events", DefaultNATSConfig().Subject)
}

func TestLogPublisher(t *testing.T) {
	env, err := NewEnvelope(TypeGameStarted, uuid.New(), time.Now(), OutcomePayload{Phase: "countdown"})
	require.NoError(t, err)
	assert.NoError(t, LogPublisher{}.Publish(context.Background(), env))
}

type countingPublisher struct {
	n   int
	err error
}

func (p *countingPublisher) Publish(ctx context.Context, env Envelope) error {
	p.n++
	return p.err
}

func TestMultiPublisher(t *testing.T) {
	boom := errors.New("boom")
	a := &countingPublisher{}
	b := &countingPublisher{err: boom}
	c := &countingPublisher{}

	env, err := NewEnvelope(TypeGameLost, uuid.New(), time.Now(), OutcomePayload{})
	require.NoError(t, err)

	err = MultiPublisher{a, b, c}.Publish(context.Background(), env)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, a.n)
	assert.Equal(t, 1, c.n, "a failing publisher must not stop the rest")

	assert.NoError(t, MultiPublisher{a}.Publish(context.Background(), env))
}
