package session

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_Lifecycle(t *testing.T) {
	m := NewManager(testConfig(), WithClock(clockwork.NewFakeClock()))
	ctx := context.Background()

	a, err := m.Create(ctx)
	require.NoError(t, err)
	b, err := m.Create(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, m.Count())

	got, ok := m.Get(a.ID)
	require.True(t, ok)
	assert.Same(t, a, got)

	_, ok = m.Get(uuid.New())
	assert.False(t, ok)

	m.Remove(a.ID)
	select {
	case <-a.Done():
	case <-time.After(time.Second):
		t.Fatal("removed session still running")
	}
	assert.Equal(t, 1, m.Count())

	m.Close()
	<-b.Done()
	assert.Equal(t, 0, m.Count())
}

func TestManager_ParentContextStopsSessions(t *testing.T) {
	m := NewManager(testConfig(), WithClock(clockwork.NewFakeClock()))
	ctx, cancel := context.WithCancel(context.Background())

	s, err := m.Create(ctx)
	require.NoError(t, err)
	cancel()

	<-s.Done()
	require.Eventually(t, func() bool { return m.Count() == 0 }, time.Second, 5*time.Millisecond)
}

func TestManager_InvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.PairCount = -1
	m := NewManager(cfg)
	_, err := m.Create(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 0, m.Count())
}
