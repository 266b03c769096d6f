package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/mcdev12/flipmatch/go/internal/game"
	"github.com/rs/zerolog/log"
)

// Manager keeps track of running sessions.
type Manager struct {
	cfg  game.Config
	opts []Option

	mu       sync.RWMutex
	sessions map[uuid.UUID]*entry
}

type entry struct {
	session *Session
	cancel  context.CancelFunc
}

// NewManager creates a manager whose sessions all use cfg and opts.
func NewManager(cfg game.Config, opts ...Option) *Manager {
	return &Manager{
		cfg:      cfg,
		opts:     opts,
		sessions: make(map[uuid.UUID]*entry),
	}
}

// Create starts a new session. It runs until ctx is cancelled or it is removed.
func (m *Manager) Create(ctx context.Context) (*Session, error) {
	s, err := New(m.cfg, m.opts...)
	if err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.mu.Lock()
	m.sessions[s.ID] = &entry{session: s, cancel: cancel}
	count := len(m.sessions)
	m.mu.Unlock()

	go func() {
		if err := s.Run(runCtx); err != nil {
			log.Error().Err(err).Str("session_id", s.ID.String()).Msg("session failed")
		}
		m.Remove(s.ID)
	}()

	log.Debug().Str("session_id", s.ID.String()).Int("active_sessions", count).Msg("session created")
	return s, nil
}

// Get looks up a running session.
func (m *Manager) Get(id uuid.UUID) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	return e.session, true
}

// Remove stops a session and forgets it.
func (m *Manager) Remove(id uuid.UUID) {
	m.mu.Lock()
	e, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		e.cancel()
	}
}

// Count reports the number of running sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close stops every session.
func (m *Manager) Close() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[uuid.UUID]*entry)
	m.mu.Unlock()

	for _, e := range sessions {
		e.cancel()
	}
}
