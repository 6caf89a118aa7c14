package viewer

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/climate-viewer/internal/climate"
	"github.com/i474232898/climate-viewer/internal/coordinator"
	"github.com/i474232898/climate-viewer/internal/pkg/logger"
	"github.com/i474232898/climate-viewer/internal/render"
)

// ErrSessionNotFound is returned for unknown or expired session IDs.
var ErrSessionNotFound = errors.New("session not found")

// Manager owns the live sessions.
type Manager struct {
	resolver coordinator.Resolver
	charts   render.Config
	borders  climate.Query
	logger   logger.Logger

	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

// NewManager creates a new Manager.
func NewManager(resolver coordinator.Resolver, charts render.Config, borders climate.Query, log logger.Logger) *Manager {
	return &Manager{
		resolver: resolver,
		charts:   charts,
		borders:  borders,
		logger:   log.WithField("component", "viewer"),
		sessions: make(map[uuid.UUID]*Session),
	}
}

// Borders returns the selectable period.
func (m *Manager) Borders() climate.Query {
	return m.borders
}

// Create starts a new session.
func (m *Manager) Create() *Session {
	s := NewSession(m.resolver, m.charts, m.borders, m.logger)

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	m.logger.Debugf("session %s created", s.ID)
	return s
}

// Get looks a session up by ID.
func (m *Manager) Get(id uuid.UUID) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Delete closes and forgets a session.
func (m *Manager) Delete(id uuid.UUID) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	s.Close()
	return nil
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep closes sessions idle for longer than ttl and returns how many were
// evicted.
func (m *Manager) Sweep(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)

	var expired []*Session
	m.mu.Lock()
	for id, s := range m.sessions {
		if s.IdleSince().Before(cutoff) {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		s.Close()
	}
	if len(expired) > 0 {
		m.logger.Infof("evicted %d idle sessions", len(expired))
	}
	return len(expired)
}

// Close closes every session.
func (m *Manager) Close() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[uuid.UUID]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
